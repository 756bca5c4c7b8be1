package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeNotFound, "record not found")
	wrapped := fmt.Errorf("load pool: %w", Wrap(CodeNotFound, "pool missing", nil))

	if !errors.Is(wrapped, base) {
		t.Fatal("expected wrapped error to match by code")
	}
	if errors.Is(New(CodeStorage, "boom"), base) {
		t.Fatal("expected different codes not to match")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorage, "persist pool", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodePoolSessionIDRequired, http.StatusBadRequest},
		{CodeMappingEntityCategoryInvalid, http.StatusBadRequest},
		{CodeExecutionInvalidPhase, http.StatusConflict},
		{CodePoolRevisionConflict, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeStorage, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestWithMetadataKeepsDetails(t *testing.T) {
	err := WithMetadata(CodeMappingBatchInvalid, "batch rejected", map[string]string{
		"mappings[2].entityCategory": "unknown category",
	})
	if err.Metadata["mappings[2].entityCategory"] == "" {
		t.Fatal("expected metadata to carry field details")
	}
}
