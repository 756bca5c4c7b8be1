package exploration

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func startedExecution(t *testing.T, actionType ActionType) Execution {
	t.Helper()
	exec, err := Start("exec-1", "sess-1", "char-1", "ent-1", actionType, "", testNow)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return exec
}

func TestStartRequiredFields(t *testing.T) {
	_, err := Start("exec-1", "", "char-1", "", ActionInvestigate, "", testNow)
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code != apperrors.CodeExecutionFieldRequired {
		t.Fatalf("expected field-required code, got %s", domainErr.Code)
	}
	if _, ok := domainErr.Metadata["sessionId"]; !ok {
		t.Fatalf("expected sessionId detail, got %v", domainErr.Metadata)
	}
	if _, ok := domainErr.Metadata["targetEntityId"]; !ok {
		t.Fatalf("expected targetEntityId detail, got %v", domainErr.Metadata)
	}
}

func TestStartRejectsUnknownActionType(t *testing.T) {
	_, err := Start("exec-1", "sess-1", "char-1", "ent-1", "teleport", "", testNow)
	if !errors.Is(err, apperrors.New(apperrors.CodeExecutionActionTypeInvalid, "")) {
		t.Fatalf("expected action type error, got %v", err)
	}
}

func TestStartPhaseDependsOnActionType(t *testing.T) {
	if exec := startedExecution(t, ActionInteract); exec.Phase != PhaseAwaitingInput {
		t.Fatalf("expected interact to await input, got %s", exec.Phase)
	}
	if exec := startedExecution(t, ActionCustom); exec.Phase != PhaseAwaitingInput {
		t.Fatalf("expected custom to await input, got %s", exec.Phase)
	}
	if exec := startedExecution(t, ActionInvestigate); exec.Phase != PhaseSkillCheckPending {
		t.Fatalf("expected investigate to skip input, got %s", exec.Phase)
	}
	if exec := startedExecution(t, ActionChallenge); exec.Phase != PhaseSkillCheckPending {
		t.Fatalf("expected challenge to skip input, got %s", exec.Phase)
	}
}

func TestProvideInputAdvancesPhase(t *testing.T) {
	exec := startedExecution(t, ActionInteract)

	triggered, err := exec.ProvideInput("char-1", "I compliment the guard's polished armor at length", testNow)
	if err != nil {
		t.Fatalf("provide input: %v", err)
	}
	if !triggered {
		t.Fatal("expected long approach to trigger automatic judgment")
	}
	if exec.Phase != PhaseSkillCheckPending {
		t.Fatalf("expected skill_check_pending, got %s", exec.Phase)
	}
	if exec.UserApproach == "" {
		t.Fatal("expected approach recorded")
	}
}

func TestProvideInputShortApproachNeedsExplicitCheck(t *testing.T) {
	exec := startedExecution(t, ActionInteract)

	triggered, err := exec.ProvideInput("char-1", "I wave", testNow)
	if err != nil {
		t.Fatalf("provide input: %v", err)
	}
	if triggered {
		t.Fatal("expected terse approach not to trigger judgment")
	}
}

func TestProvideInputValidation(t *testing.T) {
	exec := startedExecution(t, ActionInteract)

	if _, err := exec.ProvideInput("char-1", "  ", testNow); !errors.Is(err, apperrors.New(apperrors.CodeExecutionFieldRequired, "")) {
		t.Fatalf("expected field error, got %v", err)
	}
	if _, err := exec.ProvideInput("char-2", "a perfectly valid approach", testNow); !errors.Is(err, apperrors.New(apperrors.CodeExecutionCharacterMismatch, "")) {
		t.Fatalf("expected character mismatch, got %v", err)
	}
}

func TestProvideInputWrongPhase(t *testing.T) {
	exec := startedExecution(t, ActionInvestigate) // already skill_check_pending

	if _, err := exec.ProvideInput("char-1", "a deliberate approach", testNow); !errors.Is(err, apperrors.New(apperrors.CodeExecutionInvalidPhase, "")) {
		t.Fatalf("expected invalid phase, got %v", err)
	}
}

func TestResolveMakesExecutionImmutable(t *testing.T) {
	exec := startedExecution(t, ActionInvestigate)

	outcome := Outcome{Success: true, SkillType: "perception", RollTotal: 17, TargetNumber: 12, Margin: 5}
	if err := exec.Resolve("char-1", outcome, testNow); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if exec.Phase != PhaseResolved {
		t.Fatalf("expected resolved, got %s", exec.Phase)
	}
	if exec.Result == nil || !exec.Result.Success {
		t.Fatal("expected outcome recorded")
	}

	// Scenario: any transition on a resolved execution fails with invalid phase.
	if _, err := exec.ProvideInput("char-1", "another lengthy approach to the problem", testNow); !errors.Is(err, apperrors.New(apperrors.CodeExecutionInvalidPhase, "")) {
		t.Fatalf("expected invalid phase on resolved execution, got %v", err)
	}
	if err := exec.Resolve("char-1", outcome, testNow); !errors.Is(err, apperrors.New(apperrors.CodeExecutionInvalidPhase, "")) {
		t.Fatalf("expected second resolve rejected, got %v", err)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseStarted, PhaseAwaitingInput, true},
		{PhaseStarted, PhaseSkillCheckPending, true},
		{PhaseStarted, PhaseResolved, false},
		{PhaseAwaitingInput, PhaseSkillCheckPending, true},
		{PhaseAwaitingInput, PhaseResolved, false},
		{PhaseSkillCheckPending, PhaseResolved, true},
		{PhaseResolved, PhaseStarted, false},
		{PhaseResolved, PhaseSkillCheckPending, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v", tc.from, tc.to, tc.allowed)
		}
	}
	if !PhaseResolved.Terminal() {
		t.Fatal("expected resolved to be terminal")
	}
	if PhaseStarted.Terminal() {
		t.Fatal("expected started not to be terminal")
	}
}
