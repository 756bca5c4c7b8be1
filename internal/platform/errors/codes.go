// Package errors provides structured error handling for the expedition services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidRequest represents a malformed request body or parameter.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Entity pool errors
	CodePoolSessionIDRequired     Code = "POOL_SESSION_ID_REQUIRED"
	CodePoolCampaignIDRequired    Code = "POOL_CAMPAIGN_ID_REQUIRED"
	CodePoolEntityIdentityMissing Code = "POOL_ENTITY_IDENTITY_MISSING"
	CodePoolEntityCategoryInvalid Code = "POOL_ENTITY_CATEGORY_INVALID"
	CodePoolEntityKindMismatch    Code = "POOL_ENTITY_KIND_MISMATCH"
	CodePoolRevisionConflict      Code = "POOL_REVISION_CONFLICT"

	// Location-entity mapping errors
	CodeMappingSessionIDRequired     Code = "MAPPING_SESSION_ID_REQUIRED"
	CodeMappingLocationIDRequired    Code = "MAPPING_LOCATION_ID_REQUIRED"
	CodeMappingEntityIDRequired      Code = "MAPPING_ENTITY_ID_REQUIRED"
	CodeMappingEntityKindInvalid     Code = "MAPPING_ENTITY_KIND_INVALID"
	CodeMappingEntityCategoryInvalid Code = "MAPPING_ENTITY_CATEGORY_INVALID"
	CodeMappingBatchInvalid          Code = "MAPPING_BATCH_INVALID"
	CodeMappingTimeWindowInvalid     Code = "MAPPING_TIME_WINDOW_INVALID"

	// Exploration errors
	CodeExplorationIntensityInvalid Code = "EXPLORATION_INTENSITY_INVALID"
	CodeExecutionFieldRequired      Code = "EXECUTION_FIELD_REQUIRED"
	CodeExecutionActionTypeInvalid  Code = "EXECUTION_ACTION_TYPE_INVALID"
	CodeExecutionInvalidPhase       Code = "EXECUTION_INVALID_PHASE"
	CodeExecutionCharacterMismatch  Code = "EXECUTION_CHARACTER_MISMATCH"
	CodeSkillTypeRequired           Code = "SKILL_TYPE_REQUIRED"

	// Milestone errors
	CodeMilestoneIDRequired Code = "MILESTONE_ID_REQUIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeStorage  Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, malformed input
	case CodeInvalidRequest,
		CodePoolSessionIDRequired,
		CodePoolCampaignIDRequired,
		CodePoolEntityIdentityMissing,
		CodePoolEntityCategoryInvalid,
		CodePoolEntityKindMismatch,
		CodeMappingSessionIDRequired,
		CodeMappingLocationIDRequired,
		CodeMappingEntityIDRequired,
		CodeMappingEntityKindInvalid,
		CodeMappingEntityCategoryInvalid,
		CodeMappingBatchInvalid,
		CodeMappingTimeWindowInvalid,
		CodeExplorationIntensityInvalid,
		CodeExecutionFieldRequired,
		CodeExecutionActionTypeInvalid,
		CodeSkillTypeRequired,
		CodeMilestoneIDRequired:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeExecutionInvalidPhase,
		CodeExecutionCharacterMismatch,
		CodePoolRevisionConflict:
		return http.StatusConflict

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
