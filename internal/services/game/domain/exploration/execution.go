// Package exploration models a single player's interaction with one target
// entity as a short, strictly forward-moving state machine.
package exploration

import (
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
)

// Phase is the lifecycle state of one exploration execution.
type Phase string

const (
	PhaseStarted           Phase = "started"
	PhaseAwaitingInput     Phase = "awaiting_input"
	PhaseSkillCheckPending Phase = "skill_check_pending"
	PhaseResolved          Phase = "resolved"
)

// transitions is the single source of truth for legal phase moves. The
// started -> skill_check_pending shortcut covers action types that take no
// player free-text.
var transitions = map[Phase][]Phase{
	PhaseStarted:           {PhaseAwaitingInput, PhaseSkillCheckPending},
	PhaseAwaitingInput:     {PhaseSkillCheckPending},
	PhaseSkillCheckPending: {PhaseResolved},
	PhaseResolved:          {},
}

// CanTransition reports whether moving from p to next is legal.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the phase permits no further transitions.
func (p Phase) Terminal() bool {
	return len(transitions[p]) == 0
}

// ActionType classifies how a character engages the target entity.
type ActionType string

const (
	// ActionInvestigate examines the target; resolution is a straight skill check.
	ActionInvestigate ActionType = "investigate"
	// ActionChallenge confronts the target directly; no free-text needed.
	ActionChallenge ActionType = "challenge"
	// ActionInteract engages the target socially; the player describes an approach.
	ActionInteract ActionType = "interact"
	// ActionCustom is a free-form action; the player must describe it.
	ActionCustom ActionType = "custom"
)

// ParseActionType parses a wire-format action type.
func ParseActionType(value string) (ActionType, error) {
	switch ActionType(strings.TrimSpace(strings.ToLower(value))) {
	case ActionInvestigate:
		return ActionInvestigate, nil
	case ActionChallenge:
		return ActionChallenge, nil
	case ActionInteract:
		return ActionInteract, nil
	case ActionCustom:
		return ActionCustom, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeExecutionActionTypeInvalid,
			"unknown action type", map[string]string{"actionType": value})
	}
}

// RequiresInput reports whether the action type collects player free-text
// before the skill check.
func (a ActionType) RequiresInput() bool {
	return a == ActionInteract || a == ActionCustom
}

// Outcome classifies a resolved execution.
type Outcome struct {
	Success      bool   `json:"success"`
	SkillType    string `json:"skillType"`
	RollTotal    int    `json:"rollTotal"`
	TargetNumber int    `json:"targetNumber"`
	Margin       int    `json:"margin"`
	Narrative    string `json:"narrative,omitempty"`
}

// Execution is the transient state of one in-progress exploration action.
// It moves strictly forward through phases and becomes immutable once
// resolved; a stalled execution is reaped externally by TTL, never resumed.
type Execution struct {
	ID                string     `json:"executionId"`
	SessionID         string     `json:"sessionId"`
	CharacterID       string     `json:"characterId"`
	TargetEntityID    string     `json:"targetEntityId"`
	ActionType        ActionType `json:"actionType"`
	CustomDescription string     `json:"customDescription,omitempty"`

	Phase        Phase    `json:"phase"`
	UserApproach string   `json:"userApproach,omitempty"`
	Result       *Outcome `json:"result,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Start validates the required fields and creates an execution. Action types
// that need no player input skip straight to the skill-check phase.
func Start(executionID, sessionID, characterID, targetEntityID string, actionType ActionType, customDescription string, now time.Time) (Execution, error) {
	missing := map[string]string{}
	if strings.TrimSpace(sessionID) == "" {
		missing["sessionId"] = "required"
	}
	if strings.TrimSpace(characterID) == "" {
		missing["characterId"] = "required"
	}
	if strings.TrimSpace(targetEntityID) == "" {
		missing["targetEntityId"] = "required"
	}
	if strings.TrimSpace(string(actionType)) == "" {
		missing["actionType"] = "required"
	}
	if len(missing) > 0 {
		return Execution{}, apperrors.WithMetadata(apperrors.CodeExecutionFieldRequired,
			"exploration action is missing required fields", missing)
	}
	parsed, err := ParseActionType(string(actionType))
	if err != nil {
		return Execution{}, err
	}

	phase := PhaseAwaitingInput
	if !parsed.RequiresInput() {
		phase = PhaseSkillCheckPending
	}

	now = now.UTC()
	return Execution{
		ID:                executionID,
		SessionID:         strings.TrimSpace(sessionID),
		CharacterID:       strings.TrimSpace(characterID),
		TargetEntityID:    strings.TrimSpace(targetEntityID),
		ActionType:        parsed,
		CustomDescription: strings.TrimSpace(customDescription),
		Phase:             phase,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// autoJudgmentApproachLength is the minimum approach length that lets the
// engine judge the attempt without an explicit skill-check call.
const autoJudgmentApproachLength = 20

// ProvideInput records the player's free-text approach and advances to the
// skill-check phase. The returned flag signals whether the approach is rich
// enough to trigger automatic judgment.
func (e *Execution) ProvideInput(characterID, approach string, now time.Time) (judgmentTriggered bool, err error) {
	approach = strings.TrimSpace(approach)
	missing := map[string]string{}
	if strings.TrimSpace(characterID) == "" {
		missing["characterId"] = "required"
	}
	if approach == "" {
		missing["userApproach"] = "required"
	}
	if len(missing) > 0 {
		return false, apperrors.WithMetadata(apperrors.CodeExecutionFieldRequired,
			"user input is missing required fields", missing)
	}
	if characterID != e.CharacterID {
		return false, apperrors.WithMetadata(apperrors.CodeExecutionCharacterMismatch,
			"execution belongs to another character", map[string]string{"characterId": characterID})
	}
	if e.Phase != PhaseAwaitingInput {
		return false, e.invalidPhase(PhaseSkillCheckPending)
	}

	e.UserApproach = approach
	e.Phase = PhaseSkillCheckPending
	e.UpdatedAt = now.UTC()
	return len(approach) >= autoJudgmentApproachLength, nil
}

// CanResolve reports whether characterID may resolve the execution right now.
// Callers with side effects check this before rolling or mutating anything.
func (e *Execution) CanResolve(characterID string) error {
	if strings.TrimSpace(characterID) == "" {
		return apperrors.WithMetadata(apperrors.CodeExecutionFieldRequired,
			"character id is required", map[string]string{"characterId": "required"})
	}
	if characterID != e.CharacterID {
		return apperrors.WithMetadata(apperrors.CodeExecutionCharacterMismatch,
			"execution belongs to another character", map[string]string{"characterId": characterID})
	}
	if e.Phase != PhaseSkillCheckPending {
		return e.invalidPhase(PhaseResolved)
	}
	return nil
}

// Resolve records the outcome and moves the execution to its terminal phase.
func (e *Execution) Resolve(characterID string, outcome Outcome, now time.Time) error {
	if err := e.CanResolve(characterID); err != nil {
		return err
	}

	e.Result = &outcome
	e.Phase = PhaseResolved
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Execution) invalidPhase(wanted Phase) error {
	return apperrors.WithMetadata(apperrors.CodeExecutionInvalidPhase,
		"execution phase does not permit this transition",
		map[string]string{"phase": string(e.Phase), "attempted": string(wanted)})
}
