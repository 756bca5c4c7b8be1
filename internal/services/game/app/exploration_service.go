package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lanternworks/expedition/internal/core/check"
	"github.com/lanternworks/expedition/internal/core/dice"
	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/platform/id"
	"github.com/lanternworks/expedition/internal/services/game/app/narrative"
	"github.com/lanternworks/expedition/internal/services/game/domain/exploration"
	"github.com/lanternworks/expedition/internal/services/game/storage"
	"github.com/lanternworks/expedition/internal/telemetry"
)

// defaultTargetNumber is the difficulty used when the caller supplies none.
const defaultTargetNumber = 12

// ExplorationService runs the exploration action lifecycle.
type ExplorationService struct {
	stores      Stores
	emitter     *telemetry.Emitter
	narrator    narrative.Generator
	clock       func() time.Time
	idGenerator func() (string, error)

	onChange func(sessionID string)
}

// NewExplorationService creates an ExplorationService with default
// dependencies. A nil narrator falls back to deterministic narration.
func NewExplorationService(stores Stores, emitter *telemetry.Emitter, narrator narrative.Generator) *ExplorationService {
	if narrator == nil {
		narrator = narrative.Static{}
	}
	return &ExplorationService{
		stores:      stores,
		emitter:     emitter,
		narrator:    narrator,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// OnChange registers a hook invoked after discoveries made through skill
// checks.
func (s *ExplorationService) OnChange(hook func(sessionID string)) {
	s.onChange = hook
}

// StartInput carries the fields needed to begin an exploration action.
type StartInput struct {
	SessionID         string `json:"sessionId"`
	CharacterID       string `json:"characterId"`
	TargetEntityID    string `json:"targetEntityId"`
	ActionType        string `json:"actionType"`
	CustomDescription string `json:"customDescription,omitempty"`
}

// Start begins a new exploration action execution.
func (s *ExplorationService) Start(ctx context.Context, in StartInput) (exploration.Execution, error) {
	if s == nil || s.stores.Executions == nil {
		return exploration.Execution{}, apperrors.New(apperrors.CodeStorage, "execution store is not configured")
	}
	actionType, err := exploration.ParseActionType(in.ActionType)
	if err != nil {
		return exploration.Execution{}, err
	}
	executionID, err := s.idGenerator()
	if err != nil {
		return exploration.Execution{}, apperrors.Wrap(apperrors.CodeStorage, "generate execution id", err)
	}

	execution, err := exploration.Start(executionID, in.SessionID, in.CharacterID, in.TargetEntityID, actionType, in.CustomDescription, s.clock().UTC())
	if err != nil {
		return exploration.Execution{}, err
	}
	if err := s.stores.Executions.PutExecution(ctx, execution); err != nil {
		return exploration.Execution{}, apperrors.Wrap(apperrors.CodeStorage, "put execution", err)
	}
	s.emitter.Emit(ctx, execution.SessionID, telemetry.KindActionStarted, map[string]string{
		"executionId": execution.ID,
		"actionType":  string(actionType),
	})
	return execution, nil
}

// UserInput carries a player's free-text approach for an execution awaiting
// input.
type UserInput struct {
	ExecutionID string `json:"executionId"`
	CharacterID string `json:"characterId"`
	Approach    string `json:"approach"`
}

// InputResult reports whether the approach was substantial enough to trigger
// automatic judgment.
type InputResult struct {
	Execution         exploration.Execution `json:"execution"`
	JudgmentTriggered bool                  `json:"judgmentTriggered"`
}

// ProvideUserInput records the player's approach and advances the execution
// to the skill-check phase.
func (s *ExplorationService) ProvideUserInput(ctx context.Context, in UserInput) (InputResult, error) {
	execution, err := s.get(ctx, in.ExecutionID)
	if err != nil {
		return InputResult{}, err
	}
	judgmentTriggered, err := execution.ProvideInput(in.CharacterID, in.Approach, s.clock().UTC())
	if err != nil {
		return InputResult{}, err
	}
	if err := s.stores.Executions.PutExecution(ctx, execution); err != nil {
		return InputResult{}, apperrors.Wrap(apperrors.CodeStorage, "put execution", err)
	}
	return InputResult{Execution: execution, JudgmentTriggered: judgmentTriggered}, nil
}

// SkillCheckInput carries the skill check parameters for a pending execution.
type SkillCheckInput struct {
	ExecutionID  string `json:"executionId"`
	CharacterID  string `json:"characterId"`
	SkillType    string `json:"skillType"`
	Modifier     int    `json:"modifier"`
	TargetNumber int    `json:"targetNumber,omitempty"`
	Seed         int64  `json:"seed,omitempty"`
}

// ExecuteSkillCheck rolls the check, resolves the execution, and on success
// marks the target entity discovered wherever it is mapped in the session.
func (s *ExplorationService) ExecuteSkillCheck(ctx context.Context, in SkillCheckInput) (exploration.Execution, error) {
	if strings.TrimSpace(in.SkillType) == "" {
		return exploration.Execution{}, apperrors.New(apperrors.CodeSkillTypeRequired, "skill type is required")
	}
	execution, err := s.get(ctx, in.ExecutionID)
	if err != nil {
		return exploration.Execution{}, err
	}
	if err := execution.CanResolve(in.CharacterID); err != nil {
		return exploration.Execution{}, err
	}

	targetNumber := in.TargetNumber
	if targetNumber <= 0 {
		targetNumber = defaultTargetNumber
	}
	seed := in.Seed
	if seed == 0 {
		seed = s.clock().UnixNano()
	}
	rolled, err := dice.RollDice(dice.Request{
		Dice: []dice.Spec{{Sides: 20, Count: 1}},
		Seed: seed,
	})
	if err != nil {
		return exploration.Execution{}, apperrors.Wrap(apperrors.CodeStorage, "roll dice", err)
	}
	total := rolled.Total + in.Modifier
	checked := check.Check(total, targetNumber)
	outcome := exploration.Outcome{
		Success:      checked.Success,
		SkillType:    strings.TrimSpace(in.SkillType),
		RollTotal:    total,
		TargetNumber: targetNumber,
		Margin:       checked.Margin,
	}

	var discoveredName string
	if outcome.Success {
		discoveredName = s.discoverTarget(ctx, execution)
	}
	outcome.Narrative = s.narrate(ctx, execution, outcome, discoveredName)

	if err := execution.Resolve(in.CharacterID, outcome, s.clock().UTC()); err != nil {
		return exploration.Execution{}, err
	}
	if err := s.stores.Executions.PutExecution(ctx, execution); err != nil {
		return exploration.Execution{}, apperrors.Wrap(apperrors.CodeStorage, "put execution", err)
	}
	s.emitter.Emit(ctx, execution.SessionID, telemetry.KindActionResolved, map[string]string{
		"executionId": execution.ID,
		"success":     strconv.FormatBool(outcome.Success),
		"skillType":   outcome.SkillType,
	})
	return execution, nil
}

// Get returns one execution by id.
func (s *ExplorationService) Get(ctx context.Context, executionID string) (exploration.Execution, error) {
	return s.get(ctx, executionID)
}

func (s *ExplorationService) get(ctx context.Context, executionID string) (exploration.Execution, error) {
	if s == nil || s.stores.Executions == nil {
		return exploration.Execution{}, apperrors.New(apperrors.CodeStorage, "execution store is not configured")
	}
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		return exploration.Execution{}, apperrors.WithMetadata(apperrors.CodeExecutionFieldRequired, "execution id is required", map[string]string{"executionId": "required"})
	}
	execution, err := s.stores.Executions.GetExecution(ctx, executionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return exploration.Execution{}, apperrors.WithMetadata(apperrors.CodeNotFound, "execution not found", map[string]string{"executionId": executionID})
		}
		return exploration.Execution{}, apperrors.Wrap(apperrors.CodeStorage, "get execution", err)
	}
	return execution, nil
}

// discoverTarget marks the target entity discovered on its session mappings.
// Failures are swallowed; discovery bookkeeping must not fail the check.
func (s *ExplorationService) discoverTarget(ctx context.Context, execution exploration.Execution) string {
	if s.stores.Mappings == nil {
		return ""
	}
	mappings, err := s.stores.Mappings.ListMappingsBySession(ctx, execution.SessionID)
	if err != nil {
		return ""
	}
	now := s.clock().UTC()
	found := false
	for _, m := range mappings {
		if m.EntityID != execution.TargetEntityID || m.Discovered() {
			continue
		}
		if _, err := s.stores.Mappings.MarkDiscovered(ctx, m.ID, now); err == nil {
			found = true
		}
	}
	if found && s.onChange != nil {
		s.onChange(execution.SessionID)
	}
	return s.entityName(ctx, execution.SessionID, execution.TargetEntityID)
}

func (s *ExplorationService) entityName(ctx context.Context, sessionID, entityID string) string {
	if s.stores.Pools == nil {
		return entityID
	}
	pool, err := s.stores.Pools.GetPool(ctx, sessionID)
	if err != nil {
		return entityID
	}
	if e, ok := pool.Find(entityID); ok {
		return e.Name
	}
	return entityID
}

func (s *ExplorationService) narrate(ctx context.Context, execution exploration.Execution, outcome exploration.Outcome, discoveredName string) string {
	text, err := s.narrator.Narrate(ctx, narrative.Request{
		ActionType:     string(execution.ActionType),
		TargetName:     s.entityName(ctx, execution.SessionID, execution.TargetEntityID),
		Approach:       execution.UserApproach,
		Success:        outcome.Success,
		Margin:         outcome.Margin,
		DiscoveredName: discoveredName,
	})
	if err != nil {
		fallback, _ := narrative.Static{}.Narrate(ctx, narrative.Request{
			ActionType: string(execution.ActionType),
			Success:    outcome.Success,
		})
		return fallback
	}
	return text
}
