// Package pipeline owns legal stage transitions for a deal. The machine is
// pure and synchronous: it mutates the in-memory deal and hands back the
// activity entry; persistence is the caller's concern.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

var (
	// ErrUnknownStage is returned for a stage value outside the enum.
	ErrUnknownStage = errors.New("unknown pipeline stage")

	// ErrTerminalStage is returned when a transition would leave a stage
	// that admits no further progress.
	ErrTerminalStage = errors.New("deal is in a terminal stage")

	// ErrBackwardTransition is returned in strict mode when the target
	// stage precedes the current one.
	ErrBackwardTransition = errors.New("backward stage transition not allowed")
)

// Machine validates and records stage transitions.
//
// In permissive mode (the default) any move between pipeline stages is
// allowed, which gives sales operators manual-override flexibility. Strict
// mode enforces forward-only order and seals GoLive against reordering;
// marking a live deal Lost (churn) stays possible. Lost is terminal in
// both modes.
type Machine struct {
	strict bool
}

// New creates a stage machine. strict enables forward-only ordering.
func New(strict bool) *Machine {
	return &Machine{strict: strict}
}

// InitialStage is where every new deal starts.
func InitialStage() domain.Stage {
	return domain.StageProspecting
}

// Transition moves the deal to newStage, stamps StageUpdatedAt, and returns
// the activity entry to append. Re-applying the current stage is not a
// silent no-op: it still produces exactly one entry, so the log reflects
// every operator action.
func (m *Machine) Transition(deal *domain.Deal, newStage domain.Stage, actor string) (domain.ActivityEntry, error) {
	if !newStage.Valid() {
		return domain.ActivityEntry{}, fmt.Errorf("%w: %q", ErrUnknownStage, newStage)
	}

	from := deal.Stage
	if from == domain.StageLost {
		return domain.ActivityEntry{}, fmt.Errorf("%w: %s", ErrTerminalStage, from)
	}

	if m.strict && newStage != domain.StageLost {
		if from == domain.StageGoLive {
			return domain.ActivityEntry{}, fmt.Errorf("%w: %s", ErrTerminalStage, from)
		}
		if newStage.Index() < from.Index() {
			return domain.ActivityEntry{}, fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, from, newStage)
		}
	}

	now := time.Now().UTC()
	deal.Stage = newStage
	deal.StageUpdatedAt = now

	entry := domain.ActivityEntry{
		DealID:    deal.ID,
		Action:    fmt.Sprintf("Stage changed from %s to %s", from, newStage),
		Actor:     actor,
		CreatedAt: now,
	}
	return entry, nil
}
