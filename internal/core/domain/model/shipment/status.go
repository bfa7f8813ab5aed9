package shipment

import (
	"fmt"

	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"
)

// Status is the coarse, derived lifecycle label of a shipment, computed from
// the fine-grained states of its custody steps. It is never stored as a
// system of record: any holder of all step states can re-derive it.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPending means the chain has not started moving: no steps yet, or
	// every present step is still queued.
	StatusPending

	// StatusInitialized means at least one step advanced past acceptance but
	// nothing is moving or completed yet.
	StatusInitialized

	// StatusInTransit means the parcel is moving: some step is active or some
	// hop already completed.
	StatusInTransit

	// StatusDelivered means every step of the chain completed.
	StatusDelivered

	// StatusAborted means some step reached a terminal abort state
	// (Cancelled or Refunded), which overrides all other progress.
	StatusAborted

	// StatusFailed means some step was rejected, which overrides all
	// non-abort progress.
	StatusFailed
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:     "Unknown",
		StatusPending:     "Pending",
		StatusInitialized: "Initialized",
		StatusInTransit:   "InTransit",
		StatusDelivered:   "Delivered",
		StatusAborted:     "Aborted",
		StatusFailed:      "Failed",
	}
}

// String returns the human-readable name of the status.
// Returns "Unknown" for invalid values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s <= StatusUnknown || s > StatusFailed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// Snapshot is an immutable, ordered view of a shipment's per-step states.
// Position i holds the state of the step at chain index i; a nil entry means
// the step has not been started (not yet written by its producer).
//
// Snapshot methods are pure: the same snapshot always derives the same
// status, progress, and current index. A full O(N) scan runs on every
// derivation because a terminal state at any index flips the whole result;
// N is a single-digit hop count, so this is acceptable.
type Snapshot struct {
	states []*step.State
}

// NewSnapshot builds a snapshot from an ordered state list. The list is
// copied, so later mutation of the argument does not leak into the snapshot.
func NewSnapshot(states []*step.State) Snapshot {
	copied := make([]*step.State, len(states))
	for i, st := range states {
		if st != nil {
			v := *st
			copied[i] = &v
		}
	}
	return Snapshot{states: copied}
}

// SnapshotOfSteps builds a snapshot from loaded steps, placing each step's
// state at its chain index. Indexes missing from the list stay absent.
func SnapshotOfSteps(steps []*step.Step) Snapshot {
	maxIndex := -1
	for _, s := range steps {
		if s.Index() > maxIndex {
			maxIndex = s.Index()
		}
	}

	states := make([]*step.State, maxIndex+1)
	for _, s := range steps {
		st := s.State()
		states[s.Index()] = &st
	}
	return Snapshot{states: states}
}

// Len returns the total step count N of the snapshot.
func (s Snapshot) Len() int {
	return len(s.states)
}

// Status derives the shipment status. Priority order, first match wins:
//
//  1. no steps -> Pending
//  2. any terminal-abort step -> Aborted; else any rejected step -> Failed
//  3. first step absent -> Pending
//  4. all steps completed -> Delivered
//  5. any completed or active step -> InTransit
//  6. any step past acceptance -> Initialized
//  7. otherwise Pending
func (s Snapshot) Status() Status {
	n := len(s.states)
	if n == 0 {
		return StatusPending
	}

	// Terminal states anywhere in the chain override all other progress.
	for _, st := range s.states {
		if st != nil && st.IsTerminalAbort() {
			return StatusAborted
		}
	}
	for _, st := range s.states {
		if st != nil && st.IsTerminalFail() {
			return StatusFailed
		}
	}

	if s.states[0] == nil {
		return StatusPending
	}

	completed := 0
	hasActive := false
	hasInitialized := false
	for _, st := range s.states {
		if st == nil {
			continue
		}
		if st.IsCompleted() {
			completed++
		}
		if st.IsActive() {
			hasActive = true
		}
		if *st != step.Pending && *st != step.Accepted {
			hasInitialized = true
		}
	}

	switch {
	case completed == n:
		return StatusDelivered
	case completed > 0 || hasActive:
		return StatusInTransit
	case hasInitialized:
		return StatusInitialized
	default:
		return StatusPending
	}
}

// Progress returns the percentage of completed steps, 0 for an empty chain.
func (s Snapshot) Progress() float64 {
	n := len(s.states)
	if n == 0 {
		return 0
	}

	completed := 0
	for _, st := range s.states {
		if st != nil && st.IsCompleted() {
			completed++
		}
	}
	return float64(completed) / float64(n) * 100
}

// CurrentStepIndex returns the index of the first step that is absent or not
// yet completed (including steps stuck in a terminal state), or N when every
// step completed.
func (s Snapshot) CurrentStepIndex() int {
	for i, st := range s.states {
		if st == nil || !st.IsCompleted() {
			return i
		}
	}
	return len(s.states)
}

// IsFullyCompleted reports whether every step is present and completed.
// An empty chain is not considered completed.
func (s Snapshot) IsFullyCompleted() bool {
	if len(s.states) == 0 {
		return false
	}
	for _, st := range s.states {
		if st == nil || !st.IsCompleted() {
			return false
		}
	}
	return true
}
