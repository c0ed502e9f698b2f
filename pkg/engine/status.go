package engine

import (
	"fmt"
)

// TypeStatus is the state of a resource type within a walk.
// Pending moves to exactly one of the terminal states.
type TypeStatus string

const (
	// TypeStatusPending indicates the type has not been processed yet.
	TypeStatusPending TypeStatus = "pending"

	// TypeStatusSkipped indicates the type was excluded by policy, or an ancestor
	// was excluded or failed. No remote call was made for it.
	TypeStatusSkipped TypeStatus = "skipped"

	// TypeStatusDisabled indicates the feature gate for the type returned false.
	// This is a valid, empty inventory.
	TypeStatusDisabled TypeStatus = "disabled"

	// TypeStatusEnumerated indicates the type was enumerated (possibly zero instances).
	TypeStatusEnumerated TypeStatus = "enumerated"

	// TypeStatusFailed indicates enumeration failed with an error.
	TypeStatusFailed TypeStatus = "failed"
)

// IsTerminal returns true if the status is final.
func (s TypeStatus) IsTerminal() bool {
	return s == TypeStatusSkipped || s == TypeStatusDisabled ||
		s == TypeStatusEnumerated || s == TypeStatusFailed
}

// Validate checks if the type status is valid.
func (s TypeStatus) Validate() error {
	switch s {
	case TypeStatusPending, TypeStatusSkipped, TypeStatusDisabled,
		TypeStatusEnumerated, TypeStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid type status: %s", s)
	}
}

// RunStatus represents the overall status of an inventory run.
type RunStatus string

const (
	// RunStatusRunning indicates the run is in progress.
	RunStatusRunning RunStatus = "running"

	// RunStatusSucceeded indicates no type failed.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusPartial indicates some types failed and some were enumerated.
	RunStatusPartial RunStatus = "partial"

	// RunStatusFailed indicates the run failed.
	RunStatusFailed RunStatus = "failed"
)

// IsTerminal returns true if the run status represents a final state.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusPartial || s == RunStatusFailed
}

// Validate checks if the run status is valid.
func (s RunStatus) Validate() error {
	switch s {
	case RunStatusRunning, RunStatusSucceeded, RunStatusPartial, RunStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid run status: %s", s)
	}
}

// finalStatus derives the run status from its summary.
func finalStatus(summary RunSummary, aborted bool) RunStatus {
	switch {
	case aborted:
		return RunStatusFailed
	case summary.Failed == 0:
		return RunStatusSucceeded
	case summary.Enumerated+summary.Disabled > 0:
		return RunStatusPartial
	default:
		return RunStatusFailed
	}
}
