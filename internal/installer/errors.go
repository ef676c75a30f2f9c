package installer

import (
	"errors"

	"agent-bootstrap/internal/target"
)

// Failure taxonomy. Stage errors wrap one of these and are classified with errors.Is.
var (
	// ErrInputValidation is fatal: the process exits before any target runs.
	ErrInputValidation = errors.New("input validation failed")
	// ErrInvalidChoice ends the run with nothing done.
	ErrInvalidChoice = target.ErrInvalidChoice
	// ErrUserCancelled is returned when the operator declines to replace an existing install.
	ErrUserCancelled = errors.New("cancelled by operator")
	ErrDownload      = errors.New("download failed")
	// ErrInstallExecution covers a failed silent install and a binary missing afterwards.
	ErrInstallExecution = errors.New("install failed")
	// ErrRegistration is only surfaced in strict mode.
	ErrRegistration = errors.New("registration failed")
)

// Status is the coarse result of one run.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what a run reports to the operator. It is never persisted.
type Outcome struct {
	Status Status
	Reason string
	Err    error
	State  State // last state the run reached
}

func success() Outcome {
	return Outcome{Status: StatusSuccess, State: StateDone}
}

// Skipped builds a skipped outcome.
func Skipped(reason string, err error) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason, Err: err}
}

// Failed builds a failed outcome.
func Failed(reason string, err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, Err: err, State: StateAborted}
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Status.String()
	}
	return o.Status.String() + ": " + o.Reason
}
