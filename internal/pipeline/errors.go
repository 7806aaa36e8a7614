package pipeline

import "fmt"

// Phases of a resolution, in execution order.
const (
	PhaseFetch    = "fetch"
	PhaseDiscover = "discover"
	PhaseVerify   = "verify"
	PhaseLoad     = "load"
	PhaseAssemble = "assemble"
	PhaseFinalize = "finalize"
)

// PhaseError is a fatal failure of one resolution phase. The cause stays
// reachable through errors.Is and errors.As.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseError(phase string, err error) error {
	return &PhaseError{Phase: phase, Err: err}
}
