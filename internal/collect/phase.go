// SPDX-License-Identifier: MPL-2.0

package collect

const (
	// PhaseDeclaring accepts declarations.
	PhaseDeclaring Phase = iota
	// PhaseResolving is set while a pass runs.
	PhaseResolving
	// PhaseResolved means the last pass succeeded.
	PhaseResolved
	// PhaseFailed means the last pass failed. A new pass may be started.
	PhaseFailed
)

// Phase is the lifecycle state of a Project.
type Phase int32

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDeclaring:
		return "declaring"
	case PhaseResolving:
		return "resolving"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Frozen reports whether declarations are closed in this phase.
func (p Phase) Frozen() bool { return p != PhaseDeclaring }
