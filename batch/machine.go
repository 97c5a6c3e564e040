package batch

import "github.com/elinasafina23/EBR/errors"

// Effect describes what a transition into a target status does beyond the
// status write itself.
type Effect struct {
	// SetStartedAt records the transition timestamp as started_at.
	SetStartedAt bool

	// SetCompletedAt records the transition timestamp as completed_at.
	SetCompletedAt bool

	// PublishRemote requires the full record to be published to QMIB after
	// the local write commits. Publish failure propagates to the caller;
	// the local write is not rolled back.
	PublishRemote bool
}

// effects is the transition table keyed by target status. Every member of
// the enumeration has an entry; there is no implicit default.
var effects = map[Status]Effect{
	StatusPlanned:    {},
	StatusInProgress: {SetStartedAt: true},
	StatusCompleted:  {SetCompletedAt: true, PublishRemote: true},
	StatusHalted:     {SetCompletedAt: true},
	StatusAborted:    {SetCompletedAt: true},
}

// forward enumerates the transitions allowed in strict mode:
// planned -> in_progress -> {completed|halted|aborted}.
var forward = map[Status]map[Status]bool{
	StatusPlanned:    {StatusInProgress: true},
	StatusInProgress: {StatusCompleted: true, StatusHalted: true, StatusAborted: true},
	StatusCompleted:  {},
	StatusHalted:     {},
	StatusAborted:    {},
}

// Machine owns the batch lifecycle transition rules.
//
// In permissive mode (the default) every (from, to) pair is accepted,
// supporting manual correction workflows; strict mode enforces forward-only
// progression.
type Machine struct {
	strict bool
}

// NewMachine returns a permissive lifecycle machine.
func NewMachine() *Machine {
	return &Machine{}
}

// NewStrictMachine returns a machine that enforces forward-only transitions.
func NewStrictMachine() *Machine {
	return &Machine{strict: true}
}

// Strict reports whether forward-only enforcement is active.
func (m *Machine) Strict() bool {
	return m.strict
}

// Transition validates a requested transition and returns the effect bound
// to the target status. Unknown targets are rejected for every mode; strict
// mode additionally rejects non-forward transitions with ErrInvariant.
func (m *Machine) Transition(from, to Status) (Effect, error) {
	effect, ok := effects[to]
	if !ok {
		return Effect{}, errors.Wrapf(errors.ErrInvalidRequest, "unknown batch status %q", to)
	}

	if m.strict && !forward[from][to] {
		return Effect{}, errors.NewInvariantf("transition %s -> %s not allowed in strict mode", from, to)
	}

	return effect, nil
}
