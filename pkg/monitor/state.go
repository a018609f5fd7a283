package monitor

import "fmt"

// State is the control status of a monitored process.
type State string

const (
	// InControl means no unacknowledged rule violation exists.
	InControl = State("in_control")

	// OutOfControl means at least one rule tripped on a recent point and no
	// operator has acknowledged it yet.
	OutOfControl = State("out_of_control")

	// Acknowledged means an operator has seen the out-of-control signal.  The
	// monitor returns to InControl on the next clean observation, or back to
	// OutOfControl if a new violation arrives.
	Acknowledged = State("acknowledged")
)

// TransitionNotAllowed is returned when a requested state change is not in the
// allowable transition table.
type TransitionNotAllowed struct {
	From State
	To   State
}

func (e TransitionNotAllowed) Error() string {
	return fmt.Sprintf("cannot transition from state %s to %s", e.From, e.To)
}

// machine is a small fixed-topology state machine over the three control states.
// It is not safe for concurrent use; the owning Monitor serializes access.
type machine struct {
	current   State
	allowable map[State][]State
}

func newMachine() *machine {
	return &machine{
		current: InControl,
		allowable: map[State][]State{
			InControl:    {OutOfControl},
			OutOfControl: {Acknowledged, InControl},
			Acknowledged: {InControl, OutOfControl},
		},
	}
}

func (m *machine) state() State {
	return m.current
}

func (m *machine) allowed(from, to State) bool {
	for _, s := range m.allowable[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (m *machine) transition(to State) error {
	if to == m.current {
		return nil
	}
	if !m.allowed(m.current, to) {
		return TransitionNotAllowed{From: m.current, To: to}
	}
	m.current = to
	return nil
}

func (m *machine) reset() {
	m.current = InControl
}
