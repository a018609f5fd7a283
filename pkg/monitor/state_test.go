package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	tt := []struct {
		name string
		from State
		to   State
		ok   bool
	}{
		{name: "signal raised", from: InControl, to: OutOfControl, ok: true},
		{name: "signal acknowledged", from: OutOfControl, to: Acknowledged, ok: true},
		{name: "clears without ack", from: OutOfControl, to: InControl, ok: true},
		{name: "clears after ack", from: Acknowledged, to: InControl, ok: true},
		{name: "re-trips after ack", from: Acknowledged, to: OutOfControl, ok: true},
		{name: "cannot ack while in control", from: InControl, to: Acknowledged, ok: false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine()
			m.current = tc.from
			err := m.transition(tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, m.state())
				return
			}
			assert.ErrorAs(t, err, &TransitionNotAllowed{})
			assert.Equal(t, tc.from, m.state())
		})
	}
}

func TestMachineSelfTransitionIsNoop(t *testing.T) {
	m := newMachine()
	require.NoError(t, m.transition(InControl))
	assert.Equal(t, InControl, m.state())
}

func TestMachineReset(t *testing.T) {
	m := newMachine()
	require.NoError(t, m.transition(OutOfControl))
	m.reset()
	assert.Equal(t, InControl, m.state())
}
