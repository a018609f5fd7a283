package monitor

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spckit/spc/pkg/chart"
	"github.com/spckit/spc/pkg/eventbus"
	"github.com/spckit/spc/pkg/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// individualsMonitor returns a monitor over an Individuals chart with a stable
// baseline of 20 observations alternating around 10.
func individualsMonitor(t *testing.T, opts ...Option) *Monitor {
	t.Helper()
	engine, err := chart.New(chart.Individuals, 1)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(quietLogger()), WithRules(rules.Beyond3Sigma())}, opts...)
	m, err := New("widget-line", engine, opts...)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		v := 9.5
		if i%2 == 1 {
			v = 10.5
		}
		state, err := m.Observe(v)
		require.NoError(t, err)
		require.Equal(t, InControl, state)
	}
	return m
}

func TestMonitorLifecycle(t *testing.T) {
	m := individualsMonitor(t)

	// a large excursion trips the beyond-sigma rule
	state, err := m.Observe(30)
	require.NoError(t, err)
	assert.Equal(t, OutOfControl, state)
	assert.Equal(t, OutOfControl, m.State())

	require.NoError(t, m.Ack())
	assert.Equal(t, Acknowledged, m.State())

	// a clean observation after acknowledgement closes the incident
	state, err = m.Observe(10.5)
	require.NoError(t, err)
	assert.Equal(t, InControl, state)

	metrics := m.Metrics()
	assert.Equal(t, 22, metrics["observed"])
	assert.Equal(t, 1, metrics["violations"])
	assert.Equal(t, 0, metrics["resets"])
}

func TestMonitorAckRequiresSignal(t *testing.T) {
	m := individualsMonitor(t)
	err := m.Ack()
	assert.ErrorAs(t, err, &TransitionNotAllowed{})
	assert.Equal(t, InControl, m.State())
}

func TestMonitorResetBaseline(t *testing.T) {
	m := individualsMonitor(t)
	_, err := m.Observe(30)
	require.NoError(t, err)
	require.Equal(t, OutOfControl, m.State())

	m.ResetBaseline()
	assert.Equal(t, InControl, m.State())
	assert.Len(t, m.Engine().Standardized(), 0)
	assert.Equal(t, 1, m.Metrics()["resets"])
}

func TestMonitorRejectedObservationKeepsState(t *testing.T) {
	m := individualsMonitor(t)
	_, err := m.Observe(1, 2)
	assert.ErrorIs(t, err, chart.ErrSampleSizeMismatch)
	assert.Equal(t, InControl, m.State())
	assert.Equal(t, 20, m.Metrics()["observed"])
}

func TestMonitorDispatchesEvents(t *testing.T) {
	bus := eventbus.New()
	ch, _ := bus.Subscribe()

	m := individualsMonitor(t, WithBus(bus, eventbus.Topic("widget-line")))
	_, err := m.Observe(30)
	require.NoError(t, err)

	deadline := time.After(time.Second)
	var raised bool
	for !raised {
		select {
		case e := <-ch:
			if e.Type == eventbus.SignalRaised {
				assert.Equal(t, "widget-line", e.Chart)
				v, ok := e.Data.(rules.Violation)
				require.True(t, ok)
				assert.Equal(t, rules.Beyond3Sigma(), v.Rule)
				raised = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for signal event")
		}
	}
}

func TestMonitorConstruction(t *testing.T) {
	engine, err := chart.New(chart.C, 1)
	require.NoError(t, err)

	_, err = New("", engine)
	assert.Error(t, err)

	_, err = New("x", nil)
	assert.Error(t, err)

	m, err := New("defect-count", engine)
	require.NoError(t, err)
	assert.Equal(t, "defect-count", m.Name())
	assert.Equal(t, chart.C, m.Engine().Type())
}
