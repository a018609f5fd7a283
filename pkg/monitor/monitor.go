// Package monitor ties a chart engine, a pattern rule set, and a control-state
// machine into a long-running process watcher.  Observations flow in through
// Observe; violations raise events on an optional bus and move the monitor through
// the in-control / out-of-control / acknowledged lifecycle.
package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"

	"github.com/spckit/spc/pkg/chart"
	"github.com/spckit/spc/pkg/eventbus"
	"github.com/spckit/spc/pkg/metric"
	"github.com/spckit/spc/pkg/rules"
)

// Monitor wraps one chart engine with rule evaluation and state tracking.  All
// methods are safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	name    string
	engine  chart.Engine
	rules   []rules.Rule
	machine *machine
	bus     *eventbus.Bus
	topic   eventbus.Topic
	log     *slog.Logger

	observed   *metric.ConcurrentCounter
	violations *metric.ConcurrentCounter
	resets     *metric.ConcurrentCounter
}

// Option configures a Monitor at construction.
type Option func(*Monitor) error

// WithRules replaces the default rule set.  Passing no rules disables pattern
// evaluation entirely; the monitor then never leaves the in-control state.
func WithRules(rs ...rules.Rule) Option {
	return func(m *Monitor) error {
		m.rules = rs
		return nil
	}
}

// WithBus attaches an event bus; lifecycle events are dispatched on the given topic
// as well as the bus default topic.
func WithBus(b *eventbus.Bus, topic eventbus.Topic) Option {
	return func(m *Monitor) error {
		if b == nil {
			return fmt.Errorf("monitor: nil event bus")
		}
		m.bus = b
		m.topic = topic
		return nil
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) error {
		if l == nil {
			return fmt.Errorf("monitor: nil logger")
		}
		m.log = l
		return nil
	}
}

// DefaultLogger returns the logger monitors use when none is configured: colorized
// key-value output on stderr at info level.
func DefaultLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
}

// New builds a monitor around an already-constructed chart engine.  The default
// rule set is the full canonical one.
func New(name string, engine chart.Engine, opts ...Option) (*Monitor, error) {
	if name == "" {
		return nil, fmt.Errorf("monitor: name must not be empty")
	}
	if engine == nil {
		return nil, fmt.Errorf("monitor: nil chart engine")
	}
	m := &Monitor{
		name:       name,
		engine:     engine,
		rules:      rules.DefaultRules(),
		machine:    newMachine(),
		observed:   metric.NewConcurrentCounter(),
		violations: metric.NewConcurrentCounter(),
		resets:     metric.NewConcurrentCounter(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.log == nil {
		m.log = DefaultLogger()
	}
	m.log = m.log.With("monitor", name, "chart", string(engine.Type()))
	return m, nil
}

// Name returns the monitor's identifying name.
func (m *Monitor) Name() string {
	return m.name
}

// Engine exposes the underlying chart engine for read access to limits and series.
// Mutate only through Observe and ResetBaseline.
func (m *Monitor) Engine() chart.Engine {
	return m.engine
}

// State returns the current control state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.state()
}

// Observe feeds one subgroup (or observation) to the engine, evaluates the rule set,
// and advances the control state.  Only violations whose window ends at the newest
// point count as fresh signals; older windows were already reported when their final
// point arrived.  The returned state is the state after the observation.
func (m *Monitor) Observe(values ...float64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	derived, err := m.engine.AddData(values...)
	if err != nil {
		return m.machine.state(), err
	}
	m.observed.Add(1)

	report, err := m.engine.ApplyRules(m.rules...)
	if err != nil {
		return m.machine.state(), err
	}

	newest := len(m.engine.Standardized()) - 1
	var fresh []rules.Violation
	for _, v := range report.All() {
		if v.WindowEnd == newest {
			fresh = append(fresh, v)
		}
	}

	switch {
	case len(fresh) > 0:
		m.violations.Add(uint(len(fresh)))
		if err := m.machine.transition(OutOfControl); err != nil {
			return m.machine.state(), err
		}
		for _, v := range fresh {
			m.log.Warn("rule violation",
				"rule", v.Rule.String(),
				"value", derived,
				"ucl", m.engine.UCL(),
				"lcl", m.engine.LCL(),
			)
			m.dispatch(eventbus.SignalRaised, v)
		}
		m.dispatch(eventbus.StateChanged, OutOfControl)

	case m.machine.state() == Acknowledged:
		// a clean point after acknowledgement closes the incident
		if err := m.machine.transition(InControl); err != nil {
			return m.machine.state(), err
		}
		m.log.Info("signal cleared", "value", derived)
		m.dispatch(eventbus.StateChanged, InControl)

	default:
		m.log.Debug("observation accepted", "value", derived, "cl", m.engine.CL())
	}

	return m.machine.state(), nil
}

// Ack records an operator acknowledgement of an out-of-control signal.  It fails
// with TransitionNotAllowed when the monitor is not out of control.
func (m *Monitor) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.machine.transition(Acknowledged); err != nil {
		return err
	}
	m.log.Info("signal acknowledged")
	m.dispatch(eventbus.SignalAcknowledged, nil)
	m.dispatch(eventbus.StateChanged, Acknowledged)
	return nil
}

// ResetBaseline discards all chart history and returns the monitor to the
// in-control state so a fresh baseline can be collected.
func (m *Monitor) ResetBaseline() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.engine.Reset()
	m.machine.reset()
	m.resets.Add(1)
	m.log.Info("baseline reset")
	m.dispatch(eventbus.BaselineReset, nil)
	m.dispatch(eventbus.StateChanged, InControl)
}

// Metrics returns the monitor's lifetime tallies.
func (m *Monitor) Metrics() map[string]int {
	return map[string]int{
		"observed":   m.observed.Value(),
		"violations": m.violations.Value(),
		"resets":     m.resets.Value(),
	}
}

func (m *Monitor) dispatch(t eventbus.EventType, data interface{}) {
	if m.bus == nil {
		return
	}
	m.bus.Dispatch(eventbus.Event{Type: t, Chart: m.name, Data: data}, m.topic)
}
