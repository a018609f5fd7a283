package eventbus

// EventType tags the kind of monitoring event on the bus so subscribers can filter
// without inspecting the payload.
type EventType string

const (
	// SignalRaised is dispatched when a pattern rule trips on the newest point.
	SignalRaised = EventType("signal_raised")

	// SignalAcknowledged is dispatched when an operator acknowledges an
	// out-of-control condition.
	SignalAcknowledged = EventType("signal_acknowledged")

	// BaselineReset is dispatched when a monitor discards its history to collect a
	// new baseline.
	BaselineReset = EventType("baseline_reset")

	// StateChanged is dispatched on every control-state transition.
	StateChanged = EventType("state_changed")
)

// Event is delivered to every subscriber on the dispatched topics.  Chart carries
// the monitor name so one bus can serve many monitors.
type Event struct {
	Type  EventType
	Chart string
	Data  interface{}
}
