// Package metric provides the storage primitives behind the chart engines: a
// fixed-capacity series with FIFO eviction that bounds memory for long-running
// monitors, logfmt-encoded names identifying charts and signals, and counters for
// monitor bookkeeping.
package metric

import (
	"fmt"
)

// Series is a fixed-capacity ring buffer of observations.  When the series is full,
// recording a new observation evicts the oldest one, so the retained window always
// holds the most recent values in insertion order.  Chart engines use one Series per
// derived statistic to implement the group-count cap.
type Series struct {
	name   Name
	count  int
	values []float64
}

// SeriesOption configures a Series at construction.
type SeriesOption func(s *Series) error

// NewSeries creates a series retaining at most cap observations.
func NewSeries(cap int, opts ...SeriesOption) (*Series, error) {
	if cap <= 0 {
		return nil, fmt.Errorf("series must be initialized with a capacity >= 1")
	}
	s := &Series{
		values: make([]float64, 0, cap),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Record adds a new observation, evicting the oldest retained value when full.
func (s *Series) Record(v float64) {
	switch {
	case len(s.values) < cap(s.values):
		s.values = append(s.values, v)
	default:
		s.values[s.count%cap(s.values)] = v
	}
	s.count++
}

// Values returns a copy of the retained observations in temporal order from oldest
// to most recent.  The result has at most Capacity entries.
func (s *Series) Values() []float64 {
	n := len(s.values)
	out := make([]float64, 0, n)
	switch {
	case s.count <= n:
		out = append(out, s.values...)
	default:
		oldest := s.count % n
		out = append(append(out, s.values[oldest:]...), s.values[:oldest]...)
	}
	return out
}

// Last returns the most recently recorded observation.  The second return is false
// when nothing has been recorded yet.
func (s *Series) Last() (float64, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.values[(s.count-1)%cap(s.values)], true
}

// Len returns the number of retained observations, at most Capacity.
func (s *Series) Len() int {
	return len(s.values)
}

// Count returns the total number of observations ever recorded, including evicted ones.
func (s *Series) Count() int {
	return s.count
}

// Capacity returns the maximum number of retained observations.
func (s *Series) Capacity() int {
	return cap(s.values)
}

// Reset discards all retained observations, keeping the capacity and name.  Used when
// a monitor starts a new baseline.
func (s *Series) Reset() {
	s.values = s.values[:0]
	s.count = 0
}

// Name returns the name of the series and associated metadata.
func (s *Series) Name() string {
	return s.name.String()
}

// WithName sets the name of the series.
func WithName(name string, md map[string]string) SeriesOption {
	return func(s *Series) error {
		if name == "" {
			return fmt.Errorf("series name must be the non-empty string")
		}
		s.name = NewName(name, md)
		return nil
	}
}

// WithValues seeds a series from an existing set of observations, applying the same
// eviction rules as Record.
func WithValues(values []float64) SeriesOption {
	return func(s *Series) error {
		for _, v := range values {
			s.Record(v)
		}
		return nil
	}
}
