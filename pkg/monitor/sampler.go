package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/spckit/spc/pkg/stat"
)

// Flush converts the raw observations collected in one sampling window into the
// values passed to Monitor.Observe.  Returning nil skips the window.
type Flush func(obs []float64) []float64

// Subgroup passes the window's observations through unchanged, forming one
// subgroup per window.  Use with subgrouped charts when the arrival rate is fixed.
func Subgroup(obs []float64) []float64 {
	return obs
}

// Mean reduces the window to its average, for Individuals and moving charts.
func Mean(obs []float64) []float64 {
	return []float64{stat.Mean(obs)}
}

// Count reduces the window to the number of observations, for C charts counting
// events per fixed interval.
func Count(obs []float64) []float64 {
	return []float64{float64(len(obs))}
}

// Sampler buffers raw observations and feeds them to a monitor once per sampling
// window.  Record is safe to call from many goroutines; empty windows are skipped
// so idle periods do not distort the baseline.
type Sampler struct {
	mu      sync.Mutex
	monitor *Monitor
	flush   Flush
	ticker  *time.Ticker
	obs     []float64
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSampler starts a sampler flushing into the monitor every window.  The returned
// stop function flushes nothing further and blocks until the sampling goroutine
// exits.
func NewSampler(m *Monitor, window time.Duration, flush Flush) (*Sampler, func(), error) {
	if m == nil {
		return nil, nil, fmt.Errorf("monitor: sampler requires a monitor")
	}
	if window <= 0 {
		return nil, nil, fmt.Errorf("monitor: sampling window must be greater than zero")
	}
	if flush == nil {
		flush = Subgroup
	}

	s := &Sampler{
		monitor: m,
		flush:   flush,
		ticker:  time.NewTicker(window),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				s.flushWindow()
			case <-s.done:
				s.ticker.Stop()
				return
			}
		}
	}()

	return s, func() { close(s.done); s.wg.Wait() }, nil
}

// Record buffers one raw observation for the current window.
func (s *Sampler) Record(obs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, obs)
}

// Pending returns the number of observations buffered in the current window.
func (s *Sampler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.obs)
}

func (s *Sampler) flushWindow() {
	s.mu.Lock()
	obs := s.obs
	s.obs = nil
	s.mu.Unlock()

	if len(obs) == 0 {
		return
	}
	values := s.flush(obs)
	if len(values) == 0 {
		return
	}
	if _, err := s.monitor.Observe(values...); err != nil {
		s.monitor.log.Error("sampled observation rejected", "err", err)
	}
}
