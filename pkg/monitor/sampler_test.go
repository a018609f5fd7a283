package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spckit/spc/pkg/chart"
	"github.com/spckit/spc/pkg/rules"
)

func newTestMonitor(t *testing.T, typ chart.ChartType, size int) *Monitor {
	t.Helper()
	engine, err := chart.New(typ, size)
	require.NoError(t, err)
	m, err := New("sampled", engine, WithLogger(quietLogger()), WithRules(rules.Beyond3Sigma()))
	require.NoError(t, err)
	return m
}

func TestSamplerFlushesSubgroups(t *testing.T) {
	m := newTestMonitor(t, chart.XbarR, 3)

	// long window so only the explicit flush runs
	s, stop, err := NewSampler(m, time.Hour, Subgroup)
	require.NoError(t, err)
	defer stop()

	for _, v := range []float64{1, 2, 3} {
		s.Record(v)
	}
	assert.Equal(t, 3, s.Pending())

	s.flushWindow()
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 1, m.Metrics()["observed"])
	assert.InDelta(t, 2.0, m.Engine().CL(), 1e-12)
}

func TestSamplerMeanFlush(t *testing.T) {
	m := newTestMonitor(t, chart.Individuals, 1)

	s, stop, err := NewSampler(m, time.Hour, Mean)
	require.NoError(t, err)
	defer stop()

	for _, v := range []float64{1, 2, 3} {
		s.Record(v)
	}
	s.flushWindow()
	assert.InDelta(t, 2.0, m.Engine().CL(), 1e-12)
}

func TestSamplerCountFlush(t *testing.T) {
	m := newTestMonitor(t, chart.C, 1)

	s, stop, err := NewSampler(m, time.Hour, Count)
	require.NoError(t, err)
	defer stop()

	for i := 0; i < 4; i++ {
		s.Record(1)
	}
	s.flushWindow()
	assert.InDelta(t, 4.0, m.Engine().CL(), 1e-12)
}

func TestSamplerSkipsEmptyWindows(t *testing.T) {
	m := newTestMonitor(t, chart.Individuals, 1)

	s, stop, err := NewSampler(m, time.Hour, Mean)
	require.NoError(t, err)
	defer stop()

	s.flushWindow()
	assert.Equal(t, 0, m.Metrics()["observed"])
}

func TestSamplerTicksOnItsOwn(t *testing.T) {
	m := newTestMonitor(t, chart.Individuals, 1)

	s, stop, err := NewSampler(m, 20*time.Millisecond, Mean)
	require.NoError(t, err)
	defer stop()

	s.Record(5)
	assert.Eventually(t, func() bool {
		return m.Metrics()["observed"] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSamplerValidation(t *testing.T) {
	m := newTestMonitor(t, chart.Individuals, 1)

	_, _, err := NewSampler(nil, time.Second, Mean)
	assert.Error(t, err)

	_, _, err = NewSampler(m, 0, Mean)
	assert.Error(t, err)
}
