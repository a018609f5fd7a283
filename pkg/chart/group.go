package chart

import (
	"fmt"
	"math"

	"github.com/spckit/spc/pkg/metric"
	"github.com/spckit/spc/pkg/rules"
	"github.com/spckit/spc/pkg/stat"
)

// GroupEngine implements the subgrouped variables charts: Xbar-R, Xbar-S, R and S.
// Every accepted subgroup contributes its mean, range, standard deviation, minimum
// and maximum to capped history series; the center line and limits are recomputed
// from the retained history after each call.
type GroupEngine struct {
	chartType    ChartType
	subgroupSize int
	cfg          config

	// limit factors looked up once at construction for the fixed subgroup size
	fa2, fa3, fd3, fd4, fb3, fb4 float64

	averages *metric.Series
	ranges   *metric.Series
	stddevs  *metric.Series
	minimums *metric.Series
	maximums *metric.Series

	cl, ucl, lcl float64
}

func newGroupEngine(t ChartType, subgroupSize int, opts ...Option) (*GroupEngine, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if subgroupSize < 2 {
		return nil, fmt.Errorf("%w: %s charts require a subgroup size >= 2, got %d", ErrInvalidConfiguration, t, subgroupSize)
	}

	e := &GroupEngine{
		chartType:    t,
		subgroupSize: subgroupSize,
		cfg:          cfg,
		cl:           math.NaN(),
		ucl:          math.NaN(),
		lcl:          math.NaN(),
	}

	// fail construction early when no constants exist for this subgroup size
	for _, c := range []struct {
		dst    *float64
		lookup func(int) (float64, error)
	}{
		{&e.fa2, A2}, {&e.fa3, A3}, {&e.fd3, D3}, {&e.fd4, D4}, {&e.fb3, B3}, {&e.fb4, B4},
	} {
		v, err := c.lookup(subgroupSize)
		if err != nil {
			return nil, err
		}
		*c.dst = v
	}

	for _, s := range []**metric.Series{&e.averages, &e.ranges, &e.stddevs, &e.minimums, &e.maximums} {
		series, err := metric.NewSeries(cfg.limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		*s = series
	}
	return e, nil
}

// Type returns the chart family fixed at construction.
func (e *GroupEngine) Type() ChartType {
	return e.chartType
}

// Name returns the configured chart name.
func (e *GroupEngine) Name() string {
	return e.cfg.name.String()
}

// SubgroupSize returns the fixed number of measurements per subgroup.
func (e *GroupEngine) SubgroupSize() int {
	return e.subgroupSize
}

// AddData absorbs one subgroup and returns the derived value charted for it: the
// subgroup mean for Xbar charts, the range for R charts, the standard deviation for
// S charts.  The subgroup length must equal the engine's fixed subgroup size.
func (e *GroupEngine) AddData(values ...float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}
	if len(values) != e.subgroupSize {
		return 0, fmt.Errorf("%w: got subgroup of size %d, engine fixed at %d", ErrSampleSizeMismatch, len(values), e.subgroupSize)
	}

	e.averages.Record(stat.Mean(values))
	e.ranges.Record(stat.Range(values))
	e.stddevs.Record(stat.StdDev(values))
	e.minimums.Record(stat.Min(values))
	e.maximums.Record(stat.Max(values))
	e.recompute()

	switch e.chartType {
	case R:
		last, _ := e.ranges.Last()
		return last, nil
	case S:
		last, _ := e.stddevs.Last()
		return last, nil
	default:
		last, _ := e.averages.Last()
		return last, nil
	}
}

// recompute rederives the center line and limits from the full retained history.
func (e *GroupEngine) recompute() {
	xbarbar := stat.Mean(e.averages.Values())
	rbar := stat.Mean(e.ranges.Values())
	sbar := stat.Mean(e.stddevs.Values())

	switch e.chartType {
	case XbarR:
		e.cl = xbarbar
		e.ucl = xbarbar + e.fa2*rbar
		e.lcl = xbarbar - e.fa2*rbar
	case XbarS:
		e.cl = xbarbar
		e.ucl = xbarbar + e.fa3*sbar
		e.lcl = xbarbar - e.fa3*sbar
	case R:
		e.cl = rbar
		e.ucl = e.fd4 * rbar
		e.lcl = math.Max(0, e.fd3*rbar)
	case S:
		e.cl = sbar
		e.ucl = e.fb4 * sbar
		e.lcl = math.Max(0, e.fb3*sbar)
	}
}

// CL returns the center line, NaN before any data.
func (e *GroupEngine) CL() float64 {
	return e.cfg.roundValue(e.cl)
}

// UCL returns the upper control limit, NaN before any data.
func (e *GroupEngine) UCL() float64 {
	return e.cfg.roundValue(e.ucl)
}

// LCL returns the lower control limit, NaN before any data.  R and S charts clamp
// the limit at zero since ranges and standard deviations are non-negative.
func (e *GroupEngine) LCL() float64 {
	return e.cfg.roundValue(e.lcl)
}

// Averages returns the per-subgroup mean series in insertion order.
func (e *GroupEngine) Averages() []float64 {
	return e.cfg.roundSeries(e.averages.Values())
}

// Ranges returns the per-subgroup range series in insertion order.
func (e *GroupEngine) Ranges() []float64 {
	return e.cfg.roundSeries(e.ranges.Values())
}

// StdDevs returns the per-subgroup sample standard deviation series.
func (e *GroupEngine) StdDevs() []float64 {
	return e.cfg.roundSeries(e.stddevs.Values())
}

// Minimums returns the per-subgroup minimum series.
func (e *GroupEngine) Minimums() []float64 {
	return e.cfg.roundSeries(e.minimums.Values())
}

// Maximums returns the per-subgroup maximum series.
func (e *GroupEngine) Maximums() []float64 {
	return e.cfg.roundSeries(e.maximums.Values())
}

// GrandAverage returns the mean of the subgroup means.
func (e *GroupEngine) GrandAverage() float64 {
	return e.cfg.roundValue(stat.Mean(e.averages.Values()))
}

// RangeAverage returns the mean of the subgroup ranges (R̄).
func (e *GroupEngine) RangeAverage() float64 {
	return e.cfg.roundValue(stat.Mean(e.ranges.Values()))
}

// StdDevAverage returns the mean of the subgroup standard deviations (S̄).
func (e *GroupEngine) StdDevAverage() float64 {
	return e.cfg.roundValue(stat.Mean(e.stddevs.Values()))
}

// charted returns the unrounded series the chart plots.
func (e *GroupEngine) charted() []float64 {
	switch e.chartType {
	case R:
		return e.ranges.Values()
	case S:
		return e.stddevs.Values()
	default:
		return e.averages.Values()
	}
}

// Standardized returns the charted series as sigma distances.  The sigma estimate is
// one third of the distance from center line to upper limit, matching the 3-sigma
// construction of the limits.
func (e *GroupEngine) Standardized() []StandardizedPoint {
	return standardize(e.charted(), e.cl, (e.ucl-e.cl)/3.0)
}

// ApplyRules evaluates the pattern rules over the standardized charted series.
func (e *GroupEngine) ApplyRules(rs ...rules.Rule) (rules.Report, error) {
	return rules.Evaluate(sigmas(e.Standardized()), rs...)
}

// Reset discards all history so a new baseline can be collected.
func (e *GroupEngine) Reset() {
	for _, s := range []*metric.Series{e.averages, e.ranges, e.stddevs, e.minimums, e.maximums} {
		s.Reset()
	}
	e.cl, e.ucl, e.lcl = math.NaN(), math.NaN(), math.NaN()
}
