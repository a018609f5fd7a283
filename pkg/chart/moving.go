package chart

import (
	"fmt"
	"math"

	"github.com/spckit/spc/pkg/metric"
	"github.com/spckit/spc/pkg/rules"
	"github.com/spckit/spc/pkg/stat"
)

// MovingEngine implements the single-observation charts: Individuals, MovingRange
// and MovingAverage.  Sigma is estimated from the mean moving range over the
// configured span, so no within-subgroup dispersion is needed.  Derived series keep
// one slot per observation; slots inside the warm-up window hold NaN so indexes
// stay aligned with the raw observations.
type MovingEngine struct {
	chartType ChartType
	cfg       config

	// moving-range factors looked up once at construction for the configured span
	fe2, fd2, fd3, fd4 float64

	observations *metric.Series

	cl, ucl, lcl float64
}

func newMovingEngine(t ChartType, subgroupSize int, opts ...Option) (*MovingEngine, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if subgroupSize != 1 {
		return nil, fmt.Errorf("%w: %s charts take individual observations, got subgroup size %d", ErrInvalidConfiguration, t, subgroupSize)
	}

	e := &MovingEngine{
		chartType: t,
		cfg:       cfg,
		cl:        math.NaN(),
		ucl:       math.NaN(),
		lcl:       math.NaN(),
	}

	for _, c := range []struct {
		dst    *float64
		lookup func(int) (float64, error)
	}{
		{&e.fe2, E2}, {&e.fd2, D2}, {&e.fd3, D3}, {&e.fd4, D4},
	} {
		v, err := c.lookup(cfg.span)
		if err != nil {
			return nil, err
		}
		*c.dst = v
	}

	series, err := metric.NewSeries(cfg.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	e.observations = series
	return e, nil
}

// Type returns the chart family fixed at construction.
func (e *MovingEngine) Type() ChartType {
	return e.chartType
}

// Name returns the configured chart name.
func (e *MovingEngine) Name() string {
	return e.cfg.name.String()
}

// Span returns the moving-range span used for the sigma estimate.
func (e *MovingEngine) Span() int {
	return e.cfg.span
}

// Window returns the averaging window for MovingAverage charts.
func (e *MovingEngine) Window() int {
	return e.cfg.window
}

// AddData absorbs one observation and returns the derived value charted for it: the
// observation itself for Individuals, the newest moving range for MovingRange, the
// newest window mean for MovingAverage.  During the warm-up window the derived value
// is NaN.
func (e *MovingEngine) AddData(values ...float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("%w: %s charts take a single observation, got %d values", ErrSampleSizeMismatch, e.chartType, len(values))
	}

	e.observations.Record(values[0])
	e.recompute()

	charted := e.charted()
	return charted[len(charted)-1], nil
}

// recompute rederives the center line and limits from the full retained history.
func (e *MovingEngine) recompute() {
	obs := e.observations.Values()
	mrbar := stat.MeanDefined(movingRanges(obs, e.cfg.span))

	switch e.chartType {
	case Individuals:
		mean := stat.Mean(obs)
		e.cl = mean
		e.ucl = mean + e.fe2*mrbar
		e.lcl = mean - e.fe2*mrbar
	case MovingRange:
		e.cl = mrbar
		e.ucl = e.fd4 * mrbar
		e.lcl = math.Max(0, e.fd3*mrbar)
	default: // MovingAverage
		mean := stat.Mean(obs)
		sigma := mrbar / e.fd2
		offset := e.cfg.sigmaK * sigma / math.Sqrt(float64(e.cfg.window))
		e.cl = mean
		e.ucl = mean + offset
		e.lcl = mean - offset
	}
}

// CL returns the center line, NaN before any data.
func (e *MovingEngine) CL() float64 {
	return e.cfg.roundValue(e.cl)
}

// UCL returns the upper control limit, NaN until at least one moving range is
// defined.
func (e *MovingEngine) UCL() float64 {
	return e.cfg.roundValue(e.ucl)
}

// LCL returns the lower control limit.  MovingRange charts clamp it at zero.
func (e *MovingEngine) LCL() float64 {
	return e.cfg.roundValue(e.lcl)
}

// Observations returns the raw retained observations in insertion order.
func (e *MovingEngine) Observations() []float64 {
	return e.cfg.roundSeries(e.observations.Values())
}

// MovingRanges returns the moving-range series aligned to the observations.  The
// first span-1 entries are NaN.
func (e *MovingEngine) MovingRanges() []float64 {
	return e.cfg.roundSeries(movingRanges(e.observations.Values(), e.cfg.span))
}

// Data returns the charted derived series: the observations themselves for
// Individuals, moving ranges for MovingRange, window means for MovingAverage.
// Warm-up slots hold NaN.
func (e *MovingEngine) Data() []float64 {
	return e.cfg.roundSeries(e.charted())
}

func (e *MovingEngine) charted() []float64 {
	obs := e.observations.Values()
	switch e.chartType {
	case MovingRange:
		return movingRanges(obs, e.cfg.span)
	case MovingAverage:
		return movingAverages(obs, e.cfg.window)
	default:
		out := make([]float64, len(obs))
		copy(out, obs)
		return out
	}
}

// Standardized returns the charted series as sigma distances.  Warm-up NaN slots
// standardize to NaN and never satisfy a rule predicate.
func (e *MovingEngine) Standardized() []StandardizedPoint {
	// Individuals and MovingRange limits are fixed 3-sigma constructions; only
	// MovingAverage limits scale with the configured sigma multiple.
	k := 3.0
	if e.chartType == MovingAverage {
		k = e.cfg.sigmaK
	}
	return standardize(e.charted(), e.cl, (e.ucl-e.cl)/k)
}

// ApplyRules evaluates the pattern rules over the standardized charted series.
func (e *MovingEngine) ApplyRules(rs ...rules.Rule) (rules.Report, error) {
	return rules.Evaluate(sigmas(e.Standardized()), rs...)
}

// Reset discards all history so a new baseline can be collected.
func (e *MovingEngine) Reset() {
	e.observations.Reset()
	e.cl, e.ucl, e.lcl = math.NaN(), math.NaN(), math.NaN()
}

// movingRanges returns |x[i] - x[i-span+1]| aligned to the input: entry i covers the
// span ending at observation i, with NaN filling the first span-1 slots.
func movingRanges(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < span-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Range(values[i-span+1 : i+1])
	}
	return out
}

// movingAverages returns the trailing window mean aligned to the input, with NaN
// filling the first window-1 slots.
func movingAverages(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(values[i-window+1 : i+1])
	}
	return out
}
