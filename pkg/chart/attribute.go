package chart

import (
	"fmt"
	"math"

	"github.com/spckit/spc/pkg/metric"
	"github.com/spckit/spc/pkg/rules"
	"github.com/spckit/spc/pkg/stat"
)

// AttributeEngine implements the count-based charts: P and NP (proportion and count
// of defective units, binomial sigma) and C and U (defects per inspection unit,
// Poisson sigma).  P and U accept a varying number of inspected units per group and
// produce stepped per-group limits; NP requires a constant inspection count and
// rejects anything else.
type AttributeEngine struct {
	chartType ChartType
	units     int
	cfg       config

	defects *metric.Series
	samples *metric.Series

	cl, ucl, lcl float64
	uclSeries    []float64
	lclSeries    []float64
	sigmaAt      []float64
}

func newAttributeEngine(t ChartType, units int, opts ...Option) (*AttributeEngine, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, fmt.Errorf("%w: %s charts require at least 1 inspection unit per group, got %d", ErrInvalidConfiguration, t, units)
	}
	if t == C && units != 1 {
		return nil, fmt.Errorf("%w: c charts count defects over a single inspection unit, got %d", ErrInvalidConfiguration, units)
	}

	e := &AttributeEngine{
		chartType: t,
		units:     units,
		cfg:       cfg,
		cl:        math.NaN(),
		ucl:       math.NaN(),
		lcl:       math.NaN(),
	}
	for _, s := range []**metric.Series{&e.defects, &e.samples} {
		series, err := metric.NewSeries(cfg.limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		*s = series
	}
	return e, nil
}

// Type returns the chart family fixed at construction.
func (e *AttributeEngine) Type() ChartType {
	return e.chartType
}

// Name returns the configured chart name.
func (e *AttributeEngine) Name() string {
	return e.cfg.name.String()
}

// AddData absorbs one inspection group.  P and U charts take (defects, inspected)
// and allow inspected to vary per group; a single value uses the inspection count
// configured at construction.  NP charts take (defects) and reject a second value
// that differs from the configured constant count.  C charts take (count).  The
// returned derived value is the proportion defective (P), defective count (NP),
// defect count (C), or defects per unit (U).
func (e *AttributeEngine) AddData(values ...float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}

	var defects, inspected float64
	switch e.chartType {
	case P, U:
		switch len(values) {
		case 1:
			defects, inspected = values[0], float64(e.units)
		case 2:
			defects, inspected = values[0], values[1]
		default:
			return 0, fmt.Errorf("%w: %s charts take (defects, inspected), got %d values", ErrSampleSizeMismatch, e.chartType, len(values))
		}
	case NP:
		switch len(values) {
		case 1:
			defects, inspected = values[0], float64(e.units)
		case 2:
			if values[1] != float64(e.units) {
				return 0, fmt.Errorf("%w: np charts require a constant inspection count of %d per group", ErrInvalidConfiguration, e.units)
			}
			defects, inspected = values[0], values[1]
		default:
			return 0, fmt.Errorf("%w: np charts take (defects), got %d values", ErrSampleSizeMismatch, len(values))
		}
	default: // C
		if len(values) != 1 {
			return 0, fmt.Errorf("%w: c charts take a single defect count, got %d values", ErrSampleSizeMismatch, len(values))
		}
		defects, inspected = values[0], 1
	}
	if inspected <= 0 {
		return 0, fmt.Errorf("%w: inspected unit count must be positive, got %f", ErrSampleSizeMismatch, inspected)
	}

	e.defects.Record(defects)
	e.samples.Record(inspected)
	e.recompute()

	switch e.chartType {
	case P, U:
		return defects / inspected, nil
	default:
		return defects, nil
	}
}

// recompute rederives the center line and the per-group stepped limits from the
// retained history.
func (e *AttributeEngine) recompute() {
	defects := e.defects.Values()
	samples := e.samples.Values()
	n := len(defects)
	nAvg := stat.Mean(samples)
	k := e.cfg.sigmaK

	// per-group sigma estimate as a function of the group's inspected units
	var sigma func(units float64) float64

	switch e.chartType {
	case P:
		pbar := stat.Sum(defects) / stat.Sum(samples)
		e.cl = pbar
		sigma = func(units float64) float64 {
			return math.Sqrt(pbar * (1 - pbar) / units)
		}
	case NP:
		npbar := stat.Mean(defects)
		pbar := npbar / float64(e.units)
		e.cl = npbar
		s := math.Sqrt(npbar * (1 - pbar))
		sigma = func(float64) float64 { return s }
	case C:
		cbar := stat.Mean(defects)
		e.cl = cbar
		s := math.Sqrt(cbar)
		sigma = func(float64) float64 { return s }
	default: // U
		ubar := stat.Sum(defects) / stat.Sum(samples)
		e.cl = ubar
		sigma = func(units float64) float64 {
			return math.Sqrt(ubar / units)
		}
	}

	e.ucl = e.cl + k*sigma(nAvg)
	e.lcl = math.Max(0, e.cl-k*sigma(nAvg))
	e.uclSeries = make([]float64, n)
	e.lclSeries = make([]float64, n)
	e.sigmaAt = make([]float64, n)
	for i := range defects {
		s := sigma(samples[i])
		e.sigmaAt[i] = s
		e.uclSeries[i] = e.cl + k*s
		e.lclSeries[i] = math.Max(0, e.cl-k*s)
	}
}

// CL returns the center line, NaN before any data.
func (e *AttributeEngine) CL() float64 {
	return e.cfg.roundValue(e.cl)
}

// UCL returns the upper control limit computed at the average inspection count.
// Charts with a varying count per group should consult UCLAt for the statistically
// correct stepped limit.
func (e *AttributeEngine) UCL() float64 {
	return e.cfg.roundValue(e.ucl)
}

// LCL returns the lower control limit at the average inspection count, clamped at
// zero since counts and proportions are non-negative.
func (e *AttributeEngine) LCL() float64 {
	return e.cfg.roundValue(e.lcl)
}

// UCLAt returns the stepped upper limit for group i, NaN when i is out of range.
func (e *AttributeEngine) UCLAt(i int) float64 {
	if i < 0 || i >= len(e.uclSeries) {
		return math.NaN()
	}
	return e.cfg.roundValue(e.uclSeries[i])
}

// LCLAt returns the stepped lower limit for group i, NaN when i is out of range.
func (e *AttributeEngine) LCLAt(i int) float64 {
	if i < 0 || i >= len(e.lclSeries) {
		return math.NaN()
	}
	return e.cfg.roundValue(e.lclSeries[i])
}

// UCLSeries returns the stepped upper limits, one per retained group.
func (e *AttributeEngine) UCLSeries() []float64 {
	return e.cfg.roundSeries(e.uclSeries)
}

// LCLSeries returns the stepped lower limits, one per retained group.
func (e *AttributeEngine) LCLSeries() []float64 {
	return e.cfg.roundSeries(e.lclSeries)
}

// Data returns the derived charted series: proportions (P), defective counts (NP),
// defect counts (C), or defects per unit (U).
func (e *AttributeEngine) Data() []float64 {
	return e.cfg.roundSeries(e.charted())
}

// Defects returns the raw defect counts in insertion order.
func (e *AttributeEngine) Defects() []float64 {
	return e.defects.Values()
}

// Samples returns the inspected-unit counts in insertion order.
func (e *AttributeEngine) Samples() []float64 {
	return e.samples.Values()
}

func (e *AttributeEngine) charted() []float64 {
	defects := e.defects.Values()
	samples := e.samples.Values()
	out := make([]float64, len(defects))
	for i := range defects {
		switch e.chartType {
		case P, U:
			out[i] = defects[i] / samples[i]
		default:
			out[i] = defects[i]
		}
	}
	return out
}

// Standardized returns the charted series as sigma distances.  Charts with varying
// inspection counts standardize each point against its own group's sigma, so the
// stepped limits and the residuals agree.
func (e *AttributeEngine) Standardized() []StandardizedPoint {
	charted := e.charted()
	out := make([]StandardizedPoint, len(charted))
	for i, v := range charted {
		out[i] = StandardizedPoint{Index: i, Sigma: (v - e.cl) / e.sigmaAt[i]}
	}
	return out
}

// ApplyRules evaluates the pattern rules over the standardized charted series.
func (e *AttributeEngine) ApplyRules(rs ...rules.Rule) (rules.Report, error) {
	return rules.Evaluate(sigmas(e.Standardized()), rs...)
}

// Reset discards all history so a new baseline can be collected.
func (e *AttributeEngine) Reset() {
	e.defects.Reset()
	e.samples.Reset()
	e.cl, e.ucl, e.lcl = math.NaN(), math.NaN(), math.NaN()
	e.uclSeries, e.lclSeries, e.sigmaAt = nil, nil, nil
}
