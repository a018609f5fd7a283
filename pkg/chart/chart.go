// Package chart implements incremental Shewhart control chart engines.  Each engine
// ingests one subgroup (or single observation) at a time, maintains the derived
// per-group series in capped ring buffers, and recomputes center line and control
// limits from the retained history on every accepted sample.  Standardized residuals
// produced by an engine feed the pattern rules in the rules package.
package chart

import (
	"fmt"

	"github.com/spckit/spc/pkg/metric"
	"github.com/spckit/spc/pkg/round"
	"github.com/spckit/spc/pkg/rules"
)

// ChartType selects which chart family and formula set an engine applies.  It is
// fixed at construction.
type ChartType string

const (
	XbarR         = ChartType("xbar-r")
	XbarS         = ChartType("xbar-s")
	R             = ChartType("r")
	S             = ChartType("s")
	P             = ChartType("p")
	NP            = ChartType("np")
	C             = ChartType("c")
	U             = ChartType("u")
	Individuals   = ChartType("individuals")
	MovingRange   = ChartType("moving-range")
	MovingAverage = ChartType("moving-average")
)

// DefaultGroupLimit is the number of derived groups retained when no explicit cap is
// configured.  Oldest groups are evicted first once the cap is reached.
const DefaultGroupLimit = 100

// StandardizedPoint is one charted value expressed as its distance from the center
// line in units of the chart's estimated standard deviation.  Produced on demand;
// never stored.
type StandardizedPoint struct {
	Index int
	Sigma float64
}

// Engine is the common contract across all chart-type variants.  Mutation happens
// only through AddData; the read accessors are safe to call concurrently with each
// other but not with a concurrent AddData.
type Engine interface {
	// Type returns the chart family fixed at construction.
	Type() ChartType

	// Name returns the identifying name with its logfmt metadata, or the empty
	// string when none was configured.
	Name() string

	// AddData absorbs one subgroup (or observation pair for attribute charts) and
	// returns the derived per-group value appended to the history.  On error the
	// engine state is unchanged.
	AddData(values ...float64) (float64, error)

	// CL, UCL and LCL return the current center line and control limits computed
	// from all retained history, passed through the rounding policy if one is
	// configured.  They return NaN before any data has been accepted.
	CL() float64
	UCL() float64
	LCL() float64

	// Standardized returns the charted series as sigma distances from the center
	// line, one point per accepted group in insertion order.
	Standardized() []StandardizedPoint

	// ApplyRules evaluates the pattern rules over the standardized series.
	ApplyRules(rs ...rules.Rule) (rules.Report, error)

	// Reset discards all history, returning the engine to its just-constructed
	// state so a new baseline can be collected.
	Reset()
}

var (
	_ Engine = &GroupEngine{}
	_ Engine = &AttributeEngine{}
	_ Engine = &MovingEngine{}
)

// New constructs the engine variant for the requested chart type.  subgroupSize is
// the fixed number of measurements per subgroup for the Xbar/R/S family (2..25),
// the constant inspection-unit count for attribute charts (1 for C charts), and must
// be 1 for Individuals and moving charts.
func New(t ChartType, subgroupSize int, opts ...Option) (Engine, error) {
	switch t {
	case XbarR, XbarS, R, S:
		return newGroupEngine(t, subgroupSize, opts...)
	case P, NP, C, U:
		return newAttributeEngine(t, subgroupSize, opts...)
	case Individuals, MovingRange, MovingAverage:
		return newMovingEngine(t, subgroupSize, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown chart type %q", ErrInvalidConfiguration, t)
	}
}

// config carries the construction options shared by all engine variants.
type config struct {
	limit    int
	rounding *round.Policy
	span     int
	window   int
	sigmaK   float64
	name     metric.Name
}

func newConfig(opts ...Option) (config, error) {
	c := config{
		limit:  DefaultGroupLimit,
		span:   2,
		window: 3,
		sigmaK: 3.0,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return config{}, err
		}
	}
	return c, nil
}

// roundValue applies the configured rounding policy, if any, at the read boundary.
func (c config) roundValue(v float64) float64 {
	if c.rounding == nil {
		return v
	}
	return c.rounding.Apply(v)
}

func (c config) roundSeries(values []float64) []float64 {
	if c.rounding == nil {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	return c.rounding.ApplySeries(values)
}

// Option configures an engine at construction.  Configuration is immutable once the
// engine is built.
type Option func(*config) error

// WithGroupLimit caps the number of retained derived groups.  Once history exceeds
// the cap, the oldest groups are evicted before limits are recomputed, bounding
// memory for long-running monitors.
func WithGroupLimit(k int) Option {
	return func(c *config) error {
		if k < 1 {
			return fmt.Errorf("%w: group limit must be >= 1, got %d", ErrInvalidConfiguration, k)
		}
		c.limit = k
		return nil
	}
}

// WithRounding applies a rounding policy to all values returned by the read
// accessors.  Stored history is never rounded.
func WithRounding(p round.Policy) Option {
	return func(c *config) error {
		c.rounding = &p
		return nil
	}
}

// WithSpan sets the moving-range span used by Individuals and MovingRange charts to
// estimate sigma.  Must be in 2..10 (the supported range of the E2 table).  Ignored
// by other chart types.
func WithSpan(n int) Option {
	return func(c *config) error {
		if n < 2 || n > 10 {
			return fmt.Errorf("%w: moving-range span must be in 2..10, got %d", ErrInvalidConfiguration, n)
		}
		c.span = n
		return nil
	}
}

// WithWindow sets the averaging window for MovingAverage charts.  Must be >= 2.
// Ignored by other chart types.
func WithWindow(w int) Option {
	return func(c *config) error {
		if w < 2 {
			return fmt.Errorf("%w: moving-average window must be >= 2, got %d", ErrInvalidConfiguration, w)
		}
		c.window = w
		return nil
	}
}

// WithSigmaMultiple overrides the limit width for attribute charts, which default to
// 3-sigma limits.
func WithSigmaMultiple(k float64) Option {
	return func(c *config) error {
		if k <= 0 {
			return fmt.Errorf("%w: sigma multiple must be positive, got %f", ErrInvalidConfiguration, k)
		}
		c.sigmaK = k
		return nil
	}
}

// WithName attaches an identifying name and metadata to the engine's series.
func WithName(name string, md map[string]string) Option {
	return func(c *config) error {
		if name == "" {
			return fmt.Errorf("%w: chart name must be the non-empty string", ErrInvalidConfiguration)
		}
		c.name = metric.NewName(name, md)
		return nil
	}
}

// standardize converts a charted series into sigma distances against a constant
// center line and sigma estimate.
func standardize(values []float64, cl, sigma float64) []StandardizedPoint {
	out := make([]StandardizedPoint, len(values))
	for i, v := range values {
		out[i] = StandardizedPoint{Index: i, Sigma: (v - cl) / sigma}
	}
	return out
}

// sigmas extracts the sigma-distance series for rule evaluation.
func sigmas(points []StandardizedPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Sigma
	}
	return out
}
