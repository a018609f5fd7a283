// Package round implements the decimal rounding policy applied to chart statistics at
// the read boundary.  Stored history is never rounded; only values handed back to the
// caller pass through a Policy, so recomputation stays exact regardless of the
// configured precision.
package round

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Mode selects the tie-breaking and direction strategy for rounding.
type Mode string

const (
	// Up rounds away from zero.
	Up = Mode("up")
	// Down rounds toward zero.
	Down = Mode("down")
	// Ceiling rounds toward positive infinity.
	Ceiling = Mode("ceiling")
	// Floor rounds toward negative infinity.
	Floor = Mode("floor")
	// HalfUp rounds to the nearest neighbor, ties away from zero.
	HalfUp = Mode("half-up")
	// HalfDown rounds to the nearest neighbor, ties toward zero.
	HalfDown = Mode("half-down")
	// HalfEven rounds to the nearest neighbor, ties to the even digit (banker's rounding).
	HalfEven = Mode("half-even")
)

// Policy is a pure transform from float64 to float64 at a fixed decimal precision.
// Applying a policy twice yields the same result as applying it once.
type Policy struct {
	Places int
	Mode   Mode
}

// New validates and returns a rounding policy.  Places must be non-negative and mode
// must be one of the defined Mode constants.
func New(places int, mode Mode) (Policy, error) {
	if places < 0 {
		return Policy{}, fmt.Errorf("rounding places must be non-negative, got %d", places)
	}
	switch mode {
	case Up, Down, Ceiling, Floor, HalfUp, HalfDown, HalfEven:
		return Policy{Places: places, Mode: mode}, nil
	default:
		return Policy{}, fmt.Errorf("unknown rounding mode %q", mode)
	}
}

// Apply rounds v according to the policy.  NaN and infinities pass through unchanged
// so that sentinel values survive the read boundary.
func (p Policy) Apply(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	d := decimal.NewFromFloat(v)
	places := int32(p.Places)
	var r decimal.Decimal
	switch p.Mode {
	case Up:
		r = d.RoundUp(places)
	case Down:
		r = d.RoundDown(places)
	case Ceiling:
		r = d.RoundCeil(places)
	case Floor:
		r = d.RoundFloor(places)
	case HalfDown:
		r = roundHalfDown(d, places)
	case HalfEven:
		r = d.RoundBank(places)
	default:
		// HalfUp, also used for the zero-value policy
		r = d.Round(places)
	}
	f, _ := r.Float64()
	return f
}

// ApplySeries rounds every entry of values into a new slice, leaving values intact.
func (p Policy) ApplySeries(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = p.Apply(v)
	}
	return out
}

// roundHalfDown rounds to the nearest neighbor with ties broken toward zero, which
// shopspring/decimal does not provide directly.
func roundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	half := decimal.New(5, -1)
	var r decimal.Decimal
	if shifted.IsNegative() {
		ceil := shifted.Ceil()
		if ceil.Sub(shifted).GreaterThan(half) {
			r = shifted.Floor()
		} else {
			r = ceil
		}
	} else {
		floor := shifted.Floor()
		if shifted.Sub(floor).GreaterThan(half) {
			r = floor.Add(decimal.New(1, 0))
		} else {
			r = floor
		}
	}
	return r.Shift(-places)
}
