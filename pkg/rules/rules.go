// Package rules evaluates Western Electric / Nelson style pattern rules over a
// standardized control chart series.  Input values are sigma distances from the
// center line, so every predicate reduces to sign and magnitude tests.  NaN values
// (warm-up slots in moving charts) never satisfy a predicate.
package rules

import (
	"errors"
	"fmt"
	"math"
)

// Kind names a rule predicate family.  The same Kind can back several named rules
// with different parameters.
type Kind string

const (
	// KindBeyondSigma trips on a run of consecutive points whose magnitude strictly
	// exceeds Sigma, on either side.
	KindBeyondSigma = Kind("beyond-sigma")

	// KindKOfNBeyondSigma trips when at least Points of the last Window points fall
	// strictly beyond Sigma on the same side of the center line.
	KindKOfNBeyondSigma = Kind("k-of-n-beyond-sigma")

	// KindTrend trips on a run of consecutive points that is strictly monotonic,
	// increasing or decreasing.
	KindTrend = Kind("trend")

	// KindSameSide trips on a run of consecutive points all strictly on the same
	// side of the center line.
	KindSameSide = Kind("same-side")

	// KindOscillating trips on a run of consecutive points strictly alternating
	// sides of the center line.
	KindOscillating = Kind("oscillating")

	// KindWithinSigma trips on a run of consecutive points whose magnitude is
	// strictly below Sigma, indicating stratification.
	KindWithinSigma = Kind("within-sigma")
)

// ErrInvalidRule indicates a rule whose parameters are incoherent for its kind.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is one parameterized pattern test.  It is a comparable value so it can key
// violation lookups.  Points is the run length (or the k in k-of-n), Window the n in
// k-of-n (zero elsewhere), Sigma the zone boundary for magnitude tests (zero for
// sign-only tests).
type Rule struct {
	Kind   Kind
	Points int
	Window int
	Sigma  float64
}

// The canonical rule set.  Callers pass any subset, or construct their own Rule
// values for non-standard zones.
func Beyond3Sigma() Rule            { return Rule{Kind: KindBeyondSigma, Points: 1, Sigma: 3} }
func TwoOfThreeBeyond2Sigma() Rule  { return Rule{Kind: KindKOfNBeyondSigma, Points: 2, Window: 3, Sigma: 2} }
func FourOfFiveBeyond1Sigma() Rule  { return Rule{Kind: KindKOfNBeyondSigma, Points: 4, Window: 5, Sigma: 1} }
func SixPointsTrending() Rule       { return Rule{Kind: KindTrend, Points: 6} }
func EightPointsSameSide() Rule     { return Rule{Kind: KindSameSide, Points: 8} }
func NinePointsSameSide() Rule      { return Rule{Kind: KindSameSide, Points: 9} }
func FourteenPointsOscillating() Rule {
	return Rule{Kind: KindOscillating, Points: 14}
}
func FifteenPointsWithin1Sigma() Rule { return Rule{Kind: KindWithinSigma, Points: 15, Sigma: 1} }

// DefaultRules returns the full canonical set in conventional order.
func DefaultRules() []Rule {
	return []Rule{
		Beyond3Sigma(),
		TwoOfThreeBeyond2Sigma(),
		FourOfFiveBeyond1Sigma(),
		SixPointsTrending(),
		NinePointsSameSide(),
		FourteenPointsOscillating(),
		FifteenPointsWithin1Sigma(),
	}
}

// String describes the rule in chart-reading terms.
func (r Rule) String() string {
	switch r.Kind {
	case KindBeyondSigma:
		if r.Points == 1 {
			return fmt.Sprintf("point beyond %g sigma", r.Sigma)
		}
		return fmt.Sprintf("%d consecutive points beyond %g sigma", r.Points, r.Sigma)
	case KindKOfNBeyondSigma:
		return fmt.Sprintf("%d of %d points beyond %g sigma on the same side", r.Points, r.Window, r.Sigma)
	case KindTrend:
		return fmt.Sprintf("%d consecutive points trending", r.Points)
	case KindSameSide:
		return fmt.Sprintf("%d consecutive points on the same side of the center line", r.Points)
	case KindOscillating:
		return fmt.Sprintf("%d consecutive points alternating sides of the center line", r.Points)
	case KindWithinSigma:
		return fmt.Sprintf("%d consecutive points within %g sigma", r.Points, r.Sigma)
	default:
		return fmt.Sprintf("unknown rule kind %q", string(r.Kind))
	}
}

func (r Rule) validate() error {
	switch r.Kind {
	case KindBeyondSigma, KindWithinSigma:
		if r.Points < 1 || r.Sigma <= 0 {
			return fmt.Errorf("%w: %s requires points >= 1 and sigma > 0", ErrInvalidRule, r.Kind)
		}
	case KindKOfNBeyondSigma:
		if r.Points < 1 || r.Window < r.Points || r.Sigma <= 0 {
			return fmt.Errorf("%w: %s requires 1 <= points <= window and sigma > 0", ErrInvalidRule, r.Kind)
		}
	case KindTrend, KindSameSide, KindOscillating:
		if r.Points < 2 {
			return fmt.Errorf("%w: %s requires points >= 2", ErrInvalidRule, r.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, string(r.Kind))
	}
	return nil
}

// windowLen is the number of consecutive points one predicate evaluation covers.
func (r Rule) windowLen() int {
	if r.Kind == KindKOfNBeyondSigma {
		return r.Window
	}
	return r.Points
}

// Violation records one window in which a rule's predicate held.  WindowEnd is the
// index of the newest point in the window; Points lists the indexes that satisfied
// the predicate, oldest first.
type Violation struct {
	Rule      Rule
	WindowEnd int
	Points    []int
}

// Report holds the evaluation outcome for an ordered rule set.
type Report struct {
	rules  []Rule
	byRule map[Rule][]Violation
}

// Passed reports whether no rule tripped anywhere in the series.
func (r Report) Passed() bool {
	return len(r.byRule) == 0
}

// Rules returns the evaluated rules in the order the caller supplied them.
func (r Report) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Violations returns every window in which the given rule tripped, oldest first.
func (r Report) Violations(rule Rule) []Violation {
	return r.byRule[rule]
}

// All returns every violation grouped by rule in caller order, oldest window first
// within each rule.
func (r Report) All() []Violation {
	var out []Violation
	for _, rule := range r.rules {
		out = append(out, r.byRule[rule]...)
	}
	return out
}

// Evaluate slides each rule's window over the standardized series and records every
// window position where the predicate holds.  Rules are independent; a window
// tripping one rule does not mask another.
func Evaluate(series []float64, rs ...Rule) (Report, error) {
	report := Report{rules: make([]Rule, len(rs))}
	copy(report.rules, rs)

	for _, rule := range rs {
		if err := rule.validate(); err != nil {
			return Report{}, err
		}
	}

	for _, rule := range rs {
		w := rule.windowLen()
		for end := w - 1; end < len(series); end++ {
			window := series[end-w+1 : end+1]
			points, ok := rule.test(window, end-w+1)
			if !ok {
				continue
			}
			if report.byRule == nil {
				report.byRule = make(map[Rule][]Violation)
			}
			report.byRule[rule] = append(report.byRule[rule], Violation{
				Rule:      rule,
				WindowEnd: end,
				Points:    points,
			})
		}
	}
	return report, nil
}

// test evaluates the predicate over one window.  offset is the series index of the
// window's first element, used to report absolute point indexes.
func (r Rule) test(window []float64, offset int) ([]int, bool) {
	for _, v := range window {
		if math.IsNaN(v) {
			return nil, false
		}
	}

	switch r.Kind {
	case KindBeyondSigma:
		for _, v := range window {
			if math.Abs(v) <= r.Sigma {
				return nil, false
			}
		}
		return indexRange(offset, len(window)), true

	case KindKOfNBeyondSigma:
		var above, below []int
		for i, v := range window {
			if v > r.Sigma {
				above = append(above, offset+i)
			}
			if v < -r.Sigma {
				below = append(below, offset+i)
			}
		}
		if len(above) >= r.Points {
			return above, true
		}
		if len(below) >= r.Points {
			return below, true
		}
		return nil, false

	case KindTrend:
		up, down := true, true
		for i := 1; i < len(window); i++ {
			if window[i] <= window[i-1] {
				up = false
			}
			if window[i] >= window[i-1] {
				down = false
			}
		}
		if up || down {
			return indexRange(offset, len(window)), true
		}
		return nil, false

	case KindSameSide:
		pos, neg := true, true
		for _, v := range window {
			if v <= 0 {
				pos = false
			}
			if v >= 0 {
				neg = false
			}
		}
		if pos || neg {
			return indexRange(offset, len(window)), true
		}
		return nil, false

	case KindOscillating:
		for i, v := range window {
			if v == 0 {
				return nil, false
			}
			if i > 0 && (v > 0) == (window[i-1] > 0) {
				return nil, false
			}
		}
		return indexRange(offset, len(window)), true

	case KindWithinSigma:
		for _, v := range window {
			if math.Abs(v) >= r.Sigma {
				return nil, false
			}
		}
		return indexRange(offset, len(window)), true
	}
	return nil, false
}

func indexRange(offset, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = offset + i
	}
	return out
}
