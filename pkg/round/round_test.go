package round

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	_, err := New(-1, HalfUp)
	assert.Error(t, err)
	_, err = New(2, Mode("nearest"))
	assert.Error(t, err)
	p, err := New(2, HalfEven)
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Places)
}

func TestApply(t *testing.T) {
	tt := []struct {
		name string
		mode Mode
		in   float64
		exp  float64
	}{
		{name: "up positive", mode: Up, in: 1.61, exp: 1.7},
		{name: "up negative", mode: Up, in: -1.61, exp: -1.7},
		{name: "down positive", mode: Down, in: 1.69, exp: 1.6},
		{name: "down negative", mode: Down, in: -1.69, exp: -1.6},
		{name: "ceiling negative", mode: Ceiling, in: -1.61, exp: -1.6},
		{name: "floor positive", mode: Floor, in: 1.69, exp: 1.6},
		{name: "half up tie", mode: HalfUp, in: 2.55, exp: 2.6},
		{name: "half up tie negative", mode: HalfUp, in: -2.55, exp: -2.6},
		{name: "half down tie", mode: HalfDown, in: 2.55, exp: 2.5},
		{name: "half down tie negative", mode: HalfDown, in: -2.55, exp: -2.5},
		{name: "half down above tie", mode: HalfDown, in: 2.56, exp: 2.6},
		{name: "half even tie to even", mode: HalfEven, in: 2.25, exp: 2.2},
		{name: "half even tie to odd neighbor", mode: HalfEven, in: 2.35, exp: 2.4},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(1, tc.mode)
			assert.NoError(t, err)
			assert.Equal(t, tc.exp, p.Apply(tc.in))
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	for _, mode := range []Mode{Up, Down, Ceiling, Floor, HalfUp, HalfDown, HalfEven} {
		p, err := New(3, mode)
		assert.NoError(t, err)
		once := p.Apply(0.7215349)
		assert.Equal(t, once, p.Apply(once), "mode %s", mode)
	}
}

func TestApplySentinels(t *testing.T) {
	p, _ := New(2, HalfUp)
	assert.True(t, math.IsNaN(p.Apply(math.NaN())))
	assert.True(t, math.IsInf(p.Apply(math.Inf(1)), 1))
	assert.True(t, math.IsInf(p.Apply(math.Inf(-1)), -1))
}

func TestApplySeries(t *testing.T) {
	p, _ := New(1, HalfUp)
	in := []float64{1.25, 1.24}
	out := p.ApplySeries(in)
	assert.Equal(t, []float64{1.3, 1.2}, out)
	// input untouched
	assert.Equal(t, []float64{1.25, 1.24}, in)
}
