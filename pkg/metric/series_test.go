package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeriesRecord(t *testing.T) {
	tt := []struct {
		name     string
		capacity int
		obs      []float64
		exp      []float64
	}{
		{name: "underfill", capacity: 5, obs: []float64{1, 2, 3}, exp: []float64{1, 2, 3}},
		{name: "fill", capacity: 5, obs: []float64{1, 2, 3, 4, 5}, exp: []float64{1, 2, 3, 4, 5}},
		{name: "overfill evicts oldest", capacity: 3, obs: []float64{1, 2, 3, 4, 5}, exp: []float64{3, 4, 5}},
		{name: "wrap twice", capacity: 2, obs: []float64{1, 2, 3, 4, 5}, exp: []float64{4, 5}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSeries(tc.capacity)
			assert.NoError(t, err)
			for _, o := range tc.obs {
				s.Record(o)
			}
			assert.Equal(t, tc.exp, s.Values())
			assert.Equal(t, len(tc.obs), s.Count())
			assert.Equal(t, len(tc.exp), s.Len())
		})
	}
}

func TestSeriesInvalidCapacity(t *testing.T) {
	_, err := NewSeries(0)
	assert.Error(t, err)
}

func TestSeriesLast(t *testing.T) {
	s, _ := NewSeries(2)
	_, ok := s.Last()
	assert.False(t, ok)
	for _, o := range []float64{1, 2, 3} {
		s.Record(o)
	}
	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, 3.0, last)
}

func TestSeriesReset(t *testing.T) {
	s, _ := NewSeries(3, WithValues([]float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{2, 3, 4}, s.Values())
	s.Reset()
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, []float64{}, s.Values())
	assert.Equal(t, 3, s.Capacity())
	s.Record(9)
	assert.Equal(t, []float64{9}, s.Values())
}

func TestWithValues(t *testing.T) {
	s, err := NewSeries(6, WithValues([]float64{1, 2, 3, 4}))
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, s.Values())
}

func TestWithName(t *testing.T) {
	s, err := NewSeries(2, WithName("fill_weight_xbar", map[string]string{"line": "4"}))
	assert.NoError(t, err)
	assert.Equal(t, "fill_weight_xbar[line=4]", s.Name())

	_, err = NewSeries(2, WithName("", nil))
	assert.Error(t, err)
}
