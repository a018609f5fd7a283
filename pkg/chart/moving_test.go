package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndividualsChartLimits(t *testing.T) {
	e, err := New(Individuals, 1)
	require.NoError(t, err)

	for _, v := range []float64{10, 12, 11, 13} {
		derived, err := e.AddData(v)
		require.NoError(t, err)
		assert.Equal(t, v, derived)
	}

	// mean = 11.5, moving ranges = 2, 1, 2 so MRbar = 5/3, E2(2) = 2.660
	mrbar := 5.0 / 3.0
	assert.InDelta(t, 11.5, e.CL(), 1e-12)
	assert.InDelta(t, 11.5+2.660*mrbar, e.UCL(), 1e-9)
	assert.InDelta(t, 11.5-2.660*mrbar, e.LCL(), 1e-9)

	me := e.(*MovingEngine)
	mrs := me.MovingRanges()
	require.Len(t, mrs, 4)
	assert.True(t, math.IsNaN(mrs[0]))
	assert.Equal(t, []float64{2, 1, 2}, mrs[1:])
}

func TestMovingRangeChartLimits(t *testing.T) {
	e, err := New(MovingRange, 1)
	require.NoError(t, err)

	first, err := e.AddData(10)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(first))

	for _, v := range []float64{12, 11, 13} {
		_, err := e.AddData(v)
		require.NoError(t, err)
	}

	mrbar := 5.0 / 3.0
	assert.InDelta(t, mrbar, e.CL(), 1e-12)
	assert.InDelta(t, 3.267*mrbar, e.UCL(), 1e-9)
	assert.Equal(t, 0.0, e.LCL())
}

func TestMovingAverageChartLimits(t *testing.T) {
	e, err := New(MovingAverage, 1, WithWindow(3))
	require.NoError(t, err)

	var derived float64
	for _, v := range []float64{10, 12, 11, 13} {
		var err error
		derived, err = e.AddData(v)
		require.NoError(t, err)
	}
	assert.InDelta(t, 12.0, derived, 1e-12)

	// sigma = MRbar/d2(2), limits at mean +/- 3 sigma / sqrt(window)
	mrbar := 5.0 / 3.0
	sigma := mrbar / 1.128
	offset := 3 * sigma / math.Sqrt(3)
	assert.InDelta(t, 11.5, e.CL(), 1e-12)
	assert.InDelta(t, 11.5+offset, e.UCL(), 1e-9)
	assert.InDelta(t, 11.5-offset, e.LCL(), 1e-9)

	data := e.(*MovingEngine).Data()
	require.Len(t, data, 4)
	assert.True(t, math.IsNaN(data[0]))
	assert.True(t, math.IsNaN(data[1]))
	assert.InDelta(t, 11.0, data[2], 1e-12)
	assert.InDelta(t, 12.0, data[3], 1e-12)
}

func TestIndividualsAgreesWithXbarROnMeans(t *testing.T) {
	grouped, err := New(XbarR, 5)
	require.NoError(t, err)
	feedSubgroups(t, grouped)

	// feeding the subgroup means into an Individuals chart must reproduce the
	// same center line: means are consistent across aggregation levels
	indiv, err := New(Individuals, 1)
	require.NoError(t, err)
	for _, m := range grouped.(*GroupEngine).Averages() {
		_, err := indiv.AddData(m)
		require.NoError(t, err)
	}
	assert.InDelta(t, grouped.CL(), indiv.CL(), 1e-12)
}

func TestMovingEngineSpanOption(t *testing.T) {
	e, err := New(Individuals, 1, WithSpan(3))
	require.NoError(t, err)

	for _, v := range []float64{10, 12, 11, 13} {
		_, err := e.AddData(v)
		require.NoError(t, err)
	}

	// span-3 ranges cover {10,12,11} and {12,11,13}, so MRbar = 2, E2(3) = 1.772
	assert.InDelta(t, 11.5+1.772*2, e.UCL(), 1e-9)

	_, err = New(Individuals, 1, WithSpan(11))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMovingEngineWarmup(t *testing.T) {
	e, err := New(Individuals, 1)
	require.NoError(t, err)

	_, err = e.AddData(10)
	require.NoError(t, err)

	// no moving range is defined yet so the limits stay NaN
	assert.InDelta(t, 10.0, e.CL(), 1e-12)
	assert.True(t, math.IsNaN(e.UCL()))
	assert.True(t, math.IsNaN(e.LCL()))
}

func TestMovingEngineRejectsBadSamples(t *testing.T) {
	e, err := New(Individuals, 1)
	require.NoError(t, err)

	_, err = e.AddData()
	assert.ErrorIs(t, err, ErrEmptySample)

	_, err = e.AddData(1, 2)
	assert.ErrorIs(t, err, ErrSampleSizeMismatch)

	_, err = New(MovingRange, 5)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMovingEngineStandardizedSkipsWarmup(t *testing.T) {
	e, err := New(MovingRange, 1)
	require.NoError(t, err)
	for _, v := range []float64{10, 12, 11, 13} {
		_, err := e.AddData(v)
		require.NoError(t, err)
	}

	points := e.Standardized()
	require.Len(t, points, 4)
	assert.True(t, math.IsNaN(points[0].Sigma))
	for _, p := range points[1:] {
		assert.False(t, math.IsNaN(p.Sigma))
	}
}
