package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, -3, 2, 0})
	assert.Equal(t, 3.0, s.Peak)
	assert.Equal(t, 1, s.PeakAt)
	assert.InDelta(t, 0, s.Mean, 1e-15)
	assert.InDelta(t, math.Sqrt(14.0/4), s.RMS, 1e-12)
	assert.Greater(t, s.StdDev, 0.0)

	assert.Equal(t, Summary{}, Summarize(nil))

	spec := SummarizeSpectrum([]complex128{3 + 4i, 0})
	assert.Equal(t, 5.0, spec.Peak)
	assert.Equal(t, 0, spec.PeakAt)
}

func TestInterpolate(t *testing.T) {
	x := []float64{3480, 5701, 6371}
	y := []float64{290, 100, 40}

	assert.Equal(t, 290.0, Interpolate(x, y, 1000))
	assert.Equal(t, 40.0, Interpolate(x, y, 7000))
	assert.Equal(t, 100.0, Interpolate(x, y, 5701))
	assert.InDelta(t, 70, Interpolate(x, y, 6036), 1e-12)
	assert.Equal(t, 0.0, Interpolate(x, y[:2], 6000))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{0, -1, 1e300}))
	assert.False(t, IsFinite([]float64{0, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
}

func TestComplexPoolClearsBuffers(t *testing.T) {
	p := NewComplexPool()
	buf := p.Get(4)
	assert.Len(t, buf, 4)
	buf[2] = 7i
	p.Put(buf)

	again := p.Get(4)
	assert.Equal(t, []complex128{0, 0, 0, 0}, again)
}
