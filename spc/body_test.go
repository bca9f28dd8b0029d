package spc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantBody(t *testing.T, np int, values ...complex128) *Body {
	t.Helper()
	elements := make([]*Element, len(values))
	for i, v := range values {
		spec := make([]complex128, np+1)
		for ip := range spec {
			spec[ip] = v * complex(float64(ip+1), 0)
		}
		elements[i] = NewElementFrom(spec)
	}
	b, err := NewBodyFrom(elements...)
	require.NoError(t, err)
	return b
}

func TestInterpolateEndpointsAreExact(t *testing.T) {
	b1 := constantBody(t, 3, 0.1+0.2i, -7.3, 1e-9i)
	b2 := constantBody(t, 3, 3.3, 1.7i, -2)

	at0, err := Interpolate(b1, b2, 0)
	require.NoError(t, err)
	at1, err := Interpolate(b1, b2, 1)
	require.NoError(t, err)

	for i := range b1.Elements() {
		assert.Equal(t, b1.Element(i).Spectrum(), at0.Element(i).Spectrum())
		assert.Equal(t, b2.Element(i).Spectrum(), at1.Element(i).Spectrum())
	}

	self, err := Interpolate(b1, b1, 1)
	require.NoError(t, err)
	assert.Equal(t, b1.Element(0).Spectrum(), self.Element(0).Spectrum())
}

func TestInterpolateMidpointAndRange(t *testing.T) {
	b1 := constantBody(t, 1, 2)
	b2 := constantBody(t, 1, 4)

	mid, err := Interpolate(b1, b2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []complex128{3, 6}, mid.Element(0).Spectrum())

	for _, u := range []float64{-0.1, 1.01} {
		_, err := Interpolate(b1, b2, u)
		assert.ErrorIs(t, err, ErrArgument)
	}
}

// Nodes at -1, 0, 1 holding 1, 0, 1 lie on y = x²; at x = 0.5 the
// quadratic gives 0.25.
func TestLagrangeInterpolateParabola(t *testing.T) {
	b1 := constantBody(t, 0, 1)
	b2 := constantBody(t, 0, 0)
	b3 := constantBody(t, 0, 1)

	x := 0.5
	got, err := LagrangeInterpolate(b1, b2, b3, [3]float64{x + 1, x, x - 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, real(got.Element(0).At(0)), 1e-15)

	back, err := LagrangeInterpolateBackward(b1, b2, b3, [3]float64{x + 1, -x, 1 - x})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, real(back.Element(0).At(0)), 1e-15)
}

func TestLagrangeInterpolateReproducesQuadratic(t *testing.T) {
	poly := func(x float64) complex128 { return complex(2*x*x-3*x+1, -x*x+0.5) }
	b1 := constantBody(t, 2, poly(-1))
	b2 := constantBody(t, 2, poly(0))
	b3 := constantBody(t, 2, poly(1))

	for _, x := range []float64{-1, -0.3, 0, 0.25, 1, 1.4} {
		got, err := LagrangeInterpolate(b1, b2, b3, [3]float64{x + 1, x, x - 1})
		require.NoError(t, err)
		for ip := 0; ip <= 2; ip++ {
			want := poly(x) * complex(float64(ip+1), 0)
			assert.InDelta(t, real(want), real(got.Element(0).At(ip)), 1e-12, "x=%v", x)
			assert.InDelta(t, imag(want), imag(got.Element(0).At(ip)), 1e-12, "x=%v", x)
		}
	}
}

func TestLagrangeInterpolateMismatch(t *testing.T) {
	b1 := constantBody(t, 2, 1, 1, 1)
	b2 := constantBody(t, 2, 1, 1, 1)
	fewer := constantBody(t, 2, 1)
	shorter := constantBody(t, 1, 1, 1, 1)

	_, err := LagrangeInterpolate(b1, b2, fewer, [3]float64{0.5, -0.5, -1.5})
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = LagrangeInterpolate(b1, shorter, b2, [3]float64{0.5, -0.5, -1.5})
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestBodyCloneIsDeep(t *testing.T) {
	b := constantBody(t, 1, 1, 2, 3)
	c := b.Clone()
	require.NoError(t, c.Scale(10))
	assert.Equal(t, []complex128{1, 2}, b.Element(0).Spectrum())
	assert.Equal(t, []complex128{10, 20}, c.Element(0).Spectrum())
}

func TestNewBodyFromRejectsMixedNP(t *testing.T) {
	_, err := NewBodyFrom(NewElement(2), NewElement(3))
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = NewBodyFrom()
	assert.ErrorIs(t, err, ErrArgument)
}

func TestBodyToTimeDomain(t *testing.T) {
	b := constantBody(t, 4, 1, 1i, -1)
	require.NoError(t, b.ToTimeDomain(2000, 20, 0.01))
	for _, e := range b.Elements() {
		assert.Len(t, e.TimeSeries(), 2000)
	}
	assert.ErrorIs(t, b.Scale(2), ErrConverted)
}
