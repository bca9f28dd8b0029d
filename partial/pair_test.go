package partial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/spc"
)

var (
	testPoint   = geo.HorizontalPosition{Latitude: 10, Longitude: 20}
	testEvent   = geo.NewFullPosition(-5, 0, 6271)
	testStation = geo.HorizontalPosition{Latitude: 30, Longitude: 60}
)

func header(id string, kind spc.Kind, radii ...float64) spc.Header {
	return spc.Header{
		ID:       id,
		Kind:     kind,
		TLen:     100,
		NP:       4,
		OmegaI:   0.02,
		Observer: testPoint,
		Source:   testEvent,
		BodyR:    radii,
	}
}

// displacementFile builds a UF file whose bodies hold value on every channel.
func displacementFile(t *testing.T, h spc.Header, value complex128) *spc.SynthesizedFile {
	t.Helper()
	bodies := make([]*spc.Body, len(h.BodyR))
	for i := range bodies {
		bodies[i] = sparseBody(t, h.NP, 3, map[int]complex128{0: value, 1: value, 2: value})
	}
	f, err := spc.NewSynthesizedFile(h, bodies)
	require.NoError(t, err)
	return f
}

func TestIsGoodPair(t *testing.T) {
	fwd := displacementFile(t, header("fwd", spc.UF, 6000, 6100), 1)
	require.NoError(t, IsGoodPair(fwd, displacementFile(t, header("bwd", spc.UF, 6000, 6100), 1)))

	tests := []struct {
		field  string
		modify func(h *spc.Header)
	}{
		{"tlen", func(h *spc.Header) { h.TLen = 200 }},
		{"np", func(h *spc.Header) { h.NP = 8 }},
		{"omegai", func(h *spc.Header) { h.OmegaI = 0.01 }},
		{"position", func(h *spc.Header) { h.Observer.Longitude += 0.5 }},
		{"bodyR[1]", func(h *spc.Header) { h.BodyR = []float64{6000, 6150} }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			h := header("bwd", spc.UF, 6000, 6100)
			tt.modify(&h)
			err := IsGoodPair(fwd, displacementFile(t, h, 1))

			var mm *spc.MismatchError
			require.ErrorAs(t, err, &mm)
			assert.Equal(t, tt.field, mm.Field)
			assert.Equal(t, "fwd", mm.First)
			assert.Equal(t, "bwd", mm.Second)
			assert.ErrorIs(t, err, spc.ErrMismatch)
		})
	}

	err := IsGoodPair(fwd, displacementFile(t, header("bwd", spc.UF, 6000), 1))
	assert.ErrorIs(t, err, spc.ErrMismatch)
}

func TestIsGoodPairPermissive(t *testing.T) {
	fwd := displacementFile(t, header("fwd", spc.UF, 5000, 5500, 6000, 6100), 1)

	ignored, err := IsGoodPairPermissive(fwd, displacementFile(t, header("bwd", spc.UF, 5000, 5501, 6000, 6101), 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ignored)

	_, err = IsGoodPairPermissive(fwd, displacementFile(t, header("bwd", spc.UF, 5001, 5501, 6000, 6101), 1))
	var mm *spc.MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "bodyR[0]", mm.Field)

	// positions are never relaxed
	h := header("bwd", spc.UF, 5000, 5500, 6000, 6100)
	h.Observer.Latitude = -10
	_, err = IsGoodPairPermissive(fwd, displacementFile(t, h, 1))
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "position", mm.Field)
}
