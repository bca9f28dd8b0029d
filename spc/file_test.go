package spc

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
)

func partialHeader(id string) Header {
	return Header{
		ID:       id,
		Kind:     PAR2,
		TLen:     100,
		NP:       3,
		OmegaI:   0.015,
		Observer: geo.HorizontalPosition{Latitude: 12.5, Longitude: -33},
		Source:   geo.NewFullPosition(-5, 120, 6271),
		BodyR:    []float64{5800, 6000},
	}
}

func synthesized(t *testing.T, h Header, scale complex128) *SynthesizedFile {
	t.Helper()
	bodies := []*Body{
		constantBody(t, h.NP, scale, 2*scale, 1i*scale),
		constantBody(t, h.NP, -scale, 0.5, 3),
	}
	f, err := NewSynthesizedFile(h, bodies)
	require.NoError(t, err)
	return f
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := synthesized(t, partialHeader("PAR2 kernel"), 1+2i)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, orig))

	got, err := Decode(&buf, WithID(orig.ID()), quiet())
	require.NoError(t, err)

	assert.Equal(t, orig.Header(), got.Header())
	require.Equal(t, orig.NBody(), got.NBody())
	for i := range orig.Bodies() {
		for c := 0; c < 3; c++ {
			assert.Equal(t, orig.Body(i).Element(c).Spectrum(), got.Body(i).Element(c).Spectrum())
		}
	}
}

func TestEncodeWithoutStepZero(t *testing.T) {
	orig := synthesized(t, partialHeader("k"), 1)

	path := filepath.Join(t.TempDir(), "k.PAR2.spc")
	require.NoError(t, WriteFile(path, orig, WithoutStepZero()))

	got, err := ReadFile(path, quiet())
	require.NoError(t, err)
	assert.Equal(t, "k.PAR2", got.ID())
	spec := got.Body(0).Element(0).Spectrum()
	assert.Equal(t, complex128(0), spec[0])
	assert.Equal(t, orig.Body(0).Element(0).Spectrum()[1:], spec[1:])
}

func TestEncodeRejectsCatalog(t *testing.T) {
	f, err := Decode(catalogFixture([5]complex128{0, 0, 1, 0, 0}), WithAzimuth(0), quiet())
	require.NoError(t, err)
	err = Encode(&bytes.Buffer{}, f)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNewSynthesizedFileValidation(t *testing.T) {
	h := partialHeader("v")
	good := constantBody(t, 3, 1, 1, 1)

	_, err := NewSynthesizedFile(h, []*Body{good})
	assert.ErrorIs(t, err, ErrMismatch, "one body for two radii")

	_, err = NewSynthesizedFile(h, []*Body{good, constantBody(t, 3, 1)})
	assert.ErrorIs(t, err, ErrMismatch, "channel count")

	_, err = NewSynthesizedFile(h, []*Body{good, constantBody(t, 2, 1, 1, 1)})
	assert.ErrorIs(t, err, ErrMismatch, "np")

	bad := h
	bad.Kind = KindUnknown
	_, err = NewSynthesizedFile(bad, []*Body{good, good})
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	syn := h
	syn.Kind = Synthetic
	f, err := NewSynthesizedFile(syn, []*Body{good})
	require.NoError(t, err)
	assert.Nil(t, f.BodyR())
}

func TestReplaceBody(t *testing.T) {
	f := synthesized(t, partialHeader("r"), 1)
	repl := constantBody(t, 3, 7, 8, 9)

	require.NoError(t, f.ReplaceBody(1, repl))
	assert.Same(t, repl, f.Body(1))

	assert.ErrorIs(t, f.ReplaceBody(2, repl), ErrArgument)
	assert.ErrorIs(t, f.ReplaceBody(0, constantBody(t, 3, 1)), ErrMismatch)
	assert.ErrorIs(t, f.ReplaceBody(0, nil), ErrArgument)
}

func TestFileAccessorsCopy(t *testing.T) {
	f := synthesized(t, partialHeader("c"), 1)
	r := f.BodyR()
	r[0] = -1
	assert.Equal(t, 5800.0, f.BodyR()[0])

	bodies := f.Bodies()
	bodies[0] = nil
	assert.NotNil(t, f.Body(0))
}

func TestCombine(t *testing.T) {
	psv := synthesized(t, partialHeader("psv"), 1)
	sh := synthesized(t, partialHeader("sh"), 2i)

	sum, err := Combine(psv, sh)
	require.NoError(t, err)
	assert.Equal(t, "psv+sh", sum.ID())
	assert.Equal(t, complex(1, 2), sum.Body(0).Element(0).At(0))
	assert.Equal(t, complex(-1, -2), sum.Body(1).Element(0).At(0))
	// inputs untouched
	assert.Equal(t, complex128(1), psv.Body(0).Element(0).At(0))

	moved := partialHeader("moved")
	moved.Observer.Latitude += 1
	_, err = Combine(psv, synthesized(t, moved, 1))
	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "observer", mm.Field)
	assert.ErrorIs(t, err, ErrMismatch)

	deeper := partialHeader("deeper")
	deeper.BodyR = []float64{5800, 6001}
	_, err = Combine(psv, synthesized(t, deeper, 1))
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "bodyR[1]", mm.Field)
}

func TestInterpolateCatalogFiles(t *testing.T) {
	files := [3]File{
		synthesized(t, partialHeader("a"), 1),
		synthesized(t, partialHeader("b"), 0),
		synthesized(t, partialHeader("c"), 1),
	}
	x := 0.5
	got, err := InterpolateCatalog(files, [3]float64{x + 1, x, x - 1}, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, real(got.Body(0).Element(0).At(0)), 1e-15)
	assert.Equal(t, files[0].Observer(), got.Observer())

	other := partialHeader("d")
	other.NP = 2
	files[2] = synthesized(t, other, 1)
	_, err = InterpolateCatalog(files, [3]float64{x + 1, x, x - 1}, true)
	assert.ErrorIs(t, err, ErrMismatch)
}
