package stf

import (
	"bytes"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
)

const (
	testNP   = 256
	testTLen = 409.6
)

func TestUnitAreaAtZeroFrequency(t *testing.T) {
	funcs := map[string]*Function{
		"boxcar":     Boxcar(testNP, testTLen, 3),
		"triangle":   Triangle(testNP, testTLen, 3),
		"asymmetric": AsymmetricTriangle(testNP, testTLen, 2, 5),
	}
	for name, f := range funcs {
		require.Len(t, f.Spectrum(), testNP+1, name)
		assert.Equal(t, complex(1, 0), f.Spectrum()[0], name)
		// continuity toward ω=0
		assert.InDelta(t, 1.0, real(f.Spectrum()[1]), 1e-3, name)
	}
}

func TestSymmetricAsymmetricTriangleIsTriangle(t *testing.T) {
	tri := Triangle(testNP, testTLen, 4)
	asym := AsymmetricTriangle(testNP, testTLen, 4, 4)
	for i := range tri.Spectrum() {
		assert.InDelta(t, real(tri.Spectrum()[i]), real(asym.Spectrum()[i]), 1e-9, "step %d", i)
		assert.InDelta(t, 0, imag(asym.Spectrum()[i]), 1e-9, "step %d", i)
	}
}

func TestTriangleIsSquaredBoxcar(t *testing.T) {
	// a triangle of half duration h is two boxcars of half duration h/2
	tri := Triangle(testNP, testTLen, 6)
	box := Boxcar(testNP, testTLen, 3)
	for i, b := range box.Spectrum() {
		assert.InDelta(t, real(b*b), real(tri.Spectrum()[i]), 1e-12, "step %d", i)
	}
}

func TestNonPositiveDurationIsIdentity(t *testing.T) {
	assert.True(t, Triangle(testNP, testTLen, 0).IsIdentity())
	assert.True(t, Boxcar(testNP, testTLen, -1).IsIdentity())
	assert.True(t, None(testNP, testTLen).IsIdentity())
	var nilFunc *Function
	assert.True(t, nilFunc.IsIdentity())
}

func TestTabulatedMatchesAnalyticTriangle(t *testing.T) {
	fs := 20.0
	h := 5.0
	// triangle centred at t=h, sampled from t=0
	n := int(2 * h * fs)
	samples := make([]float64, n+1)
	for i := range samples {
		tt := float64(i) / fs
		samples[i] = (1 - math.Abs(tt-h)/h) / h
	}

	f, err := Tabulated(testNP, testTLen, fs, samples)
	require.NoError(t, err)
	tri := Triangle(testNP, testTLen, h)

	for i := 0; i < 40; i++ {
		omega := 2 * math.Pi * float64(i) / testTLen
		// undo the delay of h seconds
		got := f.Spectrum()[i] * cmplx.Exp(complex(0, omega*h))
		assert.InDelta(t, real(tri.Spectrum()[i]), real(got), 2e-3, "step %d", i)
		assert.InDelta(t, 0, imag(got), 2e-3, "step %d", i)
	}
}

func TestTabulatedErrors(t *testing.T) {
	_, err := Tabulated(testNP, testTLen, 0, []float64{1})
	assert.Error(t, err)
	_, err = Tabulated(testNP, testTLen, 20, nil)
	assert.Error(t, err)
	_, err = Tabulated(testNP, testTLen, 0.1, []float64{1})
	assert.Error(t, err)
}

func TestCatalogLookup(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, logging.DebugLevel)

	catalog := NewCatalog(map[string]Entry{
		"box":    {Kind: KindBoxcar, HalfDuration: 2},
		"scaled": {Kind: KindTriangle, AmplitudeCorrection: 0.5},
		"bad":    {Kind: "spline"},
	}, logger)
	assert.Equal(t, 3, catalog.Len())

	f := catalog.Lookup(Event{ID: "box", HalfDuration: 9}, testNP, testTLen, 20)
	assert.Equal(t, KindBoxcar, f.Kind())
	assert.Equal(t, Boxcar(testNP, testTLen, 2).Spectrum(), f.Spectrum())

	f = catalog.Lookup(Event{ID: "scaled", HalfDuration: 3}, testNP, testTLen, 20)
	assert.Equal(t, complex(0.5, 0), f.Spectrum()[0])
	assert.InDelta(t, 0.5*real(Triangle(testNP, testTLen, 3).Spectrum()[7]), real(f.Spectrum()[7]), 1e-15)
	assert.Empty(t, buf.String())

	f = catalog.Lookup(Event{ID: "missing", HalfDuration: 3}, testNP, testTLen, 20)
	assert.Equal(t, KindTriangle, f.Kind())
	assert.Equal(t, Triangle(testNP, testTLen, 3).Spectrum(), f.Spectrum())
	assert.Contains(t, buf.String(), "[WARN] No source time function entry")

	buf.Reset()
	f = catalog.Lookup(Event{ID: "bad", HalfDuration: 3}, testNP, testTLen, 20)
	assert.Equal(t, KindTriangle, f.Kind())
	assert.Contains(t, buf.String(), "Unusable source time function entry")
}

func TestNilCatalogFallsBack(t *testing.T) {
	prev := logging.GetGlobalLogger()
	logging.SetGlobalLogger(nil)
	t.Cleanup(func() { logging.SetGlobalLogger(prev) })

	var c *Catalog
	f := c.Lookup(Event{ID: "x", HalfDuration: 1}, testNP, testTLen, 20)
	assert.Equal(t, KindTriangle, f.Kind())
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"201104112016A": {"kind": "asymmetric_triangle", "rise": 1.5, "decay": 4},
		"201104212053A": {"kind": "user", "samples": [0, 1, 0], "sampling_hz": 1}
	}`), 0o644))

	c, err := LoadCatalog(path, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	f := c.Lookup(Event{ID: "201104112016A"}, 16, 32, 1)
	assert.Equal(t, KindAsymmetricTriangle, f.Kind())

	f = c.Lookup(Event{ID: "201104212053A"}, 16, 32, 1)
	assert.Equal(t, KindUser, f.Kind())
	assert.InDelta(t, 1.0, real(f.Spectrum()[0]), 1e-12)

	require.NoError(t, os.WriteFile(path, []byte(`{"x": {"kind": "gauss"}}`), 0o644))
	_, err = LoadCatalog(path, nil)
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(dir, "none.json"), nil)
	assert.Error(t, err)
}

func TestForKind(t *testing.T) {
	ev := Event{ID: "e", HalfDuration: 2}
	f, err := ForKind(KindTriangle, ev, testNP, testTLen)
	require.NoError(t, err)
	assert.Equal(t, KindTriangle, f.Kind())

	_, err = ForKind(KindUser, ev, testNP, testTLen)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindNone, k)
	_, err = ParseKind("gauss")
	assert.Error(t, err)
}
