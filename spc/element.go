package spc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/common"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/spectral"
)

// kmToM converts solver amplitudes in km to m.
const kmToM = 1e3

var scratch = common.NewComplexPool()

// Element is the spectrum of one channel at one perturbation point over the
// frequency steps 0..np. All arithmetic happens on the spectrum; the
// time-domain conversion is one-way and freezes the element.
type Element struct {
	np   int
	freq []complex128
	time []float64
}

// NewElement returns a zero spectrum with np+1 steps.
func NewElement(np int) *Element {
	return &Element{np: np, freq: make([]complex128, np+1)}
}

// NewElementFrom copies spectrum (steps 0..np, np = len(spectrum)-1).
func NewElementFrom(spectrum []complex128) *Element {
	if len(spectrum) == 0 {
		return NewElement(0)
	}
	e := NewElement(len(spectrum) - 1)
	copy(e.freq, spectrum)
	return e
}

// NP returns the highest frequency step.
func (e *Element) NP() int { return e.np }

// Spectrum returns the frequency-domain values. The slice is shared and
// must not be modified.
func (e *Element) Spectrum() []complex128 { return e.freq }

// At returns the value at step ip.
func (e *Element) At(ip int) complex128 { return e.freq[ip] }

// Converted reports whether ToTimeDomain has run.
func (e *Element) Converted() bool { return e.time != nil }

// TimeSeries returns the time-domain samples, or nil before conversion.
func (e *Element) TimeSeries() []float64 { return e.time }

// HasNaN reports whether any spectrum value is NaN.
func (e *Element) HasNaN() bool { return cmplxs.HasNaN(e.freq) }

// Clone returns a deep copy.
func (e *Element) Clone() *Element {
	c := &Element{np: e.np, freq: append([]complex128(nil), e.freq...)}
	if e.time != nil {
		c.time = append([]float64(nil), e.time...)
	}
	return c
}

func (e *Element) mutable() error {
	if e.time != nil {
		return ErrConverted
	}
	return nil
}

func (e *Element) compatible(o *Element) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if o.np != e.np {
		return fmt.Errorf("%w: np %d vs %d", ErrMismatch, e.np, o.np)
	}
	return nil
}

// Scale multiplies every step by c.
func (e *Element) Scale(c complex128) error {
	if err := e.mutable(); err != nil {
		return err
	}
	cmplxs.Scale(c, e.freq)
	return nil
}

// Add adds o step by step.
func (e *Element) Add(o *Element) error {
	if err := e.compatible(o); err != nil {
		return err
	}
	cmplxs.Add(e.freq, o.freq)
	return nil
}

// AddScaled adds c*o step by step.
func (e *Element) AddScaled(c complex128, o *Element) error {
	if err := e.compatible(o); err != nil {
		return err
	}
	cmplxs.AddScaled(e.freq, c, o.freq)
	return nil
}

// Differentiate turns a displacement spectrum into a velocity spectrum by
// multiplying step i by iω, ω = 2πi/tlen. Step 0 stays as is.
func (e *Element) Differentiate(tlen float64) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if tlen <= 0 {
		return fmt.Errorf("%w: tlen %v", ErrArgument, tlen)
	}
	for i := 1; i <= e.np; i++ {
		omega := 2 * math.Pi * float64(i) / tlen
		e.freq[i] *= complex(0, omega)
	}
	return nil
}

// ApplySourceTimeFunction multiplies the spectrum by a source time function
// spectrum of the same length. A nil spectrum is the identity.
func (e *Element) ApplySourceTimeFunction(stf []complex128) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if stf == nil {
		return nil
	}
	if len(stf) != len(e.freq) {
		return fmt.Errorf("%w: source time function has %d steps, element %d", ErrMismatch, len(stf), len(e.freq))
	}
	cmplxs.Mul(e.freq, stf)
	return nil
}

// ToTimeDomain computes npts real samples at samplingHz. The spectrum is
// zero padded (or truncated) to npts/2+1 steps and inverse transformed,
// sample t is multiplied by exp(omegaI*t/samplingHz) to remove the solver's
// artificial damping, and amplitudes are rescaled by 1e3/T with
// T = npts/samplingHz: the steps are samples of a continuous spectrum with
// spacing 1/T, and the solver works in km.
func (e *Element) ToTimeDomain(npts int, samplingHz, omegaI float64) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if npts <= 0 || npts%2 != 0 {
		return fmt.Errorf("%w: npts %d must be positive and even", ErrArgument, npts)
	}
	if samplingHz <= 0 {
		return fmt.Errorf("%w: sampling %v Hz", ErrArgument, samplingHz)
	}

	n2 := npts/2 + 1
	coeff := scratch.Get(n2)
	defer scratch.Put(coeff)
	copy(coeff, e.freq)

	series, err := spectral.Shared().InverseReal(nil, coeff, npts)
	if err != nil {
		return err
	}

	window := float64(npts) / samplingHz
	floats.Scale(kmToM/window, series)

	for t := range series {
		series[t] *= math.Exp(omegaI * float64(t) / samplingHz)
	}

	e.time = series
	return nil
}
