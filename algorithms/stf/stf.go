// Package stf builds source time function spectra that are multiplied into
// wavefield spectra before they are taken to the time domain.
package stf

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/spectral"
)

// Kind selects the pulse shape.
type Kind string

const (
	KindNone               Kind = "none"
	KindBoxcar             Kind = "boxcar"
	KindTriangle           Kind = "triangle"
	KindAsymmetricTriangle Kind = "asymmetric_triangle"
	KindUser               Kind = "user"
)

// ParseKind accepts the names above.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindNone, KindBoxcar, KindTriangle, KindAsymmetricTriangle, KindUser:
		return k, nil
	case "":
		return KindNone, nil
	}
	return "", fmt.Errorf("unknown source time function %q", s)
}

// Function is the spectrum of a unit-area source pulse sampled at the
// np+1 frequency steps k/tlen. A Function with a nil spectrum is the
// identity (no convolution).
type Function struct {
	kind     Kind
	np       int
	tlen     float64
	spectrum []complex128
}

// None returns the pass-through function.
func None(np int, tlen float64) *Function {
	return &Function{kind: KindNone, np: np, tlen: tlen}
}

// Kind returns the pulse shape.
func (f *Function) Kind() Kind { return f.kind }

// NP returns the number of frequency steps (spectrum length - 1).
func (f *Function) NP() int { return f.np }

// TLen returns the time window length in seconds.
func (f *Function) TLen() float64 { return f.tlen }

// IsIdentity reports whether applying f is a no-op.
func (f *Function) IsIdentity() bool { return f == nil || f.spectrum == nil }

// Spectrum returns the np+1 spectrum values, or nil for the identity.
// The slice must not be modified.
func (f *Function) Spectrum() []complex128 {
	if f == nil {
		return nil
	}
	return f.spectrum
}

// Scaled returns a copy of f whose spectrum is multiplied by c. Scaling the
// identity materializes a flat spectrum.
func (f *Function) Scaled(c float64) *Function {
	out := &Function{kind: f.kind, np: f.np, tlen: f.tlen, spectrum: make([]complex128, f.np+1)}
	for i := range out.spectrum {
		v := complex(1, 0)
		if f.spectrum != nil {
			v = f.spectrum[i]
		}
		out.spectrum[i] = v * complex(c, 0)
	}
	return out
}

func angular(i int, tlen float64) float64 {
	return 2 * math.Pi * float64(i) / tlen
}

func build(kind Kind, np int, tlen float64, at func(omega float64) complex128) *Function {
	spec := make([]complex128, np+1)
	spec[0] = 1
	for i := 1; i <= np; i++ {
		spec[i] = at(angular(i, tlen))
	}
	return &Function{kind: kind, np: np, tlen: tlen, spectrum: spec}
}

// Boxcar is a rectangle of the given half duration (total width 2h).
func Boxcar(np int, tlen, halfDuration float64) *Function {
	if halfDuration <= 0 {
		return None(np, tlen)
	}
	return build(KindBoxcar, np, tlen, func(omega float64) complex128 {
		x := omega * halfDuration
		return complex(math.Sin(x)/x, 0)
	})
}

// Triangle is a symmetric triangle of the given half duration (total width 2h).
func Triangle(np int, tlen, halfDuration float64) *Function {
	if halfDuration <= 0 {
		return None(np, tlen)
	}
	return build(KindTriangle, np, tlen, func(omega float64) complex128 {
		x := omega * halfDuration
		return complex(2*(1-math.Cos(x))/(x*x), 0)
	})
}

// AsymmetricTriangle rises over rise seconds to its peak at t=0 and decays
// over decay seconds.
func AsymmetricTriangle(np int, tlen, rise, decay float64) *Function {
	if rise <= 0 || decay <= 0 {
		return Triangle(np, tlen, math.Max(rise, decay))
	}
	h := 2 / (rise + decay)
	return build(KindAsymmetricTriangle, np, tlen, func(omega float64) complex128 {
		// the second derivative is three impulses at -rise, 0, decay
		sum := cmplx.Exp(complex(0, omega*rise))/complex(rise, 0) -
			complex(1/rise+1/decay, 0) +
			cmplx.Exp(complex(0, -omega*decay))/complex(decay, 0)
		return -complex(h/(omega*omega), 0) * sum
	})
}

// Tabulated converts a pulse sampled at samplingHz, starting at t=0, into
// a spectrum. The pulse is zero padded (or truncated) to the tlen window.
func Tabulated(np int, tlen, samplingHz float64, samples []float64) (*Function, error) {
	if samplingHz <= 0 {
		return nil, fmt.Errorf("invalid sampling frequency %v", samplingHz)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty source pulse")
	}

	// bin k of an n-point transform sits at k/tlen only when n = tlen*fs
	n := int(math.Round(tlen * samplingHz))
	if n <= np {
		return nil, fmt.Errorf("pulse sampling %v Hz cannot resolve %d steps over %v s", samplingHz, np, tlen)
	}
	padded := make([]float64, n)
	copy(padded, samples)

	full := spectral.Shared().ForwardReal(padded)
	dt := 1 / samplingHz
	spec := make([]complex128, np+1)
	for i := range spec {
		spec[i] = full[i] * complex(dt, 0)
	}
	return &Function{kind: KindUser, np: np, tlen: tlen, spectrum: spec}, nil
}
