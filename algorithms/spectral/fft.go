package spectral

import (
	"fmt"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT provides the real transforms used to move spectra between domains.
// Inverse transforms run on gonum plans, which are not safe for concurrent
// use, so plans are pooled per length.
type FFT struct {
	mu    sync.Mutex
	plans map[int]*sync.Pool
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{plans: make(map[int]*sync.Pool)}
}

var shared = NewFFT()

// Shared returns the process-wide FFT calculator.
func Shared() *FFT {
	return shared
}

func (f *FFT) plan(n int) (*fourier.FFT, func()) {
	f.mu.Lock()
	p, ok := f.plans[n]
	if !ok {
		p = &sync.Pool{New: func() any { return fourier.NewFFT(n) }}
		f.plans[n] = p
	}
	f.mu.Unlock()

	plan := p.Get().(*fourier.FFT)
	return plan, func() { p.Put(plan) }
}

// InverseReal computes the n-point real sequence whose Hermitian spectrum
// has coeff as its first n/2+1 terms. The sum is unnormalized:
//
//	x[j] = Σ_k c_k exp(+2πi jk/n), k over the full Hermitian spectrum.
func (f *FFT) InverseReal(dst []float64, coeff []complex128, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid transform length %d", n)
	}
	if len(coeff) != n/2+1 {
		return nil, fmt.Errorf("coefficient count %d does not match length %d", len(coeff), n)
	}
	if dst == nil {
		dst = make([]float64, n)
	} else if len(dst) != n {
		return nil, fmt.Errorf("destination length %d does not match length %d", len(dst), n)
	}

	plan, release := f.plan(n)
	defer release()

	return plan.Sequence(dst, coeff), nil
}

// ForwardReal computes the full unnormalized spectrum of x,
// X[k] = Σ_j x[j] exp(-2πi jk/n). mjibson/go-dsp handles any length.
func (f *FFT) ForwardReal(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}
