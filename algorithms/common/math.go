package common

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Amplitude statistics used to summarize kernels and waveforms, on gonum.

// Summary describes the amplitude distribution of a real series.
type Summary struct {
	Peak   float64 // max |x|
	PeakAt int     // index of Peak
	RMS    float64
	Mean   float64
	StdDev float64
}

// Summarize computes a Summary of data. An empty slice yields the zero value.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	var s Summary
	for i, v := range data {
		if a := math.Abs(v); a > s.Peak {
			s.Peak = a
			s.PeakAt = i
		}
	}
	s.RMS = RMS(data)
	s.Mean = stat.Mean(data, nil)
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	return s
}

// SummarizeSpectrum summarizes the moduli of a complex spectrum.
func SummarizeSpectrum(spec []complex128) Summary {
	mod := make([]float64, len(spec))
	for i, c := range spec {
		mod[i] = cmplx.Abs(c)
	}
	return Summarize(mod)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// IsFinite reports whether every element is neither NaN nor Inf.
func IsFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Interpolate performs linear interpolation of y(x) at xi. x must be sorted
// ascending; values outside the range are clamped to the end points.
func Interpolate(x, y []float64, xi float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0.0
	}
	if len(x) == 1 || xi <= x[0] {
		return y[0]
	}
	if xi >= x[len(x)-1] {
		return y[len(y)-1]
	}

	// Binary search for the interval
	left := 0
	right := len(x) - 1

	for right-left > 1 {
		mid := (left + right) / 2
		if x[mid] <= xi {
			left = mid
		} else {
			right = mid
		}
	}

	t := (xi - x[left]) / (x[right] - x[left])
	return y[left] + t*(y[right]-y[left])
}
