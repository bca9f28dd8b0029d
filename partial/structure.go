package partial

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/common"
)

// Structure is the background model the Q conversion reads.
type Structure interface {
	// Mu returns the shear modulus at radius r (km).
	Mu(r float64) float64
	// QMu returns the shear quality factor at radius r (km).
	QMu(r float64) float64
}

// TabulatedStructure interpolates linearly between sampled radii and
// clamps outside them.
type TabulatedStructure struct {
	Radii []float64 `json:"radii"`
	MuAt  []float64 `json:"mu"`
	QMuAt []float64 `json:"qmu"`
}

// NewTabulatedStructure validates the table. Radii must be strictly
// increasing.
func NewTabulatedStructure(radii, mu, qmu []float64) (*TabulatedStructure, error) {
	s := &TabulatedStructure{Radii: radii, MuAt: mu, QMuAt: qmu}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStructure reads a TabulatedStructure from JSON.
func LoadStructure(path string) (*TabulatedStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure: %w", err)
	}
	var s TabulatedStructure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse structure %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("structure %s: %w", path, err)
	}
	return &s, nil
}

func (s *TabulatedStructure) validate() error {
	n := len(s.Radii)
	if n == 0 {
		return fmt.Errorf("structure has no radii")
	}
	if len(s.MuAt) != n || len(s.QMuAt) != n {
		return fmt.Errorf("structure has %d radii, %d mu and %d qmu values", n, len(s.MuAt), len(s.QMuAt))
	}
	for i := 1; i < n; i++ {
		if s.Radii[i] <= s.Radii[i-1] {
			return fmt.Errorf("structure radii not increasing at %d", i)
		}
	}
	if slices.ContainsFunc(s.QMuAt, func(q float64) bool { return q <= 0 }) {
		return fmt.Errorf("structure has non-positive qmu")
	}
	return nil
}

func (s *TabulatedStructure) Mu(r float64) float64 {
	return common.Interpolate(s.Radii, s.MuAt, r)
}

func (s *TabulatedStructure) QMu(r float64) float64 {
	return common.Interpolate(s.Radii, s.QMuAt, r)
}
