// Package partial computes Fréchet kernels by contracting a forward
// wavefield with a backward (reciprocal) wavefield at each perturbation
// point, and runs that contraction over many event-station pairs.
package partial

import (
	"fmt"
	"strings"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/spc"
)

// ParameterType is a structural parameter a kernel is computed for.
type ParameterType int

const (
	ParamA ParameterType = iota
	ParamC
	ParamF
	ParamL
	ParamN
	ParamLambda
	ParamMu
	ParamKappa
	ParamRho
	ParamQ
)

var parameterNames = [...]string{"A", "C", "F", "L", "N", "LAMBDA", "MU", "KAPPA", "RHO", "Q"}

var partialKinds = [...]spc.Kind{
	ParamA:      spc.PARA,
	ParamC:      spc.PARC,
	ParamF:      spc.PARF,
	ParamL:      spc.PARL,
	ParamN:      spc.PARN,
	ParamLambda: spc.PAR1,
	ParamMu:     spc.PAR2,
	ParamKappa:  spc.PARK,
	ParamRho:    spc.PAR0,
	ParamQ:      spc.PARQ,
}

func (p ParameterType) String() string {
	if p < 0 || int(p) >= len(parameterNames) {
		return fmt.Sprintf("ParameterType(%d)", int(p))
	}
	return parameterNames[p]
}

// ParseParameterType accepts the names returned by String, case-insensitive.
func ParseParameterType(s string) (ParameterType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range parameterNames {
		if name == up {
			return ParameterType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter type %q", s)
}

// PartialKind returns the spectral file kind kernels of p are stored as.
func (p ParameterType) PartialKind() spc.Kind {
	return partialKinds[p]
}

// IsElastic reports whether p is contracted over strain.
func (p ParameterType) IsElastic() bool {
	return p != ParamRho
}

// Strain components are indexed 3*i+j over (r, θ, φ).
const (
	iR = iota
	iT
	iP
)

func ij(i, j int) int { return 3*i + j }

type term struct {
	ij, kl int
	w      float64
}

// weighting is the sparse W_{ij,kl} of one parameter.
type weighting []term

func buildWeighting(add func(w map[[2]int]float64)) weighting {
	acc := make(map[[2]int]float64)
	add(acc)
	out := make(weighting, 0, len(acc))
	for a := 0; a < 9; a++ {
		for b := 0; b < 9; b++ {
			if w := acc[[2]int{a, b}]; w != 0 {
				out = append(out, term{ij: a, kl: b, w: w})
			}
		}
	}
	return out
}

func set(w map[[2]int]float64, i, j, k, l int, v float64) {
	w[[2]int{ij(i, j), ij(k, l)}] += v
}

// weightings hold the stiffness patterns with the symmetry axis along r.
var weightings = map[ParameterType]weighting{
	ParamA: buildWeighting(func(w map[[2]int]float64) {
		set(w, iT, iT, iT, iT, 1)
		set(w, iP, iP, iP, iP, 1)
		set(w, iT, iT, iP, iP, 1)
		set(w, iP, iP, iT, iT, 1)
	}),
	ParamC: buildWeighting(func(w map[[2]int]float64) {
		set(w, iR, iR, iR, iR, 1)
	}),
	ParamF: buildWeighting(func(w map[[2]int]float64) {
		set(w, iR, iR, iT, iT, 1)
		set(w, iT, iT, iR, iR, 1)
		set(w, iR, iR, iP, iP, 1)
		set(w, iP, iP, iR, iR, 1)
	}),
	ParamL: buildWeighting(func(w map[[2]int]float64) {
		for _, h := range []int{iT, iP} {
			set(w, iR, h, iR, h, 1)
			set(w, iR, h, h, iR, 1)
			set(w, h, iR, iR, h, 1)
			set(w, h, iR, h, iR, 1)
		}
	}),
	ParamN: buildWeighting(func(w map[[2]int]float64) {
		set(w, iT, iP, iT, iP, 1)
		set(w, iT, iP, iP, iT, 1)
		set(w, iP, iT, iT, iP, 1)
		set(w, iP, iT, iP, iT, 1)
		set(w, iT, iT, iP, iP, -2)
		set(w, iP, iP, iT, iT, -2)
	}),
	ParamLambda: buildWeighting(isotropicLambda),
	ParamKappa:  buildWeighting(isotropicLambda),
	ParamMu: buildWeighting(func(w map[[2]int]float64) {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				set(w, i, j, i, j, 1)
				set(w, i, j, j, i, 1)
			}
		}
	}),
}

// isotropicLambda is δij·δkl.
func isotropicLambda(w map[[2]int]float64) {
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			set(w, i, i, k, k, 1)
		}
	}
}

// weightingFor returns the strain weighting of p. Q kernels are built from
// the MU weighting.
func weightingFor(p ParameterType) (weighting, bool) {
	if p == ParamQ {
		p = ParamMu
	}
	w, ok := weightings[p]
	return w, ok
}
