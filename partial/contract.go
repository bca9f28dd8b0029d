package partial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/spc"
)

// Pair is one forward/backward couple at a perturbation point.
type Pair struct {
	Forward  *spc.Body
	Backward *spc.Body
	// Radius of the perturbation point in km, used by Q.
	Radius float64
	TLen   float64
	Angles Angles
}

// Contractor computes kernel spectra. The zero value handles every
// parameter except Q.
type Contractor struct {
	// Structure supplies μ and Q at the perturbation radius for Q kernels.
	Structure Structure
	// Omega0 is the angular reference frequency of the Q dispersion, rad/s.
	Omega0 float64
}

// Contract returns the Z, R and T kernel spectra of p, each np+1 long.
//
// The channel layout of the pair selects the contraction:
//   - 9 forward strains against 27 backward strains (elastic parameters)
//   - 3 forward displacements against 9 backward displacements (RHO)
//   - 3 against 3, paired channel by channel (any parameter)
func (c *Contractor) Contract(p ParameterType, pair Pair) ([3][]complex128, error) {
	var out [3][]complex128
	fwd, bwd := pair.Forward, pair.Backward

	if fwd.NP() != bwd.NP() {
		return out, spc.Mismatch("np", "forward", "backward", fwd.NP(), bwd.NP())
	}
	if !(pair.TLen > 0) {
		return out, fmt.Errorf("%w: tlen %v", spc.ErrArgument, pair.TLen)
	}
	if p < 0 || int(p) >= len(parameterNames) {
		return out, fmt.Errorf("%w: parameter %v", spc.ErrArgument, p)
	}

	np := fwd.NP()
	for k := range out {
		out[k] = make([]complex128, np+1)
	}

	nf, nb := fwd.NElement(), bwd.NElement()
	switch {
	case nf == 9 && nb == 27:
		if !p.IsElastic() {
			return out, fmt.Errorf("%w: %v needs displacement, got strain", spc.ErrMismatch, p)
		}
		w, _ := weightingFor(p)
		contractStrain(w, pair, out)
	case nf == 3 && nb == 9:
		if p != ParamRho {
			return out, fmt.Errorf("%w: %v needs strain, got displacement", spc.ErrMismatch, p)
		}
		contractDensity(pair, out)
	case nf == 3 && nb == 3:
		contractDiagonal(p, pair, out)
	default:
		return out, fmt.Errorf("%w: cannot contract %d forward with %d backward channels", spc.ErrMismatch, nf, nb)
	}

	rotateVector(out, pair.Angles.Vector)

	if p == ParamQ {
		if err := c.toQ(out, pair); err != nil {
			return out, err
		}
	}

	for k, spec := range out {
		if cmplxs.HasNaN(spec) {
			return out, fmt.Errorf("%w: %v kernel component %d", spc.ErrNaN, p, k)
		}
	}
	return out, nil
}

func angular(ip int, tlen float64) float64 {
	return 2 * math.Pi * float64(ip) / tlen
}

// rotation is Q(θ) about the radial axis, acting on (r, θ, φ).
func rotation(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	})
}

// rotator applies a real rotation to complex vectors by rotating the real
// and imaginary parts separately.
type rotator struct {
	m            mat.Matrix
	re, im       *mat.VecDense
	outRe, outIm *mat.VecDense
}

func newRotator(m mat.Matrix) *rotator {
	n, _ := m.Dims()
	return &rotator{
		m:     m,
		re:    mat.NewVecDense(n, nil),
		im:    mat.NewVecDense(n, nil),
		outRe: mat.NewVecDense(n, nil),
		outIm: mat.NewVecDense(n, nil),
	}
}

func (r *rotator) apply(v []complex128) {
	for i, x := range v {
		r.re.SetVec(i, real(x))
		r.im.SetVec(i, imag(x))
	}
	r.outRe.MulVec(r.m, r.re)
	r.outIm.MulVec(r.m, r.im)
	for i := range v {
		v[i] = complex(r.outRe.AtVec(i), r.outIm.AtVec(i))
	}
}

// contractStrain computes K_c = -Σ W_{ij,kl} εF_ij ε'B(c)_kl where ε'B(c)
// is backward block c rotated as Q ε Qᵀ.
func contractStrain(w weighting, pair Pair, out [3][]complex128) {
	q := rotation(pair.Angles.Tensor)
	var qq mat.Dense
	qq.Kronecker(q, q) // vec(Q ε Qᵀ) = (Q ⊗ Q) vec(ε) for row-major vec
	rot := newRotator(&qq)

	fe := pair.Forward.Elements()
	be := pair.Backward.Elements()
	var ef, eb [9]complex128
	for ip := range out[0] {
		for k := range ef {
			ef[k] = fe[k].At(ip)
		}
		for comp := 0; comp < 3; comp++ {
			for k := range eb {
				eb[k] = be[9*comp+k].At(ip)
			}
			rot.apply(eb[:])
			var sum complex128
			for _, tm := range w {
				sum += complex(tm.w, 0) * ef[tm.ij] * eb[tm.kl]
			}
			out[comp][ip] = -sum
		}
	}
}

// contractDensity computes K_c = ω² Σ uF_i u'B(c)_i.
func contractDensity(pair Pair, out [3][]complex128) {
	rot := newRotator(rotation(pair.Angles.Tensor))

	fe := pair.Forward.Elements()
	be := pair.Backward.Elements()
	var ub [3]complex128
	for ip := range out[0] {
		omega := angular(ip, pair.TLen)
		for comp := 0; comp < 3; comp++ {
			for k := range ub {
				ub[k] = be[3*comp+k].At(ip)
			}
			rot.apply(ub[:])
			var sum complex128
			for k := range ub {
				sum += fe[k].At(ip) * ub[k]
			}
			out[comp][ip] = complex(omega*omega, 0) * sum
		}
	}
}

// contractDiagonal pairs channel c with channel c: K_c = s·uF_c·uB_c with
// s = ω² for RHO and -1 otherwise.
func contractDiagonal(p ParameterType, pair Pair, out [3][]complex128) {
	fe := pair.Forward.Elements()
	be := pair.Backward.Elements()
	for ip := range out[0] {
		s := -1.0
		if p == ParamRho {
			omega := angular(ip, pair.TLen)
			s = omega * omega
		}
		for comp := 0; comp < 3; comp++ {
			out[comp][ip] = complex(s, 0) * fe[comp].At(ip) * be[comp].At(ip)
		}
	}
}

// rotateVector turns the R/T pair by theta; Z is unchanged.
func rotateVector(out [3][]complex128, theta float64) {
	s, c := math.Sincos(theta)
	cs, sn := complex(c, 0), complex(s, 0)
	for ip := range out[1] {
		v1, v2 := out[1][ip], out[2][ip]
		out[1][ip] = cs*v1 + sn*v2
		out[2][ip] = -sn*v1 + cs*v2
	}
}

// toQ converts MU kernels to Q kernels:
// K_Q = K_MU·(-μ/Q²)·((2/π)·ln(ω/ω0) + i). The DC step is zero.
func (c *Contractor) toQ(out [3][]complex128, pair Pair) error {
	if c == nil || c.Structure == nil {
		return ErrNoStructure
	}
	if !(c.Omega0 > 0) {
		return fmt.Errorf("%w: reference angular frequency %v", spc.ErrArgument, c.Omega0)
	}
	mu := c.Structure.Mu(pair.Radius)
	q := c.Structure.QMu(pair.Radius)
	scale := -mu / (q * q)

	for ip := range out[0] {
		if ip == 0 {
			for comp := range out {
				out[comp][0] = 0
			}
			continue
		}
		omega := angular(ip, pair.TLen)
		factor := complex(scale, 0) * complex(2/math.Pi*math.Log(omega/c.Omega0), 1)
		for comp := range out {
			out[comp][ip] *= factor
		}
	}
	return nil
}
