package spc

import (
	"fmt"
)

// Body is the set of channel Elements at one perturbation point. It owns its
// elements; Clone copies them.
type Body struct {
	np       int
	elements []*Element
}

// NewBody returns nElement zero elements of np+1 steps.
func NewBody(np, nElement int) *Body {
	b := &Body{np: np, elements: make([]*Element, nElement)}
	for i := range b.elements {
		b.elements[i] = NewElement(np)
	}
	return b
}

// NewBodyFrom builds a body around elements, which must share np. The body
// takes ownership of them.
func NewBodyFrom(elements ...*Element) (*Body, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: body needs at least one element", ErrArgument)
	}
	np := elements[0].np
	for i, e := range elements {
		if e.np != np {
			return nil, fmt.Errorf("%w: element %d has np %d, want %d", ErrMismatch, i, e.np, np)
		}
	}
	return &Body{np: np, elements: elements}, nil
}

// NP returns the highest frequency step.
func (b *Body) NP() int { return b.np }

// NElement returns the channel count.
func (b *Body) NElement() int { return len(b.elements) }

// Element returns channel i.
func (b *Body) Element(i int) *Element { return b.elements[i] }

// Elements returns the channels. The slice is shared.
func (b *Body) Elements() []*Element { return b.elements }

// Clone returns a deep copy.
func (b *Body) Clone() *Body {
	c := &Body{np: b.np, elements: make([]*Element, len(b.elements))}
	for i, e := range b.elements {
		c.elements[i] = e.Clone()
	}
	return c
}

// HasNaN reports whether any channel holds a NaN.
func (b *Body) HasNaN() bool {
	for _, e := range b.elements {
		if e.HasNaN() {
			return true
		}
	}
	return false
}

func (b *Body) compatible(o *Body) error {
	if len(o.elements) != len(b.elements) {
		return fmt.Errorf("%w: %d vs %d elements", ErrMismatch, len(b.elements), len(o.elements))
	}
	if o.np != b.np {
		return fmt.Errorf("%w: np %d vs %d", ErrMismatch, b.np, o.np)
	}
	return nil
}

func (b *Body) each(fn func(i int, e *Element) error) error {
	for i, e := range b.elements {
		if err := fn(i, e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Scale multiplies every channel by c.
func (b *Body) Scale(c complex128) error {
	return b.each(func(_ int, e *Element) error { return e.Scale(c) })
}

// Add adds o channel by channel.
func (b *Body) Add(o *Body) error {
	if err := b.compatible(o); err != nil {
		return err
	}
	return b.each(func(i int, e *Element) error { return e.Add(o.elements[i]) })
}

// AddScaled adds c*o channel by channel.
func (b *Body) AddScaled(c complex128, o *Body) error {
	if err := b.compatible(o); err != nil {
		return err
	}
	return b.each(func(i int, e *Element) error { return e.AddScaled(c, o.elements[i]) })
}

// Differentiate differentiates every channel.
func (b *Body) Differentiate(tlen float64) error {
	return b.each(func(_ int, e *Element) error { return e.Differentiate(tlen) })
}

// ApplySourceTimeFunction convolves every channel with stf.
func (b *Body) ApplySourceTimeFunction(stf []complex128) error {
	return b.each(func(_ int, e *Element) error { return e.ApplySourceTimeFunction(stf) })
}

// ToTimeDomain converts every channel.
func (b *Body) ToTimeDomain(npts int, samplingHz, omegaI float64) error {
	return b.each(func(_ int, e *Element) error { return e.ToTimeDomain(npts, samplingHz, omegaI) })
}

// superpose returns Σ w[k]·bodies[k] as a new body.
func superpose(weights []float64, bodies ...*Body) (*Body, error) {
	for k := 1; k < len(bodies); k++ {
		if err := bodies[0].compatible(bodies[k]); err != nil {
			return nil, fmt.Errorf("body %d: %w", k, err)
		}
	}

	out := NewBody(bodies[0].np, len(bodies[0].elements))
	for k, body := range bodies {
		if err := out.AddScaled(complex(weights[k], 0), body); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Interpolate returns (1-u)·b1 + u·b2 for u in [0, 1].
func Interpolate(b1, b2 *Body, u float64) (*Body, error) {
	if u < 0 || u > 1 {
		return nil, fmt.Errorf("%w: unit distance %v outside [0, 1]", ErrArgument, u)
	}
	return superpose([]float64{1 - u, u}, b1, b2)
}

// LagrangeInterpolate evaluates the quadratic through three catalog bodies.
// dh holds the offsets of the query from the three nodes in units of the
// catalog spacing, dh[k] = x - x_k.
func LagrangeInterpolate(b1, b2, b3 *Body, dh [3]float64) (*Body, error) {
	c1 := dh[1] * dh[2] / 2
	c2 := -dh[0] * dh[2]
	c3 := dh[0] * dh[1] / 2
	return superpose([]float64{c1, c2, c3}, b1, b2, b3)
}

// LagrangeInterpolateBackward is LagrangeInterpolate for catalogs indexed in
// the mirrored direction, where dh[0] = x - x_0 but dh[1] = x_1 - x and
// dh[2] = x_2 - x.
func LagrangeInterpolateBackward(b1, b2, b3 *Body, dh [3]float64) (*Body, error) {
	c1 := dh[1] * dh[2] / 2
	c2 := dh[0] * dh[2]
	c3 := -dh[0] * dh[1] / 2
	return superpose([]float64{c1, c2, c3}, b1, b2, b3)
}
