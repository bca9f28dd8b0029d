package spc

import (
	"fmt"
	"math"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
)

// File is read access to a spectral wavefield file, whether decoded from
// disk or synthesized. Bodies are shared between readers: Clone a body
// before mutating it.
type File interface {
	ID() string
	Kind() Kind
	TLen() float64
	NP() int
	NBody() int
	OmegaI() float64
	// Observer is the horizontal position where the wavefield is evaluated
	// (the perturbation point for PF/PB/UF/UB, the station for PAR files).
	Observer() geo.HorizontalPosition
	// Source is the source position. Horizontal-only sources have R = 0.
	Source() geo.FullPosition
	// BodyR returns the perturbation-point radii, nil for kinds without radii.
	BodyR() []float64
	Bodies() []*Body
	Body(i int) *Body
}

// Header is the metadata block of a spectral file.
type Header struct {
	ID       string
	Kind     Kind
	TLen     float64
	NP       int
	OmegaI   float64
	Observer geo.HorizontalPosition
	Source   geo.FullPosition
	BodyR    []float64
}

type fileData struct {
	header Header
	bodies []*Body
}

func (f *fileData) ID() string                       { return f.header.ID }
func (f *fileData) Kind() Kind                       { return f.header.Kind }
func (f *fileData) TLen() float64                    { return f.header.TLen }
func (f *fileData) NP() int                          { return f.header.NP }
func (f *fileData) NBody() int                       { return len(f.bodies) }
func (f *fileData) OmegaI() float64                  { return f.header.OmegaI }
func (f *fileData) Observer() geo.HorizontalPosition { return f.header.Observer }
func (f *fileData) Source() geo.FullPosition         { return f.header.Source }
func (f *fileData) Body(i int) *Body                 { return f.bodies[i] }

func (f *fileData) BodyR() []float64 {
	if f.header.BodyR == nil {
		return nil
	}
	return append([]float64(nil), f.header.BodyR...)
}

func (f *fileData) Bodies() []*Body {
	return append([]*Body(nil), f.bodies...)
}

// Header returns a copy of the metadata.
func (f *fileData) Header() Header {
	h := f.header
	h.BodyR = f.BodyR()
	return h
}

// FormattedFile is a file decoded from a binary stream. It is immutable.
type FormattedFile struct {
	fileData
}

// SynthesizedFile is a file built in memory, such as a partial derivative.
// Its bodies can be replaced until it is handed to readers.
type SynthesizedFile struct {
	fileData
}

// NewSynthesizedFile validates bodies against h and the kind's layout.
func NewSynthesizedFile(h Header, bodies []*Body) (*SynthesizedFile, error) {
	if !h.Kind.Valid() {
		return nil, fmt.Errorf("%w: kind %v", ErrUnknownEncoding, h.Kind)
	}
	if h.TLen <= 0 || h.NP <= 0 {
		return nil, fmt.Errorf("%w: tlen %v, np %d", ErrArgument, h.TLen, h.NP)
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", ErrArgument)
	}
	if h.Kind.HasRadii() && len(h.BodyR) != len(bodies) {
		return nil, fmt.Errorf("%w: %d radii for %d bodies", ErrMismatch, len(h.BodyR), len(bodies))
	}
	if !h.Kind.HasRadii() {
		h.BodyR = nil
	} else {
		h.BodyR = append([]float64(nil), h.BodyR...)
	}

	f := &SynthesizedFile{fileData{header: h, bodies: make([]*Body, len(bodies))}}
	for i, b := range bodies {
		if err := f.check(i, b); err != nil {
			return nil, err
		}
		f.bodies[i] = b
	}
	return f, nil
}

func (f *SynthesizedFile) check(i int, b *Body) error {
	if b == nil {
		return fmt.Errorf("%w: body %d is nil", ErrArgument, i)
	}
	if b.NElement() != f.header.Kind.Channels() {
		return fmt.Errorf("%w: body %d has %d channels, %v needs %d", ErrMismatch, i, b.NElement(), f.header.Kind, f.header.Kind.Channels())
	}
	if b.NP() != f.header.NP {
		return fmt.Errorf("%w: body %d has np %d, file %d", ErrMismatch, i, b.NP(), f.header.NP)
	}
	return nil
}

// ReplaceBody swaps body i.
func (f *SynthesizedFile) ReplaceBody(i int, b *Body) error {
	if i < 0 || i >= len(f.bodies) {
		return fmt.Errorf("%w: body index %d of %d", ErrArgument, i, len(f.bodies))
	}
	if err := f.check(i, b); err != nil {
		return err
	}
	f.bodies[i] = b
	return nil
}

// radiusTolerance is the radius agreement, in km, for bodies to be paired.
const radiusTolerance = 1e-6

// SameRadius reports whether two radii denote the same perturbation point.
func SameRadius(r1, r2 float64) bool {
	return math.Abs(r1-r2) <= radiusTolerance
}

// positionTolerance is the horizontal agreement, in degrees, for positions.
const positionTolerance = 1e-6

// SamePosition reports whether two horizontal positions coincide.
func SamePosition(p, q geo.HorizontalPosition) bool {
	return p.Equal(q, positionTolerance)
}

// sameLayout checks everything two files must share to be added together.
func sameLayout(a, b File) error {
	switch {
	case a.Kind() != b.Kind():
		return Mismatch("kind", a.ID(), b.ID(), a.Kind(), b.Kind())
	case a.NP() != b.NP():
		return Mismatch("np", a.ID(), b.ID(), a.NP(), b.NP())
	case a.TLen() != b.TLen():
		return Mismatch("tlen", a.ID(), b.ID(), a.TLen(), b.TLen())
	case a.OmegaI() != b.OmegaI():
		return Mismatch("omegai", a.ID(), b.ID(), a.OmegaI(), b.OmegaI())
	case a.NBody() != b.NBody():
		return Mismatch("nbody", a.ID(), b.ID(), a.NBody(), b.NBody())
	}
	ra, rb := a.BodyR(), b.BodyR()
	for i := range ra {
		if !SameRadius(ra[i], rb[i]) {
			return Mismatch(fmt.Sprintf("bodyR[%d]", i), a.ID(), b.ID(), ra[i], rb[i])
		}
	}
	return nil
}

// Combine adds two files of identical layout and geometry, for example the
// PSV and SH halves of one wavefield.
func Combine(a, b File) (*SynthesizedFile, error) {
	if err := sameLayout(a, b); err != nil {
		return nil, err
	}
	if !SamePosition(a.Observer(), b.Observer()) {
		return nil, Mismatch("observer", a.ID(), b.ID(), a.Observer(), b.Observer())
	}
	if !SamePosition(a.Source().HorizontalPosition, b.Source().HorizontalPosition) {
		return nil, Mismatch("source", a.ID(), b.ID(), a.Source(), b.Source())
	}

	bodies := make([]*Body, a.NBody())
	for i := range bodies {
		sum := a.Body(i).Clone()
		if err := sum.Add(b.Body(i)); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies[i] = sum
	}

	h := headerOf(a)
	h.ID = a.ID() + "+" + b.ID()
	return NewSynthesizedFile(h, bodies)
}

// InterpolateCatalog evaluates three neighbouring catalog files at the
// query point implied by dh (see LagrangeInterpolate). The result carries
// the first file's metadata.
func InterpolateCatalog(files [3]File, dh [3]float64, backward bool) (*SynthesizedFile, error) {
	for k := 1; k < 3; k++ {
		if err := sameLayout(files[0], files[k]); err != nil {
			return nil, err
		}
	}

	interp := LagrangeInterpolate
	if backward {
		interp = LagrangeInterpolateBackward
	}

	bodies := make([]*Body, files[0].NBody())
	for i := range bodies {
		b, err := interp(files[0].Body(i), files[1].Body(i), files[2].Body(i), dh)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies[i] = b
	}

	h := headerOf(files[0])
	h.ID = files[0].ID() + "~interpolated"
	return NewSynthesizedFile(h, bodies)
}

func headerOf(f File) Header {
	return Header{
		ID:       f.ID(),
		Kind:     f.Kind(),
		TLen:     f.TLen(),
		NP:       f.NP(),
		OmegaI:   f.OmegaI(),
		Observer: f.Observer(),
		Source:   f.Source(),
		BodyR:    f.BodyR(),
	}
}
