package spc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

type encodeOptions struct {
	skipStepZero bool
}

// EncodeOption configures Encode and WriteFile.
type EncodeOption func(*encodeOptions)

// WithoutStepZero omits the step-0 records, as some solvers do.
func WithoutStepZero() EncodeOption {
	return func(o *encodeOptions) { o.skipStepZero = true }
}

// WriteFile encodes f to path, creating or truncating it.
func WriteFile(path string, f File, opts ...EncodeOption) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(out)
	if err := Encode(w, f, opts...); err != nil {
		return err
	}
	return w.Flush()
}

// Encode writes f in the binary spectral layout Decode reads. Catalog kinds
// cannot be encoded because their azimuthal orders are not retained.
func Encode(w io.Writer, f File, opts ...EncodeOption) error {
	o := &encodeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	k := f.Kind()
	if !k.Valid() {
		return fmt.Errorf("spc %s: %w: kind %v", f.ID(), ErrUnknownEncoding, k)
	}
	if k.IsCatalog() {
		return fmt.Errorf("spc %s: %w: encode %v", f.ID(), ErrUnsupported, k)
	}

	e := &encoder{buf: make([]byte, 0, 512)}
	e.float64(f.TLen())
	e.int32(int32(f.NP()))
	e.int32(int32(f.NBody()))
	e.int32(k.Tag())
	e.float64(f.OmegaI())

	obs := f.Observer()
	e.float64(obs.Latitude)
	e.float64(obs.Longitude)

	src := f.Source()
	e.float64(src.Latitude)
	e.float64(src.Longitude)
	if k.FullSource() {
		e.float64(src.R)
	}
	if k.HasRadii() {
		for _, r := range f.BodyR() {
			e.float64(r)
		}
	}
	if err := e.flush(w); err != nil {
		return err
	}

	first := 0
	if o.skipStepZero {
		first = 1
	}
	bodies := f.Bodies()
	for step := first; step <= f.NP(); step++ {
		for _, b := range bodies {
			e.int32(int32(step))
			for _, el := range b.elements {
				v := el.freq[step]
				e.float64(real(v))
				e.float64(imag(v))
			}
			if err := e.flush(w); err != nil {
				return err
			}
		}
	}
	return nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) int32(v int32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(v))
}

func (e *encoder) float64(v float64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(v))
}

func (e *encoder) flush(w io.Writer) error {
	_, err := w.Write(e.buf)
	e.buf = e.buf[:0]
	return err
}
