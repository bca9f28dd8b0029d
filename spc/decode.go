package spc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
)

const (
	// maxSteps bounds np and nbody read from a header.
	maxSteps = 1 << 20
	// maxValues bounds nbody·channels·(np+1) of one file.
	maxValues = 1 << 27
)

type decodeOptions struct {
	id       string
	fileName string
	kind     Kind
	observer *geo.HorizontalPosition
	source   *geo.FullPosition
	azimuth  *float64
	logger   logging.Logger
}

// Option configures Decode and ReadFile.
type Option func(*decodeOptions)

// WithKind sets the kind used when the header tag is 0.
func WithKind(k Kind) Option {
	return func(o *decodeOptions) { o.kind = k }
}

// WithObserver replaces the observer position stored in the file.
func WithObserver(p geo.HorizontalPosition) Option {
	return func(o *decodeOptions) { o.observer = &p }
}

// WithSource replaces the source position stored in the file.
func WithSource(p geo.FullPosition) Option {
	return func(o *decodeOptions) { o.source = &p }
}

// WithAzimuth sets the azimuth, in radians, at which catalog records are
// reconstructed. Catalog kinds require it.
func WithAzimuth(phi float64) Option {
	return func(o *decodeOptions) { o.azimuth = &phi }
}

// WithID sets the identity reported by the file and its errors.
func WithID(id string) Option {
	return func(o *decodeOptions) { o.id = id }
}

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l logging.Logger) Option {
	return func(o *decodeOptions) { o.logger = l }
}

func withFileName(name string) Option {
	return func(o *decodeOptions) { o.fileName = name }
}

// ReadFile decodes the spectral file at path. The file ID defaults to the
// base name without its .spc extension, and a header tag of 0 is resolved
// from the file name unless WithKind is given.
func ReadFile(path string, opts ...Option) (*FormattedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, ".spc")
	all := append([]Option{WithID(id), withFileName(base)}, opts...)
	return Decode(bufio.NewReader(f), all...)
}

// Decode reads one spectral file from r.
func Decode(r io.Reader, opts ...Option) (*FormattedFile, error) {
	o := &decodeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == "" {
		o.id = "<stream>"
	}

	logger := logging.OrGlobal(o.logger).WithFields(logging.Fields{
		"component": "spc_decoder",
		"function":  "Decode",
		"id":        o.id,
	})

	d := &decoder{r: r, opts: o, logger: logger}
	file, err := d.decode()
	if err != nil {
		logger.Error(err, "Failed to decode spectral file")
		return nil, fmt.Errorf("spc %s: %w", o.id, err)
	}

	logger.Debug("Spectral file decoded", logging.Fields{
		"kind":  file.header.Kind.String(),
		"np":    file.header.NP,
		"nbody": len(file.bodies),
	})
	return file, nil
}

type decoder struct {
	r      io.Reader
	buf    [8]byte
	opts   *decodeOptions
	logger logging.Logger
}

func (d *decoder) read(n int) ([]byte, error) {
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	return d.buf[:n], nil
}

func (d *decoder) int32() (int32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (d *decoder) float64() (float64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (d *decoder) floats(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := d.float64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) complex() (complex128, error) {
	re, err := d.float64()
	if err != nil {
		return 0, err
	}
	im, err := d.float64()
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

func (d *decoder) resolveKind(tag int32) (Kind, error) {
	if tag != 0 {
		k, err := KindFromTag(tag)
		if err != nil {
			return KindUnknown, err
		}
		if d.opts.kind != KindUnknown && d.opts.kind != k {
			d.logger.Warn("Header tag overrides requested kind", logging.Fields{
				"tag_kind":       k.String(),
				"requested_kind": d.opts.kind.String(),
			})
		}
		return k, nil
	}
	if d.opts.kind.Valid() {
		return d.opts.kind, nil
	}
	if d.opts.fileName != "" {
		return KindFromFileName(d.opts.fileName)
	}
	return KindUnknown, fmt.Errorf("%w: tag 0 needs a kind from the file name or WithKind", ErrUnknownEncoding)
}

func (d *decoder) decodeHeader() (Header, int, error) {
	var h Header
	var err error

	if h.TLen, err = d.float64(); err != nil {
		return h, 0, err
	}
	np, err := d.int32()
	if err != nil {
		return h, 0, err
	}
	nbody, err := d.int32()
	if err != nil {
		return h, 0, err
	}
	tag, err := d.int32()
	if err != nil {
		return h, 0, err
	}
	if h.OmegaI, err = d.float64(); err != nil {
		return h, 0, err
	}

	if np < 0 || np > maxSteps || nbody <= 0 || nbody > maxSteps {
		return h, 0, fmt.Errorf("%w: np %d, nbody %d", ErrFormat, np, nbody)
	}
	if !(h.TLen > 0) {
		return h, 0, fmt.Errorf("%w: tlen %v", ErrFormat, h.TLen)
	}
	h.NP = int(np)
	h.ID = d.opts.id

	if h.Kind, err = d.resolveKind(tag); err != nil {
		return h, 0, err
	}
	if total := int64(nbody) * int64(h.NP+1) * int64(h.Kind.Channels()); total > maxValues {
		return h, 0, fmt.Errorf("%w: %d bodies of %d channels over %d steps exceed %d values",
			ErrFormat, nbody, h.Kind.Channels(), h.NP+1, maxValues)
	}

	obs, err := d.floats(2)
	if err != nil {
		return h, 0, err
	}
	h.Observer = geo.HorizontalPosition{Latitude: obs[0], Longitude: obs[1]}
	if d.opts.observer != nil {
		h.Observer = *d.opts.observer
	}

	nsrc := 2
	if h.Kind.FullSource() {
		nsrc = 3
	}
	src, err := d.floats(nsrc)
	if err != nil {
		return h, 0, err
	}
	h.Source = geo.NewFullPosition(src[0], src[1], 0)
	if nsrc == 3 {
		h.Source.R = src[2]
	}
	if d.opts.source != nil {
		h.Source = *d.opts.source
	}

	if h.Kind.HasRadii() {
		if h.BodyR, err = d.floats(int(nbody)); err != nil {
			return h, 0, err
		}
	}
	return h, int(nbody), nil
}

func (d *decoder) decode() (*FormattedFile, error) {
	h, nbody, err := d.decodeHeader()
	if err != nil {
		return nil, err
	}

	var rec recordReader
	if h.Kind.IsCatalog() {
		if d.opts.azimuth == nil {
			return nil, fmt.Errorf("%w: catalog kind %v needs an azimuth", ErrArgument, h.Kind)
		}
		rec = newCatalogRecord(h.Kind, *d.opts.azimuth)
	} else {
		rec = plainRecord{channels: h.Kind.Channels()}
	}

	d.logger.Debug("Header decoded", logging.Fields{
		"kind":    h.Kind.String(),
		"tlen":    h.TLen,
		"np":      h.NP,
		"nbody":   nbody,
		"omega_i": h.OmegaI,
	})

	channels := h.Kind.Channels()

	// spectra grow as records arrive, so memory follows the bytes present
	spectra := make([][][]complex128, nbody)
	for i := range spectra {
		spectra[i] = make([][]complex128, channels)
	}
	if h.NP == 0 && !d.hasMore() {
		for _, body := range spectra {
			for c := range body {
				body[c] = []complex128{0}
			}
		}
		return assemble(h, spectra)
	}

	ip, err := d.int32()
	if err != nil {
		return nil, err
	}
	if (ip != 0 && ip != 1) || int(ip) > h.NP {
		return nil, fmt.Errorf("%w: first record has step %d", ErrFormat, ip)
	}
	if ip == 1 {
		d.logger.Debug("Step 0 records absent")
		for _, body := range spectra {
			for c := range body {
				body[c] = append(body[c], 0)
			}
		}
	}

	values := make([]complex128, channels)
	for step := int(ip); step <= h.NP; step++ {
		for ib, body := range spectra {
			if step != int(ip) || ib != 0 {
				if ip, err = d.int32(); err != nil {
					return nil, err
				}
			}
			if int(ip) != step {
				return nil, fmt.Errorf("%w: body %d has step %d, want %d", ErrFormat, ib, ip, step)
			}
			if err := rec.read(d, values); err != nil {
				if errors.Is(err, ErrNaN) {
					return nil, fmt.Errorf("%w at body %d (r=%v) step %d", err, ib, radiusOf(h, ib), step)
				}
				return nil, err
			}
			for c, v := range values {
				body[c] = append(body[c], v)
			}
		}
	}
	return assemble(h, spectra)
}

// assemble wraps complete spectra, each np+1 long, without copying.
func assemble(h Header, spectra [][][]complex128) (*FormattedFile, error) {
	bodies := make([]*Body, len(spectra))
	for i, channels := range spectra {
		elements := make([]*Element, len(channels))
		for c, spec := range channels {
			elements[c] = &Element{np: h.NP, freq: spec}
		}
		bodies[i] = &Body{np: h.NP, elements: elements}
	}
	return &FormattedFile{fileData{header: h, bodies: bodies}}, nil
}

// hasMore reports whether at least one more byte is available. It is only
// used for np = 0 files, which may legitimately carry no records.
func (d *decoder) hasMore() bool {
	if br, ok := d.r.(*bufio.Reader); ok {
		_, err := br.Peek(1)
		return err == nil
	}
	br := bufio.NewReader(d.r)
	d.r = br
	_, err := br.Peek(1)
	return err == nil
}

func radiusOf(h Header, i int) float64 {
	if i < len(h.BodyR) {
		return h.BodyR[i]
	}
	return 0
}

// recordReader decodes one record into out, one value per channel.
type recordReader interface {
	read(d *decoder, out []complex128) error
}

type plainRecord struct {
	channels int
}

func (p plainRecord) read(d *decoder, out []complex128) error {
	for c := 0; c < p.channels; c++ {
		v, err := d.complex()
		if err != nil {
			return err
		}
		if cmplxIsNaN(v) {
			return fmt.Errorf("%w: channel %d", ErrNaN, c)
		}
		out[c] = v
	}
	return nil
}

// catalogRecord sums stored azimuthal orders, Σ c_m·e^{imφ}.
type catalogRecord struct {
	channels int
	zero     map[int]bool
	phase    []complex128 // e^{imφ} per stored order
}

func newCatalogRecord(k Kind, phi float64) catalogRecord {
	enc := encodings[k]
	zero := make(map[int]bool, len(enc.zero))
	for _, c := range enc.zero {
		zero[c] = true
	}
	phase := make([]complex128, len(enc.orders))
	for i, m := range enc.orders {
		phase[i] = azimuthalPhase(m, phi)
	}
	return catalogRecord{channels: enc.channels, zero: zero, phase: phase}
}

// azimuthalPhase returns cos(mφ) + i·sin(mφ), exactly 1 for m = 0.
func azimuthalPhase(m int, phi float64) complex128 {
	if m == 0 {
		return 1
	}
	s, c := math.Sincos(float64(m) * phi)
	return complex(c, s)
}

func (cr catalogRecord) read(d *decoder, out []complex128) error {
	for c := 0; c < cr.channels; c++ {
		if cr.zero[c] {
			out[c] = 0
			continue
		}
		var sum complex128
		for _, ph := range cr.phase {
			coeff, err := d.complex()
			if err != nil {
				return err
			}
			if cmplxIsNaN(coeff) {
				return fmt.Errorf("%w: channel %d", ErrNaN, c)
			}
			sum += coeff * ph
		}
		out[c] = sum
	}
	return nil
}

func cmplxIsNaN(v complex128) bool {
	return math.IsNaN(real(v)) || math.IsNaN(imag(v))
}
