package spc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the encoding variant of a spectral file. Each kind fixes the
// channel count, the source record, whether radii are stored and, for
// catalogs, how the azimuthal dependence is reconstructed.
type Kind int

const (
	KindUnknown Kind = iota
	// Synthetic is a displacement seismogram at the observer.
	Synthetic
	// PF is the forward strain tensor (9 channels).
	PF
	// PB is the backward strain tensor for Z, R and T receiver forces (27).
	PB
	// UF is the forward displacement (3).
	UF
	// UB is the backward displacement for Z, R and T receiver forces (9).
	UB
	// PAR* are partial derivative files (3 channels: Z, R, T).
	PAR0 // density
	PARA
	PARC
	PARF
	PARL
	PARN
	PARQ
	PAR1 // lambda
	PAR2 // mu
	PARK // kappa
	// Catalog kinds store azimuthal orders instead of values.
	PFSHCAT
	PFPSVCAT
	PBSHCAT
	PBPSVCAT
)

type sourceKind int

const (
	sourceFull sourceKind = iota
	sourceHorizontal
)

type encoding struct {
	name     string
	tag      int32
	channels int
	source   sourceKind
	radii    bool
	orders   []int // catalog only
	zero     []int // channels never stored (catalog only)
}

// strain channel index of (r, r) within a 9-channel block
const rr = 0

var encodings = map[Kind]encoding{
	Synthetic: {name: "SYNTHETIC", tag: 3, channels: 3, source: sourceFull},
	PF:        {name: "PF", tag: 9, channels: 9, source: sourceFull, radii: true},
	PB:        {name: "PB", tag: 27, channels: 27, source: sourceHorizontal, radii: true},
	UF:        {name: "UF", tag: 103, channels: 3, source: sourceFull, radii: true},
	UB:        {name: "UB", tag: 109, channels: 9, source: sourceHorizontal, radii: true},
	PAR0:      {name: "PAR0", tag: 110, channels: 3, source: sourceFull, radii: true},
	PARA:      {name: "PARA", tag: 111, channels: 3, source: sourceFull, radii: true},
	PARC:      {name: "PARC", tag: 112, channels: 3, source: sourceFull, radii: true},
	PARF:      {name: "PARF", tag: 113, channels: 3, source: sourceFull, radii: true},
	PARL:      {name: "PARL", tag: 114, channels: 3, source: sourceFull, radii: true},
	PARN:      {name: "PARN", tag: 115, channels: 3, source: sourceFull, radii: true},
	PARQ:      {name: "PARQ", tag: 116, channels: 3, source: sourceFull, radii: true},
	PAR1:      {name: "PAR1", tag: 117, channels: 3, source: sourceFull, radii: true},
	PAR2:      {name: "PAR2", tag: 118, channels: 3, source: sourceFull, radii: true},
	PARK:      {name: "PARK", tag: 119, channels: 3, source: sourceFull, radii: true},
	// SH from a moment tensor has no m=0 term and no radial strain
	PFSHCAT: {name: "PFSHCAT", tag: 201, channels: 9, source: sourceFull, radii: true,
		orders: []int{-2, -1, 1, 2}, zero: []int{rr}},
	PFPSVCAT: {name: "PFPSVCAT", tag: 202, channels: 9, source: sourceFull, radii: true,
		orders: []int{-2, -1, 0, 1, 2}},
	// a vertical force radiates no SH; horizontal forces give no radial SH strain
	PBSHCAT: {name: "PBSHCAT", tag: 203, channels: 27, source: sourceHorizontal, radii: true,
		orders: []int{-1, 1}, zero: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9 + rr, 18 + rr}},
	// a transverse force radiates no PSV
	PBPSVCAT: {name: "PBPSVCAT", tag: 204, channels: 27, source: sourceHorizontal, radii: true,
		orders: []int{-1, 0, 1}, zero: []int{18, 19, 20, 21, 22, 23, 24, 25, 26}},
}

var (
	kindsByTag  = make(map[int32]Kind, len(encodings))
	kindsByName = make(map[string]Kind, len(encodings))
)

func init() {
	for k, e := range encodings {
		kindsByTag[e.tag] = k
		kindsByName[e.name] = k
	}
}

func (k Kind) enc() (encoding, bool) {
	e, ok := encodings[k]
	return e, ok
}

func (k Kind) String() string {
	if e, ok := k.enc(); ok {
		return e.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := k.enc()
	return ok
}

// Tag returns the explicit header tag of k.
func (k Kind) Tag() int32 { return encodings[k].tag }

// Channels returns the number of channels per body.
func (k Kind) Channels() int { return encodings[k].channels }

// HasRadii reports whether perturbation-point radii are stored.
func (k Kind) HasRadii() bool { return encodings[k].radii }

// FullSource reports whether the source record carries a radius.
func (k Kind) FullSource() bool { return encodings[k].source == sourceFull }

// IsCatalog reports whether records hold azimuthal-order coefficients.
func (k Kind) IsCatalog() bool { return len(encodings[k].orders) > 0 }

// Orders returns the stored azimuthal orders of a catalog kind.
func (k Kind) Orders() []int { return append([]int(nil), encodings[k].orders...) }

// IsPartial reports whether k is a partial derivative kind.
func (k Kind) IsPartial() bool { return k >= PAR0 && k <= PARK }

// KindFromTag maps a non-zero header tag to its kind.
func KindFromTag(tag int32) (Kind, error) {
	if k, ok := kindsByTag[tag]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: tag %d", ErrUnknownEncoding, tag)
}

// ParseKind maps a kind name (case-insensitive) to its kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindsByName[strings.ToUpper(name)]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: name %q", ErrUnknownEncoding, name)
}

// KindFromFileName infers the kind from a file name such as
// "XY001.201104212053A.PB...SH.spc": the first dot-separated token that
// names a kind wins. A plain PF/PB name with a trailing "CAT" marker and an
// SH or PSV mode token resolves to the matching catalog kind.
func KindFromFileName(name string) (Kind, error) {
	base := filepath.Base(name)
	if strings.EqualFold(filepath.Ext(base), ".spc") {
		base = base[:len(base)-len(".spc")]
	}
	tokens := strings.Split(base, ".")

	kind := KindUnknown
	catalog := false
	mode := ""
	for _, tok := range tokens {
		up := strings.ToUpper(tok)
		switch up {
		case "CAT":
			catalog = true
			continue
		case "SH", "PSV":
			mode = up
			continue
		}
		if k, ok := kindsByName[up]; ok && kind == KindUnknown {
			kind = k
		}
	}
	if kind == KindUnknown {
		return KindUnknown, fmt.Errorf("%w: no kind in file name %q", ErrUnknownEncoding, name)
	}
	if catalog && mode != "" && (kind == PF || kind == PB) {
		return ParseKind(kind.String() + mode + "CAT")
	}
	return kind, nil
}
