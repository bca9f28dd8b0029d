package stf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
)

// Event is the part of an event record the convolution needs.
type Event struct {
	ID           string  `json:"id"`
	HalfDuration float64 `json:"half_duration"`
}

// Entry describes the pulse of one event.
type Entry struct {
	Kind         Kind    `json:"kind"`
	HalfDuration float64 `json:"half_duration,omitempty"`
	Rise         float64 `json:"rise,omitempty"`
	Decay        float64 `json:"decay,omitempty"`

	// Samples and SamplingHz describe a user pulse starting at t=0.
	Samples    []float64 `json:"samples,omitempty"`
	SamplingHz float64   `json:"sampling_hz,omitempty"`

	// AmplitudeCorrection scales the spectrum when non-zero.
	AmplitudeCorrection float64 `json:"amplitude_correction,omitempty"`
}

// Catalog is a read-only event ID -> Entry table built once per run and
// shared across workers.
type Catalog struct {
	entries map[string]Entry
	logger  logging.Logger
}

// NewCatalog copies entries into a new catalog.
func NewCatalog(entries map[string]Entry, logger logging.Logger) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries)), logger: logging.OrGlobal(logger)}
	for id, e := range entries {
		c.entries[id] = e
	}
	return c
}

// LoadCatalog reads a JSON object mapping event IDs to entries.
func LoadCatalog(path string, logger logging.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source time function catalog: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse source time function catalog %s: %w", path, err)
	}
	for id, e := range entries {
		if _, err := ParseKind(string(e.Kind)); err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", id, err)
		}
	}
	return NewCatalog(entries, logger), nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup builds the function for event. Events missing from the catalog, or
// whose entry cannot be built, fall back to a triangle of the event's own
// half duration.
func (c *Catalog) Lookup(event Event, np int, tlen, samplingHz float64) *Function {
	logger := logging.OrGlobal(nil)
	if c != nil {
		logger = c.logger
	}
	logger = logger.WithFields(logging.Fields{
		"component": "stf_catalog",
		"event":     event.ID,
	})

	var entry Entry
	found := false
	if c != nil {
		entry, found = c.entries[event.ID]
	}
	if !found {
		logger.Warn("No source time function entry, using triangle", logging.Fields{
			"half_duration": event.HalfDuration,
		})
		return Triangle(np, tlen, event.HalfDuration)
	}

	f, err := entry.build(np, tlen, samplingHz, event)
	if err != nil {
		logger.Warn("Unusable source time function entry, using triangle", logging.Fields{
			"error":         err.Error(),
			"half_duration": event.HalfDuration,
		})
		return Triangle(np, tlen, event.HalfDuration)
	}
	if entry.AmplitudeCorrection != 0 {
		f = f.Scaled(entry.AmplitudeCorrection)
	}
	return f
}

func (e Entry) build(np int, tlen, samplingHz float64, event Event) (*Function, error) {
	halfDuration := e.HalfDuration
	if halfDuration == 0 {
		halfDuration = event.HalfDuration
	}

	switch e.Kind {
	case KindNone, "":
		return None(np, tlen), nil
	case KindBoxcar:
		return Boxcar(np, tlen, halfDuration), nil
	case KindTriangle:
		return Triangle(np, tlen, halfDuration), nil
	case KindAsymmetricTriangle:
		return AsymmetricTriangle(np, tlen, e.Rise, e.Decay), nil
	case KindUser:
		fs := e.SamplingHz
		if fs == 0 {
			fs = samplingHz
		}
		return Tabulated(np, tlen, fs, e.Samples)
	}
	return nil, fmt.Errorf("unknown source time function %q", e.Kind)
}

// ForKind builds a function of a fixed kind for every event, for runs that
// do not use a catalog. KindUser requires a catalog and is rejected.
func ForKind(kind Kind, event Event, np int, tlen float64) (*Function, error) {
	switch kind {
	case KindNone, "":
		return None(np, tlen), nil
	case KindBoxcar:
		return Boxcar(np, tlen, event.HalfDuration), nil
	case KindTriangle:
		return Triangle(np, tlen, event.HalfDuration), nil
	case KindAsymmetricTriangle:
		return AsymmetricTriangle(np, tlen, event.HalfDuration, event.HalfDuration), nil
	}
	return nil, fmt.Errorf("source time function %q needs a catalog entry", kind)
}
