// Package config holds the run configuration of the kernel runner.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/stf"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
)

// Config configures partial derivative computation.
type Config struct {
	Workers    int      `json:"workers"`
	SamplingHz float64  `json:"sampling_hz"`
	Parameters []string `json:"parameters"` // "A", "C", "F", "L", "N", "LAMBDA", "MU", "KAPPA", "RHO", "Q"

	// Output
	TimeDomain bool `json:"time_domain"`
	Velocity   bool `json:"velocity"` // differentiate before conversion

	// Source time function
	SourceTimeFunction stf.Kind `json:"source_time_function"`
	STFCatalog         string   `json:"stf_catalog,omitempty"` // JSON catalog, required for "user"

	// Structure is a JSON table of mu and qmu, required for Q kernels.
	Structure            string  `json:"structure,omitempty"`
	ReferenceFrequencyHz float64 `json:"reference_frequency_hz"`

	// PermissiveRadii tolerates up to two mismatched radii per pair.
	PermissiveRadii bool   `json:"permissive_radii"`
	LogLevel        string `json:"log_level"` // "debug", "info", "warn", "error"
}

// DefaultConfig returns the configuration of a standard time-domain run.
func DefaultConfig() *Config {
	return &Config{
		Workers:              runtime.NumCPU(),
		SamplingHz:           20,
		Parameters:           []string{"MU"},
		TimeDomain:           true,
		SourceTimeFunction:   stf.KindTriangle,
		ReferenceFrequencyHz: 1, // 1 Hz, the usual Q reference
		LogLevel:             "info",
	}
}

// CatalogConfig returns the configuration used when building kernel
// catalogs: spectra are kept in the frequency domain, no source time
// function is applied, and a few mismatched radii are tolerated.
func CatalogConfig() *Config {
	cfg := DefaultConfig()
	cfg.TimeDomain = false
	cfg.SourceTimeFunction = stf.KindNone
	cfg.PermissiveRadii = true
	return cfg
}

// Load reads a JSON configuration. Fields absent from the file keep their
// DefaultConfig values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements. Parameter names are
// checked by the runner that consumes them.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.SamplingHz <= 0 {
		return fmt.Errorf("sampling_hz must be positive: %f", c.SamplingHz)
	}
	if len(c.Parameters) == 0 {
		return fmt.Errorf("no parameters")
	}

	seen := make(map[string]bool, len(c.Parameters))
	hasQ := false
	for _, p := range c.Parameters {
		up := strings.ToUpper(p)
		if seen[up] {
			return fmt.Errorf("duplicate parameter %s", p)
		}
		seen[up] = true
		hasQ = hasQ || up == "Q"
	}

	kind, err := stf.ParseKind(string(c.SourceTimeFunction))
	if err != nil {
		return err
	}
	if kind == stf.KindUser && c.STFCatalog == "" {
		return fmt.Errorf("source_time_function %q needs stf_catalog", kind)
	}

	if hasQ {
		if c.Structure == "" {
			return fmt.Errorf("parameter Q needs structure")
		}
		if c.ReferenceFrequencyHz <= 0 {
			return fmt.Errorf("reference_frequency_hz must be positive: %f", c.ReferenceFrequencyHz)
		}
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto a logging level. Empty means info.
func (c *Config) Level() (logging.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return logging.DebugLevel, nil
	case "", "info":
		return logging.InfoLevel, nil
	case "warn", "warning":
		return logging.WarnLevel, nil
	case "error":
		return logging.ErrorLevel, nil
	}
	return logging.InfoLevel, fmt.Errorf("invalid log_level: %s", c.LogLevel)
}
