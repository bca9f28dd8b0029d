package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/stf"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, CatalogConfig().Validate())

	cat := CatalogConfig()
	assert.False(t, cat.TimeDomain)
	assert.True(t, cat.PermissiveRadii)
	assert.Equal(t, stf.KindNone, cat.SourceTimeFunction)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"sampling", func(c *Config) { c.SamplingHz = -1 }, "sampling_hz"},
		{"no parameters", func(c *Config) { c.Parameters = nil }, "no parameters"},
		{"duplicate", func(c *Config) { c.Parameters = []string{"MU", "mu"} }, "duplicate"},
		{"bad stf", func(c *Config) { c.SourceTimeFunction = "gaussian" }, "gaussian"},
		{"user without catalog", func(c *Config) { c.SourceTimeFunction = stf.KindUser }, "stf_catalog"},
		{"Q without structure", func(c *Config) { c.Parameters = []string{"Q"} }, "structure"},
		{"Q reference", func(c *Config) {
			c.Parameters = []string{"Q"}
			c.Structure = "prem.json"
			c.ReferenceFrequencyHz = 0
		}, "reference_frequency_hz"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"workers": 3,
		"parameters": ["A", "C", "Q"],
		"structure": "prem.json",
		"log_level": "debug"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"A", "C", "Q"}, cfg.Parameters)
	assert.Equal(t, 20.0, cfg.SamplingHz)
	assert.True(t, cfg.TimeDomain)
	assert.Equal(t, stf.KindTriangle, cfg.SourceTimeFunction)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logging.DebugLevel, level)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"workers": "many"}`), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse")

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"workers": -2}`), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "workers")
}
