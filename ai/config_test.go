package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultDimension, cfg.Dimension)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithAPIKey("sk-test"),
		WithBaseURL("http://localhost:11434/v1/"),
		WithModel("text-embedding-3-small"),
		WithDimension(1536),
		WithRequestsPerMinute(120),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL, "Normalize strips trailing slash")
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, 1536, cfg.Dimension)
	assert.Equal(t, 120, cfg.RequestsPerMinute)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"missing base URL", func(c *Config) { c.BaseURL = " " }, false},
		{"missing model", func(c *Config) { c.Model = "" }, false},
		{"zero dimension", func(c *Config) { c.Dimension = 0 }, false},
		{"negative dimension", func(c *Config) { c.Dimension = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
