package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_MAX_CYCLES", "")
	t.Setenv("PIPELINE_REQUEST_TIMEOUT", "")
	t.Setenv("DB_SEARCH_CONFIG", "english")

	cfg := Load()

	assert.Equal(t, 3, cfg.Pipeline.MaxCycles)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.RequestTimeout)
	assert.Equal(t, "english", cfg.Database.SearchConfig)
	assert.NoError(t, cfg.Pipeline.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIPELINE_MAX_CYCLES", "5")
	t.Setenv("PIPELINE_STORE_TIMEOUT", "750ms")
	t.Setenv("CATALOG_CACHE_ENABLED", "false")
	t.Setenv("INGEST_REQUESTS_PER_SECOND", "2.5")

	cfg := Load()

	assert.Equal(t, 5, cfg.Pipeline.MaxCycles)
	assert.Equal(t, 750*time.Millisecond, cfg.Pipeline.StoreTimeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 2.5, cfg.Ingest.RequestsPerSecond)
}

func TestPipelineValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PipelineConfig
		wantErr bool
	}{
		{"valid", PipelineConfig{MaxCycles: 1, RequestTimeout: time.Second, ReasoningTimeout: time.Second, StoreTimeout: time.Second}, false},
		{"zero cycles", PipelineConfig{MaxCycles: 0, RequestTimeout: time.Second, ReasoningTimeout: time.Second, StoreTimeout: time.Second}, true},
		{"zero timeout", PipelineConfig{MaxCycles: 3, RequestTimeout: 0, ReasoningTimeout: time.Second, StoreTimeout: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
