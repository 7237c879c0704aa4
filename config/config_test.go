package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()

	cfgPath := filepath.Join(t.TempDir(), ConfigFile)
	assert.NoError(t, WriteConfig(cfgPath, cfg))

	res, err := ReadConfig(cfgPath)
	assert.NoError(t, err)
	assert.Equal(t, cfg, res)
}

func TestRequestConfigStream(t *testing.T) {
	cfg := DefaultConfig()
	streamCfg := cfg.Request.Stream()
	assert.Equal(t, 30, streamCfg.RequestQueueSize)
	assert.Equal(t, time.Minute*5, streamCfg.RequestTimeout)
	assert.Equal(t, time.Minute*5, streamCfg.ClearInterval)
}
