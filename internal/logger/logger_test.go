package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToRotatedFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.FileName = filepath.Join(t.TempDir(), "dicer.log")

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("rolled")
	_ = log.Sync()

	content, err := os.ReadFile(cfg.FileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"rolled"`)
	assert.Contains(t, string(content), `"level":"INFO"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))
}
