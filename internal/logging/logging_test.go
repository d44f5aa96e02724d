package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewConsoleAndJSON(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		cfg := DefaultConfig()
		cfg.Format = format
		log, err := New(cfg)
		require.NoError(t, err, format)
		log.Info("probe")
		require.NotNil(t, log)
	}
}

func TestFileSinkWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netai.log")
	cfg := DefaultConfig()
	cfg.FilePath = path

	log, err := New(cfg)
	require.NoError(t, err)

	log.Info("file sink probe")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink probe")
}
