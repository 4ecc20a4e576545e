package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "hashing", cfg.EmbeddingProvider)
	assert.Equal(t, "dd-MM-yyyy", cfg.DefaultOutputDateFormat)
	assert.Equal(t, 5, cfg.DateSampleSize)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FERN_TEST_PREVIEW=1\nPREVIEW_ROW_LIMIT=3\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("FERN_TEST_PREVIEW")
		os.Unsetenv("PREVIEW_ROW_LIMIT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.PreviewRowLimit)
}

func TestLoadEnvironmentWins(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "http")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.EmbeddingProvider)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}
