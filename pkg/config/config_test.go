package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://jsearch.p.rapidapi.com", cfg.Provider.BaseURL)
	assert.Equal(t, "in", cfg.Provider.Country)
	assert.Equal(t, "en", cfg.Provider.Language)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "tfidf", cfg.Ranking.Strategy)
	assert.Equal(t, 5, cfg.Ranking.TopKeyphrases)
	assert.Equal(t, 10, cfg.Ranking.MaxResults)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
provider:
  country: us
ranking:
  strategy: embedding
  maxResults: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "us", cfg.Provider.Country)
	assert.Equal(t, "embedding", cfg.Ranking.Strategy)
	assert.Equal(t, 5, cfg.Ranking.MaxResults)
	// Untouched values keep their defaults.
	assert.Equal(t, 5, cfg.Ranking.TopKeyphrases)
	assert.Equal(t, "en", cfg.Provider.Language)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("RAPIDAPI_KEY", "secret-key")
	t.Setenv("RAPIDAPI_HOST", "jsearch.p.rapidapi.com")
	t.Setenv("RANKING_STRATEGY", "embedding")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "secret-key", cfg.Provider.Key)
	assert.Equal(t, "jsearch.p.rapidapi.com", cfg.Provider.Host)
	assert.Equal(t, "embedding", cfg.Ranking.Strategy)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Ranking.Strategy = "jaccard"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive limits", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Ranking.TopKeyphrases = 0
		assert.Error(t, cfg.Validate())

		cfg = defaultConfig()
		cfg.Ranking.MaxResults = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing provider credentials are allowed", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Provider.Key = ""
		cfg.Provider.Host = ""
		assert.NoError(t, cfg.Validate())
	})
}
