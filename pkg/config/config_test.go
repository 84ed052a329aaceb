package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)

	config, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	require.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfigOverridesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `
[scoring]
pool_size = 2048
online_rate = 100.0

[corpus]
path = "quotes.db"
popularity_floor = 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, config.Scoring.PoolSize)
	assert.Equal(t, 100.0, config.Scoring.OnlineRate)
	assert.Equal(t, 1e12, config.Scoring.OfflineRate)
	assert.Equal(t, "quotes.db", config.Corpus.Path)
	assert.Equal(t, 0.2, config.Corpus.PopularityFloor)
	assert.Equal(t, 0.6, config.Corpus.QuoteThreshold)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	// pool_size has the wrong type, which fails the typed decode
	data := `
[scoring]
pool_size = "big"
online_rate = 5

[corpus]
popularity_floor = 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scoring.PoolSize, config.Scoring.PoolSize)
	assert.Equal(t, 5.0, config.Scoring.OnlineRate)
	assert.Equal(t, 0.3, config.Corpus.PopularityFloor)
}

func TestLoadConfigWithPriorityUsesCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_phrase_len = 64\n"), 0644))

	config, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 64, config.Server.MaxPhraseLen)
}

func TestScoreOptions(t *testing.T) {
	opts := DefaultConfig().ScoreOptions()
	assert.Equal(t, 7776, opts.PoolSize)
	assert.Nil(t, opts.Penalty)
}

func TestRebuildConfigFileWritesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))

	path, err := RebuildConfigFile()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(path))

	defaultPath, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, defaultPath, path)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}
