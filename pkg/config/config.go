/*
Package config manages the TOML config for phrasemeter.
*/
package config

import (
	"os"

	"github.com/bastiangx/phrasemeter/internal/utils"
	"github.com/bastiangx/phrasemeter/pkg/corpus"
	"github.com/bastiangx/phrasemeter/pkg/similarity"
	"github.com/bastiangx/phrasemeter/pkg/strength"
	"github.com/charmbracelet/log"
)

// FileName is the config file name inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Scoring   ScoringConfig   `toml:"scoring"`
	Corpus    CorpusConfig    `toml:"corpus"`
	Templates TemplatesConfig `toml:"templates"`
	Flair     FlairConfig     `toml:"flair"`
	Server    ServerConfig    `toml:"server"`
}

// ScoringConfig has the entropy and crack-time parameters.
type ScoringConfig struct {
	PoolSize    int     `toml:"pool_size"`
	OfflineRate float64 `toml:"offline_rate"`
	OnlineRate  float64 `toml:"online_rate"`
	Reference   bool    `toml:"reference"`
}

// CorpusConfig holds quote corpus options.
type CorpusConfig struct {
	Path            string  `toml:"path"`
	CachePath       string  `toml:"cache_path"`
	PopularityFloor float64 `toml:"popularity_floor"`
	QuoteThreshold  float64 `toml:"quote_threshold"`
	Diagnostics     string  `toml:"diagnostics"`
}

// TemplatesConfig points at the phrase template source.
type TemplatesConfig struct {
	Path string `toml:"path"`
}

// FlairConfig points at an optional flair source.
type FlairConfig struct {
	Path string `toml:"path"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxPhraseLen int `toml:"max_phrase_len"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			PoolSize:    strength.DefaultPoolSize,
			OfflineRate: strength.DefaultOfflineRate,
			OnlineRate:  strength.DefaultOnlineRate,
			Reference:   true,
		},
		Corpus: CorpusConfig{
			Path:            "data/quotes.json",
			CachePath:       "",
			PopularityFloor: corpus.DefaultPopularityFloor,
			QuoteThreshold:  similarity.DefaultThreshold,
		},
		Templates: TemplatesConfig{
			Path: "data/templates.json",
		},
		Server: ServerConfig{
			MaxPhraseLen: 512,
		},
	}
}

// ScoreOptions converts the scoring section into per-call options.
func (c *Config) ScoreOptions() strength.Options {
	return strength.Options{
		PoolSize:    c.Scoring.PoolSize,
		OfflineRate: c.Scoring.OfflineRate,
		OnlineRate:  c.Scoring.OnlineRate,
	}
}

// GetConfigDir returns the platform config directory, e.g.
// ~/.config/phrasemeter.
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigDir(), nil
}

// GetDefaultConfigPath returns the default path for config.toml, falling back
// to other writable locations when the config dir cannot be used
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/phrasemeter/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. A file that fails typed decoding is
// re-read section by section so valid values still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "scoring"); ok {
		extractScoringConfig(section, &config.Scoring)
	}
	if section, ok := utils.ExtractSection(raw, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(raw, "templates"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Templates.Path = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "flair"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Flair.Path = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_phrase_len"); ok {
			config.Server.MaxPhraseLen = val
		}
	}
	return config, nil
}

// extractScoringConfig extracts scoring configuration from a map
func extractScoringConfig(data map[string]any, scoring *ScoringConfig) {
	if val, ok := utils.ExtractInt64(data, "pool_size"); ok {
		scoring.PoolSize = val
	}
	if val, ok := utils.ExtractFloat(data, "offline_rate"); ok {
		scoring.OfflineRate = val
	}
	if val, ok := utils.ExtractFloat(data, "online_rate"); ok {
		scoring.OnlineRate = val
	}
	if val, ok := utils.ExtractBool(data, "reference"); ok {
		scoring.Reference = val
	}
}

// extractCorpusConfig extracts corpus configuration from a map
func extractCorpusConfig(data map[string]any, c *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		c.Path = val
	}
	if val, ok := utils.ExtractString(data, "cache_path"); ok {
		c.CachePath = val
	}
	if val, ok := utils.ExtractFloat(data, "popularity_floor"); ok {
		c.PopularityFloor = val
	}
	if val, ok := utils.ExtractFloat(data, "quote_threshold"); ok {
		c.QuoteThreshold = val
	}
	if val, ok := utils.ExtractString(data, "diagnostics"); ok {
		c.Diagnostics = val
	}
}

// RebuildConfigFile force creates a new config.toml at the default path and
// returns that path
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
