package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the user configuration, read from
// ~/.config/ontoview/config.toml (or $XDG_CONFIG_HOME/ontoview/config.toml).
// Every field is optional; zero values select the built-in defaults.
type Config struct {
	// CacheDir overrides the default cache directory.
	CacheDir string `toml:"cache_dir"`

	// Redis selects a shared Redis cache instead of the file cache.
	Redis RedisConfig `toml:"redis"`

	// Mongo enables persisting builds with `build --save` and serving them.
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig is the [redis] section.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig is the [mongo] section.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ConfigPath returns the config file location.
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads and decodes the config file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the user config, returning the zero Config when
// the file does not exist or cannot be read.
func LoadConfigOrDefault() Config {
	path, err := ConfigPath()
	if err != nil {
		return Config{}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}
	}
	return cfg
}
