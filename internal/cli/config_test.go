package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
cache_dir = "/tmp/ontoview-cache"

[redis]
addr = "localhost:6379"
db = 2

[mongo]
uri = "mongodb://localhost:27017"
database = "terminology"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CacheDir != "/tmp/ontoview-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" || cfg.Mongo.Database != "terminology" {
		t.Errorf("Mongo = %+v", cfg.Mongo)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadConfig(missing) succeeded, want error")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	want := filepath.Join("/custom/config", appName, "config.toml")
	if path != want {
		t.Errorf("ConfigPath = %q, want %q", path, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Run("Configured", func(t *testing.T) {
		c := &CLI{Config: Config{CacheDir: "/configured"}}
		dir, err := c.cacheDir()
		if err != nil || dir != "/configured" {
			t.Errorf("cacheDir = (%q, %v)", dir, err)
		}
	})

	t.Run("XDGDefault", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/custom/cache")
		c := &CLI{}
		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir: %v", err)
		}
		if !strings.HasSuffix(dir, filepath.Join("/custom/cache", appName)) {
			t.Errorf("cacheDir = %q", dir)
		}
	})
}
