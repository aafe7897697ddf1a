package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig() should fail for a missing explicit file")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
vx_version = "1.1"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "24h"

[store]
mongo_uri = "mongodb://localhost:27017"
database = "graphs"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.VXVersion != "1.1" {
		t.Errorf("VXVersion = %q, want %q", cfg.VXVersion, "1.1")
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	ttl, err := cfg.Cache.ttl()
	if err != nil || ttl != 24*time.Hour {
		t.Errorf("ttl() = %v, %v; want 24h", ttl, err)
	}
	if cfg.Store.Database != "graphs" {
		t.Errorf("Store.Database = %q, want %q", cfg.Store.Database, "graphs")
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, defaultAddr)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "colour = \"red\"\n", "unknown key"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "invalid cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "needs redis_addr"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", "invalid cache ttl"},
		{"not toml", "vx_version = \n", "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyServeFlags(t *testing.T) {
	cfg := defaultConfig()
	applyServeFlags(&cfg, serveOpts{addr: ":9090", redis: "cache:6379", mongo: "mongodb://db", database: "vx"})

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.MongoURI != "mongodb://db" || cfg.Store.Database != "vx" {
		t.Errorf("Store = %+v", cfg.Store)
	}
}
