package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

const defaultAddr = ":8080"

// Config is the content of config.toml. Every field is optional.
//
//	vx_version = "1.2"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//	database = "vxgraph"
//
//	[server]
//	addr = ":8080"
type Config struct {
	VXVersion string       `toml:"vx_version"`
	Cache     CacheConfig  `toml:"cache"`
	Store     StoreConfig  `toml:"store"`
	Server    ServerConfig `toml:"server"`
}

// CacheConfig selects the report cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	TTL       string `toml:"ttl"`
}

func (c CacheConfig) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid cache ttl %q", c.TTL)
	}
	return d, nil
}

// StoreConfig selects the report archive of the server.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures "vxgraph serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: backendFile},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}

	switch cfg.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	case "":
		cfg.Cache.Backend = backendFile
	default:
		return cfg, fmt.Errorf("config %s: invalid cache backend %q (must be file, redis or none)", path, cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == backendRedis && cfg.Cache.RedisAddr == "" {
		return cfg, fmt.Errorf("config %s: cache backend redis needs redis_addr", path)
	}
	if _, err := cfg.Cache.ttl(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	return cfg, nil
}

// config loads the config for the current invocation.
func (c *CLI) config() (Config, error) {
	return loadConfig(c.ConfigPath)
}
