package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/boxlayout/pkg/layout"
)

const (
	// configFileName is looked up in the working directory when --config is
	// not given.
	configFileName = "boxlayout.yaml"

	// envPrefix namespaces environment overrides: BOXLAYOUT_LAYOUT_HORIZONTAL_GAP.
	envPrefix = "BOXLAYOUT_"

	defaultServerAddr = ":8080"
	defaultCacheTTL   = 7 * 24 * time.Hour
)

// Config is the merged CLI and server configuration.
type Config struct {
	Layout layout.Config `koanf:"layout"`
	Cache  CacheConfig   `koanf:"cache"`
	Store  StoreConfig   `koanf:"store"`
	Server ServerConfig  `koanf:"server"`
}

// CacheConfig selects the render cache backend. A Redis address wins over
// the directory. Prefix namespaces keys when several deployments share one
// Redis.
type CacheConfig struct {
	Dir       string        `koanf:"dir"`
	RedisAddr string        `koanf:"redis_addr"`
	Prefix    string        `koanf:"prefix"`
	TTL       time.Duration `koanf:"ttl"`
}

// StoreConfig selects the session store backend. A MongoDB URI wins over
// the directory.
type StoreConfig struct {
	Dir           string `koanf:"dir"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// flagKeys maps command flags onto config keys.
var flagKeys = map[string]string{
	"horizontal-gap": "layout.horizontal_gap",
	"vertical-gap":   "layout.vertical_gap",
	"cache-dir":      "cache.dir",
	"redis":          "cache.redis_addr",
	"cache-ttl":      "cache.ttl",
	"store-dir":      "store.dir",
	"mongo":          "store.mongo_uri",
	"mongo-db":       "store.mongo_database",
	"addr":           "server.addr",
}

func defaults() map[string]any {
	cacheDir, _ := cacheDir()
	return map[string]any{
		"layout.horizontal_gap": layout.DefaultHorizontalGap,
		"layout.vertical_gap":   layout.DefaultVerticalGap,
		"cache.dir":             cacheDir,
		"cache.ttl":             defaultCacheTTL,
		"store.mongo_database":  "boxlayout",
		"server.addr":           defaultServerAddr,
	}
}

// loadConfig merges, in increasing precedence: defaults, the config file,
// BOXLAYOUT_* environment variables and explicitly set flags.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(configFileName); err == nil {
			cfgFile = configFileName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns BOXLAYOUT_CACHE_REDIS_ADDR into cache.redis_addr: the first
// segment is the section, the rest is the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}
