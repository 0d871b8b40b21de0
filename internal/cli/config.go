package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// Config is the optional TOML config file. Flags override it.
//
//	[pipeline]
//	format = "svg"
//	view_ttl = "12h"
//
//	[pipeline.layout]
//	horizontal_gap = 100
//
//	[cache]
//	prefix = "flowlayout:staging:"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Pipeline pipeline.Options `toml:"pipeline"`
	Cache    CacheConfig      `toml:"cache"`
	Server   ServerConfig     `toml:"server"`
}

// CacheConfig selects and scopes the cache backend.
type CacheConfig struct {
	Prefix string             `toml:"prefix"`
	Redis  cache.RedisOptions `toml:"redis"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads path, or the default location when path is empty.
// The file decodes on top of pipeline.DefaultOptions, so keys it leaves out
// keep their defaults. A missing default file yields the defaults; a missing
// explicit file is an error.
func loadConfig(path string) (Config, error) {
	cfg := Config{Pipeline: pipeline.DefaultOptions()}
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, nil
}
