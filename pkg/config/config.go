// Package config loads spriteslicer settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/spriteslicer/config.toml (or
// ~/.config/spriteslicer/config.toml). Every key is optional; omitted keys
// keep the values from [Default]. Command-line flags override the file.
//
//	[auto]
//	alpha_threshold = 8
//	min_width = 2
//	min_height = 2
//	pad = 1
//
//	[grid]
//	cell_width = 32
//	cell_height = 32
//	margin = 0
//	name_cells = false
//
//	[export]
//	mode = "atomic"
//
//	[cache]
//	backend = "redis"
//	ttl = "720h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	max_upload_mb = 32
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spriteslicer/pkg/cache"
	errs "github.com/matzehuels/spriteslicer/pkg/errors"
)

const (
	appName  = "spriteslicer"
	fileName = "config.toml"
)

// DefaultMaxPixels bounds the decoded size of an uploaded image
// (about 256 MiB of RGBA pixels).
const DefaultMaxPixels = 64 << 20

// Export write modes.
const (
	ExportDirect = "direct"
	ExportAtomic = "atomic"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Auto holds default auto slicer parameters.
type Auto struct {
	AlphaThreshold int `toml:"alpha_threshold"`
	MinWidth       int `toml:"min_width"`
	MinHeight      int `toml:"min_height"`
	Pad            int `toml:"pad"`
}

// Grid holds default grid slicer parameters. Zero cell sizes mean the
// flags are required.
type Grid struct {
	CellWidth  int  `toml:"cell_width"`
	CellHeight int  `toml:"cell_height"`
	Margin     int  `toml:"margin"`
	NameCells  bool `toml:"name_cells"`
}

// Export holds exporter settings.
type Export struct {
	Mode string `toml:"mode"`
}

// Cache holds slice cache settings.
type Cache struct {
	Backend string            `toml:"backend"`
	TTL     string            `toml:"ttl"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// Server holds HTTP API settings.
type Server struct {
	Addr        string `toml:"addr"`
	MaxUploadMB int    `toml:"max_upload_mb"`
	MaxPixels   int    `toml:"max_pixels"` // 0 means unlimited
}

// Config is the complete configuration file.
type Config struct {
	Auto   Auto   `toml:"auto"`
	Grid   Grid   `toml:"grid"`
	Export Export `toml:"export"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Auto:   Auto{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2, Pad: 1},
		Export: Export{Mode: ExportDirect},
		Cache:  Cache{Backend: CacheFile, TTL: "720h"},
		Server: Server{Addr: ":8080", MaxUploadMB: 32, MaxPixels: DefaultMaxPixels},
	}
}

// Path returns the default configuration file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path over the defaults.
//
// An empty path means [Path]; a missing file there yields the defaults. An
// explicitly named file must exist. Unknown keys and invalid values are
// INVALID_CONFIG errors.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Auto.AlphaThreshold < 0 || c.Auto.AlphaThreshold > 255 {
		return invalid("auto.alpha_threshold must be between 0 and 255, got %d", c.Auto.AlphaThreshold)
	}
	if c.Auto.MinWidth < 0 || c.Auto.MinHeight < 0 || c.Auto.Pad < 0 {
		return invalid("auto.min_width, auto.min_height and auto.pad cannot be negative")
	}
	if c.Grid.CellWidth < 0 || c.Grid.CellHeight < 0 || c.Grid.Margin < 0 {
		return invalid("grid values cannot be negative")
	}

	switch c.Export.Mode {
	case ExportDirect, ExportAtomic:
	default:
		return invalid("export.mode must be %q or %q, got %q", ExportDirect, ExportAtomic, c.Export.Mode)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return invalid("cache.redis.addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	if c.Server.MaxUploadMB <= 0 {
		return invalid("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.MaxPixels < 0 {
		return invalid("server.max_pixels cannot be negative, got %d", c.Server.MaxPixels)
	}
	return nil
}

// CacheTTL parses Cache.TTL. An empty string means no expiry.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidConfig, err, "cache.ttl")
	}
	if d < 0 {
		return 0, invalid("cache.ttl cannot be negative")
	}
	return d, nil
}

// MaxUploadBytes returns the server upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func invalid(format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidConfig, format, args...)
}
