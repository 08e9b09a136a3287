package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/loader"
)

// Config file names.
const (
	projectConfigFile = "wafconan.toml"
	userConfigFile    = "config.toml"
)

// noAutoActivateEnv suppresses auto-activation when set to a true value.
const noAutoActivateEnv = "WAFCONAN_NO_AUTO_ACTIVATE"

// Config is the wafconan.toml configuration.
type Config struct {
	// OutputDir is where generate writes the artifact. Empty means next to
	// the graph file.
	OutputDir string `toml:"output_dir"`
	// Artifact is the artifact file name.
	Artifact string `toml:"artifact"`
	// Split writes the settings-derived keys to a separate toolchain file.
	Split bool `toml:"split"`

	Activation ActivationConfig `toml:"activation"`
	Cache      CacheConfig      `toml:"cache"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// ActivationConfig controls auto-activation around waf phases.
type ActivationConfig struct {
	DisableAuto bool   `toml:"disable_auto"`
	Slot        string `toml:"slot"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration written as "72h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Artifact:   loader.DefaultArtifact,
		Activation: ActivationConfig{Slot: "build"},
	}
}

// Path returns the file the configuration was read from.
func (c Config) Path() string { return c.path }

// LoadConfig reads the configuration. An explicit path must exist. Otherwise
// ./wafconan.toml is tried, then the user config dir; with neither present
// the defaults apply. Environment overrides are applied last.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	} else if _, err := os.Stat(path); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		cfg.path = path
	}

	if cfg.Artifact == "" {
		cfg.Artifact = loader.DefaultArtifact
	}
	if cfg.Activation.Slot == "" {
		cfg.Activation.Slot = "build"
	}
	applyEnv(&cfg)
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat(projectConfigFile); err == nil {
		return projectConfigFile
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, userConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(noAutoActivateEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Activation.DisableAuto = b
		}
	}
}
