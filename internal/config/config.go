// Package config loads roomscatter settings from the embedded defaults, an
// optional TOML file, a .env file and ROOMSCATTER_* environment variables,
// in that order of precedence (later wins).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/samdwyer/roomscatter/internal/ui"
	"github.com/samdwyer/roomscatter/internal/world"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ROOMSCATTER_"

//go:embed defaults.toml
var defaultsTOML string

// Config is the complete application configuration.
type Config struct {
	Seed      int64         `toml:"seed"`
	Attempts  int           `toml:"attempts"`
	Delay     time.Duration `toml:"delay"`
	Budget    time.Duration `toml:"budget"`
	Telemetry bool          `toml:"telemetry"`

	Layout world.Config `toml:"layout"`
	Colors Colors       `toml:"colors"`
}

// Colors are hex colors used by the terminal view.
type Colors struct {
	Fill  string `toml:"fill"`  // Room walls
	Floor string `toml:"floor"` // Room interior
	Label string `toml:"label"` // Room id text
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if _, err := toml.Decode(defaultsTOML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded defaults.toml: %v", err))
	}
	return cfg
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding ones already set. Missing files are not an
// error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration from the defaults, the TOML file at path
// (skipped when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	errs := []error{c.Layout.Validate()}

	if c.Attempts < 1 {
		errs = append(errs, &world.ConfigError{Field: "attempts", Reason: fmt.Sprintf("must be at least 1, got %d", c.Attempts)})
	}
	if c.Delay < 0 {
		errs = append(errs, &world.ConfigError{Field: "delay", Reason: "must not be negative"})
	}
	if c.Budget < 0 {
		errs = append(errs, &world.ConfigError{Field: "budget", Reason: "must not be negative"})
	}

	colors := []struct{ field, hex string }{
		{"colors.fill", c.Colors.Fill},
		{"colors.floor", c.Colors.Floor},
		{"colors.label", c.Colors.Label},
	}
	for _, col := range colors {
		if _, err := ui.ParseHexColor(col.hex); err != nil {
			errs = append(errs, &world.ConfigError{Field: col.field, Reason: err.Error()})
		}
	}

	return errors.Join(errs...)
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// applyEnv overrides fields from ROOMSCATTER_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"TILE_SIZE":  &c.Layout.TileSize,
		"MIN_EXTENT": &c.Layout.MinExtent,
		"MAX_EXTENT": &c.Layout.MaxExtent,
		"MIN_OFFSET": &c.Layout.MinOffset,
		"MAX_OFFSET": &c.Layout.MaxOffset,
		"ROOMS":      &c.Layout.TotalRooms,
		"MAX_PASSES": &c.Layout.MaxPasses,
		"ATTEMPTS":   &c.Attempts,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSEED: %w", EnvPrefix, err)
		}
		c.Seed = n
	}

	durations := map[string]*time.Duration{
		"DELAY":  &c.Delay,
		"BUDGET": &c.Budget,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvPrefix + "TELEMETRY"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sTELEMETRY: %w", EnvPrefix, err)
		}
		c.Telemetry = b
	}

	return nil
}
