package world

import (
	"errors"
	"fmt"
)

// Default layout parameters.
const (
	DefaultTileSize   = 5
	DefaultMinExtent  = 3
	DefaultMaxExtent  = 9
	DefaultMinOffset  = 10
	DefaultMaxOffset  = 40
	DefaultTotalRooms = 20
	DefaultMaxPasses  = 1000
)

// Config holds the parameters for a layout run. Extents and offsets are in
// tiles; the upper bounds are exclusive.
type Config struct {
	TileSize   int `toml:"tile_size"`
	MinExtent  int `toml:"min_extent"`
	MaxExtent  int `toml:"max_extent"`
	MinOffset  int `toml:"min_offset"`
	MaxOffset  int `toml:"max_offset"`
	TotalRooms int `toml:"total_rooms"`

	// MaxPasses caps the number of resolution passes per generation.
	MaxPasses int `toml:"max_passes"`
}

// DefaultConfig returns the standard layout parameters.
func DefaultConfig() Config {
	return Config{
		TileSize:   DefaultTileSize,
		MinExtent:  DefaultMinExtent,
		MaxExtent:  DefaultMaxExtent,
		MinOffset:  DefaultMinOffset,
		MaxOffset:  DefaultMaxOffset,
		TotalRooms: DefaultTotalRooms,
		MaxPasses:  DefaultMaxPasses,
	}
}

// ConfigError describes an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Validate checks that the configuration produces rooms with positive size.
// All problems are reported, joined into one error.
func (c Config) Validate() error {
	var errs []error
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf("must be positive, got %d", v)})
		}
	}

	positive("tile_size", c.TileSize)
	positive("min_extent", c.MinExtent)
	positive("max_extent", c.MaxExtent)
	positive("min_offset", c.MinOffset)
	positive("max_offset", c.MaxOffset)

	if c.MinExtent >= c.MaxExtent {
		errs = append(errs, &ConfigError{
			Field:  "min_extent",
			Reason: fmt.Sprintf("must be less than max_extent (%d >= %d)", c.MinExtent, c.MaxExtent),
		})
	}
	if c.MinOffset >= c.MaxOffset {
		errs = append(errs, &ConfigError{
			Field:  "min_offset",
			Reason: fmt.Sprintf("must be less than max_offset (%d >= %d)", c.MinOffset, c.MaxOffset),
		})
	}
	if c.TotalRooms < 0 {
		errs = append(errs, &ConfigError{Field: "total_rooms", Reason: fmt.Sprintf("must not be negative, got %d", c.TotalRooms)})
	}
	if c.MaxPasses < 1 {
		errs = append(errs, &ConfigError{Field: "max_passes", Reason: fmt.Sprintf("must be at least 1, got %d", c.MaxPasses)})
	}

	return errors.Join(errs...)
}
