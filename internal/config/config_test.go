package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/roomscatter/internal/world"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMatchesLayoutDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, world.DefaultConfig(), cfg.Layout)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 10*time.Second, cfg.Budget)
	assert.False(t, cfg.Telemetry)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "rooms.toml", `
seed = 42
budget = "2s"

[layout]
total_rooms = 50
max_offset = 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.Budget)
	assert.Equal(t, 50, cfg.Layout.TotalRooms)
	assert.Equal(t, 80, cfg.Layout.MaxOffset)
	// Untouched keys keep their defaults.
	assert.Equal(t, world.DefaultTileSize, cfg.Layout.TileSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "rooms.toml", "[layout]\nroom_count = 5\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "layout.room_count")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ROOMSCATTER_ROOMS", "12")
	t.Setenv("ROOMSCATTER_SEED", "-5")
	t.Setenv("ROOMSCATTER_BUDGET", "250ms")
	t.Setenv("ROOMSCATTER_TELEMETRY", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Layout.TotalRooms)
	assert.Equal(t, int64(-5), cfg.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.Budget)
	assert.True(t, cfg.Telemetry)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := writeFile(t, "rooms.toml", "[layout]\ntotal_rooms = 50\n")
	t.Setenv("ROOMSCATTER_ROOMS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Layout.TotalRooms)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("ROOMSCATTER_TILE_SIZE", "five")

	_, err := Load("")
	assert.ErrorContains(t, err, "ROOMSCATTER_TILE_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad extents", func(c *Config) { c.Layout.MinExtent = 10 }, "min_extent"},
		{"no attempts", func(c *Config) { c.Attempts = 0 }, "attempts"},
		{"negative budget", func(c *Config) { c.Budget = -time.Second }, "budget"},
		{"bad color", func(c *Config) { c.Colors.Floor = "#12" }, "colors.floor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, world.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "ROOMSCATTER_TEST_ROOMS=4\n")
	t.Setenv("ROOMSCATTER_TEST_ROOMS", "")
	os.Unsetenv("ROOMSCATTER_TEST_ROOMS")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "4", os.Getenv("ROOMSCATTER_TEST_ROOMS"))
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 99
	cfg.Layout.TotalRooms = 33

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	var decoded Config
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}
