package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/roomscatter/internal/world"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	err := run(t, New(&out, &logs), args...)
	return out.String(), logs.String(), err
}

// run executes args against c with no .env file in play.
func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
	return c.Execute(context.Background(), args)
}

// crowd makes every run stop short: rooms barely spread and get one pass.
func crowd(t *testing.T) {
	t.Setenv("ROOMSCATTER_MIN_OFFSET", "1")
	t.Setenv("ROOMSCATTER_MAX_OFFSET", "2")
	t.Setenv("ROOMSCATTER_MAX_PASSES", "1")
	t.Setenv("ROOMSCATTER_ATTEMPTS", "1")
}

func TestGenerateJSON(t *testing.T) {
	out, _, err := execute(t, "generate", "--rooms", "1", "--seed", "3", "--format", "json")
	require.NoError(t, err)

	var got layoutJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, int64(3), got.Seed)
	assert.True(t, got.Converged)
	assert.Equal(t, world.DefaultTileSize, got.TileSize)
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, 0, got.Rooms[0].ID)
	assert.Equal(t, "room0", got.Rooms[0].Name)
	assert.NotEmpty(t, got.RunID)
}

func TestGenerateJSONReproducible(t *testing.T) {
	out1, _, err := execute(t, "generate", "--seed", "77", "-f", "json")
	require.NoError(t, err)
	out2, _, err := execute(t, "generate", "--seed", "77", "-f", "json")
	require.NoError(t, err)

	var l1, l2 layoutJSON
	require.NoError(t, json.Unmarshal([]byte(out1), &l1))
	require.NoError(t, json.Unmarshal([]byte(out2), &l2))

	assert.Equal(t, l1.Rooms, l2.Rooms)
	assert.NotEqual(t, l1.RunID, l2.RunID, "each run gets its own id")
}

func TestGenerateText(t *testing.T) {
	out, _, err := execute(t, "generate", "-n", "2", "--seed", "9")
	require.NoError(t, err)

	assert.Contains(t, out, "room0")
	assert.Contains(t, out, "room1")
	assert.Contains(t, out, "no overlaps")
}

func TestGenerateUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "generate", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGenerateInvalidConfigFromEnv(t *testing.T) {
	t.Setenv("ROOMSCATTER_MAX_EXTENT", "2")

	_, _, err := execute(t, "generate")
	require.Error(t, err)
	assert.True(t, world.IsConfigError(err), "got %v", err)
}

func TestGenerateNegativeRoomsFlag(t *testing.T) {
	_, _, err := execute(t, "generate", "--rooms", "-1")
	assert.True(t, world.IsConfigError(err), "got %v", err)
}

func TestGeneratePartialLayout(t *testing.T) {
	crowd(t)

	out, logs, err := execute(t, "generate", "--seed", "5")
	require.ErrorIs(t, err, world.ErrNotConverged)

	assert.Contains(t, out, "room0")
	assert.Contains(t, out, "room19")
	assert.Contains(t, out, "layout still has")
	assert.NotContains(t, out, "no overlaps")
	assert.Contains(t, logs, "layout did not converge")
	assert.NotContains(t, logs, "Generated")
}

func TestTelemetryShutdownOnFailure(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"not converged", []string{"generate", "--seed", "5"}, world.ErrNotConverged},
		{"bad format", []string{"generate", "-f", "xml"}, nil},
		{"success", []string{"generate", "-n", "1", "--seed", "2"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want != nil {
				crowd(t)
			}

			var out, logs bytes.Buffer
			c := New(&out, &logs)
			calls := 0
			var flushErr error
			c.shutdown = func(ctx context.Context) error {
				calls++
				flushErr = ctx.Err()
				return nil
			}

			err := run(t, c, tt.args...)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, 1, calls)
			assert.NoError(t, flushErr, "flush context must still be live")
		})
	}
}

func TestTelemetryShutdownAfterCancel(t *testing.T) {
	var out, logs bytes.Buffer
	c := New(&out, &logs)
	called := false
	c.shutdown = func(ctx context.Context) error {
		called = true
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Execute(ctx, []string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "generate"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, called)
}

func TestTelemetryShutdownError(t *testing.T) {
	var out, logs bytes.Buffer
	c := New(&out, &logs)
	c.shutdown = func(context.Context) error { return errors.New("collector unreachable") }

	err := run(t, c, "generate", "-n", "1", "--seed", "2")
	assert.ErrorContains(t, err, "collector unreachable")
}

func TestRootLeavesErrorsToCaller(t *testing.T) {
	root := New(&bytes.Buffer{}, &bytes.Buffer{}).RootCommand()
	assert.True(t, root.SilenceErrors, "main prints the error once")
	assert.True(t, root.SilenceUsage)
}

func TestConfigCommandWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.toml")
	require.NoError(t, os.WriteFile(path, []byte("[layout]\ntotal_rooms = 7\n"), 0o644))

	out, _, err := execute(t, "--config", path, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "total_rooms = 7")
	assert.Contains(t, out, "tile_size = 5")
}

func TestVerboseLogsDebug(t *testing.T) {
	_, logs, err := execute(t, "-v", "generate", "-n", "1", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, logs, "generating layout")
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
