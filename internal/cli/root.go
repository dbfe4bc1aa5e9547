// Package cli implements the roomscatter command-line interface.
//
// Commands:
//   - generate: build a layout and print it as text or JSON
//   - view: show layouts interactively in the terminal
//   - config: print the effective configuration
//
// Settings come from the embedded defaults, --config, .env and ROOMSCATTER_*
// variables, then the command-line flags. All commands support --verbose
// for debug logging; the logger travels in the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/roomscatter/internal/config"
	"github.com/samdwyer/roomscatter/internal/generate"
	"github.com/samdwyer/roomscatter/internal/telemetry"
	"github.com/samdwyer/roomscatter/internal/world"
)

// Version is reported by --version.
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	out      io.Writer
	shutdown func(context.Context) error

	verbose    bool
	configPath string
	envFile    string
	seed       int64
	rooms      int
}

// New creates a CLI writing command output to out and logs to logw.
func New(out, logw io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(logw, log.InfoLevel),
		out:    out,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "roomscatter",
		Short:             "Roomscatter scatters non-overlapping rooms for dungeon maps",
		Long:              `Roomscatter places randomly sized rooms in a plane and pushes overlapping rooms apart until the layout is clean, producing the skeleton of a roguelike map.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&c.configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file to load")
	flags.Int64Var(&c.seed, "seed", 0, "random seed (0 picks one)")
	flags.IntVarP(&c.rooms, "rooms", "n", 0, "number of rooms to generate")

	root.AddCommand(c.newGenerateCmd())
	root.AddCommand(c.newViewCmd())
	root.AddCommand(c.newConfigCmd())

	return root
}

// setup resolves configuration and logging before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.Logger.SetLevel(log.DebugLevel)
	}

	if err := config.LoadDotEnv(c.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = c.seed
	}
	if flags.Changed("rooms") {
		cfg.Layout.TotalRooms = c.rooms
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	ctx := cmd.Context()
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, telemetry.Run{
			Version: Version,
			Command: cmd.Name(),
			Seed:    cfg.Seed,
			Rooms:   cfg.Layout.TotalRooms,
			Passes:  cfg.Layout.MaxPasses,
		})
		if err != nil {
			c.Logger.Warn("telemetry setup failed, continuing without tracing", "err", err)
		} else {
			c.shutdown = shutdown
		}
	}

	cmd.SetContext(log.WithContext(ctx, c.Logger))
	return nil
}

// Execute runs the command line in args and then shuts telemetry down,
// whether or not the command failed. Spans from failed or interrupted runs
// are flushed too.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	// ctx is cancelled on interrupt, so the flush gets its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if terr := c.teardown(flushCtx); terr != nil {
		if err == nil {
			return terr
		}
		c.Logger.Warn("telemetry flush failed", "err", terr)
	}
	return err
}

func (c *CLI) teardown(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}
	shutdown := c.shutdown
	c.shutdown = nil
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down telemetry: %w", err)
	}
	return nil
}

// generator builds a generator from the effective configuration. The seed
// actually used is returned so runs can be reproduced.
func (c *CLI) generator() (*generate.Generator, int64, error) {
	seed := c.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g, err := generate.New(c.Config.Layout, world.NewSource(seed), generate.Options{
		Attempts: c.Config.Attempts,
		Delay:    c.Config.Delay,
		Budget:   c.Config.Budget,
	})
	if err != nil {
		return nil, 0, err
	}
	return g, seed, nil
}
