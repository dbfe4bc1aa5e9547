package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/roomscatter/internal/generate"
	"github.com/samdwyer/roomscatter/internal/world"
)

type roomJSON struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type layoutJSON struct {
	RunID     string     `json:"run_id"`
	Seed      int64      `json:"seed"`
	Attempt   int        `json:"attempt"`
	Attempts  int        `json:"attempts"`
	Passes    int        `json:"passes"`
	Residual  int        `json:"residual"`
	Converged bool       `json:"converged"`
	TileSize  int        `json:"tile_size"`
	Rooms     []roomJSON `json:"rooms"`
}

func (c *CLI) newGenerateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a room layout",
		Long: `Generate creates the configured number of rooms and separates them until
none overlap. If the pass or time budget runs out first, the best partial
layout is printed and the command exits with an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			g, seed, err := c.generator()
			if err != nil {
				return err
			}
			logger.Debug("generating layout", "seed", seed, "rooms", c.Config.Layout.TotalRooms)

			prog := newProgress(logger)
			res, runErr := g.Run(ctx)
			if res == nil {
				return runErr
			}
			if runErr == nil {
				prog.done(fmt.Sprintf("Generated %d rooms", len(res.Layout.Rooms)))
			} else {
				logger.Warn("layout did not converge", "rooms", len(res.Layout.Rooms), "residual", res.Layout.Residual)
			}

			if format == "json" {
				err = writeJSON(c.out, res, seed)
			} else {
				writeText(c.out, res, seed)
			}
			if err != nil {
				return err
			}

			if errors.Is(runErr, world.ErrNotConverged) {
				printWarning(c.out, "layout still has %d overlapping pairs", res.Layout.Residual)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}

func toJSON(res *generate.Result, seed int64) layoutJSON {
	out := layoutJSON{
		RunID:     res.RunID,
		Seed:      seed,
		Attempt:   res.Attempt,
		Attempts:  res.Attempts,
		Passes:    res.Layout.Passes,
		Residual:  res.Layout.Residual,
		Converged: res.Layout.Converged,
		TileSize:  res.Layout.Config.TileSize,
		Rooms:     make([]roomJSON, len(res.Layout.Rooms)),
	}
	for i, r := range res.Layout.Rooms {
		out.Rooms[i] = roomJSON{ID: r.ID, Name: r.Name(), X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return out
}

func writeJSON(w io.Writer, res *generate.Result, seed int64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(res, seed))
}

func writeText(w io.Writer, res *generate.Result, seed int64) {
	layout := res.Layout

	fmt.Fprintln(w, styleTitle.Render("Layout "+res.RunID))
	printKV(w, "seed", seed)
	printKV(w, "attempt", fmt.Sprintf("%d of %d", res.Attempt, res.Attempts))
	printKV(w, "passes", layout.Passes)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-8s %8s %8s %6s %6s\n", "room", "x", "y", "width", "height")
	for _, r := range layout.Rooms {
		fmt.Fprintf(w, "  %-8s %8s %8s %6g %6g\n",
			r.Name(),
			styleNumber.Render(fmt.Sprintf("%g", r.X)),
			styleNumber.Render(fmt.Sprintf("%g", r.Y)),
			r.Width, r.Height)
	}
	fmt.Fprintln(w)

	if layout.Converged {
		printSuccess(w, "%d rooms, no overlaps", len(layout.Rooms))
	}
}
