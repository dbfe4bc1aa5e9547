package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/roomscatter/internal/ui"
	"github.com/samdwyer/roomscatter/internal/world"
)

func (c *CLI) newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show layouts interactively in the terminal",
		Long:  `View draws a layout in the terminal. Press r for a new layout and q or Esc to quit.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := ui.NewPalette(c.Config.Colors.Fill, c.Config.Colors.Floor, c.Config.Colors.Label)
			if err != nil {
				return err
			}

			g, seed, err := c.generator()
			if err != nil {
				return err
			}
			c.Logger.Debug("starting viewer", "seed", seed)

			screen, err := ui.NewScreen()
			if err != nil {
				return err
			}

			// Log lines would draw over the screen.
			quiet := log.New(io.Discard)
			gen := func(ctx context.Context) (*world.Layout, error) {
				res, err := g.Run(log.WithContext(ctx, quiet))
				if res == nil {
					return nil, err
				}
				return res.Layout, err
			}

			return ui.NewViewer(screen, palette, gen).Run(cmd.Context())
		},
	}
}
