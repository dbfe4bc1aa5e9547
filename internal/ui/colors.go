package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: want 6 digits", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	return tcell.NewRGBColor(int32(rgb>>16&0xFF), int32(rgb>>8&0xFF), int32(rgb&0xFF)), nil
}

// Palette holds the resolved colors for drawing rooms.
type Palette struct {
	Fill  tcell.Color
	Floor tcell.Color
	Label tcell.Color
}

// DefaultPalette is used when no colors are configured.
var DefaultPalette = Palette{
	Fill:  tcell.ColorFireBrick,
	Floor: tcell.ColorBlack,
	Label: tcell.ColorKhaki,
}

// NewPalette parses the three hex colors.
func NewPalette(fill, floor, label string) (Palette, error) {
	var p Palette
	var err error
	if p.Fill, err = ParseHexColor(fill); err != nil {
		return p, fmt.Errorf("fill: %w", err)
	}
	if p.Floor, err = ParseHexColor(floor); err != nil {
		return p, fmt.Errorf("floor: %w", err)
	}
	if p.Label, err = ParseHexColor(label); err != nil {
		return p, fmt.Errorf("label: %w", err)
	}
	return p, nil
}
