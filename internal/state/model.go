package state

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidWidth = errors.New("stroke width out of range")
)

// Tool is the drawing tool selected on a surface.
type Tool string

const (
	ToolPencil    Tool = "pencil"
	ToolEraser    Tool = "eraser"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolPencil, ToolEraser, ToolRectangle, ToolCircle, ToolText}

func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tools {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// IsStroke reports whether the tool paints a continuous path of segments.
func (t Tool) IsStroke() bool { return t == ToolPencil || t == ToolEraser }

// IsShape reports whether the tool previews a shape while dragging.
func (t Tool) IsShape() bool { return t == ToolRectangle || t == ToolCircle }

const (
	DefaultColor       = "#000000"
	DefaultStrokeWidth = 5.0
	MaxStrokeWidth     = 500.0
	BackgroundColor    = "#ffffff"
)

// ToolState is the current tool, color and stroke width of a surface.
type ToolState struct {
	Tool        Tool    `json:"tool"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func DefaultToolState() ToolState {
	return ToolState{
		Tool:        ToolPencil,
		Color:       DefaultColor,
		StrokeWidth: DefaultStrokeWidth,
	}
}

// StrokeColor is the color actually painted; the eraser paints background.
func (ts ToolState) StrokeColor() string {
	if ts.Tool == ToolEraser {
		return BackgroundColor
	}
	return ts.Color
}

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#00ff00",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
}

// NormalizeColor returns the lower-case "#rrggbb" form of a hex color or one
// of the named palette colors.
func NormalizeColor(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[c]; ok {
		return hex, nil
	}
	if !strings.HasPrefix(c, "#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	digits := c[1:]
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	switch len(digits) {
	case 3:
		return "#" + string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		}), nil
	case 6:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// ValidateWidth accepts widths in (0, MaxStrokeWidth]. For text the width
// is the font size.
func ValidateWidth(w float64) error {
	if !(w > 0 && w <= MaxStrokeWidth) {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, w)
	}
	return nil
}

// Point is a surface coordinate in pixels.
type Point struct{ X, Y float64 }
