package sunburst

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Common colors used by the default palette and overlays.
var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorGray  = Color{0.5, 0.5, 0.5, 1}
	ColorRed   = Color{1, 0, 0, 1}
)

// RGBA converts c to a straight-alpha color.NRGBA.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	n := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D point or offset in screen space.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Centroid returns the center of the rectangle.
func (r Rect) Centroid() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Bounds returns r.
func (r Rect) Bounds() Rect { return r }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Projection selects how the tree is laid out on screen.
type Projection uint8

const (
	ProjectionSunburst Projection = iota // radial rings around a center
	ProjectionIcicle                     // depth along X, extent along Y
)

// String returns the config name of the projection.
func (p Projection) String() string {
	switch p {
	case ProjectionIcicle:
		return "icicle"
	default:
		return "sunburst"
	}
}

// ParseProjection maps a config name to a Projection.
func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunburst", "radial":
		return ProjectionSunburst, nil
	case "icicle", "linear":
		return ProjectionIcicle, nil
	}
	return 0, fmt.Errorf("unknown projection %q", s)
}

// Fidelity is the detail level of a render pass.
type Fidelity uint8

const (
	FidelityFull       Fidelity = iota // colors and labels
	FidelitySimplified                 // contour outlines only
)

func (f Fidelity) String() string {
	if f == FidelitySimplified {
		return "simplified"
	}
	return "full"
}

// EventType identifies a kind of input event.
type EventType uint8

const (
	EventPointerDown EventType = iota // a pointer button is pressed
	EventPointerUp                    // a pointer button is released
	EventPointerMove                  // the pointer moves with no button held
	EventPointerDrag                  // the pointer moves with a button held, past the dead zone
	EventClick                        // press then release without dragging
	EventDoubleClick                  // two clicks within the double-click interval
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// Event is a discrete input event in screen coordinates.
type Event struct {
	Type   EventType
	X, Y   float64
	Button MouseButton
}
