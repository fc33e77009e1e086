package sunburst

// Transform maps the indexed tree onto the screen. It is a plain value:
// the navigator owns the live copies and render passes receive snapshots.
//
// The sunburst projection uses CX/CY as the ring center and InnerRadius and
// OuterRadius as the radial band. The icicle projection uses CX/CY as the
// top-left origin and Width/Height as the depth and extent axes. Rotation is
// shared by both and only drawn by the sunburst.
type Transform struct {
	CX, CY float64

	// Rotation in degrees, clockwise. Unbounded; use NormalizedRotation for
	// display.
	Rotation float64

	InnerRadius, OuterRadius float64

	Width, Height float64
}

// NormalizedRotation returns Rotation wrapped into [0, 360).
func (t Transform) NormalizedRotation() float64 {
	return normalizeDegrees(t.Rotation)
}

// Clamped returns t with negative radii and axis sizes set to zero.
func (t Transform) Clamped() Transform {
	t.InnerRadius = max(t.InnerRadius, 0)
	t.OuterRadius = max(t.OuterRadius, 0)
	t.Width = max(t.Width, 0)
	t.Height = max(t.Height, 0)
	return t
}

// Translated returns t moved by (dx, dy).
func (t Transform) Translated(dx, dy float64) Transform {
	t.CX += dx
	t.CY += dy
	return t
}

// Rotated returns t rotated so that the angle at the drag start ends up at
// the target angle: Rotation += start - target.
func (t Transform) Rotated(target, start float64) Transform {
	t.Rotation += start - target
	return t
}
