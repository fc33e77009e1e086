package sunburst

import "math"

// Shape is the screen-space footprint of a node.
type Shape interface {
	// Contains reports whether (x, y) lies inside the shape.
	Contains(x, y float64) bool
	// Centroid returns an interior anchor point, used for labels and
	// round-trip hit tests.
	Centroid() Vec2
	// Bounds returns the axis-aligned bounding box.
	Bounds() Rect
	// Empty reports whether the shape covers no area.
	Empty() bool
}

// Wedge is an annular sector. Angles are in degrees, measured clockwise from
// the +X axis on the y-down screen. An Arc of 360 or more is a full ring.
type Wedge struct {
	CX, CY                   float64
	InnerRadius, OuterRadius float64
	StartAngle, Arc          float64
}

// Empty reports whether the wedge covers no area.
func (w Wedge) Empty() bool {
	return w.OuterRadius <= w.InnerRadius || w.Arc <= 0
}

// Contains reports whether (x, y) lies inside the wedge. The radial and
// angular ranges are half-open: the inner edge and start angle are inside,
// the outer edge and end angle are not.
func (w Wedge) Contains(x, y float64) bool {
	if w.Empty() {
		return false
	}
	dx, dy := x-w.CX, y-w.CY
	r := math.Hypot(dx, dy)
	if r < w.InnerRadius || r >= w.OuterRadius {
		return false
	}
	if w.Arc >= 360 {
		return true
	}
	return normalizeDegrees(screenAngle(dx, dy)-w.StartAngle) < w.Arc
}

// Centroid returns the point at mid radius and mid angle.
func (w Wedge) Centroid() Vec2 {
	r := (w.InnerRadius + w.OuterRadius) / 2
	a := (w.StartAngle + w.Arc/2) * math.Pi / 180
	return Vec2{w.CX + r*math.Cos(a), w.CY + r*math.Sin(a)}
}

// Bounds returns the bounding box of the wedge outline.
func (w Wedge) Bounds() Rect {
	pts := w.Outline(64)
	if len(pts) == 0 {
		return Rect{X: w.CX, Y: w.CY}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Outline approximates the wedge as a closed polygon: the outer arc from
// start to end followed by the inner arc back. segsPerTurn controls the
// number of segments a full circle would use; each arc gets at least one.
// A zero inner radius collapses the inner arc to the center point.
func (w Wedge) Outline(segsPerTurn int) []Vec2 {
	if w.Empty() {
		return nil
	}
	arc := math.Min(w.Arc, 360)
	n := int(math.Ceil(float64(segsPerTurn) * arc / 360))
	if n < 1 {
		n = 1
	}
	pts := make([]Vec2, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		pts = append(pts, w.point(w.OuterRadius, w.StartAngle+arc*float64(i)/float64(n)))
	}
	if w.InnerRadius <= 0 {
		if arc < 360 {
			pts = append(pts, Vec2{w.CX, w.CY})
		}
		return pts
	}
	for i := n; i >= 0; i-- {
		pts = append(pts, w.point(w.InnerRadius, w.StartAngle+arc*float64(i)/float64(n)))
	}
	return pts
}

// MidArcLength returns the length of the arc through the middle of the band.
func (w Wedge) MidArcLength() float64 {
	return (w.InnerRadius + w.OuterRadius) / 2 * math.Min(w.Arc, 360) * math.Pi / 180
}

func (w Wedge) point(r, deg float64) Vec2 {
	a := deg * math.Pi / 180
	return Vec2{w.CX + r*math.Cos(a), w.CY + r*math.Sin(a)}
}

// Circle is a disc used by the circle-packing ordering rule.
type Circle struct {
	CX, CY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c Circle) Contains(x, y float64) bool {
	dx := x - c.CX
	dy := y - c.CY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Empty reports whether the circle has no area.
func (c Circle) Empty() bool { return c.Radius <= 0 }

// Centroid returns the center of the circle.
func (c Circle) Centroid() Vec2 { return Vec2{c.CX, c.CY} }

// Bounds returns the bounding square of the circle.
func (c Circle) Bounds() Rect {
	return Rect{X: c.CX - c.Radius, Y: c.CY - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// screenAngle returns the clockwise angle of (dx, dy) from +X on a y-down
// screen, in [0, 360).
func screenAngle(dx, dy float64) float64 {
	return normalizeDegrees(math.Atan2(dy, dx) * 180 / math.Pi)
}

// normalizeDegrees wraps a into [0, 360).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// Outline returns a closed polygon approximating s. Wedges and circles use
// segsPerTurn segments per full turn; other shapes fall back to their bounds.
func Outline(s Shape, segsPerTurn int) []Vec2 {
	switch sh := s.(type) {
	case Wedge:
		return sh.Outline(segsPerTurn)
	case Circle:
		return Wedge{CX: sh.CX, CY: sh.CY, OuterRadius: sh.Radius, Arc: 360}.Outline(segsPerTurn)
	}
	if s.Empty() {
		return nil
	}
	r := s.Bounds()
	if r.Empty() {
		return nil
	}
	return []Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}
