package sunburst

import "math"

// Radial is the sunburst projector: depth maps to concentric bands between
// the inner and outer radius, the extent of the focus root to a full turn
// starting at the transform's rotation.
type Radial struct {
	projectorBase
}

// NewRadial returns a sunburst projector for the subtree of root.
func NewRadial(t *Tree, root NodeID) *Radial {
	return &Radial{projectorBase: newProjectorBase(t, root)}
}

// NodeShape implements Projector.
func (p *Radial) NodeShape(id NodeID) Shape {
	return SunburstWedge(p.tree, id, p.root, p.xf, p.totalDepth)
}

// SubtreeShape implements Projector.
func (p *Radial) SubtreeShape(id NodeID) Shape {
	w := SunburstWedge(p.tree, id, p.root, p.xf, p.totalDepth)
	if w.Empty() {
		return w
	}
	band := (p.xf.OuterRadius - p.xf.InnerRadius) / float64(p.totalDepth)
	w.OuterRadius = w.InnerRadius + band*float64(p.tree.Generations(id))
	return w
}

// NodeAt implements Projector.
func (p *Radial) NodeAt(x, y float64) NodeID {
	return SunburstNodeAt(p.tree, p.root, p.xf, p.totalDepth, x, y)
}

// Theta returns the counter-clockwise polar angle of (x, y) around the
// center, in degrees in [0, 360). Feeding two Theta values to
// Transform.Rotated keeps the content under the pointer.
func (p *Radial) Theta(x, y float64) float64 {
	return normalizeDegrees(math.Atan2(p.xf.CY-y, x-p.xf.CX) * 180 / math.Pi)
}

// SunburstWedge returns the wedge of id when root fills the transform.
// Band i spans InnerRadius + (Outer-Inner)*i/totalDepth outward by one band.
func SunburstWedge(t *Tree, id, root NodeID, xf Transform, totalDepth int) Wedge {
	rn := t.Node(root)
	if totalDepth <= 0 || xf.OuterRadius <= xf.InnerRadius || rn.Extent <= 0 {
		return Wedge{CX: xf.CX, CY: xf.CY}
	}
	n := t.Node(id)
	band := (xf.OuterRadius - xf.InnerRadius) / float64(totalDepth)
	rel := float64(n.Depth - rn.Depth)
	return Wedge{
		CX:          xf.CX,
		CY:          xf.CY,
		InnerRadius: xf.InnerRadius + band*rel,
		OuterRadius: xf.InnerRadius + band*(rel+1),
		StartAngle:  xf.Rotation + (n.Left-rn.Left)*360/rn.Extent,
		Arc:         n.Extent * 360 / rn.Extent,
	}
}

// SunburstNodeAt inverts SunburstWedge. The point is converted to polar
// coordinates around the center; the radius selects the generation and the
// clockwise angle past the rotation selects the node by containment.
func SunburstNodeAt(t *Tree, root NodeID, xf Transform, totalDepth int, x, y float64) NodeID {
	rn := t.Node(root)
	span := xf.OuterRadius - xf.InnerRadius
	if totalDepth <= 0 || span <= 0 || rn.Extent <= 0 {
		return NoNode
	}
	dx, dy := x-xf.CX, y-xf.CY
	r := math.Hypot(dx, dy)
	if r < xf.InnerRadius || r >= xf.OuterRadius {
		return NoNode
	}
	depth := int(math.Floor((r - xf.InnerRadius) / span * float64(totalDepth)))
	if depth >= totalDepth {
		return NoNode
	}
	local := normalizeDegrees(screenAngle(dx, dy) - xf.Rotation)
	number := local/360*rn.Extent + rn.Left
	return t.FindNodeFrom(root, rn.Depth+depth, number)
}
