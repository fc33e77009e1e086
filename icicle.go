package sunburst

import "math"

// Icicle is the linear projector: depth runs along X, the extent of the
// focus root along Y.
type Icicle struct {
	projectorBase
}

// NewIcicle returns an icicle projector for the subtree of root.
func NewIcicle(t *Tree, root NodeID) *Icicle {
	return &Icicle{projectorBase: newProjectorBase(t, root)}
}

// NodeShape implements Projector.
func (p *Icicle) NodeShape(id NodeID) Shape {
	return IcicleRect(p.tree, id, p.root, p.xf, p.totalDepth)
}

// SubtreeShape implements Projector.
func (p *Icicle) SubtreeShape(id NodeID) Shape {
	r := IcicleRect(p.tree, id, p.root, p.xf, p.totalDepth)
	if r.Empty() {
		return r
	}
	colW := p.xf.Width / float64(p.totalDepth)
	r.Width = max(colW*float64(p.tree.Generations(id))-1, 0)
	return r
}

// NodeAt implements Projector.
func (p *Icicle) NodeAt(x, y float64) NodeID {
	return IcicleNodeAt(p.tree, p.root, p.xf, p.totalDepth, x, y)
}

// Theta maps the vertical position inside the plot to an angle in degrees.
// Points above or below the plot map to 0.
func (p *Icicle) Theta(x, y float64) float64 {
	if p.xf.Height <= 0 || y < p.xf.CY || y > p.xf.CY+p.xf.Height {
		return 0
	}
	return (y - p.xf.CY) * 360 / p.xf.Height
}

// IcicleRect returns the rectangle of id when root fills the transform.
// Each column is one pixel narrower than its share of the width, and tiles
// that are strict subsets of the root lose half a pixel on both cross-axis
// edges once they are taller than two pixels.
func IcicleRect(t *Tree, id, root NodeID, xf Transform, totalDepth int) Rect {
	rn := t.Node(root)
	if totalDepth <= 0 || xf.Width <= 0 || xf.Height <= 0 || rn.Extent <= 0 {
		return Rect{X: xf.CX, Y: xf.CY}
	}
	n := t.Node(id)
	colW := xf.Width / float64(totalDepth)
	r := Rect{
		X:      xf.CX + colW*float64(n.Depth-rn.Depth),
		Y:      xf.CY + xf.Height*(n.Left-rn.Left)/rn.Extent,
		Width:  max(colW-1, 0),
		Height: xf.Height * n.Extent / rn.Extent,
	}
	if r.Height > 2 && n.Extent < rn.Extent {
		r.Y += 0.5
		r.Height -= 1
	}
	return r
}

// IcicleNodeAt inverts IcicleRect: the X offset selects the generation and
// the Y offset selects the node whose [Left, Left+Extent) contains it.
func IcicleNodeAt(t *Tree, root NodeID, xf Transform, totalDepth int, x, y float64) NodeID {
	rn := t.Node(root)
	if totalDepth <= 0 || xf.Width <= 0 || xf.Height <= 0 || rn.Extent <= 0 {
		return NoNode
	}
	if x < xf.CX || x >= xf.CX+xf.Width || y < xf.CY || y >= xf.CY+xf.Height {
		return NoNode
	}
	depth := int(math.Floor((x - xf.CX) / xf.Width * float64(totalDepth)))
	if depth >= totalDepth {
		return NoNode
	}
	number := (y-xf.CY)/xf.Height*rn.Extent + rn.Left
	return t.FindNodeFrom(root, rn.Depth+depth, number)
}
