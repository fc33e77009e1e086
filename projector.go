package sunburst

// Projector maps nodes of one focus root onto the screen and back. Both
// projections share this contract so the navigator and the render pass can
// treat them alike.
type Projector interface {
	Tree() *Tree
	Root() NodeID
	TotalDepth() int
	Transform() Transform
	SetTransform(Transform)

	// NodeShape returns the screen footprint of id.
	NodeShape(id NodeID) Shape
	// SubtreeShape returns the footprint of id together with all of its
	// descendant bands.
	SubtreeShape(id NodeID) Shape
	// NodeAt returns the node under (x, y) or NoNode.
	NodeAt(x, y float64) NodeID
	// Theta returns the angle used by rotation drags at (x, y).
	Theta(x, y float64) float64
}

// NewProjector returns the projector for p rooted at root.
func NewProjector(p Projection, t *Tree, root NodeID, xf Transform) Projector {
	if p == ProjectionIcicle {
		ic := NewIcicle(t, root)
		ic.SetTransform(xf)
		return ic
	}
	r := NewRadial(t, root)
	r.SetTransform(xf)
	return r
}

// projectorBase holds the state common to both projections.
type projectorBase struct {
	tree       *Tree
	root       NodeID
	totalDepth int
	xf         Transform
}

func newProjectorBase(t *Tree, root NodeID) projectorBase {
	return projectorBase{tree: t, root: root, totalDepth: t.Generations(root)}
}

// Tree returns the indexed tree.
func (p *projectorBase) Tree() *Tree { return p.tree }

// Root returns the focus root.
func (p *projectorBase) Root() NodeID { return p.root }

// TotalDepth returns the number of generations drawn below and including the
// focus root.
func (p *projectorBase) TotalDepth() int { return p.totalDepth }

// Transform returns a copy of the current transform.
func (p *projectorBase) Transform() Transform { return p.xf }

// SetTransform replaces the transform; negative sizes are clamped to zero.
func (p *projectorBase) SetTransform(xf Transform) { p.xf = xf.Clamped() }
