package sunburst

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FocusState describes what the navigator is drawing.
type FocusState struct {
	Focused bool
	Root    NodeID // the focused subtree root, NoNode when unfocused
}

// recenterAnim tweens the view center toward a target.
type recenterAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Navigator owns the view transforms and turns gestures into transform and
// focus changes.
//
// Unfocused, a single projector draws the whole tree at full size. Focused,
// the whole tree is compressed into the inner half of the layout and the
// selected subtree is expanded into the outer half; both share rotation and
// center so the two rings stay aligned.
type Navigator struct {
	tree       *Tree
	projection Projection

	outer Projector
	inner Projector // nil when unfocused

	selected NodeID
	hover    NodeID

	size       float64 // outer radius (sunburst) or depth axis width (icicle)
	viewW      float64
	viewH      float64
	margin     float64
	onChange   func()
	onHover    func(NodeID)
	recenterIn time.Duration

	// Drag state, valid between PointerDown and PointerUp.
	isMove     bool
	adjusting  bool
	lastX      float64
	lastY      float64
	alphaStart float64

	recenter *recenterAnim
}

// NewNavigator returns an unfocused navigator over t. The transform is empty
// until Layout or Resize is called.
func NewNavigator(t *Tree, p Projection) *Navigator {
	return &Navigator{
		tree:       t,
		projection: p,
		outer:      NewProjector(p, t, t.Root(), Transform{}),
		selected:   NoNode,
		hover:      NoNode,
	}
}

// OnChange registers fn to be called after every change that requires a
// redraw.
func (n *Navigator) OnChange(fn func()) { n.onChange = fn }

// OnHover registers fn to be called when the hovered node changes.
func (n *Navigator) OnHover(fn func(NodeID)) { n.onHover = fn }

// SetRecenterDuration sets how long a double-click recenter animates.
// Zero jumps immediately.
func (n *Navigator) SetRecenterDuration(d time.Duration) { n.recenterIn = d }

func (n *Navigator) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}

// Tree returns the navigated tree.
func (n *Navigator) Tree() *Tree { return n.tree }

// Projection returns the active projection.
func (n *Navigator) Projection() Projection { return n.projection }

// Outer returns the projector drawing the whole tree.
func (n *Navigator) Outer() Projector { return n.outer }

// Inner returns the projector drawing the focused subtree, or nil.
func (n *Navigator) Inner() Projector { return n.inner }

// Focus returns the current focus state.
func (n *Navigator) Focus() FocusState {
	if n.inner == nil {
		return FocusState{Root: NoNode}
	}
	return FocusState{Focused: true, Root: n.selected}
}

// Selected returns the selected node, or NoNode.
func (n *Navigator) Selected() NodeID { return n.selected }

// Hover returns the node under the pointer, or NoNode.
func (n *Navigator) Hover() NodeID { return n.hover }

// Adjusting reports whether a drag or recenter animation is in progress.
func (n *Navigator) Adjusting() bool { return n.adjusting || n.recenter != nil }

// Size returns the layout size R.
func (n *Navigator) Size() float64 { return n.size }

// Layers returns copies of the active projector transforms, outer first.
func (n *Navigator) Layers() []Layer {
	layers := []Layer{{
		Projection: n.projection,
		Root:       n.outer.Root(),
		Transform:  n.outer.Transform(),
	}}
	if n.inner != nil {
		layers = append(layers, Layer{
			Projection:      n.projection,
			Root:            n.inner.Root(),
			Transform:       n.inner.Transform(),
			DescendantsOnly: true,
		})
	}
	return layers
}

// --- Layout ---

// Layout fits the view into a w by h viewport with the given margin. The
// sunburst is centered with radius min(w, h)/2 - margin; the icicle fills
// the viewport inside the margin.
func (n *Navigator) Layout(w, h, margin float64) {
	n.viewW, n.viewH, n.margin = w, h, margin
	xf := n.outer.Transform()
	var size float64
	if n.projection == ProjectionIcicle {
		xf.CX, xf.CY = margin, margin
		xf.Height = h - 2*margin
		size = w - 2*margin
	} else {
		xf.CX, xf.CY = w/2, h/2
		size = math.Min(w, h)/2 - margin
	}
	n.outer.SetTransform(xf)
	n.Resize(size)
}

// Resize sets the layout size R and splits it between the active
// projectors. Non-positive sizes clamp to zero.
func (n *Navigator) Resize(r float64) {
	n.size = max(r, 0)
	n.applySplit()
	n.changed()
}

// applySplit recomputes both transforms from the current size. Rotation and
// center always come from the outer transform.
func (n *Navigator) applySplit() {
	r := n.size
	outer := n.outer.Transform()
	if n.inner == nil {
		n.setExtent(&outer, r)
		n.outer.SetTransform(outer)
		return
	}

	whole := float64(n.outer.TotalDepth())
	n.setExtent(&outer, r/2-(r/2)/whole)
	n.outer.SetTransform(outer)

	split := r / 2
	if !n.tree.IsLeaf(n.selected) {
		split = r/2 - (r/2)/float64(n.inner.TotalDepth())
	}
	inner := outer
	if n.projection == ProjectionIcicle {
		inner.CX = outer.CX + split
		inner.Width = r - split
	} else {
		inner.InnerRadius = split
		inner.OuterRadius = r
	}
	n.inner.SetTransform(inner)
}

func (n *Navigator) setExtent(xf *Transform, v float64) {
	if n.projection == ProjectionIcicle {
		xf.Width = v
	} else {
		xf.OuterRadius = v
	}
}

// --- Focus ---

// Select focuses the subtree of id. Selecting the root, or an invalid ID,
// returns to the unfocused view. A new selection replaces the previous one.
func (n *Navigator) Select(id NodeID) {
	if !n.tree.Valid(id) || id == n.tree.Root() {
		n.Deselect()
		return
	}
	n.selected = id
	n.inner = NewProjector(n.projection, n.tree, id, n.outer.Transform())
	n.applySplit()
	n.changed()
}

// Deselect returns to the unfocused view at full size.
func (n *Navigator) Deselect() {
	n.selected = NoNode
	n.inner = nil
	n.applySplit()
	n.changed()
}

// --- Transform gestures ---

// Pan moves both transforms by (dx, dy).
func (n *Navigator) Pan(dx, dy float64) {
	n.outer.SetTransform(n.outer.Transform().Translated(dx, dy))
	if n.inner != nil {
		n.inner.SetTransform(n.inner.Transform().Translated(dx, dy))
	}
	n.changed()
}

// Rotate applies Rotation += start - target to both transforms.
func (n *Navigator) Rotate(target, start float64) {
	n.outer.SetTransform(n.outer.Transform().Rotated(target, start))
	if n.inner != nil {
		n.inner.SetTransform(n.inner.Transform().Rotated(target, start))
	}
	n.changed()
}

// Center returns the center (sunburst) or origin (icicle) of the view.
func (n *Navigator) Center() Vec2 {
	xf := n.outer.Transform()
	return Vec2{xf.CX, xf.CY}
}

// homeCenter returns where Layout puts the center.
func (n *Navigator) homeCenter() Vec2 {
	if n.projection == ProjectionIcicle {
		return Vec2{n.margin, n.margin}
	}
	return Vec2{n.viewW / 2, n.viewH / 2}
}

// Recenter moves the view back to its layout position, animated when a
// recenter duration is set.
func (n *Navigator) Recenter() {
	from, to := n.Center(), n.homeCenter()
	if n.recenterIn <= 0 {
		n.Pan(to.X-from.X, to.Y-from.Y)
		return
	}
	secs := float32(n.recenterIn.Seconds())
	n.recenter = &recenterAnim{
		tweenX: gween.New(float32(from.X), float32(to.X), secs, ease.OutQuad),
		tweenY: gween.New(float32(from.Y), float32(to.Y), secs, ease.OutQuad),
	}
	n.changed()
}

// Update advances the recenter animation by dt seconds.
func (n *Navigator) Update(dt float32) {
	a := n.recenter
	if a == nil {
		return
	}
	c := n.Center()
	x, y := c.X, c.Y
	if !a.doneX {
		v, done := a.tweenX.Update(dt)
		x = float64(v)
		a.doneX = done
	}
	if !a.doneY {
		v, done := a.tweenY.Update(dt)
		y = float64(v)
		a.doneY = done
	}
	if a.doneX && a.doneY {
		n.recenter = nil
	}
	n.Pan(x-c.X, y-c.Y)
}

// --- Hit testing ---

// NodeAt resolves (x, y) against the outer projector, then the inner one.
// The focused root itself is only hit when it is a leaf.
func (n *Navigator) NodeAt(x, y float64) NodeID {
	if id := n.outer.NodeAt(x, y); id != NoNode {
		return id
	}
	if n.inner == nil {
		return NoNode
	}
	id := n.inner.NodeAt(x, y)
	if id == n.inner.Root() && !n.tree.IsLeaf(id) {
		return NoNode
	}
	return id
}

// --- Input ---

// HandleEvent applies an input event. Right clicks are not handled here;
// see Viewer.ActionsAt.
func (n *Navigator) HandleEvent(ev Event) {
	switch ev.Type {
	case EventPointerDown:
		n.PointerDown(ev.X, ev.Y)
	case EventPointerDrag:
		n.PointerDrag(ev.X, ev.Y)
	case EventPointerUp:
		n.PointerUp(ev.X, ev.Y)
	case EventPointerMove:
		n.PointerMove(ev.X, ev.Y)
	case EventClick:
		if ev.Button == MouseButtonLeft {
			n.Click(ev.X, ev.Y)
		}
	case EventDoubleClick:
		if ev.Button == MouseButtonLeft {
			n.DoubleClick(ev.X, ev.Y)
		}
	}
}

// PointerDown starts a potential drag. A drag that starts on the root pans;
// any other drag rotates. Icicle drags always pan.
func (n *Navigator) PointerDown(x, y float64) {
	n.isMove = n.projection == ProjectionIcicle || n.outer.NodeAt(x, y) == n.tree.Root()
	n.lastX, n.lastY = x, y
	n.alphaStart = n.outer.Theta(x, y)
}

// PointerDrag pans or rotates and marks the view as adjusting.
func (n *Navigator) PointerDrag(x, y float64) {
	n.adjusting = true
	if n.isMove {
		n.Pan(x-n.lastX, y-n.lastY)
	} else {
		alpha := n.outer.Theta(x, y)
		n.Rotate(alpha, n.alphaStart)
		n.alphaStart = alpha
	}
	n.lastX, n.lastY = x, y
}

// PointerUp ends a drag. The view is invalidated so a Full pass replaces
// any Simplified frames drawn while adjusting.
func (n *Navigator) PointerUp(x, y float64) {
	if n.adjusting {
		n.adjusting = false
		n.changed()
	}
}

// PointerMove updates the hovered node.
func (n *Navigator) PointerMove(x, y float64) {
	id := n.NodeAt(x, y)
	if id == n.hover {
		return
	}
	n.hover = id
	if n.onHover != nil {
		n.onHover(id)
	}
}

// Click selects the node under the pointer. Clicking the root or empty
// space deselects.
func (n *Navigator) Click(x, y float64) {
	id := n.NodeAt(x, y)
	if id == NoNode || id == n.tree.Root() {
		n.Deselect()
		return
	}
	n.Select(id)
}

// DoubleClick on the root deselects and recenters the view.
func (n *Navigator) DoubleClick(x, y float64) {
	if n.NodeAt(x, y) != n.tree.Root() {
		return
	}
	n.Deselect()
	n.Recenter()
}
