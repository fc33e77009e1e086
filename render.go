package sunburst

import (
	"context"
	"image"
	"sync/atomic"
	"unicode/utf8"
)

// FontMetrics describes the font used for labels, in pixels.
type FontMetrics struct {
	Height, Ascent float64
}

// Surface is a drawing target. Implementations live in ggrender (raster),
// svgexport (vector) and ebitenview (screen overlays).
type Surface interface {
	FillShape(s Shape, c Color)
	StrokeShape(s Shape, c Color)
	DrawText(text string, x, y float64, c Color)
	MeasureText(text string) float64
	FontMetrics() FontMetrics
}

// Action is a named operation offered for a node, e.g. in a context menu.
type Action struct {
	Name string
	Run  func() error
}

// NodeInfo supplies presentation metadata for tree paths. It is called from
// render passes, possibly off the owner thread, and must not mutate the tree.
// Paths handed to NodeInfo are reused by the pass and must not be retained.
type NodeInfo interface {
	Color(p TreePath) Color
	Name(p TreePath) string
	Tooltip(p TreePath) (string, bool)
	Actions(p TreePath) []Action
}

// Renderer produces a finished image for a frame. Render may run on the
// background slot and must only read the frame it is given.
type Renderer interface {
	Render(ctx context.Context, f Frame, progress *Progress) (image.Image, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, f Frame, progress *Progress) (image.Image, error)

// Render implements Renderer.
func (fn RendererFunc) Render(ctx context.Context, f Frame, progress *Progress) (image.Image, error) {
	return fn(ctx, f, progress)
}

// Layer is one projector pass: the whole tree, or the focused subtree.
type Layer struct {
	Projection Projection
	Root       NodeID
	Transform  Transform

	// DescendantsOnly skips the layer root itself unless it is a leaf.
	DescendantsOnly bool
}

// Projector builds the projector described by l.
func (l Layer) Projector(t *Tree) Projector {
	return NewProjector(l.Projection, t, l.Root, l.Transform)
}

// draws reports whether the layer paints id.
func (l Layer) draws(t *Tree, id NodeID) bool {
	if !t.IsDescendant(l.Root, id) {
		return false
	}
	return !l.DescendantsOnly || id != l.Root || t.IsLeaf(id)
}

// Frame is the immutable input of one render pass. Layers are copies taken
// on the owner thread, so a background pass never reads navigator state.
type Frame struct {
	Tree          *Tree
	Info          NodeInfo
	Layers        []Layer
	Fidelity      Fidelity
	Width, Height int
	Palette       Palette
	LabelPadding  float64
}

// Nodes returns the number of nodes the frame's layers visit.
func (f Frame) Nodes() int64 {
	var n int64
	for _, l := range f.Layers {
		if f.Tree.Valid(l.Root) {
			n += int64(f.Tree.nodes[l.Root].end - l.Root)
		}
	}
	return n
}

// Progress counts nodes drawn by a pass. Safe for concurrent use.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

func (p *Progress) reset(total int64) {
	p.done.Store(0)
	p.total.Store(total)
}

// Done returns the number of nodes drawn so far.
func (p *Progress) Done() int64 { return p.done.Load() }

// Total returns the number of nodes the pass will visit.
func (p *Progress) Total() int64 { return p.total.Load() }

// Fraction returns Done/Total, or 1 when there is nothing to draw.
func (p *Progress) Fraction() float64 {
	total := p.total.Load()
	if total <= 0 {
		return 1
	}
	return float64(p.done.Load()) / float64(total)
}

// cancelCheckEvery is how many nodes are drawn between context checks.
const cancelCheckEvery = 1024

// DrawPass draws every layer of f onto s with an explicit pre-order walk.
// Full passes fill each node with its color and draw fitted labels;
// Simplified passes only stroke the contours of internal nodes.
// The context is checked between nodes; a cancelled pass returns ctx.Err().
func DrawPass(ctx context.Context, s Surface, f Frame, progress *Progress) error {
	if progress == nil {
		progress = &Progress{}
	}
	progress.reset(f.Nodes())
	t := f.Tree
	pad := f.LabelPadding
	info := f.Info
	if info == nil {
		info = DefaultInfo{}
	}

	var visited int
	for _, l := range f.Layers {
		if !t.Valid(l.Root) {
			continue
		}
		proj := l.Projector(t)
		rootDepth := t.Depth(l.Root)

		stack := []NodeID{l.Root}
		path := t.Path(l.Root)[:rootDepth]
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			visited++
			if visited%cancelCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			path = append(path[:t.Depth(id)], t.Data(id))
			kids := t.Children(id)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
			progress.done.Add(1)

			if !l.draws(t, id) {
				continue
			}
			shape := proj.NodeShape(id)
			if shape.Empty() {
				continue
			}

			if f.Fidelity == FidelitySimplified {
				if len(kids) > 0 {
					s.StrokeShape(shape, f.Palette.Contour)
				}
				continue
			}

			s.FillShape(shape, info.Color(path))
			drawLabel(s, shape, info.Name(path), f.Palette.Label, pad)
		}
	}
	return nil
}

// drawLabel places a fitted label inside shape. Labels that shrink to a
// single elided character are omitted.
func drawLabel(s Surface, shape Shape, name string, c Color, pad float64) {
	if name == "" {
		return
	}
	fm := s.FontMetrics()
	var (
		avail float64
		place func(text string)
	)
	switch sh := shape.(type) {
	case Rect:
		if fm.Height >= sh.Height {
			return
		}
		avail = sh.Width - pad
		place = func(text string) {
			s.DrawText(text, sh.X+pad, sh.Y+fm.Ascent+(sh.Height-fm.Height)/2, c)
		}
	case Wedge:
		if sh.MidArcLength() <= fm.Height {
			return
		}
		avail = sh.OuterRadius - sh.InnerRadius - pad
		place = func(text string) {
			at := sh.Centroid()
			w := s.MeasureText(text)
			s.DrawText(text, at.X-w/2, at.Y+fm.Ascent-fm.Height/2, c)
		}
	default:
		return
	}
	text, ok := FitLabel(name, avail, s.MeasureText)
	if !ok {
		return
	}
	if n := utf8.RuneCountInString(text); n == 1 && utf8.RuneCountInString(name) > 1 {
		return
	}
	place(text)
}

// DrawOverlay outlines the selected subtree and the hovered node on top of a
// finished frame. A hovered node inside the focused subtree is outlined in
// both rings. It runs on the owner thread.
func DrawOverlay(s Surface, t *Tree, layers []Layer, selected, hover NodeID, pal Palette) {
	if len(layers) == 0 {
		return
	}
	outer := layers[0]
	if t.Valid(selected) && selected != outer.Root {
		s.StrokeShape(outer.Projector(t).SubtreeShape(selected), pal.Selection)
	}
	if !t.Valid(hover) {
		return
	}
	for _, l := range layers {
		if l.draws(t, hover) {
			s.StrokeShape(l.Projector(t).NodeShape(hover), pal.Hover)
		}
	}
}
