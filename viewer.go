package sunburst

import (
	"image"
	"time"
)

// Viewer ties a tree, its navigator and a render scheduler together. It is
// driven from a single owner thread: feed it input, call Update once per
// tick and Paint when the display needs an image.
type Viewer struct {
	cfg     Config
	palette Palette

	tree  *Tree
	info  NodeInfo
	nav   *Navigator
	sched *Scheduler

	pointer     pointerTracker
	injectQueue []syntheticPointerEvent
	script      *Script
	epoch       time.Time
	elapsed     time.Duration

	width, height float64

	snapshotDir   string
	snapshotQueue []string
	snapshotSeq   int

	onActions func(ev Event, actions []Action)
	onHover   func(id NodeID)
}

// NewViewer creates a viewer for tree. A nil info uses DefaultInfo.
func NewViewer(tree *Tree, info NodeInfo, r Renderer, cfg Config) *Viewer {
	if info == nil {
		info = DefaultInfo{}
	}
	v := &Viewer{
		cfg:         cfg,
		palette:     cfg.Palette(),
		tree:        tree,
		info:        info,
		sched:       NewScheduler(r, nil, cfg.Scheduler),
		pointer:     newPointerTracker(cfg.Input.DragDeadZone, cfg.Input.DoubleClickInterval),
		epoch:       time.Unix(0, 0),
		snapshotDir: "snapshots",
	}
	v.nav = v.newNavigator(tree)
	return v
}

func (v *Viewer) newNavigator(t *Tree) *Navigator {
	nav := NewNavigator(t, v.cfg.ProjectionKind())
	nav.SetRecenterDuration(v.cfg.Input.RecenterDuration)
	nav.OnChange(v.sched.Invalidate)
	nav.OnHover(func(id NodeID) {
		if v.onHover != nil {
			v.onHover(id)
		}
	})
	return nav
}

// Tree returns the displayed tree.
func (v *Viewer) Tree() *Tree { return v.tree }

// Info returns the node metadata source.
func (v *Viewer) Info() NodeInfo { return v.info }

// Navigator returns the navigator.
func (v *Viewer) Navigator() *Navigator { return v.nav }

// Scheduler returns the render scheduler.
func (v *Viewer) Scheduler() *Scheduler { return v.sched }

// Palette returns the parsed theme colors.
func (v *Viewer) Palette() Palette { return v.palette }

// SetHost forwards pass notifications to h.
func (v *Viewer) SetHost(h Host) { v.sched.SetHost(h) }

// OnActions registers fn to receive the actions of the node under a right
// click.
func (v *Viewer) OnActions(fn func(ev Event, actions []Action)) { v.onActions = fn }

// OnHover registers fn to be called when the hovered node changes.
func (v *Viewer) OnHover(fn func(id NodeID)) { v.onHover = fn }

// SetTree replaces the displayed tree with a new snapshot. The selection is
// kept when its path still exists.
func (v *Viewer) SetTree(t *Tree) {
	var keep TreePath
	if sel := v.nav.Selected(); sel != NoNode {
		keep = v.tree.Path(sel)
	}
	rotation := v.nav.Outer().Transform().Rotation
	center := v.nav.Center()

	v.tree = t
	v.nav = v.newNavigator(t)
	v.nav.Layout(v.width, v.height, v.cfg.Margin)
	home := v.nav.Center()
	v.nav.Pan(center.X-home.X, center.Y-home.Y)
	v.nav.Rotate(0, rotation)
	if keep != nil {
		v.nav.Select(t.Lookup(keep))
	}
	v.sched.Invalidate()
}

// Resize lays the view out for a w by h viewport.
func (v *Viewer) Resize(w, h float64) {
	v.width, v.height = w, h
	v.nav.Layout(w, h, v.cfg.Margin)
}

// Size returns the viewport size.
func (v *Viewer) Size() (w, h float64) { return v.width, v.height }

// Frame implements FrameSource by snapshotting the navigator's layers.
func (v *Viewer) Frame(f Fidelity) Frame {
	return Frame{
		Tree:         v.tree,
		Info:         v.info,
		Layers:       v.nav.Layers(),
		Fidelity:     f,
		Width:        int(v.width),
		Height:       int(v.height),
		Palette:      v.palette,
		LabelPadding: v.cfg.LabelPadding,
	}
}

// Paint returns the most recent image of the view, redrawing as the
// scheduler decides. Queued snapshots are written from the returned image.
func (v *Viewer) Paint() image.Image {
	img := v.sched.Paint(v, v.nav.Adjusting())
	v.flushSnapshots(img)
	return img
}

// Update advances time by dt seconds: runs the script, consumes one
// injected pointer sample and steps animations.
func (v *Viewer) Update(dt float64) {
	v.elapsed += time.Duration(dt * float64(time.Second))
	if v.script != nil {
		v.script.step(v)
	}
	v.processInjected()
	v.nav.Update(float32(dt))
}

// SetScript attaches a script that runs from Update.
func (v *Viewer) SetScript(s *Script) { v.script = s }

// Script returns the attached script, or nil.
func (v *Viewer) Script() *Script { return v.script }

// Now returns the viewer clock, which advances only through Update.
func (v *Viewer) Now() time.Time { return v.epoch.Add(v.elapsed) }

// ProcessPointer feeds one pointer sample through the gesture tracker.
func (v *Viewer) ProcessPointer(x, y float64, pressed bool, button MouseButton) {
	v.pointer.process(x, y, pressed, button, v.Now(), v.HandleEvent)
}

// HandleEvent applies a discrete input event. Right clicks deliver the
// actions of the node under the pointer to the OnActions callback; every
// other event goes to the navigator.
func (v *Viewer) HandleEvent(ev Event) {
	if ev.Button == MouseButtonRight {
		if ev.Type == EventClick && v.onActions != nil {
			v.onActions(ev, v.ActionsAt(ev.X, ev.Y))
		}
		return
	}
	v.nav.HandleEvent(ev)
}

// NodeAt returns the node under (x, y), or NoNode.
func (v *Viewer) NodeAt(x, y float64) NodeID { return v.nav.NodeAt(x, y) }

// Tooltip returns the tooltip of the node under (x, y).
func (v *Viewer) Tooltip(x, y float64) (string, bool) {
	id := v.nav.NodeAt(x, y)
	if id == NoNode {
		return "", false
	}
	return v.info.Tooltip(v.tree.Path(id))
}

// ActionsAt returns the actions of the node under (x, y).
func (v *Viewer) ActionsAt(x, y float64) []Action {
	id := v.nav.NodeAt(x, y)
	if id == NoNode {
		return nil
	}
	return v.info.Actions(v.tree.Path(id))
}

// DrawOverlay outlines the selection and hovered node onto s.
func (v *Viewer) DrawOverlay(s Surface) {
	DrawOverlay(s, v.tree, v.nav.Layers(), v.nav.Selected(), v.nav.Hover(), v.palette)
}

// Close stops the scheduler and waits for a running background pass.
func (v *Viewer) Close() { v.sched.Close() }
