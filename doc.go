// Package sunburst lays out weighted hierarchies as space-filling icicle and
// sunburst plots and lets a user navigate them: pan, rotate and drill into a
// subtree while a compressed context ring of the whole tree stays visible.
//
// The package is headless. Pixels are produced by a [Renderer] (see the
// ggrender and svgexport subpackages) and input arrives as [Event] values or
// raw pointer samples (see the ebitenview subpackage for a window).
//
// # Quick start
//
//	tree, err := sunburst.Build(root) // root implements DataNode
//	if err != nil {
//		log.Fatal(err)
//	}
//	v := sunburst.NewViewer(tree, nil, ggrender.New(), sunburst.DefaultConfig())
//	v.Resize(800, 800)
//	img := v.Paint()
//
// # Indexing
//
// [Build] walks the hierarchy once and assigns every node a depth, a left
// offset and an extent, the summed weight of its leaves. Children tile their
// parent's span in sibling order, so a node is addressed by (depth, number)
// for any number in [Left, Left+Extent). The result is an immutable arena,
// safe to share with background render passes.
//
// # Projections
//
// [Icicle] maps depth to X and extent to Y. [Radial] maps depth to rings
// and extent to angle, offset by the transform's rotation. Both invert
// exactly: [Projector.NodeAt] recovers the node whose shape contains a
// screen point.
//
// # Navigation
//
// [Navigator] owns the transforms. Selecting a node focuses it: the whole
// tree shrinks into the inner half and the subtree fills the outer half.
// Dragging from the root pans; dragging elsewhere rotates.
//
// # Scheduling
//
// [Scheduler] decides per paint whether the view needs a Full pass, a cheap
// Simplified pass while dragging, or nothing. Slow Full passes run on a
// single background slot and their images are swapped in when finished.
//
// # Scripts
//
// [LoadScript] reads JSON steps that inject clicks, drags and snapshots into
// a [Viewer], for automated visual checks:
//
//	{"steps": [
//		{"action": "click", "x": 400, "y": 300},
//		{"action": "wait", "frames": 5},
//		{"action": "snapshot", "label": "after-click"}
//	]}
package sunburst
