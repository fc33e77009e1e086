package sunburst

// syntheticPointerEvent is one queued pointer sample. Samples are consumed
// one per Update and go through the same tracker as real input.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// InjectPress queues a left button press at (x, y).
func (v *Viewer) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer sample at (x, y) with the left button held.
// Use it between InjectPress and InjectRelease to drag.
func (v *Viewer) InjectMove(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectHover queues a pointer sample at (x, y) with no button held.
func (v *Viewer) InjectHover(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectRelease queues a release at (x, y).
func (v *Viewer) InjectRelease(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectClick queues a press followed by a release. Consumes two updates.
func (v *Viewer) InjectClick(x, y float64) {
	v.InjectPress(x, y)
	v.InjectRelease(x, y)
}

// InjectRightClick queues a right button press and release.
func (v *Viewer) InjectRightClick(x, y float64) {
	v.injectQueue = append(v.injectQueue,
		syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonRight},
		syntheticPointerEvent{x: x, y: y, button: MouseButtonRight},
	)
}

// InjectDoubleClick queues two clicks. Consumes four updates, which must
// fall inside the double-click interval.
func (v *Viewer) InjectDoubleClick(x, y float64) {
	v.InjectClick(x, y)
	v.InjectClick(x, y)
}

// InjectDrag queues a press at (fromX, fromY), linearly interpolated moves
// and a release at (toX, toY). The sequence consumes frames updates, at
// least two.
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		v.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	v.InjectRelease(toX, toY)
}

// processInjected consumes one queued sample. It reports whether a sample
// was consumed.
func (v *Viewer) processInjected() bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	ev := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]
	v.ProcessPointer(ev.x, ev.y, ev.pressed, ev.button)
	return true
}
