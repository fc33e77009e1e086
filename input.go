package sunburst

import (
	"math"
	"time"
)

const (
	defaultDragDeadZone        = 4.0 // pixels
	defaultDoubleClickInterval = 400 * time.Millisecond
)

// pointerTracker turns sampled pointer state (position plus button held)
// into discrete events: down, up, move, drag once past the dead zone,
// click, and double click.
type pointerTracker struct {
	deadZone    float64
	doubleClick time.Duration

	down     bool
	dragging bool
	button   MouseButton // captured at press time
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	seen     bool

	lastClickAt     time.Time
	lastClickX      float64
	lastClickY      float64
	lastClickButton MouseButton
}

func newPointerTracker(deadZone float64, doubleClick time.Duration) pointerTracker {
	if deadZone < 0 {
		deadZone = defaultDragDeadZone
	}
	if doubleClick <= 0 {
		doubleClick = defaultDoubleClickInterval
	}
	return pointerTracker{deadZone: deadZone, doubleClick: doubleClick}
}

// process compares the sample with the previous one and emits the
// resulting events in order.
func (p *pointerTracker) process(x, y float64, pressed bool, button MouseButton, now time.Time, emit func(Event)) {
	switch {
	case pressed && !p.down:
		p.down = true
		p.dragging = false
		p.button = button
		p.startX, p.startY = x, y
		p.lastX, p.lastY = x, y
		emit(Event{Type: EventPointerDown, X: x, Y: y, Button: button})

	case !pressed && p.down:
		b := p.button
		// A release past the dead zone ends a drag even when no pressed
		// sample crossed it, so a fast flick never reads as a click.
		if !p.dragging && math.Hypot(x-p.startX, y-p.startY) > p.deadZone {
			p.dragging = true
			emit(Event{Type: EventPointerDrag, X: x, Y: y, Button: b})
		}
		emit(Event{Type: EventPointerUp, X: x, Y: y, Button: b})
		if !p.dragging {
			emit(Event{Type: EventClick, X: x, Y: y, Button: b})
			if p.isDoubleClick(x, y, b, now) {
				p.lastClickAt = time.Time{}
				emit(Event{Type: EventDoubleClick, X: x, Y: y, Button: b})
			} else {
				p.lastClickAt = now
				p.lastClickX, p.lastClickY = x, y
				p.lastClickButton = b
			}
		}
		p.down = false
		p.dragging = false
		p.lastX, p.lastY = x, y

	case pressed && p.down:
		if x != p.lastX || y != p.lastY {
			if !p.dragging && math.Hypot(x-p.startX, y-p.startY) > p.deadZone {
				p.dragging = true
			}
			if p.dragging {
				emit(Event{Type: EventPointerDrag, X: x, Y: y, Button: p.button})
			}
		}
		p.lastX, p.lastY = x, y

	default:
		if !p.seen || x != p.lastX || y != p.lastY {
			emit(Event{Type: EventPointerMove, X: x, Y: y, Button: button})
			p.lastX, p.lastY = x, y
		}
	}
	p.seen = true
}

func (p *pointerTracker) isDoubleClick(x, y float64, b MouseButton, now time.Time) bool {
	if p.lastClickAt.IsZero() || b != p.lastClickButton {
		return false
	}
	if now.Sub(p.lastClickAt) > p.doubleClick {
		return false
	}
	return math.Hypot(x-p.lastClickX, y-p.lastClickY) <= p.deadZone
}
