package sunburst

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNoSteps is returned when a script contains no steps.
var ErrNoSteps = errors.New("script has no steps")

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences injected input, resizes and snapshots across updates,
// for headless and automated visual testing. Attach it with
// Viewer.SetScript.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script of the form {"steps": [...]}. Supported
// actions: click, doubleclick, rightclick, move, drag, resize, wait and
// snapshot.
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoSteps)
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "click", "doubleclick", "rightclick", "move", "drag", "resize", "wait", "snapshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run and all injected input drained.
func (s *Script) Done() bool { return s.done }

// step advances the script by one update.
func (s *Script) step(v *Viewer) {
	if s.done {
		return
	}
	if len(v.injectQueue) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "snapshot":
		v.Snapshot(st.Label)
	case "click":
		v.InjectClick(st.X, st.Y)
	case "doubleclick":
		v.InjectDoubleClick(st.X, st.Y)
	case "rightclick":
		v.InjectRightClick(st.X, st.Y)
	case "move":
		v.InjectHover(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "resize":
		v.Resize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(v.injectQueue) == 0 {
		s.done = true
	}
}
