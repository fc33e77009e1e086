package svgexport

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	svg "github.com/ajstarks/svgo"

	"github.com/phanxgames/sunburst"
)

func sampleFrame(t *testing.T, p sunburst.Projection, size int) sunburst.Frame {
	t.Helper()
	root := &sunburst.Item{Name: "root", Items: []*sunburst.Item{
		{Name: "a", Size: 1},
		{Name: "b", Items: []*sunburst.Item{{Name: "c", Size: 1}, {Name: "d", Size: 1}}},
	}}
	tr, err := sunburst.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	nav := sunburst.NewNavigator(tr, p)
	nav.Layout(float64(size), float64(size), 0)
	return sunburst.Frame{
		Tree:         tr,
		Layers:       nav.Layers(),
		Width:        size,
		Height:       size,
		Palette:      sunburst.DefaultConfig().Palette(),
		LabelPadding: 4,
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	f := sampleFrame(t, sunburst.ProjectionSunburst, 600)
	if err := Write(context.Background(), &buf, f, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "</svg>", `fill:#ffffff`, ">root</text>", ">d</text>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := strings.Count(out, "<polygon"); n != 5 {
		t.Errorf("polygons = %d, want 5", n)
	}
	if strings.Contains(out, "stroke:") {
		t.Error("export without overlay has strokes")
	}
}

func TestWriteOverlay(t *testing.T) {
	var buf bytes.Buffer
	f := sampleFrame(t, sunburst.ProjectionIcicle, 300)
	overlay := &Overlay{Selected: 2, Hover: 3}
	if err := Write(context.Background(), &buf, f, overlay); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	pal := f.Palette
	if !strings.Contains(out, "stroke:"+pal.Selection.Hex()) {
		t.Error("selection outline missing")
	}
	if !strings.Contains(out, "stroke:"+pal.Hover.Hex()) {
		t.Error("hover outline missing")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	f := sampleFrame(t, sunburst.ProjectionSunburst, 100)
	if err := WriteFile(context.Background(), path, f, &Overlay{Selected: sunburst.NoNode, Hover: sunburst.NoNode}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")) {
		t.Errorf("file starts with %q", data[:min(len(data), 20)])
	}

	if err := WriteFile(context.Background(), filepath.Join(t.TempDir(), "no", "out.svg"), f, nil); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSurfaceRoundsCoordinates(t *testing.T) {
	var buf bytes.Buffer
	s := NewSurface(svg.New(&buf), nil)
	s.FillShape(sunburst.Rect{X: 0.4, Y: 0.6, Width: 10, Height: 10}, sunburst.ColorBlack)
	if !strings.Contains(buf.String(), `points="0,1 10,1 10,11 0,11`) {
		t.Errorf("polygon = %s", buf.String())
	}
	s.FillShape(sunburst.Rect{}, sunburst.ColorBlack)
	if strings.Count(buf.String(), "<polygon") != 1 {
		t.Error("empty shape produced a polygon")
	}
}
