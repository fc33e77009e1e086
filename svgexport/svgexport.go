// Package svgexport writes sunburst frames as SVG documents.
package svgexport

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/sunburst"
)

const segmentsPerTurn = 96

// Surface writes shapes as SVG polygons. Coordinates are rounded to whole
// pixels, as svgo takes integers.
type Surface struct {
	canvas  *svg.SVG
	measure sunburst.MeasureFunc
	metrics sunburst.FontMetrics
}

// NewSurface wraps canvas. Text is measured with face; nil uses
// basicfont.Face7x13, matching the raster renderer.
func NewSurface(canvas *svg.SVG, face font.Face) *Surface {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()
	return &Surface{
		canvas:  canvas,
		measure: sunburst.FaceMeasure(face),
		metrics: sunburst.FontMetrics{
			Height: float64(m.Height) / 64,
			Ascent: float64(m.Ascent) / 64,
		},
	}
}

// FillShape implements sunburst.Surface.
func (s *Surface) FillShape(sh sunburst.Shape, c sunburst.Color) {
	xs, ys := s.points(sh)
	if xs == nil {
		return
	}
	s.canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.3f", c.Hex(), c.A))
}

// StrokeShape implements sunburst.Surface.
func (s *Surface) StrokeShape(sh sunburst.Shape, c sunburst.Color) {
	xs, ys := s.points(sh)
	if xs == nil {
		return
	}
	s.canvas.Polygon(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", c.Hex()))
}

// DrawText implements sunburst.Surface.
func (s *Surface) DrawText(text string, x, y float64, c sunburst.Color) {
	s.canvas.Text(round(x), round(y), text,
		fmt.Sprintf("fill:%s;font-size:%dpx;font-family:monospace", c.Hex(), round(s.metrics.Height)))
}

// MeasureText implements sunburst.Surface.
func (s *Surface) MeasureText(text string) float64 { return s.measure(text) }

// FontMetrics implements sunburst.Surface.
func (s *Surface) FontMetrics() sunburst.FontMetrics { return s.metrics }

func (s *Surface) points(sh sunburst.Shape) ([]int, []int) {
	pts := sunburst.Outline(sh, segmentsPerTurn)
	if len(pts) < 3 {
		return nil, nil
	}
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i] = round(p.X)
		ys[i] = round(p.Y)
	}
	return xs, ys
}

func round(v float64) int { return int(math.Round(v)) }

// Write renders f at full fidelity as an SVG document to w, with the
// selection and hover overlays from overlay when it is non-nil.
func Write(ctx context.Context, w io.Writer, f sunburst.Frame, overlay *Overlay) error {
	width, height := max(f.Width, 1), max(f.Height, 1)
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", f.Palette.Background.Hex()))

	s := NewSurface(canvas, nil)
	f.Fidelity = sunburst.FidelityFull
	if err := sunburst.DrawPass(ctx, s, f, nil); err != nil {
		return fmt.Errorf("draw pass: %w", err)
	}
	if overlay != nil {
		sunburst.DrawOverlay(s, f.Tree, f.Layers, overlay.Selected, overlay.Hover, f.Palette)
	}
	canvas.End()
	return nil
}

// Overlay names the nodes outlined on top of an export.
type Overlay struct {
	Selected, Hover sunburst.NodeID
}

// WriteFile writes the SVG export of f to path.
func WriteFile(ctx context.Context, path string, f sunburst.Frame, overlay *Overlay) error {
	var b strings.Builder
	if err := Write(ctx, &b, f, overlay); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
