// Package ggrender draws sunburst frames into raster images with gg.
//
// [Renderer] is the usual background renderer for a sunburst.Viewer; it
// produces a fresh image per pass so the previous front image is never
// written while it is on screen.
package ggrender

import (
	"context"
	"fmt"
	"image"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/sunburst"
)

// segmentsPerTurn is the polygon resolution used for wedges.
const segmentsPerTurn = 128

// Surface adapts a gg.Context to sunburst.Surface.
type Surface struct {
	dc      *gg.Context
	metrics sunburst.FontMetrics
	// LineWidth is used by StrokeShape.
	LineWidth float64
}

// NewSurface wraps dc. A nil face uses basicfont.Face7x13.
func NewSurface(dc *gg.Context, face font.Face) *Surface {
	if face == nil {
		face = basicfont.Face7x13
	}
	dc.SetFontFace(face)
	m := face.Metrics()
	return &Surface{
		dc: dc,
		metrics: sunburst.FontMetrics{
			Height: float64(m.Height) / 64,
			Ascent: float64(m.Ascent) / 64,
		},
		LineWidth: 1,
	}
}

// Context returns the underlying gg context.
func (s *Surface) Context() *gg.Context { return s.dc }

// FillShape implements sunburst.Surface.
func (s *Surface) FillShape(sh sunburst.Shape, c sunburst.Color) {
	if !s.path(sh) {
		return
	}
	s.dc.SetColor(c.RGBA())
	s.dc.Fill()
}

// StrokeShape implements sunburst.Surface.
func (s *Surface) StrokeShape(sh sunburst.Shape, c sunburst.Color) {
	if !s.path(sh) {
		return
	}
	s.dc.SetColor(c.RGBA())
	s.dc.SetLineWidth(s.LineWidth)
	s.dc.Stroke()
}

// DrawText implements sunburst.Surface; y is the baseline.
func (s *Surface) DrawText(text string, x, y float64, c sunburst.Color) {
	s.dc.SetColor(c.RGBA())
	s.dc.DrawStringAnchored(text, x, y, 0, 0)
}

// MeasureText implements sunburst.Surface.
func (s *Surface) MeasureText(text string) float64 {
	w, _ := s.dc.MeasureString(text)
	return w
}

// FontMetrics implements sunburst.Surface.
func (s *Surface) FontMetrics() sunburst.FontMetrics { return s.metrics }

// path traces the outline of sh as the current path.
func (s *Surface) path(sh sunburst.Shape) bool {
	pts := sunburst.Outline(sh, segmentsPerTurn)
	if len(pts) < 3 {
		return false
	}
	s.dc.NewSubPath()
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.ClosePath()
	return true
}

// Renderer renders frames into new RGBA images.
type Renderer struct {
	// Face is the label font. Nil uses basicfont.Face7x13.
	Face font.Face
}

// New returns a Renderer with the default face.
func New() *Renderer {
	return &Renderer{Face: basicfont.Face7x13}
}

// Render implements sunburst.Renderer.
func (r *Renderer) Render(ctx context.Context, f sunburst.Frame, progress *sunburst.Progress) (image.Image, error) {
	dc, err := r.draw(ctx, f, progress)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG renders f at full fidelity and writes it to path.
func (r *Renderer) SavePNG(ctx context.Context, f sunburst.Frame, path string) error {
	f.Fidelity = sunburst.FidelityFull
	dc, err := r.draw(ctx, f, nil)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) draw(ctx context.Context, f sunburst.Frame, progress *sunburst.Progress) (*gg.Context, error) {
	dc := gg.NewContext(max(f.Width, 1), max(f.Height, 1))
	dc.SetColor(f.Palette.Background.RGBA())
	dc.Clear()
	s := NewSurface(dc, r.Face)
	if err := sunburst.DrawPass(ctx, s, f, progress); err != nil {
		return nil, fmt.Errorf("draw pass: %w", err)
	}
	return dc, nil
}
