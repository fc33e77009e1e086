package ebitenview

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/sunburst"
)

// segmentsPerTurn is the polygon resolution of overlay outlines.
const segmentsPerTurn = 96

// DebugPrint glyphs are 6x16.
const (
	glyphW = 6
	glyphH = 16
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// ebiten draws from a single goroutine, so no locking is needed.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// Surface draws sunburst shapes onto an ebiten image as triangle meshes.
// Text uses the debug font, which ignores color.
type Surface struct {
	dst       *ebiten.Image
	LineWidth float64

	verts []ebiten.Vertex
	inds  []uint16
}

// NewSurface wraps dst.
func NewSurface(dst *ebiten.Image) *Surface {
	return &Surface{dst: dst, LineWidth: 2}
}

// Reset retargets the surface, keeping its vertex buffers.
func (s *Surface) Reset(dst *ebiten.Image) { s.dst = dst }

func vertex(x, y float64, c sunburst.Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		ColorR: float32(c.R * c.A),
		ColorG: float32(c.G * c.A),
		ColorB: float32(c.B * c.A),
		ColorA: float32(c.A),
	}
}

// FillShape implements sunburst.Surface. The outline is fanned from its
// first point and filled with the even-odd rule, which covers concave
// outlines such as ring wedges.
func (s *Surface) FillShape(sh sunburst.Shape, c sunburst.Color) {
	pts := sunburst.Outline(sh, segmentsPerTurn)
	if len(pts) < 3 {
		return
	}
	s.verts, s.inds = s.verts[:0], s.inds[:0]
	for _, p := range pts {
		s.verts = append(s.verts, vertex(p.X, p.Y, c))
	}
	for i := 1; i < len(pts)-1; i++ {
		s.inds = append(s.inds, 0, uint16(i), uint16(i+1))
	}
	var op ebiten.DrawTrianglesOptions
	op.FillRule = ebiten.FillRuleEvenOdd
	s.dst.DrawTriangles(s.verts, s.inds, ensureWhitePixel(), &op)
}

// StrokeShape implements sunburst.Surface with a closed strip of quads,
// mitred at each joint.
func (s *Surface) StrokeShape(sh sunburst.Shape, c sunburst.Color) {
	pts := sunburst.Outline(sh, segmentsPerTurn)
	n := len(pts)
	if n < 2 {
		return
	}
	halfW := s.LineWidth / 2
	s.verts, s.inds = s.verts[:0], s.inds[:0]
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		nx0, ny0 := perpendicular(prev, pts[i])
		nx1, ny1 := perpendicular(pts[i], next)
		nx, ny := nx0+nx1, ny0+ny1
		if ln := math.Hypot(nx, ny); ln > 1e-10 {
			nx /= ln
			ny /= ln
			// Keep the width at the miter, capped at 2x on sharp corners.
			if dot := nx0*nx + ny0*ny; dot > 0.1 {
				scale := min(1/dot, 2)
				nx *= scale
				ny *= scale
			}
		} else {
			nx, ny = nx0, ny0
		}
		s.verts = append(s.verts,
			vertex(pts[i].X+nx*halfW, pts[i].Y+ny*halfW, c),
			vertex(pts[i].X-nx*halfW, pts[i].Y-ny*halfW, c),
		)
	}
	for i := 0; i < n; i++ {
		v := uint16(i * 2)
		w := uint16(((i + 1) % n) * 2)
		s.inds = append(s.inds, v, v+1, w, v+1, w+1, w)
	}
	s.dst.DrawTriangles(s.verts, s.inds, ensureWhitePixel(), nil)
}

// perpendicular returns the unit normal of the segment a→b.
func perpendicular(a, b sunburst.Vec2) (float64, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	ln := math.Hypot(dx, dy)
	if ln < 1e-10 {
		return 0, 0
	}
	return -dy / ln, dx / ln
}

// DrawText implements sunburst.Surface; y is the baseline.
func (s *Surface) DrawText(text string, x, y float64, _ sunburst.Color) {
	ebitenutil.DebugPrintAt(s.dst, text, int(x), int(y)-glyphH+4)
}

// MeasureText implements sunburst.Surface.
func (s *Surface) MeasureText(text string) float64 {
	return sunburst.MonospaceMeasure(glyphW)(text)
}

// FontMetrics implements sunburst.Surface.
func (s *Surface) FontMetrics() sunburst.FontMetrics {
	return sunburst.FontMetrics{Height: glyphH, Ascent: glyphH - 4}
}
