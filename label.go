package sunburst

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
)

// Ellipsis replaces the last visible character of a truncated label.
const Ellipsis = '·'

// MeasureFunc returns the rendered width of text in pixels.
type MeasureFunc func(text string) float64

// FitLabel shortens text until measure reports it no wider than avail; a
// label that measures exactly avail is kept.
// Each step drops one character and turns the new last character into
// Ellipsis. It returns ok=false when not even a single character fits a
// label that started longer than one character. Fitting an already fitted
// label to the same width returns it unchanged.
func FitLabel(text string, avail float64, measure MeasureFunc) (string, bool) {
	if text == "" {
		return "", false
	}
	rs := []rune(text)
	orig := len(rs)
	n := orig
	for n > 1 && measure(string(rs[:n])) > avail {
		n--
		rs[n-1] = Ellipsis
	}
	if n == 1 && orig > 1 && measure(string(rs[:1])) > avail {
		return "", false
	}
	return string(rs[:n]), true
}

// MonospaceMeasure measures every rune as px pixels wide.
func MonospaceMeasure(px float64) MeasureFunc {
	return func(text string) float64 {
		n := 0
		for range text {
			n++
		}
		return float64(n) * px
	}
}

// CellMeasure measures text in terminal-style cells of cellPx pixels, so
// wide East Asian runes take two cells.
func CellMeasure(cellPx float64) MeasureFunc {
	return func(text string) float64 {
		return float64(runewidth.StringWidth(text)) * cellPx
	}
}

// FaceMeasure measures text with a font face.
func FaceMeasure(face font.Face) MeasureFunc {
	return func(text string) float64 {
		adv := font.MeasureString(face, text)
		return float64(adv) / 64
	}
}
