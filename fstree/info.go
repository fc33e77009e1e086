package fstree

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/phanxgames/sunburst"
)

// Info implements sunburst.NodeInfo for trees of *Node.
type Info struct {
	// TooltipWidth truncates tooltip lines to this many terminal cells;
	// 0 means 60.
	TooltipWidth int
}

var (
	colorFreeSpace = sunburst.Color{R: 0.92, G: 0.92, B: 0.92, A: 1}
	colorRoot      = sunburst.Color{R: 1, G: 1, B: 1, A: 1}
)

func last(p sunburst.TreePath) *Node {
	n, _ := p.Last().(*Node)
	return n
}

// Color implements sunburst.NodeInfo. Directories take a hue from their
// top-level ancestor and lighten with depth; files take a hue from their
// extension.
func (Info) Color(p sunburst.TreePath) sunburst.Color {
	n := last(p)
	switch {
	case n == nil || len(p) == 1:
		return colorRoot
	case n.IsFreeSpace:
		return colorFreeSpace
	case n.IsDir:
		top, _ := p[1].(*Node)
		name := ""
		if top != nil {
			name = top.Name
		}
		light := min(0.45+0.06*float64(len(p)-2), 0.8)
		return sunburst.HSL(hue(name), 0.5, light)
	}
	ext := strings.ToLower(filepath.Ext(n.Name))
	if ext == "" {
		return sunburst.HSL(0, 0, 0.7)
	}
	return sunburst.HSL(hue(ext), 0.65, 0.6)
}

// Name implements sunburst.NodeInfo.
func (Info) Name(p sunburst.TreePath) string {
	if n := last(p); n != nil {
		return n.Name
	}
	return ""
}

// Tooltip implements sunburst.NodeInfo: name, size and path, one per line.
func (i Info) Tooltip(p sunburst.TreePath) (string, bool) {
	n := last(p)
	if n == nil {
		return "", false
	}
	width := i.TooltipWidth
	if width <= 0 {
		width = 60
	}
	lines := []string{
		runewidth.Truncate(n.Name, width, "…"),
		humanize.Bytes(uint64(max(n.Size, 0))),
	}
	if n.IsDir {
		lines[1] += fmt.Sprintf(", %d items", len(n.Kids))
	}
	if n.Path != "" {
		lines = append(lines, truncateLeft(n.Path, width))
	}
	return strings.Join(lines, "\n"), true
}

// Actions implements sunburst.NodeInfo.
func (Info) Actions(p sunburst.TreePath) []sunburst.Action {
	n := last(p)
	if n == nil || n.IsFreeSpace {
		return nil
	}
	return []sunburst.Action{
		{Name: "Copy path", Run: func() error { return clipboard.WriteAll(n.Path) }},
		{Name: "Copy size", Run: func() error { return clipboard.WriteAll(humanize.Bytes(uint64(max(n.Size, 0)))) }},
	}
}

// truncateLeft keeps the end of s, which is the informative part of a path.
func truncateLeft(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	rs := []rune(s)
	w := 1 // the ellipsis
	i := len(rs)
	for i > 0 {
		rw := runewidth.RuneWidth(rs[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return "…" + string(rs[i:])
}

func hue(s string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32()%360) / 360
}
