package sunburst

import (
	"fmt"
	"hash/fnv"
	"math"
)

// DefaultInfo is the NodeInfo used when none is supplied. Names come from
// fmt.Stringer, colors from a hash of the name shaded by depth.
type DefaultInfo struct{}

// Color implements NodeInfo.
func (DefaultInfo) Color(p TreePath) Color {
	if len(p) <= 1 {
		return ColorWhite
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(nameOf(p[1])))
	hue := float64(h.Sum32()%360) / 360
	light := math.Min(0.45+0.07*float64(len(p)-2), 0.85)
	return HSL(hue, 0.55, light)
}

// Name implements NodeInfo.
func (DefaultInfo) Name(p TreePath) string {
	return nameOf(p.Last())
}

// Tooltip implements NodeInfo.
func (DefaultInfo) Tooltip(p TreePath) (string, bool) {
	n := p.Last()
	if n == nil {
		return "", false
	}
	return fmt.Sprintf("%s (%g)", nameOf(n), subtreeWeight(n)), true
}

// Actions implements NodeInfo.
func (DefaultInfo) Actions(TreePath) []Action { return nil }

func nameOf(n DataNode) string {
	if s, ok := n.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// subtreeWeight sums leaf weights below n without recursion.
func subtreeWeight(n DataNode) float64 {
	var sum float64
	stack := []DataNode{n}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kids := d.Children()
		if len(kids) == 0 {
			w := d.Weight()
			if w == 0 {
				w = 1
			}
			sum += w
			continue
		}
		stack = append(stack, kids...)
	}
	return sum
}

// HSL converts hue, saturation and lightness in [0, 1] to an opaque Color.
func HSL(h, s, l float64) Color {
	if s == 0 {
		return Color{l, l, l, 1}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return Color{
		R: hueToRGB(p, q, h+1.0/3),
		G: hueToRGB(p, q, h),
		B: hueToRGB(p, q, h-1.0/3),
		A: 1,
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
