package sunburst

// CompareDistance orders circles by the squared distance of their centers
// from the origin (ox, oy). It returns -1, 0 or +1; equal distances compare
// equal so a stable sort keeps the caller's order.
func CompareDistance(a, b Circle, ox, oy float64) int {
	da := sqDist(a.CX, a.CY, ox, oy)
	db := sqDist(b.CX, b.CY, ox, oy)
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	}
	return 0
}

// ByDistance returns a comparator for slices.SortStableFunc that places
// circles nearer (ox, oy) first.
func ByDistance(ox, oy float64) func(a, b Circle) int {
	return func(a, b Circle) int {
		return CompareDistance(a, b, ox, oy)
	}
}

func sqDist(x, y, ox, oy float64) float64 {
	dx := x - ox
	dy := y - oy
	return dx*dx + dy*dy
}
