package slide

// Rect is an axis-aligned content region in canvas pixels.
type Rect struct {
	X, Y, W, H int
}

// Overlaps reports whether two rectangles share any interior area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.X+r.W <= o.X || r.X >= o.X+o.W || r.Y+r.H <= o.Y || r.Y >= o.Y+o.H)
}

// OverlapsAny reports whether r overlaps any of the given regions.
func (r Rect) OverlapsAny(regions []Rect) bool {
	for _, o := range regions {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}
