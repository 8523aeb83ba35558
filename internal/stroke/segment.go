// Package stroke rasterizes brush segments into the tile store.
package stroke

import (
	"image/color"
	"math"

	"tilepaint/internal/tile"
	"tilepaint/pkg/geometry"
)

// Handle identifies a primitive the UI drew on screen for one segment.
// The core never interprets it; undo hands it back to the UI for erasing.
type Handle uint64

// Segment is a straight brush movement in image space. Width is the line
// width in image pixels at 1x; a zero-length segment paints a dot of that
// diameter.
type Segment struct {
	From  geometry.PointInt `json:"from"`
	To    geometry.PointInt `json:"to"`
	Color color.NRGBA       `json:"color"`
	Width float64           `json:"width"`
}

// IsDot reports whether the segment has no length.
func (s Segment) IsDot() bool {
	return s.From == s.To
}

// Bounds returns the segment's endpoint rectangle, inclusive of both endpoints.
func (s Segment) Bounds() geometry.RectInt {
	r := geometry.NewRectInt(s.From.X, s.From.Y, s.To.X, s.To.Y)
	r.Width++
	r.Height++
	return r
}

// Reach is how far paint can land from the centre line, in whole pixels:
// half the width plus one pixel of anti-aliasing fringe.
func (s Segment) Reach() int {
	return int(math.Ceil(s.Width/2)) + 1
}

// radius is the painted half-width; dots are never thinner than one pixel.
func (s Segment) radius() float64 {
	return max(s.Width/2, 0.5)
}

// Stroke is the ordered list of segments painted between pointer down and
// pointer up, together with the screen handles the UI created for them.
type Stroke struct {
	Color    color.NRGBA
	Width    float64
	Segments []Segment
	Handles  []Handle
}

// TileRange returns the inclusive tile range covering both endpoints:
// sorted(floor(p1.x/T), floor(p2.x/T)) and the same for y. For a diagonal
// segment the range may include tiles the line never crosses, but it never
// misses one that it does.
func TileRange(p1, p2 geometry.PointInt, size int) (lo, hi tile.Coord) {
	a := tile.CoordOf(p1.X, p1.Y, size)
	b := tile.CoordOf(p2.X, p2.Y, size)
	lo = tile.Coord{I: min(a.I, b.I), J: min(a.J, b.J)}
	hi = tile.Coord{I: max(a.I, b.I), J: max(a.J, b.J)}
	return lo, hi
}
