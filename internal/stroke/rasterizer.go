package stroke

import (
	"github.com/fogleman/gg"

	"tilepaint/internal/tile"
	"tilepaint/pkg/geometry"
)

// TouchFunc is called once for every tile a segment paints into. prior is
// the tile as it was before the segment, or nil if the segment created it.
type TouchFunc func(c tile.Coord, prior *tile.Tile)

// Rasterizer paints segments into a tile store. The zero value is ready to use.
type Rasterizer struct{}

// Segment paints seg into every tile it reaches and returns their
// coordinates in row-major order. Tiles are visited over TileRange of the
// endpoints widened by the brush reach, so round caps that spill over a tile
// edge are not clipped. A tile is only created when the brush footprint
// overlaps it and leaves at least one pixel with paint.
func (r *Rasterizer) Segment(store *tile.Store, seg Segment, touch TouchFunc) []tile.Coord {
	size := store.Size()
	reach := seg.Reach()
	box := seg.Bounds().Pad(reach)
	last := box.Max()
	lo, hi := TileRange(geometry.Pt(box.X, box.Y), geometry.Pt(last.X-1, last.Y-1), size)
	// The logical image starts at the origin; fringe left of or above it is dropped.
	lo.I, lo.J = max(lo.I, 0), max(lo.J, 0)

	var touched []tile.Coord
	for j := lo.J; j <= hi.J; j++ {
		for i := lo.I; i <= hi.I; i++ {
			c := tile.Coord{I: i, J: j}
			if !overlaps(seg, c.Rect(size).ToFloat()) {
				continue
			}
			if prior, ok := store.Get(c); ok {
				if touch != nil {
					touch(c, prior)
				}
				paint(prior, c.Origin(size), seg)
				touched = append(touched, c)
				continue
			}
			t := store.GetOrCreate(c)
			paint(t, c.Origin(size), seg)
			if transparent(t) {
				store.Put(c, nil)
				continue
			}
			if touch != nil {
				touch(c, nil)
			}
			touched = append(touched, c)
		}
	}
	return touched
}

// paint draws seg, translated into tile-local coordinates, over the tile's
// existing content. Integer image coordinates address pixel centres.
func paint(t *tile.Tile, origin geometry.PointInt, seg Segment) {
	dc := gg.NewContextForRGBA(t.Image)
	dc.SetColor(seg.Color)

	from, to := seg.From.Sub(origin), seg.To.Sub(origin)
	x1, y1 := float64(from.X)+0.5, float64(from.Y)+0.5
	if seg.IsDot() {
		dc.DrawCircle(x1, y1, seg.radius())
		dc.Fill()
		return
	}

	x2, y2 := float64(to.X)+0.5, float64(to.Y)+0.5
	dc.SetLineWidth(max(seg.Width, 1))
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
}

// overlaps reports whether the brush footprint, the centre line grown by
// the radius plus half a pixel of anti-aliasing, reaches into rect.
func overlaps(seg Segment, rect geometry.Rect) bool {
	half := geometry.Point2D{X: 0.5, Y: 0.5}
	a, b := seg.From.ToFloat().Add(half), seg.To.ToFloat().Add(half)
	if crosses(a, b, rect) {
		return true
	}
	limit := seg.radius() + 0.5
	d := min(rect.DistanceTo(a), rect.DistanceTo(b))
	for _, corner := range rect.Corners() {
		d = min(d, geometry.SegmentDistance(corner, a, b))
	}
	return d <= limit
}

// crosses reports whether the segment a-b passes through rect, using
// Liang-Barsky clipping.
func crosses(a, b geometry.Point2D, rect geometry.Rect) bool {
	if rect.Contains(a) || rect.Contains(b) {
		return true
	}
	d := b.Sub(a)
	minX, minY := rect.X, rect.Y
	maxX, maxY := rect.X+rect.Width, rect.Y+rect.Height

	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = min(t1, t)
		}
		return true
	}
	return clip(-d.X, a.X-minX) && clip(d.X, maxX-a.X) &&
		clip(-d.Y, a.Y-minY) && clip(d.Y, maxY-a.Y) && t0 <= t1
}

// transparent reports whether no pixel of t carries paint.
func transparent(t *tile.Tile) bool {
	pix := t.Image.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return false
		}
	}
	return true
}
