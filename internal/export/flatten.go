// Package export flattens the background and tile layer into a single
// raster and writes it to disk.
package export

import (
	"image"
	"image/color"
	"image/draw"

	"tilepaint/internal/tile"
	"tilepaint/pkg/geometry"
)

// DefaultPadding is the margin kept around drawn content, in pixels.
const DefaultPadding = 10

// Input is everything the flattener reads. Tiles must be a snapshot so the
// live store can keep changing while an export runs.
type Input struct {
	Background   image.Image
	CanvasWidth  int // Working canvas, at least the background's size
	CanvasHeight int
	Tiles        *tile.Snapshot
	Padding      int
}

// Flatten merges the background and every tile at 1x and crops the result
// to the drawn content plus the background, padded by in.Padding. With no
// tiles the background is returned unchanged. With neither, a white canvas
// of the working size is returned.
func Flatten(in Input) image.Image {
	if in.Tiles.Len() == 0 {
		if in.Background != nil {
			return in.Background
		}
		return blank(image.Rect(0, 0, in.CanvasWidth, in.CanvasHeight))
	}

	box := Bounds(in)
	out := blank(image.Rect(0, 0, box.Width, box.Height))
	shift := image.Pt(box.X, box.Y)

	if in.Background != nil {
		b := in.Background.Bounds()
		draw.Draw(out, b.Sub(b.Min).Sub(shift), in.Background, b.Min, draw.Over)
	}
	for _, e := range in.Tiles.Entries {
		r := e.Coord.Rect(in.Tiles.Size).ImageRect().Sub(shift)
		draw.Draw(out, r, e.Tile.Image, image.Point{}, draw.Over)
	}
	return out
}

// Bounds returns the crop rectangle Flatten uses when tiles exist: the union
// of every tile's extent and the background's [0,0,W,H], expanded by the
// padding and clamped to the working raster. The working raster is the
// canvas grown to hold every padded tile, starting at the origin.
func Bounds(in Input) geometry.RectInt {
	extent := in.Tiles.Extent()
	var bg geometry.RectInt
	if in.Background != nil {
		b := in.Background.Bounds()
		bg = geometry.RectInt{Width: b.Dx(), Height: b.Dy()}
	}

	working := geometry.RectInt{Width: in.CanvasWidth, Height: in.CanvasHeight}.Union(extent.Pad(in.Padding))
	working = working.Intersect(geometry.NewRectInt(0, 0, working.Max().X, working.Max().Y))

	return extent.Union(bg).Pad(in.Padding).Intersect(working)
}

func blank(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}
