package app

import (
	"context"
	goimage "image"

	"tilepaint/internal/export"
	"tilepaint/internal/image"
	"tilepaint/internal/tile"
)

// Scene is a frozen copy of the document. It can be composited or flattened
// on any goroutine while the session keeps taking strokes.
type Scene struct {
	Background   *image.Background
	CanvasWidth  int
	CanvasHeight int
	Tiles        *tile.Snapshot
	Padding      int

	resampler image.Resampler
	workers   int
}

// Compositor returns a compositor for the scene's canvas.
func (sc *Scene) Compositor() *image.Composite {
	c := image.NewComposite(sc.CanvasWidth, sc.CanvasHeight, sc.Tiles.Size)
	c.Resampler = sc.resampler
	c.Workers = sc.workers
	return c
}

// Composite renders the scene at zoom.
func (sc *Scene) Composite(ctx context.Context, zoom float64) (*goimage.RGBA, error) {
	return sc.Compositor().Render(ctx, sc.Background.Image, sc.Tiles.Entries, zoom)
}

// Flatten returns the 1x export raster.
func (sc *Scene) Flatten() goimage.Image {
	return export.Flatten(export.Input{
		Background:   sc.Background.Image,
		CanvasWidth:  sc.CanvasWidth,
		CanvasHeight: sc.CanvasHeight,
		Tiles:        sc.Tiles,
		Padding:      sc.Padding,
	})
}
