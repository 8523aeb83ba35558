package image

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tilepaint/internal/tile"
)

// Composite renders the background and the tile layer at a zoom factor.
type Composite struct {
	Width     int // Working canvas size at 1x
	Height    int
	TileSize  int
	BackColor color.Color
	Resampler Resampler
	Workers   int // Parallel tile resamples, 0 means GOMAXPROCS
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height, tileSize int) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		TileSize:  tileSize,
		BackColor: color.White,
		Resampler: CatmullRom,
	}
}

func scaled(n int, zoom float64) int {
	return int(math.Round(float64(n) * zoom))
}

// Render produces the zoomed canvas: back colour, then the background, then
// every tile at its scaled offset. Tiles are resampled concurrently and drawn
// in slice order, so identical inputs give identical output.
func (c *Composite) Render(ctx context.Context, bg image.Image, tiles []tile.Entry, zoom float64) (*image.RGBA, error) {
	if zoom <= 0 {
		return nil, fmt.Errorf("invalid zoom %g", zoom)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("composite cancelled: %w", err)
	}
	result := image.NewRGBA(image.Rect(0, 0, scaled(c.Width, zoom), scaled(c.Height, zoom)))
	draw.Draw(result, result.Bounds(), image.NewUniform(c.BackColor), image.Point{}, draw.Src)

	if bg != nil {
		b := bg.Bounds()
		src := bg
		if zoom != 1 {
			src = c.resampler().Scale(bg, scaled(b.Dx(), zoom), scaled(b.Dy(), zoom))
		}
		draw.Draw(result, src.Bounds().Sub(src.Bounds().Min), src, src.Bounds().Min, draw.Over)
	}

	scaledTiles, err := c.scaleTiles(ctx, tiles, zoom, result.Bounds())
	if err != nil {
		return nil, err
	}
	for n, e := range tiles {
		src := scaledTiles[n]
		if src == nil {
			continue
		}
		at := image.Pt(scaled(e.Coord.I*c.TileSize, zoom), scaled(e.Coord.J*c.TileSize, zoom))
		draw.Draw(result, src.Bounds().Add(at), src, image.Point{}, draw.Over)
	}
	return result, nil
}

// scaleTiles resamples every tile that lands inside out. Entries outside it
// stay nil.
func (c *Composite) scaleTiles(ctx context.Context, tiles []tile.Entry, zoom float64, out image.Rectangle) ([]*image.RGBA, error) {
	size := scaled(c.TileSize, zoom)
	scaledTiles := make([]*image.RGBA, len(tiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for n, e := range tiles {
		at := image.Pt(scaled(e.Coord.I*c.TileSize, zoom), scaled(e.Coord.J*c.TileSize, zoom))
		if size == 0 || !image.Rect(0, 0, size, size).Add(at).Overlaps(out) {
			continue
		}
		if zoom == 1 {
			scaledTiles[n] = e.Tile.Image
			continue
		}
		n, e := n, e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scaledTiles[n] = c.resampler().Scale(e.Tile.Image, size, size)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("composite cancelled: %w", err)
	}
	return scaledTiles, nil
}

func (c *Composite) resampler() Resampler {
	if c.Resampler == nil {
		return CatmullRom
	}
	return c.Resampler
}

func (c *Composite) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
