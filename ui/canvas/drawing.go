package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// draw is the raster drawing function: the session's composite with the
// overlay lines on top.
func (pc *PaintCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(output, output.Bounds(), image.White, image.Point{}, draw.Src)

	if d := pc.state.Display(); d != nil {
		draw.Draw(output, output.Bounds(), d, image.Point{}, draw.Over)
	}

	for _, l := range pc.overlay.Lines() {
		thickness := int(math.Max(1, math.Round(l.Width)))
		drawLine(output,
			int(math.Round(l.From.X)), int(math.Round(l.From.Y)),
			int(math.Round(l.To.X)), int(math.Round(l.To.Y)),
			l.Color, thickness)
	}

	return output
}

// drawLine draws a line between two points using Bresenham's algorithm,
// stamping a disc of the given diameter at every step.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.NRGBA, thickness int) {
	bounds := output.Bounds()
	r := thickness / 2
	r2 := (thickness * thickness) / 4

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -r; t <= r; t++ {
			for s := -r; s <= r; s++ {
				if s*s+t*t > r2 && thickness > 2 {
					continue
				}
				px, py := x1+s, y1+t
				if image.Pt(px, py).In(bounds) {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
