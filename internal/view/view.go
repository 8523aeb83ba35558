// Package view maps pointer coordinates on the zoomed, scrolled display to
// native-resolution image coordinates and back.
package view

import (
	"errors"
	"fmt"
	"math"

	"tilepaint/pkg/geometry"
)

// Levels are the zoom factors the display supports, smallest first.
var Levels = []float64{0.1, 0.5, 1, 2, 3}

const (
	// DefaultZoom is the zoom a new or cleared canvas opens at.
	DefaultZoom = 1.0
	// OverviewZoom is selected for backgrounds above the large-image threshold.
	OverviewZoom = 0.1
)

// ErrInvalidZoomLevel is returned for factors outside Levels.
var ErrInvalidZoomLevel = errors.New("invalid zoom level")

// View is the zoom factor and scroll offset of the display.
type View struct {
	Zoom   float64
	Scroll geometry.PointInt
}

// New returns a view at DefaultZoom with no scroll.
func New() View {
	return View{Zoom: DefaultZoom}
}

// ValidZoom reports whether f is one of Levels.
func ValidZoom(f float64) bool {
	return levelIndex(f) >= 0
}

func levelIndex(f float64) int {
	for i, l := range Levels {
		if l == f {
			return i
		}
	}
	return -1
}

// WithZoom returns v at zoom f, or ErrInvalidZoomLevel and v unchanged.
func (v View) WithZoom(f float64) (View, error) {
	if !ValidZoom(f) {
		return v, fmt.Errorf("%w: %g", ErrInvalidZoomLevel, f)
	}
	v.Zoom = f
	return v, nil
}

// WithScroll returns v with the given scroll offset in view pixels.
func (v View) WithScroll(x, y int) View {
	v.Scroll = geometry.Pt(x, y)
	return v
}

// ZoomIn returns v at the next larger level. At the largest level v is returned as is.
func (v View) ZoomIn() View {
	if i := levelIndex(v.Zoom); i >= 0 && i < len(Levels)-1 {
		v.Zoom = Levels[i+1]
	}
	return v
}

// ZoomOut returns v at the next smaller level. At the smallest level v is returned as is.
func (v View) ZoomOut() View {
	if i := levelIndex(v.Zoom); i > 0 {
		v.Zoom = Levels[i-1]
	}
	return v
}

// ToImageSpace converts a pointer position in view pixels to image
// coordinates: the scrolled position divided by the zoom and truncated.
// The logical image has no negative coordinates, so positions left of or
// above the origin clamp to 0.
func (v View) ToImageSpace(vx, vy int) geometry.PointInt {
	x := math.Floor(float64(vx+v.Scroll.X) / v.Zoom)
	y := math.Floor(float64(vy+v.Scroll.Y) / v.Zoom)
	return geometry.PointInt{X: int(math.Max(x, 0)), Y: int(math.Max(y, 0))}
}

// ToViewSpace converts image coordinates to view pixels.
func (v View) ToViewSpace(p geometry.PointInt) geometry.Point2D {
	return geometry.Point2D{
		X: float64(p.X)*v.Zoom - float64(v.Scroll.X),
		Y: float64(p.Y)*v.Zoom - float64(v.Scroll.Y),
	}
}

// ScaleLength converts an image-space length such as a brush width to view pixels.
func (v View) ScaleLength(n float64) float64 {
	return n * v.Zoom
}

// Scaled returns round(n*zoom), the size of an n-pixel span on the display.
func Scaled(n int, zoom float64) int {
	return int(math.Round(float64(n) * zoom))
}
