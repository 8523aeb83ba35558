package app

import (
	"image/color"

	"tilepaint/internal/stroke"
	"tilepaint/pkg/geometry"
)

// Overlay draws provisional stroke lines on screen, in view coordinates,
// until the next re-composite folds them into the displayed raster. Methods
// are called with the state locked and must not call back into State.
type Overlay interface {
	AddLine(from, to geometry.Point2D, c color.NRGBA, width float64) stroke.Handle
	Remove(h stroke.Handle)
	Reset()
}

// nopOverlay is used until the UI attaches one, and by headless tools.
type nopOverlay struct{ next stroke.Handle }

func (o *nopOverlay) AddLine(geometry.Point2D, geometry.Point2D, color.NRGBA, float64) stroke.Handle {
	o.next++
	return o.next
}

func (o *nopOverlay) Remove(stroke.Handle) {}
func (o *nopOverlay) Reset()               {}
