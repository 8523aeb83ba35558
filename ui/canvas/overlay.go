package canvas

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"

	"tilepaint/internal/app"
	"tilepaint/internal/stroke"
	"tilepaint/pkg/geometry"
)

// overlayLine is one provisional stroke segment in content coordinates.
type overlayLine struct {
	From, To geometry.Point2D
	Color    color.NRGBA
	Width    float64
}

// lineOverlay keeps the stroke lines drawn since the last composite, in the
// order they were added. The raster reads it from the render goroutine.
type lineOverlay struct {
	mu     sync.Mutex
	next   stroke.Handle
	order  []stroke.Handle
	lines  map[stroke.Handle]overlayLine
	offset fyne.Position
}

var _ app.Overlay = (*lineOverlay)(nil)

func newLineOverlay() *lineOverlay {
	return &lineOverlay{lines: make(map[stroke.Handle]overlayLine)}
}

// setOffset records the scroll offset of the pointer event being handled.
// View coordinates passed to AddLine are shifted by it.
func (o *lineOverlay) setOffset(off fyne.Position) {
	o.mu.Lock()
	o.offset = off
	o.mu.Unlock()
}

func (o *lineOverlay) AddLine(from, to geometry.Point2D, c color.NRGBA, width float64) stroke.Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	shift := geometry.Point2D{X: float64(o.offset.X), Y: float64(o.offset.Y)}
	o.next++
	o.lines[o.next] = overlayLine{From: from.Add(shift), To: to.Add(shift), Color: c, Width: width}
	o.order = append(o.order, o.next)
	return o.next
}

func (o *lineOverlay) Remove(h stroke.Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.lines[h]; !ok {
		return
	}
	delete(o.lines, h)
	for i, id := range o.order {
		if id == h {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

func (o *lineOverlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order = nil
	o.lines = make(map[stroke.Handle]overlayLine)
}

// Lines returns the current lines in drawing order.
func (o *lineOverlay) Lines() []overlayLine {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]overlayLine, 0, len(o.order))
	for _, h := range o.order {
		out = append(out, o.lines[h])
	}
	return out
}
