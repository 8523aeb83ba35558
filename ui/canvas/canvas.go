// Package canvas provides the painting surface: the composited document in a
// scroll container with freehand strokes drawn over it.
package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"tilepaint/internal/app"
)

// PaintCanvas displays the session's composite and forwards pointer input to
// it. It is also the session's stroke overlay.
type PaintCanvas struct {
	widget.BaseWidget

	state   *app.State
	overlay *lineOverlay

	// Display state
	raster  *fynecanvas.Raster
	imgSize fyne.Size

	// Container
	scroll  *zoomScroll
	content *paintContent

	onZoomChange func(zoom float64)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *PaintCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *PaintCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// paintContent wraps the raster to turn mouse input into pointer events.
// Event positions are relative to the content, so they already include the
// scroll offset.
type paintContent struct {
	widget.BaseWidget
	canvas *PaintCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Draggable    = (*paintContent)(nil)
	_ desktop.Mouseable = (*paintContent)(nil)
)

func newPaintContent(pc *PaintCanvas, raster *fynecanvas.Raster) *paintContent {
	c := &paintContent{canvas: pc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *paintContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *paintContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

func (c *paintContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	vx, vy := c.canvas.toView(ev.Position)
	c.canvas.state.PointerDown(vx, vy)
	c.canvas.Refresh()
}

func (c *paintContent) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.canvas.state.PointerUp()
}

func (c *paintContent) Dragged(ev *fyne.DragEvent) {
	vx, vy := c.canvas.toView(ev.Position)
	c.canvas.state.PointerDrag(vx, vy)
	c.canvas.Refresh()
}

func (c *paintContent) DragEnd() {
	c.canvas.state.PointerUp()
}

func (c *paintContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}

// NewPaintCanvas creates the painting surface for state and attaches itself
// as the session's overlay.
func NewPaintCanvas(state *app.State) *PaintCanvas {
	pc := &PaintCanvas{
		state:   state,
		overlay: newLineOverlay(),
		imgSize: fyne.NewSize(400, 300),
	}

	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScalePixels
	pc.raster.SetMinSize(pc.imgSize)

	pc.content = newPaintContent(pc, pc.raster)
	pc.scroll = newZoomScroll(pc.content, pc)

	state.SetOverlay(pc.overlay)
	for _, ev := range []app.EventType{app.EventImageLoaded, app.EventCleared, app.EventViewChanged, app.EventUndo} {
		state.On(ev, func(interface{}) { pc.updateContentSize() })
	}

	pc.ExtendBaseWidget(pc)
	pc.updateContentSize()
	return pc
}

// toView converts a content position to view coordinates and records the
// scroll offset with the session, so the overlay and the tile store agree on
// where the pointer is.
func (pc *PaintCanvas) toView(pos fyne.Position) (int, int) {
	off := pc.scroll.Offset()
	pc.overlay.setOffset(off)
	pc.state.SetScroll(int(off.X), int(off.Y))
	return int(pos.X - off.X), int(pos.Y - off.Y)
}

// Container returns the canvas container for embedding in layouts.
func (pc *PaintCanvas) Container() fyne.CanvasObject {
	return pc.scroll
}

// SetZoom switches the session to zoom.
func (pc *PaintCanvas) SetZoom(zoom float64) error {
	if err := pc.state.SetZoom(zoom); err != nil {
		return err
	}
	pc.zoomChanged()
	return nil
}

// ZoomIn steps to the next larger zoom level.
func (pc *PaintCanvas) ZoomIn() {
	pc.state.ZoomIn()
	pc.zoomChanged()
}

// ZoomOut steps to the next smaller zoom level.
func (pc *PaintCanvas) ZoomOut() {
	pc.state.ZoomOut()
	pc.zoomChanged()
}

func (pc *PaintCanvas) zoomChanged() {
	if pc.onZoomChange != nil {
		pc.onZoomChange(pc.state.Zoom())
	}
}

// OnZoomChange sets a callback for zoom changes.
func (pc *PaintCanvas) OnZoomChange(callback func(zoom float64)) {
	pc.onZoomChange = callback
}

// Refresh refreshes the canvas display.
func (pc *PaintCanvas) Refresh() {
	pc.raster.Refresh()
}

// updateContentSize sizes the scrollable content to the composite.
func (pc *PaintCanvas) updateContentSize() {
	if d := pc.state.Display(); d != nil && !d.Bounds().Empty() {
		pc.imgSize = fyne.NewSize(float32(d.Bounds().Dx()), float32(d.Bounds().Dy()))
	}

	pc.raster.SetMinSize(pc.imgSize)
	pc.raster.Resize(pc.imgSize)
	if pc.content != nil {
		pc.content.Resize(pc.imgSize)
		pc.content.Refresh()
	}
	pc.raster.Refresh()
	if pc.scroll != nil {
		pc.scroll.Refresh()
	}
}

// CreateRenderer implements fyne.Widget.
func (pc *PaintCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.scroll)
}
