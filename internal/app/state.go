// Package app holds the painting session: background, tiles, stroke log and
// view, driven by pointer and menu events from the UI.
package app

import (
	"context"
	"fmt"
	goimage "image"
	"image/color"
	"io"
	"sync"

	"tilepaint/internal/config"
	"tilepaint/internal/cvresample"
	"tilepaint/internal/export"
	"tilepaint/internal/history"
	"tilepaint/internal/image"
	"tilepaint/internal/stroke"
	"tilepaint/internal/tile"
	"tilepaint/internal/view"
	"tilepaint/pkg/colorutil"
	"tilepaint/pkg/geometry"
)

// State is one painting session. All methods are safe for concurrent use;
// pointer events are expected in order from a single goroutine.
type State struct {
	mu sync.RWMutex

	cfg       *config.Config
	resampler image.Resampler

	// Document
	background *image.Background
	tiles      *tile.Store
	log        history.Log
	modified   bool

	// Active stroke, nil between pointer up and the next down or drag
	active *history.Entry
	last   geometry.PointInt
	raster stroke.Rasterizer

	// View
	view    view.View
	display *goimage.RGBA
	overlay Overlay

	// Brush
	color color.NRGBA
	brush int

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewResampler returns the resampler configured by name.
func NewResampler(name string) (image.Resampler, error) {
	if name == (cvresample.Lanczos4{}).Name() {
		return cvresample.Lanczos4{}, nil
	}
	return image.ByName(name)
}

// NewState creates a session with a blank canvas. A nil cfg uses the
// defaults.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	r, err := NewResampler(cfg.Resampler)
	if err != nil {
		Logger().Warn("falling back to default resampler", "error", err)
		r = image.CatmullRom
	}
	s := &State{
		cfg:        cfg,
		resampler:  r,
		background: image.Blank(cfg.CanvasWidth, cfg.CanvasHeight),
		tiles:      tile.NewStore(cfg.TileSize),
		view:       view.New(),
		overlay:    &nopOverlay{},
		color:      colorutil.Black,
		brush:      cfg.BrushSize,
		listeners:  make(map[EventType][]EventListener),
	}
	s.recomposite()
	return s
}

// SetOverlay attaches the UI's stroke overlay.
func (s *State) SetOverlay(o Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		o = &nopOverlay{}
	}
	s.overlay = o
}

// Config returns the session configuration.
func (s *State) Config() *config.Config {
	return s.cfg
}

// PointerDown starts a stroke at a view coordinate and paints a dot there.
func (s *State) PointerDown(vx, vy int) {
	s.mu.Lock()
	s.commitLocked()
	p := s.view.ToImageSpace(vx, vy)
	s.beginLocked(p)
	s.paintLocked(p)
	changed := s.markModifiedLocked()
	s.mu.Unlock()

	s.emitModified(changed)
}

// PointerDrag extends the active stroke to a view coordinate. If no stroke
// is active, for example after the pointer re-enters the canvas with the
// button held, a new stroke starts there without painting.
func (s *State) PointerDrag(vx, vy int) {
	s.mu.Lock()
	p := s.view.ToImageSpace(vx, vy)
	if s.active == nil {
		s.beginLocked(p)
		s.mu.Unlock()
		return
	}
	s.paintLocked(p)
	changed := s.markModifiedLocked()
	s.mu.Unlock()

	s.emitModified(changed)
}

// PointerUp ends the active stroke and commits it to the log if it painted
// anything.
func (s *State) PointerUp() {
	s.mu.Lock()
	e := s.commitLocked()
	s.mu.Unlock()

	if e != nil {
		Logger().Info("stroke committed", "id", e.ID, "segments", len(e.Segments), "tiles", s.TileCount())
		s.Emit(EventStrokeCommitted, e.ID)
	}
}

func (s *State) beginLocked(p geometry.PointInt) {
	s.active = history.NewEntry(s.color, float64(s.brush))
	s.last = p
}

// paintLocked rasterizes the segment from the last point to p and draws its
// overlay line.
func (s *State) paintLocked(p geometry.PointInt) {
	e := s.active
	seg := stroke.Segment{From: s.last, To: p, Color: e.Color, Width: e.Width}

	var touch stroke.TouchFunc
	if s.cfg.UndoMode == history.ModePixels {
		touch = e.Record
	}
	touched := s.raster.Segment(s.tiles, seg, touch)

	h := s.overlay.AddLine(s.view.ToViewSpace(seg.From), s.view.ToViewSpace(seg.To),
		seg.Color, s.view.ScaleLength(seg.Width))
	e.Add(seg, h)
	s.last = p
	Logger().Debug("segment", "from", seg.From, "to", seg.To, "tiles", len(touched))
}

// commitLocked closes the active stroke and returns it if it was pushed.
func (s *State) commitLocked() *history.Entry {
	e := s.active
	s.active = nil
	if e == nil || e.Empty() {
		return nil
	}
	s.log.Push(e)
	return e
}

// Undo removes the most recent stroke's overlay lines. In pixel mode the
// tiles it touched are restored as well. It returns false when there is
// nothing to undo.
func (s *State) Undo() bool {
	s.mu.Lock()
	s.commitLocked()
	e, ok := s.log.Pop()
	if !ok {
		s.mu.Unlock()
		Logger().Info("nothing to undo")
		return false
	}
	for _, h := range e.Handles {
		s.overlay.Remove(h)
	}
	restored := 0
	if s.cfg.UndoMode == history.ModePixels {
		restored = e.Revert(s.tiles)
		s.recomposite()
	}
	s.mu.Unlock()

	Logger().Info("undo", "id", e.ID, "mode", s.cfg.UndoMode, "tiles_restored", restored)
	s.Emit(EventUndo, e.ID)
	return true
}

// SetZoom switches to one of view.Levels and re-composites. Any other value
// is rejected with view.ErrInvalidZoomLevel and the zoom is unchanged.
func (s *State) SetZoom(f float64) error {
	s.mu.Lock()
	v, err := s.view.WithZoom(f)
	if err != nil {
		s.mu.Unlock()
		Logger().Warn("zoom rejected", "zoom", f)
		return err
	}
	s.setViewLocked(v)
	s.mu.Unlock()

	s.Emit(EventViewChanged, v)
	return nil
}

// ZoomIn steps to the next larger zoom level.
func (s *State) ZoomIn() float64 {
	return s.stepZoom(view.View.ZoomIn)
}

// ZoomOut steps to the next smaller zoom level.
func (s *State) ZoomOut() float64 {
	return s.stepZoom(view.View.ZoomOut)
}

func (s *State) stepZoom(step func(view.View) view.View) float64 {
	s.mu.Lock()
	v := step(s.view)
	if v.Zoom == s.view.Zoom {
		s.mu.Unlock()
		return v.Zoom
	}
	s.setViewLocked(v)
	s.mu.Unlock()

	s.Emit(EventViewChanged, v)
	return v.Zoom
}

func (s *State) setViewLocked(v view.View) {
	s.view = v
	s.overlay.Reset()
	s.recomposite()
	Logger().Info("zoom", "zoom", v.Zoom)
}

// SetScroll records the scroll offset of the view, in view pixels.
func (s *State) SetScroll(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.WithScroll(x, y)
}

// OpenBackground decodes r and, only if that succeeds, replaces the
// background and discards every tile and stroke. Images whose largest
// dimension exceeds the configured threshold open at the overview zoom.
func (s *State) OpenBackground(r io.Reader) error {
	bg, err := image.Decode(r)
	if err != nil {
		Logger().Warn("open failed", "error", err)
		return err
	}
	s.replace(bg)
	return nil
}

// OpenFile is OpenBackground for a path on disk.
func (s *State) OpenFile(path string) error {
	bg, err := image.Load(path)
	if err != nil {
		Logger().Warn("open failed", "path", path, "error", err)
		return err
	}
	s.replace(bg)
	return nil
}

func (s *State) replace(bg *image.Background) {
	s.mu.Lock()
	zoom := view.DefaultZoom
	if bg.Largest() > s.cfg.LargeImageThreshold {
		zoom = view.OverviewZoom
	}
	s.resetLocked(bg)
	v, _ := view.New().WithZoom(zoom)
	s.view = v
	s.recomposite()
	s.mu.Unlock()

	Logger().Info("background opened", "path", bg.Path, "format", bg.Format,
		"width", bg.Width(), "height", bg.Height(), "zoom", zoom)
	s.Emit(EventImageLoaded, bg)
	s.Emit(EventViewChanged, v)
	s.emitModified(true)
}

// Clear resets to the default blank canvas with no tiles and no strokes.
func (s *State) Clear() {
	s.mu.Lock()
	s.resetLocked(image.Blank(s.cfg.CanvasWidth, s.cfg.CanvasHeight))
	s.recomposite()
	s.mu.Unlock()

	Logger().Info("canvas cleared")
	s.Emit(EventCleared, nil)
	s.emitModified(true)
}

func (s *State) resetLocked(bg *image.Background) {
	s.background = bg
	s.tiles.Clear()
	s.log.Clear()
	s.active = nil
	s.modified = false
	s.overlay.Reset()
}

// Snapshot returns a copy-isolated scene of the current document.
func (s *State) Snapshot() *Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() *Scene {
	w, h := s.canvasLocked()
	return &Scene{
		Background:   s.background,
		CanvasWidth:  w,
		CanvasHeight: h,
		Tiles:        s.tiles.Snapshot(),
		Padding:      s.cfg.ExportPadding,
		resampler:    s.resampler,
		workers:      s.cfg.RenderWorkers,
	}
}

// Save returns the flattened export raster at 1x.
func (s *State) Save() goimage.Image {
	return s.Snapshot().Flatten()
}

// SaveFile flattens the document and writes it to path, choosing the
// encoder from the extension.
func (s *State) SaveFile(path string) error {
	scene := s.Snapshot()
	img := scene.Flatten()
	if err := export.WriteFile(path, img, export.Options{DPI: scene.Background.DPI}); err != nil {
		Logger().Warn("save failed", "path", path, "error", err)
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.mu.Lock()
	s.modified = false
	s.mu.Unlock()

	b := img.Bounds()
	Logger().Info("saved", "path", path, "width", b.Dx(), "height", b.Dy(), "tiles", scene.Tiles.Len())
	s.Emit(EventSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// recomposite renders the display raster for the current zoom. The
// caller holds the write lock.
func (s *State) recomposite() {
	w, h := s.canvasLocked()
	c := image.NewComposite(w, h, s.tiles.Size())
	c.Resampler = s.resampler
	c.Workers = s.cfg.RenderWorkers
	out, err := c.Render(context.Background(), s.background.Image, s.tiles.Tiles(), s.view.Zoom)
	if err != nil {
		Logger().Warn("composite failed", "error", err)
		return
	}
	s.display = out
	Logger().Debug("composited", "zoom", s.view.Zoom, "tiles", s.tiles.Len())
}

func (s *State) canvasLocked() (int, int) {
	return s.background.Canvas(s.cfg.CanvasWidth, s.cfg.CanvasHeight)
}

// Display returns the raster composited at the last zoom change, open or
// clear. Strokes painted since then are shown by the overlay.
func (s *State) Display() *goimage.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}

// SetColor sets the colour of subsequent strokes.
func (s *State) SetColor(c color.NRGBA) {
	s.mu.Lock()
	s.color = c
	s.mu.Unlock()
	s.Emit(EventColorChanged, c)
}

// SetBrushSize sets the brush width, clamped to the configured range, and
// returns the applied value.
func (s *State) SetBrushSize(n int) int {
	s.mu.Lock()
	n = min(max(n, s.cfg.BrushMin), s.cfg.BrushMax)
	s.brush = n
	s.mu.Unlock()
	s.Emit(EventBrushChanged, n)
	return n
}

// IncreaseBrush widens the brush by one pixel up to the maximum.
func (s *State) IncreaseBrush() int {
	return s.SetBrushSize(s.BrushSize() + 1)
}

// DecreaseBrush narrows the brush by one pixel down to the minimum.
func (s *State) DecreaseBrush() int {
	return s.SetBrushSize(s.BrushSize() - 1)
}

func (s *State) markModifiedLocked() bool {
	if s.modified {
		return false
	}
	s.modified = true
	return true
}

func (s *State) emitModified(changed bool) {
	if changed {
		s.Emit(EventModified, s.Modified())
	}
}

// Color returns the current brush colour.
func (s *State) Color() color.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// BrushSize returns the current brush width in image pixels.
func (s *State) BrushSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brush
}

// View returns the current zoom and scroll.
func (s *State) View() view.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 {
	return s.View().Zoom
}

// Background returns the current background.
func (s *State) Background() *image.Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// CanvasSize returns the working canvas size at 1x.
func (s *State) CanvasSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvasLocked()
}

// TileCount returns the number of materialized tiles.
func (s *State) TileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiles.Len()
}

// TileCoords returns the materialized tile coordinates in row-major order.
func (s *State) TileCoords() []tile.Coord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiles.Coords()
}

// UndoDepth returns the number of strokes that can be undone.
func (s *State) UndoDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Len()
}

// Drawing reports whether a stroke is in progress.
func (s *State) Drawing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active != nil
}

// Modified reports whether anything was drawn since the last open, clear or
// save.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}
