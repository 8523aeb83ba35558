package app

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilepaint/internal/config"
	"tilepaint/internal/history"
	"tilepaint/internal/image"
	"tilepaint/internal/stroke"
	"tilepaint/internal/tile"
	"tilepaint/internal/view"
	"tilepaint/pkg/colorutil"
	"tilepaint/pkg/geometry"
)

type line struct {
	from, to geometry.Point2D
	color    color.NRGBA
	width    float64
}

// recorder is an Overlay that keeps the lines currently on screen.
type recorder struct {
	next   stroke.Handle
	lines  map[stroke.Handle]line
	resets int
}

func newRecorder() *recorder {
	return &recorder{lines: make(map[stroke.Handle]line)}
}

func (r *recorder) AddLine(from, to geometry.Point2D, c color.NRGBA, width float64) stroke.Handle {
	r.next++
	r.lines[r.next] = line{from, to, c, width}
	return r.next
}

func (r *recorder) Remove(h stroke.Handle) { delete(r.lines, h) }

func (r *recorder) Reset() {
	r.resets++
	r.lines = make(map[stroke.Handle]line)
}

func newTestState(t *testing.T, mutate func(*config.Config)) (*State, *recorder) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	s := NewState(cfg)
	rec := newRecorder()
	s.SetOverlay(rec)
	return s, rec
}

func drawLine(s *State, x1, y1, x2, y2 int) {
	s.PointerDown(x1, y1)
	s.PointerDrag((x1+x2)/2, (y1+y2)/2)
	s.PointerDrag(x2, y2)
	s.PointerUp()
}

func pngBytes(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, goimage.NewGray(goimage.Rect(0, 0, w, h))))
	return bytes.NewReader(buf.Bytes())
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x2000 && g < 0x2000 && b < 0x2000
}

func TestUndoRemovesOverlayButKeepsPixels(t *testing.T) {
	s, rec := newTestState(t, nil)
	drawLine(s, 100, 100, 150, 120)
	require.Len(t, rec.lines, 3, "dot plus two drag segments")
	require.Equal(t, 1, s.UndoDepth())

	assert.True(t, s.Undo())
	assert.Empty(t, rec.lines)
	assert.Equal(t, 1, s.TileCount())

	out := s.Save()
	assert.True(t, isDark(out.At(100, 100)), "export after undo still has the stroke")

	assert.False(t, s.Undo(), "nothing to undo")
}

func TestUndoInPixelModeRestoresTiles(t *testing.T) {
	s, _ := newTestState(t, func(c *config.Config) { c.UndoMode = history.ModePixels })
	drawLine(s, 100, 100, 150, 100)
	s.SetColor(colorutil.Red)
	drawLine(s, 120, 140, 400, 140)
	require.Equal(t, 2, s.TileCount())

	require.True(t, s.Undo())
	assert.Equal(t, []tile.Coord{{I: 0, J: 0}}, s.TileCoords(), "tile created by the undone stroke is dropped")
	out := s.Save()
	assert.True(t, isWhite(out.At(200, 140)), "undone stroke is gone")
	assert.True(t, isDark(out.At(120, 100)), "earlier stroke is kept")

	require.True(t, s.Undo())
	assert.Zero(t, s.TileCount())
	assert.Same(t, s.Background().Image, s.Save())
}

func TestClearResetsSparsity(t *testing.T) {
	s, rec := newTestState(t, nil)
	drawLine(s, 10, 10, 900, 600)
	require.NotZero(t, s.TileCount())

	s.Clear()
	assert.Zero(t, s.TileCount())
	assert.Zero(t, s.UndoDepth())
	assert.Empty(t, rec.lines)
	bg := s.Background()
	assert.Equal(t, 1280, bg.Width())
	assert.Equal(t, 720, bg.Height())
	assert.True(t, isWhite(bg.Image.At(640, 360)))
	assert.Equal(t, goimage.Rect(0, 0, 1280, 720), s.Save().Bounds())
}

func TestEmptyExportIsBlankDefaultCanvas(t *testing.T) {
	s, _ := newTestState(t, nil)
	out := s.Save()
	assert.Equal(t, goimage.Rect(0, 0, 1280, 720), out.Bounds())
	assert.True(t, isWhite(out.At(0, 0)))
}

func TestOpenFailureLeavesStateUntouched(t *testing.T) {
	s, _ := newTestState(t, nil)
	drawLine(s, 10, 10, 50, 50)
	bg := s.Background()
	tiles := s.TileCount()

	err := s.OpenBackground(strings.NewReader("GIF89a but not really"))
	require.ErrorIs(t, err, image.ErrUnsupportedFormat)
	assert.Same(t, bg, s.Background())
	assert.Equal(t, tiles, s.TileCount())
	assert.Equal(t, 1, s.UndoDepth())

	err = s.OpenFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Same(t, bg, s.Background())
}

func TestOpenSelectsZoomBySize(t *testing.T) {
	s, _ := newTestState(t, nil)
	drawLine(s, 10, 10, 50, 50)

	require.NoError(t, s.OpenBackground(pngBytes(t, 3100, 10)))
	assert.Equal(t, view.OverviewZoom, s.Zoom())
	assert.Zero(t, s.TileCount())
	assert.Zero(t, s.UndoDepth())
	w, h := s.CanvasSize()
	assert.Equal(t, [2]int{3100, 720}, [2]int{w, h})
	assert.Equal(t, goimage.Rect(0, 0, 310, 72), s.Display().Bounds())

	require.NoError(t, s.OpenBackground(pngBytes(t, 200, 100)))
	assert.Equal(t, view.DefaultZoom, s.Zoom())
	assert.Equal(t, goimage.Rect(0, 0, 1280, 720), s.Display().Bounds())
}

func TestSetZoom(t *testing.T) {
	s, rec := newTestState(t, nil)
	var events []view.View
	s.On(EventViewChanged, func(data interface{}) { events = append(events, data.(view.View)) })

	err := s.SetZoom(1.5)
	assert.ErrorIs(t, err, view.ErrInvalidZoomLevel)
	assert.Equal(t, 1.0, s.Zoom())
	assert.Empty(t, events)

	require.NoError(t, s.SetZoom(2))
	assert.Equal(t, 2.0, s.Zoom())
	assert.Equal(t, goimage.Rect(0, 0, 2560, 1440), s.Display().Bounds())
	assert.Equal(t, 1, rec.resets)
	require.Len(t, events, 1)
	assert.Equal(t, 2.0, events[0].Zoom)
}

func TestZoomStepping(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.Equal(t, 2.0, s.ZoomIn())
	assert.Equal(t, 3.0, s.ZoomIn())
	assert.Equal(t, 3.0, s.ZoomIn())
	assert.Equal(t, 2.0, s.ZoomOut())
	assert.Equal(t, 1.0, s.ZoomOut())
	assert.Equal(t, 0.5, s.ZoomOut())
	assert.Equal(t, 0.1, s.ZoomOut())
	assert.Equal(t, 0.1, s.ZoomOut())
}

func TestPointerMapsThroughView(t *testing.T) {
	s, rec := newTestState(t, nil)
	require.NoError(t, s.SetZoom(2))
	s.SetScroll(100, 0)

	s.PointerDown(600, 600)
	s.PointerUp()
	assert.Equal(t, []tile.Coord{{I: 1, J: 1}}, s.TileCoords())

	require.Len(t, rec.lines, 1)
	l := rec.lines[rec.next]
	assert.Equal(t, geometry.Point2D{X: 600, Y: 600}, l.from)
	assert.Equal(t, 10.0, l.width, "brush width scales with zoom")
}

func TestDragWithoutDownStartsStroke(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.PointerDrag(10, 10)
	assert.True(t, s.Drawing())
	assert.Zero(t, s.TileCount(), "re-entry paints nothing until the pointer moves")

	s.PointerUp()
	assert.Zero(t, s.UndoDepth(), "a stroke without segments is not committed")

	s.PointerDrag(10, 10)
	s.PointerDrag(20, 10)
	s.PointerUp()
	assert.Equal(t, 1, s.TileCount())
	assert.Equal(t, 1, s.UndoDepth())
}

func TestSparsityIndependentOfBackgroundSize(t *testing.T) {
	small, _ := newTestState(t, nil)
	large, _ := newTestState(t, nil)
	require.NoError(t, large.OpenBackground(pngBytes(t, 2900, 2900)))

	drawLine(small, 300, 300, 700, 400)
	drawLine(large, 300, 300, 700, 400)
	assert.Equal(t, small.TileCoords(), large.TileCoords())
	assert.Equal(t, []tile.Coord{{I: 1, J: 1}, {I: 2, J: 1}}, small.TileCoords())
}

func TestBrushSizeIsClamped(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.Equal(t, 5, s.BrushSize())
	assert.Equal(t, 15, s.SetBrushSize(99))
	assert.Equal(t, 15, s.IncreaseBrush())
	assert.Equal(t, 14, s.DecreaseBrush())
	assert.Equal(t, 1, s.SetBrushSize(0))
	assert.Equal(t, 1, s.DecreaseBrush())
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := newTestState(t, nil)
	drawLine(s, 10, 10, 60, 60)
	scene := s.Snapshot()
	drawLine(s, 600, 600, 900, 700)

	assert.Equal(t, 1, scene.Tiles.Len())
	a, err := scene.Composite(t.Context(), 0.5)
	require.NoError(t, err)
	b, err := scene.Composite(t.Context(), 0.5)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestSaveFile(t *testing.T) {
	s, _ := newTestState(t, nil)
	var saved []string
	s.On(EventSaved, func(data interface{}) { saved = append(saved, data.(string)) })
	var committed []string
	s.On(EventStrokeCommitted, func(data interface{}) { committed = append(committed, data.(string)) })

	drawLine(s, 2000, 2000, 2010, 2000)
	require.Len(t, committed, 1)
	assert.True(t, s.Modified())

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, s.SaveFile(path))
	assert.Equal(t, []string{path}, saved)
	assert.False(t, s.Modified())

	bg, err := image.Load(path)
	require.NoError(t, err)
	assert.Greater(t, bg.Width(), 2010)
	assert.Greater(t, bg.Height(), 2000)

	err = s.SaveFile(filepath.Join(t.TempDir(), "out.webp"))
	assert.Error(t, err)
}

func TestNewResampler(t *testing.T) {
	for _, name := range config.Resamplers {
		r, err := NewResampler(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Name())
	}
}
