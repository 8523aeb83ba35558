package canvas

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilepaint/internal/app"
	"tilepaint/pkg/colorutil"
	"tilepaint/pkg/geometry"
)

func newTestCanvas(t *testing.T) (*PaintCanvas, *app.State) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	state := app.NewState(nil)
	return NewPaintCanvas(state), state
}

func drag(pc *PaintCanvas, x, y float32) {
	pc.content.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func TestDragPaintsAndCommits(t *testing.T) {
	pc, state := newTestCanvas(t)

	pc.content.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 20)},
		Button:     desktop.MouseButtonPrimary,
	})
	drag(pc, 40, 20)
	drag(pc, 60, 30)
	pc.content.DragEnd()

	assert.Equal(t, 1, state.UndoDepth())
	assert.Equal(t, 1, state.TileCount())
	assert.Len(t, pc.overlay.Lines(), 3)

	require.True(t, state.Undo())
	assert.Empty(t, pc.overlay.Lines())
}

func TestSecondaryButtonDoesNotPaint(t *testing.T) {
	pc, state := newTestCanvas(t)
	pc.content.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 20)},
		Button:     desktop.MouseButtonSecondary,
	})
	assert.Zero(t, state.TileCount())
}

func TestZoomResetsOverlayAndResizesContent(t *testing.T) {
	pc, state := newTestCanvas(t)
	drag(pc, 10, 10)
	drag(pc, 30, 10)
	pc.content.DragEnd()
	require.NotEmpty(t, pc.overlay.Lines())

	var zooms []float64
	pc.OnZoomChange(func(z float64) { zooms = append(zooms, z) })
	require.NoError(t, pc.SetZoom(0.5))
	assert.Empty(t, pc.overlay.Lines())
	assert.Equal(t, fyne.NewSize(640, 360), pc.imgSize)
	assert.Equal(t, []float64{0.5}, zooms)
	assert.Error(t, pc.SetZoom(4))
	assert.Equal(t, 0.5, state.Zoom())
}

func TestDrawShowsOverlayOverComposite(t *testing.T) {
	pc, state := newTestCanvas(t)
	state.SetColor(colorutil.Red)
	drag(pc, 10, 50)
	drag(pc, 90, 50)
	pc.content.DragEnd()

	out := pc.draw(200, 100)
	r, g, b, _ := out.At(50, 50).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	r, g, b, _ = out.At(50, 90).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestOverlayRemoveKeepsOrder(t *testing.T) {
	o := newLineOverlay()
	o.setOffset(fyne.NewPos(5, 0))
	a := o.AddLine(geometry.Point2D{}, geometry.Point2D{X: 1}, colorutil.Black, 1)
	b := o.AddLine(geometry.Point2D{}, geometry.Point2D{X: 2}, colorutil.Black, 1)
	c := o.AddLine(geometry.Point2D{}, geometry.Point2D{X: 3}, colorutil.Black, 1)
	o.Remove(b)
	o.Remove(b)

	lines := o.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 6.0, lines[0].To.X, "shifted by the scroll offset")
	assert.Equal(t, 8.0, lines[1].To.X)
	assert.NotEqual(t, a, c)

	o.Reset()
	assert.Empty(t, o.Lines())
}
