package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilepaint/internal/stroke"
	"tilepaint/internal/tile"
	"tilepaint/pkg/colorutil"
	"tilepaint/pkg/geometry"
)

func TestPopIsLastInFirstOut(t *testing.T) {
	var l Log
	a := NewEntry(colorutil.Red, 5)
	b := NewEntry(colorutil.Blue, 3)
	l.Push(a)
	l.Push(b)
	assert.NotEqual(t, a.ID, b.ID)

	got, ok := l.Pop()
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, l.Len())

	got, ok = l.Pop()
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = l.Pop()
	assert.False(t, ok, "empty log has nothing to undo")
}

func TestEntriesIsACopy(t *testing.T) {
	var l Log
	l.Push(NewEntry(colorutil.Black, 1))
	es := l.Entries()
	es[0] = nil
	assert.NotNil(t, l.Entries()[0])

	l.Clear()
	assert.Zero(t, l.Len())
}

func TestAddKeepsSegmentsAndHandlesInStep(t *testing.T) {
	e := NewEntry(colorutil.Green, 4)
	assert.True(t, e.Empty())
	seg := stroke.Segment{From: geometry.Pt(1, 1), To: geometry.Pt(2, 2), Color: colorutil.Green, Width: 4}
	e.Add(seg, 7)
	e.Add(seg, 8)
	assert.False(t, e.Empty())
	assert.Equal(t, []stroke.Handle{7, 8}, e.Handles)
	assert.Len(t, e.Segments, 2)
}

func TestRevertRestoresFirstPriorState(t *testing.T) {
	store := tile.NewStore(16)
	existing := store.GetOrCreate(tile.Coord{I: 0, J: 0})
	existing.Image.Pix[3] = 42

	e := NewEntry(colorutil.Red, 2)
	var r stroke.Rasterizer
	seg := func(x1, y1, x2, y2 int) stroke.Segment {
		return stroke.Segment{From: geometry.Pt(x1, y1), To: geometry.Pt(x2, y2), Color: colorutil.Red, Width: 2}
	}
	r.Segment(store, seg(4, 4, 40, 4), e.Record)
	r.Segment(store, seg(40, 4, 4, 4), e.Record)
	require.Equal(t, 3, store.Len())

	assert.Equal(t, 3, e.Revert(store))
	assert.Equal(t, 1, store.Len(), "tiles the stroke created are dropped")
	restored, ok := store.Get(tile.Coord{I: 0, J: 0})
	require.True(t, ok)
	assert.Equal(t, uint8(42), restored.Image.Pix[3])
	assert.Zero(t, restored.Image.RGBAAt(8, 4).A)
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeOverlay.Valid())
	assert.True(t, ModePixels.Valid())
	assert.False(t, Mode("both").Valid())
}
