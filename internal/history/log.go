// Package history records committed strokes so the most recent one can be
// undone.
package history

import (
	"image/color"

	"github.com/google/uuid"

	"tilepaint/internal/stroke"
	"tilepaint/internal/tile"
)

// Mode selects what undo reverts.
type Mode string

const (
	// ModeOverlay erases the stroke's on-screen primitives only. Tile pixels
	// keep the stroke, so a later export still contains it.
	ModeOverlay Mode = "overlay"
	// ModePixels also restores every tile the stroke touched.
	ModePixels Mode = "pixels"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeOverlay || m == ModePixels
}

// Entry is one stroke, open while the pointer is held and pushed to the log
// on release.
type Entry struct {
	ID string
	stroke.Stroke
	// Restore holds the pre-stroke state of each touched tile in pixel mode.
	// A nil value means the stroke created that tile.
	Restore map[tile.Coord]*tile.Tile
}

// NewEntry starts an empty stroke with a fresh ID.
func NewEntry(c color.NRGBA, width float64) *Entry {
	return &Entry{
		ID:     uuid.NewString(),
		Stroke: stroke.Stroke{Color: c, Width: width},
	}
}

// Add appends a painted segment and the overlay handle drawn for it.
func (e *Entry) Add(seg stroke.Segment, h stroke.Handle) {
	e.Segments = append(e.Segments, seg)
	e.Handles = append(e.Handles, h)
}

// Empty reports whether no segment has been painted.
func (e *Entry) Empty() bool {
	return len(e.Segments) == 0
}

// Record is a stroke.TouchFunc that keeps the first prior state seen for
// each tile, so a stroke crossing a tile many times is restored to the state
// before its first segment.
func (e *Entry) Record(c tile.Coord, prior *tile.Tile) {
	if e.Restore == nil {
		e.Restore = make(map[tile.Coord]*tile.Tile)
	}
	if _, seen := e.Restore[c]; seen {
		return
	}
	if prior != nil {
		prior = prior.Clone()
	}
	e.Restore[c] = prior
}

// Revert puts every recorded tile back into store and drops tiles the stroke
// created. It returns the number of tiles changed.
func (e *Entry) Revert(store *tile.Store) int {
	for c, t := range e.Restore {
		store.Put(c, t)
	}
	return len(e.Restore)
}

// Log is a stack of committed strokes. It is not safe for concurrent use.
type Log struct {
	entries []*Entry
}

// Push appends e as the most recent entry.
func (l *Log) Push(e *Entry) {
	l.entries = append(l.entries, e)
}

// Pop removes and returns the most recent entry, or false if the log is empty.
func (l *Log) Pop() (*Entry, bool) {
	n := len(l.entries)
	if n == 0 {
		return nil, false
	}
	e := l.entries[n-1]
	l.entries[n-1] = nil
	l.entries = l.entries[:n-1]
	return e, true
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns the entries oldest first. The slice is a copy.
func (l *Log) Entries() []*Entry {
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = nil
}
