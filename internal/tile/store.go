// Package tile holds user-drawn content as a sparse grid of fixed-size
// transparent rasters. A tile exists only once a stroke has touched it, so
// the drawing can extend arbitrarily far beyond the background.
package tile

import (
	"cmp"
	"image"
	"slices"

	"tilepaint/pkg/geometry"
)

// DefaultSize is the edge length of a tile in image pixels.
const DefaultSize = 256

// Coord is a tile-grid coordinate.
type Coord struct {
	I, J int
}

// CoordOf returns the tile containing image pixel (x, y).
func CoordOf(x, y, size int) Coord {
	return Coord{I: floorDiv(x, size), J: floorDiv(y, size)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Origin returns the image coordinate of the tile's top-left pixel.
func (c Coord) Origin(size int) geometry.PointInt {
	return geometry.Pt(c.I*size, c.J*size)
}

// Rect returns the tile's native-resolution extent.
func (c Coord) Rect(size int) geometry.RectInt {
	return geometry.RectInt{X: c.I * size, Y: c.J * size, Width: size, Height: size}
}

func compareCoord(a, b Coord) int {
	if c := cmp.Compare(a.J, b.J); c != 0 {
		return c
	}
	return cmp.Compare(a.I, b.I)
}

// Tile is one cell of the grid. Its Image is premultiplied RGBA with bounds
// starting at (0, 0).
type Tile struct {
	Image *image.RGBA
}

func newTile(size int) *Tile {
	return &Tile{Image: image.NewRGBA(image.Rect(0, 0, size, size))}
}

// Clone returns a deep copy.
func (t *Tile) Clone() *Tile {
	img := image.NewRGBA(t.Image.Rect)
	copy(img.Pix, t.Image.Pix)
	return &Tile{Image: img}
}

// Entry pairs a tile with its coordinate.
type Entry struct {
	Coord Coord
	Tile  *Tile
}

// Store is the sparse tile map. It is not safe for concurrent use; callers
// that render off the event goroutine take a Snapshot.
type Store struct {
	size  int
	tiles map[Coord]*Tile
}

// NewStore creates an empty store of size×size tiles.
func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{size: size, tiles: make(map[Coord]*Tile)}
}

// Size returns the tile edge length.
func (s *Store) Size() int {
	return s.size
}

// GetOrCreate returns the tile at c, inserting a transparent one if needed.
func (s *Store) GetOrCreate(c Coord) *Tile {
	t, ok := s.tiles[c]
	if !ok {
		t = newTile(s.size)
		s.tiles[c] = t
	}
	return t
}

// Get returns the tile at c if it has been materialized.
func (s *Store) Get(c Coord) (*Tile, bool) {
	t, ok := s.tiles[c]
	return t, ok
}

// Len returns the number of materialized tiles.
func (s *Store) Len() int {
	return len(s.tiles)
}

// Coords returns the materialized coordinates in row-major order.
func (s *Store) Coords() []Coord {
	coords := make([]Coord, 0, len(s.tiles))
	for c := range s.tiles {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoord)
	return coords
}

// Tiles returns every materialized tile in row-major order. The tiles are
// shared with the store.
func (s *Store) Tiles() []Entry {
	entries := make([]Entry, 0, len(s.tiles))
	for _, c := range s.Coords() {
		entries = append(entries, Entry{Coord: c, Tile: s.tiles[c]})
	}
	return entries
}

// Clear discards every tile.
func (s *Store) Clear() {
	s.tiles = make(map[Coord]*Tile)
}

// Put replaces the tile at c. A nil tile removes it; this is only used to
// roll back a stroke that created the tile.
func (s *Store) Put(c Coord, t *Tile) {
	if t == nil {
		delete(s.tiles, c)
		return
	}
	s.tiles[c] = t
}

// Snapshot returns a deep, read-only copy of the store.
func (s *Store) Snapshot() *Snapshot {
	entries := s.Tiles()
	for i := range entries {
		entries[i].Tile = entries[i].Tile.Clone()
	}
	return &Snapshot{Size: s.size, Entries: entries}
}

// Snapshot is a frozen copy of the store, safe to read from any goroutine.
type Snapshot struct {
	Size    int
	Entries []Entry
}

// Len returns the number of tiles in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Extent returns the union of the tile rectangles, or the zero RectInt when
// the snapshot is empty.
func (s *Snapshot) Extent() geometry.RectInt {
	var r geometry.RectInt
	if s == nil {
		return r
	}
	for _, e := range s.Entries {
		r = r.Union(e.Coord.Rect(s.Size))
	}
	return r
}
