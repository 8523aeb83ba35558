package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilepaint/pkg/geometry"
)

func TestWithZoomRejectsUnknownFactor(t *testing.T) {
	v := New()
	for _, f := range []float64{0, -1, 0.25, 1.5, 4} {
		got, err := v.WithZoom(f)
		require.ErrorIs(t, err, ErrInvalidZoomLevel)
		assert.Equal(t, v, got, "zoom must be unchanged after %g", f)
	}
	for _, f := range Levels {
		got, err := v.WithZoom(f)
		require.NoError(t, err)
		assert.Equal(t, f, got.Zoom)
	}
}

func TestZoomStepping(t *testing.T) {
	v := New()
	v = v.ZoomIn()
	assert.Equal(t, 2.0, v.Zoom)
	v = v.ZoomIn().ZoomIn().ZoomIn()
	assert.Equal(t, 3.0, v.Zoom)
	for range Levels {
		v = v.ZoomOut()
	}
	assert.Equal(t, 0.1, v.Zoom)
}

func TestToImageSpace(t *testing.T) {
	tests := []struct {
		zoom   float64
		scroll geometry.PointInt
		vx, vy int
		want   geometry.PointInt
	}{
		{1, geometry.Pt(0, 0), 10, 20, geometry.Pt(10, 20)},
		{2, geometry.Pt(0, 0), 11, 21, geometry.Pt(5, 10)},
		{0.5, geometry.Pt(100, 40), 10, 10, geometry.Pt(220, 100)},
		{3, geometry.Pt(30, 0), 0, 2, geometry.Pt(10, 0)},
		{1, geometry.Pt(0, 0), -5, -1, geometry.Pt(0, 0)},
	}
	for _, tt := range tests {
		v, err := New().WithZoom(tt.zoom)
		require.NoError(t, err)
		v.Scroll = tt.scroll
		assert.Equal(t, tt.want, v.ToImageSpace(tt.vx, tt.vy), "zoom %g view (%d,%d)", tt.zoom, tt.vx, tt.vy)
	}
}

// The image coordinate is truncated, so the round trip loses at most one
// image pixel, which is max(1, zoom) view pixels.
func TestRoundTrip(t *testing.T) {
	for _, zoom := range Levels {
		v, err := New().WithZoom(zoom)
		require.NoError(t, err)
		v = v.WithScroll(37, 11)
		tol := math.Max(1, zoom)
		for vx := 0; vx < 300; vx += 7 {
			for vy := 0; vy < 300; vy += 13 {
				back := v.ToViewSpace(v.ToImageSpace(vx, vy))
				dx := float64(vx) - back.X
				dy := float64(vy) - back.Y
				assert.True(t, dx >= -1e-9 && dx < tol, "zoom %g x %d -> %g", zoom, vx, back.X)
				assert.True(t, dy >= -1e-9 && dy < tol, "zoom %g y %d -> %g", zoom, vy, back.Y)
			}
		}
	}
}

func TestScaled(t *testing.T) {
	assert.Equal(t, 26, Scaled(256, 0.1))
	assert.Equal(t, 128, Scaled(1280, 0.1))
	assert.Equal(t, 768, Scaled(256, 3))
	assert.Equal(t, 72, Scaled(720, 0.1))
}
