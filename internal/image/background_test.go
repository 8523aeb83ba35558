package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func sample() *image.RGBA {
	img := Blank(40, 30).Image.(*image.RGBA)
	img.SetRGBA(3, 4, color.RGBA{R: 200, A: 255})
	return img
}

func TestDecodeFormats(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer, image.Image) error{
		"png":  func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) },
		"bmp":  func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) },
		"tiff": func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) },
	}
	for format, encode := range encoders {
		var buf bytes.Buffer
		require.NoError(t, encode(&buf, sample()))
		bg, err := Decode(&buf)
		require.NoError(t, err, format)
		assert.Equal(t, format, bg.Format)
		assert.Equal(t, 40, bg.Width())
		assert.Equal(t, 30, bg.Height())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, sample()))
	require.NoError(t, f.Close())

	bg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, bg.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadRejectsExtensionBeforeOpening(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, sample()))
	require.NoError(t, f.Close())

	_, err = Load(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorContains(t, err, "bg.txt is not one of Image Files (*.png")
}

func TestCanvasPadsToDefault(t *testing.T) {
	w, h := Blank(40, 30).Canvas(DefaultWidth, DefaultHeight)
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)

	w, h = Blank(4000, 30).Canvas(DefaultWidth, DefaultHeight)
	assert.Equal(t, 4000, w)
	assert.Equal(t, DefaultHeight, h)
}

func TestBlankIsWhite(t *testing.T) {
	bg := Blank(2, 2)
	r, g, b, a := bg.Image.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("scan.TIFF"))
	assert.True(t, IsSupportedFormat("a/b/photo.jpeg"))
	assert.False(t, IsSupportedFormat("notes.txt"))
	assert.Contains(t, FileFilter(), "*.bmp")
}
