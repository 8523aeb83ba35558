// Package image provides background loading, resampling and the zoom
// compositor.
package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"tilepaint/pkg/geometry"
)

// ErrUnsupportedFormat is returned when a background cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported or corrupt image")

// Default blank canvas size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Background is the immutable raster strokes are drawn over.
type Background struct {
	Image  image.Image
	Path   string  // Source file, empty for a blank canvas
	Format string  // Decoder name, e.g. "png"
	DPI    float64 // From TIFF resolution tags, 0 if unknown
}

// Blank returns a white background of the given size.
func Blank(width, height int) *Background {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &Background{Image: img}
}

// Decode reads a whole image from r. Nothing is returned unless decoding
// succeeds.
func Decode(r io.Reader) (*Background, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	bg := &Background{Image: img, Format: format}
	if format == "tiff" {
		if dpi, err := tiffDPI(bytes.NewReader(data)); err == nil {
			bg.DPI = dpi
		}
	}
	return bg, nil
}

// Load decodes the image at path. Paths without a supported extension are
// rejected before the file is opened.
func Load(path string) (*Background, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("%w: %s is not one of %s", ErrUnsupportedFormat, filepath.Base(path), FileFilter())
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	bg, err := Decode(file)
	if err != nil {
		return nil, err
	}
	bg.Path = path
	return bg, nil
}

// Width returns the image width in pixels.
func (b *Background) Width() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (b *Background) Height() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// Rect returns [0,0,W,H].
func (b *Background) Rect() geometry.RectInt {
	return geometry.RectInt{Width: b.Width(), Height: b.Height()}
}

// Canvas returns the working canvas size: the background padded to at least
// minW×minH.
func (b *Background) Canvas(minW, minH int) (int, int) {
	return max(minW, b.Width()), max(minH, b.Height())
}

// Largest returns the larger of the two dimensions.
func (b *Background) Largest() int {
	return max(b.Width(), b.Height())
}

// tiffDPI extracts the horizontal resolution from the first IFD.
func tiffDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		byteOrder = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		byteOrder = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	if _, err := r.Seek(int64(byteOrder.Uint32(header[4:8])), io.SeekStart); err != nil {
		return 0, err
	}
	var numEntries uint16
	if err := binary.Read(r, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	type rational struct{ tag, offset uint32 }
	var rationals []rational
	var resUnit uint16 = 2 // inches
	entry := make([]byte, 12)
	for i := uint16(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		switch {
		case (tag == 282 || tag == 283) && fieldType == 5: // X/YResolution, RATIONAL
			rationals = append(rationals, rational{uint32(tag), byteOrder.Uint32(entry[8:12])})
		case tag == 296 && fieldType == 3: // ResolutionUnit, SHORT
			resUnit = byteOrder.Uint16(entry[8:10])
		}
	}

	var dpi float64
	for _, rat := range rationals {
		if _, err := r.Seek(int64(rat.offset), io.SeekStart); err != nil {
			return 0, err
		}
		var num, denom uint32
		if err := binary.Read(r, byteOrder, &num); err != nil {
			return 0, err
		}
		if err := binary.Read(r, byteOrder, &denom); err != nil {
			return 0, err
		}
		if denom != 0 && (dpi == 0 || rat.tag == 282) {
			dpi = float64(num) / float64(denom)
		}
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	if resUnit == 3 {
		dpi *= 2.54
	}
	return dpi, nil
}

// SupportedFormats returns the file extensions that can be opened.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*" + strings.Join(SupportedFormats(), ", *") + ")"
}
