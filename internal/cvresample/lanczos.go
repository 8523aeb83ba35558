// Package cvresample provides an OpenCV-backed Lanczos resampler for the
// zoom compositor.
package cvresample

import (
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	tpimage "tilepaint/internal/image"
)

// Lanczos4 resamples with OpenCV's 8x8 Lanczos kernel.
type Lanczos4 struct{}

var _ tpimage.Resampler = Lanczos4{}

// Name returns the configuration name of the resampler.
func (Lanczos4) Name() string {
	return "lanczos4"
}

// Scale returns src resized to width×height. If OpenCV rejects the input the
// CatmullRom resampler is used instead.
func (l Lanczos4) Scale(src image.Image, width, height int) *image.RGBA {
	rgba := toPackedRGBA(src)
	b := rgba.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	}

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return tpimage.CatmullRom.Scale(src, width, height)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLanczos4)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(dst.Pix, resized.ToBytes())
	clampPremultiplied(dst.Pix)
	return dst
}

// toPackedRGBA returns src as an *image.RGBA at the origin with no row padding.
func toPackedRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return rgba
}

// clampPremultiplied caps each colour channel at its alpha. Lanczos ringing
// can push a channel above alpha at sharp stroke edges.
func clampPremultiplied(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		for c := 0; c < 3; c++ {
			if pix[i+c] > a {
				pix[i+c] = a
			}
		}
	}
}
