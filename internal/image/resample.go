package image

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resampler scales an image to an exact pixel size.
type Resampler interface {
	Name() string
	Scale(src image.Image, width, height int) *image.RGBA
}

// KernelResampler scales with one of the x/image/draw interpolators.
type KernelResampler struct {
	name   string
	interp xdraw.Interpolator
}

// Resamplers backed by x/image/draw. CatmullRom is the closest to a Lanczos
// filter that package offers and is the default.
var (
	CatmullRom     = &KernelResampler{name: "catmullrom", interp: xdraw.CatmullRom}
	BiLinear       = &KernelResampler{name: "bilinear", interp: xdraw.BiLinear}
	ApproxBiLinear = &KernelResampler{name: "approx", interp: xdraw.ApproxBiLinear}
)

// Name returns the configuration name of the resampler.
func (k *KernelResampler) Name() string {
	return k.name
}

// Scale returns src resized to width×height.
func (k *KernelResampler) Scale(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	k.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// ByName returns the x/image/draw resampler with the given name.
func ByName(name string) (Resampler, error) {
	for _, r := range []*KernelResampler{CatmullRom, BiLinear, ApproxBiLinear} {
		if r.name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown resampler %q", name)
}
