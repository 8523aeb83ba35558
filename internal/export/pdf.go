package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// maxPagePoints is the largest page edge PDF viewers accept (200 inches).
const maxPagePoints = 14400

// pageSize returns the page dimensions in points for a w×h raster at dpi,
// scaled down uniformly if either edge would exceed the PDF limit.
func pageSize(w, h int, dpi float64) (float64, float64) {
	if dpi <= 0 {
		dpi = 72
	}
	pw := float64(w) * 72 / dpi
	ph := float64(h) * 72 / dpi
	if m := max(pw, ph); m > maxPagePoints {
		pw *= maxPagePoints / m
		ph *= maxPagePoints / m
	}
	return pw, ph
}

// encodePDF writes img as the only content of a single page sized to it.
func encodePDF(w io.Writer, img image.Image, dpi float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	b := img.Bounds()
	pw, ph := pageSize(b.Dx(), b.Dy(), dpi)
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("canvas", opt, &buf)
	p.ImageOptions("canvas", 0, 0, pw, ph, false, opt, 0, "")
	if err := p.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	return p.Output(w)
}
