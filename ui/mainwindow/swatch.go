package mainwindow

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tilepaint/pkg/colorutil"
)

const swatchSize = 24

// swatch is a tappable colour square. The selected swatch gets a border.
type swatch struct {
	widget.BaseWidget
	color    color.NRGBA
	rect     *fynecanvas.Rectangle
	onTapped func(color.NRGBA)
}

var _ fyne.Tappable = (*swatch)(nil)

func newSwatch(sw colorutil.Swatch, onTapped func(color.NRGBA)) *swatch {
	s := &swatch{
		color:    sw.Color,
		rect:     fynecanvas.NewRectangle(sw.Color),
		onTapped: onTapped,
	}
	s.rect.StrokeColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	s.rect.StrokeWidth = 1
	s.rect.SetMinSize(fyne.NewSize(swatchSize, swatchSize))
	s.ExtendBaseWidget(s)
	return s
}

func (s *swatch) Tapped(*fyne.PointEvent) {
	if s.onTapped != nil {
		s.onTapped(s.color)
	}
}

// SetSelected highlights the swatch.
func (s *swatch) SetSelected(selected bool) {
	if selected {
		s.rect.StrokeColor = theme.PrimaryColor()
		s.rect.StrokeWidth = 3
	} else {
		s.rect.StrokeColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		s.rect.StrokeWidth = 1
	}
	s.rect.Refresh()
}

func (s *swatch) MinSize() fyne.Size {
	return fyne.NewSize(swatchSize, swatchSize)
}

func (s *swatch) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.rect)
}
