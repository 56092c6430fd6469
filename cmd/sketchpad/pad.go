package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/gogpu/sketch/grid"
)

var ink = color.NRGBA{A: 255}

// pad is a drawing surface backed by a grid.Bitmap. Drags paint
// round-capped segments; taps paint dots. Every change hands a snapshot
// to onChange.
type pad struct {
	widget.BaseWidget

	bitmap   *grid.Bitmap
	img      *canvas.Image
	radius   float64
	last     fyne.Position
	drawing  bool
	onChange func(*grid.Bitmap)
}

func newPad(side int, radius float64, onChange func(*grid.Bitmap)) *pad {
	p := &pad{
		bitmap:   grid.NewCanvas(side, side),
		radius:   radius,
		onChange: onChange,
	}
	p.img = canvas.NewImageFromImage(p.bitmap.ToImage())
	p.img.FillMode = canvas.ImageFillStretch
	p.img.ScaleMode = canvas.ImageScalePixels
	p.img.SetMinSize(fyne.NewSize(float32(side), float32(side)))
	p.ExtendBaseWidget(p)
	return p
}

func (p *pad) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.img)
}

// Dragged implements fyne.Draggable.
func (p *pad) Dragged(e *fyne.DragEvent) {
	from := p.last
	if !p.drawing {
		from = fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		p.drawing = true
	}
	p.paint(from, e.Position)
	p.last = e.Position
}

// DragEnd implements fyne.Draggable.
func (p *pad) DragEnd() {
	p.drawing = false
}

// Tapped implements fyne.Tappable.
func (p *pad) Tapped(e *fyne.PointEvent) {
	p.paint(e.Position, e.Position)
}

func (p *pad) setRadius(r float64) {
	p.radius = r
}

func (p *pad) clear() {
	p.bitmap.Fill(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	p.changed()
}

// paint strokes between two widget positions, mapped to bitmap pixels.
func (p *pad) paint(from, to fyne.Position) {
	size := p.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	sx := float64(p.bitmap.Width()) / float64(size.Width)
	sy := float64(p.bitmap.Height()) / float64(size.Height)
	p.bitmap.Stroke(
		float64(from.X)*sx, float64(from.Y)*sy,
		float64(to.X)*sx, float64(to.Y)*sy,
		p.radius, ink)
	p.changed()
}

func (p *pad) changed() {
	p.img.Image = p.bitmap.ToImage()
	p.img.Refresh()
	if p.onChange != nil {
		p.onChange(p.bitmap.Clone())
	}
}
