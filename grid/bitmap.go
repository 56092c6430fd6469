package grid

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Bitmap is a rectangular capture surface of non-premultiplied RGBA pixels,
// 4 bytes per pixel, origin at the top-left.
//
// The pipeline only reads bitmaps. Capture collaborators should hand it a
// snapshot (Clone) rather than the surface they keep drawing into.
type Bitmap struct {
	width  int
	height int
	data   []uint8
}

// NewBitmap creates a fully transparent bitmap.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// NewCanvas creates an opaque white bitmap, the blank drawing surface.
func NewCanvas(width, height int) *Bitmap {
	b := NewBitmap(width, height)
	b.Fill(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return b
}

// FromImage copies any image into a new bitmap.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	b := NewBitmap(bounds.Dx(), bounds.Dy())
	dst := &image.NRGBA{Pix: b.data, Stride: b.width * 4, Rect: image.Rect(0, 0, b.width, b.height)}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return b
}

// Width returns the width of the bitmap.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the height of the bitmap.
func (b *Bitmap) Height() int {
	return b.height
}

// Data returns the raw pixel data (RGBA, non-premultiplied).
func (b *Bitmap) Data() []uint8 {
	return b.data
}

// Clone returns an independent snapshot of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{width: b.width, height: b.height, data: make([]uint8, len(b.data))}
	copy(c.data, b.data)
	return c
}

// SetPixel sets a single pixel. Out-of-range writes are ignored.
func (b *Bitmap) SetPixel(x, y int, c color.NRGBA) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.data[i+0] = c.R
	b.data[i+1] = c.G
	b.data[i+2] = c.B
	b.data[i+3] = c.A
}

// Pixel returns a single pixel, or transparent black outside the bitmap.
func (b *Bitmap) Pixel(x, y int) color.NRGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{}
	}
	i := (y*b.width + x) * 4
	return color.NRGBA{R: b.data[i+0], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// Fill sets every pixel to c.
func (b *Bitmap) Fill(c color.NRGBA) {
	for i := 0; i < len(b.data); i += 4 {
		b.data[i+0] = c.R
		b.data[i+1] = c.G
		b.data[i+2] = c.B
		b.data[i+3] = c.A
	}
}

// FillRect fills the w×h rectangle at (x, y), clipped to the bitmap.
func (b *Bitmap) FillRect(x, y, w, h int, c color.NRGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, b.width, b.height))
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			b.SetPixel(px, py, c)
		}
	}
}

// Stroke paints a round-capped segment from (x0, y0) to (x1, y1) with the
// given brush radius. A zero-length segment paints a dot.
func (b *Bitmap) Stroke(x0, y0, x1, y1, radius float64, c color.NRGBA) {
	if radius <= 0 {
		radius = 0.5
	}
	r := image.Rect(
		int(math.Floor(min(x0, x1)-radius)),
		int(math.Floor(min(y0, y1)-radius)),
		int(math.Ceil(max(x0, x1)+radius))+1,
		int(math.Ceil(max(y0, y1)+radius))+1,
	).Intersect(image.Rect(0, 0, b.width, b.height))

	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	rSq := radius * radius

	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			// Distance from the pixel centre to the segment.
			cx, cy := float64(px)+0.5, float64(py)+0.5
			t := 0.0
			if lenSq > 0 {
				t = ((cx-x0)*dx + (cy-y0)*dy) / lenSq
				t = max(0, min(1, t))
			}
			ex, ey := x0+t*dx-cx, y0+t*dy-cy
			if ex*ex+ey*ey <= rSq {
				b.SetPixel(px, py, c)
			}
		}
	}
}

// ToImage converts the bitmap to an image.NRGBA sharing no memory with it.
func (b *Bitmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.data)
	return img
}
