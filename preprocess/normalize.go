package preprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/sketch/grid"
)

// Canonical frame defaults.
const (
	// DefaultCanonicalSize is the side of the canonical grid.
	DefaultCanonicalSize = 28

	// DefaultInnerSize is the side the longer edge of the ink is scaled to.
	// The remaining margin keeps strokes clear of the frame border.
	DefaultInnerSize = 20
)

// Option configures a Normalizer.
type Option func(*options)

type options struct {
	canonical int
	inner     int
	threshold float64
	scaler    draw.Scaler
}

func defaultOptions() options {
	return options{
		canonical: DefaultCanonicalSize,
		inner:     DefaultInnerSize,
		threshold: DefaultInkThreshold,
		scaler:    draw.BiLinear,
	}
}

// WithCanonicalSize sets the side of the output grid. Values below 1 are
// ignored.
func WithCanonicalSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.canonical = n
		}
	}
}

// WithInnerSize sets the side the ink is scaled to. It is capped at the
// canonical size. Values below 1 are ignored.
func WithInnerSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.inner = n
		}
	}
}

// WithInkThreshold sets the ink threshold used to locate the drawing.
func WithInkThreshold(tau float64) Option {
	return func(o *options) {
		o.threshold = tau
	}
}

// WithScaler replaces the resampling kernel. The default is draw.BiLinear.
func WithScaler(s draw.Scaler) Option {
	return func(o *options) {
		if s != nil {
			o.scaler = s
		}
	}
}

// Normalized is the output of a Normalizer run.
type Normalized struct {
	// Grid is the canonical grid. It is all zero when Empty is true.
	Grid *grid.Grid

	// Box is the located ink box in source coordinates. Valid only when
	// Empty is false.
	Box grid.Box

	// Empty reports that no cell exceeded the ink threshold.
	Empty bool
}

// Normalizer rescales and centres the located ink into a fixed-size grid.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	canonical int
	inner     int
	threshold float64
	scaler    draw.Scaler
}

// NewNormalizer creates a Normalizer with the defaults (28×28 frame, 20px
// content, 0.08 ink threshold, bilinear resampling) overridden by opts.
func NewNormalizer(opts ...Option) *Normalizer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Normalizer{
		canonical: o.canonical,
		inner:     min(o.inner, o.canonical),
		threshold: o.threshold,
		scaler:    o.scaler,
	}
}

// CanonicalSize returns the side of the grids this Normalizer produces.
func (n *Normalizer) CanonicalSize() int {
	return n.canonical
}

// InnerSize returns the side the longer ink edge is scaled to.
func (n *Normalizer) InnerSize() int {
	return n.inner
}

// InkThreshold returns the threshold passed to Locate.
func (n *Normalizer) InkThreshold() float64 {
	return n.threshold
}

// Normalize locates the ink in g, scales it so its longer side spans the
// inner size (aspect ratio preserved) and pastes it centred into a blank
// canonical grid.
func (n *Normalizer) Normalize(g *grid.Grid) Normalized {
	out := grid.New(n.canonical, n.canonical)

	box, ok := Locate(g, n.threshold)
	if !ok {
		return Normalized{Grid: out, Empty: true}
	}

	// max(..., 1) keeps single-pixel boxes from dividing by zero.
	scale := float64(n.inner) / float64(max(box.Longest(), 1))
	sw := scaledDim(box.W, scale, n.canonical)
	sh := scaledDim(box.H, scale, n.canonical)

	src := g.ToGray16(box.Rect())
	dst := image.NewGray16(image.Rect(0, 0, sw, sh))
	n.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	scaled := grid.FromGray16(dst)

	offX := (n.canonical - sw) / 2
	offY := (n.canonical - sh) / 2
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			out.Set(offX+x, offY+y, scaled.At(x, y))
		}
	}

	return Normalized{Grid: out, Box: box}
}

// Prepare runs Grayscale then Normalize. Live input and prototype
// rendering both go through this pathway.
func (n *Normalizer) Prepare(b *grid.Bitmap) Normalized {
	return n.Normalize(Grayscale(b))
}

// scaledDim scales a box side, keeping it within [1, limit].
func scaledDim(side int, scale float64, limit int) int {
	d := int(math.Round(float64(side) * scale))
	return max(1, min(d, limit))
}
