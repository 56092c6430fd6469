package filter

import (
	"testing"

	"github.com/gogpu/sketch/grid"
)

func TestReflect(t *testing.T) {
	tests := []struct {
		i, n int
		want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 0},
		{-2, 5, 1},
		{5, 5, 4},
		{6, 5, 3},
		{-1, 1, 0},
		{1, 1, 0},
		{-7, 3, 0}, // -7 -> 6 -> -1 -> 0
		{9, 3, 2},  // 9 -> -4 -> 3 -> 2
	}

	for _, tt := range tests {
		if got := reflect(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestConvolveUniformUnitKernels(t *testing.T) {
	kernels := map[string]Kernel{"blur": Blur, "identity": Identity, "sharpen": Sharpen}
	sizes := [][2]int{{28, 28}, {1, 1}, {2, 5}, {7, 3}}

	for name, k := range kernels {
		for _, sz := range sizes {
			g := uniformGrid(sz[0], sz[1], 0.37)
			r := Convolve(g, k)
			for y := 0; y < sz[1]; y++ {
				for x := 0; x < sz[0]; x++ {
					if got := r.At(x, y); absf(got-0.37) > 1e-12 {
						t.Fatalf("%s on %dx%d: At(%d, %d) = %v, want 0.37", name, sz[0], sz[1], x, y, got)
					}
				}
			}
		}
	}
}

func TestConvolveUniformZeroSumKernels(t *testing.T) {
	for name, k := range map[string]Kernel{"sobelx": SobelX, "sobely": SobelY, "laplacian": Laplacian} {
		r := Convolve(uniformGrid(10, 10, 0.8), k)
		if m := r.MaxAbs(); m > 1e-12 {
			t.Errorf("%s on uniform grid MaxAbs = %v, want 0", name, m)
		}
	}
}

func TestConvolveIdentityCopies(t *testing.T) {
	g := rampGrid(9, 4)
	r := Convolve(g, Identity)
	for y := 0; y < 4; y++ {
		for x := 0; x < 9; x++ {
			if r.At(x, y) != g.At(x, y) {
				t.Errorf("identity At(%d, %d) = %v, want %v", x, y, r.At(x, y), g.At(x, y))
			}
		}
	}
}

func TestConvolveSobelXOnRamp(t *testing.T) {
	// Interior gradient of a ramp with step 0.1 is (0.2)*(1+2+1) = 0.8.
	g := rampGrid(10, 5)
	r := Convolve(g, SobelX)
	if got := r.At(5, 2); absf(got-0.8) > 1e-9 {
		t.Errorf("SobelX interior = %v, want 0.8", got)
	}

	// At x=0 the left neighbour reflects onto x=0 itself: (0.1-0)*4 = 0.4.
	if got := r.At(0, 2); absf(got-0.4) > 1e-9 {
		t.Errorf("SobelX left border = %v, want 0.4", got)
	}

	if got := Convolve(g, SobelY).MaxAbs(); got > 1e-12 {
		t.Errorf("SobelY on horizontal ramp MaxAbs = %v, want 0", got)
	}
}

func TestConvolveZeroDimensions(t *testing.T) {
	for _, sz := range [][2]int{{0, 0}, {0, 4}, {4, 0}} {
		r := Convolve(grid.New(sz[0], sz[1]), Blur)
		if r.Width() != sz[0] || r.Height() != sz[1] {
			t.Errorf("Convolve(%dx%d) = %dx%d", sz[0], sz[1], r.Width(), r.Height())
		}
		n := NormalizeAbs(r)
		if n.Width() != sz[0] || n.Height() != sz[1] {
			t.Errorf("NormalizeAbs(%dx%d) = %dx%d", sz[0], sz[1], n.Width(), n.Height())
		}
	}
}

func TestNormalizeAbs(t *testing.T) {
	r := &Response{width: 3, height: 1, data: []float64{-4, 2, 0}}
	g := NormalizeAbs(r)
	want := []float64{1, 0.5, 0}
	for i, v := range g.Values() {
		if absf(v-want[i]) > 1e-12 {
			t.Errorf("value[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestNormalizeAbsNearZero(t *testing.T) {
	r := &Response{width: 2, height: 1, data: []float64{5e-9, -1e-9}}
	if s := NormalizeAbs(r).Sum(); s != 0 {
		t.Errorf("NormalizeAbs(near zero) sum = %v, want 0", s)
	}
}

func TestMaxPool2Shape(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{28, 28, 14, 14},
		{27, 27, 13, 13},
		{1, 1, 0, 0},
		{0, 0, 0, 0},
		{5, 8, 2, 4},
	}

	for _, tt := range tests {
		got := MaxPool2(grid.New(tt.w, tt.h))
		if got.Width() != tt.wantW || got.Height() != tt.wantH {
			t.Errorf("MaxPool2(%dx%d) = %dx%d, want %dx%d", tt.w, tt.h, got.Width(), got.Height(), tt.wantW, tt.wantH)
		}
	}
}

func TestMaxPool2Values(t *testing.T) {
	g := grid.FromValues(3, 3, []float64{
		0.1, 0.9, 0.5,
		0.2, 0.3, 0.5,
		1.0, 1.0, 1.0,
	})
	p := MaxPool2(g)
	if p.Width() != 1 || p.Height() != 1 {
		t.Fatalf("MaxPool2(3x3) = %dx%d, want 1x1", p.Width(), p.Height())
	}
	// The trailing row and column (all 1.0 / 0.5) are dropped.
	if got := p.At(0, 0); got != 0.9 {
		t.Errorf("MaxPool2 value = %v, want 0.9", got)
	}
}

func TestExtract(t *testing.T) {
	g := grid.New(28, 28)
	for y := 8; y < 20; y++ {
		g.Set(14, y, 1)
	}

	f := Extract(g)
	for i, fg := range f.All() {
		name := f.Names()[i]
		for _, v := range fg.Raw() {
			if v < 0 || v > 1 {
				t.Fatalf("%s value %v outside [0, 1]", name, v)
			}
		}
	}

	if f.EdgesX.Width() != 28 || f.PooledX.Width() != 14 || f.PooledY.Height() != 14 {
		t.Error("unexpected feature shapes")
	}
	if f.EdgesX.Max() < 1-1e-12 {
		t.Errorf("EdgesX max = %v, want 1 for a vertical stroke", f.EdgesX.Max())
	}
	// A vertical stroke has stronger horizontal gradient than vertical.
	if f.EdgesX.Sum() <= f.EdgesY.Sum() {
		t.Errorf("EdgesX sum %v <= EdgesY sum %v for a vertical stroke", f.EdgesX.Sum(), f.EdgesY.Sum())
	}
}

func TestExtractEmptyGrid(t *testing.T) {
	f := Extract(grid.New(28, 28))
	for i, fg := range f.All() {
		if fg.Sum() != 0 {
			t.Errorf("%s sum = %v, want 0", f.Names()[i], fg.Sum())
		}
	}
}

func BenchmarkConvolve28(b *testing.B) {
	g := rampGrid(28, 28)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Convolve(g, SobelX)
	}
}

func BenchmarkExtract(b *testing.B) {
	g := rampGrid(28, 28)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Extract(g)
	}
}
