package filter

import "fmt"

// Kernel is a 3×3 weight matrix indexed [row][col]. The centre weight is
// at [1][1]. Kernels are applied as correlation (not flipped).
type Kernel [3][3]float64

// Fixed kernels. Treat them as constants.
var (
	// Identity returns the input unchanged.
	Identity = Kernel{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}

	// Blur is the 3×3 binomial approximation of a Gaussian. Sums to 1.
	Blur = Kernel{
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
		{2.0 / 16, 4.0 / 16, 2.0 / 16},
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
	}

	// SobelX responds to vertical edges (horizontal gradient).
	SobelX = Kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	// SobelY responds to horizontal edges (vertical gradient).
	SobelY = Kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	// Laplacian is the 4-neighbour second derivative. Sums to 0.
	Laplacian = Kernel{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}

	// Sharpen boosts the centre against its 4-neighbours. Sums to 1.
	Sharpen = Kernel{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
)

// Sum returns the total weight of the kernel.
func (k Kernel) Sum() float64 {
	var s float64
	for _, row := range k {
		for _, v := range row {
			s += v
		}
	}
	return s
}

// Named returns a kernel by its lower-case name: "identity", "blur",
// "sobelx", "sobely", "laplacian" or "sharpen".
func Named(name string) (Kernel, error) {
	switch name {
	case "identity":
		return Identity, nil
	case "blur":
		return Blur, nil
	case "sobelx":
		return SobelX, nil
	case "sobely":
		return SobelY, nil
	case "laplacian":
		return Laplacian, nil
	case "sharpen":
		return Sharpen, nil
	default:
		return Kernel{}, fmt.Errorf("filter: unknown kernel %q", name)
	}
}
