// Package filter provides the fixed-kernel feature extractors shown next to
// a canonical grid.
//
// This package contains:
//   - 3×3 kernels (Blur, SobelX, SobelY, Laplacian, Sharpen, Identity)
//   - Convolve with reflect padding, producing a raw Response
//   - NormalizeAbs, mapping a Response back into a [0, 1] Grid
//   - MaxPool2, a non-overlapping 2×2 max reduction
//
// All functions are pure, stateless and deterministic. Zero-dimension
// inputs produce zero-dimension outputs.
//
// Reflect padding mirrors interior cells across the border instead of
// reading zeros, so a uniform grid convolved with a kernel summing to 1
// comes back unchanged, with no dark frame.
package filter
