package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Basis returns an orthonormal basis of the (k-1)-dimensional subspace
// orthogonal to sqrt(p), one vector per row.
//
// Row s-1 is built from the closed form (0-indexed components)
//
//	f_s[j] = -sqrt(p[j]*p[s]) / sqrt(p[0]+...+p[s-1])   for j < s
//	f_s[s] = sqrt(p[0]+...+p[s-1])
//	f_s[j] = 0                                          for j > s
//
// and then scaled to unit length.
func Basis(p []float64) [][]float64 {
	basis := make([][]float64, 0, len(p)-1)
	for s := 1; s < len(p); s++ {
		f := orthogonal(p, s)
		floats.Scale(1/floats.Norm(f, 2), f)
		basis = append(basis, f)
	}
	return basis
}

// orthogonal returns the unnormalised s-th basis vector.
func orthogonal(p []float64, s int) []float64 {
	f := make([]float64, len(p))
	root := math.Sqrt(floats.Sum(p[:s]))
	for j := 0; j < s; j++ {
		f[j] = -math.Sqrt(p[j]*p[s]) / root
	}
	f[s] = root
	return f
}
