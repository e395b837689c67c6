package mixture

import (
	"math"
	"slices"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// GammaSampler draws the between-child direction: a vector orthogonal to sqrt(p)
// with squared norm varphi2.
type GammaSampler func(p []float64, varphi2 float64, rng *rand.Rand) []float64

// SampleGamma projects a standard Gaussian vector through the basis of the
// subspace orthogonal to sqrt(p) and rescales it onto the sphere of radius
// sqrt(varphi2).
func SampleGamma(p []float64, varphi2 float64, rng *rand.Rand) []float64 {
	switch len(p) {
	case 1:
		return []float64{0}
	case 2:
		gamma := slices.Clone(Basis(p)[0])
		floats.Scale(math.Sqrt(varphi2), gamma)
		return gamma
	}

	gamma := make([]float64, len(p))
	for _, f := range Basis(p) {
		floats.AddScaled(gamma, rng.NormFloat64(), f)
	}

	norm := floats.Norm(gamma, 2)
	if norm == 0 {
		return gamma
	}
	floats.Scale(math.Sqrt(varphi2)/norm, gamma)
	return gamma
}

// SampleGammaAngular builds the same kind of vector from k-2 random angles: the
// first k-3 in [0, pi) and the last in [0, 2pi). The hyperspherical coordinates
// of those angles weight the basis vectors directly.
func SampleGammaAngular(p []float64, varphi2 float64, rng *rand.Rand) []float64 {
	k := len(p)
	if k < 3 {
		return SampleGamma(p, varphi2, rng)
	}

	angles := make([]float64, k-2)
	for i := 0; i < k-3; i++ {
		angles[i] = rng.Float64() * math.Pi
	}
	angles[k-3] = rng.Float64() * 2 * math.Pi

	coeffs := hyperspherical(angles, math.Sqrt(varphi2))
	gamma := make([]float64, k)
	for i, f := range Basis(p) {
		floats.AddScaled(gamma, coeffs[i], f)
	}
	return gamma
}

// SampleEta draws the within-child residual on the sphere of radius
// sqrt(1-varphi2), using k-1 angles in [0, pi/2] so every component is
// non-negative.
func SampleEta(k int, varphi2 float64, rng *rand.Rand) []float64 {
	angles := make([]float64, k-1)
	for i := range angles {
		angles[i] = rng.Float64() * math.Pi / 2
	}
	return nonNegative(hyperspherical(angles, math.Sqrt(1-varphi2)))
}

// SampleEtaDirichlet splits the residual mass 1-varphi2 across k children with
// symmetric Dirichlet weights of the given concentration.
func SampleEtaDirichlet(k int, varphi2, concentration float64, rng *rand.Rand) []float64 {
	alpha := make([]float64, k)
	for i := range alpha {
		alpha[i] = concentration
	}
	weights := distmv.NewDirichlet(alpha, rng).Rand(nil)

	eta := make([]float64, k)
	for i, w := range weights {
		eta[i] = math.Sqrt((1 - varphi2) * w)
	}
	return nonNegative(eta)
}

// hyperspherical maps n-1 angles to the n cartesian coordinates of the point of
// radius r they describe.
func hyperspherical(angles []float64, r float64) []float64 {
	x := make([]float64, len(angles)+1)
	prod := r
	for i, a := range angles {
		x[i] = prod * math.Cos(a)
		prod *= math.Sin(a)
	}
	x[len(angles)] = prod
	return x
}

// eta components scale standard deviations
func nonNegative(x []float64) []float64 {
	for i, v := range x {
		x[i] = math.Abs(v)
	}
	return x
}
