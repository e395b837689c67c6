package mixture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"mixtree/utils"
)

func moments(p []float64, children []Dist) (float64, float64) {
	var mean, second float64
	for i, c := range children {
		mean += p[i] * c.Mean
		second += p[i] * (c.Mean*c.Mean + c.SD*c.SD)
	}
	return mean, math.Sqrt(second - mean*mean)
}

func TestBasis(t *testing.T) {
	p := Uniform(5)

	t.Run("unnormalised vectors", func(t *testing.T) {
		expected := [][]float64{
			{-0.4472136, 0.4472136, 0, 0, 0},
			{-0.31622777, -0.31622777, 0.63245553, 0, 0},
			{-0.25819889, -0.25819889, -0.25819889, 0.77459667, 0},
			{-0.2236068, -0.2236068, -0.2236068, -0.2236068, 0.89442719},
		}
		for s := 1; s < 5; s++ {
			require.InDeltaSlice(t, expected[s-1], orthogonal(p, s), 1e-7, "Vector %d should match the closed form", s)
		}
	})

	t.Run("normalised vectors", func(t *testing.T) {
		expected := [][]float64{
			{-0.70710678, 0.70710678, 0, 0, 0},
			{-0.40824829, -0.40824829, 0.81649658, 0, 0},
			{-0.28867513, -0.28867513, -0.28867513, 0.8660254, 0},
			{-0.2236068, -0.2236068, -0.2236068, -0.2236068, 0.89442719},
		}
		basis := Basis(p)
		require.Len(t, basis, 4, "Basis should span k-1 dimensions")
		for i, f := range basis {
			require.InDeltaSlice(t, expected[i], f, 1e-7, "Basis vector %d", i)
		}
	})

	t.Run("orthonormal and orthogonal to sqrt(p)", func(t *testing.T) {
		p := []float64{0.1, 0.2, 0.3, 0.4}
		root := make([]float64, len(p))
		for i, w := range p {
			root[i] = math.Sqrt(w)
		}
		basis := Basis(p)
		for i, f := range basis {
			require.InDelta(t, 1, floats.Norm(f, 2), 1e-9, "Vector %d should be unit length", i)
			require.InDelta(t, 0, floats.Dot(f, root), 1e-9, "Vector %d should be orthogonal to sqrt(p)", i)
			for j := i + 1; j < len(basis); j++ {
				require.InDelta(t, 0, floats.Dot(f, basis[j]), 1e-9, "Vectors %d and %d should be orthogonal", i, j)
			}
		}
	})
}

func TestSampleGamma(t *testing.T) {
	rng := utils.NewRand(1, 0)
	p := []float64{0.1, 0.2, 0.3, 0.4}
	root := []float64{math.Sqrt(0.1), math.Sqrt(0.2), math.Sqrt(0.3), math.Sqrt(0.4)}

	samplers := map[string]GammaSampler{"projection": SampleGamma, "angular": SampleGammaAngular}
	for name, sample := range samplers {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				gamma := sample(p, 0.3, rng)
				require.InDelta(t, 0.3, floats.Dot(gamma, gamma), 1e-9, "Squared norm should equal varphi2")
				require.InDelta(t, 0, floats.Dot(gamma, root), 1e-9, "Gamma should be orthogonal to sqrt(p)")
			}
		})
	}

	t.Run("uniform weights", func(t *testing.T) {
		p := Uniform(5)
		for name, sample := range samplers {
			for i := 0; i < 100; i++ {
				gamma := sample(p, 0.2, rng)
				require.Len(t, gamma, 5)
				require.InDelta(t, 0, floats.Dot(p, gamma), 1e-9, "%s: weighted sum should vanish", name)
				require.InDelta(t, 0.2, floats.Dot(gamma, gamma), 1e-9, "%s: squared norm should equal varphi2", name)
			}
		}
	})

	t.Run("single child", func(t *testing.T) {
		require.Equal(t, []float64{0}, SampleGamma([]float64{1}, 0.5, rng), "Single child has no spread")
	})
}

func TestSampleEta(t *testing.T) {
	rng := utils.NewRand(2, 0)

	t.Run("angles", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			eta := SampleEta(6, 0.25, rng)
			require.Len(t, eta, 6)
			require.InDelta(t, 0.75, floats.Dot(eta, eta), 1e-9, "Squared norm should equal 1-varphi2")
			for _, e := range eta {
				require.GreaterOrEqual(t, e, 0.0, "Eta must be non-negative")
			}
		}
	})

	t.Run("dirichlet", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			eta := SampleEtaDirichlet(4, 0.4, 2, rng)
			require.Len(t, eta, 4)
			require.InDelta(t, 0.6, floats.Dot(eta, eta), 1e-9, "Squared norm should equal 1-varphi2")
			for _, e := range eta {
				require.GreaterOrEqual(t, e, 0.0, "Eta must be non-negative")
			}
		}
	})
}

func TestDecompose(t *testing.T) {
	rng := utils.NewRand(3, 0)

	t.Run("preserves moments for uniform weights", func(t *testing.T) {
		p := Uniform(5)
		for i := 0; i < 50; i++ {
			children := Decompose(0, 1, p, Split{Varphi2: 0.2}, rng)
			require.Len(t, children, 5)
			mean, sd := moments(p, children)
			require.InDelta(t, 0, mean, 1e-9, "Mean should be preserved")
			require.InDelta(t, 1, sd, 1e-9, "SD should be preserved")
		}
	})

	t.Run("preserves moments for a shifted parent", func(t *testing.T) {
		p := Uniform(5)
		children := Decompose(500, 100, p, Split{Varphi2: 0.6}, rng)
		mean, sd := moments(p, children)
		require.InDelta(t, 500, mean, 1e-7, "Mean should be preserved")
		require.InDelta(t, 100, sd, 1e-7, "SD should be preserved")
	})

	t.Run("preserves moments for skewed weights", func(t *testing.T) {
		p := []float64{0.05, 0.15, 0.3, 0.5}
		for _, d := range []Decomposer{Default, Angular} {
			children := d.Decompose(-20, 7, p, Split{Varphi2: 0.45, Concentration: 1.5}, rng)
			mean, sd := moments(p, children)
			require.InDelta(t, -20, mean, 1e-9, "Mean should be preserved")
			require.InDelta(t, 7, sd, 1e-9, "SD should be preserved")
		}
	})

	t.Run("single child is the parent", func(t *testing.T) {
		children := Decompose(3, 2, []float64{1}, Split{Varphi2: 0.7}, rng)
		require.Equal(t, []Dist{{Mean: 3, SD: 2}}, children)
	})

	t.Run("varphi2 of one leaves no residual", func(t *testing.T) {
		children := Decompose(10, 4, Uniform(3), Split{Varphi2: 1}, rng)
		for _, c := range children {
			require.InDelta(t, 0, c.SD, 1e-9, "All variance should be between children")
		}
	})

	t.Run("varphi2 of zero keeps means together", func(t *testing.T) {
		children := Decompose(10, 4, Uniform(3), Split{}, rng)
		for _, c := range children {
			require.InDelta(t, 10, c.Mean, 1e-9, "All variance should be within children")
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		require.Panics(t, func() { Decompose(0, 1, nil, Split{}, rng) }, "Empty weights")
		require.Panics(t, func() { Decompose(0, 1, []float64{0.5, 0.6}, Split{}, rng) }, "Weights not summing to 1")
		require.Panics(t, func() { Decompose(0, 1, []float64{1.5, -0.5}, Split{}, rng) }, "Negative weight")
		require.Panics(t, func() { Decompose(0, 1, Uniform(2), Split{Varphi2: 1.2}, rng) }, "Varphi2 above 1")
		require.Panics(t, func() { Decompose(0, 1, Uniform(2), Split{Varphi2: -0.1}, rng) }, "Varphi2 below 0")
	})
}

func TestReverseToVarphi2(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		rng := utils.NewRand(4, 0)
		children := Decompose(50, 10, Uniform(4), Split{Varphi2: 0.35}, rng)
		sds := make([]float64, len(children))
		for i, c := range children {
			sds[i] = c.SD
		}
		varphi2 := ReverseToVarphi2(10, sds)
		require.InDelta(t, 0.35, varphi2, 1e-9, "Split ratio should be recovered")

		p := Uniform(4)
		again := Decompose(50, 10, p, Split{Varphi2: varphi2}, rng)
		mean, sd := moments(p, again)
		require.InDelta(t, 50, mean, 1e-9, "Recovered split should keep the parent mean")
		require.InDelta(t, 10, sd, 1e-9, "Recovered split should reproduce the parent variance")
		between := 0.0
		for _, c := range again {
			between += (c.Mean - 50) * (c.Mean - 50) / 4
		}
		require.InDelta(t, varphi2*100, between, 1e-7, "Spread of the means should carry varphi2 of the variance")
	})

	t.Run("negligible residual", func(t *testing.T) {
		require.Equal(t, 1.0, ReverseToVarphi2(5, []float64{0, 0.001}), "Deterministic children carry all variance between them")
	})

	t.Run("no children", func(t *testing.T) {
		require.Panics(t, func() { ReverseToVarphi2(1, nil) })
	})
}

func TestUniform(t *testing.T) {
	require.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, Uniform(4), 1e-12)
	require.Panics(t, func() { Uniform(0) })
}
