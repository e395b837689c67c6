package mixture

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Weights must sum to 1 within this tolerance.
const weightTolerance = 1e-6

// Child variances summing to less than this are treated as no residual at all
// when recovering varphi2.
const varianceFloor = 1e-5

// Dist summarises a reward distribution before it is fully resolved.
type Dist struct {
	Mean float64
	SD   float64
}

// Split apportions a parent's variance: Varphi2 goes to the spread of the child
// means and 1-Varphi2 stays inside the children.
type Split struct {
	Varphi2 float64
	// Concentration switches the within-child residual to Dirichlet sampling
	// when positive.
	Concentration float64
}

// Decomposer splits a distribution into a moment-preserving mixture.
type Decomposer struct {
	Gamma GammaSampler
}

// Default samples gamma by Gaussian projection.
var Default = Decomposer{Gamma: SampleGamma}

// Angular samples gamma from explicit hyperspherical angles.
var Angular = Decomposer{Gamma: SampleGammaAngular}

// Decompose splits (mean, sd) into len(p) children with the default decomposer.
func Decompose(mean, sd float64, p []float64, split Split, rng *rand.Rand) []Dist {
	return Default.Decompose(mean, sd, p, split, rng)
}

// Decompose returns children such that sum(p_i*mean_i) == mean and
// sum(p_i*(mean_i^2+sd_i^2)) - mean^2 == sd^2. It panics on a malformed weight
// vector or a split ratio outside [0, 1].
func (d Decomposer) Decompose(mean, sd float64, p []float64, split Split, rng *rand.Rand) []Dist {
	validateWeights(p)
	if split.Varphi2 < 0 || split.Varphi2 > 1 {
		panic(fmt.Sprintf("varphi2 %v outside [0, 1]", split.Varphi2))
	}

	k := len(p)
	if k == 1 {
		return []Dist{{Mean: mean, SD: sd}}
	}

	sampler := d.Gamma
	if sampler == nil {
		sampler = SampleGamma
	}
	gamma := sampler(p, split.Varphi2, rng)

	var eta []float64
	if split.Concentration > 0 {
		eta = SampleEtaDirichlet(k, split.Varphi2, split.Concentration, rng)
	} else {
		eta = SampleEta(k, split.Varphi2, rng)
	}

	children := make([]Dist, k)
	for i := range p {
		root := math.Sqrt(p[i])
		alpha := gamma[i] / root
		tau := eta[i] / root
		children[i] = Dist{Mean: alpha*sd + mean, SD: tau * sd}
	}
	return children
}

// ReverseToVarphi2 recovers the split ratio realised by equally weighted
// children with the given standard deviations under a parent of standard
// deviation sd: 1 - mean(childSDs^2)/sd^2. Negligible child variance returns 1.
func ReverseToVarphi2(sd float64, childSDs []float64) float64 {
	if len(childSDs) == 0 {
		panic("cannot recover varphi2 without children")
	}

	sumSq := floats.Dot(childSDs, childSDs)
	if sumSq < varianceFloor {
		return 1
	}
	return 1 - sumSq/(float64(len(childSDs))*sd*sd)
}

// Uniform returns k equal weights.
func Uniform(k int) []float64 {
	if k < 1 {
		panic(fmt.Sprintf("cannot weight %d children", k))
	}
	p := make([]float64, k)
	for i := range p {
		p[i] = 1 / float64(k)
	}
	return p
}

func validateWeights(p []float64) {
	if len(p) < 1 {
		panic("mixture needs at least one child")
	}
	for i, w := range p {
		if w <= 0 {
			panic(fmt.Sprintf("weight %d is %v, must be positive", i, w))
		}
	}
	if sum := floats.Sum(p); math.Abs(sum-1) > weightTolerance {
		panic(fmt.Sprintf("weights sum to %v, must sum to 1", sum))
	}
}
