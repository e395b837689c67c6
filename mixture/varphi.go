package mixture

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"mixtree/predictor"
)

// Features is the numeric context a split source sees for one node.
type Features struct {
	Mean    float64
	SD      float64
	Depth   int
	K       int
	Context float64
}

// Vector lays the features out as [mean, sd, depth, k, context].
func (f Features) Vector() []float64 {
	return []float64{f.Mean, f.SD, float64(f.Depth), float64(f.K), f.Context}
}

// Source decides how a node's variance is split between and within children.
type Source interface {
	Split(f Features, rng *rand.Rand) Split
}

// BetaPrior draws varphi2 from Beta(A, B) and ignores the features.
type BetaPrior struct {
	A float64
	B float64
}

func (b BetaPrior) Split(_ Features, rng *rand.Rand) Split {
	return Split{Varphi2: distuv.Beta{Alpha: b.A, Beta: b.B, Src: rng}.Rand()}
}

// Learned asks a model for a (location, scale) pair, resamples varphi2 from
// that Gaussian and clamps it to [0, 1]. A third positive output is used as
// the Dirichlet concentration of the residual.
type Learned struct {
	Model predictor.Model
}

func (l Learned) Split(f Features, rng *rand.Rand) Split {
	out := l.Model.Predict(f.Vector())
	if len(out) < 2 {
		panic(fmt.Sprintf("split model returned %d outputs, want at least 2", len(out)))
	}

	draw := distuv.Normal{Mu: out[0], Sigma: math.Abs(out[1]), Src: rng}.Rand()
	split := Split{Varphi2: math.Min(1, math.Max(0, draw))}
	if len(out) > 2 && out[2] > 0 {
		split.Concentration = out[2]
	}
	return split
}
