package game

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"mixtree/predictor"
)

// CountContext describes the state whose branching factor is being drawn.
type CountContext struct {
	Depth    int
	Siblings int
	Mean     float64
	SD       float64
}

// Counter draws how many children a freshly reached state has.
type Counter interface {
	Count(c CountContext, rng *rand.Rand) int
}

// PoissonCounter draws from Poisson(exp(Alpha + depth*Beta)), redrawing while
// the count exceeds Max. Max of zero disables the cap.
type PoissonCounter struct {
	Alpha float64
	Beta  float64
	Max   int
}

func (p PoissonCounter) Count(c CountContext, rng *rand.Rand) int {
	dist := distuv.Poisson{Lambda: math.Exp(p.Alpha + float64(c.Depth)*p.Beta), Src: rng}
	for {
		k := int(dist.Rand())
		if p.Max == 0 || k <= p.Max {
			return k
		}
	}
}

// DeltaCounter moves the branching factor relative to the parent's. The model
// maps [depth, siblings] to [rate up, rate down, P(up)]; one Poisson step is
// taken in the chosen direction and the result is floored at zero.
type DeltaCounter struct {
	Model predictor.Model
}

func (d DeltaCounter) Count(c CountContext, rng *rand.Rand) int {
	out := d.Model.Predict([]float64{float64(c.Depth), float64(c.Siblings)})
	if len(out) != 3 {
		panic(fmt.Sprintf("delta model returned %d outputs, want 3", len(out)))
	}

	up := distuv.Bernoulli{P: math.Min(1, math.Max(0, out[2])), Src: rng}.Rand() == 1
	rate := out[1]
	if up {
		rate = out[0]
	}

	var step int
	if rate > 0 {
		step = int(distuv.Poisson{Lambda: rate, Src: rng}.Rand())
	}
	if !up {
		step = -step
	}
	return max(0, c.Siblings+step)
}
