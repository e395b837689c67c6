package game

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"mixtree/mixture"
)

// rules are shared by every state of one game and never modified after
// NewGeneric returns.
type rules struct {
	cfg        Config
	counter    Counter
	splits     mixture.Source
	decomposer mixture.Decomposer
}

type Option func(*rules)

// WithCounter replaces the Poisson child-count process for non-root states.
func WithCounter(c Counter) Option {
	return func(r *rules) {
		r.counter = c
	}
}

// WithSplitSource replaces the Beta prior on varphi2.
func WithSplitSource(s mixture.Source) Option {
	return func(r *rules) {
		r.splits = s
	}
}

func WithDecomposer(d mixture.Decomposer) Option {
	return func(r *rules) {
		r.decomposer = d
	}
}

// Generic is a synthetic game whose states carry a reward distribution that is
// recursively split among their children.
type Generic struct {
	rules    *rules
	mean     float64
	sd       float64
	depth    int
	siblings int
	reward   float64
	varphi2  float64
	children []mixture.Dist
}

// NewGeneric builds the root state. The root's branching factor is
// cfg.RootChildren, or a draw from the configured Poisson process when that is
// zero.
func NewGeneric(cfg Config, rng *rand.Rand, opts ...Option) *Generic {
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	r := &rules{
		cfg:        cfg,
		counter:    PoissonCounter{Alpha: cfg.NCAlpha, Beta: cfg.NCBeta, Max: cfg.MaxChildren},
		splits:     mixture.BetaPrior{A: cfg.BetaA, B: cfg.BetaB},
		decomposer: mixture.Default,
	}
	for _, opt := range opts {
		opt(r)
	}

	g := &Generic{rules: r, mean: cfg.RootMean, sd: cfg.RootSD}
	k := cfg.RootChildren
	if k == 0 {
		root := PoissonCounter{Alpha: cfg.NCAlpha, Beta: cfg.NCBeta, Max: cfg.MaxChildren}
		k = root.Count(CountContext{Mean: g.mean, SD: g.sd}, rng)
	}
	g.branch(k, rng)
	return g
}

// branch fixes the state's children. A state without children takes its
// single terminal reward draw here.
func (g *Generic) branch(k int, rng *rand.Rand) {
	if k < 0 {
		panic(fmt.Sprintf("cannot branch into %d children", k))
	}
	if k == 0 {
		g.reward += distuv.Normal{Mu: g.mean, Sigma: g.sd, Src: rng}.Rand()
		return
	}

	var split mixture.Split
	if k > 1 {
		split = g.rules.splits.Split(mixture.Features{
			Mean:    g.mean,
			SD:      g.sd,
			Depth:   g.depth,
			K:       k,
			Context: float64(g.siblings),
		}, rng)
	}
	g.varphi2 = split.Varphi2
	g.children = g.rules.decomposer.Decompose(g.mean, g.sd, mixture.Uniform(k), split, rng)
}

// Next returns the state reached by move. The receiver is left untouched.
func (g *Generic) Next(move Move, rng *rand.Rand) *Generic {
	if move < 0 || int(move) >= len(g.children) {
		panic(fmt.Sprintf("move %d out of range [0, %d)", move, len(g.children)))
	}

	child := g.children[move]
	next := &Generic{
		rules:    g.rules,
		mean:     child.Mean,
		sd:       child.SD,
		depth:    g.depth + 1,
		siblings: len(g.children),
		reward:   g.reward,
	}
	k := g.rules.counter.Count(CountContext{
		Depth:    next.depth,
		Siblings: next.siblings,
		Mean:     next.mean,
		SD:       next.sd,
	}, rng)
	next.branch(k, rng)
	return next
}

func (g *Generic) Play(move Move, rng *rand.Rand) State {
	return g.Next(move, rng)
}

func (g *Generic) LegalMoves() []Move {
	return lo.Times(len(g.children), func(i int) Move { return Move(i) })
}

func (g *Generic) HasMoves() bool {
	return len(g.children) > 0
}

func (g *Generic) CumulativeReward() float64 {
	return g.reward
}

func (g *Generic) Depth() int {
	return g.depth
}

func (g *Generic) Mean() float64 {
	return g.mean
}

func (g *Generic) SD() float64 {
	return g.sd
}

// Varphi2 is the split ratio used for this state's children. It is zero for
// states with fewer than two children.
func (g *Generic) Varphi2() float64 {
	return g.varphi2
}

func (g *Generic) K() int {
	return len(g.children)
}

func (g *Generic) Children() []mixture.Dist {
	return slices.Clone(g.children)
}

func (g *Generic) ChildMeans() []float64 {
	return lo.Map(g.children, func(d mixture.Dist, _ int) float64 { return d.Mean })
}

func (g *Generic) ChildSDs() []float64 {
	return lo.Map(g.children, func(d mixture.Dist, _ int) float64 { return d.SD })
}
