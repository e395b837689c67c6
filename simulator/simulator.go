package simulator

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/meta"
	"mixtree/utils"
)

type Option func(s *Simulator)

// Simulator estimates a root's reward distribution by growing a partial tree,
// rolling out from its frontier in parallel and remixing the estimates
// bottom-up.
type Simulator struct {
	frontier int
	rollouts int
	workers  int
	growth   Growth
	sink     metrics.TreeSink
	seed     uint64
}

type Result struct {
	Mean     float64
	SD       float64
	Nodes    int
	Frontier int
	Duration time.Duration
}

// WithFrontier caps how many frontier nodes are grown before estimation.
func WithFrontier(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.frontier = n
		}
	}
}

// WithRollouts sets the number of playouts per frontier node.
func WithRollouts(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.rollouts = n
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithGrowth(g Growth) Option {
	return func(s *Simulator) {
		s.growth = g
	}
}

func WithSink(sink metrics.TreeSink) Option {
	return func(s *Simulator) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithSeed fixes the master seed every random stream is derived from.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

func New(options ...Option) *Simulator {
	s := &Simulator{ // Default values
		frontier: meta.FrontierCap,
		rollouts: meta.PartialRollouts,
		workers:  runtime.NumCPU(),
		growth:   Shallowest,
		sink:     metrics.Discard,
	}
	for _, option := range options {
		option(s)
	}
	s.seed = utils.Seed(s.seed)
	if s.frontier < 1 || s.rollouts < 1 || s.workers < 1 {
		panic("Must specify a positive frontier, rollouts and workers")
	}
	return s
}

// Simulate runs growth, estimation and remix from state. The only errors are
// sink write failures.
func (s *Simulator) Simulate(state game.State) (Result, error) {
	start := time.Now()
	t := newTree(state)
	rng := utils.NewRand(s.seed, 0)

	var frontier []int
	if state.HasMoves() {
		switch s.growth {
		case Shallowest:
			frontier = growShallowest(t, s.frontier, rng)
		case Uniform:
			frontier = growUniform(t, s.frontier, rng)
		default:
			panic(fmt.Sprintf("unknown growth strategy %d", s.growth))
		}
	} else {
		t.resolve(0)
	}
	log.Debug().Msgf("Grew %d nodes with %d on the %s frontier", t.size(), len(frontier), s.growth)

	if err := s.estimate(t, frontier); err != nil {
		return Result{}, err
	}
	if err := s.remix(t); err != nil {
		return Result{}, err
	}

	root := t.nodes[0]
	log.Info().Msgf("Root statistics --- (mean: %v, stddev: %v)", root.mean, root.sd)
	return Result{
		Mean:     root.mean,
		SD:       root.sd,
		Nodes:    t.size(),
		Frontier: len(frontier),
		Duration: time.Since(start),
	}, nil
}
