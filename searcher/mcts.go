package searcher

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/meta"
)

type Option func(mcts *MCTS)

type MCTS struct {
	iterations  int
	exploration float64
	metrics     metrics.Collector
	tree        *tree
}

// Result summarises one search.
type Result struct {
	BestReward   float64
	BestSequence []game.Move
	Iterations   int
	Nodes        int
	MaxDepth     int
	Duration     time.Duration
	Metric       metrics.SearchMetric
}

func (r Result) IterationsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Duration.Seconds()
}

// TerminalRevisits counts iterations that ended on an existing terminal node
// instead of constructing a new one.
func (r Result) TerminalRevisits() int {
	return r.Iterations - r.Nodes + 1
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		iterations:  meta.Iterations,
		exploration: meta.Exploration,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 {
		panic("Must specify a positive number of iterations")
	}
	return m
}

// Search runs the configured number of select, rollout and backup iterations
// from state. It is single threaded; rng drives every transition.
func (m *MCTS) Search(state game.State, rng *rand.Rand) Result {
	m.tree = newTree(state)
	m.metrics.Start()
	m.metrics.AddNode()

	start := time.Now()
	best := math.Inf(-1)
	var bestSequence []game.Move
	maxDepth := state.Depth()

	for i := 0; i < m.iterations; i++ {
		leaf, expanded := selectThenExpand(m.tree, 0, m.exploration, rng)
		if expanded {
			m.metrics.AddNode()
		}
		depth := m.tree.nodes[leaf].state.Depth()
		maxDepth = max(maxDepth, depth)
		m.metrics.ObserveDepth(depth)

		reward, tail := rollout(m.tree.nodes[leaf].state, rng)
		if reward > best {
			best = reward
			bestSequence = append(m.tree.sequence(leaf), tail...)
		}
		backup(m.tree, leaf, reward)
		m.metrics.AddEpisode()
	}

	result := Result{
		BestReward:   best,
		BestSequence: bestSequence,
		Iterations:   m.iterations,
		Nodes:        m.tree.size(),
		MaxDepth:     maxDepth,
		Duration:     time.Since(start),
		Metric:       m.metrics.Complete(),
	}

	log.Info().Msgf("High score: %v", result.BestReward)
	log.Info().Msgf("High scoring sequence of moves: %v", result.BestSequence)
	log.Info().Msgf("Constructed %d game tree nodes up to depth %d", result.Nodes, result.MaxDepth)
	log.Info().Msgf("Re-visited terminal nodes %d times (%.2f%% waste)",
		result.TerminalRevisits(), float64(result.TerminalRevisits())/float64(result.Iterations)*100)
	log.Info().Msgf("Took %v (%.1f iterations per second)", result.Duration, result.IterationsPerSecond())
	return result
}

// selectThenExpand descends from id until it can expand a node or reaches a
// terminal one. It returns the node to roll out from and whether it is new.
func selectThenExpand(t *tree, id int, c float64, rng *rand.Rand) (int, bool) {
	for !t.terminal(id) {
		if child := t.expand(id, rng); child != noNode {
			return child, true
		}
		id = t.bestChild(id, c)
	}
	return id, false
}

// rollout plays uniformly random moves to the end of the game and returns the
// final reward with the moves taken.
func rollout(state game.State, rng *rand.Rand) (float64, []game.Move) {
	var moves []game.Move
	for state.HasMoves() {
		legal := state.LegalMoves()
		move := legal[rng.Intn(len(legal))] // Random rollout policy
		state = state.Play(move, rng)
		moves = append(moves, move)
	}
	return state.CumulativeReward(), moves
}

func backup(t *tree, id int, reward float64) {
	for id != noNode {
		n := &t.nodes[id]
		n.visits++
		n.rewards += reward
		id = n.parent
	}
}
