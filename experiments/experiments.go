package experiments

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/mixture"
	"mixtree/predictor"
	"mixtree/searcher"
	"mixtree/simulator"
	"mixtree/utils"
)

// The root state draws from its own stream so the engines' streams, which
// start at 0, never overlap with it.
const rootStream = math.MaxInt32

// Setup describes the game every experiment runs on.
type Setup struct {
	Game game.Config
	Seed uint64
	// Optional YAML weight files. Empty paths keep the Beta prior and the
	// Poisson child-count process.
	VarphiModel string
	DeltaModel  string
}

// Options loads the configured predictors as game options.
func (s Setup) Options() ([]game.Option, error) {
	var opts []game.Option
	if s.VarphiModel != "" {
		m, err := predictor.LoadMLP(s.VarphiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load varphi model: %w", err)
		}
		opts = append(opts, game.WithSplitSource(mixture.Learned{Model: m}))
		log.Info().Msgf("using learned varphi2 from %s", s.VarphiModel)
	}
	if s.DeltaModel != "" {
		m, err := predictor.LoadMLP(s.DeltaModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load delta model: %w", err)
		}
		opts = append(opts, game.WithCounter(game.DeltaCounter{Model: m}))
		log.Info().Msgf("using learned child-count deltas from %s", s.DeltaModel)
	}
	return opts, nil
}

// NewGame builds the root state from seed.
func (s Setup) NewGame(seed uint64) (*game.Generic, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	root := game.NewGeneric(s.Game, utils.NewRand(seed, rootStream), opts...)
	log.Info().Msgf("root state: mean=%v sd=%v k=%d", root.Mean(), root.SD(), root.K())
	return root, nil
}

// RunSearch runs MCTS from a fresh root.
func RunSearch(setup Setup, options ...searcher.Option) (searcher.Result, error) {
	seed := utils.Seed(setup.Seed)
	log.Info().Msgf("starting search with seed %d...", seed)

	root, err := setup.NewGame(seed)
	if err != nil {
		return searcher.Result{}, err
	}
	result := searcher.NewMCTS(options...).Search(root, utils.NewRand(seed, 0))
	log.Info().Msg("completed search")
	return result, nil
}

// RunPartialTree runs the partial-tree simulator from a fresh root, writing
// its statistics to sink.
func RunPartialTree(setup Setup, sink metrics.TreeSink, options ...simulator.Option) (simulator.Result, error) {
	seed := utils.Seed(setup.Seed)
	log.Info().Msgf("starting partial-tree simulation with seed %d...", seed)

	root, err := setup.NewGame(seed)
	if err != nil {
		return simulator.Result{}, err
	}
	options = append(options, simulator.WithSeed(seed), simulator.WithSink(sink))
	result, err := simulator.New(options...).Simulate(root)
	if err != nil {
		return simulator.Result{}, fmt.Errorf("failed to simulate: %w", err)
	}
	log.Info().Msgf("completed simulation of %d nodes in %v", result.Nodes, result.Duration)
	return result, nil
}

// RunWalks runs random walks from a fresh root.
func RunWalks(setup Setup, walks int, sink metrics.WalkSink) error {
	seed := utils.Seed(setup.Seed)
	log.Info().Msgf("starting %d random walks with seed %d...", walks, seed)

	root, err := setup.NewGame(seed)
	if err != nil {
		return err
	}
	if err := RunRandomWalks(root, walks, utils.NewRand(seed, 0), sink); err != nil {
		return err
	}
	log.Info().Msg("completed random walks")
	return nil
}
