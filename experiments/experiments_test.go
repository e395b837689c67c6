package experiments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/searcher"
	"mixtree/simulator"
	"mixtree/utils"
)

// Five features in, a fixed (0.3, 0.05) out.
const varphiModel = `
inputs: 5
layers:
  - weights: [[0, 0, 0, 0, 0], [0, 0, 0, 0, 0]]
    bias: [0.3, 0.05]
`

// Two features in, rates (0.5, 1) and P(up) 0.4 out.
const deltaModel = `
inputs: 2
layers:
  - weights: [[0, 0], [0, 0], [0, 0]]
    bias: [0.5, 1, 0.4]
`

func smallSetup() Setup {
	cfg := game.DefaultConfig()
	cfg.RootChildren = 3
	cfg.NCAlpha = 1
	cfg.NCBeta = -0.5
	return Setup{Game: cfg, Seed: 11}
}

func writeModel(t *testing.T, name, body string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSetup(t *testing.T) {
	t.Run("no models", func(t *testing.T) {
		opts, err := smallSetup().Options()
		require.NoError(t, err)
		require.Empty(t, opts)
	})

	t.Run("learned models", func(t *testing.T) {
		setup := smallSetup()
		setup.VarphiModel = writeModel(t, "varphi.yaml", varphiModel)
		setup.DeltaModel = writeModel(t, "delta.yaml", deltaModel)

		opts, err := setup.Options()
		require.NoError(t, err)
		require.Len(t, opts, 2)

		root, err := setup.NewGame(1)
		require.NoError(t, err)
		require.Equal(t, 3, root.K())
		require.GreaterOrEqual(t, root.Varphi2(), 0.0)
		require.LessOrEqual(t, root.Varphi2(), 1.0)
	})

	t.Run("missing model", func(t *testing.T) {
		setup := smallSetup()
		setup.DeltaModel = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := setup.NewGame(1)
		require.Error(t, err)
	})

	t.Run("same seed same root", func(t *testing.T) {
		a, err := smallSetup().NewGame(5)
		require.NoError(t, err)
		b, err := smallSetup().NewGame(5)
		require.NoError(t, err)
		require.Equal(t, a.Children(), b.Children())
	})
}

func TestRunSearch(t *testing.T) {
	result, err := RunSearch(smallSetup(), searcher.WithIterations(100), searcher.WithMetrics())
	require.NoError(t, err)
	require.Equal(t, 100, result.Iterations)
	require.Equal(t, 100, result.Metric.Episodes)
	require.NotEmpty(t, result.BestSequence)
}

func TestRunPartialTree(t *testing.T) {
	sink := metrics.NewMemory()
	result, err := RunPartialTree(smallSetup(), sink,
		simulator.WithFrontier(20), simulator.WithRollouts(5), simulator.WithWorkers(2))
	require.NoError(t, err)
	require.Len(t, sink.Frontier, result.Frontier)
	require.NotEmpty(t, sink.Mixes)
	require.Equal(t, 0, sink.Mixes[len(sink.Mixes)-1].Depth, "Root is remixed last")
}

func TestRunRandomWalks(t *testing.T) {
	setup := smallSetup()
	root, err := setup.NewGame(3)
	require.NoError(t, err)

	sink := metrics.NewMemory()
	require.NoError(t, RunRandomWalks(root, 25, utils.NewRand(3, 0), sink))

	require.Len(t, sink.Terminals, 25, "One terminal record per walk")
	require.Len(t, sink.Counts, len(sink.Walks))

	var starts int
	for i, w := range sink.Walks {
		require.Positive(t, w.K, "Only states with moves are recorded")
		require.Len(t, w.Children, w.K)
		require.Equal(t, w.Depth, sink.Counts[i].Depth)
		if w.Depth == 0 {
			starts++
			require.Zero(t, sink.Counts[i].Delta, "A walk starts with no change")
		}
	}
	require.Equal(t, 25, starts)
}

func TestRunWalks(t *testing.T) {
	sink := metrics.NewMemory()
	require.NoError(t, RunWalks(smallSetup(), 5, sink))
	require.Len(t, sink.Terminals, 5)
}

func TestRunThroughputExperiment(t *testing.T) {
	records, err := RunThroughputExperiment(smallSetup(), []int{1, 2},
		simulator.WithFrontier(15), simulator.WithRollouts(3))
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 1, records[0].Workers)
	require.Equal(t, 2, records[1].Workers)
	require.Equal(t, records[0].Frontier, records[1].Frontier, "Growth does not depend on workers")
}
