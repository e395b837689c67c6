package simulator

import (
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/meta"
	"mixtree/utils"
)

// estimate sets every frontier node's statistics from s.rollouts playouts.
// The frontier is split into contiguous ranges, one per worker, and each
// worker draws from its own random stream. Workers write to disjoint nodes.
func (s *Simulator) estimate(t *tree, frontier []int) error {
	if len(frontier) == 0 {
		return nil
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		progress int
	)
	size := len(frontier)/s.workers + 1
	for w := 0; w < s.workers; w++ {
		start := w * size
		if start >= len(frontier) {
			break
		}
		end := min(start+size, len(frontier))
		rng := utils.NewRand(s.seed, w+1)

		g.Go(func() error {
			records := make([]metrics.FrontierRecord, 0, end-start)
			rewards := make([]float64, s.rollouts)
			for i := start; i < end; i++ {
				if done := i - start; done > 0 && done%meta.ProgressInterval == 0 {
					mu.Lock()
					progress += meta.ProgressInterval
					log.Info().Msgf("[%d/%d] (%.1f%%)", progress, len(frontier),
						float64(progress)/float64(len(frontier))*100)
					mu.Unlock()
				}

				n := &t.nodes[frontier[i]]
				for r := range rewards {
					rewards[r] = game.Playout(n.state, rng).CumulativeReward()
				}
				// Relative to the first reward so equal rewards give exactly zero sd
				shift := rewards[0]
				floats.AddConst(-shift, rewards)
				n.mean, n.sd = stat.PopMeanStdDev(rewards, nil)
				n.mean += shift
				records = append(records, metrics.FrontierRecord{
					Mean:  n.mean,
					SD:    n.sd,
					K:     len(n.state.LegalMoves()),
					Depth: n.state.Depth(),
				})
			}
			return s.sink.WriteFrontier(records)
		})
	}
	return g.Wait()
}
