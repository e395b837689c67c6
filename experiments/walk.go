package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/meta"
)

// RunRandomWalks plays walks uniformly random games from root. Every state
// passed on the way is written as a walk and a count record, and every walk's
// final depth as a terminal record.
func RunRandomWalks(root *game.Generic, walks int, rng *rand.Rand, sink metrics.WalkSink) error {
	for i := 0; i < walks; i++ {
		if i%meta.ProgressInterval == 0 {
			log.Info().Msgf("[%d/%d]", i, walks)
		}

		cur := root
		prevK := cur.K()
		for cur.HasMoves() {
			k := cur.K()
			err := sink.WriteWalk(metrics.NodeRecord{
				Mean:     cur.Mean(),
				SD:       cur.SD(),
				Depth:    cur.Depth(),
				K:        k,
				Varphi2:  cur.Varphi2(),
				Children: cur.Children(),
			})
			if err != nil {
				return fmt.Errorf("failed to write walk %d: %w", i, err)
			}
			if err := sink.WriteCount(metrics.CountRecord{Depth: cur.Depth(), K: k, Delta: k - prevK}); err != nil {
				return fmt.Errorf("failed to write walk %d: %w", i, err)
			}
			prevK = k
			cur = cur.Next(game.Move(rng.Intn(k)), rng)
		}

		if err := sink.WriteTerminal(cur.Depth()); err != nil {
			return fmt.Errorf("failed to write walk %d: %w", i, err)
		}
	}
	return nil
}
