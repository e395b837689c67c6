package experiments

import (
	"time"

	"github.com/rs/zerolog/log"

	"mixtree/experiments/metrics"
	"mixtree/simulator"
	"mixtree/utils"
)

// ThroughputRecord is the speed of one partial-tree run.
type ThroughputRecord struct {
	Workers  int
	Frontier int
	Duration time.Duration
}

// NodesPerSecond is the rollout throughput over frontier nodes.
func (r ThroughputRecord) NodesPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Frontier) / r.Duration.Seconds()
}

// RunThroughputExperiment repeats the same partial-tree simulation for each
// worker count. Every run grows the same tree because growth depends only on
// the seed.
func RunThroughputExperiment(setup Setup, workers []int, options ...simulator.Option) ([]ThroughputRecord, error) {
	setup.Seed = utils.Seed(setup.Seed)
	log.Info().Msg("starting throughput experiment...")

	records := make([]ThroughputRecord, 0, len(workers))
	for i, w := range workers {
		log.Info().Msgf("starting run %d of %d with %d workers...", i+1, len(workers), w)

		runOptions := append(append([]simulator.Option{}, options...), simulator.WithWorkers(w))
		result, err := RunPartialTree(setup, metrics.Discard, runOptions...)
		if err != nil {
			return nil, err
		}
		record := ThroughputRecord{Workers: w, Frontier: result.Frontier, Duration: result.Duration}
		records = append(records, record)

		log.Info().Msgf("completed run %d of %d: %.1f frontier nodes per second", i+1, len(workers), record.NodesPerSecond())
	}

	log.Info().Msg("completed throughput experiment")
	return records, nil
}
