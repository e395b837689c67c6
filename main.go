package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mixtree/experiments"
	"mixtree/experiments/metrics"
	"mixtree/game"
	"mixtree/meta"
	"mixtree/searcher"
	"mixtree/simulator"
)

type Globals struct {
	Config      string `short:"c" help:"Path to the game config (TOML). Defaults are used when empty." type:"path"`
	Seed        uint64 `short:"s" help:"Master seed, 0 for a time based one." default:"0"`
	LogLevel    string `help:"Log level." default:"info" enum:"debug,info,warn,error"`
	VarphiModel string `help:"YAML weights of the learned varphi2 model." type:"path"`
	DeltaModel  string `help:"YAML weights of the learned child-count delta model." type:"path"`
	Out         string `short:"o" help:"Directory for CSV output." default:"out" type:"path"`
}

type CLI struct {
	Globals

	MCTS       MCTSCmd       `cmd:"mcts" help:"Search the generic game with MCTS/UCT"`
	PTS        PTSCmd        `cmd:"pts" help:"Estimate the root with uniform partial-tree growth"`
	DTS        DTSCmd        `cmd:"dts" help:"Estimate the root with shallowest-first deep-tree growth"`
	Walk       WalkCmd       `cmd:"walk" help:"Record uniformly random walks"`
	Throughput ThroughputCmd `cmd:"throughput" help:"Time the deep-tree simulator across worker counts"`
}

func (g *Globals) setup() (experiments.Setup, error) {
	cfg := game.DefaultConfig()
	if g.Config != "" {
		var err error
		if cfg, err = game.LoadConfig(g.Config); err != nil {
			return experiments.Setup{}, err
		}
	}
	return experiments.Setup{
		Game:        cfg,
		Seed:        g.Seed,
		VarphiModel: g.VarphiModel,
		DeltaModel:  g.DeltaModel,
	}, nil
}

// sink opens the CSV files of one run under the output directory.
func (g *Globals) sink(name string) (*metrics.Writer, error) {
	dir := filepath.Join(g.Out, name, time.Now().UTC().Format("20060102T150405"))
	w, err := metrics.CreateWriter(dir)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("writing statistics to %s", dir)
	return w, nil
}

type MCTSCmd struct {
	Iterations  int     `short:"n" help:"Number of iterations." default:"${iterations}"`
	Exploration float64 `help:"UCB1 exploration constant." default:"${exploration}"`
}

func (c *MCTSCmd) Run(g *Globals) error {
	setup, err := g.setup()
	if err != nil {
		return err
	}
	_, err = experiments.RunSearch(setup,
		searcher.WithIterations(c.Iterations),
		searcher.WithExploration(c.Exploration),
		searcher.WithMetrics(),
	)
	return err
}

type SimulateFlags struct {
	Frontier int `short:"f" help:"Frontier size to grow before estimating." default:"${frontier}"`
	Workers  int `short:"w" help:"Rollout workers, 0 for one per CPU." default:"0"`
}

type PTSCmd struct {
	SimulateFlags
	Rollouts int `short:"r" help:"Rollouts per frontier node." default:"${partial_rollouts}"`
}

func (c *PTSCmd) Run(g *Globals) error {
	return runSimulation(g, "pts", c.SimulateFlags, c.Rollouts, simulator.Uniform)
}

type DTSCmd struct {
	SimulateFlags
	Rollouts int `short:"r" help:"Rollouts per frontier node." default:"${deep_rollouts}"`
}

func (c *DTSCmd) Run(g *Globals) error {
	return runSimulation(g, "dts", c.SimulateFlags, c.Rollouts, simulator.Shallowest)
}

func runSimulation(g *Globals, name string, flags SimulateFlags, rollouts int, growth simulator.Growth) (err error) {
	setup, err := g.setup()
	if err != nil {
		return err
	}
	w, err := g.sink(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close statistics: %w", cerr)
		}
	}()

	_, err = experiments.RunPartialTree(setup, w,
		simulator.WithFrontier(flags.Frontier),
		simulator.WithRollouts(rollouts),
		simulator.WithWorkers(flags.Workers),
		simulator.WithGrowth(growth),
	)
	return err
}

type WalkCmd struct {
	Walks int `short:"n" help:"Number of walks." default:"${walks}"`
}

func (c *WalkCmd) Run(g *Globals) (err error) {
	setup, err := g.setup()
	if err != nil {
		return err
	}
	w, err := g.sink("walk")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close statistics: %w", cerr)
		}
	}()

	return experiments.RunWalks(setup, c.Walks, w)
}

type ThroughputCmd struct {
	Frontier int   `short:"f" help:"Frontier size to grow before estimating." default:"${frontier}"`
	Rollouts int   `short:"r" help:"Rollouts per frontier node." default:"${deep_rollouts}"`
	Workers  []int `short:"w" help:"Worker counts to compare." default:"1,2,4,8"`
}

func (c *ThroughputCmd) Run(g *Globals) error {
	setup, err := g.setup()
	if err != nil {
		return err
	}
	records, err := experiments.RunThroughputExperiment(setup, c.Workers,
		simulator.WithFrontier(c.Frontier),
		simulator.WithRollouts(c.Rollouts),
	)
	if err != nil {
		return err
	}
	for _, r := range records {
		log.Info().Msgf("workers=%d frontier=%d duration=%v nodes/s=%.1f", r.Workers, r.Frontier, r.Duration, r.NodesPerSecond())
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mixtree"),
		kong.Description("Synthetic moment-preserving game trees explored with MCTS and partial-tree rollouts"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"iterations":       strconv.Itoa(meta.Iterations),
			"exploration":      strconv.FormatFloat(meta.Exploration, 'g', -1, 64),
			"frontier":         strconv.Itoa(meta.FrontierCap),
			"partial_rollouts": strconv.Itoa(meta.PartialRollouts),
			"deep_rollouts":    strconv.Itoa(meta.DeepRollouts),
			"walks":            strconv.Itoa(meta.Walks),
		},
	)

	level, err := zerolog.ParseLevel(cli.LogLevel)
	ctx.FatalIfErrorf(err)
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
