package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/qpoker/agent"
	"github.com/lox/qpoker/internal/sim"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train TrainCmd `cmd:"" help:"train agents against a synthetic table"`
	Stats StatsCmd `cmd:"" help:"inspect a saved agent model"`
}

type TrainCmd struct {
	Config   string `help:"path to HCL training config" default:"train.hcl"`
	Hands    int    `help:"override configured hand count" default:"0"`
	Seed     int64  `help:"override configured seed" default:"0"`
	ModelDir string `help:"override configured model directory"`
	Tables   int    `help:"override number of parallel tables" default:"0"`
	Quiet    bool   `short:"q" help:"suppress the progress bar"`
}

type StatsCmd struct {
	Model string `arg:"" help:"path to a saved model file"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("qpoker"),
		kong.Description("tabular reinforcement-learning poker agents"),
		kong.UsageOnError(),
	)

	logger := setupLogger(cli.Debug)

	var err error
	switch ctx.Command() {
	case "train":
		err = cli.Train.Run(logger)
	case "stats <model>":
		err = cli.Stats.Run(logger)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func setupLogger(debug bool) *log.Logger {
	opts := log.Options{Level: log.InfoLevel}
	if debug {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, opts)
}

func (cmd *TrainCmd) Run(logger *log.Logger) error {
	cfg, err := sim.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.Hands > 0 {
		cfg.Training.Hands = cmd.Hands
	}
	if cmd.Seed != 0 {
		cfg.Training.Seed = cmd.Seed
	}
	if cmd.ModelDir != "" {
		cfg.Training.ModelDir = cmd.ModelDir
	}
	if cmd.Tables > 0 {
		cfg.Training.Tables = cmd.Tables
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting training run",
		"hands", cfg.Training.Hands,
		"tables", cfg.Training.Tables,
		"agents", len(cfg.Agents),
		"seed", cfg.Training.Seed,
		"model_dir", cfg.Training.ModelDir)

	var bar *progressbar.ProgressBar
	if !cmd.Quiet {
		bar = progressbar.NewOptions(cfg.Training.Hands*cfg.Training.Tables,
			progressbar.OptionSetDescription("training"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("hands"),
			progressbar.OptionClearOnFinish(),
		)
	}

	trainers := make([]*sim.Trainer, cfg.Training.Tables)
	for i := range trainers {
		trainers[i], err = sim.NewTrainer(cfg, i, sim.WithLogger(logger))
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, tr := range trainers {
		tr := tr
		shard := i
		g.Go(func() error {
			last := 0
			return tr.Run(gctx, func(p sim.Progress) {
				if bar != nil {
					bar.Add(p.Hand - last)
					last = p.Hand
				}
				// One shard's log line is representative enough.
				if shard == 0 {
					for _, a := range p.Agents {
						logger.Debug("progress",
							"hand", p.Hand,
							"agent", a.Name,
							"win_rate", fmt.Sprintf("%.3f", a.WinRate),
							"avg_reward", fmt.Sprintf("%.3f", a.AvgReward),
							"epsilon", fmt.Sprintf("%.3f", a.Epsilon),
							"states", a.States)
					}
				}
			})
		})
	}

	runErr := g.Wait()
	if bar != nil {
		bar.Finish()
	}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		logger.Warn("training interrupted, models checkpointed")
	default:
		return runErr
	}

	for _, tr := range trainers {
		for _, a := range tr.Agents() {
			stats := a.LearningStats()
			logger.Info("agent summary",
				"agent", a.ID(),
				"hands", stats.GameCount,
				"win_rate", fmt.Sprintf("%.3f", stats.WinRate),
				"avg_reward", fmt.Sprintf("%.3f", stats.AvgReward),
				"epsilon", fmt.Sprintf("%.3f", stats.Epsilon),
				"states", stats.ValueTableSize)
		}
	}
	return nil
}

var (
	statsTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statsLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18)
)

func (cmd *StatsCmd) Run(logger *log.Logger) error {
	a, err := agent.LoadModelFile(cmd.Model)
	if err != nil {
		return err
	}

	stats := a.LearningStats()
	cfg := a.Config()

	row := func(label string, value any) {
		fmt.Printf("%s %v\n", statsLabel.Render(label), value)
	}

	fmt.Println(statsTitle.Render(fmt.Sprintf("model %s (%s)", a.ID(), cfg.Variant)))
	row("hands", stats.GameCount)
	row("wins", stats.WinCount)
	row("win rate", fmt.Sprintf("%.3f", stats.WinRate))
	row("total reward", fmt.Sprintf("%.2f", stats.TotalReward))
	row("avg reward", fmt.Sprintf("%.4f", stats.AvgReward))
	row("epsilon", fmt.Sprintf("%.4f", stats.Epsilon))
	row("states", stats.ValueTableSize)
	row("replay entries", stats.ReplaySize)

	values := a.Values()
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	fmt.Println(statsTitle.Render("value distribution"))
	row("entries", len(values))
	row("mean", fmt.Sprintf("%.4f", stat.Mean(values, nil)))
	row("std dev", fmt.Sprintf("%.4f", stat.StdDev(values, nil)))
	row("p05", fmt.Sprintf("%.4f", stat.Quantile(0.05, stat.Empirical, values, nil)))
	row("median", fmt.Sprintf("%.4f", stat.Quantile(0.5, stat.Empirical, values, nil)))
	row("p95", fmt.Sprintf("%.4f", stat.Quantile(0.95, stat.Empirical, values, nil)))
	row("min", fmt.Sprintf("%.4f", values[0]))
	row("max", fmt.Sprintf("%.4f", values[len(values)-1]))
	return nil
}
