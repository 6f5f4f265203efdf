package sim

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/qpoker/agent"
	"github.com/lox/qpoker/internal/randutil"
)

// AgentProgress is one agent's counters at a progress tick.
type AgentProgress struct {
	Name      string
	WinRate   float64
	AvgReward float64
	Epsilon   float64
	States    int
}

// Progress contains metadata emitted during long-running training runs.
type Progress struct {
	Hand   int
	Pot    int
	Agents []AgentProgress
}

// Trainer plays a fixed number of synthetic hands, persisting every agent's
// model on a hand cadence, a wall-clock cadence, and at exit.
type Trainer struct {
	cfg      *Config
	table    *Table
	agents   []*agent.Agent
	clock    quartz.Clock
	log      *log.Logger
	modelDir string
	hands    int
}

// TrainerOption customises construction; used by tests to inject a mock
// clock and capture logs.
type TrainerOption func(*Trainer)

// WithClock substitutes the wall clock used for checkpoint cadence.
func WithClock(c quartz.Clock) TrainerOption {
	return func(t *Trainer) { t.clock = c }
}

// WithLogger routes trainer logging somewhere other than the default logger.
func WithLogger(l *log.Logger) TrainerOption {
	return func(t *Trainer) { t.log = l }
}

// NewTrainer builds the table roster from configuration, resuming each agent
// from its model file when one exists. seedOffset distinguishes parallel
// tables sharing one configured seed.
func NewTrainer(cfg *Config, seedOffset int, opts ...TrainerOption) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		cfg:      cfg,
		clock:    quartz.NewReal(),
		log:      log.Default(),
		modelDir: cfg.Training.ModelDir,
	}
	for _, opt := range opts {
		opt(t)
	}
	if cfg.Training.Tables > 1 {
		t.modelDir = filepath.Join(cfg.Training.ModelDir, fmt.Sprintf("table-%d", seedOffset))
	}

	for i, block := range cfg.Agents {
		a, err := t.buildAgent(block, randutil.Derive(cfg.Training.Seed, seedOffset*len(cfg.Agents)+i))
		if err != nil {
			return nil, err
		}
		t.agents = append(t.agents, a)
	}

	tableSeed := randutil.Derive(cfg.Training.Seed, -(seedOffset + 1))
	t.table = NewTable(cfg.Table, t.agents, tableSeed)
	return t, nil
}

// buildAgent resumes from the agent's model file when present. A corrupt
// model is reported and replaced with a fresh one rather than aborting the
// run; any other read failure is fatal.
func (t *Trainer) buildAgent(block AgentBlock, seed int64) (*agent.Agent, error) {
	path := t.modelPath(block)
	a, err := agent.LoadModelFile(path)
	switch {
	case err == nil:
		t.log.Info("resumed agent from model", "agent", block.Name, "path", path,
			"hands", a.LearningStats().GameCount)
		return a, nil
	case errors.Is(err, agent.ErrCorruptModel):
		t.log.Warn("model unreadable, starting fresh", "agent", block.Name, "path", path, "err", err)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("agent %s: %w", block.Name, err)
	}

	cfg, err := agent.ConfigForVariant(agent.Variant(block.Variant))
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", block.Name, err)
	}
	return agent.New(block.Name, cfg, seed)
}

func (t *Trainer) modelPath(block AgentBlock) string {
	if block.Model != "" {
		return block.Model
	}
	return filepath.Join(t.modelDir, block.Name+".json")
}

// Agents returns the seated learning agents.
func (t *Trainer) Agents() []*agent.Agent {
	return t.agents
}

// Hands returns the number of hands completed by this trainer.
func (t *Trainer) Hands() int {
	return t.hands
}

// Run plays the configured number of hands, honouring context cancellation
// between hands. Models are saved every SnapshotEvery hands, every
// CheckpointSeconds of wall time, and once more before returning, including
// on cancellation.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	batch := t.cfg.Training.ProgressEvery
	if batch <= 0 {
		batch = 100
	}
	interval := time.Duration(t.cfg.Training.CheckpointSeconds) * time.Second
	lastCheckpoint := t.clock.Now()

	var runErr error
	for t.hands < t.cfg.Training.Hands {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		summary := t.table.PlayHand()
		t.hands++

		if every := t.cfg.Training.SnapshotEvery; every > 0 && t.hands%every == 0 {
			if err := t.saveModels(); err != nil {
				runErr = err
				break
			}
		}
		if interval > 0 {
			if now := t.clock.Now(); now.Sub(lastCheckpoint) >= interval {
				if err := t.saveModels(); err != nil {
					runErr = err
					break
				}
				lastCheckpoint = now
			}
		}

		if progress != nil && t.hands%batch == 0 {
			progress(t.progress(summary))
		}
	}

	if err := t.saveModels(); err != nil && runErr == nil {
		runErr = err
	}
	if progress != nil {
		progress(t.progress(HandSummary{}))
	}
	return runErr
}

func (t *Trainer) progress(summary HandSummary) Progress {
	p := Progress{Hand: t.hands, Pot: summary.Pot}
	for _, a := range t.agents {
		stats := a.LearningStats()
		p.Agents = append(p.Agents, AgentProgress{
			Name:      a.ID(),
			WinRate:   stats.WinRate,
			AvgReward: stats.AvgReward,
			Epsilon:   stats.Epsilon,
			States:    stats.ValueTableSize,
		})
	}
	return p
}

func (t *Trainer) saveModels() error {
	for i, a := range t.agents {
		path := t.modelPath(t.cfg.Agents[i])
		if err := agent.SaveModelFile(a, path); err != nil {
			return fmt.Errorf("saving model for %s: %w", a.ID(), err)
		}
	}
	t.log.Debug("models saved", "dir", t.modelDir, "hands", t.hands)
	return nil
}
