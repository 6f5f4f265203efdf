package sim

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/qpoker/agent"
)

// Config is the complete training-run configuration.
type Config struct {
	Training TrainingSettings `hcl:"training,block"`
	Table    TableSettings    `hcl:"table,block"`
	Agents   []AgentBlock     `hcl:"agent,block"`
}

// TrainingSettings controls run length, determinism, and persistence cadence.
type TrainingSettings struct {
	Hands             int    `hcl:"hands,optional"`
	Seed              int64  `hcl:"seed,optional"`
	ModelDir          string `hcl:"model_dir,optional"`
	SnapshotEvery     int    `hcl:"snapshot_every,optional"`
	CheckpointSeconds int    `hcl:"checkpoint_seconds,optional"`
	Tables            int    `hcl:"tables,optional"`
	ProgressEvery     int    `hcl:"progress_every,optional"`
	LogLevel          string `hcl:"log_level,optional"`
}

// TableSettings shapes the synthetic table the agents train on.
type TableSettings struct {
	Players       int `hcl:"players,optional"`
	StartingChips int `hcl:"starting_chips,optional"`
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
}

// AgentBlock seats one learning agent. Seats not claimed by an agent block
// are filled with scripted callers. Model points at an existing model file to
// resume from; a missing file starts fresh.
type AgentBlock struct {
	Name    string `hcl:"name,label"`
	Variant string `hcl:"variant"`
	Model   string `hcl:"model,optional"`
}

// DefaultConfig returns a runnable single-table configuration: one agent of
// each variant against a scripted caller.
func DefaultConfig() *Config {
	return &Config{
		Training: TrainingSettings{
			Hands:             10000,
			Seed:              1,
			ModelDir:          "models",
			SnapshotEvery:     500,
			CheckpointSeconds: 60,
			Tables:            1,
			ProgressEvery:     100,
			LogLevel:          "info",
		},
		Table: TableSettings{
			Players:       4,
			StartingChips: 1000,
			SmallBlind:    5,
			BigBlind:      10,
		},
		Agents: []AgentBlock{
			{Name: "simple", Variant: string(agent.VariantSimple)},
			{Name: "multi", Variant: string(agent.VariantMultiFactor)},
			{Name: "conservative", Variant: string(agent.VariantConservative)},
		},
	}
}

// LoadConfig loads training configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values.
	def := DefaultConfig()
	if config.Training.Hands == 0 {
		config.Training.Hands = def.Training.Hands
	}
	if config.Training.Seed == 0 {
		config.Training.Seed = def.Training.Seed
	}
	if config.Training.ModelDir == "" {
		config.Training.ModelDir = def.Training.ModelDir
	}
	if config.Training.SnapshotEvery == 0 {
		config.Training.SnapshotEvery = def.Training.SnapshotEvery
	}
	if config.Training.CheckpointSeconds == 0 {
		config.Training.CheckpointSeconds = def.Training.CheckpointSeconds
	}
	if config.Training.Tables == 0 {
		config.Training.Tables = 1
	}
	if config.Training.ProgressEvery == 0 {
		config.Training.ProgressEvery = def.Training.ProgressEvery
	}
	if config.Training.LogLevel == "" {
		config.Training.LogLevel = def.Training.LogLevel
	}
	if config.Table.Players == 0 {
		config.Table.Players = def.Table.Players
	}
	if config.Table.StartingChips == 0 {
		config.Table.StartingChips = def.Table.StartingChips
	}
	if config.Table.SmallBlind == 0 {
		config.Table.SmallBlind = def.Table.SmallBlind
	}
	if config.Table.BigBlind == 0 {
		config.Table.BigBlind = def.Table.BigBlind
	}
	if len(config.Agents) == 0 {
		config.Agents = def.Agents
	}

	return &config, nil
}

// Validate validates the training configuration.
func (c *Config) Validate() error {
	if c.Training.Hands <= 0 {
		return fmt.Errorf("hands must be positive")
	}
	if c.Training.Tables < 1 {
		return fmt.Errorf("at least one table is required")
	}
	if c.Training.SnapshotEvery < 0 || c.Training.CheckpointSeconds < 0 {
		return fmt.Errorf("persistence cadence cannot be negative")
	}
	if c.Table.Players < 2 || c.Table.Players > 10 {
		return fmt.Errorf("players must be between 2 and 10")
	}
	if c.Table.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Table.BigBlind <= c.Table.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Table.StartingChips < c.Table.BigBlind*10 {
		return fmt.Errorf("starting chips must cover at least 10 big blinds")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}
	if len(c.Agents) > c.Table.Players {
		return fmt.Errorf("%d agents do not fit %d seats", len(c.Agents), c.Table.Players)
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent name is required")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent name %q", a.Name)
		}
		seen[a.Name] = true
		if _, err := agent.ConfigForVariant(agent.Variant(a.Variant)); err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}
	}
	return nil
}
