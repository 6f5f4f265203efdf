package agent

import (
	"errors"
	"fmt"
)

// Variant selects which reward shaper an agent learns with. Behaviourally
// distinct agents differ only in their Config; there is no type hierarchy.
type Variant string

const (
	VariantSimple       Variant = "simple"
	VariantMultiFactor  Variant = "multi-factor"
	VariantConservative Variant = "conservative"
)

func (v Variant) valid() bool {
	switch v {
	case VariantSimple, VariantMultiFactor, VariantConservative:
		return true
	}
	return false
}

// Config is the immutable parameter set for one agent. Reward caps live here
// rather than as constants because the documented per-variant values were
// never consistent; the presets below carry the values each variant shipped
// with.
type Config struct {
	Variant Variant `json:"variant"`

	// Exploration schedule.
	Epsilon      float64 `json:"epsilon"`
	EpsilonDecay float64 `json:"epsilon_decay"`
	EpsilonMin   float64 `json:"epsilon_min"`

	// Value update rule.
	LearningRate float64 `json:"learning_rate"`
	Gamma        float64 `json:"gamma"`

	// Reward clamps. Every term the shaper accumulates is bounded by one of
	// these before it is added; the final sum is clamped to [RewardMin,
	// RewardMax].
	WinRewardCap   float64 `json:"win_reward_cap"`
	LossPenaltyCap float64 `json:"loss_penalty_cap"`
	FoldPenalty    float64 `json:"fold_penalty"`
	ShapingTermCap float64 `json:"shaping_term_cap"`
	SurvivalBonus  float64 `json:"survival_bonus"`
	TrendBonus     float64 `json:"trend_bonus"`
	RewardMin      float64 `json:"reward_min"`
	RewardMax      float64 `json:"reward_max"`

	// Feature toggles.
	UseDoubleQ bool `json:"use_double_q"`
	UseReplay  bool `json:"use_replay"`

	// Action abstraction: raise sizes as pot fractions, strictly increasing.
	RaiseBuckets []float64 `json:"raise_buckets"`

	// Experience replay bounds.
	MemorySize      int `json:"memory_size"`
	ReplayBatchSize int `json:"replay_batch_size"`

	// State abstraction bin counts.
	HandStrengthBuckets int `json:"hand_strength_buckets"`
	PotOddsBuckets      int `json:"pot_odds_buckets"`

	// Persist the model every SnapshotEvery completed hands. Zero disables
	// the cadence; shutdown still checkpoints.
	SnapshotEvery int `json:"snapshot_every"`
}

// Validate ensures the configuration is safe to learn with.
func (c Config) Validate() error {
	if !c.Variant.valid() {
		return fmt.Errorf("unknown variant %q", c.Variant)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return errors.New("epsilon must be in [0,1]")
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return errors.New("epsilon min must be in [0, epsilon]")
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return errors.New("epsilon decay must be in (0,1]")
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return errors.New("learning rate must be in (0,1]")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return errors.New("gamma must be in [0,1]")
	}
	if c.WinRewardCap <= 0 {
		return errors.New("win reward cap must be > 0")
	}
	if c.LossPenaltyCap <= 0 {
		return errors.New("loss penalty cap must be > 0")
	}
	if c.ShapingTermCap <= 0 {
		return errors.New("shaping term cap must be > 0")
	}
	if c.RewardMin >= c.RewardMax {
		return errors.New("reward min must be below reward max")
	}
	if len(c.RaiseBuckets) == 0 {
		return errors.New("at least one raise bucket is required")
	}
	last := 0.0
	for i, v := range c.RaiseBuckets {
		if v <= 0 {
			return fmt.Errorf("raise bucket[%d] must be > 0", i)
		}
		if v <= last {
			return fmt.Errorf("raise bucket[%d] must be strictly increasing", i)
		}
		last = v
	}
	if c.UseReplay {
		if c.MemorySize <= 0 {
			return errors.New("memory size must be > 0 when replay is enabled")
		}
		if c.ReplayBatchSize <= 0 || c.ReplayBatchSize > c.MemorySize {
			return errors.New("replay batch size must be in (0, memory size]")
		}
	}
	if c.HandStrengthBuckets <= 0 {
		return errors.New("hand strength bucket count must be > 0")
	}
	if c.PotOddsBuckets <= 0 {
		return errors.New("pot odds bucket count must be > 0")
	}
	if c.SnapshotEvery < 0 {
		return errors.New("snapshot interval cannot be negative")
	}
	return nil
}

// SimpleConfig returns the original single-table learner: no replay, no
// double-Q, coarse shaping limited to the win/loss term and a fold penalty.
func SimpleConfig() Config {
	return Config{
		Variant:             VariantSimple,
		Epsilon:             0.2,
		EpsilonDecay:        0.995,
		EpsilonMin:          0.01,
		LearningRate:        0.1,
		Gamma:               0.95,
		WinRewardCap:        10.0,
		LossPenaltyCap:      1.0,
		FoldPenalty:         -0.1,
		ShapingTermCap:      0.5,
		SurvivalBonus:       0,
		TrendBonus:          0,
		RewardMin:           -10.0,
		RewardMax:           10.0,
		UseDoubleQ:          false,
		UseReplay:           false,
		RaiseBuckets:        []float64{0.33, 0.5, 1.0, 2.0},
		MemorySize:          1000,
		ReplayBatchSize:     16,
		HandStrengthBuckets: 10,
		PotOddsBuckets:      10,
		SnapshotEvery:       100,
	}
}

// MultiFactorConfig returns the aggressive learner: double-Q, replay, and
// per-decision shaping on top of a tighter win cap.
func MultiFactorConfig() Config {
	return Config{
		Variant:             VariantMultiFactor,
		Epsilon:             0.35,
		EpsilonDecay:        0.9997,
		EpsilonMin:          0.08,
		LearningRate:        0.015,
		Gamma:               0.95,
		WinRewardCap:        5.0,
		LossPenaltyCap:      1.0,
		FoldPenalty:         -0.1,
		ShapingTermCap:      0.5,
		SurvivalBonus:       0.05,
		TrendBonus:          0.1,
		RewardMin:           -5.0,
		RewardMax:           10.0,
		UseDoubleQ:          true,
		UseReplay:           true,
		RaiseBuckets:        []float64{0.4, 0.7, 1.2, 2.5},
		MemorySize:          10000,
		ReplayBatchSize:     32,
		HandStrengthBuckets: 5,
		PotOddsBuckets:      4,
		SnapshotEvery:       50,
	}
}

// ConservativeConfig returns the risk-averse learner: slower exploration,
// gentler learning rate, a larger survival bonus, and shaping that pays for
// passive play on weak holdings.
func ConservativeConfig() Config {
	return Config{
		Variant:             VariantConservative,
		Epsilon:             0.15,
		EpsilonDecay:        0.9998,
		EpsilonMin:          0.03,
		LearningRate:        0.008,
		Gamma:               0.92,
		WinRewardCap:        5.0,
		LossPenaltyCap:      1.5,
		FoldPenalty:         -0.1,
		ShapingTermCap:      0.5,
		SurvivalBonus:       0.1,
		TrendBonus:          0.05,
		RewardMin:           -3.0,
		RewardMax:           10.0,
		UseDoubleQ:          true,
		UseReplay:           true,
		RaiseBuckets:        []float64{0.3, 0.6, 0.8},
		MemorySize:          8000,
		ReplayBatchSize:     24,
		HandStrengthBuckets: 5,
		PotOddsBuckets:      4,
		SnapshotEvery:       50,
	}
}

// ConfigForVariant resolves a variant tag to its preset.
func ConfigForVariant(v Variant) (Config, error) {
	switch v {
	case VariantSimple:
		return SimpleConfig(), nil
	case VariantMultiFactor:
		return MultiFactorConfig(), nil
	case VariantConservative:
		return ConservativeConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown variant %q", v)
	}
}
