package agent

import (
	"fmt"
	"math"
)

// HandResult is the end-of-hand record supplied by the surrounding engine.
// Ties and split pots are resolved upstream into a single winner and amount.
type HandResult struct {
	WinnerID string
	Winnings int
	State    GameState // final snapshot from this agent's perspective
}

// HandScratch carries the per-hand counters the shapers need: what the agent
// invested, whether it folded, the stack it started the hand with, and a
// bounded window of recent hand rewards for trend terms. Cleared between
// hands except for the reward window, which spans hands.
type HandScratch struct {
	Invested      int
	Folded        bool
	StartingChips int
	Won           bool
	RecentRewards []float64
}

func (sc *HandScratch) recentAverage(window int) (float64, bool) {
	if len(sc.RecentRewards) < window {
		return 0, false
	}
	sum := 0.0
	for _, r := range sc.RecentRewards[len(sc.RecentRewards)-window:] {
		sum += r
	}
	return sum / float64(window), true
}

// RewardShaper turns a completed trajectory and hand result into one scalar
// reward. Implementations must be total and always return a finite value.
type RewardShaper interface {
	Reward(traj Trajectory, res HandResult, sc *HandScratch) float64
}

// NewRewardShaper resolves the config's variant tag to its shaper.
func NewRewardShaper(cfg Config) (RewardShaper, error) {
	switch cfg.Variant {
	case VariantSimple:
		return simpleShaper{cfg: cfg}, nil
	case VariantMultiFactor:
		return multiFactorShaper{cfg: cfg}, nil
	case VariantConservative:
		return conservativeShaper{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown reward variant %q", cfg.Variant)
	}
}

// roiReward is the shared win term: return on invested chips, capped. Any
// overflow or non-finite intermediate collapses to the cap rather than
// propagating.
func roiReward(winnings, invested int, cap float64) float64 {
	roi := float64(winnings) / float64(maxInt(invested, 1))
	if math.IsInf(roi, 0) || math.IsNaN(roi) || roi > cap {
		return cap
	}
	return roi
}

// lossPenalty is the shared loss term: invested chips relative to the total
// stake, capped. Always non-negative; callers subtract it.
func lossPenalty(invested, chips int, cap float64) float64 {
	loss := float64(invested) / float64(maxInt(chips+invested, 1))
	if math.IsNaN(loss) || loss < 0 {
		return 0
	}
	return math.Min(cap, loss)
}

// clampTerm bounds a single shaping term before accumulation so no term can
// grow the sum unchecked.
func clampTerm(v, cap float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-cap, math.Min(cap, v))
}

func clampTotal(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(min, math.Min(max, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// simpleShaper pays return-on-investment on a win, a proportional stake loss
// otherwise, and a flat penalty that overrides both when the agent folded.
type simpleShaper struct {
	cfg Config
}

func (s simpleShaper) Reward(traj Trajectory, res HandResult, sc *HandScratch) float64 {
	if sc.Folded {
		return clampTotal(s.cfg.FoldPenalty, s.cfg.RewardMin, s.cfg.RewardMax)
	}
	var reward float64
	if sc.Won {
		reward = roiReward(res.Winnings, sc.Invested, s.cfg.WinRewardCap)
	} else {
		reward = -lossPenalty(sc.Invested, res.State.Chips, s.cfg.LossPenaltyCap)
	}
	return clampTotal(reward, s.cfg.RewardMin, s.cfg.RewardMax)
}

// multiFactorShaper layers per-decision shaping on top of the base win/loss
// term: pay for raising strong hands, folding weak ones, and calling when the
// price is right, plus survival and positive-trend bonuses.
type multiFactorShaper struct {
	cfg Config
}

func (s multiFactorShaper) Reward(traj Trajectory, res HandResult, sc *HandScratch) float64 {
	cfg := s.cfg
	reward := 0.0
	if sc.Won {
		reward += roiReward(res.Winnings, sc.Invested, cfg.WinRewardCap)
	} else {
		reward -= lossPenalty(sc.Invested, res.State.Chips, cfg.LossPenaltyCap)
	}

	for _, t := range traj {
		switch t.Action.Type {
		case ActionRaise:
			if t.HandStrength > 0.6 {
				reward += clampTerm(0.1, cfg.ShapingTermCap)
			}
			if t.State.Opponents <= 2 {
				reward += clampTerm(0.02, cfg.ShapingTermCap)
			}
		case ActionFold:
			if t.HandStrength < 0.2 && t.PotOdds < 1.5 {
				reward += clampTerm(0.05, cfg.ShapingTermCap)
			}
		case ActionCall:
			if t.HandStrength > 0.3 && t.HandStrength < 0.6 && t.PotOdds > 2.0 {
				reward += clampTerm(0.05, cfg.ShapingTermCap)
			}
		}
	}

	if !sc.Folded && res.State.Chips > 0 {
		reward += clampTerm(cfg.SurvivalBonus, cfg.ShapingTermCap)
	}
	if avg, ok := sc.recentAverage(5); ok && avg > 0 {
		reward += clampTerm(cfg.TrendBonus, cfg.ShapingTermCap)
	}
	return clampTotal(reward, cfg.RewardMin, cfg.RewardMax)
}

// conservativeShaper rewards passive lines on weak holdings and value raises
// on strong ones, punishes aggression without the goods, and adds chip-trend
// and consistency terms on top of a larger survival bonus.
type conservativeShaper struct {
	cfg Config
}

func (s conservativeShaper) Reward(traj Trajectory, res HandResult, sc *HandScratch) float64 {
	cfg := s.cfg
	reward := 0.0
	if sc.Won {
		reward += roiReward(res.Winnings, sc.Invested, cfg.WinRewardCap)
	} else {
		reward -= lossPenalty(sc.Invested, res.State.Chips, cfg.LossPenaltyCap)
	}

	for _, t := range traj {
		hs := t.HandStrength
		switch t.Action.Type {
		case ActionFold:
			if hs < 0.25 {
				reward += clampTerm(0.08, cfg.ShapingTermCap)
			}
		case ActionCheck:
			if hs < 0.4 {
				reward += clampTerm(0.05, cfg.ShapingTermCap)
			}
		case ActionCall:
			if hs >= 0.2 && hs <= 0.6 && t.PotOdds >= 2.5 {
				reward += clampTerm(0.06, cfg.ShapingTermCap)
			}
		case ActionRaise:
			if hs >= 0.7 {
				reward += clampTerm(0.12, cfg.ShapingTermCap)
			} else if hs < 0.4 {
				reward -= clampTerm(0.1, cfg.ShapingTermCap)
			}
		case ActionAllIn:
			if hs < 0.8 {
				reward -= clampTerm(0.15, cfg.ShapingTermCap)
			}
		}
	}

	if !sc.Folded && res.State.Chips > 0 {
		reward += clampTerm(cfg.SurvivalBonus, cfg.ShapingTermCap)
	}

	if sc.StartingChips > 0 {
		ratio := float64(res.State.Chips) / float64(sc.StartingChips)
		if ratio > 1.1 {
			reward += clampTerm(0.05, cfg.ShapingTermCap)
		} else if ratio < 0.5 {
			reward -= clampTerm(0.1, cfg.ShapingTermCap)
		}
	}

	if traj.PassiveRatio() >= 0.7 {
		reward += clampTerm(0.05, cfg.ShapingTermCap)
	}

	return clampTotal(reward, cfg.RewardMin, cfg.RewardMax)
}
