package agent

import (
	"fmt"
	"math"

	"github.com/lox/qpoker/internal/randutil"
)

// recentRewardWindow bounds the reward history kept for trend shaping.
const recentRewardWindow = 32

// maxStoredPotOdds stands in for the infinite odds of a free check on
// recorded transitions. It must stay finite so transitions survive JSON
// serialisation; any value above every shaping threshold behaves the same.
const maxStoredPotOdds = 1000.0

// Agent is one reinforcement-learning poker player. It owns its value table,
// replay buffer, exploration schedule, trajectory, and statistics outright;
// nothing is shared between agent instances. Decide and LearnFromHandResult
// must be called sequentially by a single driver.
type Agent struct {
	id       string
	cfg      Config
	table    *ValueTable
	replay   *ReplayBuffer
	schedule *ExplorationSchedule
	shaper   RewardShaper
	rng      *randutil.Counting

	stats   AgentStats
	traj    Trajectory
	scratch HandScratch
	recent  []float64
}

// AgentStats accumulates across the agent's lifetime and is persisted with
// the model.
type AgentStats struct {
	TotalReward float64 `json:"total_reward"`
	GameCount   int     `json:"game_count"`
	WinCount    int     `json:"win_count"`
}

// LearningStats is the read-only snapshot exposed to the engine and offline
// tooling.
type LearningStats struct {
	TotalReward    float64
	GameCount      int
	WinCount       int
	WinRate        float64
	AvgReward      float64
	Epsilon        float64
	ValueTableSize int
	ReplaySize     int
}

// New constructs a fresh agent with zeroed learning state.
func New(id string, cfg Config, seed int64) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}
	shaper, err := NewRewardShaper(cfg)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		id:       id,
		cfg:      cfg,
		table:    NewValueTable(cfg.UseDoubleQ),
		schedule: NewExplorationSchedule(cfg),
		shaper:   shaper,
		rng:      randutil.NewCounting(seed),
	}
	if cfg.UseReplay {
		a.replay = NewReplayBuffer(cfg.MemorySize)
	}
	return a, nil
}

// ID returns the agent's identifier, matched against HandResult.WinnerID.
func (a *Agent) ID() string {
	return a.id
}

// Config returns the immutable configuration the agent was built with.
func (a *Agent) Config() Config {
	return a.cfg
}

// Decide selects an action for the snapshot, records the decision on the
// current trajectory, and returns it. Called once per decision point; no I/O
// happens here. A snapshot that fails validation gets the safest legal
// answer (check when free, otherwise fold) and is not recorded.
func (a *Agent) Decide(gs GameState) Action {
	if err := gs.Validate(); err != nil {
		if gs.CallAmount <= 0 {
			return Action{Type: ActionCheck, SizeBucket: -1}
		}
		return Action{Type: ActionFold, SizeBucket: -1}
	}

	if len(a.traj) == 0 {
		a.scratch = HandScratch{StartingChips: gs.Chips}
	}

	key := BuildStateKey(gs, a.cfg)
	legal := LegalActions(gs, a.cfg)

	explore := a.rng.Float64() < a.schedule.Epsilon()
	act := a.schedule.Select(a.table, key, legal, explore, a.rng.IntN)

	if n := len(a.traj); n > 0 {
		a.traj[n-1].NextState = key
		a.traj[n-1].Terminal = false
	}

	betRatio := 0.0
	if gs.Chips > 0 {
		betRatio = float64(act.Amount) / float64(gs.Chips)
	}
	potOdds := gs.PotOdds()
	if math.IsInf(potOdds, 1) || potOdds > maxStoredPotOdds {
		potOdds = maxStoredPotOdds
	}
	a.traj = append(a.traj, Transition{
		State:        key,
		Action:       act,
		Terminal:     true, // flipped if another decision follows
		HandStrength: gs.HandStrength,
		PotOdds:      potOdds,
		BetRatio:     betRatio,
	})

	a.scratch.Invested += act.Amount
	if act.Type == ActionFold {
		a.scratch.Folded = true
	}
	return act
}

// LearnFromHandResult folds the hand's outcome back into the value table.
// Every transition of the hand receives the same terminal reward and is
// updated in chronological order; replay-enabled agents additionally store
// the transitions and run one sampled batch of off-policy updates. Epsilon
// decays exactly once, then the trajectory and per-hand scratch are cleared.
// A call with an empty trajectory is a no-op.
func (a *Agent) LearnFromHandResult(res HandResult) {
	if len(a.traj) == 0 {
		return
	}

	a.scratch.Won = res.WinnerID == a.id
	a.scratch.RecentRewards = a.recent
	reward := a.shaper.Reward(a.traj, res, &a.scratch)

	a.stats.TotalReward += reward
	a.stats.GameCount++
	if a.scratch.Won {
		a.stats.WinCount++
	}

	for i := range a.traj {
		t := &a.traj[i]
		t.Reward = reward
		a.table.Update(t.State, t.Action, reward, t.NextState, t.Terminal,
			a.cfg.LearningRate, a.cfg.Gamma, a.pickTable())
	}

	if a.replay != nil {
		for _, t := range a.traj {
			a.replay.Add(t, reward)
		}
		if a.replay.Len() >= a.cfg.ReplayBatchSize {
			for _, e := range a.replay.Sample(a.cfg.ReplayBatchSize, a.rng.IntN) {
				// Stored rewards are terminal by construction: no bootstrap.
				a.table.Update(e.Transition.State, e.Transition.Action, e.Reward,
					StateKey{}, true, a.cfg.LearningRate, a.cfg.Gamma, a.pickTable())
			}
		}
	}

	a.schedule.Decay()

	a.recent = append(a.recent, reward)
	if len(a.recent) > recentRewardWindow {
		a.recent = a.recent[len(a.recent)-recentRewardWindow:]
	}

	a.traj = a.traj[:0]
	a.scratch = HandScratch{}
}

// pickTable draws which table a double-Q update lands in. Single-table mode
// consumes no randomness so the draw stream stays stable per configuration.
func (a *Agent) pickTable() bool {
	if !a.cfg.UseDoubleQ {
		return true
	}
	return a.rng.Float64() < 0.5
}

// Epsilon returns the current exploration probability.
func (a *Agent) Epsilon() float64 {
	return a.schedule.Epsilon()
}

// TrajectoryLen reports the number of decisions recorded in the hand in
// progress. Zero between hands.
func (a *Agent) TrajectoryLen() int {
	return len(a.traj)
}

// LearningStats returns a read-only snapshot of the agent's counters.
func (a *Agent) LearningStats() LearningStats {
	ls := LearningStats{
		TotalReward:    a.stats.TotalReward,
		GameCount:      a.stats.GameCount,
		WinCount:       a.stats.WinCount,
		Epsilon:        a.schedule.Epsilon(),
		ValueTableSize: a.table.States(),
	}
	if a.stats.GameCount > 0 {
		ls.WinRate = float64(a.stats.WinCount) / float64(a.stats.GameCount)
		ls.AvgReward = a.stats.TotalReward / float64(a.stats.GameCount)
	}
	if a.replay != nil {
		ls.ReplaySize = a.replay.Len()
	}
	return ls
}

// Values exposes the table's estimates for offline analysis.
func (a *Agent) Values() []float64 {
	return a.table.Values()
}
