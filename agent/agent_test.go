package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decisionStates() []GameState {
	return []GameState{
		{
			Street: StreetPreflop, Seat: 2, PlayerCount: 4, Opponents: 3,
			Pot: 30, CallAmount: 20, MinRaise: 20, Chips: 1000, HandStrength: 0.55,
		},
		{
			Street: StreetFlop, Seat: 2, PlayerCount: 4, Opponents: 2,
			Pot: 90, CallAmount: 0, MinRaise: 20, Chips: 980, HandStrength: 0.61,
		},
		{
			Street: StreetTurn, Seat: 2, PlayerCount: 4, Opponents: 1,
			Pot: 150, CallAmount: 60, MinRaise: 60, Chips: 950, HandStrength: 0.72,
		},
	}
}

// playHand runs the agent through the fixed decision sequence and resolves the
// hand, returning the actions taken. A fold cuts the hand short.
func playHand(a *Agent, win bool) []Action {
	var actions []Action
	for _, gs := range decisionStates() {
		act := a.Decide(gs)
		actions = append(actions, act)
		if act.Type == ActionFold {
			break
		}
	}
	winner := "other"
	if win {
		winner = a.ID()
	}
	a.LearnFromHandResult(HandResult{
		WinnerID: winner,
		Winnings: 150,
		State:    GameState{Chips: 1000},
	})
	return actions
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New("", SimpleConfig(), 1)
	require.Error(t, err)

	bad := SimpleConfig()
	bad.LearningRate = 0
	_, err = New("p1", bad, 1)
	require.Error(t, err)
}

func TestDecideRecordsTrajectory(t *testing.T) {
	a, err := New("p1", SimpleConfig(), 1)
	require.NoError(t, err)

	for i, gs := range decisionStates() {
		a.Decide(gs)
		require.Equal(t, i+1, a.TrajectoryLen())
	}

	// Earlier transitions link forward; only the last is terminal.
	for i, tr := range a.traj {
		last := i == len(a.traj)-1
		assert.Equal(t, last, tr.Terminal, "transition %d terminal flag", i)
		if !last {
			assert.Equal(t, a.traj[i+1].State, tr.NextState, "transition %d next state", i)
		}
	}
}

func TestDecideInvalidStateFailsClosed(t *testing.T) {
	a, err := New("p1", SimpleConfig(), 1)
	require.NoError(t, err)

	free := GameState{PlayerCount: 1, CallAmount: 0}
	require.Equal(t, ActionCheck, a.Decide(free).Type)

	priced := GameState{PlayerCount: 1, CallAmount: 50}
	require.Equal(t, ActionFold, a.Decide(priced).Type)

	// Neither decision was recorded.
	require.Equal(t, 0, a.TrajectoryLen())
	require.Equal(t, 0, a.LearningStats().GameCount)
}

func TestLearnWithoutDecisionsIsNoop(t *testing.T) {
	a, err := New("p1", SimpleConfig(), 1)
	require.NoError(t, err)

	before := a.Epsilon()
	a.LearnFromHandResult(HandResult{WinnerID: "p1", Winnings: 100})

	stats := a.LearningStats()
	require.Equal(t, 0, stats.GameCount)
	require.Equal(t, before, a.Epsilon())
	require.Equal(t, 0, stats.ValueTableSize)
}

func TestLearnUpdatesStatsAndClears(t *testing.T) {
	a, err := New("p1", SimpleConfig(), 1)
	require.NoError(t, err)

	epsBefore := a.Epsilon()
	playHand(a, true)

	stats := a.LearningStats()
	require.Equal(t, 1, stats.GameCount)
	require.Equal(t, 1, stats.WinCount)
	require.Equal(t, 1.0, stats.WinRate)
	require.Equal(t, stats.TotalReward, stats.AvgReward)
	require.Greater(t, stats.ValueTableSize, 0)
	require.Less(t, a.Epsilon(), epsBefore)
	require.Equal(t, 0, a.TrajectoryLen())

	playHand(a, false)
	stats = a.LearningStats()
	require.Equal(t, 2, stats.GameCount)
	require.Equal(t, 1, stats.WinCount)
	require.Equal(t, 0.5, stats.WinRate)
}

func TestAgentDeterministicForSeed(t *testing.T) {
	a, err := New("p1", MultiFactorConfig(), 99)
	require.NoError(t, err)
	b, err := New("p1", MultiFactorConfig(), 99)
	require.NoError(t, err)

	for hand := 0; hand < 50; hand++ {
		win := hand%3 == 0
		require.Equal(t, playHand(a, win), playHand(b, win), "hand %d diverged", hand)
	}
	require.Equal(t, a.LearningStats(), b.LearningStats())
}

func TestAgentReplayFillsAndCaps(t *testing.T) {
	cfg := MultiFactorConfig()
	cfg.MemorySize = 8
	cfg.ReplayBatchSize = 4
	a, err := New("p1", cfg, 7)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		playHand(a, i%2 == 0)
	}
	stats := a.LearningStats()
	require.Equal(t, cfg.MemorySize, stats.ReplaySize)
	require.Equal(t, 20, stats.GameCount)
}

func TestAgentWithoutReplayReportsZero(t *testing.T) {
	a, err := New("p1", SimpleConfig(), 1)
	require.NoError(t, err)
	playHand(a, true)
	require.Equal(t, 0, a.LearningStats().ReplaySize)
}
