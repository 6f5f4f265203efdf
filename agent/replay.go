package agent

// Transition records one decision inside a hand. Reward is filled in after
// the hand resolves; every transition in the same hand carries the same
// terminal reward. The scalar context fields are captured at decision time so
// reward shaping never needs the original snapshot back.
type Transition struct {
	State        StateKey `json:"state"`
	Action       Action   `json:"action"`
	Reward       float64  `json:"reward"`
	NextState    StateKey `json:"next_state"`
	Terminal     bool     `json:"terminal"`
	HandStrength float64  `json:"hand_strength"`
	PotOdds      float64  `json:"pot_odds"`
	BetRatio     float64  `json:"bet_ratio"` // committed chips relative to the stack behind
}

// Trajectory is the ordered decision record for one hand in progress. Owned
// exclusively by the agent playing the hand; empty between hands.
type Trajectory []Transition

// PassiveRatio returns the fraction of fold/check/call decisions.
func (tr Trajectory) PassiveRatio() float64 {
	if len(tr) == 0 {
		return 0
	}
	passive := 0
	for _, t := range tr {
		if t.Action.Type.Passive() {
			passive++
		}
	}
	return float64(passive) / float64(len(tr))
}

// Experience is a replay-buffer element: a transition plus the reward its
// hand resolved to.
type Experience struct {
	Transition Transition `json:"transition"`
	Reward     float64    `json:"reward"`
}

// ReplayBuffer is a capacity-bounded FIFO of past experiences. On overflow
// the oldest entry is evicted first.
type ReplayBuffer struct {
	capacity int
	items    []Experience
}

// NewReplayBuffer returns an empty buffer. Capacity must be positive.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ReplayBuffer{capacity: capacity}
}

// Add stores one experience, evicting the oldest entry when full.
func (b *ReplayBuffer) Add(t Transition, reward float64) {
	e := Experience{Transition: t, Reward: reward}
	if len(b.items) < b.capacity {
		b.items = append(b.items, e)
		return
	}
	copy(b.items, b.items[1:])
	b.items[len(b.items)-1] = e
}

// Sample draws up to n experiences uniformly at random without replacement.
// intn supplies the randomness so callers keep draw accounting in one place.
// An empty buffer yields an empty batch, never an error.
func (b *ReplayBuffer) Sample(n int, intn func(int) int) []Experience {
	if n > len(b.items) {
		n = len(b.items)
	}
	if n <= 0 {
		return nil
	}
	// Partial Fisher-Yates over an index view; the buffer itself keeps its
	// insertion order.
	idx := make([]int, len(b.items))
	for i := range idx {
		idx[i] = i
	}
	out := make([]Experience, n)
	for i := 0; i < n; i++ {
		j := i + intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = b.items[idx[i]]
	}
	return out
}

// Len returns the current occupancy.
func (b *ReplayBuffer) Len() int {
	return len(b.items)
}

// Cap returns the configured capacity.
func (b *ReplayBuffer) Cap() int {
	return b.capacity
}

// Snapshot copies the buffer contents in insertion order for persistence.
func (b *ReplayBuffer) Snapshot() []Experience {
	return append([]Experience(nil), b.items...)
}

// Restore replaces the contents with a persisted snapshot, truncating to the
// oldest entries the capacity can hold.
func (b *ReplayBuffer) Restore(items []Experience) {
	if len(items) > b.capacity {
		items = items[len(items)-b.capacity:]
	}
	b.items = append(b.items[:0], items...)
}

// Oldest returns the eviction candidate, for tests and diagnostics.
func (b *ReplayBuffer) Oldest() (Experience, bool) {
	if len(b.items) == 0 {
		return Experience{}, false
	}
	return b.items[0], true
}
