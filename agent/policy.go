package agent

// ExplorationSchedule implements epsilon-greedy selection with multiplicative
// decay floored at the configured minimum.
type ExplorationSchedule struct {
	epsilon float64
	decay   float64
	min     float64
}

// NewExplorationSchedule builds the schedule from a validated config.
func NewExplorationSchedule(cfg Config) *ExplorationSchedule {
	return &ExplorationSchedule{
		epsilon: cfg.Epsilon,
		decay:   cfg.EpsilonDecay,
		min:     cfg.EpsilonMin,
	}
}

// Epsilon returns the current exploration probability.
func (s *ExplorationSchedule) Epsilon() float64 {
	return s.epsilon
}

// SetEpsilon restores a persisted epsilon, clamped into [min, 1].
func (s *ExplorationSchedule) SetEpsilon(v float64) {
	if v < s.min {
		v = s.min
	}
	if v > 1 {
		v = 1
	}
	s.epsilon = v
}

// Decay multiplies epsilon by the configured rate, never dropping below the
// floor. Called exactly once per completed hand.
func (s *ExplorationSchedule) Decay() {
	s.epsilon *= s.decay
	if s.epsilon < s.min {
		s.epsilon = s.min
	}
}

// Select picks an action from the legal set. When explore is true the choice
// is uniform; otherwise the action with the highest table estimate wins, ties
// broken by position in the legal ordering so repeated runs are reproducible.
func (s *ExplorationSchedule) Select(table *ValueTable, state StateKey, legal []Action, explore bool, intn func(int) int) Action {
	if len(legal) == 0 {
		return Action{Type: ActionFold, SizeBucket: -1}
	}
	if explore {
		return legal[intn(len(legal))]
	}

	best := legal[0]
	bestValue := table.Estimate(state, best)
	for _, a := range legal[1:] {
		if v := table.Estimate(state, a); v > bestValue {
			best = a
			bestValue = v
		}
	}
	return best
}
