package agent

import "fmt"

// ActionType tags the legal moves at a decision point.
type ActionType uint8

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
)

func (t ActionType) String() string {
	switch t {
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionRaise:
		return "raise"
	case ActionAllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// Passive reports whether the action adds no new pressure to the pot.
func (t ActionType) Passive() bool {
	return t == ActionFold || t == ActionCheck || t == ActionCall
}

// Action is one legal move. Amount is the total chips the move commits at
// this decision point; SizeBucket indexes Config.RaiseBuckets for raises and
// is -1 otherwise.
type Action struct {
	Type       ActionType `json:"type"`
	SizeBucket int        `json:"size_bucket"`
	Amount     int        `json:"amount"`
}

// Key returns the stable identifier used for value-table lookups. Raise
// amounts are identified by bucket, not chip count, so the same logical move
// maps to the same entry across pot sizes.
func (a Action) Key() string {
	if a.Type == ActionRaise {
		return fmt.Sprintf("raise_b%d", a.SizeBucket)
	}
	return a.Type.String()
}

// LegalActions computes the ordered action set for a snapshot. Ordering is
// deterministic (fold, check/call, raises by ascending size, all-in) because
// greedy selection breaks value ties by first position.
func LegalActions(gs GameState, cfg Config) []Action {
	actions := make([]Action, 0, len(cfg.RaiseBuckets)+3)

	if gs.CallAmount > 0 {
		actions = append(actions, Action{Type: ActionFold, SizeBucket: -1})
	}

	if gs.CallAmount == 0 {
		actions = append(actions, Action{Type: ActionCheck, SizeBucket: -1})
	} else if gs.CallAmount <= gs.Chips {
		actions = append(actions, Action{Type: ActionCall, SizeBucket: -1, Amount: gs.CallAmount})
	}

	remaining := gs.Chips - gs.CallAmount
	if remaining > 0 {
		minRaise := gs.MinRaise
		if minRaise <= 0 {
			minRaise = 1
		}
		if remaining >= minRaise {
			prev := 0
			for i, frac := range cfg.RaiseBuckets {
				raise := int(frac * float64(gs.Pot))
				if raise < minRaise {
					raise = minRaise
				}
				if raise > remaining {
					raise = remaining
				}
				if raise <= prev {
					continue // collapsed into a smaller bucket
				}
				prev = raise
				actions = append(actions, Action{
					Type:       ActionRaise,
					SizeBucket: i,
					Amount:     gs.CallAmount + raise,
				})
			}
		}
		// The stack either caps the raise ladder or, when it cannot cover the
		// minimum raise, all-in is the only way to apply pressure.
		actions = append(actions, Action{Type: ActionAllIn, SizeBucket: -1, Amount: gs.Chips})
	}

	if len(actions) == 0 {
		// Short stack facing a bet it cannot call: fold stands alone.
		actions = append(actions, Action{Type: ActionFold, SizeBucket: -1})
	}
	return actions
}
