package agent

import (
	"fmt"
	"math"
)

// Street enumerates the betting round within a Texas Hold'em hand.
type Street uint8

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	default:
		return "unknown"
	}
}

// PositionClass is the coarse seat classification used by the state
// abstraction. Exact seat numbers carry too little signal per visit to be
// worth the table blow-up.
type PositionClass uint8

const (
	PositionEarly PositionClass = iota
	PositionMiddle
	PositionLate
	PositionBlind
)

func (p PositionClass) String() string {
	switch p {
	case PositionEarly:
		return "early"
	case PositionMiddle:
		return "middle"
	case PositionLate:
		return "late"
	case PositionBlind:
		return "blind"
	default:
		return "unknown"
	}
}

// Pressure buckets the current bet relative to the pot.
type Pressure uint8

const (
	PressureNone Pressure = iota
	PressureLow
	PressureHigh
)

func (p Pressure) String() string {
	switch p {
	case PressureNone:
		return "none"
	case PressureLow:
		return "low"
	case PressureHigh:
		return "high"
	default:
		return "unknown"
	}
}

// GameState is the per-decision snapshot supplied by the surrounding engine.
// Hand evaluation happens outside the core; HandStrength arrives as a
// precomputed scalar in [0,1].
type GameState struct {
	Street       Street
	Seat         int // seats from the button, 0 = button
	PlayerCount  int // seats dealt into the hand
	Opponents    int // opponents still contesting the pot
	Pot          int
	CallAmount   int // chips required to continue, 0 means check is free
	MinRaise     int
	Chips        int // remaining stack behind
	HandStrength float64
}

// Validate reports whether the snapshot is well-formed enough to act on.
func (gs GameState) Validate() error {
	if gs.Street > StreetRiver {
		return fmt.Errorf("invalid street %d", gs.Street)
	}
	if gs.PlayerCount < 2 {
		return fmt.Errorf("player count %d below minimum", gs.PlayerCount)
	}
	if gs.Seat < 0 || gs.Seat >= gs.PlayerCount {
		return fmt.Errorf("seat %d out of range for %d players", gs.Seat, gs.PlayerCount)
	}
	if gs.Opponents < 1 {
		return fmt.Errorf("opponent count %d below minimum", gs.Opponents)
	}
	if gs.Pot < 0 || gs.CallAmount < 0 || gs.MinRaise < 0 || gs.Chips < 0 {
		return fmt.Errorf("negative chip quantity in snapshot")
	}
	if math.IsNaN(gs.HandStrength) || gs.HandStrength < 0 || gs.HandStrength > 1 {
		return fmt.Errorf("hand strength %v outside [0,1]", gs.HandStrength)
	}
	return nil
}

// PotOdds returns the pot-to-call ratio for the snapshot. A free check has no
// price, reported as +Inf and bucketed into the most favourable bin.
func (gs GameState) PotOdds() float64 {
	if gs.CallAmount <= 0 {
		return math.Inf(1)
	}
	return float64(gs.Pot) / float64(gs.CallAmount)
}

// StateKey uniquely identifies the discretised situation a decision is made
// in. It must stay a pure function of the snapshot; otherwise value estimates
// for the "same" situation scatter across keys and never converge.
type StateKey struct {
	HandBucket    int           `json:"hand"`
	PotOddsBucket int           `json:"pot_odds"`
	Position      PositionClass `json:"position"`
	Opponents     int           `json:"opponents"`
	Street        Street        `json:"street"`
	Pressure      Pressure      `json:"pressure"`
}

func (k StateKey) String() string {
	return fmt.Sprintf("h%d_p%d_%s_o%d_%s_%s",
		k.HandBucket, k.PotOddsBucket, k.Position, k.Opponents, k.Street, k.Pressure)
}

const maxTrackedOpponents = 8

// BuildStateKey maps a snapshot into its canonical discrete key. Deterministic
// and total for any snapshot that passes Validate.
func BuildStateKey(gs GameState, cfg Config) StateKey {
	hand := int(gs.HandStrength * float64(cfg.HandStrengthBuckets))
	if hand >= cfg.HandStrengthBuckets {
		hand = cfg.HandStrengthBuckets - 1
	}
	if hand < 0 {
		hand = 0
	}

	odds := gs.PotOdds()
	oddsBucket := cfg.PotOddsBuckets - 1
	if !math.IsInf(odds, 1) {
		oddsBucket = int(odds)
		if oddsBucket >= cfg.PotOddsBuckets {
			oddsBucket = cfg.PotOddsBuckets - 1
		}
		if oddsBucket < 0 {
			oddsBucket = 0
		}
	}

	opponents := gs.Opponents
	if opponents < 1 {
		opponents = 1
	}
	if opponents > maxTrackedOpponents {
		opponents = maxTrackedOpponents
	}

	return StateKey{
		HandBucket:    hand,
		PotOddsBucket: oddsBucket,
		Position:      classifyPosition(gs.Seat, gs.PlayerCount),
		Opponents:     opponents,
		Street:        gs.Street,
		Pressure:      classifyPressure(gs.CallAmount, gs.Pot),
	}
}

// classifyPosition maps a button-relative seat into a coarse class. Seats 1
// and 2 post the blinds; the button and the seat before it act last. Heads-up
// the button is also the small blind and still acts first preflop, so it is
// treated as a blind seat.
func classifyPosition(seat, playerCount int) PositionClass {
	if playerCount <= 2 {
		return PositionBlind
	}
	switch {
	case seat == 1 || seat == 2:
		return PositionBlind
	case seat == 0 || seat == playerCount-1:
		return PositionLate
	default:
		// Remaining seats split evenly; earlier half acts first.
		if seat <= (playerCount+2)/2 {
			return PositionEarly
		}
		return PositionMiddle
	}
}

func classifyPressure(callAmount, pot int) Pressure {
	if callAmount <= 0 {
		return PressureNone
	}
	if pot <= 0 {
		return PressureHigh
	}
	if float64(callAmount)/float64(pot) <= 0.5 {
		return PressureLow
	}
	return PressureHigh
}
