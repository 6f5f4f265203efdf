// Package sim drives learning agents through synthetic poker hands. It is a
// training harness, not a rules engine: hand strength is an abstract scalar
// that random-walks across streets, each seat acts once per street, and the
// strongest surviving hand takes the pot. The point is to feed agents a
// realistic stream of decision snapshots and outcomes at high throughput.
package sim

import (
	rand "math/rand/v2"

	"github.com/lox/qpoker/agent"
	"github.com/lox/qpoker/internal/randutil"
)

// seat is one table position: a learning agent, or a scripted filler that
// check-calls everything.
type seat struct {
	name  string
	agent *agent.Agent
}

// Table seats a fixed roster and deals synthetic hands to it. Stacks reset to
// the configured buy-in every hand so the learning signal stays stationary.
type Table struct {
	settings TableSettings
	seats    []seat
	rng      *rand.Rand
	button   int
	hands    int
}

// HandSummary reports one completed hand for progress output and tests.
type HandSummary struct {
	Winner string
	Pot    int
}

// NewTable seats the agents plus enough scripted fillers to reach the
// configured player count. Table randomness (hand strengths, street drift) is
// independent of the agents' own exploration streams.
func NewTable(settings TableSettings, agents []*agent.Agent, tableSeed int64) *Table {
	seats := make([]seat, 0, settings.Players)
	for _, a := range agents {
		seats = append(seats, seat{name: a.ID(), agent: a})
	}
	for i := len(seats); i < settings.Players; i++ {
		seats = append(seats, seat{name: fillerName(i)})
	}
	return &Table{
		settings: settings,
		seats:    seats,
		rng:      randutil.New(tableSeed),
		button:   len(seats) - 1, // first hand puts the button on seat 0
	}
}

func fillerName(i int) string {
	return "caller-" + string(rune('a'+i))
}

// Hands returns the number of completed hands.
func (t *Table) Hands() int {
	return t.hands
}

// PlayHand deals one synthetic hand: blinds, four streets with one action per
// surviving seat, then showdown. Every learning agent receives the hand
// result, win or lose.
func (t *Table) PlayHand() HandSummary {
	n := len(t.seats)
	t.button = (t.button + 1) % n

	strength := make([]float64, n)
	for i := range strength {
		strength[i] = t.rng.Float64()
	}

	chips := make([]int, n)
	for i := range chips {
		chips[i] = t.settings.StartingChips
	}
	folded := make([]bool, n)
	pot := 0

	sbSeat := (t.button + 1) % n
	bbSeat := (t.button + 2) % n
	streetBet := make([]int, n)
	post := func(s, amount int) {
		if amount > chips[s] {
			amount = chips[s]
		}
		chips[s] -= amount
		streetBet[s] += amount
		pot += amount
	}

	for street := agent.StreetPreflop; street <= agent.StreetRiver; street++ {
		currentBet := 0
		if street == agent.StreetPreflop {
			post(sbSeat, t.settings.SmallBlind)
			post(bbSeat, t.settings.BigBlind)
			currentBet = streetBet[bbSeat]
		} else {
			for i := range streetBet {
				streetBet[i] = 0
			}
		}

		for offset := 1; offset <= n; offset++ {
			s := (t.button + offset) % n
			if folded[s] || chips[s] == 0 {
				continue
			}
			active := t.activeCount(folded)
			if active < 2 {
				break
			}

			callAmount := currentBet - streetBet[s]
			if callAmount < 0 {
				callAmount = 0
			}
			gs := agent.GameState{
				Street:       street,
				Seat:         (s - t.button + n) % n,
				PlayerCount:  n,
				Opponents:    active - 1,
				Pot:          pot,
				CallAmount:   callAmount,
				MinRaise:     t.settings.BigBlind,
				Chips:        chips[s],
				HandStrength: strength[s],
			}

			act := t.decide(s, gs)
			if act.Type == agent.ActionFold {
				folded[s] = true
				continue
			}
			commit := act.Amount
			if commit > chips[s] {
				commit = chips[s]
			}
			chips[s] -= commit
			streetBet[s] += commit
			pot += commit
			if streetBet[s] > currentBet {
				currentBet = streetBet[s]
			}
		}

		if t.activeCount(folded) < 2 {
			break
		}

		// Board cards shift everyone's equity a little between streets.
		for i := range strength {
			strength[i] = clamp01(strength[i] + (t.rng.Float64()-0.5)*0.25)
		}
	}

	winner := t.showdown(strength, folded)
	chips[winner] += pot

	summary := HandSummary{Winner: t.seats[winner].name, Pot: pot}
	for i, st := range t.seats {
		if st.agent == nil {
			continue
		}
		winnings := 0
		if i == winner {
			winnings = pot
		}
		st.agent.LearnFromHandResult(agent.HandResult{
			WinnerID: summary.Winner,
			Winnings: winnings,
			State:    agent.GameState{Chips: chips[i]},
		})
	}
	t.hands++
	return summary
}

func (t *Table) decide(s int, gs agent.GameState) agent.Action {
	if a := t.seats[s].agent; a != nil {
		return a.Decide(gs)
	}
	// Scripted filler: check when free, otherwise call for whatever it has.
	if gs.CallAmount == 0 {
		return agent.Action{Type: agent.ActionCheck, SizeBucket: -1}
	}
	amount := gs.CallAmount
	if amount > gs.Chips {
		amount = gs.Chips
	}
	return agent.Action{Type: agent.ActionCall, SizeBucket: -1, Amount: amount}
}

func (t *Table) activeCount(folded []bool) int {
	n := 0
	for _, f := range folded {
		if !f {
			n++
		}
	}
	return n
}

// showdown picks the strongest surviving seat; ties go to the earliest seat
// so replays with the same seed stay deterministic.
func (t *Table) showdown(strength []float64, folded []bool) int {
	winner := -1
	for i := range t.seats {
		if folded[i] {
			continue
		}
		if winner == -1 || strength[i] > strength[winner] {
			winner = i
		}
	}
	return winner
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
