package agent

import (
	"math"
	"testing"
)

func testKey(hand int) StateKey {
	return StateKey{
		HandBucket:    hand,
		PotOddsBucket: 2,
		Position:      PositionLate,
		Opponents:     2,
		Street:        StreetFlop,
		Pressure:      PressureLow,
	}
}

func TestValueTableTerminalConvergence(t *testing.T) {
	table := NewValueTable(false)
	state := testKey(5)
	act := Action{Type: ActionCall, SizeBucket: -1}

	const reward = 1.5
	for i := 0; i < 200; i++ {
		table.Update(state, act, reward, StateKey{}, true, 0.1, 0.95, true)
	}
	got := table.Estimate(state, act)
	if math.Abs(got-reward) > 1e-6 {
		t.Fatalf("repeated terminal updates converged to %v, want %v", got, reward)
	}
}

func TestValueTableUnvisitedIsZero(t *testing.T) {
	table := NewValueTable(false)
	if got := table.Estimate(testKey(1), Action{Type: ActionFold, SizeBucket: -1}); got != 0 {
		t.Fatalf("unvisited estimate = %v, want 0", got)
	}
	if table.States() != 0 || table.Pairs() != 0 {
		t.Fatal("estimate lookup must not create entries")
	}
}

func TestValueTableBootstrap(t *testing.T) {
	table := NewValueTable(false)
	next := testKey(8)
	bestNext := Action{Type: ActionRaise, SizeBucket: 1}

	// Seed the next state with a known value, then bootstrap from it.
	for i := 0; i < 500; i++ {
		table.Update(next, bestNext, 2.0, StateKey{}, true, 0.2, 0.95, true)
	}

	state := testKey(4)
	act := Action{Type: ActionCall, SizeBucket: -1}
	table.Update(state, act, 0, next, false, 1.0, 0.5, true)

	want := 0.5 * table.Estimate(next, bestNext)
	if got := table.Estimate(state, act); math.Abs(got-want) > 1e-6 {
		t.Fatalf("bootstrapped value = %v, want %v", got, want)
	}
}

func TestDoubleQSingleUpdateBounded(t *testing.T) {
	// After one update in double mode the estimate averages the written table
	// with the untouched one, so it can reach at most alpha*reward/2.
	table := NewValueTable(true)
	state := testKey(3)
	act := Action{Type: ActionCall, SizeBucket: -1}

	const alpha, reward = 0.1, 10.0
	table.Update(state, act, reward, StateKey{}, true, alpha, 0.95, true)

	got := table.Estimate(state, act)
	want := alpha * reward / 2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("double-Q estimate after one update = %v, want %v", got, want)
	}
}

func TestDoubleQBootstrapsFromOtherTable(t *testing.T) {
	table := NewValueTable(true)
	next := testKey(9)
	nextAct := Action{Type: ActionAllIn, SizeBucket: -1}

	// Drive only the second table's value for the next state.
	for i := 0; i < 500; i++ {
		table.Update(next, nextAct, 4.0, StateKey{}, true, 0.2, 0.95, false)
	}

	state := testKey(2)
	act := Action{Type: ActionCheck, SizeBucket: -1}

	// Updating the first table must bootstrap from the second.
	table.Update(state, act, 0, next, false, 1.0, 1.0, true)
	if got := lookup(table.q, state.String(), act.Key()); math.Abs(got-4.0) > 1e-3 {
		t.Fatalf("first-table update bootstrapped %v, want ~4.0 from the other table", got)
	}

	// The reverse direction sees the first table's (empty) view of next.
	state2 := testKey(1)
	table.Update(state2, act, 0, next, false, 1.0, 1.0, false)
	if got := lookup(table.q2, state2.String(), act.Key()); got != 0 {
		t.Fatalf("second-table update bootstrapped %v, want 0", got)
	}
}

func TestValueTableVisitCounts(t *testing.T) {
	table := NewValueTable(false)
	state := testKey(6)
	act := Action{Type: ActionFold, SizeBucket: -1}

	for i := 0; i < 7; i++ {
		table.Update(state, act, -0.1, StateKey{}, true, 0.1, 0.95, true)
	}
	e := table.q[state.String()][act.Key()]
	if e.Visits != 7 {
		t.Fatalf("visit count = %d, want 7", e.Visits)
	}
	if len(table.Values()) != 1 {
		t.Fatalf("Values() returned %d entries, want 1", len(table.Values()))
	}
}
