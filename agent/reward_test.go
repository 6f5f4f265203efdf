package agent

import (
	"math"
	"testing"
)

func TestSimpleShaperWinROI(t *testing.T) {
	shaper, err := NewRewardShaper(SimpleConfig())
	if err != nil {
		t.Fatal(err)
	}

	sc := &HandScratch{Invested: 100, Won: true, StartingChips: 1000}
	res := HandResult{WinnerID: "a", Winnings: 150, State: GameState{Chips: 1050}}

	got := shaper.Reward(Trajectory{}, res, sc)
	if math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("win reward = %v, want 1.5 (150/100)", got)
	}
}

func TestSimpleShaperWinCapped(t *testing.T) {
	cfg := SimpleConfig()
	shaper, _ := NewRewardShaper(cfg)

	sc := &HandScratch{Invested: 1, Won: true}
	res := HandResult{Winnings: 100000, State: GameState{Chips: 100000}}
	if got := shaper.Reward(Trajectory{}, res, sc); got != cfg.WinRewardCap {
		t.Fatalf("huge win reward = %v, want cap %v", got, cfg.WinRewardCap)
	}

	// Zero invested chips must not divide by zero.
	sc = &HandScratch{Invested: 0, Won: true}
	got := shaper.Reward(Trajectory{}, res, sc)
	if math.IsNaN(got) || math.IsInf(got, 0) || got > cfg.WinRewardCap {
		t.Fatalf("zero-invested win reward = %v, want finite and capped", got)
	}
}

func TestSimpleShaperLossBounded(t *testing.T) {
	cfg := SimpleConfig()
	shaper, _ := NewRewardShaper(cfg)

	// Whole stack lost: penalty bounded by the cap, never the chip count.
	sc := &HandScratch{Invested: 5000, Won: false}
	res := HandResult{State: GameState{Chips: 0}}
	got := shaper.Reward(Trajectory{}, res, sc)
	if got < -cfg.LossPenaltyCap {
		t.Fatalf("loss reward = %v, exceeds cap %v", got, cfg.LossPenaltyCap)
	}
	if got >= 0 {
		t.Fatalf("loss reward = %v, want negative", got)
	}
}

func TestSimpleShaperFoldOverrides(t *testing.T) {
	cfg := SimpleConfig()
	shaper, _ := NewRewardShaper(cfg)

	sc := &HandScratch{Invested: 200, Folded: true}
	res := HandResult{State: GameState{Chips: 800}}
	if got := shaper.Reward(Trajectory{}, res, sc); got != cfg.FoldPenalty {
		t.Fatalf("fold reward = %v, want flat penalty %v", got, cfg.FoldPenalty)
	}
}

func TestConservativeShaperWeakFold(t *testing.T) {
	shaper, _ := NewRewardShaper(ConservativeConfig())

	traj := Trajectory{{
		State:        testKey(1),
		Action:       Action{Type: ActionFold, SizeBucket: -1},
		HandStrength: 0.1,
		PotOdds:      3.0,
	}}
	sc := &HandScratch{Invested: 10, Folded: true, StartingChips: 1000}
	res := HandResult{WinnerID: "other", State: GameState{Chips: 990}}

	got := shaper.Reward(traj, res, sc)
	// Small bounded loss (10/1000), weak-fold bonus, fully passive line bonus.
	want := -0.01 + 0.08 + 0.05
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("weak preflop fold reward = %v, want %v", got, want)
	}
	if got <= 0 {
		t.Fatal("folding a weak hand cheaply should net positive shaping")
	}
}

func TestConservativeShaperPunishesWeakAggression(t *testing.T) {
	shaper, _ := NewRewardShaper(ConservativeConfig())

	passive := Trajectory{{
		Action:       Action{Type: ActionCheck, SizeBucket: -1},
		HandStrength: 0.3,
	}}
	aggressive := Trajectory{{
		Action:       Action{Type: ActionAllIn, SizeBucket: -1},
		HandStrength: 0.3,
	}}

	sc := func() *HandScratch { return &HandScratch{Invested: 100, StartingChips: 1000} }
	res := HandResult{WinnerID: "other", State: GameState{Chips: 900}}

	p := shaper.Reward(passive, res, sc())
	a := shaper.Reward(aggressive, res, sc())
	if a >= p {
		t.Fatalf("weak all-in scored %v, passive line %v; aggression should score lower", a, p)
	}
}

func TestConservativeShaperChipTrend(t *testing.T) {
	shaper, _ := NewRewardShaper(ConservativeConfig())
	traj := Trajectory{{Action: Action{Type: ActionCall, SizeBucket: -1}, HandStrength: 0.5}}

	up := shaper.Reward(traj,
		HandResult{WinnerID: "a", Winnings: 300, State: GameState{Chips: 1200}},
		&HandScratch{Invested: 100, Won: true, StartingChips: 1000})
	crash := shaper.Reward(traj,
		HandResult{WinnerID: "other", State: GameState{Chips: 300}},
		&HandScratch{Invested: 700, Won: false, StartingChips: 1000})

	if up <= 0 {
		t.Fatalf("doubled-up hand reward = %v, want positive", up)
	}
	if crash >= 0 {
		t.Fatalf("stack-crash hand reward = %v, want negative", crash)
	}
}

func TestMultiFactorShaperDecisionBonuses(t *testing.T) {
	cfg := MultiFactorConfig()
	shaper, _ := NewRewardShaper(cfg)

	base := Trajectory{{
		State:        StateKey{Opponents: 4},
		Action:       Action{Type: ActionCall, SizeBucket: -1},
		HandStrength: 0.9,
		PotOdds:      1.0,
	}}
	valueRaise := Trajectory{{
		State:        StateKey{Opponents: 4},
		Action:       Action{Type: ActionRaise, SizeBucket: 1},
		HandStrength: 0.9,
		PotOdds:      1.0,
	}}

	sc := func() *HandScratch { return &HandScratch{Invested: 100, Won: true, StartingChips: 1000} }
	res := HandResult{WinnerID: "a", Winnings: 200, State: GameState{Chips: 1100}}

	plain := shaper.Reward(base, res, sc())
	raised := shaper.Reward(valueRaise, res, sc())
	if raised-plain <= 0 {
		t.Fatalf("raising a strong hand scored %v vs %v; want a bonus", raised, plain)
	}
}

func TestMultiFactorShaperTrendBonus(t *testing.T) {
	cfg := MultiFactorConfig()
	shaper, _ := NewRewardShaper(cfg)

	traj := Trajectory{{Action: Action{Type: ActionCheck, SizeBucket: -1}, HandStrength: 0.5}}
	res := HandResult{WinnerID: "a", Winnings: 100, State: GameState{Chips: 1100}}

	cold := shaper.Reward(traj, res, &HandScratch{Invested: 50, Won: true, StartingChips: 1000})
	hot := shaper.Reward(traj, res, &HandScratch{
		Invested:      50,
		Won:           true,
		StartingChips: 1000,
		RecentRewards: []float64{0.5, 0.7, 0.2, 0.9, 0.4},
	})

	if math.Abs((hot-cold)-cfg.TrendBonus) > 1e-9 {
		t.Fatalf("trend bonus = %v, want %v", hot-cold, cfg.TrendBonus)
	}
}

func TestShapersAlwaysFinite(t *testing.T) {
	extremes := []HandScratch{
		{Invested: 0, Won: true},
		{Invested: math.MaxInt32, Won: false},
		{Invested: 1, Folded: true},
		{Invested: math.MaxInt32, Won: true, StartingChips: 1},
	}
	results := []HandResult{
		{Winnings: math.MaxInt32, State: GameState{Chips: 0}},
		{State: GameState{Chips: math.MaxInt32}},
	}
	traj := Trajectory{{Action: Action{Type: ActionAllIn, SizeBucket: -1}, HandStrength: 0.1}}

	for _, v := range []Variant{VariantSimple, VariantMultiFactor, VariantConservative} {
		cfg, err := ConfigForVariant(v)
		if err != nil {
			t.Fatal(err)
		}
		shaper, err := NewRewardShaper(cfg)
		if err != nil {
			t.Fatal(err)
		}
		for _, sc := range extremes {
			for _, res := range results {
				scCopy := sc
				got := shaper.Reward(traj, res, &scCopy)
				if math.IsNaN(got) || math.IsInf(got, 0) {
					t.Fatalf("%s shaper produced %v for %+v / %+v", v, got, sc, res)
				}
				if got < cfg.RewardMin || got > cfg.RewardMax {
					t.Fatalf("%s shaper produced %v outside [%v, %v]", v, got, cfg.RewardMin, cfg.RewardMax)
				}
			}
		}
	}
}
