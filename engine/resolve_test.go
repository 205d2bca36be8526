package engine

import "testing"

// testCharacter is a neutral archetype: all modifiers 1.0, block halves.
func testCharacter(id string) Character {
	return Character{
		ID:        id,
		Name:      id,
		MaxHP:     100,
		MaxEnergy: 100,
		// No regen so energy assertions stay simple.
		EnergyRegen: 0,
		DamageModifiers: map[MoveType]float64{
			MovePunch:   1.0,
			MoveKick:    1.0,
			MoveSpecial: 1.0,
		},
		BlockEffectiveness:  0.5,
		SpecialCostModifier: 1.0,
	}
}

func testPair() (*CombatantState, *CombatantState) {
	return NewCombatantState(testCharacter("alpha")), NewCombatantState(testCharacter("beta"))
}

func TestResolveTurn_PunchCountersKick(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MovePunch, MoveKick, 3)

	if out.DamageToB != 10 {
		t.Fatalf("punch should land full 10 damage on the kicker, got %d", out.DamageToB)
	}
	if out.DamageToA != 0 {
		t.Fatalf("countered kick should deal 0, got %d", out.DamageToA)
	}
}

func TestResolveTurn_KickBreaksThroughBlock(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MoveKick, MoveBlock, 3)

	// Kick counters block, so the block halving must NOT apply.
	if out.DamageToB != 15 {
		t.Fatalf("kick should bypass block for full 15 damage, got %d", out.DamageToB)
	}
}

func TestResolveTurn_BlockCountersPunch(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MovePunch, MoveBlock, 3)

	if out.DamageToB != 0 {
		t.Fatalf("blocked punch should deal 0, got %d", out.DamageToB)
	}
	if out.DamageToA != 0 {
		t.Fatalf("block deals no damage, got %d", out.DamageToA)
	}
}

func TestResolveTurn_SpecialClashIsCritical(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MoveSpecial, MoveSpecial, 3)

	// 25 × 1.5 = 37.5, rounded half away from zero.
	if out.DamageToA != 38 || out.DamageToB != 38 {
		t.Fatalf("special clash should deal 38 to both, got %d / %d", out.DamageToA, out.DamageToB)
	}
}

func TestResolveTurn_SameMoveClashHalves(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MovePunch, MovePunch, 3)

	if out.DamageToA != 5 || out.DamageToB != 5 {
		t.Fatalf("punch clash should deal 5 to both, got %d / %d", out.DamageToA, out.DamageToB)
	}
}

func TestResolveTurn_BlockHalvesNeutralDamage(t *testing.T) {
	a, b := testPair()
	out := ResolveTurn(a, b, MoveSpecial, MoveBlock, 3)

	// Special is outside the counter cycle: 25 × 0.5 block = 12.5 → 13.
	if out.DamageToB != 13 {
		t.Fatalf("blocked special should deal 13, got %d", out.DamageToB)
	}
}

func TestResolveTurn_LowHealthBonus(t *testing.T) {
	a, b := testPair()
	a.HP = 29 // below 30% of 100

	out := ResolveTurn(a, b, MovePunch, MoveKick, 3)
	if out.DamageToB != 12 {
		t.Fatalf("low-health punch should deal 10 × 1.2 = 12, got %d", out.DamageToB)
	}
}

func TestResolveTurn_StunSubstitution(t *testing.T) {
	a, b := testPair()
	a.IsStunned = true

	out := ResolveTurn(a, b, MovePunch, MovePunch, 3)

	if out.MoveA != MoveStunned {
		t.Fatalf("stunned fighter's move should resolve as stunned, got %s", out.MoveA)
	}
	if out.DamageToB != 0 {
		t.Fatalf("stunned fighter should deal 0, got %d", out.DamageToB)
	}
	if out.DamageToA != 10 {
		t.Fatalf("opponent's punch should land full 10 on a stunned fighter, got %d", out.DamageToA)
	}
	if a.IsStunned {
		t.Fatal("stun should clear after the turn resolves")
	}
}

func TestEffectiveMove(t *testing.T) {
	if got := EffectiveMove(MoveKick, false); got != MoveKick {
		t.Fatalf("unstunned intent should pass through, got %s", got)
	}
	if got := EffectiveMove(MoveKick, true); got != MoveStunned {
		t.Fatalf("stunned intent should substitute, got %s", got)
	}
}

func TestResolveTurn_GuardBreakOnBlocking(t *testing.T) {
	a, b := testPair()
	b.GuardMeter = 80

	ResolveTurn(a, b, MoveSpecial, MoveBlock, 3)

	if b.GuardMeter != 0 {
		t.Fatalf("guard meter should reset on break, got %d", b.GuardMeter)
	}
	if !b.IsStunned {
		t.Fatal("guard break should stun for the next turn")
	}
}

func TestResolveTurn_GuardBreakOnKickHit(t *testing.T) {
	a, b := testPair()
	b.GuardMeter = 70

	ResolveTurn(a, b, MoveKick, MovePunch, 3)

	if b.GuardMeter != 0 {
		t.Fatalf("kick hit should push 70+30 to saturation and reset, got %d", b.GuardMeter)
	}
	if !b.IsStunned {
		t.Fatal("guard saturation should stun")
	}
}

func TestResolveTurn_EnergyCostApplied(t *testing.T) {
	a, b := testPair()

	ResolveTurn(a, b, MoveSpecial, MoveKick, 3)

	if a.Energy != 50 {
		t.Fatalf("special should cost 50 energy, fighter has %d", a.Energy)
	}
	if b.Energy != 75 {
		t.Fatalf("kick should cost 25 energy, fighter has %d", b.Energy)
	}
}

func TestMoveCost_SpecialModifier(t *testing.T) {
	ch := testCharacter("cheap-special")
	ch.SpecialCostModifier = 0.85
	c := NewCombatantState(ch)

	if got := c.MoveCost(MoveSpecial); got != 43 {
		t.Fatalf("special cost with 0.85 modifier should round 42.5 → 43, got %d", got)
	}
	c.Energy = 42
	if c.CanAffordMove(MoveSpecial) {
		t.Fatal("42 energy should not afford a 43-cost special")
	}
}

func TestResolveTurn_RoundAndMatchEnd(t *testing.T) {
	a, b := testPair()
	a.RoundsWon = 1
	b.HP = 5

	out := ResolveTurn(a, b, MovePunch, MovePunch, 3)

	if !out.RoundOver {
		t.Fatal("round should end when a fighter reaches 0 hp")
	}
	if out.RoundWinnerSide != 1 {
		t.Fatalf("fighter 1 should take the round, got side %d", out.RoundWinnerSide)
	}
	if !out.MatchOver || out.MatchWinnerSide != 1 {
		t.Fatalf("second round win should end a best-of-3, got over=%v side=%d", out.MatchOver, out.MatchWinnerSide)
	}
	if a.RoundsWon != 2 {
		t.Fatalf("winner should have 2 rounds, got %d", a.RoundsWon)
	}
}

func TestResolveTurn_DoubleKOIsDrawnRound(t *testing.T) {
	a, b := testPair()
	a.HP, b.HP = 5, 5

	out := ResolveTurn(a, b, MovePunch, MovePunch, 3)

	if !out.RoundOver {
		t.Fatal("double KO should still end the round")
	}
	if out.RoundWinnerSide != 0 {
		t.Fatalf("double KO should credit nobody, got side %d", out.RoundWinnerSide)
	}
	if a.RoundsWon != 0 || b.RoundsWon != 0 {
		t.Fatalf("drawn round must not increment rounds won: %d / %d", a.RoundsWon, b.RoundsWon)
	}
}

func TestStartNewRound_ResetsState(t *testing.T) {
	a, b := testPair()
	a.HP, a.Energy, a.GuardMeter, a.IsStunned, a.RoundsWon = 0, 10, 60, true, 1
	b.HP = 3

	StartNewRound(a, b)

	if a.HP != 100 || a.Energy != 100 || a.GuardMeter != 0 || a.IsStunned {
		t.Fatalf("fighter state should fully reset: %+v", a)
	}
	if a.RoundsWon != 1 {
		t.Fatalf("rounds won must survive the reset, got %d", a.RoundsWon)
	}
	if b.HP != 100 {
		t.Fatalf("both fighters reset, got hp %d", b.HP)
	}
}
