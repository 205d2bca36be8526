// engine/resolve.go
package engine

import (
	"fmt"
	"math"
)

const (
	// GuardMeterMax is the saturation point. Hitting it breaks the guard:
	// the meter resets and the fighter is stunned for the next turn.
	GuardMeterMax = 100

	guardGainOnBlock   = 20
	guardGainOnKickHit = 30
	lowHealthBonus     = 1.2
	lowHealthThreshold = 0.30
	clashMultiplier    = 0.5
	criticalMultiplier = 1.5
	counterWinMult     = 1.0
	counterLoseMult    = 0.0
)

// CombatantState is the mutable per-fighter state threaded through a match.
// The resolver mutates it; everything else treats it as read-only.
type CombatantState struct {
	Character  Character
	HP         int
	Energy     int
	GuardMeter int
	IsStunned  bool
	RoundsWon  int
}

// NewCombatantState builds a fresh fighter at full health and energy.
func NewCombatantState(ch Character) *CombatantState {
	return &CombatantState{
		Character: ch,
		HP:        ch.MaxHP,
		Energy:    ch.MaxEnergy,
	}
}

// CanAffordMove reports whether the fighter has the energy to select a move.
// The resolver itself never rejects an unaffordable intent — the caller is
// trusted to only offer moves that pass this check.
func (c *CombatantState) CanAffordMove(m MoveType) bool {
	return c.Energy >= c.MoveCost(m)
}

// MoveCost is the energy price of a move for this fighter, with the
// archetype's special-cost modifier applied.
func (c *CombatantState) MoveCost(m MoveType) int {
	cost := MoveTable[m].EnergyCost
	if m == MoveSpecial {
		cost = int(math.Round(float64(cost) * c.Character.SpecialCostModifier))
	}
	return cost
}

func (c *CombatantState) damageModifier(m MoveType) float64 {
	if mod, ok := c.Character.DamageModifiers[m]; ok && mod > 0 {
		return mod
	}
	return 1.0
}

// TurnOutcome is everything a single resolved turn produces. It is fully
// determined by the two intents and the pre-call states — the resolver holds
// no randomness of its own.
type TurnOutcome struct {
	MoveA, MoveB         MoveType // resolved moves, post stun substitution
	DamageToA, DamageToB int
	RoundOver            bool
	MatchOver            bool
	RoundWinnerSide      int // 1, 2, or 0 when the round had no winner
	MatchWinnerSide      int
	Narrative            string
}

// ResolveTurn resolves one turn for the two fighters, mutating both states.
// bestOf is the round format (3 or 5); a fighter winning the majority ends
// the match.
func ResolveTurn(a, b *CombatantState, intentA, intentB MoveType, bestOf int) TurnOutcome {
	moveA := EffectiveMove(intentA, a.IsStunned)
	moveB := EffectiveMove(intentB, b.IsStunned)
	wasStunnedA, wasStunnedB := a.IsStunned, b.IsStunned

	// Damage is computed from pre-turn state on both sides so resolution
	// order cannot leak into the result.
	dmgToB := damageDealt(a, b, moveA, moveB)
	dmgToA := damageDealt(b, a, moveB, moveA)

	a.Energy = clampInt(a.Energy-a.MoveCost(moveA), 0, a.Character.MaxEnergy)
	b.Energy = clampInt(b.Energy-b.MoveCost(moveB), 0, b.Character.MaxEnergy)

	a.HP = clampInt(a.HP-dmgToA, 0, a.Character.MaxHP)
	b.HP = clampInt(b.HP-dmgToB, 0, b.Character.MaxHP)

	// Stun is consumed by the substitution above; guard breaks below may
	// re-apply it for the next turn.
	if wasStunnedA {
		a.IsStunned = false
	}
	if wasStunnedB {
		b.IsStunned = false
	}

	applyGuardMeter(a, moveA, moveB)
	applyGuardMeter(b, moveB, moveA)

	a.Energy = clampInt(a.Energy+a.Character.EnergyRegen, 0, a.Character.MaxEnergy)
	b.Energy = clampInt(b.Energy+b.Character.EnergyRegen, 0, b.Character.MaxEnergy)

	out := TurnOutcome{
		MoveA:     moveA,
		MoveB:     moveB,
		DamageToA: dmgToA,
		DamageToB: dmgToB,
	}

	if a.HP == 0 || b.HP == 0 {
		out.RoundOver = true
		switch {
		case a.HP == 0 && b.HP == 0:
			// Double KO: drawn round, nobody gets credit.
		case b.HP == 0:
			a.RoundsWon++
			out.RoundWinnerSide = 1
		default:
			b.RoundsWon++
			out.RoundWinnerSide = 2
		}

		needed := bestOf/2 + 1
		if a.RoundsWon >= needed {
			out.MatchOver = true
			out.MatchWinnerSide = 1
		} else if b.RoundsWon >= needed {
			out.MatchOver = true
			out.MatchWinnerSide = 2
		}
	}

	out.Narrative = buildNarrative(a, b, out)
	return out
}

// StartNewRound resets both fighters for the next round. Rounds won carry
// over; everything else goes back to full.
func StartNewRound(a, b *CombatantState) {
	for _, c := range []*CombatantState{a, b} {
		c.HP = c.Character.MaxHP
		c.Energy = c.Character.MaxEnergy
		c.GuardMeter = 0
		c.IsStunned = false
	}
}

// damageDealt computes the damage the attacker's move inflicts on the victim:
// base damage × archetype modifier × counter multiplier × block reduction ×
// low-health bonus, all composed multiplicatively.
func damageDealt(att, vic *CombatantState, attMove, vicMove MoveType) int {
	base := float64(MoveTable[attMove].Damage)
	if base == 0 {
		return 0
	}
	dmg := base * att.damageModifier(attMove)
	dmg *= counterMultiplier(attMove, vicMove)

	// Block halves (per archetype effectiveness) everything except a move
	// that counters block — kick breaks straight through the reduction.
	if vicMove == MoveBlock && !MoveCounters(attMove, MoveBlock) {
		dmg *= 1.0 - vic.Character.BlockEffectiveness
	}

	if float64(att.HP) < lowHealthThreshold*float64(att.Character.MaxHP) {
		dmg *= lowHealthBonus
	}

	return int(math.Round(dmg))
}

func counterMultiplier(attMove, vicMove MoveType) float64 {
	switch {
	case attMove == MoveSpecial && vicMove == MoveSpecial:
		return criticalMultiplier
	case attMove == vicMove:
		return clashMultiplier
	case MoveCounters(attMove, vicMove):
		return counterWinMult
	case MoveCounters(vicMove, attMove):
		return counterLoseMult
	default:
		return 1.0
	}
}

// applyGuardMeter advances one side's guard meter after a turn: blocking
// charges it, eating a kick charges it faster, and saturation breaks the
// guard (meter resets, fighter is stunned next turn).
func applyGuardMeter(c *CombatantState, ownMove, oppMove MoveType) {
	if ownMove == MoveBlock {
		c.GuardMeter += guardGainOnBlock
	}
	if oppMove == MoveKick {
		c.GuardMeter += guardGainOnKickHit
	}
	if c.GuardMeter >= GuardMeterMax {
		c.GuardMeter = 0
		c.IsStunned = true
	}
}

func buildNarrative(a, b *CombatantState, out TurnOutcome) string {
	nameA, nameB := a.Character.Name, b.Character.Name

	switch {
	case out.MatchOver && out.MatchWinnerSide == 1:
		return fmt.Sprintf("%s wins the match %d-%d!", nameA, a.RoundsWon, b.RoundsWon)
	case out.MatchOver && out.MatchWinnerSide == 2:
		return fmt.Sprintf("%s wins the match %d-%d!", nameB, b.RoundsWon, a.RoundsWon)
	case out.RoundOver && out.RoundWinnerSide == 1:
		return fmt.Sprintf("%s takes the round!", nameA)
	case out.RoundOver && out.RoundWinnerSide == 2:
		return fmt.Sprintf("%s takes the round!", nameB)
	case out.RoundOver:
		return "Double knockout — the round is a draw!"
	case out.MoveA == MoveSpecial && out.MoveB == MoveSpecial:
		return fmt.Sprintf("%s and %s collide specials — critical damage to both!", nameA, nameB)
	case out.MoveA == MoveStunned && out.MoveB == MoveStunned:
		return fmt.Sprintf("%s and %s are both reeling, stunned!", nameA, nameB)
	case out.MoveA == MoveStunned:
		return fmt.Sprintf("%s is stunned! %s lands a free %s for %d.", nameA, nameB, out.MoveB, out.DamageToA)
	case out.MoveB == MoveStunned:
		return fmt.Sprintf("%s is stunned! %s lands a free %s for %d.", nameB, nameA, out.MoveA, out.DamageToB)
	case out.MoveA == out.MoveB:
		return fmt.Sprintf("%s and %s clash with matching %ss.", nameA, nameB, out.MoveA)
	case MoveCounters(out.MoveA, out.MoveB):
		return fmt.Sprintf("%s's %s counters %s's %s for %d damage!", nameA, out.MoveA, nameB, out.MoveB, out.DamageToB)
	case MoveCounters(out.MoveB, out.MoveA):
		return fmt.Sprintf("%s's %s counters %s's %s for %d damage!", nameB, out.MoveB, nameA, out.MoveA, out.DamageToA)
	default:
		return fmt.Sprintf("%s throws a %s (%d dmg), %s answers with a %s (%d dmg).",
			nameA, out.MoveA, out.DamageToB, nameB, out.MoveB, out.DamageToA)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
