// engine/simulate.go
package engine

import (
	"fmt"

	"bot-arena-system/models"

	"github.com/google/uuid"
)

// Simulate pre-computes an entire match from its seed. It runs synchronously
// at creation time and is the only blocking operation in the core, bounded by
// MaxSimulationTurns. Two calls with the same seed return identical ledgers.
//
// fighter1ID / fighter2ID may be empty, in which case archetypes are drawn
// from the seeded stream (the second draw excludes the first pick).
func Simulate(matchID, seed, fighter1ID, fighter2ID string) (*models.BotMatch, error) {
	r := NewSeededRand(seed)

	ch1, err := resolveFighter(r, fighter1ID, "")
	if err != nil {
		return nil, err
	}
	ch2, err := resolveFighter(r, fighter2ID, ch1.ID)
	if err != nil {
		return nil, err
	}

	a := NewCombatantState(ch1)
	b := NewCombatantState(ch2)

	match := &models.BotMatch{
		ID:                  matchID,
		Seed:                seed,
		Fighter1ID:          ch1.ID,
		Fighter1Name:        ch1.Name,
		Fighter2ID:          ch2.ID,
		Fighter2Name:        ch2.Name,
		Format:              DefaultBestOf,
		MaxHP1:              ch1.MaxHP,
		MaxEnergy1:          ch1.MaxEnergy,
		MaxHP2:              ch2.MaxHP,
		MaxEnergy2:          ch2.MaxEnergy,
		TurnDurationMs:      DefaultTurnDurationMs,
		BettingClosesAtTurn: BettingClosesAtTurn,
		Status:              models.MatchStatusActive,
	}

	round := 1
	for turnNum := 1; turnNum <= MaxSimulationTurns; turnNum++ {
		intentA := chooseIntent(r, a)
		intentB := chooseIntent(r, b)

		out := ResolveTurn(a, b, intentA, intentB, match.Format)

		turn := models.Turn{
			ID:         uuid.NewString(),
			MatchID:    matchID,
			TurnNumber: turnNum,
			Round:      round,
			Move1:      string(out.MoveA),
			Move2:      string(out.MoveB),
			HP1:        a.HP,
			HP2:        b.HP,
			Energy1:    a.Energy,
			Energy2:    b.Energy,
			Guard1:     a.GuardMeter,
			Guard2:     b.GuardMeter,
			Narrative:  out.Narrative,
			IsRoundEnd: out.RoundOver,
			IsMatchEnd: out.MatchOver,
		}
		if s := sideName(out.RoundWinnerSide); s != "" {
			turn.RoundWinner = &s
		}
		if s := sideName(out.MatchWinnerSide); s != "" {
			turn.MatchWinner = &s
		}
		match.Turns = append(match.Turns, turn)

		if out.MatchOver {
			winner := sideName(out.MatchWinnerSide)
			match.Winner = &winner
			if out.MatchWinnerSide == 1 {
				match.WinnerName = ch1.Name
			} else {
				match.WinnerName = ch2.Name
			}
			break
		}
		if out.RoundOver {
			round++
			StartNewRound(a, b)
		}
	}

	// Hitting the cap without a natural conclusion is a valid, degraded
	// ledger: the match still ships, with no winner. Downstream payout
	// logic treats it as a draw and refunds.
	if len(match.Turns) > 0 {
		last := &match.Turns[len(match.Turns)-1]
		if !last.IsMatchEnd {
			last.IsMatchEnd = true
			last.Narrative = fmt.Sprintf("%s — turn limit reached, no winner.", last.Narrative)
		}
	}

	match.TotalTurns = len(match.Turns)
	return match, nil
}

func resolveFighter(r *SeededRand, id, excludeID string) (Character, error) {
	if id == "" {
		return DrawCharacter(r, excludeID), nil
	}
	ch, ok := CharacterByID(id)
	if !ok {
		return Character{}, fmt.Errorf("unknown character: %s", id)
	}
	return ch, nil
}

// chooseIntent draws one affordable move from the seeded stream. Weight bands
// favour damage so matches converge well inside the turn cap; punch costs
// nothing and is the universal fallback. A stunned fighter consumes no draw —
// its move is substituted during resolution.
func chooseIntent(r *SeededRand, c *CombatantState) MoveType {
	if c.IsStunned {
		return FallbackMove
	}

	roll := r.Float64()
	switch {
	case roll < 0.35 && c.CanAffordMove(MoveSpecial):
		return MoveSpecial
	case roll < 0.70 && c.CanAffordMove(MoveKick):
		return MoveKick
	case roll < 0.80:
		return MoveBlock
	default:
		return FallbackMove
	}
}

func sideName(side int) string {
	switch side {
	case 1:
		return models.SideFighter1
	case 2:
		return models.SideFighter2
	default:
		return ""
	}
}
