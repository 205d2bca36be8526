// engine/moves.go
package engine

// MoveType is one of the selectable fighter moves, plus the derived "stunned"
// state a fighter is forced into after a guard break. Stunned is never a
// chosen intent — it only ever appears as a resolved move.
type MoveType string

const (
	MovePunch   MoveType = "punch"
	MoveKick    MoveType = "kick"
	MoveBlock   MoveType = "block"
	MoveSpecial MoveType = "special"
	MoveStunned MoveType = "stunned"
)

// MoveStats is one row of the static move-economics table.
type MoveStats struct {
	Damage      int      `json:"damage"`
	EnergyCost  int      `json:"energy_cost"`
	Counters    MoveType `json:"counters,omitempty"` // the one move this move defeats ("" = none)
	AnimationMs int      `json:"animation_ms"`       // cosmetic only, consumed by the render client
}

// MoveTable holds the fixed economics for every move. Counter relationships
// form a single cycle (punch > kick > block > punch); special sits outside
// the cycle and only interacts through the special-vs-special critical.
var MoveTable = map[MoveType]MoveStats{
	MovePunch:   {Damage: 10, EnergyCost: 0, Counters: MoveKick, AnimationMs: 600},
	MoveKick:    {Damage: 15, EnergyCost: 25, Counters: MoveBlock, AnimationMs: 800},
	MoveBlock:   {Damage: 0, EnergyCost: 0, Counters: MovePunch, AnimationMs: 400},
	MoveSpecial: {Damage: 25, EnergyCost: 50, Counters: "", AnimationMs: 1200},
	MoveStunned: {Damage: 0, EnergyCost: 0, Counters: "", AnimationMs: 1000},
}

// SelectableMoves are the moves the intent picker may draw from, in fixed
// order so that draws stay deterministic.
var SelectableMoves = []MoveType{MovePunch, MoveKick, MoveBlock, MoveSpecial}

// FallbackMove is substituted whenever no drawn move is affordable. Punch
// costs nothing, so it is always legal.
const FallbackMove = MovePunch

// MoveCounters reports whether move a defeats move b.
func MoveCounters(a, b MoveType) bool {
	stats, ok := MoveTable[a]
	return ok && stats.Counters != "" && stats.Counters == b
}

// EffectiveMove maps a chosen intent to the move that actually resolves.
// A stunned fighter loses its intent and resolves the stunned move instead;
// the substitution is recorded on the turn so observers never see the
// original intent. Pure — the RNG draw happens elsewhere.
func EffectiveMove(intent MoveType, isStunned bool) MoveType {
	if isStunned {
		return MoveStunned
	}
	return intent
}
