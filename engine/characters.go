// engine/characters.go
package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Character is a playable bot archetype. The stats here are tuning data, not
// logic — the resolver only ever reads them through CombatantState.
type Character struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	MaxHP               int                  `json:"max_hp"`
	MaxEnergy           int                  `json:"max_energy"`
	EnergyRegen         int                  `json:"energy_regen"`
	DamageModifiers     map[MoveType]float64 `json:"damage_modifiers"`
	BlockEffectiveness  float64              `json:"block_effectiveness"` // 0.5 = halves incoming damage while blocking
	SpecialCostModifier float64              `json:"special_cost_modifier"`
	Price               int                  `json:"price"`
	Tier                string               `json:"tier"`
}

const (
	TierLegacy    = "legacy"
	TierCommon    = "common"
	TierRare      = "rare"
	TierEpic      = "epic"
	TierLegendary = "legendary"
)

var titleCaser = cases.Title(language.English)

func displayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "-", " "))
}

func newCharacter(id, tier string, price, hp, energy, regen int, punch, kick, special, block, specialCost float64) Character {
	return Character{
		ID:          id,
		Name:        displayName(id),
		MaxHP:       hp,
		MaxEnergy:   energy,
		EnergyRegen: regen,
		DamageModifiers: map[MoveType]float64{
			MovePunch:   punch,
			MoveKick:    kick,
			MoveSpecial: special,
		},
		BlockEffectiveness:  block,
		SpecialCostModifier: specialCost,
		Price:               price,
		Tier:                tier,
	}
}

// Roster is the full archetype catalogue in fixed order. Order matters: the
// match generator draws fighters by index, so reordering this slice would
// change every seeded match.
var Roster = []Character{
	// Legacy (free)
	newCharacter("cyber-ninja", TierLegacy, 0, 96, 105, 20, 1.15, 1.05, 1.0, 0.6, 0.85),
	newCharacter("dag-warrior", TierLegacy, 0, 100, 100, 20, 1.05, 1.05, 1.05, 0.55, 1.0),
	newCharacter("block-bruiser", TierLegacy, 0, 115, 90, 20, 1.0, 1.2, 1.0, 0.45, 1.25),
	newCharacter("hash-hunter", TierLegacy, 0, 98, 105, 20, 1.0, 1.1, 1.2, 0.65, 1.0),

	// Common
	newCharacter("neon-wraith", TierCommon, 150, 92, 120, 25, 1.1, 1.1, 1.15, 0.45, 0.9),
	newCharacter("heavy-loader", TierCommon, 150, 135, 70, 15, 1.1, 1.0, 1.0, 0.4, 1.3),
	newCharacter("cyber-paladin", TierCommon, 150, 115, 95, 20, 1.05, 1.05, 1.05, 0.6, 1.0),
	newCharacter("razor-bot-7", TierCommon, 150, 95, 100, 22, 1.05, 1.05, 1.3, 0.5, 1.0),

	// Rare
	newCharacter("kitsune-09", TierRare, 800, 95, 110, 22, 1.05, 1.1, 1.1, 0.7, 0.9),
	newCharacter("gene-smasher", TierRare, 800, 115, 90, 20, 1.25, 1.25, 1.1, 0.25, 1.0),
	newCharacter("nano-brawler", TierRare, 800, 95, 105, 22, 1.2, 1.0, 1.1, 0.45, 1.0),
	newCharacter("sonic-striker", TierRare, 800, 105, 100, 18, 1.15, 1.15, 1.0, 0.5, 1.0),

	// Epic
	newCharacter("viperblade", TierEpic, 1500, 105, 100, 23, 1.15, 1.15, 1.1, 0.6, 1.0),
	newCharacter("bastion-hulk", TierEpic, 1500, 120, 115, 20, 1.0, 1.0, 1.1, 0.85, 0.9),
	newCharacter("technomancer", TierEpic, 1500, 95, 120, 25, 0.95, 0.95, 1.25, 0.55, 0.85),
	newCharacter("prism-duelist", TierEpic, 1500, 100, 110, 22, 1.05, 1.05, 1.2, 0.75, 0.9),

	// Legendary
	newCharacter("chrono-drifter", TierLegendary, 2500, 120, 105, 22, 1.1, 1.1, 1.25, 0.65, 1.0),
	newCharacter("scrap-goliath", TierLegendary, 2500, 115, 80, 25, 1.1, 1.1, 1.1, 0.5, 1.1),
	newCharacter("aeon-guard", TierLegendary, 2500, 120, 120, 24, 1.1, 1.1, 1.2, 0.65, 1.0),
	newCharacter("void-reaper", TierLegendary, 2500, 95, 120, 22, 1.25, 1.25, 1.25, 0.35, 1.0),
}

// CharacterByID looks up an archetype by its identifier.
func CharacterByID(id string) (Character, bool) {
	for _, c := range Roster {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// DrawCharacter picks a roster entry using the seeded generator, optionally
// excluding one ID so the two sides of a match never mirror each other.
func DrawCharacter(r *SeededRand, excludeID string) Character {
	pool := make([]Character, 0, len(Roster))
	for _, c := range Roster {
		if c.ID != excludeID {
			pool = append(pool, c)
		}
	}
	return pool[r.Intn(len(pool))]
}
