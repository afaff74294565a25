package state

import (
	"strings"

	"github.com/kelana/nightmarket/types"
)

// Static world content: the night market's map, its residents, and what
// hunts its alleys. Quest and dialog content is loaded separately.

func worldMap() map[string]types.Location {
	return map[string]types.Location{
		"moon_gate":     {Name: "Moon Gate", Exits: []string{"spirit_bazaar", "exit_road"}},
		"spirit_bazaar": {Name: "Spirit Bazaar", Exits: []string{"mask_stalls", "shadow_lane", "oracle_tent", "moon_gate"}},
		"mask_stalls":   {Name: "Mask Stalls", Exits: []string{"spirit_bazaar"}},
		"shadow_lane":   {Name: "Shadow Lane", Exits: []string{"spirit_bazaar"}},
		"oracle_tent":   {Name: "Oracle Tent", Exits: []string{"spirit_bazaar"}},
		"exit_road":     {Name: "Old Road", Exits: []string{"moon_gate"}},
	}
}

func worldNPCs() map[string]types.NPC {
	return map[string]types.NPC{
		"gate_twins":    {ID: "gate_twins", Name: "Gate Twins", Location: "moon_gate"},
		"maskmonger":    {ID: "maskmonger", Name: "Maskmonger", Location: "mask_stalls"},
		"shadow_broker": {ID: "shadow_broker", Name: "The Shadow Broker", Location: "shadow_lane"},
		"candle_scribe": {ID: "candle_scribe", Name: "Candle Scribe", Location: "oracle_tent"},
	}
}

func worldEnemies() map[string][]types.EnemyTemplate {
	return map[string][]types.EnemyTemplate{
		"moon_gate": {
			{ID: "gate_wisp", Name: "Gate Wisp", BaseHP: 10, Atk: 2, Dex: 2,
				Reward:      types.Reward{Reputation: 1},
				StatusOnHit: types.EffectPoison, StatusChance: 0.2},
		},
		"spirit_bazaar": {
			{ID: "lantern_moth", Name: "Lantern Moth", BaseHP: 12, Atk: 3, Dex: 3,
				Reward:      types.Reward{Reputation: 1, Essence: 1},
				StatusOnHit: types.EffectPoison, StatusChance: 0.25},
		},
		"mask_stalls": {
			{ID: "mask_thief", Name: "Mask Thief", BaseHP: 14, Atk: 4, Dex: 3,
				Reward: types.Reward{Reputation: 2, Items: []string{"Coin of Echoes"}}},
		},
		"shadow_lane": {
			{ID: "shade", Name: "Street Shade", BaseHP: 16, Atk: 5, Dex: 4,
				Reward:      types.Reward{Reputation: 2, Essence: 1},
				StatusOnHit: types.EffectBleed, StatusChance: 0.35},
		},
		"oracle_tent": {
			{ID: "oracle_echo", Name: "Oracle Echo", BaseHP: 18, Atk: 4, Dex: 2,
				Reward: types.Reward{Reputation: 2}},
		},
		"exit_road": {
			{ID: "road_bandit", Name: "Road Bandit", BaseHP: 15, Atk: 5, Dex: 3,
				Reward:      types.Reward{Reputation: 2, Items: []string{"Tarnished Dagger"}},
				StatusOnHit: types.EffectBleed, StatusChance: 0.3},
		},
	}
}

func starterSuggestions() []string {
	return []string{
		"talk to gate twins",
		"go to spirit bazaar",
		"search for moon essence",
		"attack shade",
	}
}

const loreBody = `Under a swollen moon the market unthreads itself from the alleys — canvas
groaning, incense bitter, lanterns humming like trapped bees. Traders sell
what shouldn't be sold: second names, cleaned memories, masks that bite back
if you lie. Debts are counted in shadows.

People here speak softly about a thing that stirs near the Moon Gate. Some
call it a tax, others a hunger. The Twins smile when they mention it. The
crowd pretends not to hear.`

const loreClose = `What you carry is worth more than coin. Choose what you lose, and whom you owe.`

func introLore(seed string) string {
	parts := []string{loreBody}
	if s := strings.TrimSpace(seed); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, loreClose)
	return strings.Join(parts, "\n\n")
}

// IntroNarrative is the opening scene pushed as the first history entry.
const IntroNarrative = `You arrive beneath the Moon Gate. Lanterns sway; clove and night-salt cling to the air.
Two voices speak in one breath: "The market opens under debts and moonlight."
Stalls wake like eyes. Somewhere, a mask tries on your name.`
