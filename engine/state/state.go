// Package state manages the mutable session state: construction from world
// content, lookup helpers, and the clamping rules every mutation goes
// through.
package state

import (
	"strings"

	"github.com/kelana/nightmarket/types"
)

// Well-known flag, counter, item, and location names shared across packages.
const (
	FlagGameCompleted = "game_completed"
	CounterEssence    = "essence_count"

	ItemMoonEssence = "Moon Essence"

	StartLocation = "moon_gate"

	PerkLunarBlade = "lunar_blade"
	PerkIronWill   = "iron_will"
	PerkShadowStep = "shadow_step"
)

// MaxHealth is the player's health ceiling.
const MaxHealth = 100

// Defs holds the immutable content definitions loaded at process start:
// the quest table and the per-NPC dialog graphs.
type Defs struct {
	Quests  []types.QuestDef
	Dialogs map[string][]types.DialogNode
}

// QuestDef returns the quest definition with the given id, or nil.
func (d *Defs) QuestDef(id string) *types.QuestDef {
	if d == nil {
		return nil
	}
	for i := range d.Quests {
		if d.Quests[i].ID == id {
			return &d.Quests[i]
		}
	}
	return nil
}

// Dialog returns the dialog graph for an NPC id, or nil if the NPC has none.
func (d *Defs) Dialog(npcID string) []types.DialogNode {
	if d == nil {
		return nil
	}
	return d.Dialogs[npcID]
}

// NewState builds the starting session state from the static world content
// plus the caller-supplied player name and lore seed.
func NewState(playerName, loreSeed string) *types.State {
	if playerName == "" {
		playerName = "Wanderer"
	}
	s := &types.State{
		Player: types.Player{
			Name:       playerName,
			Health:     MaxHealth,
			Reputation: 0,
			Level:      1,
			Stats:      types.Stats{Str: 1, Dex: 1, Int: 1},
			Perks:      []string{},
		},
		Location:  StartLocation,
		Map:       worldMap(),
		NPCs:      worldNPCs(),
		Enemies:   worldEnemies(),
		Quests:    []types.QuestEntry{},
		Inventory: []string{},
		Effects:   types.StatusMap{},
		Flags:     map[string]bool{},
		Counters:  map[string]int{CounterEssence: 0},
		UI:        types.UIState{Dialog: nil},
		Suggested: starterSuggestions(),
		History:   []types.HistoryEntry{},
		Lore:      introLore(loreSeed),
	}
	return s
}

// ExitsOf returns the exit list of the given location, or nil for an
// unknown id.
func ExitsOf(s *types.State, locationID string) []string {
	loc, ok := s.Map[locationID]
	if !ok {
		return nil
	}
	return loc.Exits
}

// LocationByName resolves a case-insensitive display name to a location id.
// Returns "" when no location carries that name.
func LocationByName(s *types.State, nameLower string) string {
	for id, loc := range s.Map {
		if strings.ToLower(loc.Name) == nameLower {
			return id
		}
	}
	return ""
}

// NPCAt finds an NPC at the player's current location whose display name
// matches (case-insensitive). Returns nil when nobody matches.
func NPCAt(s *types.State, nameLower string) *types.NPC {
	for id := range s.NPCs {
		npc := s.NPCs[id]
		if npc.Location == s.Location && strings.ToLower(npc.Name) == nameLower {
			return &npc
		}
	}
	return nil
}

// HasItem reports whether the inventory contains the item.
func HasItem(s *types.State, item string) bool {
	for _, it := range s.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// GrantItem adds an item to the inventory. Granting an already-held item is
// a no-op; the return value reports whether anything changed.
func GrantItem(s *types.State, item string) bool {
	if item == "" || HasItem(s, item) {
		return false
	}
	s.Inventory = append(s.Inventory, item)
	return true
}

// RemoveItem removes an item from the inventory if present.
func RemoveItem(s *types.State, item string) {
	for i, it := range s.Inventory {
		if it == item {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return
		}
	}
}

// HasPerk reports whether the player holds the given perk.
func HasPerk(s *types.State, perk string) bool {
	for _, p := range s.Player.Perks {
		if p == perk {
			return true
		}
	}
	return false
}

// DamagePlayer reduces player health, flooring at 0.
func DamagePlayer(s *types.State, amount int) {
	s.Player.Health -= amount
	if s.Player.Health < 0 {
		s.Player.Health = 0
	}
}

// HealPlayer raises player health, capped at MaxHealth.
func HealPlayer(s *types.State, amount int) {
	s.Player.Health += amount
	if s.Player.Health > MaxHealth {
		s.Player.Health = MaxHealth
	}
}

// DamageEnemy reduces an enemy's hp, flooring at 0.
func DamageEnemy(e *types.Enemy, amount int) {
	e.HP -= amount
	if e.HP < 0 {
		e.HP = 0
	}
}

// InCombat reports whether a fight is active.
func InCombat(s *types.State) bool {
	return s.Combat != nil
}

// StartCombat instantiates a fight against a fresh copy of the template.
func StartCombat(s *types.State, tpl types.EnemyTemplate) *types.Enemy {
	enemy := types.Enemy{
		EnemyTemplate: tpl,
		HP:            tpl.BaseHP,
		Effects:       types.StatusMap{},
	}
	s.Combat = &types.CombatState{Enemy: enemy, Turn: "player"}
	return &s.Combat.Enemy
}

// EndCombat clears the active fight, if any.
func EndCombat(s *types.State) {
	s.Combat = nil
}

// EnemyTemplateByID searches every location's template list for an id.
// Used for reward lookup after a kill.
func EnemyTemplateByID(s *types.State, id string) *types.EnemyTemplate {
	for loc := range s.Enemies {
		pool := s.Enemies[loc]
		for i := range pool {
			if pool[i].ID == id {
				return &pool[i]
			}
		}
	}
	return nil
}

// PickEnemyAt selects an enemy template at the current location. A non-empty
// targetLower is matched against template ids and lowercased names first;
// otherwise the first template wins. Returns nil when the location has no
// enemies.
func PickEnemyAt(s *types.State, targetLower string) *types.EnemyTemplate {
	pool := s.Enemies[s.Location]
	if len(pool) == 0 {
		return nil
	}
	if targetLower != "" {
		for i := range pool {
			if pool[i].ID == targetLower || strings.ToLower(pool[i].Name) == targetLower {
				return &pool[i]
			}
		}
	}
	return &pool[0]
}
