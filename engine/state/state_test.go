package state

import (
	"testing"

	"github.com/kelana/nightmarket/types"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState("", "")

	if s.Player.Name != "Wanderer" {
		t.Errorf("default name = %q, want Wanderer", s.Player.Name)
	}
	if s.Player.Health != MaxHealth {
		t.Errorf("health = %d, want %d", s.Player.Health, MaxHealth)
	}
	if s.Player.Level != 1 {
		t.Errorf("level = %d, want 1", s.Player.Level)
	}
	if s.Location != StartLocation {
		t.Errorf("location = %q, want %q", s.Location, StartLocation)
	}
	if got := s.Counters[CounterEssence]; got != 0 {
		t.Errorf("essence counter = %d, want 0", got)
	}
	if s.Flags == nil || s.Effects == nil || s.Inventory == nil {
		t.Fatal("maps and slices must be initialized")
	}
	if len(s.Suggested) == 0 {
		t.Error("starter suggestions missing")
	}
}

func TestNewState_NamedPlayer(t *testing.T) {
	s := NewState("Ranti", "an old debt")
	if s.Player.Name != "Ranti" {
		t.Errorf("name = %q, want Ranti", s.Player.Name)
	}
	if s.Lore == "" {
		t.Error("lore should not be empty")
	}
}

func TestGrantItem_Idempotent(t *testing.T) {
	s := NewState("", "")

	if !GrantItem(s, "Healing Potion") {
		t.Fatal("first grant should report a change")
	}
	if GrantItem(s, "Healing Potion") {
		t.Fatal("second grant should be a no-op")
	}
	count := 0
	for _, it := range s.Inventory {
		if it == "Healing Potion" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("inventory holds %d copies, want 1", count)
	}
}

func TestRemoveItem(t *testing.T) {
	s := NewState("", "")
	GrantItem(s, "Frostbomb")
	RemoveItem(s, "Frostbomb")
	if HasItem(s, "Frostbomb") {
		t.Fatal("item not removed")
	}
	// Removing a missing item is harmless.
	RemoveItem(s, "Frostbomb")
}

func TestDamageAndHealPlayer_Clamped(t *testing.T) {
	s := NewState("", "")

	DamagePlayer(s, 250)
	if s.Player.Health != 0 {
		t.Fatalf("health after overkill = %d, want 0", s.Player.Health)
	}
	HealPlayer(s, 40)
	if s.Player.Health != 40 {
		t.Fatalf("health = %d, want 40", s.Player.Health)
	}
	HealPlayer(s, 500)
	if s.Player.Health != MaxHealth {
		t.Fatalf("health after overheal = %d, want %d", s.Player.Health, MaxHealth)
	}
}

func TestHealPlayer_NearCap(t *testing.T) {
	s := NewState("", "")
	s.Player.Health = 90
	HealPlayer(s, 18)
	if s.Player.Health != MaxHealth {
		t.Fatalf("health = %d, want %d", s.Player.Health, MaxHealth)
	}
}

func TestStartCombat_FreshEnemy(t *testing.T) {
	s := NewState("", "")
	s.Location = "shadow_lane"

	tpl := PickEnemyAt(s, "")
	if tpl == nil {
		t.Fatal("shadow_lane should have an enemy")
	}
	StartCombat(s, *tpl)

	if !InCombat(s) {
		t.Fatal("combat not started")
	}
	if s.Combat.Enemy.HP != tpl.BaseHP {
		t.Errorf("enemy HP = %d, want %d", s.Combat.Enemy.HP, tpl.BaseHP)
	}
	if s.Combat.Enemy.Effects == nil || len(s.Combat.Enemy.Effects) != 0 {
		t.Error("fresh enemy should have empty effects")
	}
	if s.Combat.Turn != "player" {
		t.Errorf("turn = %q, want player", s.Combat.Turn)
	}

	EndCombat(s)
	if InCombat(s) {
		t.Fatal("combat not ended")
	}
}

func TestPickEnemyAt_ByName(t *testing.T) {
	s := NewState("", "")
	s.Location = "shadow_lane"

	tpl := PickEnemyAt(s, "street shade")
	if tpl == nil || tpl.ID != "shade" {
		t.Fatalf("named pick = %+v, want shade", tpl)
	}
	// Unknown hint falls back to the first resident.
	tpl = PickEnemyAt(s, "dragon")
	if tpl == nil {
		t.Fatal("fallback pick should not be nil")
	}
}

func TestPickEnemyAt_EmptyLocation(t *testing.T) {
	s := NewState("", "")
	s.Location = "nowhere"
	if tpl := PickEnemyAt(s, ""); tpl != nil {
		t.Fatalf("pick at empty location = %+v, want nil", tpl)
	}
}

func TestNPCAt_MatchesLocationAndName(t *testing.T) {
	s := NewState("", "")

	if npc := NPCAt(s, "gate twins"); npc == nil || npc.ID != "gate_twins" {
		t.Fatalf("NPCAt gate twins = %+v", npc)
	}
	// Maskmonger lives in the mask stalls, not at the gate.
	if npc := NPCAt(s, "maskmonger"); npc != nil {
		t.Fatalf("NPCAt maskmonger at moon_gate = %+v, want nil", npc)
	}
}

func TestLocationByName(t *testing.T) {
	s := NewState("", "")
	if id := LocationByName(s, "spirit bazaar"); id != "spirit_bazaar" {
		t.Fatalf("LocationByName = %q", id)
	}
	if id := LocationByName(s, "atlantis"); id != "" {
		t.Fatalf("unknown location = %q, want empty", id)
	}
}

func TestEnemyTemplateByID_SearchesAllLocations(t *testing.T) {
	s := NewState("", "")
	tpl := EnemyTemplateByID(s, "road_bandit")
	if tpl == nil || tpl.Name != "Road Bandit" {
		t.Fatalf("EnemyTemplateByID = %+v", tpl)
	}
	if EnemyTemplateByID(s, "kraken") != nil {
		t.Fatal("unknown enemy should be nil")
	}
}

func TestHasPerk(t *testing.T) {
	s := NewState("", "")
	if HasPerk(s, PerkIronWill) {
		t.Fatal("fresh state has no perks")
	}
	s.Player.Perks = append(s.Player.Perks, PerkIronWill)
	if !HasPerk(s, PerkIronWill) {
		t.Fatal("perk not detected")
	}
}

func TestDefs_Lookups(t *testing.T) {
	defs := &Defs{
		Quests: []types.QuestDef{{ID: "q1", Title: "First"}},
		Dialogs: map[string][]types.DialogNode{
			"gate_twins": {{ID: "root", Text: "hello"}},
		},
	}
	if defs.QuestDef("q1") == nil {
		t.Error("QuestDef q1 missing")
	}
	if defs.QuestDef("nope") != nil {
		t.Error("unknown quest should be nil")
	}
	if len(defs.Dialog("gate_twins")) != 1 {
		t.Error("Dialog gate_twins missing")
	}
	if defs.Dialog("nobody") != nil {
		t.Error("unknown npc dialog should be nil")
	}
}
