// Package types defines the shared data structures for the night-market
// engine. This package contains only type definitions, no logic.
package types

// Stats are the player's three trainable attributes.
type Stats struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Int int `json:"int"`
}

// Player holds the player's runtime state.
type Player struct {
	Name       string   `json:"name"`
	Health     int      `json:"health"`
	Reputation int      `json:"reputation"`
	Level      int      `json:"level"`
	Stats      Stats    `json:"stats"`
	Perks      []string `json:"perks"`
}

// Location is one node of the world map. Exits are directed edges.
type Location struct {
	Name  string   `json:"name"`
	Exits []string `json:"exits"`
}

// NPC is a named character with a home location. Its dialog graph lives in
// the content definitions, keyed by the NPC id.
type NPC struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// EffectKind enumerates the status effects the engine understands.
type EffectKind string

const (
	EffectPoison EffectKind = "poison"
	EffectBleed  EffectKind = "bleed"
	EffectBurn   EffectKind = "burn"
	EffectFreeze EffectKind = "freeze"
)

// Status is one active effect entry: stacks ≥ 1, duration ≥ 0 turns left.
// Entries whose duration runs out are deleted, never kept at zero.
type Status struct {
	Stacks   int `json:"stacks"`
	Duration int `json:"duration"`
}

// StatusMap holds the active effects of one combatant.
type StatusMap map[EffectKind]*Status

// Reward is what defeating an enemy yields.
type Reward struct {
	Reputation int      `json:"reputation,omitempty"`
	Items      []string `json:"items,omitempty"`
	Essence    int      `json:"essence,omitempty"`
	XP         int      `json:"xp,omitempty"`
}

// EnemyTemplate is immutable enemy content attached to a location.
// Combat never mutates a template; fights run on Enemy copies.
type EnemyTemplate struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	BaseHP       int                `json:"baseHp"`
	Atk          int                `json:"atk"`
	Dex          int                `json:"dex"`
	BaseDamage   int                `json:"baseDamage,omitempty"`
	Armor        int                `json:"armor,omitempty"`
	DamageType   string             `json:"damageType,omitempty"`
	Resist       map[string]float64 `json:"resist,omitempty"`
	Reward       Reward             `json:"reward"`
	StatusOnHit  EffectKind         `json:"statusOnHit,omitempty"`
	StatusChance float64            `json:"statusChance,omitempty"`
}

// Enemy is a live combat instance: a template copy with current hp and its
// own effect map.
type Enemy struct {
	EnemyTemplate
	HP      int       `json:"hp"`
	Effects StatusMap `json:"effects"`
}

// CombatState is present on the session state iff a fight is active.
type CombatState struct {
	Enemy Enemy  `json:"enemy"`
	Turn  string `json:"turn"`
}

// QuestStatus is the lifecycle state of a quest entry.
type QuestStatus string

const (
	QuestInProgress QuestStatus = "in_progress"
	QuestCompleted  QuestStatus = "completed"
)

// QuestEntry tracks one quest's progress on the session state.
// At most one entry exists per quest id.
type QuestEntry struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Status  QuestStatus `json:"status"`
	StageID string      `json:"stageId"`
}

// Condition is a structured stage-completion predicate. All populated
// fields must hold.
type Condition struct {
	FlagAtLeast       map[string]int `json:"flagAtLeast,omitempty"`
	InventoryHas      []string       `json:"inventoryHas,omitempty"`
	ReputationAtLeast *int           `json:"reputationAtLeast,omitempty"`
}

// Rewards are applied when a quest's final stage completes.
type Rewards struct {
	ReputationDelta int      `json:"reputationDelta,omitempty"`
	InventoryAdd    []string `json:"inventoryAdd,omitempty"`
}

// StageDef is one step of a quest definition.
type StageDef struct {
	ID                string     `json:"id"`
	StartTriggers     []string   `json:"startTriggers,omitempty"`
	CompleteTriggers  []string   `json:"completeTriggers,omitempty"`
	CompleteCondition *Condition `json:"completeCondition,omitempty"`
	Suggested         []string   `json:"suggested,omitempty"`
	Rewards           Rewards    `json:"rewards"`
}

// QuestDef is an ordered multi-stage quest definition.
type QuestDef struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Stages []StageDef `json:"stages"`
}

// DialogEffect is the optional payload of a dialog choice. Every field is
// independently optional and idempotent.
type DialogEffect struct {
	ReputationDelta *int     `json:"reputationDelta,omitempty"`
	InventoryAdd    []string `json:"inventoryAdd,omitempty"`
	QuestOffer      string   `json:"questOffer,omitempty"`
	CompleteQuest   string   `json:"completeQuest,omitempty"`
	AddPerk         string   `json:"addPerk,omitempty"`
}

// DialogChoice is one selectable option on a dialog node.
type DialogChoice struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Effect *DialogEffect `json:"effect,omitempty"`
	Next   string        `json:"next,omitempty"`
	End    bool          `json:"end,omitempty"`
}

// DialogNode is one node of an NPC's conversation graph.
type DialogNode struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Next    string         `json:"next,omitempty"`
	Choices []DialogChoice `json:"choices,omitempty"`
}

// DialogRef points at the currently open conversation node.
type DialogRef struct {
	NPCID  string `json:"npcId"`
	NodeID string `json:"nodeId"`
}

// UIState holds presentation pointers owned by the engine.
type UIState struct {
	Dialog *DialogRef `json:"dialog"`
}

// Roll is one d20 result with its narrative meaning tier.
type Roll struct {
	Value   int    `json:"value"`
	Meaning string `json:"meaning"`
}

// HistoryEntry is one line of the append-only, size-capped turn log.
type HistoryEntry struct {
	Action    string `json:"action"`
	Narrative string `json:"narrative"`
	Roll      *Roll  `json:"roll,omitempty"`
}

// State is the complete mutable session state. It is owned exclusively by
// the engine between calls; the transport layer holds it by session id but
// never mutates it directly.
type State struct {
	Player      Player                     `json:"player"`
	Location    string                     `json:"location"`
	Map         map[string]Location        `json:"map"`
	NPCs        map[string]NPC             `json:"npcs"`
	Enemies     map[string][]EnemyTemplate `json:"enemies"`
	Combat      *CombatState               `json:"combat,omitempty"`
	Quests      []QuestEntry               `json:"quests"`
	Inventory   []string                   `json:"inventory"`
	Effects     StatusMap                  `json:"effects"`
	Flags       map[string]bool            `json:"flags"`
	Counters    map[string]int             `json:"counters"`
	UI          UIState                    `json:"ui"`
	Suggested   []string                   `json:"suggested"`
	History     []HistoryEntry             `json:"history"`
	XP          int                        `json:"xp"`
	SkillPoints int                        `json:"skillPoints"`
	Lore        string                     `json:"lore,omitempty"`
	TurnCount   int                        `json:"turnCount"`
	RNGSeed     int64                      `json:"rngSeed"`
	RNGPosition int64                      `json:"rngPosition"`
}

// Result is the output of a single engine operation. Output lines are the
// same text appended to the state's history narrative.
type Result struct {
	Output []string
}
