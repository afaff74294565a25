// Package save implements JSON serialization and deserialization of session
// state.
package save

import (
	"encoding/json"

	"github.com/kelana/nightmarket/types"
)

// FormatVersion is bumped when the save layout changes incompatibly.
const FormatVersion = "1"

// SaveData is the JSON save format: a versioned full-state snapshot.
type SaveData struct {
	Version string      `json:"version"`
	State   types.State `json:"state"`
}

// Save serializes session state to JSON bytes.
func Save(s *types.State) ([]byte, error) {
	return json.MarshalIndent(SaveData{Version: FormatVersion, State: *s}, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	normalize(&sd.State)
	return &sd, nil
}

// ApplySave replaces a state with the loaded snapshot.
func ApplySave(s *types.State, sd *SaveData) {
	*s = sd.State
}

// normalize ensures maps and slices are never nil after load, whatever the
// snapshot omitted.
func normalize(s *types.State) {
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.Counters == nil {
		s.Counters = map[string]int{}
	}
	if s.Effects == nil {
		s.Effects = types.StatusMap{}
	}
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	if s.Quests == nil {
		s.Quests = []types.QuestEntry{}
	}
	if s.Suggested == nil {
		s.Suggested = []string{}
	}
	if s.History == nil {
		s.History = []types.HistoryEntry{}
	}
	if s.Player.Perks == nil {
		s.Player.Perks = []string{}
	}
	if s.Combat != nil && s.Combat.Enemy.Effects == nil {
		s.Combat.Enemy.Effects = types.StatusMap{}
	}
}
