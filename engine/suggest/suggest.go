// Package suggest derives the advisory next-command list and the guidance
// lines that echo it. Suggestions are recomputed after every mutating
// operation and never gate actions.
package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kelana/nightmarket/engine/quest"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// maxSuggestions caps the derived list.
const maxSuggestions = 6

// shownSuggestions is how many entries the "Next:" guidance line echoes.
const shownSuggestions = 3

// Refresh recomputes s.Suggested. Priority: finished game → fixed hint;
// first in-progress quest → its stage's authored suggestions, with "go to"
// hints prepended for NPCs that are elsewhere; otherwise a location-derived
// fallback.
func Refresh(s *types.State, defs *state.Defs) {
	for i := range s.Quests {
		q := &s.Quests[i]
		if q.Status != types.QuestInProgress {
			continue
		}
		def := defs.QuestDef(q.ID)
		stage := quest.StageByID(def, q.StageID)
		if stage == nil {
			continue
		}
		expanded := expandStageTips(s, stage.Suggested)
		if len(expanded) > 0 {
			s.Suggested = dedupe(expanded)
			return
		}
	}
	s.Suggested = dedupe(fallbackSuggestions(s))
}

// expandStageTips inserts a travel hint before any "talk to X" tip whose
// NPC is not at the player's current location.
func expandStageTips(s *types.State, tips []string) []string {
	var out []string
	for _, raw := range tips {
		tip := strings.TrimSpace(raw)
		if tip == "" {
			continue
		}
		tipLower := strings.ToLower(tip)
		if name, ok := strings.CutPrefix(tipLower, "talk to "); ok {
			if npc := npcByName(s, strings.TrimSpace(name)); npc != nil && npc.Location != s.Location {
				if loc, ok := s.Map[npc.Location]; ok {
					out = append(out, "go to "+strings.ToLower(loc.Name))
				}
			}
		}
		out = append(out, tip)
	}
	return out
}

func fallbackSuggestions(s *types.State) []string {
	var out []string
	for _, exitID := range state.ExitsOf(s, s.Location) {
		if loc, ok := s.Map[exitID]; ok {
			out = append(out, "go to "+strings.ToLower(loc.Name))
			break
		}
	}
	// Sorted ids for a deterministic pick.
	ids := make([]string, 0, len(s.NPCs))
	for id := range s.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s.NPCs[id].Location == s.Location {
			out = append(out, "talk to "+s.NPCs[id].Name)
			break
		}
	}
	out = append(out, "search for moon essence", "attack shade")
	return out
}

// GuidanceLines builds the player-facing goal and "Next:" lines. The Next
// line always echoes the head of the current suggestion list, keeping the
// on-screen hints synchronized with it.
func GuidanceLines(s *types.State) []string {
	var out []string

	if s.Flags[state.FlagGameCompleted] {
		out = append(out, "Goal: —")
		out = append(out, "Next: You have finished all available quests. Explore freely or start a new run.")
		return out
	}

	active := activeQuest(s)
	switch {
	case active != nil && active.ID == "maskmonger_moon_essence":
		have := s.Counters[state.CounterEssence]
		if have < 3 {
			out = append(out, fmt.Sprintf("Goal: Gather Moon Essence (%d/3).", have))
		} else {
			out = append(out, "Goal: Return the Moon Essence to the Maskmonger.")
		}
	case active == nil:
		if s.Location != "spirit_bazaar" {
			out = append(out, "Goal: Find work to begin your first quest.")
		} else {
			out = append(out, "Goal: Ask for work to start a quest.")
		}
	}

	if len(s.Suggested) > 0 {
		n := min(shownSuggestions, len(s.Suggested))
		out = append(out, "Next: "+strings.Join(s.Suggested[:n], " • "))
	}
	return out
}

// NextLine is the suggestion echo appended to dialog narratives.
func NextLine(s *types.State) string {
	if len(s.Suggested) == 0 {
		return ""
	}
	n := min(shownSuggestions, len(s.Suggested))
	return "Next: " + strings.Join(s.Suggested[:n], " • ")
}

func activeQuest(s *types.State) *types.QuestEntry {
	for i := range s.Quests {
		if s.Quests[i].Status == types.QuestInProgress {
			return &s.Quests[i]
		}
	}
	return nil
}

func npcByName(s *types.State, nameLower string) *types.NPC {
	for id := range s.NPCs {
		npc := s.NPCs[id]
		if strings.ToLower(npc.Name) == nameLower {
			return &npc
		}
	}
	return nil
}

// dedupe keeps first occurrences in insertion order and caps the list.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
