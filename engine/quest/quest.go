// Package quest implements the quest progression state machine: stage
// triggers, structured completion conditions, rewards, and the one-shot
// game-completion latch.
package quest

import (
	"fmt"
	"strings"

	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// Entry returns the progress entry for a quest id, or nil.
func Entry(s *types.State, id string) *types.QuestEntry {
	for i := range s.Quests {
		if s.Quests[i].ID == id {
			return &s.Quests[i]
		}
	}
	return nil
}

// EnsureEntry returns the existing progress entry for a quest definition or
// creates one at the first stage.
func EnsureEntry(s *types.State, def *types.QuestDef) *types.QuestEntry {
	if e := Entry(s, def.ID); e != nil {
		return e
	}
	stageID := "start"
	if len(def.Stages) > 0 {
		stageID = def.Stages[0].ID
	}
	s.Quests = append(s.Quests, types.QuestEntry{
		ID:      def.ID,
		Title:   def.Title,
		Status:  types.QuestInProgress,
		StageID: stageID,
	})
	return &s.Quests[len(s.Quests)-1]
}

// StageByID returns the stage with the given id, or nil.
func StageByID(def *types.QuestDef, stageID string) *types.StageDef {
	if def == nil {
		return nil
	}
	for i := range def.Stages {
		if def.Stages[i].ID == stageID {
			return &def.Stages[i]
		}
	}
	return nil
}

func nextStageID(def *types.QuestDef, current *types.StageDef) string {
	for i := range def.Stages {
		if def.Stages[i].ID == current.ID {
			if i+1 < len(def.Stages) {
				return def.Stages[i+1].ID
			}
			return ""
		}
	}
	return ""
}

// ConditionMet evaluates a structured completion predicate. A nil condition
// never holds; all populated fields must hold together.
func ConditionMet(s *types.State, cond *types.Condition) bool {
	if cond == nil {
		return false
	}
	for name, min := range cond.FlagAtLeast {
		if s.Counters[name] < min {
			return false
		}
	}
	for _, item := range cond.InventoryHas {
		if !state.HasItem(s, item) {
			return false
		}
	}
	if cond.ReputationAtLeast != nil && s.Player.Reputation < *cond.ReputationAtLeast {
		return false
	}
	return true
}

// ApplyRewards applies a stage's reward block. Item grants are idempotent.
func ApplyRewards(s *types.State, r types.Rewards) {
	s.Player.Reputation += r.ReputationDelta
	for _, item := range r.InventoryAdd {
		state.GrantItem(s, item)
	}
}

// Advance runs one evaluation pass of every quest definition against the
// lowercased command text. Unstarted quests may start from their first
// stage's start triggers; active quests may complete their current stage by
// trigger text or by condition. Completing the final stage marks the quest
// completed and pays its rewards. A completed quest never re-triggers.
func Advance(s *types.State, defs *state.Defs, actionLower string) []string {
	var lines []string
	for i := range defs.Quests {
		def := &defs.Quests[i]
		var firstStage *types.StageDef
		if len(def.Stages) > 0 {
			firstStage = &def.Stages[0]
		}

		if Entry(s, def.ID) == nil {
			if firstStage != nil && matchesTrigger(firstStage.StartTriggers, actionLower) {
				EnsureEntry(s, def)
				lines = append(lines, fmt.Sprintf("Quest started: %s", def.Title))
				// A freshly started quest does not complete its first
				// stage on the same command.
				continue
			}
		}

		entry := Entry(s, def.ID)
		if entry == nil || entry.Status == types.QuestCompleted {
			continue
		}
		stage := StageByID(def, entry.StageID)
		if stage == nil {
			stage = firstStage
		}
		if stage == nil {
			continue
		}

		completed := matchesTrigger(stage.CompleteTriggers, actionLower)
		if !completed && stage.CompleteCondition != nil {
			completed = ConditionMet(s, stage.CompleteCondition)
		}
		if !completed {
			continue
		}

		if nextID := nextStageID(def, stage); nextID != "" {
			entry.StageID = nextID
			lines = append(lines, fmt.Sprintf("Quest updated: %s → stage %q", def.Title, nextID))
		} else {
			entry.Status = types.QuestCompleted
			lines = append(lines, fmt.Sprintf("Quest completed: %s", def.Title))
			ApplyRewards(s, stage.Rewards)
		}
	}
	return lines
}

// Complete force-completes a quest by id (dialog choices use this). The
// final stage's rewards are paid once; an already-completed quest is left
// alone. Returns the quest title and whether anything changed.
func Complete(s *types.State, defs *state.Defs, questID string) (string, bool) {
	def := defs.QuestDef(questID)
	if def == nil {
		return "", false
	}
	entry := Entry(s, def.ID)
	if entry == nil || entry.Status == types.QuestCompleted {
		return "", false
	}
	entry.Status = types.QuestCompleted
	if len(def.Stages) > 0 {
		ApplyRewards(s, def.Stages[len(def.Stages)-1].Rewards)
	}
	return def.Title, true
}

// CheckGameCompletion latches the game_completed flag the first time every
// existing quest entry is completed (and at least one exists). The flag is
// never unset; the closing line is emitted exactly once.
func CheckGameCompletion(s *types.State) []string {
	if len(s.Quests) == 0 || s.Flags[state.FlagGameCompleted] {
		return nil
	}
	for _, q := range s.Quests {
		if q.Status != types.QuestCompleted {
			return nil
		}
	}
	s.Flags[state.FlagGameCompleted] = true
	return []string{"All quests are complete. The Night Market exhales, and your story closes."}
}

func matchesTrigger(triggers []string, actionLower string) bool {
	for _, t := range triggers {
		t = strings.ToLower(t)
		if t != "" && strings.Contains(actionLower, t) {
			return true
		}
	}
	return false
}
