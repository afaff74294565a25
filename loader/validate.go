package loader

import (
	"fmt"
	"strings"

	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// ValidationError collects all validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled defs for referential integrity: unique quest
// and stage ids, dialog graphs rooted and internally consistent, and dialog
// effects pointing at defined quests.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	questIDs := map[string]bool{}
	for _, q := range defs.Quests {
		if questIDs[q.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate quest id %q", q.ID))
		}
		questIDs[q.ID] = true

		if q.Title == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has no title", q.ID))
		}
		stageIDs := map[string]bool{}
		for _, st := range q.Stages {
			if stageIDs[st.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q has duplicate stage id %q", q.ID, st.ID))
			}
			stageIDs[st.ID] = true
		}
	}

	for npcID, graph := range defs.Dialogs {
		nodeIDs := map[string]bool{}
		for _, n := range graph {
			if nodeIDs[n.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q has duplicate dialog node %q", npcID, n.ID))
			}
			nodeIDs[n.ID] = true
		}
		if !nodeIDs["root"] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("npc %q dialog has no root node", npcID))
		}
		for _, n := range graph {
			if n.Next != "" && !nodeIDs[n.Next] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q node %q next points to undefined node %q", npcID, n.ID, n.Next))
			}
			for _, c := range n.Choices {
				if c.Next != "" && !nodeIDs[c.Next] {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"npc %q node %q choice %q points to undefined node %q",
						npcID, n.ID, c.ID, c.Next))
				}
				validateEffect(npcID, n.ID, c, questIDs, ve)
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateEffect(npcID, nodeID string, c types.DialogChoice, questIDs map[string]bool, ve *ValidationError) {
	if c.Effect == nil {
		return
	}
	if q := c.Effect.QuestOffer; q != "" && !questIDs[q] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"npc %q node %q choice %q offers undefined quest %q", npcID, nodeID, c.ID, q))
	}
	if q := c.Effect.CompleteQuest; q != "" && !questIDs[q] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"npc %q node %q choice %q completes undefined quest %q", npcID, nodeID, c.ID, q))
	}
}
