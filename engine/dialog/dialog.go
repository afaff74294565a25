// Package dialog implements per-NPC conversation graph traversal and the
// choice effect payloads (reputation, items, quests, perks).
package dialog

import (
	"fmt"
	"strings"

	"github.com/kelana/nightmarket/engine/quest"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// RootNodeID is where conversations open and where traversal falls back to
// when a requested node is missing.
const RootNodeID = "root"

// FindNode returns the node with the given id in an NPC's graph, or nil.
func FindNode(graph []types.DialogNode, nodeID string) *types.DialogNode {
	for i := range graph {
		if graph[i].ID == nodeID {
			return &graph[i]
		}
	}
	return nil
}

// Open places the dialog pointer at the requested node (falling back to the
// root when it is missing) and narrates the node text with its choices.
// NPCs without a dialog graph produce no lines and no pointer.
func Open(s *types.State, defs *state.Defs, npcID, nodeID string) []string {
	npc, ok := s.NPCs[npcID]
	if !ok {
		return nil
	}
	graph := defs.Dialog(npcID)
	if len(graph) == 0 {
		return nil
	}
	node := FindNode(graph, nodeID)
	if node == nil {
		node = FindNode(graph, RootNodeID)
	}
	if node == nil {
		return nil
	}
	s.UI.Dialog = &types.DialogRef{NPCID: npcID, NodeID: node.ID}

	line := fmt.Sprintf("%s: %s", npc.Name, node.Text)
	if choices := summarizeChoices(node); choices != "" {
		line += "\nChoices: " + choices
	}
	return []string{line}
}

// Close clears the dialog pointer.
func Close(s *types.State) {
	s.UI.Dialog = nil
}

// ApplyEffect applies a choice's effect payload. Each sub-effect is
// independently optional; item and perk grants are idempotent and only
// narrated when they change something.
func ApplyEffect(s *types.State, defs *state.Defs, effect *types.DialogEffect) []string {
	if effect == nil {
		return nil
	}
	var lines []string

	if effect.ReputationDelta != nil {
		s.Player.Reputation += *effect.ReputationDelta
		lines = append(lines, fmt.Sprintf("Your reputation shifts by %d.", *effect.ReputationDelta))
	}
	for _, item := range effect.InventoryAdd {
		if state.GrantItem(s, item) {
			lines = append(lines, fmt.Sprintf("You receive: %s.", item))
		}
	}
	if effect.QuestOffer != "" {
		if def := defs.QuestDef(effect.QuestOffer); def != nil {
			quest.EnsureEntry(s, def)
			lines = append(lines, fmt.Sprintf("Quest started: %s", def.Title))
		}
	}
	if effect.CompleteQuest != "" {
		if title, ok := quest.Complete(s, defs, effect.CompleteQuest); ok {
			lines = append(lines, fmt.Sprintf("Quest completed: %s", title))
		}
	}
	if effect.AddPerk != "" {
		perk := effect.AddPerk
		if !state.HasPerk(s, perk) {
			s.Player.Perks = append(s.Player.Perks, perk)
			lines = append(lines, fmt.Sprintf("You learn a perk: %s", perk))
		}
	}
	return lines
}

func summarizeChoices(node *types.DialogNode) string {
	labels := make([]string, 0, len(node.Choices))
	for _, c := range node.Choices {
		labels = append(labels, c.Label)
	}
	return strings.Join(labels, " | ")
}
