// Package engine provides the turn dispatcher that routes one player
// command through movement, dialog, combat, quests, and suggestions, and
// appends the outcome to the session history.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelana/nightmarket/engine/dialog"
	"github.com/kelana/nightmarket/engine/quest"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/engine/suggest"
	"github.com/kelana/nightmarket/types"
)

// maxHistory caps the session history; oldest entries are evicted first.
const maxHistory = 80

// Engine holds the immutable content definitions and one session's mutable
// state. Calls are not safe to interleave on the same session; the
// transport layer serializes them.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG
}

// New starts a fresh session: world state, opening scene, and the first
// suggestion pass.
func New(defs *state.Defs, playerName, loreSeed string) *Engine {
	return NewSeeded(defs, playerName, loreSeed, time.Now().UnixNano())
}

// NewSeeded is New with a caller-controlled RNG seed, for deterministic
// tests and replays.
func NewSeeded(defs *state.Defs, playerName, loreSeed string, seed int64) *Engine {
	s := state.NewState(playerName, loreSeed)
	s.RNGSeed = seed
	e := &Engine{Defs: defs, State: s, RNG: NewRNG(seed)}
	suggest.Refresh(s, defs)
	e.appendHistory("intro", state.IntroNarrative, nil)
	return e
}

// Restore rebuilds an engine around a previously saved state, advancing the
// RNG to its recorded position.
func Restore(defs *state.Defs, s *types.State) *Engine {
	return &Engine{
		Defs:  defs,
		State: s,
		RNG:   RestoreRNG(s.RNGSeed, s.RNGPosition),
	}
}

// Step classifies one raw command into exactly one category (first match
// wins): dialog close, movement, conversation start, essence search, combat
// delegation, and finally quest evaluation of the raw text. Combat commands
// return their own fully-formed result; every other path ends with the
// shared suggestion/guidance/history assembly.
func (e *Engine) Step(input string) types.Result {
	s := e.State
	action := strings.TrimSpace(input)
	lower := strings.ToLower(action)
	var lines []string

	switch {
	case lower == "leave conversation" || lower == "close dialog":
		dialog.Close(s)
		lines = append(lines, "You step back from the conversation.")

	case strings.HasPrefix(lower, "go to "):
		lines = append(lines, e.move(strings.TrimSpace(strings.TrimPrefix(lower, "go to ")))...)

	case strings.HasPrefix(lower, "talk to "):
		lines = append(lines, e.talk(strings.TrimSpace(strings.TrimPrefix(lower, "talk to ")))...)

	case strings.Contains(lower, "search for moon essence"):
		s.Counters[state.CounterEssence]++
		state.GrantItem(s, state.ItemMoonEssence)
		lines = append(lines, "You distill a thread of pale Moon Essence from warm night air.")

	case strings.HasPrefix(lower, "attack"):
		return e.Attack(strings.TrimSpace(strings.TrimPrefix(lower, "attack")))

	case lower == "flee":
		return e.Flee()

	case strings.HasPrefix(lower, "use "):
		return e.UseItem(strings.TrimSpace(action[4:]))
	}

	// Quest triggers match against the full lowercased command, movement
	// and dialog included.
	lines = append(lines, quest.Advance(s, e.Defs, lower)...)
	lines = append(lines, quest.CheckGameCompletion(s)...)

	suggest.Refresh(s, e.Defs)
	if g := suggest.GuidanceLines(s); len(g) > 0 {
		lines = append(lines, "")
		lines = append(lines, g...)
	}

	// One narrative d20 purely for flavor-text prefixing. Never touches
	// game state.
	roll := e.rollD20()
	preface := ""
	switch roll.Value {
	case 20:
		preface = "Fate smiles: "
	case 1:
		preface = "Fate falters: "
	}

	out := assembleNarrative(preface, lines)
	e.appendHistory(action, strings.Join(out, "\n"), &roll)
	e.endTurn()
	return types.Result{Output: out}
}

// Submit routes free text from a terminal client. While a conversation is
// open, input matching one of the current node's choice ids or labels is
// treated as picking that choice; everything else goes through Step.
func (e *Engine) Submit(input string) types.Result {
	s := e.State
	trimmed := strings.TrimSpace(input)
	if s.UI.Dialog != nil {
		graph := e.Defs.Dialog(s.UI.Dialog.NPCID)
		node := dialog.FindNode(graph, s.UI.Dialog.NodeID)
		if c := matchChoice(node, trimmed); c != nil {
			return e.ChooseDialog(s.UI.Dialog.NPCID, c.ID)
		}
	}
	return e.Step(input)
}

func matchChoice(node *types.DialogNode, input string) *types.DialogChoice {
	if node == nil || input == "" {
		return nil
	}
	lower := strings.ToLower(input)
	for i := range node.Choices {
		c := &node.Choices[i]
		if strings.ToLower(c.ID) == lower || strings.ToLower(c.Label) == lower {
			return c
		}
	}
	return nil
}

// ChooseDialog applies a choice on the open conversation node: effect
// payload, completion check, then either close (end flag) or advance to
// choice.next, node.next, or the root. Unrecognized choices narrate
// silence and leave the pointer unchanged.
func (e *Engine) ChooseDialog(npcID, choiceID string) types.Result {
	s := e.State
	action := fmt.Sprintf("dialog:%s/%s", npcID, choiceID)

	npc, ok := s.NPCs[npcID]
	graph := e.Defs.Dialog(npcID)
	if !ok || len(graph) == 0 {
		return e.flatResult(action, "No words find you.")
	}

	nodeID := dialog.RootNodeID
	if s.UI.Dialog != nil {
		nodeID = s.UI.Dialog.NodeID
	}
	node := dialog.FindNode(graph, nodeID)
	if node == nil {
		node = dialog.FindNode(graph, dialog.RootNodeID)
	}
	choice := findChoice(node, choiceID)
	if choice == nil {
		return e.flatResult(action, "Silence answers your choice.")
	}

	lines := dialog.ApplyEffect(s, e.Defs, choice.Effect)
	lines = append(lines, quest.CheckGameCompletion(s)...)

	if choice.End {
		dialog.Close(s)
		lines = append(lines, fmt.Sprintf("%s: (the conversation ends)", npc.Name))
	} else {
		next := choice.Next
		if next == "" {
			next = node.Next
		}
		if next == "" {
			next = dialog.RootNodeID
		}
		lines = append(lines, dialog.Open(s, e.Defs, npcID, next)...)
	}

	suggest.Refresh(s, e.Defs)
	narrative := strings.Join(lines, "\n")
	if narrative == "" {
		narrative = fmt.Sprintf("%s watches your choice.", npc.Name)
	}
	if nl := suggest.NextLine(s); nl != "" {
		narrative += "\n\n" + nl
	}
	roll := e.rollD20()
	e.appendHistory(action, narrative, &roll)
	e.endTurn()
	return types.Result{Output: strings.Split(narrative, "\n")}
}

// SpendSkillPoint raises one of str/dex/int by a point. Nothing happens
// without points or with an unknown stat name.
func (e *Engine) SpendSkillPoint(stat string) {
	s := e.State
	if s.SkillPoints <= 0 {
		return
	}
	switch strings.ToLower(stat) {
	case "str":
		s.Player.Stats.Str++
	case "dex":
		s.Player.Stats.Dex++
	case "int":
		s.Player.Stats.Int++
	default:
		return
	}
	s.SkillPoints--
}

// GrantItem adds an item unconditionally (trade-style).
func (e *Engine) GrantItem(item string) {
	state.GrantItem(e.State, item)
}

// RemoveItem removes an item unconditionally (trade-style).
func (e *Engine) RemoveItem(item string) {
	state.RemoveItem(e.State, item)
}

func (e *Engine) move(destName string) []string {
	s := e.State
	destID := state.LocationByName(s, destName)
	if destID != "" {
		for _, exit := range state.ExitsOf(s, s.Location) {
			if exit == destID {
				s.Location = destID
				// Walking away abandons any active fight.
				state.EndCombat(s)
				return []string{fmt.Sprintf("You move to %s.", s.Map[destID].Name)}
			}
		}
		return []string{fmt.Sprintf("Hidden paths deny you: %s is not directly reachable.", s.Map[destID].Name)}
	}
	return []string{fmt.Sprintf("You wander but find no place called %q.", destName)}
}

func (e *Engine) talk(nameLower string) []string {
	s := e.State
	npc := state.NPCAt(s, nameLower)
	if npc == nil {
		return []string{"No one by that name is here to talk to."}
	}
	return dialog.Open(s, e.Defs, npc.ID, dialog.RootNodeID)
}

func (e *Engine) rollD20() types.Roll {
	value := e.RNG.Roll(20)
	meaning := "fail"
	switch {
	case value == 20:
		meaning = "critical success"
	case value >= 15:
		meaning = "success"
	case value >= 10:
		meaning = "partial"
	}
	return types.Roll{Value: value, Meaning: meaning}
}

// assembleNarrative applies the flavor preface to the first substantial
// line, substituting an idle default when the turn produced nothing.
func assembleNarrative(preface string, lines []string) []string {
	const idle = "You consider your options..."
	var out []string
	if len(lines) == 0 || lines[0] == "" {
		out = append(out, preface+idle)
		if len(lines) > 1 {
			out = append(out, lines[1:]...)
		}
	} else {
		out = append(out, preface+lines[0])
		out = append(out, lines[1:]...)
	}
	return out
}

func (e *Engine) appendHistory(action, narrative string, roll *types.Roll) {
	s := e.State
	s.History = append(s.History, types.HistoryEntry{
		Action:    action,
		Narrative: narrative,
		Roll:      roll,
	})
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}

// flatResult records a single-line outcome without consuming a turn roll.
func (e *Engine) flatResult(action, line string) types.Result {
	e.appendHistory(action, line, nil)
	e.endTurn()
	return types.Result{Output: []string{line}}
}

func (e *Engine) endTurn() {
	e.State.TurnCount++
	e.State.RNGPosition = e.RNG.Position()
}

func findChoice(node *types.DialogNode, choiceID string) *types.DialogChoice {
	if node == nil {
		return nil
	}
	for i := range node.Choices {
		if node.Choices[i].ID == choiceID {
			return &node.Choices[i]
		}
	}
	return nil
}
