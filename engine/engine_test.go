package engine

import (
	"strings"
	"testing"

	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
)

// testDefs builds a small content set: one trigger-driven quest and a dialog
// graph for the Gate Twins.
func testDefs() *state.Defs {
	return &state.Defs{
		Quests: []types.QuestDef{
			{
				ID:    "first_night",
				Title: "First Night",
				Stages: []types.StageDef{
					{
						ID:               "start",
						StartTriggers:    []string{"ask for work"},
						CompleteTriggers: []string{"finish the work"},
						Rewards:          types.Rewards{ReputationDelta: 1},
					},
				},
			},
		},
		Dialogs: map[string][]types.DialogNode{
			"gate_twins": {
				{
					ID:   "root",
					Text: "'Entry is free.'",
					Choices: []types.DialogChoice{
						{ID: "more", Label: "Ask more", Next: "more"},
						{ID: "bye", Label: "Step away", End: true},
					},
				},
				{
					ID:   "more",
					Text: "'Leaving is the expensive part.'",
					Choices: []types.DialogChoice{
						{ID: "back", Label: "Ask something else", Next: "root"},
					},
				},
			},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewSeeded(testDefs(), "Tester", "", 42)
}

func joined(r types.Result) string {
	return strings.Join(r.Output, "\n")
}

func TestNewSeeded_IntroHistory(t *testing.T) {
	e := newTestEngine(t)

	if len(e.State.History) != 1 {
		t.Fatalf("history = %d entries, want 1", len(e.State.History))
	}
	entry := e.State.History[0]
	if entry.Action != "intro" {
		t.Errorf("action = %q", entry.Action)
	}
	if entry.Roll != nil {
		t.Error("intro entry must have no roll")
	}
	if !strings.Contains(entry.Narrative, "Moon Gate") {
		t.Errorf("narrative = %q", entry.Narrative)
	}
	if len(e.State.Suggested) == 0 {
		t.Error("suggestions not initialized")
	}
}

func TestStep_MoveToAdjacentLocation(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("go to spirit bazaar")

	if e.State.Location != "spirit_bazaar" {
		t.Fatalf("location = %q", e.State.Location)
	}
	if !strings.Contains(joined(r), "You move to Spirit Bazaar.") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_MoveRejectsNonAdjacent(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("go to mask stalls")

	if e.State.Location != "moon_gate" {
		t.Fatalf("location = %q, player should not move", e.State.Location)
	}
	if !strings.Contains(joined(r), "Hidden paths deny you: Mask Stalls is not directly reachable.") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_MoveUnknownPlace(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("go to atlantis")

	if !strings.Contains(joined(r), `You wander but find no place called "atlantis".`) {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_MoveEndsCombat(t *testing.T) {
	e := newTestEngine(t)
	tpl := state.PickEnemyAt(e.State, "")
	state.StartCombat(e.State, *tpl)

	e.Step("go to spirit bazaar")

	if state.InCombat(e.State) {
		t.Fatal("moving must end combat")
	}
}

func TestStep_SearchForMoonEssence(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("search for moon essence")

	if got := e.State.Counters[state.CounterEssence]; got != 1 {
		t.Errorf("essence counter = %d, want 1", got)
	}
	if !state.HasItem(e.State, state.ItemMoonEssence) {
		t.Error("Moon Essence not granted")
	}
	if !strings.Contains(joined(r), "You distill a thread of pale Moon Essence") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_TalkOpensDialog(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("talk to gate twins")

	if e.State.UI.Dialog == nil || e.State.UI.Dialog.NPCID != "gate_twins" {
		t.Fatalf("dialog pointer = %+v", e.State.UI.Dialog)
	}
	if !strings.Contains(joined(r), "Gate Twins: 'Entry is free.'") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_TalkToNobody(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("talk to maskmonger")

	if e.State.UI.Dialog != nil {
		t.Fatal("dialog should not open")
	}
	if !strings.Contains(joined(r), "No one by that name is here to talk to.") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_LeaveConversation(t *testing.T) {
	e := newTestEngine(t)
	e.Step("talk to gate twins")

	r := e.Step("leave conversation")

	if e.State.UI.Dialog != nil {
		t.Fatal("dialog pointer not cleared")
	}
	if !strings.Contains(joined(r), "You step back from the conversation.") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_IdleCommandGetsDefaultLine(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("hum quietly")

	if !strings.Contains(joined(r), "You consider your options...") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestStep_QuestStartAndComplete(t *testing.T) {
	e := newTestEngine(t)

	r := e.Step("ask for work")
	if !strings.Contains(joined(r), "Quest started: First Night") {
		t.Fatalf("output = %v", r.Output)
	}

	r = e.Step("finish the work")
	out := joined(r)
	if !strings.Contains(out, "Quest completed: First Night") {
		t.Fatalf("output = %v", r.Output)
	}
	// Single quest in defs: finishing it completes the game, exactly once.
	if !strings.Contains(out, "All quests are complete.") {
		t.Errorf("completion line missing: %v", r.Output)
	}
	if !e.State.Flags[state.FlagGameCompleted] {
		t.Error("game_completed not latched")
	}

	r = e.Step("wait")
	if strings.Contains(joined(r), "All quests are complete.") {
		t.Error("closing line emitted twice")
	}
}

func TestStep_HistoryCappedAt80(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 100; i++ {
		e.Step("wait")
	}

	if len(e.State.History) != 80 {
		t.Fatalf("history = %d entries, want 80", len(e.State.History))
	}
	// Oldest entries (the intro) were evicted.
	if e.State.History[0].Action == "intro" {
		t.Error("eviction should drop oldest entries first")
	}
}

func TestStep_TurnCountAndRNGPosition(t *testing.T) {
	e := newTestEngine(t)

	e.Step("wait")
	e.Step("wait")

	if e.State.TurnCount != 2 {
		t.Errorf("turn count = %d, want 2", e.State.TurnCount)
	}
	if e.State.RNGPosition != e.RNG.Position() {
		t.Errorf("rng position not synced: state=%d rng=%d", e.State.RNGPosition, e.RNG.Position())
	}
	if e.State.RNGPosition == 0 {
		t.Error("rng position should advance with flavor rolls")
	}
}

func TestChooseDialog_TraversalAndEnd(t *testing.T) {
	e := newTestEngine(t)
	e.Step("talk to gate twins")

	r := e.ChooseDialog("gate_twins", "more")
	if e.State.UI.Dialog.NodeID != "more" {
		t.Fatalf("pointer = %+v", e.State.UI.Dialog)
	}
	if !strings.Contains(joined(r), "'Leaving is the expensive part.'") {
		t.Errorf("output = %v", r.Output)
	}

	e.ChooseDialog("gate_twins", "back")
	if e.State.UI.Dialog.NodeID != "root" {
		t.Fatalf("pointer = %+v", e.State.UI.Dialog)
	}

	r = e.ChooseDialog("gate_twins", "bye")
	if e.State.UI.Dialog != nil {
		t.Fatal("end choice must close the dialog")
	}
	if !strings.Contains(joined(r), "(the conversation ends)") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestChooseDialog_UnknownChoice(t *testing.T) {
	e := newTestEngine(t)
	e.Step("talk to gate twins")

	r := e.ChooseDialog("gate_twins", "nonsense")

	if !strings.Contains(joined(r), "Silence answers your choice.") {
		t.Errorf("output = %v", r.Output)
	}
	if e.State.UI.Dialog == nil || e.State.UI.Dialog.NodeID != "root" {
		t.Errorf("pointer moved on unknown choice: %+v", e.State.UI.Dialog)
	}
}

func TestChooseDialog_NPCWithoutGraph(t *testing.T) {
	e := newTestEngine(t)

	r := e.ChooseDialog("maskmonger", "hello")

	if !strings.Contains(joined(r), "No words find you.") {
		t.Errorf("output = %v", r.Output)
	}
}

func TestSubmit_RoutesDialogChoiceByLabel(t *testing.T) {
	e := newTestEngine(t)
	e.Step("talk to gate twins")

	e.Submit("Ask more")

	if e.State.UI.Dialog == nil || e.State.UI.Dialog.NodeID != "more" {
		t.Fatalf("pointer = %+v, want more", e.State.UI.Dialog)
	}

	// Non-choice input falls through to Step.
	e.Submit("leave conversation")
	if e.State.UI.Dialog != nil {
		t.Fatal("dialog not closed via Step fallthrough")
	}
}

func TestSpendSkillPoint(t *testing.T) {
	e := newTestEngine(t)
	e.State.SkillPoints = 2

	e.SpendSkillPoint("str")
	if e.State.Player.Stats.Str != 2 || e.State.SkillPoints != 1 {
		t.Fatalf("str = %d, points = %d", e.State.Player.Stats.Str, e.State.SkillPoints)
	}

	e.SpendSkillPoint("luck")
	if e.State.SkillPoints != 1 {
		t.Error("unknown stat must not consume a point")
	}

	e.SpendSkillPoint("dex")
	e.SpendSkillPoint("int")
	if e.State.SkillPoints != 0 {
		t.Errorf("points = %d, want 0", e.State.SkillPoints)
	}
	if e.State.Player.Stats.Int != 1 {
		t.Error("spend without points must be a no-op")
	}
}

func TestRestore_ContinuesRNGStream(t *testing.T) {
	e := NewSeeded(testDefs(), "", "", 77)
	e.Step("wait")
	e.Step("wait")

	snapshot := *e.State
	restored := Restore(testDefs(), &snapshot)

	a := e.RNG.Roll(20)
	b := restored.RNG.Roll(20)
	if a != b {
		t.Fatalf("restored stream diverged: %d vs %d", a, b)
	}
}
