package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeContent(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const validQuests = `
Quest "essence" {
  title = "Threads of Moonlight",
  stages = {
    {
      id = "gather",
      start_triggers = { "ask for work" },
      complete_condition = CounterAtLeast("essence_count", 3),
      suggested = { "search for moon essence" },
    },
    {
      id = "deliver",
      complete_triggers = { "give essence" },
      rewards = { reputation_delta = 3, inventory_add = { "Lacquered Mask" } },
    },
  },
}

Quest "fetch" {
  title = "A Small Errand",
  stages = {
    {
      id = "find",
      start_triggers = { "accept the errand" },
      complete_condition = InventoryHas("Coin of Echoes"),
      rewards = { reputation_delta = 1 },
    },
  },
}
`

const validNPCs = `
NPC "maskmonger" {
  dialog = {
    {
      id = "root",
      text = "'Essence, three threads. Then we talk masks.'",
      choices = {
        {
          id = "work",
          label = "Ask for work",
          effect = { quest_offer = "essence" },
          next = "waiting",
        },
        { id = "bye", label = "Step away", end_dialog = true },
      },
    },
    {
      id = "waiting",
      text = "'Come back with the threads.'",
      next = "root",
    },
  },
}
`

func TestLoad_CompilesQuestsAndDialogs(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "quests.lua", validQuests)
	writeContent(t, dir, "npcs.lua", validNPCs)

	defs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(defs.Quests) != 2 {
		t.Fatalf("quests = %d, want 2", len(defs.Quests))
	}
	q := defs.QuestDef("essence")
	if q == nil || q.Title != "Threads of Moonlight" {
		t.Fatalf("quest = %+v", q)
	}
	if len(q.Stages) != 2 {
		t.Fatalf("stages = %+v", q.Stages)
	}
	gather := q.Stages[0]
	if gather.ID != "gather" {
		t.Errorf("stage order not preserved: %+v", q.Stages)
	}
	if len(gather.StartTriggers) != 1 || gather.StartTriggers[0] != "ask for work" {
		t.Errorf("start triggers = %v", gather.StartTriggers)
	}
	cond := gather.CompleteCondition
	if cond == nil || cond.FlagAtLeast["essence_count"] != 3 {
		t.Errorf("condition = %+v", cond)
	}
	deliver := q.Stages[1]
	if deliver.Rewards.ReputationDelta != 3 || len(deliver.Rewards.InventoryAdd) != 1 {
		t.Errorf("rewards = %+v", deliver.Rewards)
	}

	fetch := defs.QuestDef("fetch")
	if fetch == nil || fetch.Stages[0].CompleteCondition == nil {
		t.Fatalf("fetch = %+v", fetch)
	}
	if got := fetch.Stages[0].CompleteCondition.InventoryHas; len(got) != 1 || got[0] != "Coin of Echoes" {
		t.Errorf("inventory_has = %v", got)
	}

	graph := defs.Dialog("maskmonger")
	if len(graph) != 2 {
		t.Fatalf("graph = %+v", graph)
	}
	root := graph[0]
	if root.ID != "root" || len(root.Choices) != 2 {
		t.Fatalf("root = %+v", root)
	}
	work := root.Choices[0]
	if work.Effect == nil || work.Effect.QuestOffer != "essence" {
		t.Errorf("effect = %+v", work.Effect)
	}
	if work.Next != "waiting" {
		t.Errorf("choice next = %q", work.Next)
	}
	if !root.Choices[1].End {
		t.Error("end_dialog flag not compiled")
	}
	if graph[1].Next != "root" {
		t.Errorf("node next = %q", graph[1].Next)
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)

	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("want error for missing directory")
	}
}

func TestLoad_LuaSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "broken.lua", `Quest "x" {{{`)

	if _, err := Load(dir); err == nil {
		t.Fatal("want error for unparseable lua")
	}
}

func TestLoad_ValidationDanglingChoiceNext(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "npcs.lua", `
NPC "ghost" {
  dialog = {
    {
      id = "root",
      text = "...",
      choices = {
        { id = "go", label = "Go", next = "nowhere" },
      },
    },
  },
}
`)

	_, err := Load(dir)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !strings.Contains(ve.Error(), `points to undefined node "nowhere"`) {
		t.Errorf("err = %v", ve)
	}
}

func TestLoad_ValidationUndefinedQuestReference(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "npcs.lua", `
NPC "ghost" {
  dialog = {
    {
      id = "root",
      text = "...",
      choices = {
        { id = "offer", label = "Offer", effect = { quest_offer = "phantom" } },
      },
    },
  },
}
`)

	_, err := Load(dir)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !strings.Contains(ve.Error(), `offers undefined quest "phantom"`) {
		t.Errorf("err = %v", ve)
	}
}

func TestLoad_ValidationMissingRoot(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "npcs.lua", `
NPC "ghost" {
  dialog = {
    { id = "only", text = "..." },
  },
}
`)

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "no root node") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_MalformedEntriesSkipped(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "quests.lua", `
Quest "" {
  title = "Nameless",
  stages = { { id = "s" } },
}

Quest "stageless" {
  title = "Stageless",
  stages = {},
}

Quest "good" {
  title = "Good",
  stages = {
    { title = "stage without id is dropped" },
    { id = "s1", start_triggers = { "begin" } },
  },
}
`)

	defs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(defs.Quests) != 1 || defs.Quests[0].ID != "good" {
		t.Fatalf("quests = %+v", defs.Quests)
	}
	if len(defs.Quests[0].Stages) != 1 || defs.Quests[0].Stages[0].ID != "s1" {
		t.Errorf("stages = %+v", defs.Quests[0].Stages)
	}
}

func TestLoad_SandboxBlocksUnsafeGlobals(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "evil.lua", `dofile("/etc/passwd")`)

	if _, err := Load(dir); err == nil {
		t.Fatal("dofile must not be callable in content scripts")
	}
}

func TestLoad_ShippedContent(t *testing.T) {
	defs, err := Load("../content")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if defs.QuestDef("maskmonger_moon_essence") == nil {
		t.Error("maskmonger quest missing from shipped content")
	}
	if defs.QuestDef("broker_debt") == nil {
		t.Error("broker quest missing from shipped content")
	}
	for _, npc := range []string{"gate_twins", "maskmonger", "shadow_broker", "candle_scribe"} {
		if len(defs.Dialog(npc)) == 0 {
			t.Errorf("npc %q has no dialog graph", npc)
		}
	}
}
