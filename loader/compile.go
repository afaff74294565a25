// Package loader loads Lua content into Go structs at startup. The Lua VM
// is discarded after loading, so nothing Lua survives into the session.
package loader

import (
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/types"
	lua "github.com/yuin/gopher-lua"
)

// rawQuest holds a quest table before compilation.
type rawQuest struct {
	id    string
	table *lua.LTable
}

// rawNPC holds an NPC table before compilation.
type rawNPC struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toStringSlice converts a Lua array of strings, skipping non-strings.
func toStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct. Malformed
// entries (missing ids, non-table stages) are skipped rather than fatal.
func compile(coll *collector) *state.Defs {
	defs := &state.Defs{
		Dialogs: map[string][]types.DialogNode{},
	}

	for _, rq := range coll.quests {
		q := compileQuest(rq)
		if q != nil {
			defs.Quests = append(defs.Quests, *q)
		}
	}
	for _, rn := range coll.npcs {
		graph := compileDialog(getTable(rn.table, "dialog"))
		if len(graph) > 0 {
			defs.Dialogs[rn.id] = graph
		}
	}
	return defs
}

func compileQuest(rq rawQuest) *types.QuestDef {
	if rq.id == "" {
		return nil
	}
	q := &types.QuestDef{
		ID:    rq.id,
		Title: getString(rq.table, "title"),
	}
	stages := getTable(rq.table, "stages")
	if stages == nil {
		return nil
	}
	for i := 1; i <= stages.MaxN(); i++ {
		st, ok := stages.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		stage := types.StageDef{
			ID:               getString(st, "id"),
			StartTriggers:    toStringSlice(getTable(st, "start_triggers")),
			CompleteTriggers: toStringSlice(getTable(st, "complete_triggers")),
			Suggested:        toStringSlice(getTable(st, "suggested")),
		}
		if stage.ID == "" {
			continue
		}
		stage.CompleteCondition = compileCondition(getTable(st, "complete_condition"))
		if rw := getTable(st, "rewards"); rw != nil {
			stage.Rewards = types.Rewards{
				ReputationDelta: getInt(rw, "reputation_delta"),
				InventoryAdd:    toStringSlice(getTable(rw, "inventory_add")),
			}
		}
		q.Stages = append(q.Stages, stage)
	}
	if len(q.Stages) == 0 {
		return nil
	}
	return q
}

func compileCondition(tbl *lua.LTable) *types.Condition {
	if tbl == nil {
		return nil
	}
	cond := &types.Condition{}
	populated := false

	if fa := getTable(tbl, "flag_at_least"); fa != nil {
		cond.FlagAtLeast = map[string]int{}
		fa.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vn, vok := v.(lua.LNumber)
			if kok && vok {
				cond.FlagAtLeast[string(ks)] = int(vn)
			}
		})
		populated = len(cond.FlagAtLeast) > 0
	}
	if items := toStringSlice(getTable(tbl, "inventory_has")); len(items) > 0 {
		cond.InventoryHas = items
		populated = true
	}
	if v := tbl.RawGetString("reputation_at_least"); v != lua.LNil {
		if n, ok := v.(lua.LNumber); ok {
			rep := int(n)
			cond.ReputationAtLeast = &rep
			populated = true
		}
	}
	if !populated {
		return nil
	}
	return cond
}

func compileDialog(tbl *lua.LTable) []types.DialogNode {
	if tbl == nil {
		return nil
	}
	var graph []types.DialogNode
	for i := 1; i <= tbl.MaxN(); i++ {
		nt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		node := types.DialogNode{
			ID:   getString(nt, "id"),
			Text: getString(nt, "text"),
			Next: getString(nt, "next"),
		}
		if node.ID == "" {
			continue
		}
		if choices := getTable(nt, "choices"); choices != nil {
			for j := 1; j <= choices.MaxN(); j++ {
				ct, ok := choices.RawGetInt(j).(*lua.LTable)
				if !ok {
					continue
				}
				choice := types.DialogChoice{
					ID:    getString(ct, "id"),
					Label: getString(ct, "label"),
					Next:  getString(ct, "next"),
					End:   getBool(ct, "end_dialog", false),
				}
				if choice.ID == "" {
					continue
				}
				choice.Effect = compileEffect(getTable(ct, "effect"))
				node.Choices = append(node.Choices, choice)
			}
		}
		graph = append(graph, node)
	}
	return graph
}

func compileEffect(tbl *lua.LTable) *types.DialogEffect {
	if tbl == nil {
		return nil
	}
	effect := &types.DialogEffect{
		InventoryAdd:  toStringSlice(getTable(tbl, "inventory_add")),
		QuestOffer:    getString(tbl, "quest_offer"),
		CompleteQuest: getString(tbl, "complete_quest"),
		AddPerk:       getString(tbl, "add_perk"),
	}
	if v := tbl.RawGetString("reputation_delta"); v != lua.LNil {
		if n, ok := v.(lua.LNumber); ok {
			rep := int(n)
			effect.ReputationDelta = &rep
		}
	}
	return effect
}
