package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Quest "id" { ... } — curried: Quest("id") returns a function that
	// takes a table.
	L.SetGlobal("Quest", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.quests = append(coll.quests, rawQuest{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// NPC "id" { dialog = { ... } } — curried.
	L.SetGlobal("NPC", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.npcs = append(coll.npcs, rawNPC{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// CounterAtLeast("counter", n)
	L.SetGlobal("CounterAtLeast", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		n := L.CheckNumber(2)
		inner := L.NewTable()
		inner.RawSetString(counter, n)
		tbl := L.NewTable()
		tbl.RawSetString("flag_at_least", inner)
		L.Push(tbl)
		return 1
	}))

	// InventoryHas("item", ...)
	L.SetGlobal("InventoryHas", L.NewFunction(func(L *lua.LState) int {
		items := L.NewTable()
		for i := 1; i <= L.GetTop(); i++ {
			items.Append(lua.LString(L.CheckString(i)))
		}
		tbl := L.NewTable()
		tbl.RawSetString("inventory_has", items)
		L.Push(tbl)
		return 1
	}))

	// ReputationAtLeast(n)
	L.SetGlobal("ReputationAtLeast", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString("reputation_at_least", n)
		L.Push(tbl)
		return 1
	}))
}
