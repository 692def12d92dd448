package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Singletons: Game { ... }, Arena { ... }, Player { ... }, Physics { ... }.
	// A later file may redefine one; the last definition wins.
	singleton := func(slot **lua.LTable) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			*slot = L.CheckTable(1)
			return 0
		})
	}
	L.SetGlobal("Game", singleton(&coll.game))
	L.SetGlobal("Arena", singleton(&coll.arena))
	L.SetGlobal("Player", singleton(&coll.player))
	L.SetGlobal("Physics", singleton(&coll.physics))

	// Catalog entries are curried: Weapon("id") returns a function that
	// takes the definition table.
	curried := func(list *[]rawDef) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*list = append(*list, rawDef{id: id, table: tbl})
				return 0
			}))
			return 1
		})
	}
	L.SetGlobal("Weapon", curried(&coll.weapons))
	L.SetGlobal("Pattern", curried(&coll.patterns))
	L.SetGlobal("Skill", curried(&coll.skills))
	L.SetGlobal("Enemy", curried(&coll.enemies))

	// Vec(x, y, z) builds a position table.
	L.SetGlobal("Vec", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("x", L.OptNumber(1, 0))
		tbl.RawSetString("y", L.OptNumber(2, 0))
		tbl.RawSetString("z", L.OptNumber(3, 0))
		L.Push(tbl)
		return 1
	}))
}
