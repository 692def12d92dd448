package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/arpgcore/engine/state"
)

// rawDef is one curried definition ("Weapon 'id' { ... }") before
// compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	arena    *lua.LTable
	player   *lua.LTable
	physics  *lua.LTable
	weapons  []rawDef
	patterns []rawDef
	skills   []rawDef
	enemies  []rawDef
}

// Load reads all .lua files from dir, compiles them into a catalog,
// validates references and tuning ranges, and returns the immutable Defs.
// The Lua VM is discarded after loading.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}

	warnings, err := validate(defs)
	for _, w := range warnings {
		slog.Warn("content", "dir", dir, "warning", w)
	}
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	// Content may use math.random for table-building, but never reseed it.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// sortedLuaFiles puts game.lua first and the rest in alphabetical order.
func sortedLuaFiles(files []string) []string {
	var game bool
	others := make([]string, 0, len(files))
	for _, f := range files {
		if f == "game.lua" {
			game = true
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if game {
		return append([]string{"game.lua"}, others...)
	}
	return others
}
