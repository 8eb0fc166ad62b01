// Package script runs Lua systems on the App lifecycle using gopher-lua.
//
// Every script is a chunk returning a table of optional hooks:
//
//	local s = {}
//	function s.on_start() end
//	function s.on_update(dt) end
//	function s.on_fixed_update(dt) end
//	function s.on_stop() end
//	return s
//
// Scripts share one VM and reach the World through the global bigby table:
// log, spawn, destroy, get, set, count, each and stop. Components are named
// by the names given to Expose.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only: every
// call into Lua happens on the goroutine owning the World.
type Engine struct {
	vm      *lua.LState
	app     *app.App
	log     *zap.Logger
	exposed map[string]ecs.ComponentType
	systems []*System
	closed  bool
}

func newEngine(a *app.App, log *zap.Logger) *Engine {
	e := &Engine{
		vm:      lua.NewState(),
		app:     a,
		log:     log,
		exposed: make(map[string]ecs.ComponentType),
	}
	e.vm.SetGlobal("API_VERSION", lua.LNumber(1))
	e.vm.SetGlobal("bigby", e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"log":     e.luaLog,
		"spawn":   e.luaSpawn,
		"destroy": e.luaDestroy,
		"get":     e.luaGet,
		"set":     e.luaSet,
		"count":   e.luaCount,
		"each":    e.luaEach,
		"stop":    e.luaStop,
	}))
	return e
}

// Close releases the VM. Hooks called afterwards do nothing.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.vm.Close()
}

// Systems returns the loaded script systems in load order.
func (e *Engine) Systems() []*System {
	return e.systems
}

// readPaths returns the sources behind files and directories; directories
// contribute their .lua files in name order and missing paths are skipped.
func readPaths(paths []string) ([]source, error) {
	var sources []source
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			code, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source{name: path, code: string(code)})
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
				continue
			}
			file := filepath.Join(path, entry.Name())
			code, err := os.ReadFile(file)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source{name: file, code: string(code)})
		}
	}
	return sources, nil
}

// load compiles and runs a script, returning its hook table.
func (e *Engine) load(src source) (*System, error) {
	fn, err := e.vm.Load(strings.NewReader(src.code), src.name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", src.name, err)
	}

	e.vm.Push(fn)
	if err := e.vm.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("run %s: %w", src.name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	hooks, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want a table of hooks", src.name, ret.Type())
	}

	e.log.Debug("loaded lua script", zap.String("file", src.name))
	return &System{engine: e, name: src.name, hooks: hooks}, nil
}

func (e *Engine) component(L *lua.LState, n int) ecs.ComponentType {
	name := L.CheckString(n)
	t, ok := e.exposed[name]
	if !ok {
		L.ArgError(n, fmt.Sprintf("unknown component %q", name))
	}
	return t
}

func (e *Engine) entity(L *lua.LState, n int) *ecs.Entity {
	return e.app.Entity(ecs.EntityID(L.CheckNumber(n)))
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info(L.CheckString(1))
	return 0
}

// spawn(name [, fields]) -> id
func (e *Engine) luaSpawn(L *lua.LState) int {
	t := e.component(L, 1)
	ptr, err := t.New()
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	if fields := L.OptTable(2, nil); fields != nil {
		if err := fromTable(fields, reflect.ValueOf(ptr).Elem()); err != nil {
			L.ArgError(2, err.Error())
		}
	}

	entity, err := e.app.Spawn(ptr)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	L.Push(lua.LNumber(entity.ID()))
	return 1
}

// destroy(id) -> bool
func (e *Engine) luaDestroy(L *lua.LState) int {
	entity := e.entity(L, 1)
	L.Push(lua.LBool(entity != nil && e.app.Destroy(entity)))
	return 1
}

// get(id, name) -> table or nil
func (e *Engine) luaGet(L *lua.LState) int {
	entity := e.entity(L, 1)
	t := e.component(L, 2)
	if entity == nil {
		L.Push(lua.LNil)
		return 1
	}
	c := entity.Component(t)
	if c == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toTable(L, reflect.ValueOf(c).Elem()))
	return 1
}

// set(id, name, fields) -> bool
func (e *Engine) luaSet(L *lua.LState) int {
	entity := e.entity(L, 1)
	t := e.component(L, 2)
	fields := L.CheckTable(3)
	if entity == nil {
		L.Push(lua.LFalse)
		return 1
	}
	c := entity.Component(t)
	if c == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := fromTable(fields, reflect.ValueOf(c).Elem()); err != nil {
		L.ArgError(3, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// count(name) -> number
func (e *Engine) luaCount(L *lua.LState) int {
	t := e.component(L, 1)
	L.Push(lua.LNumber(e.app.MustQuery(t).Len()))
	return 1
}

// each(name, fn(id))
func (e *Engine) luaEach(L *lua.LState) int {
	t := e.component(L, 1)
	fn := L.CheckFunction(2)
	for entity := range e.app.MustQuery(t).Iter() {
		L.Push(fn)
		L.Push(lua.LNumber(entity.ID()))
		L.Call(1, 0)
	}
	return 0
}

func (e *Engine) luaStop(L *lua.LState) int {
	_ = e.app.Stop()
	return 0
}
