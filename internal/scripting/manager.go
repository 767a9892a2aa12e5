package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when a scope has no VM of its own.
const globalScope = "__global__"

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
// A scope is a monster group; the global scope holds shared scripts.
//
// Manager is safe for concurrent use. Calls into the same VM are serialized.
type Manager struct {
	mu        sync.Mutex
	states    map[string]*lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		states:    make(map[string]*lua.LState),
		instLimit: normalizeLimit(instLimit),
		roller:    roller,
		logger:    logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope's VM is replaced; returns error on Lua load failure.
func (m *Manager) LoadScope(scope, scriptDir string) error {
	return m.loadInto(scope, scriptDir)
}

// LoadGlobal creates the fallback VM shared by every scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string) error {
	return m.loadInto(globalScope, scriptDir)
}

// LoadTree loads dir's own *.lua files as the global scope and each
// subdirectory as the scope named after it.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadTree(dir string) error {
	if err := m.LoadGlobal(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script tree %q: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadScope(e.Name(), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) loadInto(key, scriptDir string) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		err := RunLimited(L, m.instLimit, func() error { return L.DoFile(path) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.mu.Unlock()

	m.logger.Debug("scripts loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, or its VM does not define the hook, the global VM is tried. Returns
// (LNil, nil) if the hook is not defined anywhere. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, fn := m.lookup(scope, hook)
	if L == nil {
		return lua.LNil, nil
	}

	err := RunLimited(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// lookup finds the VM defining hook, preferring scope over the global VM.
// Caller must hold m.mu.
func (m *Manager) lookup(scope, hook string) (*lua.LState, lua.LValue) {
	for _, key := range []string{scope, globalScope} {
		L, ok := m.states[key]
		if !ok {
			continue
		}
		if fn := L.GetGlobal(hook); fn != lua.LNil {
			return L, fn
		}
	}
	return nil, lua.LNil
}

// Close releases every VM.
//
// Postcondition: CallHook returns LNil for every scope.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		L.Close()
		delete(m.states, key)
	}
}
