package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(n)                 -- uniform in [0, n)
//	engine.scaling.base_health(floor)   -- unscaled monster health
//	engine.scaling.player_health(level) -- player health curve
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "scaling", scalingModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		logFn := logFn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be > 0")
			return 0
		}
		L.Push(lua.LNumber(m.roller.Roll("script", n)))
		return 1
	}))
	return mod
}

func scalingModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "base_health", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(monster.BaseHealth(clampUint8(L.CheckInt(1)))))
		return 1
	}))
	L.SetField(mod, "player_health", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(character.ComputeHealth(combat.SaturateUint16(L.CheckInt(1)))))
		return 1
	}))
	return mod
}

func clampUint8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
