package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// HookScaleMonsterHealth is the Lua global consulted for monster health:
//
//	function scale_monster_health(group, id, floor, health) -> number | nil
//
// Returning nil leaves the health unchanged.
const HookScaleMonsterHealth = "scale_monster_health"

// ScaleMonsterHealth runs the health hook in the monster group's scope,
// falling back to the global scope.
//
// Postcondition: ok is false when no script handles the monster, or the hook
// returned a non-number, a non-finite number, or one outside the int32 range.
func (m *Manager) ScaleMonsterHealth(group, id string, floor int, health int) (int, bool) {
	ret, err := m.CallHook(group, HookScaleMonsterHealth,
		lua.LString(group),
		lua.LString(id),
		lua.LNumber(floor),
		lua.LNumber(health),
	)
	if err != nil {
		return 0, false
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt32 || f > math.MaxInt32 {
		m.logger.Warn("scripting: hook returned unusable number",
			zap.String("scope", group),
			zap.String("hook", HookScaleMonsterHealth),
			zap.Float64("value", f),
		)
		return 0, false
	}
	return int(n), true
}
