package monster

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/combat"
)

// HealthScaler is the per-monster hook applied to the floor's base health.
type HealthScaler interface {
	// ScaleHealth returns the final health pool for m on floor given base.
	ScaleHealth(m Monster, floor uint8, base uint16) uint16
}

// PercentScaler scales base health by each template's health_percent.
type PercentScaler struct {
	templates map[string]*Template
}

// NewPercentScaler indexes templates by key.
//
// Postcondition: unknown monsters are returned unscaled.
func NewPercentScaler(templates []*Template) *PercentScaler {
	idx := make(map[string]*Template, len(templates))
	for _, t := range templates {
		idx[t.Key()] = t
	}
	return &PercentScaler{templates: idx}
}

// ScaleHealth applies the template's health percentage.
//
// Postcondition: result >= 1.
func (s *PercentScaler) ScaleHealth(m Monster, _ uint8, base uint16) uint16 {
	tmpl, ok := s.templates[m.Key()]
	if !ok {
		return base
	}
	scaled := combat.ApplyPercent(base, tmpl.HealthPercent)
	if scaled == 0 {
		return 1
	}
	return scaled
}

// HealthHook is a scripted override consulted after the built-in scaler.
// ok is false when no script handles the monster.
type HealthHook interface {
	ScaleMonsterHealth(group, id string, floor int, health int) (int, bool)
}

// HookScaler runs a base scaler and then lets a script adjust the result.
type HookScaler struct {
	base   HealthScaler
	hook   HealthHook
	logger *zap.Logger
}

// NewHookScaler chains hook after base.
//
// Precondition: base, hook and logger must be non-nil.
func NewHookScaler(base HealthScaler, hook HealthHook, logger *zap.Logger) *HookScaler {
	return &HookScaler{base: base, hook: hook, logger: logger}
}

// ScaleHealth applies base, then the hook if it handles m.
//
// Postcondition: result >= 1; a hook result outside [1, MaxUint16] is clamped.
func (s *HookScaler) ScaleHealth(m Monster, floor uint8, base uint16) uint16 {
	health := s.base.ScaleHealth(m, floor, base)
	scripted, ok := s.hook.ScaleMonsterHealth(m.Group, m.ID, int(floor), int(health))
	if !ok {
		return health
	}
	s.logger.Debug("scripted monster health",
		zap.String("monster", m.Key()),
		zap.Int("floor", int(floor)),
		zap.Uint16("before", health),
		zap.Int("after", scripted),
	)
	if scripted < 1 {
		return 1
	}
	return combat.SaturateUint16(scripted)
}
