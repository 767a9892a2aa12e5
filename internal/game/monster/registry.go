package monster

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/dice"
)

// ErrNoMonsters is returned when no template's floor band covers a floor.
var ErrNoMonsters = errors.New("no monsters for floor")

// ErrUnknownMonster is returned when a group/id pair has no template.
var ErrUnknownMonster = errors.New("unknown monster")

// Registry holds every monster template and chooses the monster for each battle.
//
// A forced encounter pinned with Pin takes priority over the random draw and
// keeps the health it was pinned with. The forced flag is read and cleared
// within Select, so a pinned monster is used exactly once.
//
// Registry is not safe for concurrent use; the battle engine is single-threaded.
type Registry struct {
	templates []*Template
	byKey     map[string]*Template
	roller    *dice.Roller
	scaler    HealthScaler
	logger    *zap.Logger

	forced bool
	pinned Monster
}

// NewRegistry builds a Registry over templates.
//
// Precondition: roller, scaler and logger must be non-nil.
// Postcondition: Returns an error if templates is empty or two templates share a key.
func NewRegistry(templates []*Template, roller *dice.Roller, scaler HealthScaler, logger *zap.Logger) (*Registry, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("monster registry: %w", ErrNoMonsters)
	}
	byKey := make(map[string]*Template, len(templates))
	for _, t := range templates {
		if _, dup := byKey[t.Key()]; dup {
			return nil, fmt.Errorf("monster registry: duplicate template %q", t.Key())
		}
		byKey[t.Key()] = t
	}
	sorted := make([]*Template, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	return &Registry{
		templates: sorted,
		byKey:     byKey,
		roller:    roller,
		scaler:    scaler,
		logger:    logger,
	}, nil
}

// Template returns the template with the given group and id.
//
// Postcondition: ok is true iff the pair is registered.
func (r *Registry) Template(group, id string) (*Template, bool) {
	t, ok := r.byKey[group+"/"+id]
	return t, ok
}

// ForFloor returns the templates whose difficulty band covers floor, ordered by key.
func (r *Registry) ForFloor(floor uint8) []*Template {
	var out []*Template
	for _, t := range r.templates {
		if t.ValidOn(floor) {
			out = append(out, t)
		}
	}
	return out
}

// ComputeHealth returns the scaled health pool for m on floor.
//
// Postcondition: result >= 1.
func (r *Registry) ComputeHealth(m Monster, floor uint8) uint16 {
	return r.scaler.ScaleHealth(m, floor, BaseHealth(floor))
}

// Spawn creates a fresh instance of group/id at full health for floor.
//
// Postcondition: Returns ErrUnknownMonster if the pair is not registered.
func (r *Registry) Spawn(group, id string, floor uint8) (Monster, error) {
	tmpl, ok := r.Template(group, id)
	if !ok {
		return Monster{}, fmt.Errorf("%w: %s/%s", ErrUnknownMonster, group, id)
	}
	return r.spawn(tmpl, floor), nil
}

func (r *Registry) spawn(tmpl *Template, floor uint8) Monster {
	m := New(tmpl)
	m.MaxHealth = r.ComputeHealth(m, floor)
	m.Health = int(m.MaxHealth)
	return m
}

// Pin forces the next Select to return m unchanged, including its health.
// Scripted encounters and battle resumption both go through Pin.
//
// Postcondition: IsForced() is true.
func (r *Registry) Pin(m Monster) {
	r.pinned = m
	r.forced = true
}

// IsForced reports whether the next Select returns a pinned monster.
func (r *Registry) IsForced() bool {
	return r.forced
}

// ClearForced drops a pending pinned monster without consuming it.
func (r *Registry) ClearForced() {
	r.forced = false
	r.pinned = Monster{}
}

// Select returns the monster for a battle on floor.
//
// If a monster is pinned it is returned with its existing health and the
// forced flag is cleared. Otherwise a template valid for floor is drawn
// uniformly at random and spawned at full scaled health.
//
// Postcondition: IsForced() is false; returns ErrNoMonsters if no band covers floor.
func (r *Registry) Select(floor uint8) (Monster, error) {
	if r.forced {
		m := r.pinned
		r.ClearForced()
		r.logger.Debug("forced encounter",
			zap.String("monster", m.Key()),
			zap.Int("health", m.Health),
		)
		return m, nil
	}

	candidates := r.ForFloor(floor)
	if len(candidates) == 0 {
		return Monster{}, fmt.Errorf("%w %d", ErrNoMonsters, floor)
	}
	tmpl := candidates[r.roller.Roll("encounter", len(candidates))]
	return r.spawn(tmpl, floor), nil
}
