// Package inventory defines battle items, their definitions, and the player's bag.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/minidungeon/internal/game/combat"
)

// Kind identifies one of the fixed item types.
type Kind string

// Item kinds.
const (
	Potion          Kind = "potion"
	FullPotion      Kind = "full_potion"
	FireScroll      Kind = "fire_scroll"
	IceScroll       Kind = "ice_scroll"
	LightningScroll Kind = "lightning_scroll"
)

// Kinds lists every item kind in menu order.
var Kinds = []Kind{Potion, FullPotion, FireScroll, IceScroll, LightningScroll}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// AttackKind returns the elemental attack a scroll unleashes.
//
// Postcondition: ok is false for potions.
func (k Kind) AttackKind() (combat.AttackKind, bool) {
	switch k {
	case FireScroll:
		return combat.Fire, true
	case IceScroll:
		return combat.Ice, true
	case LightningScroll:
		return combat.Lightning, true
	default:
		return combat.Physical, false
	}
}

// IsHealing reports whether k is a potion.
func (k Kind) IsHealing() bool {
	return k == Potion || k == FullPotion
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	Kind        Kind   `yaml:"kind"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Cost        uint16 `yaml:"cost"`
	// HealPercent is the share of max health a potion restores.
	HealPercent uint16 `yaml:"heal_percent"`
	// BonusPercent scales a scroll's damage after mitigation; 0 means 100.
	BonusPercent uint16 `yaml:"bonus_percent"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if !d.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("Kind must be one of %v; got %q", Kinds, d.Kind))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if d.Cost == 0 {
		errs = append(errs, errors.New("Cost must be >= 1"))
	}
	if d.Kind.IsHealing() && (d.HealPercent == 0 || d.HealPercent > 100) {
		errs = append(errs, fmt.Errorf("HealPercent must be 1-100 for potions; got %d", d.HealPercent))
	}
	if !d.Kind.IsHealing() && d.HealPercent != 0 {
		errs = append(errs, errors.New("HealPercent is only valid for potions"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Bonus returns the post-mitigation damage percentage for a scroll.
func (d *ItemDef) Bonus() uint16 {
	if d.BonusPercent == 0 {
		return 100
	}
	return d.BonusPercent
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
