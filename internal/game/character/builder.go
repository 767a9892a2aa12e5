package character

import (
	"errors"
	"fmt"
)

// Stat names accepted by Allocate.
const (
	StatStrength     = "strength"
	StatMagic        = "magic"
	StatDefense      = "defense"
	StatMagicDefense = "magic_defense"
)

// StartingStats is the stat line of a new character.
var StartingStats = Stats{Strength: 1, Magic: 1, Defense: 1, MagicDefense: 1}

// New constructs a level 1 character at full health.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Character ready for a new run, or a non-nil error.
func New(name string) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	maxHealth := ComputeHealth(1)
	return &Character{
		Name:       name,
		Level:      1,
		Health:     int(maxHealth),
		MaxHealth:  maxHealth,
		Attributes: StartingStats,
	}, nil
}

// Allocate spends one stat point on the named stat.
//
// Postcondition: Returns an error and leaves the character unchanged when no
// point is available, the name is unknown, or the stat is already at 255.
func (c *Character) Allocate(stat string) error {
	if c.StatPoints == 0 {
		return errors.New("no stat points to spend")
	}
	var target *uint8
	switch stat {
	case StatStrength:
		target = &c.Attributes.Strength
	case StatMagic:
		target = &c.Attributes.Magic
	case StatDefense:
		target = &c.Attributes.Defense
	case StatMagicDefense:
		target = &c.Attributes.MagicDefense
	default:
		return fmt.Errorf("unknown stat %q", stat)
	}
	if *target == 255 {
		return fmt.Errorf("%s is already at maximum", stat)
	}
	*target++
	c.StatPoints--
	return nil
}
