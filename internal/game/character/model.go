// Package character defines the player character record the battle engine reads and mutates.
package character

import "github.com/cory-johannsen/minidungeon/internal/game/combat"

// Stats holds the four combat stats of a character.
type Stats struct {
	Strength     uint8 `json:"strength"`
	Magic        uint8 `json:"magic"`
	Defense      uint8 `json:"defense"`
	MagicDefense uint8 `json:"magic_defense"`
}

// Character represents the player's persistent state within a run.
//
// Health may fall below zero after a hit; any value <= 0 means dead.
type Character struct {
	Name       string `json:"name"`
	Level      uint16 `json:"level"`
	Experience uint16 `json:"experience"`
	Gold       uint16 `json:"gold"`
	Health     int    `json:"health"`
	MaxHealth  uint16 `json:"max_health"`
	Attributes Stats  `json:"stats"`
	StatPoints uint8  `json:"stat_points"`
}

// Stats returns the character's combat stats.
func (c *Character) Stats() Stats {
	return c.Attributes
}

// CurrentLevel returns the character's level.
func (c *Character) CurrentLevel() uint16 {
	return c.Level
}

// IsDead reports whether health is zero or less.
func (c *Character) IsDead() bool {
	return c.Health <= 0
}

// DisplayHealth returns health clamped at zero.
func (c *Character) DisplayHealth() int {
	if c.Health < 0 {
		return 0
	}
	return c.Health
}

// DealDamage subtracts amount from health.
//
// Postcondition: Returns true iff the character is dead after the hit.
func (c *Character) DealDamage(amount uint16) bool {
	c.Health -= int(amount)
	return c.IsDead()
}

// Heal restores percent of max health, capped at max health.
//
// Postcondition: never raises Health above MaxHealth or lowers it; returns the health restored.
func (c *Character) Heal(percent uint16) int {
	gain := int(combat.ApplyPercent(c.MaxHealth, percent))
	if room := int(c.MaxHealth) - c.Health; gain > room {
		gain = max(room, 0)
	}
	c.Health += gain
	return gain
}

// GrantGold adds amount to the purse, saturating at the uint16 maximum.
func (c *Character) GrantGold(amount uint16) {
	c.Gold = combat.SaturateUint16(int(c.Gold) + int(amount))
}

// SpendGold deducts amount if the purse covers it.
//
// Postcondition: Returns false and leaves Gold unchanged when Gold < amount.
func (c *Character) SpendGold(amount uint16) bool {
	if c.Gold < amount {
		return false
	}
	c.Gold -= amount
	return true
}

// GrantExperience awards experience for a victory on floor.
//
// Postcondition: Returns true iff the total reached the next level's threshold.
func (c *Character) GrantExperience(floor uint8) bool {
	c.Experience = combat.SaturateUint16(int(c.Experience) + int(floor))
	return c.Experience >= ExperienceToLevel(c.Level)
}

// LevelUp advances the character one level, carrying surplus experience,
// granting a stat point and refilling health to the new maximum.
func (c *Character) LevelUp() {
	need := ExperienceToLevel(c.Level)
	if c.Experience >= need {
		c.Experience -= need
	} else {
		c.Experience = 0
	}
	if c.Level < MaxLevel {
		c.Level++
	}
	if c.StatPoints < 255 {
		c.StatPoints++
	}
	c.MaxHealth = ComputeHealth(c.Level)
	c.Health = int(c.MaxHealth)
}

// AddStatPoint grants one unspent stat point.
func (c *Character) AddStatPoint() {
	if c.StatPoints < 255 {
		c.StatPoints++
	}
}
