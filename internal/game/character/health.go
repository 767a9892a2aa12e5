package character

import "github.com/cory-johannsen/minidungeon/internal/game/combat"

// MaxLevel is the highest level a character can reach.
const MaxLevel = 100

// ComputeHealth returns the health pool for level. Monsters use the same curve
// keyed by floor to derive their base attack.
//
// Precondition: level >= 1; zero is treated as 1.
// Postcondition: ComputeHealth(1) == 100 and the curve is non-decreasing.
func ComputeHealth(level uint16) uint16 {
	if level == 0 {
		level = 1
	}
	l := int(level) - 1
	return combat.SaturateUint16(100 + 10*l + l*l/2)
}

// ExperienceToLevel is the experience needed to advance past level.
func ExperienceToLevel(level uint16) uint16 {
	if level == 0 {
		level = 1
	}
	return combat.SaturateUint16(int(level) * 5)
}
