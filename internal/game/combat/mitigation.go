package combat

import "math"

// Defense band boundaries. Each band interpolates linearly and meets the next
// band's formula at its lower edge.
const (
	bandLight  = 5
	bandMedium = 10
	bandHeavy  = 15
)

// DefenseMultiplier returns the percentage of raw damage that passes through
// the given defense stat.
//
//	[0,5)   100 - 6*d
//	[5,10)   70 - 4*(d-5)
//	[10,15)  50 - 3*(d-10)
//	[15,∞)   35 - 2*(d-15)
//
// Postcondition: result <= 100; result is negative for defense above 32.
func DefenseMultiplier(defense uint8) int {
	d := int(defense)
	switch {
	case d < bandLight:
		return 100 - 6*d
	case d < bandMedium:
		return 70 - 4*(d-bandLight)
	case d < bandHeavy:
		return 50 - 3*(d-bandMedium)
	default:
		return 35 - 2*(d-bandHeavy)
	}
}

// ApplyDefense mitigates rawDamage by defense.
//
// The result is rawDamage * DefenseMultiplier(defense) / 100 with truncating
// division, floored at 1. A negative multiplier also yields 1.
//
// Postcondition: 1 <= result <= rawDamage when rawDamage >= 1.
func ApplyDefense(rawDamage uint16, defense uint8) uint16 {
	total := int(rawDamage) * DefenseMultiplier(defense) / 100
	if total <= 0 {
		return 1
	}
	return SaturateUint16(total)
}

// SaturateUint16 clamps v into [0, math.MaxUint16].
func SaturateUint16(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
