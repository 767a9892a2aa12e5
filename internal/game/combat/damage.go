// Package combat implements the damage arithmetic of battle resolution:
// defense mitigation curves and the player's attack formula.
package combat

// AttackKind selects the stat, defense, and multipliers an attack uses.
type AttackKind int

const (
	Physical AttackKind = iota
	Fire
	Ice
	Lightning
)

// String returns a human-readable attack label.
func (k AttackKind) String() string {
	switch k {
	case Physical:
		return "physical"
	case Fire:
		return "fire"
	case Ice:
		return "ice"
	case Lightning:
		return "lightning"
	default:
		return "unknown"
	}
}

// IsElemental reports whether k is driven by the magic stat and resisted by
// magic defense.
func (k AttackKind) IsElemental() bool {
	return k == Fire || k == Ice || k == Lightning
}

// BaseMultiplier is the flat multiplier folded into the damage formula:
// 1 for physical attacks, 3 for elemental ones.
func (k AttackKind) BaseMultiplier() uint8 {
	if k.IsElemental() {
		return 3
	}
	return 1
}

// PlayerDamage computes the unmitigated damage of a player attack.
//
//	base = mult * (2 + s + 4*((s*l)/8 + s*s/64 + l*l/64))
//
// where s is the acting stat (strength or magic) and l is the player level.
//
// Postcondition: result saturates at math.MaxUint16 instead of wrapping.
func PlayerDamage(stat uint8, level uint16, baseMultiplier uint8) uint16 {
	s := int(stat)
	l := int(level)
	inner := (s*l)/8 + (s*s)/64 + (l*l)/64
	return SaturateUint16(int(baseMultiplier) * (2 + s + 4*inner))
}

// ApplyPercent scales damage by percent/100 with truncating division.
//
// Postcondition: result saturates at math.MaxUint16; percent 0 yields 0.
func ApplyPercent(damage uint16, percent uint16) uint16 {
	return SaturateUint16(int(damage) * int(percent) / 100)
}

// Strike is the full result of one player attack before it is applied.
type Strike struct {
	Kind      AttackKind
	Raw       uint16
	Defense   uint8
	Mitigated uint16
	// Final is Mitigated after the elemental and item bonus percentages.
	Final uint16
}

// ResolveStrike runs the player attack pipeline: formula, mitigation, then
// each bonus percentage in order.
//
// Postcondition: Final == ApplyPercent applied to Mitigated for every bonus.
func ResolveStrike(kind AttackKind, stat uint8, level uint16, defense uint8, bonuses ...uint16) Strike {
	raw := PlayerDamage(stat, level, kind.BaseMultiplier())
	mitigated := ApplyDefense(raw, defense)
	final := mitigated
	for _, pct := range bonuses {
		final = ApplyPercent(final, pct)
	}
	return Strike{
		Kind:      kind,
		Raw:       raw,
		Defense:   defense,
		Mitigated: mitigated,
		Final:     final,
	}
}
