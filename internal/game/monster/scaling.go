// Package monster provides monster templates, live battle instances, the
// floor-driven scaling formulas, and the registry that picks encounters.
package monster

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/minidungeon/internal/game/combat"
)

// BaseHealth returns a monster's unscaled health pool for a dungeon level.
//
//	20 + T(level-1) + (level-1)*level*(level+1)/12
//
// where T(n) is the nth triangular number. The cubic term makes deeper floors
// need proportionally more hits.
//
// Postcondition: strictly increasing for 1 <= level <= 91; from level 91 on it
// is saturated at math.MaxUint16.
func BaseHealth(level uint8) uint16 {
	if level == 0 {
		level = 1
	}
	l := int(level)
	return combat.SaturateUint16(20 + (l-1)*l/2 + (l-1)*l*(l+1)/12)
}

// PowerLevel is a monster's attack tier.
type PowerLevel uint8

const (
	PowerWeak PowerLevel = iota
	PowerModerate
	PowerStrong
	PowerMighty
	PowerLegendary
)

var powerNames = []string{"weak", "moderate", "strong", "mighty", "legendary"}

// powerDivisors divides the floor's health pool into one monster hit.
var powerDivisors = []uint16{10, 8, 6, 4, 3}

// PowerDivisor maps a power tier to the divisor applied to the player health
// curve to get the monster's base damage. Higher tiers have smaller divisors.
//
// Postcondition: result >= 1. Tiers above PowerLegendary use the legendary divisor.
func PowerDivisor(p PowerLevel) uint16 {
	if int(p) >= len(powerDivisors) {
		return powerDivisors[len(powerDivisors)-1]
	}
	return powerDivisors[p]
}

// String returns the tier name used in content files.
func (p PowerLevel) String() string {
	if int(p) < len(powerNames) {
		return powerNames[p]
	}
	return strconv.Itoa(int(p))
}

// UnmarshalYAML accepts a tier name or a numeric index.
func (p *PowerLevel) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseLevel(node, powerNames)
	if err != nil {
		return fmt.Errorf("power_level: %w", err)
	}
	*p = PowerLevel(v)
	return nil
}

// DefenseLevel is an abstract defense tier; LookupDefense resolves the stat.
type DefenseLevel uint8

const (
	DefenseNone DefenseLevel = iota
	DefenseLow
	DefenseMedium
	DefenseHigh
	DefenseExtreme
)

var defenseNames = []string{"none", "low", "medium", "high", "extreme"}

var defenseValues = []uint8{0, 3, 7, 12, 20}

// LookupDefense resolves a defense tier into the raw defense stat fed to
// combat.ApplyDefense. Balance tuning happens here, not in monster content.
//
// Postcondition: tiers above DefenseExtreme use the extreme value.
func LookupDefense(level DefenseLevel) uint8 {
	if int(level) >= len(defenseValues) {
		return defenseValues[len(defenseValues)-1]
	}
	return defenseValues[level]
}

// String returns the tier name used in content files.
func (d DefenseLevel) String() string {
	if int(d) < len(defenseNames) {
		return defenseNames[d]
	}
	return strconv.Itoa(int(d))
}

// UnmarshalYAML accepts a tier name or a numeric index.
func (d *DefenseLevel) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseLevel(node, defenseNames)
	if err != nil {
		return fmt.Errorf("defense level: %w", err)
	}
	*d = DefenseLevel(v)
	return nil
}

func parseLevel(node *yaml.Node, names []string) (uint8, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("expected scalar, got yaml kind %d", node.Kind)
	}
	raw := strings.ToLower(strings.TrimSpace(node.Value))
	for i, n := range names {
		if n == raw {
			return uint8(i), nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unknown tier %q (want one of %s)", node.Value, strings.Join(names, ", "))
	}
	if n < 0 || n >= len(names) {
		return 0, fmt.Errorf("tier %d out of range [0,%d]", n, len(names)-1)
	}
	return uint8(n), nil
}
