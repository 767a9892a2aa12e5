package monster

import "github.com/cory-johannsen/minidungeon/internal/game/combat"

// Monster is a live encounter instance. It is created when a battle starts,
// mutated by damage, and discarded when the battle ends.
//
// Health may go negative after a hit; any value <= 0 means defeated.
type Monster struct {
	Group             string
	ID                string
	Name              string
	ImageID           string
	PowerLevel        PowerLevel
	DefenseLevel      DefenseLevel
	MagicDefenseLevel DefenseLevel
	AllowPhysical     bool
	AllowMagic        bool
	GoldScale         uint16
	FirePercent       uint16
	IcePercent        uint16
	LightningPercent  uint16
	Health            int
	MaxHealth         uint16
}

// New creates a monster instance from tmpl with zero health. Callers assign
// health through the registry's scaling or directly for scripted encounters.
//
// Precondition: tmpl must be non-nil.
func New(tmpl *Template) Monster {
	return Monster{
		Group:             tmpl.Group,
		ID:                tmpl.ID,
		Name:              tmpl.Name,
		ImageID:           tmpl.ImageID,
		PowerLevel:        tmpl.PowerLevel,
		DefenseLevel:      tmpl.DefenseLevel,
		MagicDefenseLevel: tmpl.MagicDefenseLevel,
		AllowPhysical:     tmpl.AllowPhysical,
		AllowMagic:        tmpl.AllowMagic,
		GoldScale:         tmpl.GoldScale,
		FirePercent:       tmpl.FirePercent,
		IcePercent:        tmpl.IcePercent,
		LightningPercent:  tmpl.LightningPercent,
	}
}

// Key returns the "group/id" identity of the monster's template.
func (m *Monster) Key() string {
	return m.Group + "/" + m.ID
}

// IsDefeated reports whether the monster has zero or less health.
func (m *Monster) IsDefeated() bool {
	return m.Health <= 0
}

// DisplayHealth returns health clamped at zero for display.
func (m *Monster) DisplayHealth() int {
	if m.Health < 0 {
		return 0
	}
	return m.Health
}

// Damage subtracts amount from the monster's health.
func (m *Monster) Damage(amount uint16) {
	m.Health -= int(amount)
}

// DefenseAgainst resolves the raw defense stat used against an attack of kind k:
// physical attacks meet defense, elemental attacks meet magic defense.
func (m *Monster) DefenseAgainst(k combat.AttackKind) uint8 {
	if k.IsElemental() {
		return LookupDefense(m.MagicDefenseLevel)
	}
	return LookupDefense(m.DefenseLevel)
}

// ElementPercent is the post-mitigation percentage applied to an attack of kind k.
//
// Postcondition: Returns 100 for physical attacks.
func (m *Monster) ElementPercent(k combat.AttackKind) uint16 {
	switch k {
	case combat.Fire:
		return m.FirePercent
	case combat.Ice:
		return m.IcePercent
	case combat.Lightning:
		return m.LightningPercent
	default:
		return 100
	}
}

// PowerDivisor returns the divisor for this monster's power tier.
func (m *Monster) PowerDivisor() uint16 {
	return PowerDivisor(m.PowerLevel)
}
