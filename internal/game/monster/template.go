package monster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defines a monster archetype loaded from YAML.
type Template struct {
	Group             string       `yaml:"group"`
	ID                string       `yaml:"id"`
	Name              string       `yaml:"name"`
	ImageID           string       `yaml:"image_id"`
	PowerLevel        PowerLevel   `yaml:"power_level"`
	DefenseLevel      DefenseLevel `yaml:"defense_level"`
	MagicDefenseLevel DefenseLevel `yaml:"magic_defense_level"`
	AllowPhysical     bool         `yaml:"allow_physical"`
	AllowMagic        bool         `yaml:"allow_magic"`
	// GoldScale multiplies the floor number into the victory gold reward.
	GoldScale uint16 `yaml:"gold_scale"`
	// FirePercent, IcePercent and LightningPercent scale elemental damage
	// after mitigation. 100 is neutral, 0 is immune.
	FirePercent      uint16 `yaml:"fire_percent"`
	IcePercent       uint16 `yaml:"ice_percent"`
	LightningPercent uint16 `yaml:"lightning_percent"`
	// HealthPercent scales the floor's base health pool; 0 means 100.
	HealthPercent uint16 `yaml:"health_percent"`
	// MinFloor and MaxFloor bound the floors on which the monster is drawn.
	// MaxFloor 0 means no upper bound.
	MinFloor uint8 `yaml:"min_floor"`
	MaxFloor uint8 `yaml:"max_floor"`
}

// Key returns the "group/id" identity of the template.
func (t *Template) Key() string {
	return t.Group + "/" + t.ID
}

// ValidOn reports whether the template belongs to floor's difficulty band.
func (t *Template) ValidOn(floor uint8) bool {
	if floor < t.MinFloor {
		return false
	}
	return t.MaxFloor == 0 || floor <= t.MaxFloor
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff group, id and name are set, at least one
// attack type is allowed, and the floor band is non-empty.
func (t *Template) Validate() error {
	if t.Group == "" {
		return fmt.Errorf("monster template: group must not be empty")
	}
	if t.ID == "" {
		return fmt.Errorf("monster template %q: id must not be empty", t.Group)
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.Key())
	}
	if !t.AllowPhysical && !t.AllowMagic {
		return fmt.Errorf("monster template %q: at least one of allow_physical, allow_magic must be set", t.Key())
	}
	if t.MinFloor < 1 {
		return fmt.Errorf("monster template %q: min_floor must be >= 1", t.Key())
	}
	if t.MaxFloor != 0 && t.MaxFloor < t.MinFloor {
		return fmt.Errorf("monster template %q: max_floor %d is below min_floor %d", t.Key(), t.MaxFloor, t.MinFloor)
	}
	return nil
}

// applyDefaults fills fields whose zero value means "neutral".
func (t *Template) applyDefaults() {
	if t.HealthPercent == 0 {
		t.HealthPercent = 100
	}
}

// LoadTemplatesFromBytes parses a monster group file.
//
// A file names its group once; monsters may override it individually.
// Elemental percentages absent from YAML default to 100; an explicit 0 means immune.
//
// Postcondition: Returns validated templates, or an error on the first violation.
func LoadTemplatesFromBytes(data []byte) ([]*Template, error) {
	var raw struct {
		Group    string      `yaml:"group"`
		Monsters []yaml.Node `yaml:"monsters"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing monster YAML: %w", err)
	}

	out := make([]*Template, 0, len(raw.Monsters))
	for i := range raw.Monsters {
		node := &raw.Monsters[i]
		tmpl := &Template{
			Group:            raw.Group,
			FirePercent:      100,
			IcePercent:       100,
			LightningPercent: 100,
		}
		if err := node.Decode(tmpl); err != nil {
			return nil, fmt.Errorf("decoding monster %d: %w", i, err)
		}
		tmpl.applyDefaults()
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpls, err := LoadTemplatesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpls...)
	}
	return templates, nil
}
