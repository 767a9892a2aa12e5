package inventory

import "fmt"

// Registry holds every loaded item definition indexed by kind.
type Registry struct {
	items map[Kind]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[Kind]*ItemDef)}
}

// NewRegistryFrom registers defs and checks that every kind is defined.
//
// Postcondition: Returns an error on a duplicate or a missing kind.
func NewRegistryFrom(defs []*ItemDef) (*Registry, error) {
	r := NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	for _, k := range Kinds {
		if _, ok := r.items[k]; !ok {
			return nil, fmt.Errorf("inventory: no definition for item %q", k)
		}
	}
	return r, nil
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.Kind) returns (d, true); returns error if d.Kind already registered.
func (r *Registry) Register(d *ItemDef) error {
	if _, exists := r.items[d.Kind]; exists {
		return fmt.Errorf("inventory: Registry.Register: item %q already registered", d.Kind)
	}
	r.items[d.Kind] = d
	return nil
}

// Item returns the ItemDef for the given kind and whether it was found.
//
// Postcondition: ok is true iff the kind is registered.
func (r *Registry) Item(k Kind) (*ItemDef, bool) {
	d, ok := r.items[k]
	return d, ok
}

// All returns the registered definitions in menu order.
func (r *Registry) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, k := range Kinds {
		if d, ok := r.items[k]; ok {
			out = append(out, d)
		}
	}
	return out
}
