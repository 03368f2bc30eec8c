package ruleset

import (
	"fmt"
	"os"
	"sort"

	"github.com/cory-johannsen/critters/internal/game/combat"
)

// Registry is the in-memory ability catalog. It implements combat.Catalog.
// It is safe for concurrent reads once loading is complete.
type Registry struct {
	abilities map[string]*combat.Ability
	innate    map[combat.Archetype]*combat.Ability
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{
		abilities: make(map[string]*combat.Ability),
		innate:    make(map[combat.Archetype]*combat.Ability),
	}
}

// Register validates a and adds it to the registry.
//
// Postcondition: on success a is retrievable via Ability(a.ID); duplicate ids
// and a second innate for the same archetype are rejected.
func (r *Registry) Register(a *combat.Ability) error {
	if a == nil {
		return fmt.Errorf("%w: nil ability", ErrInvalidAbility)
	}
	if err := validateAbility(a); err != nil {
		return err
	}
	if _, dup := r.abilities[a.ID]; dup {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidAbility, a.ID)
	}
	if a.Innate {
		if prev, dup := r.innate[a.Archetype]; dup {
			return fmt.Errorf("%w: %q is a second innate for %s (already %q)", ErrInvalidAbility, a.ID, a.Archetype, prev.ID)
		}
		r.innate[a.Archetype] = a
	}
	r.abilities[a.ID] = a
	return nil
}

// Ability returns the ability with id.
func (r *Registry) Ability(id string) (*combat.Ability, bool) {
	a, ok := r.abilities[id]
	return a, ok
}

// Innate returns the innate ability of arch.
func (r *Registry) Innate(arch combat.Archetype) (*combat.Ability, bool) {
	a, ok := r.innate[arch]
	return a, ok
}

// Abilities returns the non-innate abilities of arch sorted by id.
func (r *Registry) Abilities(arch combat.Archetype) []*combat.Ability {
	var out []*combat.Ability
	for _, a := range r.abilities {
		if a.Archetype == arch && !a.Innate {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered abilities.
func (r *Registry) Len() int { return len(r.abilities) }

// Validate checks catalog-wide rules.
//
// Postcondition: nil means every archetype has exactly one innate ability.
func (r *Registry) Validate() error {
	for _, arch := range combat.Archetypes {
		if _, ok := r.innate[arch]; !ok {
			return fmt.Errorf("%w: no innate ability for %s", ErrInvalidAbility, arch)
		}
	}
	return nil
}

// LoadDirectory reads every YAML ability file in dir and returns a validated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry passing Validate, or an error naming
// the offending file.
func LoadDirectory(dir string) (*Registry, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var f abilityFile
		if err := decodeStrict(data, &f); err != nil {
			return nil, fmt.Errorf("parsing ability file %s: %w", path, err)
		}
		for _, def := range f.Abilities {
			a, err := def.Ability()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if err := reg.Register(a); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog %s: %w", dir, err)
	}
	return reg, nil
}
