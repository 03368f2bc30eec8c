package combat

import (
	"errors"
	"fmt"
)

const (
	// RosterSize is the number of critters each side fields.
	RosterSize = 3
	// MaxEquipped is the number of equip slots per critter; the innate ability is extra.
	MaxEquipped = 3
)

var (
	// ErrInvalidRoster is returned by NewState when a roster violates its shape rules.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrUnknownAbility is returned by ResolveTurn when the chosen ability is not in the catalog.
	ErrUnknownAbility = errors.New("unknown ability")
	// ErrBattleOver is returned by ResolveTurn once the battle is completed.
	ErrBattleOver = errors.New("battle is over")
	// ErrBattleActive is returned by operations that require a completed battle.
	ErrBattleActive = errors.New("battle is still active")
)

// Engine builds and advances battle States against an ability catalog.
// It holds no per-battle state; one Engine serves any number of battles.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an Engine backed by catalog.
//
// Precondition: catalog must not be nil.
func NewEngine(catalog Catalog) *Engine {
	if catalog == nil {
		panic("combat.NewEngine: catalog must not be nil")
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the ability catalog the engine resolves against.
func (e *Engine) Catalog() Catalog { return e.catalog }

// NewState builds a ready battle from two rosters.
//
// Slots get MaxHP from vitality; each side's aura comes from its highest-charisma
// member; hp and agility auras are applied once; slots are ordered by effective
// agility descending with the tie-breaker passive winning ties.
//
// Precondition: each roster has exactly RosterSize members with valid archetypes,
// at most MaxEquipped catalog-known abilities each, and unique ids across both rosters.
// Postcondition: Round() == 1, TurnIndex() == 0, Status() == StatusActive, empty log.
func (e *Engine) NewState(attackers, defenders []Member) (*State, error) {
	if err := e.validateRoster(SideAttacker, attackers); err != nil {
		return nil, err
	}
	if err := e.validateRoster(SideDefender, defenders); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, 2*RosterSize)
	for _, m := range append(append([]Member(nil), attackers...), defenders...) {
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate member id %q", ErrInvalidRoster, m.ID)
		}
		seen[m.ID] = struct{}{}
	}

	atkSlots, err := e.buildSlots(SideAttacker, attackers)
	if err != nil {
		return nil, err
	}
	defSlots, err := e.buildSlots(SideDefender, defenders)
	if err != nil {
		return nil, err
	}

	atkAura := newAura(SideAttacker, attackers)
	defAura := newAura(SideDefender, defenders)
	atkAura.applyOnce(atkSlots)
	defAura.applyOnce(defSlots)

	slots := append(atkSlots, defSlots...)
	sortByTurnOrder(slots, e.catalog)

	return &State{
		slots:     slots,
		turnIndex: 0,
		round:     1,
		attacker:  atkAura,
		defender:  defAura,
		log:       []LogEntry{},
		status:    StatusActive,
	}, nil
}

func (e *Engine) validateRoster(side Side, members []Member) error {
	if len(members) != RosterSize {
		return fmt.Errorf("%w: %s roster must have %d members, got %d", ErrInvalidRoster, side, RosterSize, len(members))
	}
	for _, m := range members {
		if m.ID == "" {
			return fmt.Errorf("%w: %s member has empty id", ErrInvalidRoster, side)
		}
		if !m.Archetype.Valid() {
			return fmt.Errorf("%w: member %q has unknown archetype %q", ErrInvalidRoster, m.ID, m.Archetype)
		}
		if len(m.Equipped) > MaxEquipped {
			return fmt.Errorf("%w: member %q equips %d abilities, max %d", ErrInvalidRoster, m.ID, len(m.Equipped), MaxEquipped)
		}
		for _, id := range m.Equipped {
			a, ok := e.catalog.Ability(id)
			if !ok {
				return fmt.Errorf("%w: member %q equips %w %q", ErrInvalidRoster, m.ID, ErrUnknownAbility, id)
			}
			if a.Innate {
				return fmt.Errorf("%w: member %q equips innate ability %q", ErrInvalidRoster, m.ID, id)
			}
		}
	}
	return nil
}

func (e *Engine) buildSlots(side Side, members []Member) ([]*Slot, error) {
	slots := make([]*Slot, 0, len(members))
	for _, m := range members {
		innate, ok := e.catalog.Innate(m.Archetype)
		if !ok {
			return nil, fmt.Errorf("%w: no innate ability for archetype %q", ErrInvalidRoster, m.Archetype)
		}
		slots = append(slots, newSlot(m, side, innate.ID))
	}
	return slots, nil
}
