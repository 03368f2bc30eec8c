// Package ai chooses abilities and targets for non-human battle slots.
package ai

import "github.com/cory-johannsen/critters/internal/game/combat"

// ParalyzingAbilityID is the ability preferred over any multiplier comparison
// whenever the actor has it equipped and off cooldown.
const ParalyzingAbilityID = "descarga_paralizante"

// lowHPRatio is the HP fraction below which a slot tries to heal before attacking.
const lowHPRatio = 0.30

// Policy is the heuristic opponent controller.
//
// Invariant: catalog is never nil.
type Policy struct {
	catalog   combat.Catalog
	preferred string
}

// Option configures a Policy.
type Option func(*Policy)

// WithPreferred replaces the ability preferred whenever it is off cooldown.
// An empty id disables the preference.
func WithPreferred(abilityID string) Option {
	return func(p *Policy) { p.preferred = abilityID }
}

// NewPolicy creates a Policy that resolves ability ids against catalog.
//
// Precondition: catalog must not be nil.
func NewPolicy(catalog combat.Catalog, opts ...Option) *Policy {
	if catalog == nil {
		panic("ai.NewPolicy: catalog must not be nil")
	}
	p := &Policy{catalog: catalog, preferred: ParalyzingAbilityID}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide returns the choice for actor given its living allies and living enemies.
//
// Below 30% HP the actor uses an off-cooldown heal if it has one. Otherwise it
// attacks the first enemy it has a type advantage over (or the first enemy)
// with its preferred ability when ready, else its highest-multiplier damaging
// ability, with the innate ability as the floor.
//
// Precondition: actor must not be nil; allies may include actor.
// Postcondition: AbilityID is always an ability actor knows. TargetID is empty
// only when enemies is empty and no heal was chosen.
func (p *Policy) Decide(actor *combat.Slot, allies, enemies []*combat.Slot) combat.Choice {
	if actor.HPRatio() < lowHPRatio {
		if c, ok := p.heal(actor, allies); ok {
			return c
		}
	}

	target := priorityTarget(actor, enemies)
	if target == nil {
		return combat.Choice{AbilityID: actor.InnateID}
	}
	return combat.Choice{AbilityID: p.bestAttack(actor), TargetID: target.ID}
}

// ready returns the actor's equipped active abilities that are off cooldown, in equip order.
func (p *Policy) ready(actor *combat.Slot) []*combat.Ability {
	var out []*combat.Ability
	for _, id := range actor.Equipped {
		a, ok := p.catalog.Ability(id)
		if !ok || !a.IsActive() || actor.CooldownRemaining(id) > 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (p *Policy) heal(actor *combat.Slot, allies []*combat.Slot) (combat.Choice, bool) {
	for _, a := range p.ready(actor) {
		if _, ok := a.HealMultiplier(); !ok {
			continue
		}
		target := actor.ID
		if a.Target == combat.TargetAlly {
			if weakest := weakestAlly(actor, allies); weakest != nil {
				target = weakest.ID
			}
		}
		return combat.Choice{AbilityID: a.ID, TargetID: target}, true
	}
	return combat.Choice{}, false
}

// weakestAlly returns the living ally other than actor with the lowest HP ratio, or nil.
func weakestAlly(actor *combat.Slot, allies []*combat.Slot) *combat.Slot {
	var best *combat.Slot
	for _, s := range allies {
		if s.ID == actor.ID || !s.IsAlive() {
			continue
		}
		if best == nil || s.HPRatio() < best.HPRatio() {
			best = s
		}
	}
	return best
}

// priorityTarget returns the first living enemy actor has the advantage over,
// else the first living enemy, else nil.
func priorityTarget(actor *combat.Slot, enemies []*combat.Slot) *combat.Slot {
	var first *combat.Slot
	for _, e := range enemies {
		if !e.IsAlive() {
			continue
		}
		if first == nil {
			first = e
		}
		if combat.TypeMultiplier(actor.Archetype, e.Archetype) > 1.0 {
			return e
		}
	}
	return first
}

func (p *Policy) bestAttack(actor *combat.Slot) string {
	best, bestMult := actor.InnateID, 1.0
	if innate, ok := p.catalog.Ability(actor.InnateID); ok {
		if m, ok := innate.DamageMultiplier(); ok {
			bestMult = m
		}
	}
	for _, a := range p.ready(actor) {
		if p.preferred != "" && a.ID == p.preferred {
			return a.ID
		}
		m, ok := a.DamageMultiplier()
		if !ok {
			continue
		}
		if m > bestMult {
			best, bestMult = a.ID, m
		}
	}
	return best
}
