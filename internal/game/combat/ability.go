package combat

import "github.com/cory-johannsen/critters/internal/game/condition"

// AbilityKind distinguishes usable abilities from always-on passives.
type AbilityKind string

const (
	Active  AbilityKind = "active"
	Passive AbilityKind = "passive"
)

// TargetShape selects which slots an active ability affects.
type TargetShape string

const (
	TargetSingle TargetShape = "single" // one opposing slot
	TargetAll    TargetShape = "all"    // every living opposing slot
	TargetSelf   TargetShape = "self"   // the actor
	TargetAlly   TargetShape = "ally"   // one slot on the actor's side
)

// Effect is one component of what an ability does. The set of variants is closed.
type Effect interface {
	effect()
}

// Damage deals BaseDamage * Multiplier (before chart, aura and block modifiers).
type Damage struct{ Multiplier float64 }

// Heal restores HealAmount(actor vitality, Multiplier) to the target.
type Heal struct{ Multiplier float64 }

// Stun makes the target skip its next Turns turns. Blocked hits do not stun.
type Stun struct{ Turns int }

// Modifier is a timed buff or debuff on agility or damage. Percent is a signed fraction.
type Modifier struct {
	Kind    condition.Kind
	Stat    condition.Stat
	Percent float64
	Turns   int
}

// Reflect bounces Percent of every hit taken back to the attacker. Passive only.
type Reflect struct{ Percent float64 }

// DamageReduction scales incoming raw damage by (1 - Percent). Passive only.
type DamageReduction struct{ Percent float64 }

// TieBreaker wins agility ties when turn order is computed. Passive only.
type TieBreaker struct{}

func (Damage) effect()          {}
func (Heal) effect()            {}
func (Stun) effect()            {}
func (Modifier) effect()        {}
func (Reflect) effect()         {}
func (DamageReduction) effect() {}
func (TieBreaker) effect()      {}

// timed converts m into the condition it leaves on a target.
func (m Modifier) timed() condition.Effect {
	return condition.Effect{Kind: m.Kind, Stat: m.Stat, Value: m.Percent, TurnsRemaining: m.Turns}
}

// Ability is an immutable catalog record. A single ability may combine several
// effects, e.g. Damage and Stun.
type Ability struct {
	ID        string
	Name      string
	Archetype Archetype
	Kind      AbilityKind
	Cooldown  int
	Target    TargetShape
	// Innate marks the free basic attack of an archetype; it never occupies an equip slot.
	Innate  bool
	Effects []Effect
}

// IsActive reports whether the ability can be used on a turn.
func (a *Ability) IsActive() bool { return a.Kind == Active }

// DamageMultiplier returns the multiplier of the first positive Damage effect.
func (a *Ability) DamageMultiplier() (float64, bool) {
	for _, e := range a.Effects {
		if d, ok := e.(Damage); ok && d.Multiplier > 0 {
			return d.Multiplier, true
		}
	}
	return 0, false
}

// HealMultiplier returns the multiplier of the first positive Heal effect.
func (a *Ability) HealMultiplier() (float64, bool) {
	for _, e := range a.Effects {
		if h, ok := e.(Heal); ok && h.Multiplier > 0 {
			return h.Multiplier, true
		}
	}
	return 0, false
}

// StunTurns returns the stun duration, or 0 when the ability does not stun.
func (a *Ability) StunTurns() int {
	for _, e := range a.Effects {
		if s, ok := e.(Stun); ok && s.Turns > 0 {
			return s.Turns
		}
	}
	return 0
}

// Modifier returns the buff or debuff the ability applies, if any.
func (a *Ability) Modifier() (Modifier, bool) {
	for _, e := range a.Effects {
		if m, ok := e.(Modifier); ok {
			return m, true
		}
	}
	return Modifier{}, false
}

// ReflectPercent returns the passive reflect fraction, or 0.
func (a *Ability) ReflectPercent() float64 {
	for _, e := range a.Effects {
		if r, ok := e.(Reflect); ok {
			return r.Percent
		}
	}
	return 0
}

// ReductionPercent returns the passive damage reduction fraction, or 0.
func (a *Ability) ReductionPercent() float64 {
	for _, e := range a.Effects {
		if r, ok := e.(DamageReduction); ok {
			return r.Percent
		}
	}
	return 0
}

// BreaksTies reports whether the ability carries the tie-breaker passive.
func (a *Ability) BreaksTies() bool {
	for _, e := range a.Effects {
		if _, ok := e.(TieBreaker); ok {
			return true
		}
	}
	return false
}

// Catalog is the read-only ability lookup the engine consumes.
type Catalog interface {
	// Ability returns the ability with id, or false if unknown.
	Ability(id string) (*Ability, bool)
	// Innate returns the single innate ability of archetype a.
	Innate(a Archetype) (*Ability, bool)
}
