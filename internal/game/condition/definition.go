// Package condition tracks the timed buffs, debuffs and stuns carried by a battle slot.
package condition

import "fmt"

// Kind identifies what a timed effect does to its bearer.
type Kind string

const (
	KindBuff   Kind = "buff"
	KindDebuff Kind = "debuff"
	KindStun   Kind = "stun"
)

// Valid reports whether k is one of the known effect kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBuff, KindDebuff, KindStun:
		return true
	default:
		return false
	}
}

// Stat is the combat number a buff or debuff scales.
type Stat string

const (
	StatAgility Stat = "agility"
	StatDamage  Stat = "damage"
)

// Valid reports whether s is a stat a modifier may target.
func (s Stat) Valid() bool {
	return s == StatAgility || s == StatDamage
}

// Effect is one timed effect applied to a slot.
//
// For buffs and debuffs Value is a signed fraction (-0.25 = -25%).
// For stuns Value is the number of turns originally applied.
type Effect struct {
	Kind           Kind    `json:"type"`
	Stat           Stat    `json:"stat,omitempty"`
	Value          float64 `json:"value"`
	TurnsRemaining int     `json:"turnsRemaining"`
}

// Factor returns the multiplicative factor (1 + Value) a modifier applies to its stat.
func (e Effect) Factor() float64 { return 1 + e.Value }

// IsModifier reports whether e scales a stat.
func (e Effect) IsModifier() bool {
	return e.Kind == KindBuff || e.Kind == KindDebuff
}

// Validate checks the structural invariants of e.
//
// Postcondition: nil means Kind is valid, TurnsRemaining > 0, and modifiers name a valid Stat.
func (e Effect) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("condition: unknown effect kind %q", e.Kind)
	}
	if e.TurnsRemaining <= 0 {
		return fmt.Errorf("condition: %s effect must last at least one turn, got %d", e.Kind, e.TurnsRemaining)
	}
	if e.IsModifier() && !e.Stat.Valid() {
		return fmt.Errorf("condition: %s effect has invalid stat %q", e.Kind, e.Stat)
	}
	return nil
}
