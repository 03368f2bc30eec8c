// Package combat implements the turn-based 3-vs-3 critter battle engine.
//
// The engine is a synchronous state transition function: a State is built once
// by Engine.NewState and then advanced one actor's turn at a time by
// Engine.ResolveTurn. It performs no locking and no I/O; callers serialise
// access to a State and persist it between calls.
package combat

// Archetype is one of the four elemental tags of a critter.
type Archetype string

const (
	Forestal  Archetype = "forestal"
	Electrico Archetype = "electrico"
	Acuatico  Archetype = "acuatico"
	Volcanico Archetype = "volcanico"
)

// Archetypes lists every archetype in canonical order.
var Archetypes = []Archetype{Forestal, Electrico, Acuatico, Volcanico}

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	switch a {
	case Forestal, Electrico, Acuatico, Volcanico:
		return true
	default:
		return false
	}
}

// beats maps an archetype to the one it has the advantage over.
// Electrico is neutral both ways and has no entry.
var beats = map[Archetype]Archetype{
	Volcanico: Forestal,
	Forestal:  Acuatico,
	Acuatico:  Volcanico,
}

// Side identifies which roster a slot belongs to.
type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// Member is one roster entry handed to Engine.NewState.
type Member struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Archetype Archetype `yaml:"archetype" json:"archetype"`
	Vitality  int       `yaml:"vitality" json:"vitality"`
	Agility   int       `yaml:"agility" json:"agility"`
	Instinct  int       `yaml:"instinct" json:"instinct"`
	Charisma  int       `yaml:"charisma" json:"charisma"`
	Equipped  []string  `yaml:"equipped" json:"equippedAbilityIds"`
}

// Choice is the ability and optional target selected for the acting slot.
type Choice struct {
	AbilityID string `json:"abilityId"`
	TargetID  string `json:"targetId,omitempty"`
}

// Source is the subset of dice.Source used by the resolver.
// Using a local interface keeps the engine free of the dice package.
type Source interface {
	Float64() float64
}
