package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/condition"
)

// ErrInvalidAbility is returned when an ability definition fails validation.
var ErrInvalidAbility = errors.New("invalid ability")

// ModifierDef is a timed buff or debuff in an ability file.
// Percent is a positive magnitude; debuffs are applied as its negation.
type ModifierDef struct {
	Stat    string  `yaml:"stat"`
	Percent float64 `yaml:"percent"`
	Turns   int     `yaml:"turns"`
}

// EffectsDef is the flat YAML form of an ability's effects. Zero fields are absent.
type EffectsDef struct {
	Damage    float64      `yaml:"damage"`
	Heal      float64      `yaml:"heal"`
	Stun      int          `yaml:"stun"`
	Buff      *ModifierDef `yaml:"buff"`
	Debuff    *ModifierDef `yaml:"debuff"`
	Reflect   float64      `yaml:"reflect"`
	Reduction float64      `yaml:"reduction"`
	WinsTies  bool         `yaml:"wins_ties"`
}

// AbilityDef is one entry of an ability file.
type AbilityDef struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Archetype   string     `yaml:"archetype"`
	Kind        string     `yaml:"kind"`
	Target      string     `yaml:"target"`
	Cooldown    int        `yaml:"cooldown"`
	Innate      bool       `yaml:"innate"`
	Description string     `yaml:"description"`
	Effects     EffectsDef `yaml:"effects"`
}

// abilityFile is the top-level shape of content/abilities/*.yaml.
type abilityFile struct {
	Abilities []AbilityDef `yaml:"abilities"`
}

// Ability converts d into the engine's immutable ability record.
//
// Effects are emitted in a fixed order: damage, heal, stun, buff, debuff,
// reflect, reduction, tie-breaker.
//
// Postcondition: on success the returned ability carries at least one effect.
func (d AbilityDef) Ability() (*combat.Ability, error) {
	kind := combat.AbilityKind(d.Kind)
	if kind == "" {
		kind = combat.Active
	}
	target := combat.TargetShape(d.Target)
	if target == "" {
		target = combat.TargetSingle
		if kind == combat.Passive {
			target = combat.TargetSelf
		}
	}
	a := &combat.Ability{
		ID:        d.ID,
		Name:      d.Name,
		Archetype: combat.Archetype(d.Archetype),
		Kind:      kind,
		Cooldown:  d.Cooldown,
		Target:    target,
		Innate:    d.Innate,
	}

	e := d.Effects
	if e.Damage > 0 {
		a.Effects = append(a.Effects, combat.Damage{Multiplier: e.Damage})
	}
	if e.Heal > 0 {
		a.Effects = append(a.Effects, combat.Heal{Multiplier: e.Heal})
	}
	if e.Stun > 0 {
		a.Effects = append(a.Effects, combat.Stun{Turns: e.Stun})
	}
	if e.Buff != nil && e.Debuff != nil {
		return nil, fmt.Errorf("%w: %q declares both a buff and a debuff", ErrInvalidAbility, d.ID)
	}
	if e.Buff != nil {
		m, err := modifier(d.ID, condition.KindBuff, *e.Buff)
		if err != nil {
			return nil, err
		}
		a.Effects = append(a.Effects, m)
	}
	if e.Debuff != nil {
		m, err := modifier(d.ID, condition.KindDebuff, *e.Debuff)
		if err != nil {
			return nil, err
		}
		a.Effects = append(a.Effects, m)
	}
	if e.Reflect > 0 {
		a.Effects = append(a.Effects, combat.Reflect{Percent: e.Reflect})
	}
	if e.Reduction > 0 {
		a.Effects = append(a.Effects, combat.DamageReduction{Percent: e.Reduction})
	}
	if e.WinsTies {
		a.Effects = append(a.Effects, combat.TieBreaker{})
	}
	if err := validateAbility(a); err != nil {
		return nil, err
	}
	return a, nil
}

func modifier(id string, kind condition.Kind, m ModifierDef) (combat.Modifier, error) {
	stat := condition.Stat(m.Stat)
	if !stat.Valid() {
		return combat.Modifier{}, fmt.Errorf("%w: %q %s has unknown stat %q", ErrInvalidAbility, id, kind, m.Stat)
	}
	if m.Percent <= 0 || m.Percent >= 1 {
		return combat.Modifier{}, fmt.Errorf("%w: %q %s percent must be in (0, 1), got %v", ErrInvalidAbility, id, kind, m.Percent)
	}
	if m.Turns <= 0 {
		return combat.Modifier{}, fmt.Errorf("%w: %q %s must last at least one turn", ErrInvalidAbility, id, kind)
	}
	pct := m.Percent
	if kind == condition.KindDebuff {
		pct = -pct
	}
	return combat.Modifier{Kind: kind, Stat: stat, Percent: pct, Turns: m.Turns}, nil
}

// validateAbility checks the structural rules every catalog ability obeys.
func validateAbility(a *combat.Ability) error {
	if a.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidAbility)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: %q has no name", ErrInvalidAbility, a.ID)
	}
	if !a.Archetype.Valid() {
		return fmt.Errorf("%w: %q has unknown archetype %q", ErrInvalidAbility, a.ID, a.Archetype)
	}
	switch a.Kind {
	case combat.Active, combat.Passive:
	default:
		return fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidAbility, a.ID, a.Kind)
	}
	switch a.Target {
	case combat.TargetSingle, combat.TargetAll, combat.TargetSelf, combat.TargetAlly:
	default:
		return fmt.Errorf("%w: %q has unknown target %q", ErrInvalidAbility, a.ID, a.Target)
	}
	if len(a.Effects) == 0 {
		return fmt.Errorf("%w: %q has no effects", ErrInvalidAbility, a.ID)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("%w: %q has negative cooldown", ErrInvalidAbility, a.ID)
	}
	if a.Innate {
		if a.Kind != combat.Active || a.Cooldown != 0 {
			return fmt.Errorf("%w: innate %q must be active with no cooldown", ErrInvalidAbility, a.ID)
		}
		if _, ok := a.DamageMultiplier(); !ok {
			return fmt.Errorf("%w: innate %q must deal damage", ErrInvalidAbility, a.ID)
		}
	}
	passiveOnly := a.ReflectPercent() > 0 || a.ReductionPercent() > 0 || a.BreaksTies()
	if passiveOnly && a.Kind != combat.Passive {
		return fmt.Errorf("%w: %q carries a passive effect but is %s", ErrInvalidAbility, a.ID, a.Kind)
	}
	if a.Kind == combat.Passive && !passiveOnly {
		return fmt.Errorf("%w: passive %q has no passive effect", ErrInvalidAbility, a.ID)
	}
	if a.BreaksTies() && a.Archetype != combat.Electrico {
		return fmt.Errorf("%w: tie-breaker %q must be %s", ErrInvalidAbility, a.ID, combat.Electrico)
	}
	if p := a.ReflectPercent(); p < 0 || p >= 1 {
		return fmt.Errorf("%w: %q reflect must be in [0, 1)", ErrInvalidAbility, a.ID)
	}
	if p := a.ReductionPercent(); p < 0 || p >= 1 {
		return fmt.Errorf("%w: %q reduction must be in [0, 1)", ErrInvalidAbility, a.ID)
	}
	return nil
}
