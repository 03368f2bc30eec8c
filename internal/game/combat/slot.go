package combat

import "github.com/cory-johannsen/critters/internal/game/condition"

// Slot is one critter's mutable runtime state inside one battle.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
// Invariant: Dead is true iff CurrentHP reached 0; it never reverts.
type Slot struct {
	ID        string    `json:"id"`
	Side      Side      `json:"side"`
	Archetype Archetype `json:"archetype"`
	Name      string    `json:"name"`

	CurrentHP        int `json:"currentHp"`
	MaxHP            int `json:"maxHp"`
	BaseAgility      int `json:"baseAgility"`
	EffectiveAgility int `json:"effectiveAgility"`
	Vitality         int `json:"vitality"`
	Instinct         int `json:"instinct"`
	Charisma         int `json:"charisma"`

	Equipped  []string       `json:"equippedAbilityIds"`
	InnateID  string         `json:"innateAbilityId"`
	Cooldowns map[string]int `json:"cooldowns"`
	Effects   condition.Set  `json:"effects"`
	Dead      bool           `json:"isDead"`
}

// newSlot builds the starting slot for roster member m.
func newSlot(m Member, side Side, innateID string) *Slot {
	hp := MaxHP(m.Vitality)
	equipped := make([]string, len(m.Equipped))
	copy(equipped, m.Equipped)
	return &Slot{
		ID:               m.ID,
		Side:             side,
		Archetype:        m.Archetype,
		Name:             m.Name,
		CurrentHP:        hp,
		MaxHP:            hp,
		BaseAgility:      m.Agility,
		EffectiveAgility: m.Agility,
		Vitality:         m.Vitality,
		Instinct:         m.Instinct,
		Charisma:         m.Charisma,
		Equipped:         equipped,
		InnateID:         innateID,
		Cooldowns:        make(map[string]int),
	}
}

// IsAlive reports whether the slot can still act and be targeted.
func (s *Slot) IsAlive() bool { return !s.Dead }

// Stunned reports whether the slot will skip its next turn.
func (s *Slot) Stunned() bool { return s.Effects.Stunned() }

// HPRatio returns CurrentHP / MaxHP; 0 if MaxHP == 0.
func (s *Slot) HPRatio() float64 {
	if s.MaxHP <= 0 {
		return 0
	}
	return float64(s.CurrentHP) / float64(s.MaxHP)
}

// CooldownRemaining returns how many of its own turns the slot must wait before using abilityID again.
func (s *Slot) CooldownRemaining(abilityID string) int {
	return s.Cooldowns[abilityID]
}

// Knows reports whether abilityID is the slot's innate ability or one of its equipped abilities.
func (s *Slot) Knows(abilityID string) bool {
	if abilityID == s.InnateID {
		return true
	}
	for _, id := range s.Equipped {
		if id == abilityID {
			return true
		}
	}
	return false
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero, and marks the slot dead at zero.
//
// Precondition: amount >= 0.
// Postcondition: returns true only on the call that moved the slot from alive to dead.
func (s *Slot) ApplyDamage(amount int) bool {
	if s.Dead || amount <= 0 {
		return false
	}
	s.CurrentHP -= amount
	if s.CurrentHP <= 0 {
		s.CurrentHP = 0
		s.Dead = true
		return true
	}
	return false
}

// Heal adds amount to CurrentHP, capped at MaxHP. Dead slots are not healed.
//
// Postcondition: returns the hit points actually restored.
func (s *Slot) Heal(amount int) int {
	if s.Dead || amount <= 0 {
		return 0
	}
	before := s.CurrentHP
	s.CurrentHP += amount
	if s.CurrentHP > s.MaxHP {
		s.CurrentHP = s.MaxHP
	}
	return s.CurrentHP - before
}

// passive returns the first equipped passive ability of s satisfying pred.
func (s *Slot) passive(cat Catalog, pred func(*Ability) bool) (*Ability, bool) {
	for _, id := range s.Equipped {
		a, ok := cat.Ability(id)
		if !ok || a.IsActive() {
			continue
		}
		if pred(a) {
			return a, true
		}
	}
	return nil, false
}

func (s *Slot) reflectPercent(cat Catalog) float64 {
	if a, ok := s.passive(cat, func(a *Ability) bool { return a.ReflectPercent() > 0 }); ok {
		return a.ReflectPercent()
	}
	return 0
}

func (s *Slot) reductionPercent(cat Catalog) float64 {
	if a, ok := s.passive(cat, func(a *Ability) bool { return a.ReductionPercent() > 0 }); ok {
		return a.ReductionPercent()
	}
	return 0
}

func (s *Slot) breaksTies(cat Catalog) bool {
	_, ok := s.passive(cat, (*Ability).BreaksTies)
	return ok
}

// applyEffect attaches e and, for agility modifiers, scales EffectiveAgility immediately.
func (s *Slot) applyEffect(e condition.Effect) error {
	if err := s.Effects.Apply(e); err != nil {
		return err
	}
	if e.IsModifier() && e.Stat == condition.StatAgility {
		s.EffectiveAgility = scaleAgility(s.EffectiveAgility, e.Factor())
	}
	return nil
}

// endTurn decrements cooldowns and effect timers by one and expires finished effects.
// An expiring agility modifier is reverted by dividing out the same factor it applied.
func (s *Slot) endTurn() {
	for id, turns := range s.Cooldowns {
		if turns <= 1 {
			delete(s.Cooldowns, id)
			continue
		}
		s.Cooldowns[id] = turns - 1
	}
	for _, e := range s.Effects.Tick() {
		if e.IsModifier() && e.Stat == condition.StatAgility {
			s.EffectiveAgility = unscaleAgility(s.EffectiveAgility, e.Factor())
		}
	}
}

// clone returns a deep copy of s.
func (s *Slot) clone() *Slot {
	cp := *s
	cp.Equipped = append([]string(nil), s.Equipped...)
	cp.Cooldowns = make(map[string]int, len(s.Cooldowns))
	for k, v := range s.Cooldowns {
		cp.Cooldowns[k] = v
	}
	cp.Effects = s.Effects.Clone()
	return &cp
}
