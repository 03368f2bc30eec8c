package combat

// AuraType is the single behaviour an aura contributes to its side.
type AuraType string

const (
	AuraHP      AuraType = "hp"
	AuraAgility AuraType = "agility"
	AuraDamage  AuraType = "damage"
	AuraDefense AuraType = "defense"
)

// AuraTypeFor returns the aura type granted by a leader of archetype a.
func AuraTypeFor(a Archetype) AuraType {
	switch a {
	case Forestal:
		return AuraHP
	case Electrico:
		return AuraAgility
	case Volcanico:
		return AuraDamage
	case Acuatico:
		return AuraDefense
	default:
		return ""
	}
}

// Aura is the once-per-side passive derived from the side's highest-charisma member.
type Aura struct {
	Side      Side      `json:"side"`
	LeaderID  string    `json:"leaderId"`
	Archetype Archetype `json:"archetype"`
	Type      AuraType  `json:"type"`
	Magnitude float64   `json:"magnitude"`
}

// newAura selects the leader of members (max charisma, first wins ties) and derives the aura.
//
// Precondition: members must be non-empty.
func newAura(side Side, members []Member) Aura {
	leader := members[0]
	for _, m := range members[1:] {
		if m.Charisma > leader.Charisma {
			leader = m
		}
	}
	return Aura{
		Side:      side,
		LeaderID:  leader.ID,
		Archetype: leader.Archetype,
		Type:      AuraTypeFor(leader.Archetype),
		Magnitude: AuraMagnitude(leader.Charisma),
	}
}

// applyOnce materialises hp and agility auras on the side's slots.
// Damage and defense auras are read by the damage formula instead.
func (a Aura) applyOnce(slots []*Slot) {
	bonus := round(a.Magnitude)
	for _, s := range slots {
		switch a.Type {
		case AuraHP:
			s.MaxHP += bonus
			s.CurrentHP += bonus
		case AuraAgility:
			s.EffectiveAgility += bonus
		}
	}
}

// DamageMod returns the outgoing damage factor this aura gives its own side.
func (a Aura) DamageMod() float64 {
	if a.Type == AuraDamage {
		return DamageAuraMod(a.Magnitude)
	}
	return 1
}

// DefenseMod returns the incoming damage factor this aura gives its own side.
func (a Aura) DefenseMod() float64 {
	if a.Type == AuraDefense {
		return DefenseAuraMod(a.Magnitude)
	}
	return 1
}
