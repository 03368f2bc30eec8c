package combat

import "math"

const (
	baseHP           = 50
	hpPerVitality    = 3
	advantageMult    = 1.25
	disadvantageMult = 0.75
	sameArchBonus    = 1.15
	auraPerCharisma  = 0.2
	auraModPerPoint  = 0.005
	blockDivisor     = 300.0
	blockedFraction  = 0.40
	healBase         = 15
	healPerVitality  = 0.4
)

// round rounds half away from zero and converts to int. The value is first
// snapped to 1e-9 so products such as 40*1.25*1.15 (57.49999999999999 in
// binary) round as their decimal value 57.5 does.
func round(f float64) int {
	return int(math.Round(math.Round(f*1e9) / 1e9))
}

// MaxHP returns the starting hit points derived from vitality.
//
// Postcondition: Returns round(50 + vitality*3).
func MaxHP(vitality int) int {
	return round(baseHP + float64(vitality)*hpPerVitality)
}

// TypeMultiplier returns the archetype chart value for attacker hitting defender.
//
// Postcondition: Returns 1.25, 0.75 or 1.0.
func TypeMultiplier(attacker, defender Archetype) float64 {
	if prey, ok := beats[attacker]; ok && prey == defender {
		return advantageMult
	}
	if prey, ok := beats[defender]; ok && prey == attacker {
		return disadvantageMult
	}
	return 1.0
}

// ArchetypeBonus returns 1.15 when an ability is used by a critter of its own archetype.
func ArchetypeBonus(ability, actor Archetype) float64 {
	if ability == actor {
		return sameArchBonus
	}
	return 1.0
}

// BaseDamage returns the pre-multiplier damage of an actor with the given effective agility.
func BaseDamage(effectiveAgility int) float64 {
	return float64(effectiveAgility)*0.5 + 10
}

// AuraMagnitude returns the scalar strength of an aura led by a critter with charisma.
func AuraMagnitude(charisma int) float64 {
	return float64(charisma) * auraPerCharisma
}

// DamageAuraMod returns the outgoing damage factor of a damage-type aura.
func DamageAuraMod(magnitude float64) float64 {
	return 1 + magnitude*auraModPerPoint
}

// DefenseAuraMod returns the incoming damage factor of a defense-type aura.
func DefenseAuraMod(magnitude float64) float64 {
	return 1 - magnitude*auraModPerPoint
}

// BlockChance returns the probability that a target with instinct blocks a hit.
//
// Postcondition: Returns instinct/300; 0 for instinct 0 and 1.0 for instinct 300.
func BlockChance(instinct int) float64 {
	return float64(instinct) / blockDivisor
}

// BlockedDamage returns the damage dealt by a blocked hit.
//
// Postcondition: Returns round(raw*0.40); may be 0.
func BlockedDamage(raw float64) int {
	return round(raw * blockedFraction)
}

// HitDamage returns the damage dealt by an unblocked hit.
//
// Postcondition: Returns max(1, round(raw)).
func HitDamage(raw float64) int {
	d := round(raw)
	if d < 1 {
		return 1
	}
	return d
}

// HealAmount returns the hit points restored by a heal of the given multiplier.
//
// Postcondition: Returns round((15 + vitality*0.4) * multiplier).
func HealAmount(vitality int, multiplier float64) int {
	return round((healBase + float64(vitality)*healPerVitality) * multiplier)
}

// Reflected returns the damage bounced back to an attacker by a reflect passive.
func Reflected(damage int, pct float64) int {
	return round(float64(damage) * pct)
}

// scaleAgility multiplies agility by factor with integer rounding.
func scaleAgility(agility int, factor float64) int {
	return round(float64(agility) * factor)
}

// unscaleAgility divides a previously applied factor back out.
// A zero factor cannot be inverted and leaves agility unchanged.
func unscaleAgility(agility int, factor float64) int {
	if factor == 0 {
		return agility
	}
	return round(float64(agility) / factor)
}
