package combat

import "github.com/cory-johannsen/critters/internal/game/condition"

// RawDamage returns the unrounded damage of ability with multiplier m from actor to target.
//
// raw = (agility*0.5+10) * m * chart * archetype bonus * attacker damage aura *
// target defense aura * attacker damage debuff * (1 - target reduction passive).
func (e *Engine) RawDamage(s *State, actor, target *Slot, ability *Ability, m float64) float64 {
	raw := BaseDamage(actor.EffectiveAgility) *
		m *
		TypeMultiplier(actor.Archetype, target.Archetype) *
		ArchetypeBonus(ability.Archetype, actor.Archetype) *
		s.Aura(actor.Side).DamageMod() *
		s.Aura(target.Side).DefenseMod() *
		condition.DamageFactor(actor.Effects)
	if red := target.reductionPercent(e.catalog); red > 0 {
		raw *= 1 - red
	}
	return raw
}

// resolveAction applies every effect of ability from actor to one target.
//
// Damage rolls one block check against the target's instinct. Stuns and debuffs
// land only on unblocked hits; buffs always land. Reflected damage is reported
// in the result and applied to the actor by the caller after all targets resolve.
//
// Precondition: target is alive.
func (e *Engine) resolveAction(s *State, actor, target *Slot, ability *Ability, src Source) ActionResult {
	res := ActionResult{TargetID: target.ID}
	blocked := false

	if m, ok := ability.DamageMultiplier(); ok {
		raw := e.RawDamage(s, actor, target, ability, m)
		var dmg int
		if src.Float64() < BlockChance(target.Instinct) {
			blocked = true
			dmg = BlockedDamage(raw)
		} else {
			dmg = HitDamage(raw)
		}
		res.Damage = dmg
		res.Blocked = blocked
		if pct := target.reflectPercent(e.catalog); pct > 0 {
			res.Reflected = Reflected(dmg, pct)
		}
		res.Died = target.ApplyDamage(dmg)
	}

	if h, ok := ability.HealMultiplier(); ok {
		res.Heal = HealAmount(actor.Vitality, h)
		target.Heal(res.Heal)
	}

	if !target.IsAlive() {
		return res
	}

	if turns := ability.StunTurns(); turns > 0 && !blocked {
		stun := condition.Effect{Kind: condition.KindStun, Value: float64(turns), TurnsRemaining: turns}
		if target.applyEffect(stun) == nil {
			res.Stunned = turns
		}
	}

	if mod, ok := ability.Modifier(); ok && (mod.Kind == condition.KindBuff || !blocked) {
		eff := mod.timed()
		if target.applyEffect(eff) == nil {
			res.Applied = &eff
		}
	}
	return res
}
