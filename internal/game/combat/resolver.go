package combat

import "fmt"

// ResolveTurn advances s by exactly one actor's turn using choice for the active slot.
//
// A stunned actor skips its action: its timers still tick and an "Aturdido" entry
// with no results is logged. Otherwise targets are resolved from the ability's
// shape, each target takes one action, reflected damage is applied to the actor,
// the ability's cooldown is set, the actor's timers tick, the entry is logged,
// and the battle either completes or moves to the next living slot.
//
// The engine does not check that choice is legal for the actor (equipped, off
// cooldown); callers validate that.
//
// Precondition: s was built by NewState (or decoded from one); src must be non-nil.
// Postcondition: on error s is unchanged. ErrBattleOver when s is completed;
// ErrUnknownAbility when choice.AbilityID is not in the catalog.
func (e *Engine) ResolveTurn(s *State, choice Choice, src Source) (LogEntry, error) {
	if s.status == StatusCompleted {
		return LogEntry{}, ErrBattleOver
	}
	ability, ok := e.catalog.Ability(choice.AbilityID)
	if !ok {
		return LogEntry{}, fmt.Errorf("%w: %q", ErrUnknownAbility, choice.AbilityID)
	}

	actor := s.ActiveSlot()
	if actor.Cooldowns == nil {
		actor.Cooldowns = make(map[string]int)
	}

	if actor.Stunned() {
		actor.endTurn()
		entry := LogEntry{
			Round:       s.round,
			ActorID:     actor.ID,
			ActorName:   actor.Name,
			AbilityName: StunnedAbilityName,
			TargetIDs:   []string{},
			Results:     []ActionResult{},
		}
		s.log = append(s.log, entry)
		s.advance()
		return entry, nil
	}

	targets := resolveTargets(s, actor, ability, choice.TargetID)
	targetIDs := make([]string, 0, len(targets))
	results := make([]ActionResult, 0, len(targets))
	reflected := 0
	for _, t := range targets {
		r := e.resolveAction(s, actor, t, ability, src)
		reflected += r.Reflected
		targetIDs = append(targetIDs, t.ID)
		results = append(results, r)
	}
	if reflected > 0 {
		actor.ApplyDamage(reflected)
	}

	if ability.Cooldown > 0 {
		actor.Cooldowns[ability.ID] = ability.Cooldown
	}
	actor.endTurn()

	entry := LogEntry{
		Round:       s.round,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		AbilityID:   ability.ID,
		AbilityName: ability.Name,
		TargetIDs:   targetIDs,
		Results:     results,
	}
	s.log = append(s.log, entry)

	s.settle()
	if s.status == StatusActive {
		s.advance()
	}
	return entry, nil
}

// resolveTargets applies the target-shape fallback rules. It never fails: an
// invalid or dead target falls back to a documented default.
//
// Postcondition: every returned slot is alive.
func resolveTargets(s *State, actor *Slot, ability *Ability, targetID string) []*Slot {
	switch ability.Target {
	case TargetAll:
		return s.Enemies(actor)
	case TargetSelf:
		return []*Slot{actor}
	case TargetAlly:
		if t, ok := s.Slot(targetID); ok && t.Side == actor.Side && t.IsAlive() {
			return []*Slot{t}
		}
		return []*Slot{actor}
	default:
		if t, ok := s.Slot(targetID); ok && t.Side != actor.Side && t.IsAlive() {
			return []*Slot{t}
		}
		if enemies := s.Enemies(actor); len(enemies) > 0 {
			return enemies[:1]
		}
		return nil
	}
}
