package condition

// Set is the ordered list of timed effects currently carried by one slot.
// It is not safe for concurrent use; the caller must serialise access.
type Set []Effect

// Apply appends e to the set. Effects never merge: two debuffs on the same stat
// are tracked and expire independently.
//
// Precondition: s must not be nil.
// Postcondition: on success the set grows by one; on error it is unchanged.
func (s *Set) Apply(e Effect) error {
	if err := e.Validate(); err != nil {
		return err
	}
	*s = append(*s, e)
	return nil
}

// Tick decrements every effect by one turn, clamping at zero, and removes the
// ones that reach zero.
//
// Postcondition: every returned effect has TurnsRemaining == 0 and is no longer in s;
// the relative order of the surviving effects is preserved.
func (s *Set) Tick() []Effect {
	var expired []Effect
	kept := (*s)[:0]
	for _, e := range *s {
		if e.TurnsRemaining > 0 {
			e.TurnsRemaining--
		}
		if e.TurnsRemaining == 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	*s = kept
	return expired
}

// Has reports whether an effect of kind with turns remaining is present.
func (s Set) Has(kind Kind) bool {
	for _, e := range s {
		if e.Kind == kind && e.TurnsRemaining > 0 {
			return true
		}
	}
	return false
}

// Stunned reports whether the set holds a live stun.
func (s Set) Stunned() bool { return s.Has(KindStun) }

// Find returns the first live effect matching kind and stat.
//
// Postcondition: ok is false when no matching effect has turns remaining.
func (s Set) Find(kind Kind, stat Stat) (Effect, bool) {
	for _, e := range s {
		if e.Kind == kind && e.Stat == stat && e.TurnsRemaining > 0 {
			return e, true
		}
	}
	return Effect{}, false
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}
