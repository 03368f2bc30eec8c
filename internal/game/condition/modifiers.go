package condition

// DamageFactor returns the outgoing damage multiplier contributed by the set.
// Only a live damage debuff is consulted; its factor is 1 + Value.
//
// Postcondition: returns 1 when no damage debuff is active.
func DamageFactor(s Set) float64 {
	if e, ok := s.Find(KindDebuff, StatDamage); ok {
		return e.Factor()
	}
	return 1
}
