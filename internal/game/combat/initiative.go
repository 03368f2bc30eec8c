package combat

// sortByTurnOrder sorts slots in place, highest effective agility first.
// Equal agility keeps input order unless exactly one slot carries the
// tie-breaker passive, in which case that slot goes first.
func sortByTurnOrder(slots []*Slot, cat Catalog) {
	ties := make(map[*Slot]bool, len(slots))
	for _, s := range slots {
		ties[s] = s.breaksTies(cat)
	}
	before := func(a, b *Slot) bool {
		if a.EffectiveAgility != b.EffectiveAgility {
			return a.EffectiveAgility > b.EffectiveAgility
		}
		return ties[a] && !ties[b]
	}
	n := len(slots)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && before(slots[j], slots[j-1]); j-- {
			slots[j], slots[j-1] = slots[j-1], slots[j]
		}
	}
}
