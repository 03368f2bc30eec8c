package combat_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/dice"
)

var equippable = map[combat.Archetype][]string{
	combat.Forestal:  {"curar", "savia", "espinas"},
	combat.Acuatico:  {"lodo", "niebla", "caparazon"},
	combat.Electrico: {"rayo", "tormenta", "sobrecarga", "reflejos"},
	combat.Volcanico: {},
}

func genMember(rt *rapid.T, id string) combat.Member {
	arch := rapid.SampledFrom(combat.Archetypes).Draw(rt, id+"-arch")
	pool := equippable[arch]
	var equipped []string
	if len(pool) > 0 {
		shuffled := rapid.Permutation(pool).Draw(rt, id+"-pool")
		n := rapid.IntRange(0, min(len(shuffled), combat.MaxEquipped)).Draw(rt, id+"-equipped")
		equipped = shuffled[:n]
	}
	return combat.Member{
		ID:        id,
		Name:      id,
		Archetype: arch,
		Vitality:  rapid.IntRange(0, 100).Draw(rt, id+"-vit"),
		Agility:   rapid.IntRange(0, 100).Draw(rt, id+"-agi"),
		Instinct:  rapid.IntRange(0, 300).Draw(rt, id+"-inst"),
		Charisma:  rapid.IntRange(0, 100).Draw(rt, id+"-cha"),
		Equipped:  equipped,
	}
}

func genRosters(rt *rapid.T) ([]combat.Member, []combat.Member) {
	attackers := make([]combat.Member, combat.RosterSize)
	defenders := make([]combat.Member, combat.RosterSize)
	for i := range attackers {
		attackers[i] = genMember(rt, "a"+string(rune('1'+i)))
		defenders[i] = genMember(rt, "d"+string(rune('1'+i)))
	}
	return attackers, defenders
}

// genChoice picks a legal ability for the active slot and a target id that may be invalid.
func genChoice(rt *rapid.T, st *combat.State, label string) combat.Choice {
	actor := st.ActiveSlot()
	options := []string{actor.InnateID}
	for _, id := range actor.Equipped {
		if actor.CooldownRemaining(id) == 0 {
			options = append(options, id)
		}
	}
	ids := []string{""}
	for _, s := range st.Slots() {
		ids = append(ids, s.ID)
	}
	return combat.Choice{
		AbilityID: rapid.SampledFrom(options).Draw(rt, label+"-ability"),
		TargetID:  rapid.SampledFrom(ids).Draw(rt, label+"-target"),
	}
}

func TestResolveTurn_Property_Invariants(t *testing.T) {
	eng := combat.NewEngine(testCatalog())
	rapid.Check(t, func(rt *rapid.T) {
		attackers, defenders := genRosters(rt)
		st, err := eng.NewState(attackers, defenders)
		require.NoError(rt, err)
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))

		dead := map[string]bool{}
		turns := rapid.IntRange(1, 60).Draw(rt, "turns")
		for i := 0; i < turns && !st.IsOver(); i++ {
			round, index := st.Round(), st.TurnIndex()
			actor := st.ActiveSlot()
			require.True(rt, actor.IsAlive(), "dead slots never act")

			_, err := eng.ResolveTurn(st, genChoice(rt, st, "turn"), src)
			require.NoError(rt, err)

			switch {
			case st.IsOver():
				assert.Equal(rt, round, st.Round(), "finishing turn does not advance")
			case st.TurnIndex() <= index:
				assert.Equal(rt, round+1, st.Round(), "wrap from %d to %d", index, st.TurnIndex())
			default:
				assert.Equal(rt, round, st.Round(), "no wrap from %d to %d", index, st.TurnIndex())
			}
			for _, s := range st.Slots() {
				assert.GreaterOrEqual(rt, s.CurrentHP, 0, s.ID)
				assert.LessOrEqual(rt, s.CurrentHP, s.MaxHP, s.ID)
				assert.Equal(rt, s.CurrentHP == 0, s.Dead, s.ID)
				if dead[s.ID] {
					assert.True(rt, s.Dead, "%s revived", s.ID)
				}
				dead[s.ID] = s.Dead
				for id, cd := range s.Cooldowns {
					assert.Positive(rt, cd, "%s cooldown %s", s.ID, id)
				}
				for _, e := range s.Effects {
					assert.Positive(rt, e.TurnsRemaining, s.ID)
				}
			}

			wiped := len(st.Living(combat.SideAttacker)) == 0 || len(st.Living(combat.SideDefender)) == 0
			assert.Equal(rt, wiped, st.IsOver())
			if !st.IsOver() {
				assert.True(rt, st.ActiveSlot().IsAlive())
			}
		}
	})
}

func TestResolveTurn_Property_Deterministic(t *testing.T) {
	eng := combat.NewEngine(testCatalog())
	rapid.Check(t, func(rt *rapid.T) {
		attackers, defenders := genRosters(rt)
		st, err := eng.NewState(attackers, defenders)
		require.NoError(rt, err)
		twin := st.Clone()
		seed := rapid.Uint64().Draw(rt, "seed")
		srcA, srcB := dice.NewSeededSource(seed), dice.NewSeededSource(seed)

		turns := rapid.IntRange(1, 30).Draw(rt, "turns")
		for i := 0; i < turns && !st.IsOver(); i++ {
			choice := genChoice(rt, st, "turn")
			a, errA := eng.ResolveTurn(st, choice, srcA)
			b, errB := eng.ResolveTurn(twin, choice, srcB)
			require.NoError(rt, errA)
			require.NoError(rt, errB)
			assert.Equal(rt, a, b)
		}

		left, err := json.Marshal(st)
		require.NoError(rt, err)
		right, err := json.Marshal(twin)
		require.NoError(rt, err)
		assert.JSONEq(rt, string(left), string(right))
	})
}

func TestNewState_Property_TurnOrderIsNonIncreasing(t *testing.T) {
	eng := combat.NewEngine(testCatalog())
	rapid.Check(t, func(rt *rapid.T) {
		attackers, defenders := genRosters(rt)
		st, err := eng.NewState(attackers, defenders)
		require.NoError(rt, err)
		slots := st.Slots()
		for i := 1; i < len(slots); i++ {
			assert.GreaterOrEqual(rt, slots[i-1].EffectiveAgility, slots[i].EffectiveAgility)
		}
	})
}
