package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/condition"
)

// mapCatalog is an in-memory combat.Catalog for tests.
type mapCatalog map[string]*combat.Ability

func (c mapCatalog) Ability(id string) (*combat.Ability, bool) {
	a, ok := c[id]
	return a, ok
}

func (c mapCatalog) Innate(arch combat.Archetype) (*combat.Ability, bool) {
	for _, a := range c {
		if a.Innate && a.Archetype == arch {
			return a, true
		}
	}
	return nil, false
}

func innate(id string, arch combat.Archetype) *combat.Ability {
	return &combat.Ability{
		ID: id, Name: id, Archetype: arch, Kind: combat.Active, Target: combat.TargetSingle,
		Innate: true, Effects: []combat.Effect{combat.Damage{Multiplier: 1.0}},
	}
}

func testCatalog() mapCatalog {
	abilities := []*combat.Ability{
		innate("brasa", combat.Volcanico),
		innate("latigo", combat.Forestal),
		innate("chispa", combat.Electrico),
		innate("chorro", combat.Acuatico),
		{ID: "curar", Name: "Curar", Archetype: combat.Forestal, Kind: combat.Active, Cooldown: 3,
			Target: combat.TargetSelf, Effects: []combat.Effect{combat.Heal{Multiplier: 1.0}}},
		{ID: "savia", Name: "Savia", Archetype: combat.Forestal, Kind: combat.Active, Cooldown: 3,
			Target: combat.TargetAlly, Effects: []combat.Effect{combat.Heal{Multiplier: 1.2}}},
		{ID: "lodo", Name: "Lodo", Archetype: combat.Acuatico, Kind: combat.Active, Cooldown: 2,
			Target: combat.TargetSingle, Effects: []combat.Effect{
				combat.Damage{Multiplier: 0.5},
				combat.Modifier{Kind: condition.KindDebuff, Stat: condition.StatAgility, Percent: -0.25, Turns: 2},
			}},
		{ID: "niebla", Name: "Niebla", Archetype: combat.Acuatico, Kind: combat.Active, Cooldown: 2,
			Target: combat.TargetSingle, Effects: []combat.Effect{
				combat.Modifier{Kind: condition.KindDebuff, Stat: condition.StatDamage, Percent: -0.2, Turns: 2},
			}},
		{ID: "rayo", Name: "Rayo", Archetype: combat.Electrico, Kind: combat.Active, Cooldown: 3,
			Target: combat.TargetSingle, Effects: []combat.Effect{combat.Damage{Multiplier: 0.9}, combat.Stun{Turns: 1}}},
		{ID: "tormenta", Name: "Tormenta", Archetype: combat.Electrico, Kind: combat.Active, Cooldown: 3,
			Target: combat.TargetAll, Effects: []combat.Effect{combat.Damage{Multiplier: 0.7}}},
		{ID: "sobrecarga", Name: "Sobrecarga", Archetype: combat.Electrico, Kind: combat.Active, Cooldown: 4,
			Target: combat.TargetSelf, Effects: []combat.Effect{
				combat.Modifier{Kind: condition.KindBuff, Stat: condition.StatAgility, Percent: 0.3, Turns: 2},
			}},
		{ID: "espinas", Name: "Espinas", Archetype: combat.Forestal, Kind: combat.Passive,
			Target: combat.TargetSelf, Effects: []combat.Effect{combat.Reflect{Percent: 0.5}}},
		{ID: "caparazon", Name: "Caparazon", Archetype: combat.Acuatico, Kind: combat.Passive,
			Target: combat.TargetSelf, Effects: []combat.Effect{combat.DamageReduction{Percent: 0.2}}},
		{ID: "reflejos", Name: "Reflejos", Archetype: combat.Electrico, Kind: combat.Passive,
			Target: combat.TargetSelf, Effects: []combat.Effect{combat.TieBreaker{}}},
	}
	c := make(mapCatalog, len(abilities))
	for _, a := range abilities {
		c[a.ID] = a
	}
	return c
}

func member(id string, arch combat.Archetype, vit, agi, inst, cha int, equipped ...string) combat.Member {
	return combat.Member{
		ID: id, Name: id, Archetype: arch,
		Vitality: vit, Agility: agi, Instinct: inst, Charisma: cha,
		Equipped: equipped,
	}
}

// trio returns three copies of m with ids prefix1..prefix3.
func trio(prefix string, m combat.Member) []combat.Member {
	out := make([]combat.Member, 3)
	for i := range out {
		cp := m
		cp.ID = prefix + string(rune('1'+i))
		cp.Name = cp.ID
		cp.Equipped = append([]string(nil), m.Equipped...)
		out[i] = cp
	}
	return out
}

// neverBlock always draws 0.99, which never beats a block chance below 0.99.
type neverBlock struct{}

func (neverBlock) Float64() float64 { return 0.99 }

// alwaysBlock always draws 0, which blocks whenever the chance is positive.
type alwaysBlock struct{}

func (alwaysBlock) Float64() float64 { return 0 }

func newState(t *testing.T, attackers, defenders []combat.Member) (*combat.Engine, *combat.State) {
	t.Helper()
	eng := combat.NewEngine(testCatalog())
	st, err := eng.NewState(attackers, defenders)
	require.NoError(t, err)
	return eng, st
}

// basic resolves one innate-ability turn for the active slot with no target.
func basic(t *testing.T, eng *combat.Engine, st *combat.State) combat.LogEntry {
	t.Helper()
	entry, err := eng.ResolveTurn(st, combat.Choice{AbilityID: st.ActiveSlot().InnateID}, neverBlock{})
	require.NoError(t, err)
	return entry
}

func slot(t *testing.T, st *combat.State, id string) *combat.Slot {
	t.Helper()
	s, ok := st.Slot(id)
	require.True(t, ok, "slot %q", id)
	return s
}
