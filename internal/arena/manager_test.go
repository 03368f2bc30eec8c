package arena_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/critters/internal/arena"
	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/dice"
	"github.com/cory-johannsen/critters/internal/game/ruleset"
)

const player = "player-1"

func loadCatalog(t *testing.T) *ruleset.Registry {
	t.Helper()
	reg, err := ruleset.LoadDirectory("../../content/abilities")
	require.NoError(t, err)
	return reg
}

func team(prefix string, arch combat.Archetype, vit, agi int, equipped ...string) []combat.Member {
	out := make([]combat.Member, combat.RosterSize)
	for i := range out {
		id := prefix + string(rune('1'+i))
		out[i] = combat.Member{
			ID: id, Name: id, Archetype: arch, Vitality: vit, Agility: agi,
			Equipped: append([]string(nil), equipped...),
		}
	}
	return out
}

// newManager returns a Manager over a fresh MemoryStore whose block rolls never block.
func newManager(t *testing.T, opts ...arena.Option) (*arena.Manager, *arena.MemoryStore) {
	t.Helper()
	store := arena.NewMemoryStore()
	opts = append([]arena.Option{arena.WithSource(dice.NewScriptedSource(0.99))}, opts...)
	return arena.NewManager(combat.NewEngine(loadCatalog(t)), store, opts...), store
}

func TestStart_PlayerMovesFirst(t *testing.T) {
	m, store := newManager(t)
	report, err := m.Start(context.Background(), player,
		team("p", combat.Volcanico, 80, 90, "erupcion"),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.NotEqual(t, uuid.Nil, report.Record.ID)
	assert.Equal(t, player, report.Record.PlayerID)
	assert.False(t, report.Record.CreatedAt.IsZero())
	assert.True(t, report.Record.State.IsPlayerTurn())
	assert.Equal(t, "p1", report.Record.State.ActiveSlot().ID)
	assert.Equal(t, 1, store.Len())
}

func TestStart_OpponentPlaysUntilPlayerTurn(t *testing.T) {
	m, _ := newManager(t)
	report, err := m.Start(context.Background(), player,
		team("p", combat.Volcanico, 80, 10),
		team("o", combat.Forestal, 100, 90),
	)
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)
	require.Len(t, report.Frames, 3)
	for i, e := range report.Entries {
		assert.Equal(t, "o"+string(rune('1'+i)), e.ActorID)
		assert.Equal(t, e, report.Frames[i].Entry)
	}
	assert.Less(t, report.Frames[2].HP["p1"], combat.MaxHP(80))
	assert.Equal(t, "p1", report.Record.State.ActiveSlot().ID)
}

func TestStart_RejectsInvalidRoster(t *testing.T) {
	m, store := newManager(t)
	_, err := m.Start(context.Background(), player,
		team("p", combat.Volcanico, 80, 10, "torrente", "erupcion", "brasa", "marea"),
		team("o", combat.Forestal, 100, 90),
	)
	assert.ErrorIs(t, err, combat.ErrInvalidRoster)
	assert.Zero(t, store.Len())
}

func TestAct_Validation(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	report, err := m.Start(ctx, player,
		team("p", combat.Volcanico, 80, 90, "erupcion", "piel_de_magma"),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)
	id := report.Record.ID

	_, err = m.Act(ctx, uuid.New(), player, combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, arena.ErrNotFound)

	_, err = m.Act(ctx, id, "mallory", combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, arena.ErrNotParticipant)

	_, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "torrente"})
	assert.ErrorIs(t, err, arena.ErrAbilityNotEquipped)

	_, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "piel_de_magma"})
	assert.ErrorIs(t, err, arena.ErrAbilityNotEquipped, "passives cannot be used")

	rec, err := m.Get(ctx, id, player)
	require.NoError(t, err)
	assert.Empty(t, rec.State.Log(), "rejected actions leave the battle unchanged")

	_, err = m.Get(ctx, id, "mallory")
	assert.ErrorIs(t, err, arena.ErrNotParticipant)
}

func TestAct_CooldownIsEnforced(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	report, err := m.Start(ctx, player,
		team("p", combat.Volcanico, 80, 90, "erupcion"),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)
	id := report.Record.ID

	report, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "erupcion", TargetID: "o1"})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1, "p2 moves next, so no opponent turn runs")
	assert.Equal(t, "p2", report.Record.State.ActiveSlot().ID)

	_, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
	require.NoError(t, err)
	report, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
	require.NoError(t, err)
	assert.Len(t, report.Entries, 4, "p3 then the three opponents")
	require.Equal(t, "p1", report.Record.State.ActiveSlot().ID)

	_, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "erupcion"})
	assert.ErrorIs(t, err, arena.ErrAbilityOnCooldown)
}

func TestAct_PlayerWinsAndWinnerIsTranslated(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	report, err := m.Start(ctx, player,
		team("p", combat.Volcanico, 50, 100),
		team("o", combat.Forestal, 0, 10),
	)
	require.NoError(t, err)
	id := report.Record.ID

	for i := 0; i < 3; i++ {
		report, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
		require.NoError(t, err)
	}
	st := report.Record.State
	require.True(t, st.IsOver())
	require.NotNil(t, st.Winner())
	assert.Equal(t, player, *st.Winner())

	_, err = m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, combat.ErrBattleOver)
}

func TestStart_OpponentWinsImmediately(t *testing.T) {
	m, _ := newManager(t)
	report, err := m.Start(context.Background(), player,
		team("p", combat.Forestal, 0, 10),
		team("o", combat.Volcanico, 50, 100),
	)
	require.NoError(t, err)
	st := report.Record.State
	assert.True(t, st.IsOver())
	assert.Nil(t, st.Winner())
	assert.Len(t, report.Entries, 3)
}

func TestStart_StunnedPlayerTurnIsSkipped(t *testing.T) {
	m, _ := newManager(t)
	report, err := m.Start(context.Background(), player,
		team("p", combat.Acuatico, 80, 10),
		team("o", combat.Electrico, 80, 90, "descarga_paralizante"),
	)
	require.NoError(t, err)
	require.Len(t, report.Entries, 4)
	for _, e := range report.Entries[:3] {
		assert.Equal(t, "descarga_paralizante", e.AbilityID)
		assert.Equal(t, []string{"p1"}, e.TargetIDs)
	}
	skip := report.Entries[3]
	assert.Equal(t, "p1", skip.ActorID)
	assert.Equal(t, combat.StunnedAbilityName, skip.AbilityName)
	assert.Equal(t, "p2", report.Record.State.ActiveSlot().ID)
}

func TestAct_TurnLimitThenNotYourTurn(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t, arena.WithMaxAITurns(1))
	report, err := m.Start(ctx, player,
		team("p", combat.Volcanico, 80, 10),
		team("o", combat.Forestal, 100, 90),
	)
	require.ErrorIs(t, err, arena.ErrTurnLimit)
	require.NotNil(t, report)
	assert.Len(t, report.Entries, 1)
	assert.Equal(t, 1, store.Len(), "the partial battle is stored")

	_, err = m.Act(ctx, report.Record.ID, player, combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, arena.ErrNotYourTurn)
}

func TestAct_CancelledContext(t *testing.T) {
	m, _ := newManager(t)
	report, err := m.Start(context.Background(), player,
		team("p", combat.Volcanico, 80, 90),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Act(ctx, report.Record.ID, player, combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, context.Canceled)
}

// ctxBlindStore ignores cancellation on Get so a cancelled Act reaches the opponent loop.
type ctxBlindStore struct{ *arena.MemoryStore }

func (s ctxBlindStore) Get(_ context.Context, id uuid.UUID) (*arena.Record, error) {
	return s.MemoryStore.Get(context.Background(), id)
}

func TestAct_CancelledDuringOpponentLoopDiscardsPlayerTurn(t *testing.T) {
	store := ctxBlindStore{arena.NewMemoryStore()}
	m := arena.NewManager(combat.NewEngine(loadCatalog(t)), store, arena.WithSource(dice.NewScriptedSource(0.99)))
	attackers := team("p", combat.Volcanico, 80, 5)
	attackers[0].Agility = 90
	report, err := m.Start(context.Background(), player, attackers, team("o", combat.Forestal, 100, 50))
	require.NoError(t, err)
	require.Empty(t, report.Entries)
	id := report.Record.ID

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)

	rec, err := m.Get(context.Background(), id, player)
	require.NoError(t, err)
	assert.Empty(t, rec.State.Log(), "the resolved player turn is not saved")
	assert.Equal(t, "p1", rec.State.ActiveSlot().ID)
}

func TestAct_ConcurrentCallsAreSerialised(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	report, err := m.Start(ctx, player,
		team("p", combat.Volcanico, 100, 90),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)
	id := report.Record.ID

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		entries int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := m.Act(ctx, id, player, combat.Choice{AbilityID: "brasa"})
			if err != nil {
				assert.True(t, errors.Is(err, combat.ErrBattleOver), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			entries += len(r.Entries)
			mu.Unlock()
		}()
	}
	wg.Wait()

	rec, err := m.Get(ctx, id, player)
	require.NoError(t, err)
	assert.Equal(t, entries, len(rec.State.Log()))
}

func TestManager_LogsLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, _ := newManager(t, arena.WithLogger(zap.New(core)))
	_, err := m.Start(context.Background(), player,
		team("p", combat.Forestal, 0, 10),
		team("o", combat.Volcanico, 50, 100),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, logs.FilterMessage("turn resolved").Len())
	completed := logs.FilterMessage("battle completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "", completed[0].ContextMap()["winner"])
	assert.Equal(t, 1, logs.FilterMessage("battle started").Len())
}

func TestSimulate_DeterministicForSeed(t *testing.T) {
	cat := loadCatalog(t)
	selva, err := ruleset.LoadRoster("../../content/rosters/selva.yaml")
	require.NoError(t, err)
	volcan, err := ruleset.LoadRoster("../../content/rosters/volcan.yaml")
	require.NoError(t, err)

	run := func() *arena.Replay {
		m := arena.NewManager(combat.NewEngine(cat), arena.NewMemoryStore(), arena.WithSource(dice.NewSeededSource(7)))
		replay, err := m.Simulate(context.Background(), selva.Members, volcan.Members, 500)
		require.NoError(t, err)
		return replay
	}
	a, b := run(), run()
	require.True(t, a.State.IsOver())
	assert.NotEmpty(t, a.Winner())
	assert.Len(t, a.Frames, len(a.State.Log()))
	assert.Equal(t, a.Frames, b.Frames)

	left, err := json.Marshal(a)
	require.NoError(t, err)
	right, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(left), string(right))
}

func TestSimulate_TurnLimit(t *testing.T) {
	m, _ := newManager(t)
	replay, err := m.Simulate(context.Background(),
		team("p", combat.Volcanico, 100, 50),
		team("o", combat.Forestal, 100, 40),
		2,
	)
	require.ErrorIs(t, err, arena.ErrTurnLimit)
	assert.Len(t, replay.Frames, 2)
	assert.Empty(t, replay.Winner())
}

func TestNewManager_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { arena.NewManager(nil, arena.NewMemoryStore()) })
	assert.Panics(t, func() { arena.NewManager(combat.NewEngine(loadCatalog(t)), nil) })
}
