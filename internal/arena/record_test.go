package arena_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/critters/internal/arena"
	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/dice"
)

func newRecord(t *testing.T) (*arena.Record, *combat.Engine) {
	t.Helper()
	eng := combat.NewEngine(loadCatalog(t))
	st, err := eng.NewState(
		team("p", combat.Volcanico, 80, 90),
		team("o", combat.Forestal, 100, 10),
	)
	require.NoError(t, err)
	return &arena.Record{ID: uuid.New(), PlayerID: player, State: st}, eng
}

func TestMemoryStore_CreateGetSave(t *testing.T) {
	ctx := context.Background()
	store := arena.NewMemoryStore()
	rec, eng := newRecord(t)

	require.NoError(t, store.Create(ctx, rec))
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.PlayerID, got.PlayerID)
	assert.Empty(t, got.State.Log())

	_, err = eng.ResolveTurn(got.State, combat.Choice{AbilityID: "brasa"}, dice.NewScriptedSource(0.99))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, got))
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	again, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, again.State.Log(), 1)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := arena.NewMemoryStore()
	rec, eng := newRecord(t)
	require.NoError(t, store.Create(ctx, rec))

	_, err := eng.ResolveTurn(rec.State, combat.Choice{AbilityID: "brasa"}, dice.NewScriptedSource(0.99))
	require.NoError(t, err)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.State.Log(), "mutating the caller's state must not reach the store")

	_, err = eng.ResolveTurn(got.State, combat.Choice{AbilityID: "brasa"}, dice.NewScriptedSource(0.99))
	require.NoError(t, err)
	fresh, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.State.Log(), "mutating a fetched copy must not reach the store")
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := arena.NewMemoryStore()
	rec, _ := newRecord(t)

	_, err := store.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, arena.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, rec), arena.ErrNotFound)

	require.NoError(t, store.Create(ctx, rec))
	assert.Error(t, store.Create(ctx, rec), "duplicate ids are rejected")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Get(cancelled, rec.ID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecord_Clone(t *testing.T) {
	rec, eng := newRecord(t)
	cp := rec.Clone()
	_, err := eng.ResolveTurn(cp.State, combat.Choice{AbilityID: "brasa"}, dice.NewScriptedSource(0.99))
	require.NoError(t, err)
	assert.Empty(t, rec.State.Log())
	assert.Equal(t, rec.ID, cp.ID)
}
