package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/critters/internal/arena"
	"github.com/cory-johannsen/critters/internal/game/combat"
)

// ErrBattleExists is returned when creating a battle whose id is already stored.
var ErrBattleExists = errors.New("battle already exists")

// BattleRepository stores battle records as JSONB snapshots. It implements arena.Store.
//
// status, winner and round are denormalised from the snapshot so battles can be
// listed without decoding it.
type BattleRepository struct {
	db *pgxpool.Pool
}

var _ arena.Store = (*BattleRepository)(nil)

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// BattleSummary is a listing row for one stored battle.
type BattleSummary struct {
	ID        uuid.UUID
	Status    combat.Status
	Winner    *string
	Round     int
	UpdatedAt time.Time
}

// Create inserts rec.
//
// Precondition: rec.ID must be set and rec.State must not be nil.
// Postcondition: rec.CreatedAt and rec.UpdatedAt hold the stored timestamps,
// or ErrBattleExists is returned on a duplicate id.
func (r *BattleRepository) Create(ctx context.Context, rec *arena.Record) error {
	snapshot, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("encoding battle %s: %w", rec.ID, err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO battles (id, player_id, status, winner, round, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		rec.ID, rec.PlayerID, string(rec.State.Status()), rec.State.Winner(), rec.State.Round(), snapshot,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("battle %s: %w", rec.ID, ErrBattleExists)
		}
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// Get returns the battle with id.
//
// Postcondition: Returns the decoded record, or an error wrapping arena.ErrNotFound.
func (r *BattleRepository) Get(ctx context.Context, id uuid.UUID) (*arena.Record, error) {
	rec := &arena.Record{ID: id}
	var snapshot []byte
	err := r.db.QueryRow(ctx, `
		SELECT player_id, state, created_at, updated_at
		FROM battles WHERE id = $1`,
		id,
	).Scan(&rec.PlayerID, &snapshot, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("battle %s: %w", id, arena.ErrNotFound)
		}
		return nil, fmt.Errorf("loading battle: %w", err)
	}
	st := &combat.State{}
	if err := json.Unmarshal(snapshot, st); err != nil {
		return nil, fmt.Errorf("decoding battle %s: %w", id, err)
	}
	rec.State = st
	return rec, nil
}

// Save overwrites the snapshot of an existing battle.
//
// Postcondition: rec.UpdatedAt is refreshed, or an error wrapping
// arena.ErrNotFound is returned when no row matched.
func (r *BattleRepository) Save(ctx context.Context, rec *arena.Record) error {
	snapshot, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("encoding battle %s: %w", rec.ID, err)
	}
	err = r.db.QueryRow(ctx, `
		UPDATE battles
		SET status = $2, winner = $3, round = $4, state = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		rec.ID, string(rec.State.Status()), rec.State.Winner(), rec.State.Round(), snapshot,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("battle %s: %w", rec.ID, arena.ErrNotFound)
		}
		return fmt.Errorf("updating battle: %w", err)
	}
	return nil
}

// ListByPlayer returns summaries of every battle owned by playerID, most recently updated first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BattleRepository) ListByPlayer(ctx context.Context, playerID string) ([]BattleSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, status, winner, round, updated_at
		FROM battles WHERE player_id = $1
		ORDER BY updated_at DESC, id`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	defer rows.Close()

	var out []BattleSummary
	for rows.Next() {
		var (
			s      BattleSummary
			status string
		)
		if err := rows.Scan(&s.ID, &status, &s.Winner, &s.Round, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		s.Status = combat.Status(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battles: %w", err)
	}
	return out, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
