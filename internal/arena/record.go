// Package arena is the caller layer around the combat engine: it stores
// battles, validates human turns, drives opponent turns and reports the
// resolved log for replay.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/critters/internal/game/combat"
)

// ErrNotFound is returned when a battle id has no stored record.
var ErrNotFound = errors.New("battle not found")

// Record is one persisted battle owned by a human player who controls the attacking side.
type Record struct {
	ID        uuid.UUID
	PlayerID  string
	State     *combat.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	cp := *r
	if r.State != nil {
		cp.State = r.State.Clone()
	}
	return &cp
}

// Store persists battle records keyed by id.
type Store interface {
	// Create inserts a new record.
	//
	// Postcondition: CreatedAt and UpdatedAt are set on rec.
	Create(ctx context.Context, rec *Record) error
	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// Save overwrites an existing record, or returns ErrNotFound.
	//
	// Postcondition: UpdatedAt is refreshed on rec.
	Save(ctx context.Context, rec *Record) error
}

// MemoryStore is an in-process Store. Records are cloned on the way in and
// out, so callers never share State with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*Record),
		now:     time.Now,
	}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.records[rec.ID]; dup {
		return fmt.Errorf("creating battle %s: already exists", rec.ID)
	}
	now := s.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec.Clone()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", id, ErrNotFound)
	}
	return rec.Clone(), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.records[rec.ID]
	if !ok {
		return fmt.Errorf("battle %s: %w", rec.ID, ErrNotFound)
	}
	rec.CreatedAt = prev.CreatedAt
	rec.UpdatedAt = s.now().UTC()
	s.records[rec.ID] = rec.Clone()
	return nil
}

// Len returns the number of stored battles.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
