package arena

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critters/internal/game/ai"
	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/dice"
)

var (
	// ErrNotParticipant is returned when a player acts on a battle they do not own.
	ErrNotParticipant = errors.New("player is not a participant in this battle")
	// ErrNotYourTurn is returned when the active slot belongs to the opponent.
	ErrNotYourTurn = errors.New("not the player's turn")
	// ErrAbilityNotEquipped is returned when the active critter cannot use the chosen ability.
	ErrAbilityNotEquipped = errors.New("ability not equipped")
	// ErrAbilityOnCooldown is returned when the chosen ability is still cooling down.
	ErrAbilityOnCooldown = errors.New("ability on cooldown")
	// ErrTurnLimit is returned when the opponent loop hits its iteration cap.
	ErrTurnLimit = errors.New("turn limit reached")
)

// DefaultMaxAITurns caps opponent turns per human action when no option overrides it.
const DefaultMaxAITurns = 50

// Report is the outcome of one Start or Act call: the stored record and every
// turn resolved during the call, in order, with HP snapshots for replay.
type Report struct {
	Record  *Record
	Entries []combat.LogEntry
	Frames  []Frame
}

func (r *Report) add(entry combat.LogEntry, st *combat.State) {
	r.Entries = append(r.Entries, entry)
	r.Frames = append(r.Frames, snapshot(entry, st))
}

// Manager runs battles between a human-controlled attacking roster and an
// AI-controlled defending roster.
//
// Calls for the same battle id are serialised; calls for different battles run
// concurrently.
type Manager struct {
	engine     *combat.Engine
	policy     *ai.Policy
	store      Store
	src        dice.Source
	logger     *zap.Logger
	maxAITurns int
	locks      keyedMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy replaces the default opponent policy.
func WithPolicy(p *ai.Policy) Option { return func(m *Manager) { m.policy = p } }

// WithSource replaces the default crypto randomness source.
func WithSource(src dice.Source) Option { return func(m *Manager) { m.src = src } }

// WithLogger sets the logger; the default discards output.
func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.logger = l } }

// WithMaxAITurns sets the opponent loop cap. Values below 1 are ignored.
func WithMaxAITurns(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAITurns = n
		}
	}
}

// NewManager creates a Manager.
//
// Precondition: engine and store must not be nil.
// Postcondition: Returns a Manager with a policy, source and logger set.
func NewManager(engine *combat.Engine, store Store, opts ...Option) *Manager {
	if engine == nil {
		panic("arena.NewManager: engine must not be nil")
	}
	if store == nil {
		panic("arena.NewManager: store must not be nil")
	}
	m := &Manager{
		engine:     engine,
		store:      store,
		maxAITurns: DefaultMaxAITurns,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.policy == nil {
		m.policy = ai.NewPolicy(engine.Catalog())
	}
	if m.src == nil {
		m.src = dice.NewCryptoSource()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Start creates a battle owned by playerID, plays opponent turns until the
// player's first turn and stores it.
//
// Postcondition: on success the record is stored and, unless the battle already
// ended, it is the player's turn. On ErrTurnLimit the partially advanced battle
// is still stored and the report is returned alongside the error.
func (m *Manager) Start(ctx context.Context, playerID string, attackers, defenders []combat.Member) (*Report, error) {
	if playerID == "" {
		return nil, fmt.Errorf("starting battle: %w: empty player id", ErrNotParticipant)
	}
	st, err := m.engine.NewState(attackers, defenders)
	if err != nil {
		return nil, fmt.Errorf("starting battle: %w", err)
	}
	rec := &Record{ID: uuid.New(), PlayerID: playerID, State: st}
	log := m.logger.With(zap.String("battle_id", rec.ID.String()), zap.String("player_id", playerID))

	unlock := m.locks.lock(rec.ID)
	defer unlock()

	report := &Report{Record: rec}
	loopErr := m.playOpponent(ctx, rec, report, log)
	if loopErr != nil && !errors.Is(loopErr, ErrTurnLimit) {
		return nil, loopErr
	}
	m.finish(rec, log)
	if err := m.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("storing battle %s: %w", rec.ID, err)
	}
	log.Info("battle started",
		zap.Int("opponent_turns", len(report.Entries)),
		zap.String("status", string(st.Status())),
	)
	return report, loopErr
}

// Act resolves the player's choice for the active slot and then every opponent
// turn up to the player's next turn or the end of the battle.
//
// Precondition: battleID names a stored battle.
// Postcondition: on success the advanced battle is saved. Validation errors
// (ErrNotFound, ErrNotParticipant, combat.ErrBattleOver, ErrNotYourTurn,
// ErrAbilityNotEquipped, ErrAbilityOnCooldown, combat.ErrUnknownAbility) leave
// the stored battle unchanged. On ErrTurnLimit the battle is saved and the
// report is returned alongside the error. Any other failure of the opponent
// loop, such as a cancelled ctx, discards the already resolved player turn:
// nothing is saved and the stored battle stays at its previous state.
func (m *Manager) Act(ctx context.Context, battleID uuid.UUID, playerID string, choice combat.Choice) (*Report, error) {
	unlock := m.locks.lock(battleID)
	defer unlock()

	rec, err := m.store.Get(ctx, battleID)
	if err != nil {
		return nil, err
	}
	log := m.logger.With(zap.String("battle_id", battleID.String()), zap.String("player_id", playerID))
	if err := m.validate(rec, playerID, choice); err != nil {
		log.Debug("rejected action", zap.String("ability", choice.AbilityID), zap.Error(err))
		return nil, err
	}

	report := &Report{Record: rec}
	entry, err := m.engine.ResolveTurn(rec.State, choice, m.src)
	if err != nil {
		return nil, fmt.Errorf("resolving player turn: %w", err)
	}
	m.logTurn(log, entry)
	report.add(entry, rec.State)

	loopErr := m.playOpponent(ctx, rec, report, log)
	if loopErr != nil && !errors.Is(loopErr, ErrTurnLimit) {
		return nil, loopErr
	}
	m.finish(rec, log)
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving battle %s: %w", battleID, err)
	}
	return report, loopErr
}

// Get returns the stored battle after checking ownership.
func (m *Manager) Get(ctx context.Context, battleID uuid.UUID, playerID string) (*Record, error) {
	rec, err := m.store.Get(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if rec.PlayerID != playerID {
		return nil, ErrNotParticipant
	}
	return rec, nil
}

// validate checks the caller-side legality rules the engine leaves to callers.
func (m *Manager) validate(rec *Record, playerID string, choice combat.Choice) error {
	if rec.PlayerID != playerID {
		return ErrNotParticipant
	}
	st := rec.State
	if st.IsOver() {
		return combat.ErrBattleOver
	}
	if !st.IsPlayerTurn() {
		return ErrNotYourTurn
	}
	actor := st.ActiveSlot()
	if !actor.Knows(choice.AbilityID) {
		return fmt.Errorf("%w: %s cannot use %q", ErrAbilityNotEquipped, actor.Name, choice.AbilityID)
	}
	ability, ok := m.engine.Catalog().Ability(choice.AbilityID)
	if !ok {
		return fmt.Errorf("%w: %q", combat.ErrUnknownAbility, choice.AbilityID)
	}
	if !ability.IsActive() {
		return fmt.Errorf("%w: %q is passive", ErrAbilityNotEquipped, choice.AbilityID)
	}
	if cd := actor.CooldownRemaining(choice.AbilityID); cd > 0 {
		return fmt.Errorf("%w: %q has %d turns left", ErrAbilityOnCooldown, choice.AbilityID, cd)
	}
	return nil
}

// playOpponent resolves turns while the battle is active and the active slot is
// either an opponent or a stunned player critter, whose skipped turn is
// resolved automatically.
//
// Postcondition: returns ErrTurnLimit after maxAITurns turns without handing
// control back to the player.
func (m *Manager) playOpponent(ctx context.Context, rec *Record, report *Report, log *zap.Logger) error {
	st := rec.State
	for turns := 0; !st.IsOver(); turns++ {
		actor := st.ActiveSlot()
		if st.IsPlayerTurn() && !actor.Stunned() {
			return nil
		}
		if turns >= m.maxAITurns {
			log.Warn("opponent turn limit reached",
				zap.Int("limit", m.maxAITurns),
				zap.Int("round", st.Round()),
			)
			return fmt.Errorf("battle %s: %w after %d turns", rec.ID, ErrTurnLimit, turns)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		choice := combat.Choice{AbilityID: actor.InnateID}
		if !st.IsPlayerTurn() {
			choice = m.policy.Decide(actor, st.Allies(actor), st.Enemies(actor))
		}
		entry, err := m.engine.ResolveTurn(st, choice, m.src)
		if err != nil {
			return fmt.Errorf("resolving turn for %s: %w", actor.ID, err)
		}
		m.logTurn(log, entry)
		report.add(entry, st)
	}
	return nil
}

// finish replaces the provisional attacker winner with the owning player's id.
func (m *Manager) finish(rec *Record, log *zap.Logger) {
	st := rec.State
	if !st.IsOver() {
		return
	}
	if w := st.Winner(); w != nil && *w == combat.WinnerAttacker {
		if err := st.AssignWinner(rec.PlayerID); err != nil {
			log.Error("assigning winner", zap.Error(err))
			return
		}
	}
	winner := ""
	if w := st.Winner(); w != nil {
		winner = *w
	}
	log.Info("battle completed", zap.Int("round", st.Round()), zap.String("winner", winner))
}

func (m *Manager) logTurn(log *zap.Logger, e combat.LogEntry) {
	log.Debug("turn resolved",
		zap.Int("round", e.Round),
		zap.String("actor", e.ActorID),
		zap.String("ability", e.AbilityName),
		zap.Strings("targets", e.TargetIDs),
	)
}
