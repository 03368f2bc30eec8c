package arena

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/critters/internal/game/combat"
)

// Frame is one resolved turn plus every slot's HP right after it, enough for a
// client to animate the turn without replaying the engine.
type Frame struct {
	Entry combat.LogEntry `json:"entry"`
	HP    map[string]int  `json:"hp"`
}

func snapshot(entry combat.LogEntry, st *combat.State) Frame {
	hp := make(map[string]int, len(st.Slots()))
	for _, s := range st.Slots() {
		hp[s.ID] = s.CurrentHP
	}
	return Frame{Entry: entry, HP: hp}
}

// Replay is the result of a fully automated battle.
type Replay struct {
	Frames []Frame       `json:"frames"`
	State  *combat.State `json:"state"`
}

// Winner returns the winning side once the battle is over: SideAttacker,
// SideDefender, or "" while it is still active.
func (r *Replay) Winner() combat.Side {
	if !r.State.IsOver() {
		return ""
	}
	if r.State.Winner() != nil {
		return combat.SideAttacker
	}
	return combat.SideDefender
}

// Simulate plays a battle with both sides driven by the opponent policy and
// returns every frame. Nothing is stored.
//
// Postcondition: returns ErrTurnLimit together with the partial replay when
// maxTurns turns pass without a winner.
func (m *Manager) Simulate(ctx context.Context, attackers, defenders []combat.Member, maxTurns int) (*Replay, error) {
	st, err := m.engine.NewState(attackers, defenders)
	if err != nil {
		return nil, fmt.Errorf("starting simulation: %w", err)
	}
	replay := &Replay{State: st}
	for turns := 0; !st.IsOver(); turns++ {
		if turns >= maxTurns {
			m.logger.Warn("simulation turn limit reached", zap.Int("limit", maxTurns), zap.Int("round", st.Round()))
			return replay, fmt.Errorf("simulation: %w after %d turns", ErrTurnLimit, turns)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		actor := st.ActiveSlot()
		choice := m.policy.Decide(actor, st.Allies(actor), st.Enemies(actor))
		entry, err := m.engine.ResolveTurn(st, choice, m.src)
		if err != nil {
			return nil, fmt.Errorf("resolving turn for %s: %w", actor.ID, err)
		}
		m.logTurn(m.logger, entry)
		replay.Frames = append(replay.Frames, snapshot(entry, st))
	}
	m.logger.Info("simulation completed",
		zap.Int("turns", len(replay.Frames)),
		zap.Int("round", st.Round()),
		zap.String("winner", string(replay.Winner())),
	)
	return replay, nil
}
