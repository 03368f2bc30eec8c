package combat

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/critters/internal/game/condition"
)

// Status is the lifecycle phase of a battle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// WinnerAttacker is the provisional winner id recorded when the defending side is wiped.
// Callers replace it with the attacker's real identity via AssignWinner.
const WinnerAttacker = "attacker"

// StunnedAbilityName labels the log entry of a turn skipped by a stun.
const StunnedAbilityName = "Aturdido"

// ActionResult is the outcome of one ability on one target.
type ActionResult struct {
	TargetID  string            `json:"targetId"`
	Damage    int               `json:"damage,omitempty"`
	Blocked   bool              `json:"blocked,omitempty"`
	Heal      int               `json:"heal,omitempty"`
	Reflected int               `json:"reflected,omitempty"`
	Stunned   int               `json:"stunned,omitempty"`
	Applied   *condition.Effect `json:"applied,omitempty"`
	Died      bool              `json:"died,omitempty"`
}

// LogEntry records one resolved turn.
type LogEntry struct {
	Round       int            `json:"round"`
	ActorID     string         `json:"actorId"`
	ActorName   string         `json:"actorName"`
	AbilityID   string         `json:"abilityId"`
	AbilityName string         `json:"abilityName"`
	TargetIDs   []string       `json:"targetIds"`
	Results     []ActionResult `json:"results"`
}

// State is the aggregate of one battle: slots in turn order, the turn pointer,
// the round counter, both auras, the action log and the outcome.
//
// Invariant: all mutation happens through Engine.ResolveTurn and, once the
// battle is completed, a single AssignWinner call.
// It is not safe for concurrent use; the caller must serialise access.
type State struct {
	slots     []*Slot
	turnIndex int
	round     int
	attacker  Aura
	defender  Aura
	log       []LogEntry
	status    Status
	winner    *string
}

// Slots returns the slots in turn order. The slice is a new allocation, but
// the pointed-to Slots are shared and callers must not modify them.
func (s *State) Slots() []*Slot {
	out := make([]*Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Slot returns the slot with id, or false.
func (s *State) Slot(id string) (*Slot, bool) {
	for _, sl := range s.slots {
		if sl.ID == id {
			return sl, true
		}
	}
	return nil, false
}

// TurnIndex returns the index into Slots of the slot whose turn it is.
func (s *State) TurnIndex() int { return s.turnIndex }

// Round returns the current round, starting at 1.
func (s *State) Round() int { return s.round }

// Status returns the lifecycle phase.
func (s *State) Status() Status { return s.status }

// IsOver reports whether the battle reached its terminal state.
func (s *State) IsOver() bool { return s.status == StatusCompleted }

// Winner returns the winner id. nil means the defending side won or the battle
// is still active; check Status to tell them apart.
func (s *State) Winner() *string {
	if s.winner == nil {
		return nil
	}
	w := *s.winner
	return &w
}

// Aura returns the aura of side.
func (s *State) Aura(side Side) Aura {
	if side == SideAttacker {
		return s.attacker
	}
	return s.defender
}

// Log returns a copy of the action log.
func (s *State) Log() []LogEntry {
	out := make([]LogEntry, len(s.log))
	copy(out, s.log)
	return out
}

// ActiveSlot returns the slot whose turn it is.
func (s *State) ActiveSlot() *Slot { return s.slots[s.turnIndex] }

// IsPlayerTurn reports whether the active slot belongs to the attacking (human) side.
func (s *State) IsPlayerTurn() bool { return s.ActiveSlot().Side == SideAttacker }

// NextAliveIndex returns the index of the first living slot after from, wrapping
// around. If no other slot is alive it returns from itself when alive, else from.
func (s *State) NextAliveIndex(from int) int {
	n := len(s.slots)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if s.slots[idx].IsAlive() {
			return idx
		}
	}
	return from
}

// Living returns the living slots of side in turn order.
func (s *State) Living(side Side) []*Slot {
	var out []*Slot
	for _, sl := range s.slots {
		if sl.Side == side && sl.IsAlive() {
			out = append(out, sl)
		}
	}
	return out
}

// Allies returns the living slots on slot's side, including slot itself when alive.
func (s *State) Allies(slot *Slot) []*Slot { return s.Living(slot.Side) }

// Enemies returns the living slots opposing slot.
func (s *State) Enemies(slot *Slot) []*Slot { return s.Living(slot.Side.Opponent()) }

// AssignWinner replaces the provisional WinnerAttacker with the attacker's real identity.
//
// Precondition: the battle is completed and the attacking side won.
// Postcondition: Winner() returns identity.
func (s *State) AssignWinner(identity string) error {
	if s.status != StatusCompleted {
		return fmt.Errorf("assigning winner: %w", ErrBattleActive)
	}
	if s.winner == nil || *s.winner != WinnerAttacker {
		return fmt.Errorf("assigning winner: attacking side did not win")
	}
	s.winner = &identity
	return nil
}

// settle completes the battle if a side has no living slots. The attacker side
// is checked first, so a mutual wipe is a defender win.
func (s *State) settle() {
	if len(s.Living(SideAttacker)) == 0 {
		s.status = StatusCompleted
		s.winner = nil
		return
	}
	if len(s.Living(SideDefender)) == 0 {
		w := WinnerAttacker
		s.status = StatusCompleted
		s.winner = &w
	}
}

// advance moves the turn pointer to the next living slot and bumps the round on wrap.
func (s *State) advance() {
	next := s.NextAliveIndex(s.turnIndex)
	if next <= s.turnIndex {
		s.round++
	}
	s.turnIndex = next
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	cp := *s
	cp.slots = make([]*Slot, len(s.slots))
	for i, sl := range s.slots {
		cp.slots[i] = sl.clone()
	}
	cp.log = s.Log()
	cp.winner = s.Winner()
	return &cp
}

// stateJSON is the persisted shape of a State.
type stateJSON struct {
	Slots        []*Slot    `json:"slots"`
	TurnIndex    int        `json:"turnIndex"`
	Round        int        `json:"round"`
	AttackerAura Aura       `json:"attackerAura"`
	DefenderAura Aura       `json:"defenderAura"`
	Log          []LogEntry `json:"log"`
	Status       Status     `json:"status"`
	WinnerID     *string    `json:"winnerId"`
}

// MarshalJSON serialises the full aggregate for storage.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Slots:        s.slots,
		TurnIndex:    s.turnIndex,
		Round:        s.round,
		AttackerAura: s.attacker,
		DefenderAura: s.defender,
		Log:          s.log,
		Status:       s.status,
		WinnerID:     s.winner,
	})
}

// UnmarshalJSON restores a State produced by MarshalJSON.
//
// Postcondition: returns an error, leaving s untouched, if the payload has no
// slots or a null slot, an out-of-range turn index, an unknown status, a round
// below 1, a slot whose hp is outside [0, maxHp] or disagrees with isDead, or
// a dead active slot in an active battle.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Slots) == 0 {
		return fmt.Errorf("decoding battle state: no slots")
	}
	if raw.TurnIndex < 0 || raw.TurnIndex >= len(raw.Slots) {
		return fmt.Errorf("decoding battle state: turn index %d out of range", raw.TurnIndex)
	}
	if raw.Status != StatusActive && raw.Status != StatusCompleted {
		return fmt.Errorf("decoding battle state: unknown status %q", raw.Status)
	}
	if raw.Round < 1 {
		return fmt.Errorf("decoding battle state: round %d must be >= 1", raw.Round)
	}
	for i, sl := range raw.Slots {
		if sl == nil {
			return fmt.Errorf("decoding battle state: slot %d is null", i)
		}
		if sl.CurrentHP < 0 || sl.CurrentHP > sl.MaxHP {
			return fmt.Errorf("decoding battle state: slot %q hp %d outside [0, %d]", sl.ID, sl.CurrentHP, sl.MaxHP)
		}
		if sl.Dead != (sl.CurrentHP == 0) {
			return fmt.Errorf("decoding battle state: slot %q isDead=%t with hp %d", sl.ID, sl.Dead, sl.CurrentHP)
		}
		if sl.Cooldowns == nil {
			sl.Cooldowns = make(map[string]int)
		}
	}
	if raw.Status == StatusActive && raw.Slots[raw.TurnIndex].Dead {
		return fmt.Errorf("decoding battle state: active slot %q is dead", raw.Slots[raw.TurnIndex].ID)
	}
	*s = State{
		slots:     raw.Slots,
		turnIndex: raw.TurnIndex,
		round:     raw.Round,
		attacker:  raw.AttackerAura,
		defender:  raw.DefenderAura,
		log:       raw.Log,
		status:    raw.Status,
		winner:    raw.WinnerID,
	}
	return nil
}
