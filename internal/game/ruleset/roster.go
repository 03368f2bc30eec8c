package ruleset

import (
	"fmt"
	"os"

	"github.com/cory-johannsen/critters/internal/game/combat"
)

// Roster is a named team of critters ready to enter a battle.
type Roster struct {
	Name    string          `yaml:"name"`
	Members []combat.Member `yaml:"members"`
}

// LoadRoster reads a roster file.
//
// Precondition: path must be a readable YAML file.
// Postcondition: the returned roster has exactly combat.RosterSize members with
// non-empty ids; ability and archetype checks are left to combat.Engine.NewState.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var r Roster
	if err := decodeStrict(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster file %s: %w", path, err)
	}
	if len(r.Members) != combat.RosterSize {
		return nil, fmt.Errorf("roster %s: want %d members, got %d", path, combat.RosterSize, len(r.Members))
	}
	for i, m := range r.Members {
		if m.ID == "" {
			return nil, fmt.Errorf("roster %s: member %d has no id", path, i)
		}
		if m.Name == "" {
			r.Members[i].Name = m.ID
		}
	}
	return &r, nil
}
