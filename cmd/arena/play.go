package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/critters/internal/arena"
	"github.com/cory-johannsen/critters/internal/game/combat"
)

// parseChoice reads "<ability id> [target id]" from one input line.
func parseChoice(line string) (combat.Choice, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return combat.Choice{AbilityID: fields[0]}, nil
	case 2:
		return combat.Choice{AbilityID: fields[0], TargetID: fields[1]}, nil
	default:
		return combat.Choice{}, fmt.Errorf("expected \"<ability> [target]\", got %q", strings.TrimSpace(line))
	}
}

func describeResult(r combat.ActionResult) string {
	var parts []string
	if r.Damage > 0 || r.Blocked {
		s := fmt.Sprintf("%d dmg", r.Damage)
		if r.Blocked {
			s += " (blocked)"
		}
		parts = append(parts, s)
	}
	if r.Heal > 0 {
		parts = append(parts, fmt.Sprintf("+%d hp", r.Heal))
	}
	if r.Reflected > 0 {
		parts = append(parts, fmt.Sprintf("%d reflected", r.Reflected))
	}
	if r.Stunned > 0 {
		parts = append(parts, fmt.Sprintf("stunned %d", r.Stunned))
	}
	if r.Applied != nil {
		parts = append(parts, fmt.Sprintf("%s %s %+.0f%% for %d", r.Applied.Kind, r.Applied.Stat, r.Applied.Value*100, r.Applied.TurnsRemaining))
	}
	if r.Died {
		parts = append(parts, "KO")
	}
	return r.TargetID + ": " + strings.Join(parts, ", ")
}

// printFrames writes one line per resolved turn followed by its per-target outcomes.
func printFrames(w io.Writer, frames []arena.Frame) {
	for _, f := range frames {
		e := f.Entry
		fmt.Fprintf(w, "[round %d] %s uses %s\n", e.Round, e.ActorName, e.AbilityName)
		for _, r := range e.Results {
			fmt.Fprintf(w, "    %s\n", describeResult(r))
		}
	}
}

// printState writes every slot with HP and status, marking the active one.
func printState(w io.Writer, st *combat.State) {
	active := st.ActiveSlot()
	for _, s := range st.Slots() {
		marker := " "
		if s.ID == active.ID && !st.IsOver() {
			marker = ">"
		}
		status := ""
		switch {
		case s.Dead:
			status = " KO"
		case s.Stunned():
			status = " stunned"
		}
		fmt.Fprintf(w, "%s %-9s %-10s %-10s %3d/%-3d%s\n", marker, s.Side, s.ID, s.Archetype, s.CurrentHP, s.MaxHP, status)
	}
}

// printOptions lists the active slot's usable abilities and living enemies.
func printOptions(w io.Writer, st *combat.State, cat combat.Catalog) {
	actor := st.ActiveSlot()
	ids := append([]string{actor.InnateID}, actor.Equipped...)
	fmt.Fprintf(w, "%s's turn. abilities:", actor.Name)
	for _, id := range ids {
		a, ok := cat.Ability(id)
		if !ok || !a.IsActive() {
			continue
		}
		if cd := actor.CooldownRemaining(id); cd > 0 {
			fmt.Fprintf(w, " %s(cd %d)", id, cd)
			continue
		}
		fmt.Fprintf(w, " %s", id)
	}
	fmt.Fprint(w, "\ntargets:")
	for _, e := range st.Enemies(actor) {
		fmt.Fprintf(w, " %s", e.ID)
	}
	fmt.Fprintln(w)
}

// play drives one battle from lines read on in until it ends or in is exhausted.
// Rejected choices are reported and re-prompted.
func play(ctx context.Context, m *arena.Manager, cat combat.Catalog, playerID string, attackers, defenders []combat.Member, in io.Reader, out io.Writer) error {
	report, err := m.Start(ctx, playerID, attackers, defenders)
	if err != nil {
		return fmt.Errorf("starting battle: %w", err)
	}
	id := report.Record.ID
	fmt.Fprintf(out, "battle %s\n", id)
	printFrames(out, report.Frames)

	scanner := bufio.NewScanner(in)
	for {
		st := report.Record.State
		printState(out, st)
		if st.IsOver() {
			if w := st.Winner(); w != nil {
				fmt.Fprintf(out, "winner: %s\n", *w)
			} else {
				fmt.Fprintln(out, "winner: defender")
			}
			return nil
		}
		printOptions(out, st, cat)
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		}
		choice, err := parseChoice(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		next, err := m.Act(ctx, id, playerID, choice)
		switch {
		case err == nil:
		case errors.Is(err, arena.ErrAbilityNotEquipped), errors.Is(err, arena.ErrAbilityOnCooldown), errors.Is(err, combat.ErrUnknownAbility):
			fmt.Fprintln(out, err)
			continue
		default:
			return err
		}
		report = next
		printFrames(out, report.Frames)
	}
}
