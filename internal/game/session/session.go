package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/monster"
)

// ErrNoSuchFoe is returned by Fight for an index outside the roster.
var ErrNoSuchFoe = errors.New("no such foe")

// Terminal is the player-facing line interface between encounters.
type Terminal interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Printf(format string, args ...any)
}

// Session is one player's run: a character, the monsters they can fight, and
// where the results are saved. A Session is not safe for concurrent use.
type Session struct {
	char   *entity.Character
	roster []*entity.Monster
	deps   combat.Deps
	store  Store
	term   Terminal
	logger *zap.Logger
}

// New spawns one monster of every bestiary template for c to fight.
//
// Precondition: every argument is non-nil; deps is complete.
func New(c *entity.Character, bestiary *monster.Bestiary, deps combat.Deps, store Store, term Terminal) (*Session, error) {
	s := &Session{char: c, deps: deps, store: store, term: term, logger: deps.Logger}
	for _, id := range bestiary.IDs() {
		m, err := bestiary.Spawn(id)
		if err != nil {
			return nil, err
		}
		s.roster = append(s.roster, m)
	}
	if len(s.roster) == 0 {
		return nil, errors.New("session: bestiary is empty")
	}
	return s, nil
}

// Character returns the session's character.
func (s *Session) Character() *entity.Character { return s.char }

// Roster returns the monsters currently available to fight.
func (s *Session) Roster() []*entity.Monster {
	out := make([]*entity.Monster, len(s.roster))
	copy(out, s.roster)
	return out
}

// Play reads menu commands until the player quits, input ends, the roster
// is cleared or the character stays dead.
//
// A character restored dead is revived before the first menu.
//
// Postcondition: the character is saved before Play returns nil.
func (s *Session) Play(ctx context.Context) error {
	s.term.Printf("Welcome, %s.\n", s.char.Name())
	if !s.char.Alive() {
		s.char.Revive()
		s.term.Printf("%s rises again with %.2f health.\n", s.char.Name(), s.char.Health())
	}
	for {
		if len(s.roster) == 0 {
			s.term.Printf("There is nothing left to fight.\n")
			return s.save(ctx)
		}
		s.printRoster()
		line, err := s.term.ReadLine(ctx, "What now? ")
		if errors.Is(err, io.EOF) {
			return s.save(ctx)
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(strings.ToLower(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return s.save(ctx)
		case "stats":
			s.term.Printf("%s\n", s.char)
		case "quests":
			s.printQuests()
		case "inventory", "inv":
			s.printInventory()
		case "fight", "engage":
			if len(fields) != 2 {
				s.term.Printf("Usage: fight <number>\n")
				continue
			}
			done, err := s.fightArg(ctx, fields[1])
			if err != nil {
				return err
			}
			if done {
				return s.save(ctx)
			}
		default:
			if _, err := strconv.Atoi(fields[0]); err == nil && len(fields) == 1 {
				done, err := s.fightArg(ctx, fields[0])
				if err != nil {
					return err
				}
				if done {
					return s.save(ctx)
				}
				continue
			}
			s.term.Printf("Commands: fight <number>, stats, quests, inventory, quit\n")
		}
	}
}

// fightArg resolves a 1-based roster number and fights that monster. done
// reports that the character died and declined revival.
func (s *Session) fightArg(ctx context.Context, arg string) (done bool, err error) {
	n, convErr := strconv.Atoi(arg)
	if convErr != nil || n < 1 || n > len(s.roster) {
		s.term.Printf("There is no foe numbered %q.\n", arg)
		return false, nil
	}
	res, err := s.Fight(ctx, n-1)
	if err != nil {
		return false, err
	}
	return res.Outcome == combat.OutcomeRevivalDeclined, nil
}

// Fight runs an encounter against the roster monster at idx and saves the
// result. A slain monster respawns if it can and otherwise leaves the roster.
//
// Postcondition: returns ErrNoSuchFoe for an index outside the roster; any
// encounter error is returned unsaved.
func (s *Session) Fight(ctx context.Context, idx int) (combat.Result, error) {
	if idx < 0 || idx >= len(s.roster) {
		return combat.Result{}, fmt.Errorf("%w: %d", ErrNoSuchFoe, idx+1)
	}
	m := s.roster[idx]
	enc, err := combat.NewEncounter(s.char, m, s.deps)
	if err != nil {
		return combat.Result{}, err
	}
	res, err := enc.Run(ctx)
	if err != nil {
		return res, err
	}

	sum := Summary{
		MonsterTemplate: m.TemplateID(),
		MonsterLevel:    m.Level(),
		Outcome:         res.Outcome.String(),
		Rounds:          res.Rounds,
	}
	if res.Rewards != nil {
		sum.Gold = res.Rewards.Gold
		for _, a := range res.Rewards.Awards {
			sum.Experience += a.Experience
		}
	}
	if err := s.store.SaveEncounter(ctx, s.char.Snapshot(), sum); err != nil {
		return res, fmt.Errorf("saving encounter: %w", err)
	}

	if res.Outcome == combat.OutcomeVictory && !m.Respawn() {
		s.roster = append(s.roster[:idx], s.roster[idx+1:]...)
		s.logger.Info("monster removed from roster", zap.String("monster", m.Name()))
	}
	return res, nil
}

func (s *Session) save(ctx context.Context) error {
	if err := s.store.SaveCharacter(ctx, s.char.Snapshot()); err != nil {
		return fmt.Errorf("saving %s: %w", s.char.Name(), err)
	}
	s.logger.Info("character saved", zap.String("character", s.char.Name()))
	return nil
}

func (s *Session) printRoster() {
	s.term.Printf("Foes nearby:\n")
	for i, m := range s.roster {
		s.term.Printf("  %d) %s\n", i+1, m)
	}
}

func (s *Session) printQuests() {
	entries := s.char.QuestLog().Entries()
	if len(entries) == 0 {
		s.term.Printf("Your quest log is empty.\n")
		return
	}
	for _, e := range entries {
		s.term.Printf("  %s (%d/%d)\n", e.Quest, e.Kills, e.Quest.RequiredKills)
	}
}

func (s *Session) printInventory() {
	s.term.Printf("Gold: %d\n", s.char.Gold())
	items := s.char.Inventory().Items()
	if len(items) == 0 {
		s.term.Printf("Your bags are empty.\n")
		return
	}
	for _, inst := range items {
		s.term.Printf("  %s x%d\n", inst.ItemDefID, inst.Quantity)
	}
}
