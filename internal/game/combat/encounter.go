package combat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/loot"
	"github.com/cory-johannsen/skirmish/internal/game/progression"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/spell"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Outcome is how an encounter ended.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	// OutcomeVictory: the monster died.
	OutcomeVictory
	// OutcomeFled: the character left the fight.
	OutcomeFled
	// OutcomeRevived: the character died and accepted revival.
	OutcomeRevived
	// OutcomeRevivalDeclined: the character died and declined revival.
	OutcomeRevivalDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeFled:
		return "fled"
	case OutcomeRevived:
		return "revived"
	case OutcomeRevivalDeclined:
		return "revival_declined"
	default:
		return "unknown"
	}
}

// ErrMonsterUnavailable is returned when an encounter is started against a
// dead or non-interactable monster.
var ErrMonsterUnavailable = errors.New("monster unavailable")

// Input supplies the player's decisions. Both calls block until the player answers.
type Input interface {
	NextCommand(ctx context.Context) (string, error)
	ConfirmRevive(ctx context.Context) (bool, error)
}

// SpellCaster resolves a named spell cast.
type SpellCaster interface {
	Cast(caster *entity.Character, target entity.Combatant, name string) (spell.Result, error)
}

// EffectFactory instantiates effect definitions by id.
type EffectFactory interface {
	New(id string, sourceLevel int) (effect.Effect, error)
}

// LootGenerator rolls a monster's loot table.
type LootGenerator interface {
	Generate(t *loot.Table) loot.Result
}

// ItemCatalog resolves item definitions by id.
type ItemCatalog interface {
	Get(id string) (*item.Def, bool)
}

// KillNotifier advances kill quests when a monster dies.
type KillNotifier interface {
	NotifyKill(q quest.Questor, k quest.Kill) []*quest.KillQuest
}

// Progression awards experience and applies level-ups.
type Progression interface {
	AwardKill(c *entity.Character, monsterLevel, baseXP int) (progression.Award, error)
	AwardExperience(c *entity.Character, xp int) (progression.Award, error)
}

// ScriptRunner runs one-time scripts.
type ScriptRunner interface {
	RunOnce(ctx context.Context, seen scripting.OnceTracker, name string, env scripting.Env) (scripting.Output, bool, error)
}

// Deps wires an Encounter to its collaborators. Input, Events, Dice,
// Progression and Logger are required. Spells, Effects, Quests and Scripts
// may be nil, which disables the matching feature; Loot requires Items.
type Deps struct {
	Input       Input
	Events      EventSink
	Dice        *dice.Roller
	Progression Progression
	Logger      *zap.Logger
	Spells      SpellCaster
	Effects     EffectFactory
	Loot        LootGenerator
	Items       ItemCatalog
	Quests      KillNotifier
	Scripts     ScriptRunner
}

func (d Deps) validate() error {
	var missing []string
	if d.Input == nil {
		missing = append(missing, "Input")
	}
	if d.Events == nil {
		missing = append(missing, "Events")
	}
	if d.Dice == nil {
		missing = append(missing, "Dice")
	}
	if d.Progression == nil {
		missing = append(missing, "Progression")
	}
	if d.Logger == nil {
		missing = append(missing, "Logger")
	}
	if d.Loot != nil && d.Items == nil {
		missing = append(missing, "Items")
	}
	if len(missing) > 0 {
		return fmt.Errorf("combat: missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Rewards collects everything a victory granted. Lost holds drops that did
// not fit in the inventory.
type Rewards struct {
	Gold            int
	Items           []item.Instance
	Lost            []item.Instance
	QuestsCompleted []*quest.KillQuest
	Awards          []progression.Award
	Announcements   []string
}

// Result is the terminal state of an encounter. Rewards is set only for
// OutcomeVictory.
type Result struct {
	Outcome Outcome
	Rounds  int
	Rewards *Rewards
}

// Encounter is one fight between a character and a monster. It owns both
// participants for the duration of Run and is not safe for concurrent use.
type Encounter struct {
	char  *entity.Character
	mon   *entity.Monster
	deps  Deps
	round int
}

// NewEncounter creates an Encounter.
//
// Precondition: c and m must be non-nil.
// Postcondition: returns an error if deps are incomplete, the character is
// dead, or the monster is dead or not interactable.
func NewEncounter(c *entity.Character, m *entity.Monster, deps Deps) (*Encounter, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if !c.Alive() {
		return nil, fmt.Errorf("combat: %s: %w", c.Name(), entity.ErrAlreadyDead)
	}
	if !m.Alive() || !m.Interactable() {
		return nil, fmt.Errorf("combat: %s: %w", m.Name(), ErrMonsterUnavailable)
	}
	return &Encounter{char: c, mon: m, deps: deps}, nil
}

// Run plays rounds until the fight ends. Each round resolves fully before
// the next: the monster's effects tick and it strikes, then the character's
// effects tick and the character acts, then buffs on both decay.
//
// Postcondition: on success both participants are out of combat. Errors are
// fatal to the session: a cancelled ctx, a failed input read, or a
// configuration error from a collaborator.
func (e *Encounter) Run(ctx context.Context) (Result, error) {
	c, m := e.char, e.mon
	c.EnterCombat()
	m.EnterCombat()
	e.deps.Logger.Info("encounter started",
		zap.String("character", c.Name()),
		zap.String("monster", m.Name()),
		zap.String("guid", m.GUID()),
	)
	e.emit(Event{Kind: EventEngage, Actor: c.Name(), Target: m.Name(),
		Narrative: fmt.Sprintf("%s engages %s.", c.Name(), m.String())})

	res, err := e.loop(ctx)
	if err != nil {
		e.disengage()
		e.deps.Logger.Error("encounter aborted", zap.Int("round", e.round), zap.Error(err))
		return Result{}, err
	}
	res.Rounds = e.round
	e.deps.Logger.Info("encounter finished",
		zap.String("character", c.Name()),
		zap.String("monster", m.Name()),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("rounds", e.round),
	)
	return res, nil
}

func (e *Encounter) loop(ctx context.Context) (Result, error) {
	c, m := e.char, e.mon
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		e.round++

		if err := e.startOfTurn(m); err != nil {
			return Result{}, err
		}
		if !m.Alive() {
			return e.victory(ctx)
		}

		blow, err := Attack(m, c, e.deps.Dice)
		if err != nil {
			return Result{}, err
		}
		e.emitBlow(blow)
		if !c.Alive() {
			return e.defeat(ctx)
		}
		if err := e.onHit(blow); err != nil {
			return Result{}, err
		}

		if err := e.startOfTurn(c); err != nil {
			return Result{}, err
		}
		if !c.Alive() {
			return e.defeat(ctx)
		}

		kind, err := e.playerTurn(ctx)
		if err != nil {
			return Result{}, err
		}
		if kind == CommandFlee {
			e.disengage()
			e.emit(Event{Kind: EventFled, Actor: c.Name(), Target: m.Name(),
				Narrative: fmt.Sprintf("%s flees from %s.", c.Name(), m.Name())})
			return Result{Outcome: OutcomeFled}, nil
		}
		if !m.Alive() {
			return e.victory(ctx)
		}

		e.endOfTurn(m)
		e.endOfTurn(c)
	}
}

func (e *Encounter) startOfTurn(host entity.Combatant) error {
	ts, err := StartOfTurn(host)
	if err != nil {
		return err
	}
	name := host.Living().Name()
	for _, t := range ts.Ticks {
		e.emit(Event{Kind: EventTick, Actor: t.Effect, Target: name, Amount: t.Hit.Dealt,
			Narrative: fmt.Sprintf("%s deals %.2f damage to %s.", t.Effect, t.Hit.Dealt, name)})
	}
	e.emitExpired(name, ts.Expired)
	return nil
}

func (e *Encounter) endOfTurn(host entity.Combatant) {
	e.emitExpired(host.Living().Name(), EndOfTurn(host))
}

func (e *Encounter) emitExpired(host string, expired []effect.Effect) {
	for _, x := range expired {
		e.emit(Event{Kind: EventEffectExpired, Actor: x.Name(), Target: host,
			Narrative: fmt.Sprintf("%s fades from %s.", x.Name(), host)})
	}
}

// onHit rolls the monster's on-hit effect after a blow that dealt damage.
func (e *Encounter) onHit(blow Blow) error {
	id, chance := e.mon.OnHit()
	if id == "" || e.deps.Effects == nil || blow.Swing.Damage.IsZero() {
		return nil
	}
	if !e.deps.Dice.Chance("on_hit:"+id, chance) {
		return nil
	}
	eff, err := e.deps.Effects.New(id, e.mon.Level())
	if err != nil {
		return fmt.Errorf("combat: %s on-hit: %w", e.mon.Name(), err)
	}
	refreshed, err := e.char.AddEffect(eff)
	if err != nil {
		return err
	}
	kind, verb := EventEffectApplied, "is afflicted by"
	if refreshed {
		kind, verb = EventEffectRefreshed, "is afflicted again by"
	}
	e.emit(Event{Kind: kind, Actor: e.mon.Name(), Target: e.char.Name(),
		Narrative: fmt.Sprintf("%s %s %s.", e.char.Name(), verb, eff.Name())})
	return nil
}

// playerTurn reads commands until one consumes the turn.
func (e *Encounter) playerTurn(ctx context.Context) (CommandKind, error) {
	c, m := e.char, e.mon
	for {
		line, err := e.deps.Input.NextCommand(ctx)
		if err != nil {
			return CommandUnknown, fmt.Errorf("combat: reading command: %w", err)
		}
		cmd := ParseCommand(line)
		switch cmd.Kind {
		case CommandStats:
			e.emit(Event{Kind: EventStats, Actor: c.Name(), Amount: c.Health(), Narrative: c.String()})
			e.emit(Event{Kind: EventStats, Actor: m.Name(), Amount: m.Health(), Narrative: m.String()})
		case CommandAttack:
			blow, err := Attack(c, m, e.deps.Dice)
			if err != nil {
				return CommandUnknown, err
			}
			e.emitBlow(blow)
			return cmd.Kind, nil
		case CommandFlee:
			return cmd.Kind, nil
		case CommandCast:
			done, err := e.cast(cmd.Spell)
			if err != nil {
				return CommandUnknown, err
			}
			if done {
				return cmd.Kind, nil
			}
		default:
			e.emit(Event{Kind: EventUnknownCommand, Actor: c.Name(),
				Narrative: fmt.Sprintf("Unknown command %q. Try attack, flee, stats or cast <spell>.", cmd.Raw)})
		}
	}
}

// cast resolves a spell. A refused cast reports done=false so the player is
// prompted again.
func (e *Encounter) cast(name string) (done bool, err error) {
	c := e.char
	if e.deps.Spells == nil {
		e.emit(Event{Kind: EventCastRefused, Actor: c.Name(), Narrative: "Spells are unavailable."})
		return false, nil
	}
	res, err := e.deps.Spells.Cast(c, e.mon, name)
	switch {
	case errors.Is(err, spell.ErrUnknownSpell),
		errors.Is(err, spell.ErrLevelTooLow),
		errors.Is(err, spell.ErrNotEnoughMana):
		e.emit(Event{Kind: EventCastRefused, Actor: c.Name(), Narrative: err.Error()})
		return false, nil
	case err != nil:
		return false, err
	}

	ev := Event{Kind: EventCast, Actor: c.Name(), Target: res.Target}
	switch {
	case res.Hit != nil:
		ev.Amount = res.Hit.Dealt
		ev.Narrative = fmt.Sprintf("%s casts %s on %s for %.2f damage!", c.Name(), res.Spell.Name, res.Target, res.Hit.Dealt)
	case res.Heal != nil:
		ev.Amount = res.Healed
		ev.Narrative = fmt.Sprintf("%s casts %s and heals for %s.", c.Name(), res.Spell.Name, res.Heal)
	case res.Effect != nil && res.Refreshed:
		ev.Narrative = fmt.Sprintf("%s casts %s; %s on %s is refreshed.", c.Name(), res.Spell.Name, res.Effect.Name(), res.Target)
	case res.Effect != nil:
		ev.Narrative = fmt.Sprintf("%s casts %s; %s is affected by %s.", c.Name(), res.Spell.Name, res.Target, res.Effect.Name())
	default:
		ev.Narrative = fmt.Sprintf("%s casts %s.", c.Name(), res.Spell.Name)
	}
	e.emit(ev)
	return true, nil
}

func (e *Encounter) victory(ctx context.Context) (Result, error) {
	c, m := e.char, e.mon
	c.LeaveCombat()
	e.emit(Event{Kind: EventDeath, Actor: c.Name(), Target: m.Name(),
		Narrative: fmt.Sprintf("%s has slain %s!", c.Name(), m.Name())})

	rw := &Rewards{}
	if err := e.dropLoot(rw); err != nil {
		return Result{}, err
	}
	if err := e.notifyKill(rw); err != nil {
		return Result{}, err
	}
	award, err := e.deps.Progression.AwardKill(c, m.Level(), m.XPReward())
	if err != nil {
		return Result{}, fmt.Errorf("combat: awarding kill: %w", err)
	}
	e.recordAward(rw, award)
	if err := e.deathScript(ctx, rw); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeVictory, Rewards: rw}, nil
}

func (e *Encounter) dropLoot(rw *Rewards) error {
	if e.deps.Loot == nil {
		return nil
	}
	c := e.char
	drop := e.deps.Loot.Generate(e.mon.Loot())
	if drop.Currency > 0 {
		c.AddGold(drop.Currency)
		rw.Gold = drop.Currency
		e.emit(Event{Kind: EventGold, Target: c.Name(), Amount: float64(drop.Currency),
			Narrative: fmt.Sprintf("%s loots %d gold.", c.Name(), drop.Currency)})
	}
	for _, inst := range drop.Items {
		def, ok := e.deps.Items.Get(inst.ItemDefID)
		if !ok {
			return fmt.Errorf("combat: %s drops %q: %w", e.mon.Name(), inst.ItemDefID, item.ErrUnknownItem)
		}
		err := c.Inventory().Add(def, inst.Quantity)
		if errors.Is(err, item.ErrInventoryFull) {
			rw.Lost = append(rw.Lost, inst)
			e.emit(Event{Kind: EventLootLost, Target: c.Name(), Amount: float64(inst.Quantity),
				Narrative: fmt.Sprintf("%s's bags are full; %dx %s is left behind.", c.Name(), inst.Quantity, def.Name)})
			continue
		}
		if err != nil {
			return fmt.Errorf("combat: looting %q: %w", def.ID, err)
		}
		rw.Items = append(rw.Items, inst)
		e.emit(Event{Kind: EventLoot, Target: c.Name(), Amount: float64(inst.Quantity),
			Narrative: fmt.Sprintf("%s loots %dx %s.", c.Name(), inst.Quantity, def.Name)})
	}
	return nil
}

func (e *Encounter) notifyKill(rw *Rewards) error {
	if e.deps.Quests == nil {
		return nil
	}
	c, m := e.char, e.mon
	completed := e.deps.Quests.NotifyKill(c, quest.Kill{
		MonsterGUID:     m.GUID(),
		MonsterLevel:    m.Level(),
		QuestRelationID: m.QuestRelationID(),
	})
	for _, q := range completed {
		rw.QuestsCompleted = append(rw.QuestsCompleted, q)
		e.emit(Event{Kind: EventQuestCompleted, Target: c.Name(), Amount: float64(q.XPReward),
			Narrative: fmt.Sprintf("Quest complete: %s.", q.Name)})
		award, err := e.deps.Progression.AwardExperience(c, q.XPReward)
		if err != nil {
			return fmt.Errorf("combat: awarding quest %q: %w", q.ID, err)
		}
		e.recordAward(rw, award)
	}
	return nil
}

func (e *Encounter) recordAward(rw *Rewards, a progression.Award) {
	c := e.char
	rw.Awards = append(rw.Awards, a)
	e.emit(Event{Kind: EventExperience, Target: c.Name(), Amount: float64(a.Experience),
		Narrative: fmt.Sprintf("XP awarded: %d", a.Experience)})
	if a.LevelUp != nil {
		e.emit(Event{Kind: EventLevelUp, Target: c.Name(), Amount: float64(a.LevelUp.Level),
			Narrative: fmt.Sprintf("%s has leveled up to level %d!", c.Name(), a.LevelUp.Level)})
	}
}

// deathScript runs the monster's one-time death script. A script that fails
// at runtime is logged and skipped; an unknown script name is fatal.
func (e *Encounter) deathScript(ctx context.Context, rw *Rewards) error {
	name := e.mon.DeathScript()
	if name == "" || e.deps.Scripts == nil {
		return nil
	}
	c, m := e.char, e.mon
	out, ran, err := e.deps.Scripts.RunOnce(ctx, c, name, scripting.Env{
		CharacterName:  c.Name(),
		CharacterLevel: c.Level(),
		MonsterName:    m.Name(),
		MonsterLevel:   m.Level(),
	})
	if errors.Is(err, scripting.ErrUnknownScript) {
		return fmt.Errorf("combat: %s death script: %w", m.Name(), err)
	}
	if err != nil {
		e.deps.Logger.Warn("death script failed", zap.String("script", name), zap.Error(err))
		return nil
	}
	if !ran {
		return nil
	}
	for _, msg := range out.Announcements {
		rw.Announcements = append(rw.Announcements, msg)
		e.emit(Event{Kind: EventAnnouncement, Actor: m.Name(), Target: c.Name(), Narrative: msg})
	}
	return nil
}

func (e *Encounter) defeat(ctx context.Context) (Result, error) {
	c, m := e.char, e.mon
	m.LeaveCombat()
	e.emit(Event{Kind: EventDeath, Actor: m.Name(), Target: c.Name(),
		Narrative: fmt.Sprintf("%s has slain character %s", m.Name(), c.Name())})

	yes, err := e.deps.Input.ConfirmRevive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("combat: reading revive answer: %w", err)
	}
	if !yes {
		e.emit(Event{Kind: EventRevivalDeclined, Target: c.Name(),
			Narrative: fmt.Sprintf("%s rests where they fell.", c.Name())})
		return Result{Outcome: OutcomeRevivalDeclined}, nil
	}
	c.Revive()
	e.emit(Event{Kind: EventRevived, Target: c.Name(), Amount: c.Health(),
		Narrative: fmt.Sprintf("%s is revived at %.2f health.", c.Name(), c.Health())})
	return Result{Outcome: OutcomeRevived}, nil
}

func (e *Encounter) disengage() {
	e.char.LeaveCombat()
	e.mon.LeaveCombat()
}

func (e *Encounter) emit(ev Event) {
	ev.Round = e.round
	e.deps.Events.Emit(ev)
}

func (e *Encounter) emitBlow(b Blow) {
	e.emit(Event{Kind: EventAttack, Actor: b.Attacker, Target: b.Victim, Amount: b.Hit.Dealt,
		Narrative: fmt.Sprintf("%s attacks %s for %.2f damage!", b.Attacker, b.Victim, b.Hit.Dealt)})
}
