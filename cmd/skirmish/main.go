// Package main runs a single-player skirmish session in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/loot"
	"github.com/cory-johannsen/skirmish/internal/game/monster"
	"github.com/cory-johannsen/skirmish/internal/game/progression"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/game/spell"
	"github.com/cory-johannsen/skirmish/internal/lifecycle"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	name := flag.String("name", "", "character name (overrides game.character_name)")
	color := flag.Bool("color", true, "colorize terminal output")
	seedGrowth := flag.Bool("seed-growth", false, "copy the YAML level table into the sqlite growth store before playing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *name != "" {
		cfg.Game.CharacterName = *name
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	lc := lifecycle.New(logger)

	var src dice.Source
	if cfg.Game.Seed != 0 {
		src = dice.NewSeededSource(cfg.Game.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	c := loadContent(cfg, roller, logger)

	growth := openGrowth(ctx, cfg, *seedGrowth, lc, logger)
	prog := progression.NewEngine(growth, logger)

	store := openStore(ctx, cfg, lc, logger)

	term := console.New(os.Stdin, os.Stdout, *color)
	deps := combat.Deps{
		Input:       term,
		Events:      console.NewRenderer(term),
		Dice:        roller,
		Progression: prog,
		Logger:      logger,
		Spells:      spell.NewCaster(c.spells, c.effects, roller, logger),
		Effects:     c.effects,
		Loot:        loot.NewGenerator(roller, logger),
		Items:       c.items,
		Quests:      quest.NewTracker(logger),
		Scripts:     c.scripts,
	}

	char, _, err := session.LoadOrCreate(ctx, store, session.Catalog{Items: c.items, Quests: c.quests, Spells: c.spells}, prog, session.Starting{
		Name:      cfg.Game.CharacterName,
		Health:    cfg.Game.StartingHealth,
		Mana:      cfg.Game.StartingMana,
		Spells:    cfg.Game.StartingSpells,
		Quests:    cfg.Game.StartingQuests,
		Equipment: cfg.Game.StartingEquipment,
	}, logger)
	if err != nil {
		logger.Fatal("preparing character", zap.Error(err))
	}

	sess, err := session.New(char, c.bestiary, deps, store, term)
	if err != nil {
		logger.Fatal("starting session", zap.Error(err))
	}
	logger.Info("session ready",
		zap.String("character", char.Name()),
		zap.Int("level", char.Level()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := lc.Run(ctx, sess.Play); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "Farewell, %s.\n", char.Name())
}

type content struct {
	effects  *effect.Registry
	items    *item.Registry
	spells   *spell.Registry
	quests   *quest.Registry
	bestiary *monster.Bestiary
	scripts  *scripting.Manager
}

func loadContent(cfg config.Config, roller *dice.Roller, logger *zap.Logger) content {
	loadStart := time.Now()
	var c content
	var err error

	if c.effects, err = effect.LoadDirectory(cfg.Content.EffectsDir()); err != nil {
		logger.Fatal("loading effect definitions", zap.Error(err))
	}
	if c.items, err = item.LoadDirectory(cfg.Content.ItemsDir()); err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	if c.spells, err = spell.LoadDirectory(cfg.Content.SpellsDir(), c.effects); err != nil {
		logger.Fatal("loading spell definitions", zap.Error(err))
	}
	if c.quests, err = quest.LoadDirectory(cfg.Content.QuestsDir()); err != nil {
		logger.Fatal("loading quest definitions", zap.Error(err))
	}

	templates, err := monster.LoadTemplates(cfg.Content.MonstersDir())
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	if c.bestiary, err = monster.NewBestiary(templates); err != nil {
		logger.Fatal("indexing monster templates", zap.Error(err))
	}
	if err := c.bestiary.CheckReferences(c.items, c.effects); err != nil {
		logger.Fatal("checking monster references", zap.Error(err))
	}

	c.scripts = scripting.NewManager(roller, logger)
	if err := c.scripts.LoadDirectory(cfg.Content.ScriptsDir(), cfg.Game.ScriptInstructionLimit); err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}
	for _, id := range c.bestiary.IDs() {
		t, _ := c.bestiary.Template(id)
		if t.DeathScript != "" && !c.scripts.Has(t.DeathScript) {
			logger.Fatal("monster references unknown death script",
				zap.String("monster", id),
				zap.String("script", t.DeathScript),
			)
		}
	}

	logger.Info("content loaded",
		zap.Int("effects", len(c.effects.All())),
		zap.Int("items", len(c.items.All())),
		zap.Int("spells", len(c.spells.All())),
		zap.Int("quests", len(c.quests.All())),
		zap.Int("monsters", len(templates)),
		zap.Int("scripts", len(c.scripts.Names())),
		zap.Duration("elapsed", time.Since(loadStart)),
	)
	return c
}

func openGrowth(ctx context.Context, cfg config.Config, seed bool, lc *lifecycle.Lifecycle, logger *zap.Logger) progression.GrowthTable {
	if cfg.Storage.Growth == config.BackendYAML {
		tbl, err := progression.LoadTable(cfg.Content.LevelsFile())
		if err != nil {
			logger.Fatal("loading level table", zap.Error(err))
		}
		return tbl
	}

	store, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Fatal("opening growth database", zap.Error(err))
	}
	lc.Add("growth database", store)
	if seed {
		tbl, err := progression.LoadTable(cfg.Content.LevelsFile())
		if err != nil {
			logger.Fatal("loading level table", zap.Error(err))
		}
		if err := store.Seed(ctx, tbl.Levels()); err != nil {
			logger.Fatal("seeding growth database", zap.Error(err))
		}
		logger.Info("growth database seeded", zap.Int("levels", len(tbl.Levels())))
	}
	return store
}

func openStore(ctx context.Context, cfg config.Config, lc *lifecycle.Lifecycle, logger *zap.Logger) session.Store {
	if cfg.Storage.Characters == config.BackendMemory {
		return session.NewMemoryStore()
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	lc.Add("database", lifecycle.CloseFunc(func() error {
		pool.Close()
		return nil
	}))
	return pgStore{store: postgres.NewStore(pool)}
}
