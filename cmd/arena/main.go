// Package main provides the arena binary: it runs a 3-vs-3 critter battle either
// as a seeded AI-vs-AI simulation or interactively against the opponent policy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/critters/internal/arena"
	"github.com/cory-johannsen/critters/internal/config"
	"github.com/cory-johannsen/critters/internal/game/ai"
	"github.com/cory-johannsen/critters/internal/game/combat"
	"github.com/cory-johannsen/critters/internal/game/dice"
	"github.com/cory-johannsen/critters/internal/game/ruleset"
	"github.com/cory-johannsen/critters/internal/observability"
	"github.com/cory-johannsen/critters/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	attackersPath := flag.String("attackers", "content/rosters/selva.yaml", "attacking roster YAML")
	defendersPath := flag.String("defenders", "content/rosters/volcan.yaml", "defending roster YAML")
	mode := flag.String("mode", "simulate", "simulate, play or list")
	playerID := flag.String("player", "player-1", "identity of the human player in play and list modes")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := ruleset.LoadDirectory(cfg.Battle.CatalogDir)
	if err != nil {
		logger.Fatal("loading ability catalog", zap.Error(err))
	}
	logger.Info("ability catalog loaded",
		zap.String("dir", cfg.Battle.CatalogDir),
		zap.Int("abilities", catalog.Len()),
	)

	var src dice.Source
	if cfg.Battle.Seed != 0 {
		src = dice.NewSeededSource(cfg.Battle.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	src = dice.NewLoggedSource(src, logger.Named("dice"))

	var store arena.Store = arena.NewMemoryStore()
	var battles *postgres.BattleRepository
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database not healthy", zap.Error(err))
		}
		battles = pool.Battles()
		store = battles
	}

	engine := combat.NewEngine(catalog)
	mgr := arena.NewManager(engine, store,
		arena.WithPolicy(ai.NewPolicy(catalog, ai.WithPreferred(cfg.Battle.PreferredAbility))),
		arena.WithSource(src),
		arena.WithLogger(logger.Named("arena")),
		arena.WithMaxAITurns(cfg.Battle.MaxAITurns),
	)

	if *mode == "list" {
		if battles == nil {
			logger.Fatal("list mode requires storage.driver postgres")
		}
		list, err := battles.ListByPlayer(ctx, *playerID)
		if err != nil {
			logger.Fatal("listing battles", zap.Error(err))
		}
		for _, b := range list {
			winner := "-"
			if b.Winner != nil {
				winner = *b.Winner
			}
			fmt.Fprintf(os.Stdout, "%s %-9s round=%d winner=%s updated=%s\n",
				b.ID, b.Status, b.Round, winner, b.UpdatedAt.Format(time.RFC3339))
		}
		return
	}

	attackers, err := ruleset.LoadRoster(*attackersPath)
	if err != nil {
		logger.Fatal("loading attacking roster", zap.Error(err))
	}
	defenders, err := ruleset.LoadRoster(*defendersPath)
	if err != nil {
		logger.Fatal("loading defending roster", zap.Error(err))
	}

	switch *mode {
	case "simulate":
		replay, err := mgr.Simulate(ctx, attackers.Members, defenders.Members, cfg.Battle.MaxSimulatedTurns)
		if err != nil && !errors.Is(err, arena.ErrTurnLimit) {
			logger.Fatal("simulating battle", zap.Error(err))
		}
		if replay != nil {
			printFrames(os.Stdout, replay.Frames)
			printState(os.Stdout, replay.State)
			fmt.Fprintf(os.Stdout, "%s vs %s: winner=%q turns=%d [%s]\n",
				attackers.Name, defenders.Name, replay.Winner(), len(replay.Frames), time.Since(start))
		}
		if err != nil {
			logger.Warn("simulation stopped early", zap.Error(err))
		}
	case "play":
		if err := play(ctx, mgr, catalog, *playerID, attackers.Members, defenders.Members, os.Stdin, os.Stdout); err != nil {
			logger.Fatal("playing battle", zap.Error(err))
		}
	default:
		logger.Fatal("invalid mode, must be simulate, play or list", zap.String("mode", *mode))
	}
}
