// Package main provides the console dungeon crawler binary.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/config"
	"github.com/cory-johannsen/minidungeon/internal/console"
	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
	"github.com/cory-johannsen/minidungeon/internal/observability"
	"github.com/cory-johannsen/minidungeon/internal/report"
	"github.com/cory-johannsen/minidungeon/internal/scripting"
	"github.com/cory-johannsen/minidungeon/internal/server"
	"github.com/cory-johannsen/minidungeon/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	player := flag.String("player", "hero", "character name; also keys the saved run")
	seed := flag.Uint64("seed", 0, "seed for a reproducible game; 0 uses crypto randomness")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	scriptLimit := flag.Int("script-limit", 0, "Lua instruction limit per hook call; 0 uses the default")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	// Content
	itemDefs, err := inventory.LoadItems(cfg.Game.ItemsDir)
	if err != nil {
		logger.Fatal("loading items", zap.Error(err))
	}
	items, err := inventory.NewRegistryFrom(itemDefs)
	if err != nil {
		logger.Fatal("building item registry", zap.Error(err))
	}
	templates, err := monster.LoadTemplates(cfg.Game.MonstersDir)
	if err != nil {
		logger.Fatal("loading monsters", zap.Error(err))
	}

	var scaler monster.HealthScaler = monster.NewPercentScaler(templates)
	if cfg.Game.ScriptDir != "" {
		scripts := scripting.NewManager(roller, logger, *scriptLimit)
		defer scripts.Close()
		if err := scripts.LoadTree(cfg.Game.ScriptDir); err != nil {
			logger.Fatal("loading scripts", zap.String("dir", cfg.Game.ScriptDir), zap.Error(err))
		}
		scaler = monster.NewHookScaler(scaler, scripts, logger)
	}
	monsters, err := monster.NewRegistry(templates, roller, scaler, logger)
	if err != nil {
		logger.Fatal("building monster registry", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", len(itemDefs)),
		zap.Int("monsters", len(templates)),
		zap.Bool("scripted", cfg.Game.ScriptDir != ""),
	)

	// Persistence
	ctx := context.Background()
	var store console.RunStore
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = pool.Runs()
	}

	var reports console.ReportWriter
	if cfg.Report.Dir != "" {
		reports = report.NewWriter(cfg.Report.Dir)
	}

	game, err := console.New(console.Options{
		Player: *player,
		Battle: battle.Config{
			BossFloor: uint8(cfg.Game.BossFloor),
			FleeOdds:  cfg.Game.FleeOdds,
			Debug:     battle.DebugCapabilities{InstantKill: cfg.Game.GodMode},
		},
		MaxItemStock: cfg.Game.MaxItemStock,
		SalePercent:  cfg.Game.SalePercent,
		Color:        !*noColor,
	}, items, monsters, roller, store, reports, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Fatal("creating game", zap.Error(err))
	}
	if err := game.Load(ctx); err != nil {
		logger.Fatal("restoring run", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("console", game)

	logger.Info("game ready",
		zap.String("player", *player),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("game exited with error", zap.Error(err))
		os.Exit(1)
	}
}
