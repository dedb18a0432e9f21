package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/embermud/ember/internal/config"
	"github.com/embermud/ember/internal/game"
	"github.com/embermud/ember/internal/logger"
	"github.com/embermud/ember/internal/server"
	"github.com/embermud/ember/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting EmberMUD",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"tick_interval", cfg.TickInterval)

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	data, err := storage.LoadWorldData(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load world data", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("World data loaded",
		"rooms", len(data.Rooms),
		"items", len(data.Items),
		"monsters", len(data.Monsters),
		"quests", len(data.Quests),
		"recipes", len(data.Recipes))

	g, err := game.New(data, store, log, nil)
	if err != nil {
		log.Error("Failed to build world", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go g.RunLoop(ctx, cfg.TickInterval)
	go g.RunAutosave(ctx, cfg.AutosaveInterval)

	srv := server.New(cfg, g, store, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Server is shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
		}
	}

	// Stop the loops and the accept loop, then flush dirty players.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	for _, p := range g.SnapshotDirty() {
		if err := store.SavePlayer(shutdownCtx, p); err != nil {
			log.Error("Shutdown save failed", "player_id", p.ID, "error", err)
		}
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	log.Info("Server exited")
}
