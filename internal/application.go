package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redplanetgames/terraforming-backend/internal/config"
	"github.com/redplanetgames/terraforming-backend/internal/repository"
	"github.com/redplanetgames/terraforming-backend/internal/repository/storage"
	"github.com/redplanetgames/terraforming-backend/internal/usecase"
	"github.com/redplanetgames/terraforming-backend/transport/rest"
)

// RunApp - runs the save-store service: the snapshot database, the prune
// worker and the read-only HTTP surface over stored saves. Live game state
// is owned by the embedding game server, not this process.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	saveRepo := repository.NewSaveRepository(sqliteStorage.Connection)

	pruner := usecase.NewPruner(logger, saveRepo, conf.PruneQueueSize)
	go pruner.Run(ctx)
	go pruner.Sweep(ctx, saveRepo, conf.PruneInterval)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, rest.NewSavesHandler(logger, saveRepo)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
