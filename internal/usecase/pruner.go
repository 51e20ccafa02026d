package usecase

import (
	"context"
	"log/slog"
	"time"
)

type saveCleaner interface {
	CleanSaves(ctx context.Context, gameID string) (int, error)
}

type gameLister interface {
	GetGames(ctx context.Context) ([]string, error)
}

type pruneRequest struct {
	gameID string
	done   chan error
}

// Pruner deletes interior snapshots of finished games in the background,
// keeping each game's first and last save. Scheduling is fire-and-forget;
// callers that need completion listen on the returned channel.
type Pruner struct {
	logger   *slog.Logger
	saves    saveCleaner
	requests chan pruneRequest
}

func NewPruner(logger *slog.Logger, saves saveCleaner, queueSize int) *Pruner {
	return &Pruner{
		logger:   logger.With("component", "pruner"),
		saves:    saves,
		requests: make(chan pruneRequest, queueSize),
	}
}

// Schedule enqueues a prune of gameID. The returned channel receives the
// prune's outcome exactly once and is then closed; dropping it is fine.
func (that *Pruner) Schedule(gameID string) <-chan error {
	done := make(chan error, 1)
	that.requests <- pruneRequest{gameID: gameID, done: done}

	return done
}

// Run drains the queue until ctx is canceled. Prune failures are logged and
// reported on the request's channel, never fatal.
func (that *Pruner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-that.requests:
			deleted, err := that.saves.CleanSaves(ctx, request.gameID)
			if err != nil {
				that.logger.Error("failed to prune saves", "game_id", request.gameID, "error", err)
			} else {
				that.logger.Info("pruned saves", "game_id", request.gameID, "deleted", deleted)
			}

			request.done <- err
			close(request.done)
		}
	}
}

// Sweep periodically schedules a prune for every game with stored saves.
// Pruning an already pruned game deletes nothing, so sweeping is safe to
// repeat.
func (that *Pruner) Sweep(ctx context.Context, games gameLister, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gameIDs, err := games.GetGames(ctx)
			if err != nil {
				that.logger.Error("failed to list games for sweep", "error", err)
				continue
			}

			for _, gameID := range gameIDs {
				that.Schedule(gameID)
			}
		}
	}
}
