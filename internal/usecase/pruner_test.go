package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCleanFailed = errors.New("clean failed")

type fakeSaveCleaner struct {
	mu      sync.Mutex
	cleaned []string
	deleted int
	err     error
}

func (that *fakeSaveCleaner) CleanSaves(_ context.Context, gameID string) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cleaned = append(that.cleaned, gameID)

	return that.deleted, that.err
}

func (that *fakeSaveCleaner) cleanedGames() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.cleaned...)
}

type fakeGameLister struct {
	gameIDs []string
}

func (that *fakeGameLister) GetGames(_ context.Context) ([]string, error) {
	return that.gameIDs, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestPruner_Schedule(t *testing.T) {
	t.Run("Prunes a scheduled game and reports completion", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Given: a running pruner
		cleaner := &fakeSaveCleaner{deleted: 2}
		pruner := NewPruner(testLogger(), cleaner, 4)
		go pruner.Run(ctx)

		// When: scheduling a prune and awaiting its completion
		err := <-pruner.Schedule("game-1")

		// Then: the prune ran without error
		require.NoError(t, err)
		assert.Equal(t, []string{"game-1"}, cleaner.cleanedGames())
	})

	t.Run("Reports a prune failure on the completion channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Given: a running pruner whose store fails
		cleaner := &fakeSaveCleaner{err: errCleanFailed}
		pruner := NewPruner(testLogger(), cleaner, 4)
		go pruner.Run(ctx)

		// When: scheduling a prune and awaiting its completion
		err := <-pruner.Schedule("game-1")

		// Then: the failure surfaces on the channel
		assert.ErrorIs(t, err, errCleanFailed)
	})

	t.Run("Callers may drop the completion channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Given: a running pruner
		cleaner := &fakeSaveCleaner{}
		pruner := NewPruner(testLogger(), cleaner, 4)
		go pruner.Run(ctx)

		// When: scheduling without listening
		pruner.Schedule("game-1")

		// Then: the prune still runs
		require.Eventually(t, func() bool {
			return len(cleaner.cleanedGames()) == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestPruner_Sweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given: a running pruner sweeping over two stored games
	cleaner := &fakeSaveCleaner{}
	pruner := NewPruner(testLogger(), cleaner, 4)
	go pruner.Run(ctx)
	go pruner.Sweep(ctx, &fakeGameLister{gameIDs: []string{"game-a", "game-b"}}, 10*time.Millisecond)

	// Then: both games get pruned
	require.Eventually(t, func() bool {
		cleaned := cleaner.cleanedGames()
		seen := make(map[string]bool, len(cleaned))
		for _, gameID := range cleaned {
			seen[gameID] = true
		}
		return seen["game-a"] && seen["game-b"]
	}, time.Second, 10*time.Millisecond)
}
