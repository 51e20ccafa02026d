package usecase

import (
	"testing"
	"time"

	"github.com/redplanetgames/terraforming-backend/internal/entity"
	"github.com/redplanetgames/terraforming-backend/internal/repository"
	"github.com/redplanetgames/terraforming-backend/internal/service"
	"github.com/redplanetgames/terraforming-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full stack against real storage: live state in redis, snapshots in sqlite,
// prune running in the background.
func TestGameFlow_SaveAndPrune(t *testing.T) {
	ctx, st := suite.New(t)
	_, saves := suite.NewSaves(t)

	gameRepo := repository.NewGameRepository(st.Storage)
	playerRepo := repository.NewPlayerRepository(st.Storage)
	saveRepo := repository.NewSaveRepository(saves.Storage.Connection)

	pruner := NewPruner(st.Logger, saveRepo, 4)
	go pruner.Run(ctx)

	manager := NewGameManager(st.Logger, service.NewPlayerService(playerRepo), service.NewGameService(gameRepo), saveRepo, pruner)

	// Given: a one-player game created and started, with two conversions
	game, err := manager.CreateGame(ctx, "Ada", entity.PrivateType)
	require.NoError(t, err)

	stored, err := gameRepo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	stored.PlayerByID(game.Players[0].ID).Plants = entity.PlantCost * 2
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, stored))

	_, err = manager.StartGame(ctx, game.ID)
	require.NoError(t, err)

	playerID := game.Players[0].ID
	_, err = manager.ConvertPlants(ctx, playerID, 7)
	require.NoError(t, err)
	_, err = manager.ConvertPlants(ctx, playerID, 8)
	require.NoError(t, err)

	// Then: the snapshots are {0,1,2,3}
	saveIDs, err := saveRepo.GetSaveIDs(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, saveIDs)

	// When: finishing the game
	finished, err := manager.FinishGame(ctx, game.ID)
	require.NoError(t, err)
	require.True(t, finished.IsFinished())

	// Then: the live state is gone
	_, err = gameRepo.GetByID(ctx, game.ID)
	assert.ErrorIs(t, err, repository.ErrGameNotFound)
	_, err = playerRepo.GetByID(ctx, playerID)
	assert.ErrorIs(t, err, repository.ErrPlayerNotFound)

	// And: the background prune eventually leaves only the bounds
	require.Eventually(t, func() bool {
		saveIDs, err = saveRepo.GetSaveIDs(ctx, game.ID)
		return err == nil && len(saveIDs) == 2
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, []int{0, 4}, saveIDs)

	// And: the summary survives for the games listing
	gameIDs, err := saveRepo.GetGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{game.ID}, gameIDs)

	players, err := saveRepo.GetPlayerCount(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, players)

	// And: the first snapshot still shows the untouched board
	first, err := saveRepo.GetGameVersion(ctx, game.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.SpaceEmpty, first.Board[7].Type)
}
