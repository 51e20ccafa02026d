package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redplanetgames/terraforming-backend/internal/entity"
	"github.com/redplanetgames/terraforming-backend/internal/repository"
	"github.com/redplanetgames/terraforming-backend/internal/rules"
)

type playerService interface {
	CreatePlayer(ctx context.Context, name string) (*entity.Player, error)
	UpdatePlayer(ctx context.Context, player *entity.Player) error
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

type gameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetPublicGame(ctx context.Context) (*entity.Game, error)
}

type saveStore interface {
	SaveGame(ctx context.Context, game *entity.Game) (int, error)
	SaveGameResults(ctx context.Context, game *entity.Game) error
}

type pruneScheduler interface {
	Schedule(gameID string) <-chan error
}

// GameManager is the single mutation path for a game: every state change it
// applies is persisted to the live store and appended to the save store as
// the game's next snapshot.
type GameManager struct {
	logger *slog.Logger

	playerService playerService
	gameService   gameService
	saveStore     saveStore
	pruner        pruneScheduler

	convertPlants rules.ConvertPlants
}

func NewGameManager(logger *slog.Logger, playerService playerService, gameService gameService, saveStore saveStore, pruner pruneScheduler) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerService: playerService,
		gameService:   gameService,
		saveStore:     saveStore,
		pruner:        pruner,
	}
}

// CreateGame seats a fresh player in a new game and appends snapshot 0.
func (that *GameManager) CreateGame(ctx context.Context, playerName, gameType string) (*entity.Game, error) {
	player, err := that.playerService.CreatePlayer(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	game, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.persist(ctx, game); err != nil {
		return nil, err
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if err = game.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err = that.persist(ctx, game); err != nil {
		return nil, err
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

// JoinPublicGame seats the player at any public game still waiting for
// players, falling back to a fresh one when none is open.
func (that *GameManager) JoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetPublicGame(ctx)
	if errors.Is(err, repository.ErrGameNotFound) {
		player, playerErr := that.playerService.GetPlayerByID(ctx, playerID)
		if playerErr != nil {
			return nil, fmt.Errorf("failed to get player by id: %w", playerErr)
		}

		game, err = that.gameService.CreateGame(ctx, player, entity.PublicType)
		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}

		if err = that.persist(ctx, game); err != nil {
			return nil, err
		}

		if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}

		return game, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get public game: %w", err)
	}

	return that.JoinGame(ctx, game.ID, playerID)
}

func (that *GameManager) StartGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.Start(); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if err = that.persist(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// GreeneryPlacements lists the positions the player may currently convert
// plants onto. An empty list means the action is unavailable to them.
func (that *GameManager) GreeneryPlacements(ctx context.Context, playerID string) ([]int, error) {
	game, player, err := that.actingPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !that.convertPlants.CanAct(game, player) {
		return nil, nil
	}

	return that.convertPlants.ValidPlacements(game, player), nil
}

// ConvertPlants performs the standard action for playerID at position and
// appends the resulting snapshot.
func (that *GameManager) ConvertPlants(ctx context.Context, playerID string, position int) (*entity.Game, error) {
	game, player, err := that.actingPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	if err = that.convertPlants.Act(game, player, position); err != nil {
		return nil, fmt.Errorf("failed to convert plants: %w", err)
	}

	if err = that.persist(ctx, game); err != nil {
		return nil, err
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

// FinishGame records the final snapshot and results, drops the live state
// and schedules a prune of the interior snapshots. The prune runs in the
// background; its failure is logged, not returned.
func (that *GameManager) FinishGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	game.Finish()

	if _, err = that.saveStore.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	if err = that.saveStore.SaveGameResults(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game results: %w", err)
	}

	if err = that.gameService.DeleteGame(ctx, gameID); err != nil {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}

	for _, player := range game.Players {
		if err = that.playerService.DeletePlayer(ctx, player.ID); err != nil {
			that.logger.Error("failed to delete player", "player_id", player.ID, "error", err)
		}
	}

	that.pruner.Schedule(gameID)

	that.logger.Info("game finished", "game_id", gameID, "last_save_id", game.LastSaveID)

	return game, nil
}

func (that *GameManager) actingPlayer(ctx context.Context, playerID string) (*entity.Game, *entity.Player, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	// mutate the seated copy so the snapshot carries the change
	seated := game.PlayerByID(playerID)
	if seated == nil {
		return nil, nil, fmt.Errorf("%w: %s", entity.ErrPlayerNotInGame, playerID)
	}

	return game, seated, nil
}

func (that *GameManager) persist(ctx context.Context, game *entity.Game) error {
	saveID, err := that.saveStore.SaveGame(ctx, game)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	that.logger.Debug("game snapshot appended", "game_id", game.ID, "save_id", saveID)

	return nil
}
