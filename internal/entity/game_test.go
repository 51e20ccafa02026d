package entity

import (
	"testing"

	"github.com/redplanetgames/terraforming-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// When: checking if the game is finished
		isFinished := game.IsFinished()

		// Then: it should return true
		assert.True(t, isFinished)
	})

	t.Run("IsOngoing returns true when game status is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// When: checking if the game is ongoing
		isOngoing := game.IsOngoing()

		// Then: it should return true
		assert.True(t, isOngoing)
	})

	t.Run("NewGame starts waiting with an empty board", func(t *testing.T) {
		// Given: a fresh game
		game := NewGame("123", PublicType)

		// Then: it is waiting, on generation 1, with every space empty
		assert.True(t, game.IsWaiting())
		assert.Equal(t, 1, game.Generation)
		require.Len(t, game.Board, BoardSize)
		for _, tile := range game.Board {
			assert.Equal(t, SpaceEmpty, tile.Type)
		}
	})
}

func TestGame_ConfirmOngoingState(t *testing.T) {
	t.Run("Returns nil when game is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// When: checking if the game is active
		err := game.ConfirmOngoingState()

		// Then: it should return nil error
		assert.NoError(t, err)
	})

	t.Run("Returns ErrGameIsNotStarted when game is waiting", func(t *testing.T) {
		// Given: a game with StatusWaiting
		game := &Game{Status: StatusWaiting}

		// When: checking if the game is active
		err := game.ConfirmOngoingState()

		// Then: it should return ErrGameIsNotStarted
		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when game is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// When: checking if the game is active
		err := game.ConfirmOngoingState()

		// Then: it should return ErrGameFinished
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}

func TestGame_AddPlayer(t *testing.T) {
	t.Run("Seats a player in a waiting game", func(t *testing.T) {
		// Given: a waiting game and a player
		game := NewGame("123", PublicType)
		player := &Player{ID: "p1"}

		// When: adding the player
		err := game.AddPlayer(player)

		// Then: the player is seated and bound to the game
		require.NoError(t, err)
		assert.Equal(t, game.ID, player.GameID)
		assert.Same(t, player, game.PlayerByID("p1"))
	})

	t.Run("Returns ErrGameIsFull when the table is full", func(t *testing.T) {
		// Given: a waiting game with the maximum number of players
		game := NewGame("123", PublicType)
		for i := 0; i < MaxPlayers; i++ {
			require.NoError(t, game.AddPlayer(&Player{ID: string(rune('a' + i))}))
		}

		// When: adding one more player
		err := game.AddPlayer(&Player{ID: "late"})

		// Then: it should return ErrGameIsFull
		assert.ErrorIs(t, err, apperror.ErrGameIsFull)
	})

	t.Run("Returns ErrGameAlreadyStarted for an ongoing game", func(t *testing.T) {
		// Given: an ongoing game
		game := NewGame("123", PublicType)
		require.NoError(t, game.AddPlayer(&Player{ID: "p1"}))
		require.NoError(t, game.Start())

		// When: adding a player
		err := game.AddPlayer(&Player{ID: "p2"})

		// Then: it should return ErrGameAlreadyStarted
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
	})
}

func TestGame_RaiseOxygen(t *testing.T) {
	t.Run("Raises oxygen and grants a rating", func(t *testing.T) {
		// Given: an ongoing game without a rating tax
		game := NewGame("123", PublicType)
		player := &Player{ID: "p1"}
		require.NoError(t, game.AddPlayer(player))

		// When: raising oxygen
		err := game.RaiseOxygen(player)

		// Then: oxygen and the player's rating both go up one step
		require.NoError(t, err)
		assert.Equal(t, 1, game.OxygenLevel)
		assert.Equal(t, 1, player.Rating)
	})

	t.Run("Charges the rating tax when one rules", func(t *testing.T) {
		// Given: a game taxing 3 megacredits per rating step
		game := NewGame("123", PublicType)
		game.RatingTax = 3
		player := &Player{ID: "p1", Megacredits: 10}
		require.NoError(t, game.AddPlayer(player))

		// When: raising oxygen
		err := game.RaiseOxygen(player)

		// Then: the tax is paid and the step still happens
		require.NoError(t, err)
		assert.Equal(t, 7, player.Megacredits)
		assert.Equal(t, 1, game.OxygenLevel)
		assert.Equal(t, 1, player.Rating)
	})

	t.Run("Returns ErrCannotAffordTax when the player is broke", func(t *testing.T) {
		// Given: a taxed game and a player with too few megacredits
		game := NewGame("123", PublicType)
		game.RatingTax = 3
		player := &Player{ID: "p1", Megacredits: 2}
		require.NoError(t, game.AddPlayer(player))

		// When: raising oxygen
		err := game.RaiseOxygen(player)

		// Then: nothing changes
		assert.ErrorIs(t, err, apperror.ErrCannotAffordTax)
		assert.Equal(t, 0, game.OxygenLevel)
		assert.Equal(t, 2, player.Megacredits)
	})

	t.Run("Is a no-op at the oxygen ceiling", func(t *testing.T) {
		// Given: a game with oxygen at the ceiling and a taxing policy
		game := NewGame("123", PublicType)
		game.OxygenLevel = MaxOxygenLevel
		game.RatingTax = 3
		player := &Player{ID: "p1"}
		require.NoError(t, game.AddPlayer(player))

		// When: raising oxygen
		err := game.RaiseOxygen(player)

		// Then: no step, no rating, no tax
		require.NoError(t, err)
		assert.Equal(t, MaxOxygenLevel, game.OxygenLevel)
		assert.Equal(t, 0, player.Rating)
	})
}

func TestGame_PlaceTile(t *testing.T) {
	t.Run("Places a tile on an empty space", func(t *testing.T) {
		// Given: a game with a seated player
		game := NewGame("123", PublicType)
		require.NoError(t, game.AddPlayer(&Player{ID: "p1"}))

		// When: placing a greenery
		err := game.PlaceTile("p1", 7, TileGreenery)

		// Then: the space carries the tile and its owner
		require.NoError(t, err)
		assert.Equal(t, TileGreenery, game.Board[7].Type)
		assert.Equal(t, "p1", game.Board[7].OwnerID)
	})

	t.Run("Returns ErrSpaceOccupied for a taken space", func(t *testing.T) {
		// Given: a game with a tile already placed
		game := NewGame("123", PublicType)
		require.NoError(t, game.AddPlayer(&Player{ID: "p1"}))
		require.NoError(t, game.PlaceTile("p1", 7, TileCity))

		// When: placing on the same space
		err := game.PlaceTile("p1", 7, TileGreenery)

		// Then: it should return ErrSpaceOccupied
		assert.ErrorIs(t, err, apperror.ErrSpaceOccupied)
	})

	t.Run("Returns ErrInvalidPosition for an off-board space", func(t *testing.T) {
		// Given: a game with a seated player
		game := NewGame("123", PublicType)
		require.NoError(t, game.AddPlayer(&Player{ID: "p1"}))

		// When: placing off-board
		err := game.PlaceTile("p1", BoardSize, TileGreenery)

		// Then: it should return ErrInvalidPosition
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})

	t.Run("Returns ErrPlayerNotInGame for a stranger", func(t *testing.T) {
		// Given: a game without the acting player
		game := NewGame("123", PublicType)

		// When: a stranger places a tile
		err := game.PlaceTile("ghost", 0, TileGreenery)

		// Then: it should return ErrPlayerNotInGame
		assert.ErrorIs(t, err, ErrPlayerNotInGame)
	})
}

func TestGame_Neighbors(t *testing.T) {
	t.Run("Corner spaces have two neighbors", func(t *testing.T) {
		game := NewGame("123", PublicType)

		assert.ElementsMatch(t, []int{1, BoardWidth}, game.Neighbors(0))
	})

	t.Run("Interior spaces have four neighbors", func(t *testing.T) {
		game := NewGame("123", PublicType)
		position := BoardWidth + 1

		assert.ElementsMatch(t, []int{1, position - 1, position + 1, position + BoardWidth}, game.Neighbors(position))
	})

	t.Run("Off-board positions have no neighbors", func(t *testing.T) {
		game := NewGame("123", PublicType)

		assert.Empty(t, game.Neighbors(-1))
		assert.Empty(t, game.Neighbors(BoardSize))
	})
}
