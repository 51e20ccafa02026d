package entity

import (
	"errors"
	"fmt"

	"github.com/redplanetgames/terraforming-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PublicType  = "public"
	PrivateType = "private"
)

const (
	// MaxOxygenLevel is the ceiling of the global oxygen track. Raising
	// oxygen past it is a no-op and grants no rating.
	MaxOxygenLevel = 14

	// PlantCost is how many plants a greenery conversion consumes.
	PlantCost = 8

	MaxPlayers = 5
)

const (
	BoardWidth  = 9
	BoardHeight = 5
	BoardSize   = BoardWidth * BoardHeight
)

const (
	SpaceEmpty   = ""
	TileGreenery = "greenery"
	TileOcean    = "ocean"
	TileCity     = "city"
)

var (
	ErrInvalidPosition   = errors.New("invalid board position")
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrPlayerNotInGame   = errors.New("player is not in this game")
)

type Tile struct {
	Position int    `json:"position"`
	Type     string `json:"type,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
}

type Game struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Generation  int       `json:"generation"`
	OxygenLevel int       `json:"oxygen_level"`
	RatingTax   int       `json:"rating_tax,omitempty"`
	Board       []Tile    `json:"board"`
	Players     []*Player `json:"players,omitempty"`
	LastSaveID  int       `json:"last_save_id"`
	Type        string    `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	board := make([]Tile, BoardSize)
	for i := range board {
		board[i] = Tile{Position: i}
	}

	return &Game{
		ID:         id,
		Status:     StatusWaiting,
		Generation: 1,
		Board:      board,
		Type:       gameType,
	}
}

func (that *Game) AddPlayer(player *Player) error {
	if err := that.ConfirmWaitingState(); err != nil {
		return err
	}

	if len(that.Players) >= MaxPlayers {
		return apperror.ErrGameIsFull
	}

	player.GameID = that.ID
	that.Players = append(that.Players, player)

	return nil
}

func (that *Game) Start() error {
	if err := that.ConfirmWaitingState(); err != nil {
		return err
	}

	that.Status = StatusOngoing

	return nil
}

func (that *Game) Finish() {
	that.Status = StatusFinished
}

// RaiseOxygen bumps the global oxygen track one step on behalf of player.
// At the ceiling nothing happens: no step, no rating, no tax. Below it the
// player gains a terraform rating and pays the rating tax when one rules.
func (that *Game) RaiseOxygen(player *Player) error {
	if that.OxygenLevel >= MaxOxygenLevel {
		return nil
	}

	if that.RatingTax > 0 {
		if player.Megacredits < that.RatingTax {
			return apperror.ErrCannotAffordTax
		}
		player.Megacredits -= that.RatingTax
	}

	that.OxygenLevel++
	player.Rating++

	return nil
}

func (that *Game) PlaceTile(playerID string, position int, tileType string) error {
	if position < 0 || position >= len(that.Board) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	if that.PlayerByID(playerID) == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotInGame, playerID)
	}

	if that.Board[position].Type != SpaceEmpty {
		return apperror.ErrSpaceOccupied
	}

	that.Board[position].Type = tileType
	that.Board[position].OwnerID = playerID

	return nil
}

// Neighbors returns the orthogonally adjacent positions of position on the
// board grid.
func (that *Game) Neighbors(position int) []int {
	if position < 0 || position >= BoardSize {
		return nil
	}

	row, col := position/BoardWidth, position%BoardWidth

	neighbors := make([]int, 0, 4)
	if row > 0 {
		neighbors = append(neighbors, position-BoardWidth)
	}
	if row < BoardHeight-1 {
		neighbors = append(neighbors, position+BoardWidth)
	}
	if col > 0 {
		neighbors = append(neighbors, position-1)
	}
	if col < BoardWidth-1 {
		neighbors = append(neighbors, position+1)
	}

	return neighbors
}

func (that *Game) OwnsTiles(playerID string) bool {
	for _, tile := range that.Board {
		if tile.OwnerID == playerID && tile.Type != SpaceEmpty {
			return true
		}
	}

	return false
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) ConfirmWaitingState() error {
	switch {
	case that.IsWaiting():
		return nil
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return apperror.ErrGameAlreadyStarted
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
