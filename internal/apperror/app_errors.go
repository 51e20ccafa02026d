package apperror

import "errors"

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameIsFull         = errors.New("game is full")
	ErrNotEnoughPlants    = errors.New("not enough plants")
	ErrNoValidPlacement   = errors.New("no valid placement available")
	ErrCannotAffordTax    = errors.New("cannot afford the rating tax")
	ErrSpaceOccupied      = errors.New("space is already occupied")
)
