package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnoughPlayers = errors.New("not enough players with chips")
	ErrInvalidBlinds    = errors.New("invalid blinds")
	ErrInvalidConfig    = errors.New("invalid table config")
	ErrHandInProgress   = errors.New("hand in progress")
	ErrNoHandInProgress = errors.New("no hand in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotInToAct       = errors.New("player has already acted")
	ErrPlayerNotActive  = errors.New("player is not active")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrSeatTaken        = errors.New("seat taken")
	ErrTableFull        = errors.New("table full")
	ErrDuplicatePlayer  = errors.New("duplicate player")
	ErrInvalidAction    = errors.New("invalid action")
	ErrBetTooSmall      = errors.New("bet below minimum")
	ErrBetTooLarge      = errors.New("bet above maximum")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrDeckExhausted    = errors.New("deck exhausted")
)

// ActionError describes a rejected action. It unwraps to one of the
// sentinel errors above.
type ActionError struct {
	PlayerID string
	Action   Action
	Amount   int
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s %d: %v", e.PlayerID, e.Action, e.Amount, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func rejectAction(playerID string, action Action, amount int, err error) error {
	return &ActionError{PlayerID: playerID, Action: action, Amount: amount, Err: err}
}
