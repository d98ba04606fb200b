package game

import "errors"

var (
	// ErrGeneration means the catalog could not satisfy the requested
	// tier/region within the attempt budget.
	ErrGeneration = errors.New("could not generate a triangle for the requested constraints")

	// ErrDuplicateGuess means the city was already guessed this game.
	// The turn is not consumed.
	ErrDuplicateGuess = errors.New("city already guessed")

	// ErrGameFinished means a guess arrived after the game reached its
	// terminal state. The game is left unchanged.
	ErrGameFinished = errors.New("game is finished")

	// ErrOutOfTurn means the guess came from a player other than the one
	// whose turn it is.
	ErrOutOfTurn = errors.New("not this player's turn")

	// ErrUnknownPlayer means the player identifier doesn't belong to this game.
	ErrUnknownPlayer = errors.New("unknown player")
)
