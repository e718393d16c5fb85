package matchmaking

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAlreadyExists       = errors.New("player already exists")
	ErrNotFound            = errors.New("player not found")
	ErrInsufficientPlayers = errors.New("insufficient players")
)
