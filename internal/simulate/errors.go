package simulate

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrEngine        = errors.New("engine failed during simulation")
	ErrRemote        = errors.New("remote service error")
)
