package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCorruptRecord    = errors.New("corrupt store record")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrDuplicateMatch   = errors.New("match already stored")
)
