package library

import "errors"

var (
	// ErrNotDirectory is returned when the music folder is not a directory.
	ErrNotDirectory = errors.New("music folder is not a directory")
	// ErrMissingExtension is returned when a file in the folder has no extension.
	ErrMissingExtension = errors.New("media file has no extension")
)
