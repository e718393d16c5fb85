// Package model contains domain records passed between layers.
package model

import "errors"

// ErrInvalidSong is returned by Song.Validate.
var ErrInvalidSong = errors.New("invalid song")

// Song is one audio file taking part in a ranking session.
// ID doubles as the matchmaking player id.
type Song struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	Title     string `json:"title"`
	Extension string `json:"extension"` // includes the leading dot
}

// Validate reports whether s can be registered.
func (s Song) Validate() error {
	switch {
	case s.ID < 0:
		return errors.Join(ErrInvalidSong, errors.New("negative id"))
	case s.Title == "":
		return errors.Join(ErrInvalidSong, errors.New("empty title"))
	}
	return nil
}
