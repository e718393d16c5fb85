package model

import (
	"errors"
	"time"
)

// ErrInvalidMatch is returned by Match.Validate.
var ErrInvalidMatch = errors.New("invalid match")

// Match is one recorded verdict. Ratings are snapshots taken right after the
// update for visualization; replay ignores them.
type Match struct {
	ID           string    `json:"id"`
	WinnerID     int       `json:"winner_id"`
	LoserID      int       `json:"loser_id"`
	WinnerRating float64   `json:"winner_rating"`
	LoserRating  float64   `json:"loser_rating"`
	PlayedAt     time.Time `json:"played_at"`
}

// Validate reports whether m is structurally sound.
func (m Match) Validate() error {
	switch {
	case m.ID == "":
		return errors.Join(ErrInvalidMatch, errors.New("empty id"))
	case m.WinnerID < 0 || m.LoserID < 0:
		return errors.Join(ErrInvalidMatch, errors.New("negative song id"))
	}
	return nil
}

// SelfPlay reports whether a song was matched against itself.
func (m Match) SelfPlay() bool {
	return m.WinnerID == m.LoserID
}
