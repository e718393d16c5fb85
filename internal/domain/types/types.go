// Package types contains read shapes returned to API clients.
package types

import "github.com/okian/compare/internal/domain/model"

// Standing is one song's position on the leaderboard.
type Standing struct {
	Rank      int        `json:"rank"`
	Song      model.Song `json:"song"`
	Rating    float64    `json:"rating"`
	Certainty float64    `json:"certainty"`
}

// Matchup is the pair of songs the listener should compare next.
type Matchup struct {
	A model.Song `json:"a"`
	B model.Song `json:"b"`
}

// MatchResult reports what happened to a submitted verdict.
type MatchResult struct {
	Match     model.Match `json:"match"`
	Duplicate bool        `json:"duplicate"`
	SelfPlay  bool        `json:"self_play"`
}

// Verdict is a listener's answer to a matchup. MatchID makes resubmission
// idempotent; an empty one is generated.
type Verdict struct {
	MatchID  string `json:"match_id,omitempty" validate:"omitempty,max=128"`
	WinnerID int    `json:"winner_id" validate:"gte=0"`
	LoserID  int    `json:"loser_id" validate:"gte=0"`
}

// NewSong describes a song to add to a running session.
type NewSong struct {
	Path      string `json:"path"`
	Title     string `json:"title" validate:"required"`
	Extension string `json:"extension" validate:"omitempty,startswith=."`
}
