package roster

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the player roster.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// UserInfo represents a registered player.
type UserInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CustomName *string `json:"custom_name,omitempty"`
	Image      *string `json:"image,omitempty"`
}

// DisplayName returns the custom name when set, falling back to the account
// name, then to a generic placeholder.
func (u UserInfo) DisplayName() string {
	if u.CustomName != nil && *u.CustomName != "" {
		return *u.CustomName
	}
	if u.Name != "" {
		return u.Name
	}
	return "Player"
}

// PlayedMatch is a historical five-a-side result.
type PlayedMatch struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"` // YYYY-MM-DD
	Location   string   `json:"location"`
	ScoreTeam1 int      `json:"score_team1"`
	ScoreTeam2 int      `json:"score_team2"`
	Team1Names []string `json:"team1_names"`
	Team2Names []string `json:"team2_names"`
	CreatedAt  int64    `json:"created_at"`
}
