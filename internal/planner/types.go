package planner

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the availability grid and the
// slot-status ledger.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Validation and lookup errors surfaced by the toggle engine. Nothing is
// persisted or notified when one of these is returned.
var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidHour = errors.New("hour outside the bookable range")
	ErrUnknownUser = errors.New("unknown user")
)

// AvailabilityEntry is one (user, hour) occupancy row for a given date.
// Name is the user's preferred display name.
type AvailabilityEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Hour   int    `json:"hour"`
}

// GridEntry is one occupancy row of the forward-looking availability grid.
type GridEntry struct {
	Date   string  `json:"date"`
	Hour   int     `json:"hour"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Image  *string `json:"image,omitempty"`
}

// SlotStatus is the persisted ledger record for a (date, hour) window start.
type SlotStatus struct {
	Date            string `json:"date"`
	Hour            int    `json:"hour"`
	GoldenAnnounced bool   `json:"golden_announced"`
}

// GoldenWindow describes a detected run of consecutive full slots.
type GoldenWindow struct {
	Date      string   `json:"date"`
	StartHour int      `json:"start_hour"`
	EndHour   int      `json:"end_hour"` // exclusive, StartHour + window length
	Players   []string `json:"players"`
}

// GoldenRevocation describes a previously announced window that no longer
// holds, and the player whose withdrawal broke it.
type GoldenRevocation struct {
	Date      string `json:"date"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Hour      int    `json:"hour"` // the slot that dropped below quorum
	ByUser    string `json:"by_user"`
}

// ToggleResult reports which way a toggle went.
type ToggleResult struct {
	Status string `json:"status"` // "added" or "removed"
	Count  int    `json:"count"`  // occupancy of the toggled slot afterwards
}
