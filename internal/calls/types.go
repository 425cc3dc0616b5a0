package calls

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles database operations for calls and their responses.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ResponseStatus is an explicit answer to a call.
type ResponseStatus string

const (
	StatusAccepted ResponseStatus = "ACCEPTED"
	StatusDeclined ResponseStatus = "DECLINED"
)

var (
	ErrCallNotFound    = errors.New("call not found")
	ErrNotCreator      = errors.New("only the creator can cancel a call")
	ErrInvalidDuration = errors.New("duration must be 60 or 90 minutes")
	ErrInvalidStatus   = errors.New("status must be ACCEPTED or DECLINED")
)

// Call is an explicit session proposal. Immutable after creation except
// deletion by its creator.
type Call struct {
	ID        string  `json:"id"`
	CreatorID string  `json:"creator_id"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Hour      int     `json:"hour"`
	Duration  int     `json:"duration"` // minutes, 60 or 90
	Location  string  `json:"location"`
	Price     *string `json:"price,omitempty"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// SlotSpan returns the contiguous hourly slots the call claims: 4 for a
// 60-minute session, 5 for 90 minutes, never extending past dayEndHour.
func (c *Call) SlotSpan(dayEndHour int) []int {
	slotCount := 4
	if c.Duration == 90 {
		slotCount = 5
	}
	span := make([]int, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		h := c.Hour + i
		if h > dayEndHour {
			break
		}
		span = append(span, h)
	}
	return span
}

// CallResponse is one user's explicit answer, unique per (call, user) and
// upserted on repeated responses.
type CallResponse struct {
	CallID      string         `json:"call_id"`
	UserID      string         `json:"user_id"`
	Status      ResponseStatus `json:"status"`
	RespondedAt int64          `json:"responded_at"`
}

// UserRef is a resolved participant reference.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Participants is the reconciled outcome for a call.
type Participants struct {
	Accepted []UserRef `json:"accepted"`
	Declined []UserRef `json:"declined"`
}

// Announcement is the payload handed to the notifier when a call is created
// or its participant list changes.
type Announcement struct {
	Call         *Call        `json:"call"`
	CreatorName  string       `json:"creator_name"`
	Participants Participants `json:"participants"`
	MatchSize    int          `json:"match_size"`
}

// Cancellation is the payload for a creator cancelling their call.
type Cancellation struct {
	Call        *Call  `json:"call"`
	CreatorName string `json:"creator_name"`
}

// VoteGap names the upcoming call dates one user has not answered yet.
type VoteGap struct {
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	MissingDates []string `json:"missing_dates"`
}

// VoteReminder is the payload for the weekly nudge. It is only sent when at
// least one user has an unanswered upcoming call.
type VoteReminder struct {
	WeekStart string    `json:"week_start"`
	Gaps      []VoteGap `json:"gaps"`
}

// Event is the pubsub fan-out message for call lifecycle changes.
type Event struct {
	CallID string `msgpack:"call_id"`
	Kind   string `msgpack:"kind"` // "created", "responded", "cancelled"
}
