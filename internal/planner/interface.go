package planner

import "github.com/planifive/planifive/internal/roster"

// Store defines the persistence operations the toggle engine requires.
// Add and remove are idempotent: adding an existing tuple or removing a
// missing one is a no-op, not an error.
type Store interface {
	AddAvailability(userID, date string, hour int) error
	RemoveAvailability(userID, date string, hour int) error
	HasAvailability(userID, date string, hour int) (bool, error)
	CountAvailability(date string, hour int) (int, error)
	ListAvailability(date string, hours []int) ([]AvailabilityEntry, error)
	GetGrid(fromDate string) ([]GridEntry, error)

	GetSlotStatus(date string, hour int) (*SlotStatus, error)
	SetSlotStatus(date string, hour int, goldenAnnounced bool) error
	// MarkGoldenAnnounced transitions a ledger row to announced and reports
	// whether this call performed the transition. A row already announced
	// returns false, which is what makes announcements at-most-once under
	// concurrent toggles.
	MarkGoldenAnnounced(date string, hour int) (bool, error)
	// ClearGoldenAnnounced is the reverse transition, with the same
	// only-the-committing-caller-wins contract.
	ClearGoldenAnnounced(date string, hour int) (bool, error)

	Clear()
}

// Roster is the narrow view of the user store the engine needs.
type Roster interface {
	GetUser(userID string) (*roster.UserInfo, error)
}

// Notifier defines the notification operations required by the engine.
// Delivery is best-effort: the engine logs failures and never rolls back.
type Notifier interface {
	SendGoldenAnnouncement(window GoldenWindow, dryRun bool) error
	SendGoldenRevocation(revocation GoldenRevocation, dryRun bool) error
}
