package calls

import (
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/roster"
)

// CallStore defines the persistence operations for calls and responses.
type CallStore interface {
	CreateCall(call *Call) error
	GetCall(callID string) (*Call, error)
	ListCalls(fromDate string) ([]*Call, error)
	DeleteCall(callID string) error
	UpsertResponse(response *CallResponse) error
	GetResponses(callID string) ([]CallResponse, error)
}

// Grid is the availability surface the reconciler reads and syncs into.
type Grid interface {
	AddAvailability(userID, date string, hour int) error
	RemoveAvailability(userID, date string, hour int) error
	ListAvailability(date string, hours []int) ([]planner.AvailabilityEntry, error)
}

// Roster is the narrow view of the user store the service needs.
type Roster interface {
	GetUser(userID string) (*roster.UserInfo, error)
	GetUsers(userIDs []string) ([]roster.UserInfo, error)
	GetAllUsers() ([]roster.UserInfo, error)
}

// Notifier defines the notification operations required by the call service.
type Notifier interface {
	SendCallAnnouncement(announcement Announcement, dryRun bool) error
	SendCallCancellation(cancellation Cancellation, dryRun bool) error
}

// Publisher fans call lifecycle events out to the async consumers.
type Publisher interface {
	SendMessage(topic string, data any) error
}
