package notifier

import (
	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/planner"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider
// (Discord webhook or Slack). Delivery is best-effort and fire-and-forget: callers log
// returned errors and never roll back state because of them.
type Notifier interface {
	// For golden-window transitions
	SendGoldenAnnouncement(window planner.GoldenWindow, dryRun bool) error
	SendGoldenRevocation(revocation planner.GoldenRevocation, dryRun bool) error

	// For explicit calls
	SendCallAnnouncement(announcement calls.Announcement, dryRun bool) error
	SendCallCancellation(cancellation calls.Cancellation, dryRun bool) error

	// For the weekly reminder cron. Only called when at least one user has
	// an unanswered upcoming call.
	SendVoteReminder(reminder calls.VoteReminder, dryRun bool) error
}
