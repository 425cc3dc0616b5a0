package notifier

import (
	"sync"

	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/planner"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	GoldenAnnouncementCalls []planner.GoldenWindow
	GoldenRevocationCalls   []planner.GoldenRevocation
	CallAnnouncementCalls   []calls.Announcement
	CallCancellationCalls   []calls.Cancellation
	VoteReminderCalls       []calls.VoteReminder

	// Optional error injection
	SendGoldenAnnouncementFunc func(window planner.GoldenWindow, dryRun bool) error
	SendGoldenRevocationFunc   func(revocation planner.GoldenRevocation, dryRun bool) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GoldenAnnouncementCalls = nil
	m.GoldenRevocationCalls = nil
	m.CallAnnouncementCalls = nil
	m.CallCancellationCalls = nil
	m.VoteReminderCalls = nil
}

func (m *Mock) SendGoldenAnnouncement(window planner.GoldenWindow, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GoldenAnnouncementCalls = append(m.GoldenAnnouncementCalls, window)
	if m.SendGoldenAnnouncementFunc != nil {
		return m.SendGoldenAnnouncementFunc(window, dryRun)
	}
	return nil
}

func (m *Mock) SendGoldenRevocation(revocation planner.GoldenRevocation, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GoldenRevocationCalls = append(m.GoldenRevocationCalls, revocation)
	if m.SendGoldenRevocationFunc != nil {
		return m.SendGoldenRevocationFunc(revocation, dryRun)
	}
	return nil
}

func (m *Mock) SendCallAnnouncement(announcement calls.Announcement, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallAnnouncementCalls = append(m.CallAnnouncementCalls, announcement)
	return nil
}

func (m *Mock) SendCallCancellation(cancellation calls.Cancellation, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCancellationCalls = append(m.CallCancellationCalls, cancellation)
	return nil
}

func (m *Mock) SendVoteReminder(reminder calls.VoteReminder, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VoteReminderCalls = append(m.VoteReminderCalls, reminder)
	return nil
}
