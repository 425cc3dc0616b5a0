package slack

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/planner"
	"github.com/slack-go/slack"
)

var _ notifier.Notifier = &Notifier{}

// NewNotifier creates a new Slack notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Slack notifier with a custom API client. Used for testing.
func NewNotifierWithAPI(api slackAPI, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (n *Notifier) sendMessage(msg slack.Message, dryRun bool) error {
	if n.api == nil || n.channelID == "" {
		log.Warn("Slack client or channel ID is not configured. Skipping notification.")
		return errors.New("slack client or channel ID is not configured")
	}

	if dryRun {
		log.Info("Dry run mode: Slack notification not sent.", "msg", msg)
		return nil
	}

	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionBlocks(msg.Blocks.BlockSet...))
	if err != nil {
		n.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err)
		return err
	}
	n.metrics.IncNotifSent()
	return nil
}

// SendGoldenAnnouncement sends the golden-session message.
func (n *Notifier) SendGoldenAnnouncement(window planner.GoldenWindow, dryRun bool) error {
	return n.sendMessage(n.formatGoldenAnnouncement(window), dryRun)
}

// SendGoldenRevocation sends the broken-session message.
func (n *Notifier) SendGoldenRevocation(revocation planner.GoldenRevocation, dryRun bool) error {
	return n.sendMessage(n.formatGoldenRevocation(revocation), dryRun)
}

// SendCallAnnouncement sends the call message with its current participants.
func (n *Notifier) SendCallAnnouncement(announcement calls.Announcement, dryRun bool) error {
	return n.sendMessage(n.formatCallAnnouncement(announcement), dryRun)
}

// SendCallCancellation sends the call-cancelled message.
func (n *Notifier) SendCallCancellation(cancellation calls.Cancellation, dryRun bool) error {
	return n.sendMessage(n.formatCallCancellation(cancellation), dryRun)
}

// SendVoteReminder sends the missing-votes reminder.
func (n *Notifier) SendVoteReminder(reminder calls.VoteReminder, dryRun bool) error {
	return n.sendMessage(n.formatVoteReminder(reminder), dryRun)
}
