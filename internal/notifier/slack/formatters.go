package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/planner"
	"github.com/slack-go/slack"
)

// formatGoldenAnnouncement creates the message for a confirmed 3-hour session using Block Kit.
func (n *Notifier) formatGoldenAnnouncement(window planner.GoldenWindow) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 3-hour session confirmed! ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Date: %s\nSlots: %dh - %dh", formatDay(window.Date), window.StartHour, window.EndHour)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if len(window.Players) > 0 {
		bullets := make([]string, len(window.Players))
		for i, p := range window.Players {
			bullets[i] = fmt.Sprintf("• %s", p)
		}
		playersText := "Players in:\n" + strings.Join(bullets, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playersText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatGoldenRevocation creates the message for a session broken by a dropout.
func (n *Notifier) formatGoldenRevocation(revocation planner.GoldenRevocation) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "❌ Player dropped from a 3h session!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s pulled out of the %dh slot on %s, breaking the %dh - %dh session.",
		revocation.ByUser, revocation.Hour, formatDay(revocation.Date), revocation.StartHour, revocation.EndHour)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextElements := []slack.MixedElement{
		slack.NewTextBlockObject("plain_text", "The confirmed status has been revoked.", true, false),
	}
	blocks = append(blocks, slack.NewContextBlock("", contextElements...))

	return slack.NewBlockMessage(blocks...)
}

// formatCallAnnouncement creates the message for a new or updated call.
func (n *Notifier) formatCallAnnouncement(announcement calls.Announcement) slack.Message {
	call := announcement.Call
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📢 New five call!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	durationStr := "1h00"
	if call.Duration == 90 {
		durationStr = "1h30"
	}
	detailsText := fmt.Sprintf("%s is calling a five-a-side!\nDate: %s at %dh00\nDuration: %s\nLocation: %s",
		announcement.CreatorName, formatDay(call.Date), call.Hour, durationStr, call.Location)
	if call.Price != nil && *call.Price != "" {
		detailsText += fmt.Sprintf("\nPrice: %s", *call.Price)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	var playerNames []string
	for _, ref := range announcement.Participants.Accepted {
		if ref.Name != "" {
			playerNames = append(playerNames, fmt.Sprintf("• %s", ref.Name))
		}
	}
	if len(playerNames) > 0 {
		playersText := fmt.Sprintf("Participants (%d/%d):\n", len(playerNames), announcement.MatchSize) + strings.Join(playerNames, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playersText, true, false), nil, nil))
	}

	if call.Comment != nil && *call.Comment != "" {
		contextElements := []slack.MixedElement{
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("📝 %s", *call.Comment), true, false),
		}
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatCallCancellation creates the message for a cancelled call.
func (n *Notifier) formatCallCancellation(cancellation calls.Cancellation) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🚫 Call cancelled", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s cancelled the call for %s at %dh00.",
		cancellation.CreatorName, formatDay(cancellation.Call.Date), cancellation.Call.Hour)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatVoteReminder creates the missing-votes reminder message, one line
// per player with unanswered calls.
func (n *Notifier) formatVoteReminder(reminder calls.VoteReminder) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🗳️ Votes are missing for the upcoming Fives!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	for _, gap := range reminder.Gaps {
		dates := make([]string, len(gap.MissingDates))
		for i, date := range gap.MissingDates {
			dates[i] = formatDay(date)
		}
		gapText := fmt.Sprintf("*%s*: no answer for %s", gap.Name, strings.Join(dates, ", "))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", gapText, false, false), nil, nil))
	}

	ctaText := slack.NewTextBlockObject("plain_text", "Head over to Planifive to vote!", true, false)
	blocks = append(blocks, slack.NewContextBlock("", ctaText))

	return slack.NewBlockMessage(blocks...)
}

func formatDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday 02 January")
}
