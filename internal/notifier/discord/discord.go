package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/planner"
)

// Embed colors, matching the Discord embed palette the channel expects.
const (
	colorGold  = 0xFACC15
	colorRed   = 0xEF4444
	colorGreen = 0x57F287
	colorBlue  = 0x3B82F6
)

var _ notifier.Notifier = &Notifier{}

// Notifier delivers notifications to a Discord channel webhook.
type Notifier struct {
	client     *http.Client
	webhookURL string
	siteURL    string
	metrics    metrics.Metrics
}

// NewNotifier creates a new Notifier. The webhook URL is injected here
// rather than read from ambient environment state.
func NewNotifier(webhookURL, siteURL string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		client:     &http.Client{},
		webhookURL: webhookURL,
		siteURL:    siteURL,
		metrics:    metrics,
	}
}

// NewNotifierWithClient creates a Notifier with a specific http.Client.
// Useful for tests that need to intercept the webhook call.
func NewNotifierWithClient(client *http.Client, webhookURL, siteURL string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		client:     client,
		webhookURL: webhookURL,
		siteURL:    siteURL,
		metrics:    metrics,
	}
}

// Embed is a Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

func (n *Notifier) sendEmbed(embed Embed, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(embed, "", "  ")
		log.Info("[Dry Run] Would send Discord webhook", "embed", string(jsonMsg))
		return nil
	}

	body, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.metrics.IncNotifFailed()
		log.Error("Failed to send Discord webhook", "error", err)
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.metrics.IncNotifFailed()
		log.Error("Discord webhook rejected", "status", resp.StatusCode)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.metrics.IncNotifSent()
	log.Info("Successfully sent Discord webhook", "status", resp.StatusCode)
	return nil
}

// SendGoldenAnnouncement posts the golden-session embed.
func (n *Notifier) SendGoldenAnnouncement(window planner.GoldenWindow, dryRun bool) error {
	hours := make([]string, 0, window.EndHour-window.StartHour)
	for h := window.StartHour; h < window.EndHour; h++ {
		hours = append(hours, fmt.Sprintf("%dh", h))
	}

	playersList := "No players found"
	if len(window.Players) > 0 {
		bullets := make([]string, len(window.Players))
		for i, p := range window.Players {
			bullets[i] = "• " + p
		}
		playersList = strings.Join(bullets, "\n")
	}

	embed := Embed{
		Title:       "🏆 3-HOUR SESSION CONFIRMED!",
		Description: fmt.Sprintf("Incredible! %d consecutive slots are full (%dh - %dh)!", window.EndHour-window.StartHour, window.StartHour, window.EndHour),
		Color:       colorGold,
		Fields: []EmbedField{
			{Name: "📅 Date", Value: formatDay(window.Date), Inline: true},
			{Name: "⏰ Slots", Value: strings.Join(hours, " - "), Inline: true},
			{Name: "⚽ Players in", Value: playersList},
			{Name: "🔗 Join", Value: fmt.Sprintf("[Click here](%s)", n.siteURL)},
		},
		Footer:    &EmbedFooter{Text: "Planifive • Golden Session"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return n.sendEmbed(embed, dryRun)
}

// SendGoldenRevocation posts the broken-session embed.
func (n *Notifier) SendGoldenRevocation(revocation planner.GoldenRevocation, dryRun bool) error {
	embed := Embed{
		Title:       "❌ PLAYER DROPPED FROM A 3H SESSION!",
		Description: fmt.Sprintf("%s pulled out of the %dh slot, breaking the %dh - %dh session.", revocation.ByUser, revocation.Hour, revocation.StartHour, revocation.EndHour),
		Color:       colorRed,
		Fields: []EmbedField{
			{Name: "📅 Date", Value: formatDay(revocation.Date), Inline: true},
			{Name: "⏰ Affected session", Value: fmt.Sprintf("%dh - %dh", revocation.StartHour, revocation.EndHour), Inline: true},
			{Name: "📉 Action", Value: "The confirmed status has been revoked."},
			{Name: "🔗 Rebuild the team", Value: fmt.Sprintf("[Click here](%s)", n.siteURL)},
		},
		Footer:    &EmbedFooter{Text: "Planifive • Dropout"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return n.sendEmbed(embed, dryRun)
}

// SendCallAnnouncement posts or refreshes the call embed with the current
// participant list.
func (n *Notifier) SendCallAnnouncement(announcement calls.Announcement, dryRun bool) error {
	call := announcement.Call
	durationStr := "1h00"
	if call.Duration == 90 {
		durationStr = "1h30"
	}

	description := fmt.Sprintf("**%s** is calling a five-a-side!\n\n📅 **%s**\n⏰ **%dh00**\n⏱️ **Duration: %s**\n📍 **%s**",
		announcement.CreatorName, formatDay(call.Date), call.Hour, durationStr, call.Location)
	if call.Price != nil && *call.Price != "" {
		description += fmt.Sprintf("\n💰 **Price: %s**", *call.Price)
	}
	if call.Comment != nil && *call.Comment != "" {
		description += fmt.Sprintf("\n📝 **Note: %s**", *call.Comment)
	}
	description += "\n\n👉 Log in to join!"

	names := make([]string, len(announcement.Participants.Accepted))
	for i, ref := range announcement.Participants.Accepted {
		names[i] = ref.Name
	}
	participantsValue := "Nobody signed up yet"
	if len(names) > 0 {
		participantsValue = strings.Join(names, ", ")
	}
	missing := announcement.MatchSize - len(names)
	if missing < 0 {
		missing = 0
	}

	spanEnd := call.Hour + len(call.SlotSpan(23))

	embed := Embed{
		Title:       "📢 NEW FIVE CALL!",
		Description: description,
		URL:         n.siteURL,
		Color:       colorGreen,
		Fields: []EmbedField{
			{Name: "Reserved block", Value: fmt.Sprintf("%dh - %dh", call.Hour, spanEnd), Inline: true},
			{Name: fmt.Sprintf("👥 Participants (%d/%d)", len(names), announcement.MatchSize), Value: participantsValue},
			{Name: "🔥 Spots left", Value: fmt.Sprintf("%d spots", missing), Inline: true},
		},
		Footer:    &EmbedFooter{Text: "Planifive • Let's play!"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return n.sendEmbed(embed, dryRun)
}

// SendCallCancellation posts the call-cancelled embed.
func (n *Notifier) SendCallCancellation(cancellation calls.Cancellation, dryRun bool) error {
	call := cancellation.Call
	embed := Embed{
		Title:       "🚫 CALL CANCELLED",
		Description: fmt.Sprintf("**%s** cancelled the call for %s at %dh00.", cancellation.CreatorName, formatDay(call.Date), call.Hour),
		Color:       colorRed,
		Footer:      &EmbedFooter{Text: "Planifive • Cancelled"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	return n.sendEmbed(embed, dryRun)
}

// SendVoteReminder posts the missing-votes reminder, naming each player
// with an unanswered call and the dates they still owe an answer for.
func (n *Notifier) SendVoteReminder(reminder calls.VoteReminder, dryRun bool) error {
	description := "**Votes are missing for the upcoming Fives!**\n\n"
	for _, gap := range reminder.Gaps {
		dates := make([]string, len(gap.MissingDates))
		for i, date := range gap.MissingDates {
			dates[i] = formatDay(date)
		}
		description += fmt.Sprintf("**%s**: no answer for **%s**\n", gap.Name, strings.Join(dates, ", "))
	}
	description += fmt.Sprintf("\n👉 [Head over to Planifive to vote!](%s)", n.siteURL)

	embed := Embed{
		Title:       "🗳️ Vote reminder",
		Description: description,
		URL:         n.siteURL,
		Color:       colorBlue,
		Footer:      &EmbedFooter{Text: "Planifive • Please answer quickly!"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	return n.sendEmbed(embed, dryRun)
}

// formatDay renders a YYYY-MM-DD date for humans, e.g. "Monday 01 January".
func formatDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday 02 January")
}
