package slack

import (
	"github.com/planifive/planifive/internal/metrics"
	"github.com/slack-go/slack"
)

// slackAPI is the slice of the slack-go client we use. Narrowed for testing.
type slackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier delivers notifications to a Slack channel using Block Kit.
type Notifier struct {
	api       slackAPI
	channelID string
	metrics   metrics.Metrics
}
