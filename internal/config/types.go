package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Notifier      NotifierConfig
	Discord       DiscordConfig
	Slack         SlackConfig
	Turso         TursoConfig
	Planner       PlannerConfig
	ProjectID     string
}

// NotifierConfig selects which notification sink is used.
type NotifierConfig struct {
	Provider string // "discord" or "slack"
}

type DiscordConfig struct {
	WebhookURL string
	PublicKey  string
	SiteURL    string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// PlannerConfig holds the tuning values for the slot-consensus engine.
// These are configuration, not call-site constants, so the evaluator and
// detector stay testable with different thresholds.
type PlannerConfig struct {
	MatchSize    int // distinct players required for a slot to count as full
	DayStartHour int // first bookable hour of a day
	DayEndHour   int // last bookable hour of a day
	WindowLength int // consecutive full slots required for a golden window
}
