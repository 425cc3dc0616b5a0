package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	// A helper for optional integer env vars with a default.
	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
		}
		return parsed
	}

	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Notifier: NotifierConfig{
			Provider: getEnvOr("NOTIFIER_PROVIDER", "discord"),
		},
		Discord: DiscordConfig{
			WebhookURL: getEnv("DISCORD_WEBHOOK_URL"),
			PublicKey:  getEnv("DISCORD_PUBLIC_KEY"),
			SiteURL:    getEnvOr("SITE_URL", "https://planifive.app"),
		},
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		Planner: PlannerConfig{
			MatchSize:    getEnvInt("MATCH_SIZE", 10),
			DayStartHour: getEnvInt("DAY_START_HOUR", 8),
			DayEndHour:   getEnvInt("DAY_END_HOUR", 23),
			WindowLength: getEnvInt("GOLDEN_WINDOW_LENGTH", 3),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}

	if cfg.Notifier.Provider == "slack" {
		cfg.Slack = SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		}
	}

	return cfg
}
