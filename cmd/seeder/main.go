package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create enough dummy players to fill three consecutive slots
	playerNames := []string{
		"Seeder Player A", "Seeder Player B", "Seeder Player C", "Seeder Player D",
		"Seeder Player E", "Seeder Player F", "Seeder Player G", "Seeder Player H",
		"Seeder Player I", "Seeder Player J", "Seeder Player K", "Seeder Player L",
	}
	playerIDs := make([]string, len(playerNames))
	for i, name := range playerNames {
		playerIDs[i] = fmt.Sprintf("player-%d", i+1)
		_, err := db.Exec("INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)", playerIDs[i], name)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", name, err)
		}
	}
	log.Info("Ensured dummy players exist.", "count", len(playerIDs))

	// Scatter availability over the next seven days
	startTime := time.Now()
	now := time.Now().Unix()
	inserted := 0
	for day := 0; day < 7; day++ {
		date := time.Now().AddDate(0, 0, day).Format("2006-01-02")
		for hour := 8; hour <= 23; hour++ {
			for _, id := range playerIDs {
				if rand.Intn(3) != 0 {
					continue
				}
				_, err := db.Exec(
					"INSERT OR IGNORE INTO availability (user_id, date, hour, created_at) VALUES (?, ?, ?, ?)",
					id, date, hour, now,
				)
				if err != nil {
					log.Fatalf("Failed to insert availability row: %s", err)
				}
				inserted++
			}
		}
	}
	log.Info("Seeded availability.", "rows", inserted, "duration", time.Since(startTime))

	// A bit of match history so the /matches endpoints have something to show
	team1, _ := json.Marshal(playerNames[:5])
	team2, _ := json.Marshal(playerNames[5:10])
	for i := 0; i < 5; i++ {
		date := time.Now().AddDate(0, 0, -(i+1)*7).Format("2006-01-02")
		_, err := db.Exec(
			"INSERT INTO matches (id, date, location, score_team1, score_team2, team1_names_json, team2_names_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.NewString(), date, "Local pitch", rand.Intn(10), rand.Intn(10), string(team1), string(team2), now,
		)
		if err != nil {
			log.Fatalf("Failed to insert dummy match: %s", err)
		}
	}
	log.Info("Seeded match history.")

	log.Info("Database seeding complete.")
}
