package roster

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user id does not exist in the roster.
var ErrUserNotFound = fmt.Errorf("user not found")

// New creates a new RosterStore.
func New(db *sql.DB) RosterStore {
	return &store{
		db: db,
	}
}

// UpsertUser inserts a new user or updates an existing one. The custom name
// is preserved on conflict so an OAuth refresh never clobbers it.
func (s *store) UpsertUser(user UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertUserLocked(user)
}

// UpsertUsers upserts a batch of users in a single transaction.
func (s *store) UpsertUsers(users []UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO users (id, name, custom_name, image)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image = excluded.image;
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, user := range users {
		if _, err := stmt.Exec(user.ID, user.Name, user.CustomName, user.Image); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) upsertUserLocked(user UserInfo) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, name, custom_name, image)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image = excluded.image;
	`, user.ID, user.Name, user.CustomName, user.Image)
	return err
}

// GetUser retrieves a single user by id.
func (s *store) GetUser(userID string) (*UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user UserInfo
	err := s.db.QueryRow("SELECT id, name, custom_name, image FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Name, &user.CustomName, &user.Image)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUsers retrieves the users matching the given ids.
func (s *store) GetUsers(userIDs []string) ([]UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []UserInfo{}
	if len(userIDs) == 0 {
		return users, nil
	}

	query := "SELECT id, name, custom_name, image FROM users WHERE id IN (?"
	args := []any{userIDs[0]}
	for _, id := range userIDs[1:] {
		query += ",?"
		args = append(args, id)
	}
	query += ")"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user UserInfo
		if err := rows.Scan(&user.ID, &user.Name, &user.CustomName, &user.Image); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetAllUsers returns every registered user.
func (s *store) GetAllUsers() ([]UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, custom_name, image FROM users ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []UserInfo{}
	for rows.Next() {
		var user UserInfo
		if err := rows.Scan(&user.ID, &user.Name, &user.CustomName, &user.Image); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// IsKnownUser reports whether the user id exists in the roster.
func (s *store) IsKnownUser(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check user existence", "error", err, "userID", userID)
		return false
	}
	return exists
}

// SetCustomName updates a user's custom display name.
func (s *store) SetCustomName(userID, customName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE users SET custom_name = ? WHERE id = ?", customName, userID)
	if err != nil {
		return fmt.Errorf("failed to set custom name: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordMatch persists a played match. A missing id is generated.
func (s *store) RecordMatch(match *PlayedMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.CreatedAt == 0 {
		match.CreatedAt = time.Now().Unix()
	}

	team1JSON, err := json.Marshal(match.Team1Names)
	if err != nil {
		return err
	}
	team2JSON, err := json.Marshal(match.Team2Names)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO matches (id, date, location, score_team1, score_team2, team1_names_json, team2_names_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, match.ID, match.Date, match.Location, match.ScoreTeam1, match.ScoreTeam2, string(team1JSON), string(team2JSON), match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

// GetAllMatches returns the match history, most recent first.
func (s *store) GetAllMatches() ([]*PlayedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, date, location, score_team1, score_team2, team1_names_json, team2_names_json, created_at
		FROM matches
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []*PlayedMatch{}
	for rows.Next() {
		var match PlayedMatch
		var team1JSON, team2JSON sql.NullString
		if err := rows.Scan(&match.ID, &match.Date, &match.Location, &match.ScoreTeam1, &match.ScoreTeam2, &team1JSON, &team2JSON, &match.CreatedAt); err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		match.Team1Names = decodeNames(team1JSON, match.ID)
		match.Team2Names = decodeNames(team2JSON, match.ID)
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}

func decodeNames(raw sql.NullString, matchID string) []string {
	names := []string{}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &names); err != nil {
			log.Error("Failed to unmarshal team names", "error", err, "matchID", matchID)
		}
	}
	return names
}

// DeleteMatch removes a played match from the history.
func (s *store) DeleteMatch(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	return err
}

// Clear wipes the roster and the match history. Intended for tests and the
// admin /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"matches", "users"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}
