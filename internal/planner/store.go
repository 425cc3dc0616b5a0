package planner

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// NewStore creates a new availability/ledger store.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// AddAvailability inserts one (user, date, hour) tuple. Adding a tuple that
// already exists is a no-op.
func (s *store) AddAvailability(userID, date string, hour int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO availability (user_id, date, hour, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, date, hour) DO NOTHING;
	`, userID, date, hour, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add availability: %w", err)
	}
	return nil
}

// RemoveAvailability deletes one tuple. Removing a missing tuple is a no-op.
func (s *store) RemoveAvailability(userID, date string, hour int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM availability WHERE user_id = ? AND date = ? AND hour = ?
	`, userID, date, hour)
	if err != nil {
		return fmt.Errorf("failed to remove availability: %w", err)
	}
	return nil
}

// HasAvailability reports whether the tuple exists.
func (s *store) HasAvailability(userID, date string, hour int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM availability WHERE user_id = ? AND date = ? AND hour = ?)
	`, userID, date, hour).Scan(&exists)
	return exists, err
}

// CountAvailability counts the live rows for a slot. Counts are never
// cached; every caller sees the committed state.
func (s *store) CountAvailability(date string, hour int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM availability WHERE date = ? AND hour = ?
	`, date, hour).Scan(&count)
	return count, err
}

// ListAvailability returns the occupants of the given hours on a date,
// with preferred display names resolved.
func (s *store) ListAvailability(date string, hours []int) ([]AvailabilityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []AvailabilityEntry{}
	if len(hours) == 0 {
		return entries, nil
	}

	query := `
		SELECT a.user_id, COALESCE(NULLIF(u.custom_name, ''), NULLIF(u.name, ''), 'Player'), a.hour
		FROM availability a
		JOIN users u ON u.id = a.user_id
		WHERE a.date = ? AND a.hour IN (?`
	args := []any{date, hours[0]}
	for _, h := range hours[1:] {
		query += ",?"
		args = append(args, h)
	}
	query += ") ORDER BY a.hour, a.user_id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry AvailabilityEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.Hour); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetGrid returns every availability row on or after fromDate, joined with
// the owning users, for the weekly grid view.
func (s *store) GetGrid(fromDate string) ([]GridEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT a.date, a.hour, a.user_id, COALESCE(NULLIF(u.custom_name, ''), NULLIF(u.name, ''), 'Player'), u.image
		FROM availability a
		JOIN users u ON u.id = a.user_id
		WHERE a.date >= ?
		ORDER BY a.date, a.hour
	`, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []GridEntry{}
	for rows.Next() {
		var entry GridEntry
		if err := rows.Scan(&entry.Date, &entry.Hour, &entry.UserID, &entry.Name, &entry.Image); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetSlotStatus reads the ledger row for a window start. A missing row
// returns nil, which callers treat as unannounced.
func (s *store) GetSlotStatus(date string, hour int) (*SlotStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var status SlotStatus
	err := s.db.QueryRow(`
		SELECT date, hour, golden_announced FROM slot_status WHERE date = ? AND hour = ?
	`, date, hour).Scan(&status.Date, &status.Hour, &status.GoldenAnnounced)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot status: %w", err)
	}
	return &status, nil
}

// SetSlotStatus upserts the ledger flag unconditionally.
func (s *store) SetSlotStatus(date string, hour int, goldenAnnounced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO slot_status (date, hour, golden_announced) VALUES (?, ?, ?)
		ON CONFLICT(date, hour) DO UPDATE SET golden_announced = excluded.golden_announced;
	`, date, hour, goldenAnnounced)
	return err
}

// MarkGoldenAnnounced flips the ledger row to announced. The conditional
// update means exactly one of any number of racing callers observes the
// transition.
func (s *store) MarkGoldenAnnounced(date string, hour int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO slot_status (date, hour, golden_announced) VALUES (?, ?, 1)
		ON CONFLICT(date, hour) DO UPDATE SET golden_announced = 1
		WHERE slot_status.golden_announced = 0;
	`, date, hour)
	if err != nil {
		return false, fmt.Errorf("failed to mark golden announced: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClearGoldenAnnounced flips an announced row back. Rows that were never
// announced report false so revocations cannot fire spuriously.
func (s *store) ClearGoldenAnnounced(date string, hour int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE slot_status SET golden_announced = 0
		WHERE date = ? AND hour = ? AND golden_announced = 1;
	`, date, hour)
	if err != nil {
		return false, fmt.Errorf("failed to clear golden announced: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Clear wipes availability and the ledger. Intended for tests and the admin
// /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"availability", "slot_status"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}
