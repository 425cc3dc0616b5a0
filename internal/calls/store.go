package calls

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewStore creates a new CallStore.
func NewStore(db *sql.DB) CallStore {
	return &store{
		db: db,
	}
}

// CreateCall persists a new call. A missing id is generated.
func (s *store) CreateCall(call *Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if call.CreatedAt == 0 {
		call.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO calls (id, creator_id, date, hour, duration, location, price, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, call.ID, call.CreatorID, call.Date, call.Hour, call.Duration, call.Location, call.Price, call.Comment, call.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

// GetCall retrieves a call by id.
func (s *store) GetCall(callID string) (*Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var call Call
	err := s.db.QueryRow(`
		SELECT id, creator_id, date, hour, duration, location, price, comment, created_at
		FROM calls WHERE id = ?
	`, callID).Scan(&call.ID, &call.CreatorID, &call.Date, &call.Hour, &call.Duration, &call.Location, &call.Price, &call.Comment, &call.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// ListCalls returns the calls on or after fromDate, soonest first.
func (s *store) ListCalls(fromDate string) ([]*Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, creator_id, date, hour, duration, location, price, comment, created_at
		FROM calls
		WHERE date >= ?
		ORDER BY date, hour
	`, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []*Call{}
	for rows.Next() {
		var call Call
		if err := rows.Scan(&call.ID, &call.CreatorID, &call.Date, &call.Hour, &call.Duration, &call.Location, &call.Price, &call.Comment, &call.CreatedAt); err != nil {
			return nil, err
		}
		calls = append(calls, &call)
	}
	return calls, rows.Err()
}

// DeleteCall removes a call. Responses cascade at the schema level.
func (s *store) DeleteCall(callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM calls WHERE id = ?", callID)
	if err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCallNotFound
	}
	return nil
}

// UpsertResponse records an explicit answer; repeated responses from the
// same user overwrite the previous one (last write wins).
func (s *store) UpsertResponse(response *CallResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if response.RespondedAt == 0 {
		response.RespondedAt = time.Now().Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO call_responses (call_id, user_id, status, responded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(call_id, user_id) DO UPDATE SET
			status = excluded.status,
			responded_at = excluded.responded_at;
	`, response.CallID, response.UserID, response.Status, response.RespondedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert call response: %w", err)
	}
	return nil
}

// GetResponses returns the explicit responses for a call, oldest first.
func (s *store) GetResponses(callID string) ([]CallResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT call_id, user_id, status, responded_at
		FROM call_responses
		WHERE call_id = ?
		ORDER BY responded_at, user_id
	`, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []CallResponse{}
	for rows.Next() {
		var response CallResponse
		if err := rows.Scan(&response.CallID, &response.UserID, &response.Status, &response.RespondedAt); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, rows.Err()
}
