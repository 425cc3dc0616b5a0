package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/planifive/planifive/internal/calls"
)

// CallsHandler lists open calls on GET and creates a new call on POST.
func (s *Server) CallsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fromDate := r.URL.Query().Get("from")
			if fromDate == "" {
				fromDate = time.Now().Format("2006-01-02")
			}
			announcements, err := s.Calls.List(fromDate)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, announcements)
		case http.MethodPost:
			var req struct {
				CreatorID string  `json:"creatorId"`
				Date      string  `json:"date"`
				Hour      int     `json:"hour"`
				Duration  int     `json:"duration"`
				Location  string  `json:"location"`
				Price     *string `json:"price,omitempty"`
				Comment   *string `json:"comment,omitempty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			call := &calls.Call{
				CreatorID: req.CreatorID,
				Date:      req.Date,
				Hour:      req.Hour,
				Duration:  req.Duration,
				Location:  req.Location,
				Price:     req.Price,
				Comment:   req.Comment,
			}
			created, err := s.Calls.Create(call, isDryRunFromContext(r))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, created)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// RespondCallHandler records an explicit ACCEPTED or DECLINED answer.
func (s *Server) RespondCallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			CallID string `json:"callId"`
			UserID string `json:"userId"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.CallID == "" || req.UserID == "" {
			http.Error(w, "callId and userId are required", http.StatusBadRequest)
			return
		}

		participants, err := s.Calls.Respond(req.CallID, req.UserID, calls.ResponseStatus(req.Status), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, participants)
	}
}

// CancelCallHandler deletes a call. Only its creator may do so.
func (s *Server) CancelCallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			CallID string `json:"callId"`
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.CallID == "" || req.UserID == "" {
			http.Error(w, "callId and userId are required", http.StatusBadRequest)
			return
		}

		if err := s.Calls.Cancel(req.CallID, req.UserID, isDryRunFromContext(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}
