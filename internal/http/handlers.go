package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/roster"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Anything not
// recognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidDate),
		errors.Is(err, planner.ErrInvalidHour),
		errors.Is(err, calls.ErrInvalidDuration),
		errors.Is(err, calls.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, planner.ErrUnknownUser),
		errors.Is(err, roster.ErrUserNotFound),
		errors.Is(err, calls.ErrCallNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, calls.ErrNotCreator):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Error("Unhandled error in handler", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear all stores")
		s.Planner.Clear()
		s.Roster.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// UsersHandler lists the roster on GET and upserts players on POST.
func (s *Server) UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			users, err := s.Roster.GetAllUsers()
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, users)
		case http.MethodPost:
			var users []roster.UserInfo
			if err := json.NewDecoder(r.Body).Decode(&users); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if err := s.Roster.UpsertUsers(users); err != nil {
				writeError(w, err)
				return
			}
			log.Info("Upserted users", "count", len(users))
			writeJSON(w, http.StatusOK, map[string]int{"upserted": len(users)})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) SetCustomNameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID     string `json:"userId"`
			CustomName string `json:"customName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "userId is required", http.StatusBadRequest)
			return
		}
		if err := s.Roster.SetCustomName(req.UserID, req.CustomName); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// slotDetail is one cell of the grid read model.
type slotDetail struct {
	Count           int      `json:"count"`
	Players         []string `json:"players"`
	GoldenAnnounced bool     `json:"golden_announced"`
}

// GridHandler returns the forward-looking availability grid, keyed by
// "date-hour". When a userId is given, the response also lists that
// player's own slots.
func (s *Server) GridHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fromDate := r.URL.Query().Get("from")
		if fromDate == "" {
			fromDate = time.Now().Format("2006-01-02")
		} else {
			parsed, err := planner.ParseDay(fromDate)
			if err != nil {
				writeError(w, err)
				return
			}
			fromDate = parsed
		}
		userID := r.URL.Query().Get("userId")

		entries, err := s.Planner.GetGrid(fromDate)
		if err != nil {
			writeError(w, err)
			return
		}

		slots := make(map[string]*slotDetail)
		mySlots := []string{}
		for _, entry := range entries {
			key := fmt.Sprintf("%s-%d", entry.Date, entry.Hour)
			detail, ok := slots[key]
			if !ok {
				status, err := s.Planner.GetSlotStatus(entry.Date, entry.Hour)
				if err != nil {
					writeError(w, err)
					return
				}
				detail = &slotDetail{Players: []string{}}
				if status != nil {
					detail.GoldenAnnounced = status.GoldenAnnounced
				}
				slots[key] = detail
			}
			detail.Count++
			detail.Players = append(detail.Players, entry.Name)
			if userID != "" && entry.UserID == userID {
				mySlots = append(mySlots, key)
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"slots":   slots,
			"mySlots": mySlots,
		})
	}
}

// ToggleHandler flips one availability slot for a player and triggers the
// golden-window evaluation around it.
func (s *Server) ToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID string `json:"userId"`
			Date   string `json:"date"`
			Hour   int    `json:"hour"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "userId is required", http.StatusBadRequest)
			return
		}

		result, err := s.Engine.Toggle(req.UserID, req.Date, req.Hour, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// MatchesHandler lists the match history on GET and records a result on POST.
func (s *Server) MatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			matches, err := s.Roster.GetAllMatches()
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matches)
		case http.MethodPost:
			var match roster.PlayedMatch
			if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if _, err := planner.ParseDay(match.Date); err != nil {
				writeError(w, err)
				return
			}
			if err := s.Roster.RecordMatch(&match); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, match)
		case http.MethodDelete:
			matchID := r.URL.Query().Get("matchID")
			if matchID == "" {
				http.Error(w, "matchID is required", http.StatusBadRequest)
				return
			}
			if err := s.Roster.DeleteMatch(matchID); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
