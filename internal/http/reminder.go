package http

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
)

// VoteReminderHandler is hit by the weekly scheduler. It looks for upcoming
// calls with missing answers and nudges the channel, naming the players who
// still owe one. Nothing is sent when there is nothing to chase.
func (s *Server) VoteReminderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekStart := r.URL.Query().Get("weekStart")
		if weekStart == "" {
			weekStart = nextMonday(time.Now()).Format("2006-01-02")
		}
		today := time.Now().Format("2006-01-02")

		gaps, err := s.Calls.PendingVotes(today)
		if err != nil {
			log.Error("Failed to compute pending votes", "error", err)
			http.Error(w, "Failed to compute pending votes", http.StatusInternalServerError)
			return
		}
		if len(gaps) == 0 {
			log.Info("No missing votes, reminder skipped")
			writeJSON(w, http.StatusOK, map[string]any{"sent": false, "missing": 0})
			return
		}

		isDryRun := isDryRunFromContext(r)
		reminder := calls.VoteReminder{WeekStart: weekStart, Gaps: gaps}
		if err := s.Notifier.SendVoteReminder(reminder, isDryRun); err != nil {
			log.Error("Failed to send vote reminder", "error", err, "weekStart", weekStart)
			http.Error(w, "Failed to send vote reminder", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sent": true, "missing": len(gaps)})
	}
}

// nextMonday returns the Monday strictly after t's day.
func nextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}
