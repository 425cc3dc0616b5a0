package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
)

// CallSyncHandler consumes call lifecycle events from the Pub/Sub push
// subscription and refreshes the call announcement in the channel.
func (s *Server) CallSyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received call sync message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		event := calls.Event{}
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		// A cancelled call has no row left to announce, nothing to refresh.
		if event.Kind == "cancelled" {
			w.Write([]byte("OK"))
			return
		}

		isDryRun := isDryRunFromContext(r)
		if err := s.Calls.NotifyUpdate(event.CallID, isDryRun); err != nil {
			log.Error("Failed to refresh call announcement", "error", err, "callID", event.CallID)
			http.Error(w, "Failed to refresh call announcement", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
