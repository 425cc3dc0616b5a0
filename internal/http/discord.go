package http

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
)

// Discord interaction protocol constants.
const (
	interactionPing             = 1
	interactionMessageComponent = 3

	interactionResponsePong           = 1
	interactionResponseChannelMessage = 4

	messageFlagEphemeral = 1 << 6
)

type interactionRequest struct {
	Type int `json:"type"`
	Data struct {
		CustomID string `json:"custom_id"`
	} `json:"data"`
	Member *struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"member"`
	User *struct {
		ID string `json:"id"`
	} `json:"user"`
}

type interactionResponse struct {
	Type int `json:"type"`
	Data *struct {
		Content string `json:"content"`
		Flags   int    `json:"flags"`
	} `json:"data,omitempty"`
}

// verifyInteraction checks the ed25519 signature Discord attaches to every
// interaction request. The signed payload is timestamp + raw body.
func verifyInteraction(publicKeyHex string, r *http.Request, body []byte) bool {
	pubKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		log.Error("Invalid Discord public key configured")
		return false
	}
	sig, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	timestamp := r.Header.Get("X-Signature-Timestamp")
	if timestamp == "" {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)
}

// DiscordInteractionsHandler answers Discord's interaction webhook. It
// handles the verification ping and the accept/decline/cancel buttons
// attached to call announcements.
func (s *Server) DiscordInteractionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		if !verifyInteraction(s.Cfg.Discord.PublicKey, r, body) {
			log.Warn("Rejected Discord interaction with invalid signature")
			http.Error(w, "invalid request signature", http.StatusUnauthorized)
			return
		}

		var interaction interactionRequest
		if err := json.Unmarshal(body, &interaction); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		switch interaction.Type {
		case interactionPing:
			writeJSON(w, http.StatusOK, interactionResponse{Type: interactionResponsePong})
		case interactionMessageComponent:
			s.handleCallButton(w, r, interaction)
		default:
			log.Warn("Unsupported Discord interaction type", "type", interaction.Type)
			http.Error(w, "unsupported interaction type", http.StatusBadRequest)
		}
	}
}

// handleCallButton resolves a call_accept / call_decline / call_cancel
// button press for the pressing user.
func (s *Server) handleCallButton(w http.ResponseWriter, r *http.Request, interaction interactionRequest) {
	userID := ""
	if interaction.Member != nil {
		userID = interaction.Member.User.ID
	} else if interaction.User != nil {
		userID = interaction.User.ID
	}
	if userID == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	action, callID, found := strings.Cut(interaction.Data.CustomID, ":")
	if !found {
		http.Error(w, "unknown component", http.StatusBadRequest)
		return
	}

	var status calls.ResponseStatus
	switch action {
	case "call_accept":
		status = calls.StatusAccepted
	case "call_decline":
		status = calls.StatusDeclined
	case "call_cancel":
		if err := s.Calls.Cancel(callID, userID, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to cancel call from Discord", "error", err, "callID", callID, "userID", userID)
			if err == calls.ErrNotCreator {
				writeEphemeral(w, "Only the creator can cancel this call.")
				return
			}
			writeEphemeral(w, "Sorry, that call could not be cancelled.")
			return
		}
		writeEphemeral(w, "Call cancelled.")
		return
	default:
		http.Error(w, "unknown component", http.StatusBadRequest)
		return
	}

	if status == calls.StatusDeclined {
		call, err := s.Calls.Get(callID)
		if err != nil {
			log.Error("Failed to load call for Discord response", "error", err, "callID", callID)
			writeEphemeral(w, "Sorry, that call could not be updated.")
			return
		}
		if call.CreatorID == userID {
			writeEphemeral(w, "The creator cannot decline their own call. Cancel it instead.")
			return
		}
	}

	participants, err := s.Calls.Respond(callID, userID, status, isDryRunFromContext(r))
	if err != nil {
		log.Error("Failed to record call response from Discord", "error", err, "callID", callID, "userID", userID)
		writeEphemeral(w, "Sorry, that call could not be updated.")
		return
	}

	content := fmt.Sprintf("You're in! %d player(s) signed up.", len(participants.Accepted))
	if status == calls.StatusDeclined {
		content = "Noted, you're out for this one."
	}
	writeEphemeral(w, content)
}

func writeEphemeral(w http.ResponseWriter, content string) {
	resp := interactionResponse{Type: interactionResponseChannelMessage}
	resp.Data = &struct {
		Content string `json:"content"`
		Flags   int    `json:"flags"`
	}{Content: content, Flags: messageFlagEphemeral}
	writeJSON(w, http.StatusOK, resp)
}
