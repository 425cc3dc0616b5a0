package calls

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/planner"
)

// TopicCallSync is the pubsub topic call lifecycle events fan out on.
const TopicCallSync = "call-sync"

// Service coordinates calls, responses, and the reconciliation of explicit
// answers with the availability grid.
type Service struct {
	store    CallStore
	grid     Grid
	roster   Roster
	notifier Notifier
	metrics  metrics.Metrics
	pubsub   Publisher
	params   planner.WindowParams
}

// NewService creates a new call Service.
func NewService(store CallStore, grid Grid, roster Roster, notifier Notifier, metrics metrics.Metrics, pubsub Publisher, params planner.WindowParams) *Service {
	return &Service{
		store:    store,
		grid:     grid,
		roster:   roster,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
		params:   params,
	}
}

// Create validates and persists a new call, announces it, and syncs the
// creator's availability over the claimed span.
func (s *Service) Create(call *Call, dryRun bool) (*Call, error) {
	date, err := planner.ParseDay(call.Date)
	if err != nil {
		return nil, err
	}
	call.Date = date
	if call.Duration != 60 && call.Duration != 90 {
		return nil, ErrInvalidDuration
	}
	if !s.params.HourInRange(call.Hour) {
		return nil, planner.ErrInvalidHour
	}
	creator, err := s.roster.GetUser(call.CreatorID)
	if err != nil {
		return nil, planner.ErrUnknownUser
	}

	if err := s.store.CreateCall(call); err != nil {
		return nil, err
	}

	// The creator implicitly attends their own call.
	s.syncAvailability(call.CreatorID, call)

	log.Info("Call created", "callID", call.ID, "creator", creator.DisplayName(), "date", call.Date, "hour", call.Hour)

	if err := s.notifyAnnouncement(call, creator.DisplayName(), dryRun); err != nil {
		log.Error("Failed to announce call", "error", err, "callID", call.ID)
	}
	if !dryRun {
		if err := s.pubsub.SendMessage(TopicCallSync, Event{CallID: call.ID, Kind: "created"}); err != nil {
			log.Error("Failed to publish call event", "error", err, "callID", call.ID)
		}
	}
	return call, nil
}

// Respond upserts a user's explicit answer. An accept also syncs
// availability rows for the call's full span (create-if-absent); state
// changes commit regardless of notification delivery.
func (s *Service) Respond(callID, userID string, status ResponseStatus, dryRun bool) (*Participants, error) {
	if status != StatusAccepted && status != StatusDeclined {
		return nil, ErrInvalidStatus
	}
	if _, err := s.roster.GetUser(userID); err != nil {
		return nil, planner.ErrUnknownUser
	}
	call, err := s.store.GetCall(callID)
	if err != nil {
		return nil, err
	}

	response := &CallResponse{
		CallID:      callID,
		UserID:      userID,
		Status:      status,
		RespondedAt: time.Now().Unix(),
	}
	if err := s.store.UpsertResponse(response); err != nil {
		return nil, err
	}
	s.metrics.IncCallResponses()

	if status == StatusAccepted {
		s.syncAvailability(userID, call)
	}

	participants, err := s.ResolveParticipants(callID)
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := s.pubsub.SendMessage(TopicCallSync, Event{CallID: callID, Kind: "responded"}); err != nil {
			log.Error("Failed to publish call event", "error", err, "callID", callID)
		}
	}
	return participants, nil
}

// Cancel deletes a call on behalf of its creator, cascading the responses
// and removing the creator's previously-synced availability over the span.
func (s *Service) Cancel(callID, requesterID string, dryRun bool) error {
	call, err := s.store.GetCall(callID)
	if err != nil {
		return err
	}
	if call.CreatorID != requesterID {
		return ErrNotCreator
	}
	creator, err := s.roster.GetUser(call.CreatorID)
	if err != nil {
		return planner.ErrUnknownUser
	}

	for _, hour := range call.SlotSpan(s.params.DayEndHour) {
		if err := s.grid.RemoveAvailability(call.CreatorID, call.Date, hour); err != nil {
			log.Error("Failed to remove synced availability", "error", err, "callID", callID, "hour", hour)
		}
	}

	if err := s.store.DeleteCall(callID); err != nil {
		return err
	}

	log.Info("Call cancelled", "callID", callID, "creator", creator.DisplayName())

	if err := s.notifier.SendCallCancellation(Cancellation{Call: call, CreatorName: creator.DisplayName()}, dryRun); err != nil {
		log.Error("Failed to send call cancellation", "error", err, "callID", callID)
	}
	if !dryRun {
		if err := s.pubsub.SendMessage(TopicCallSync, Event{CallID: callID, Kind: "cancelled"}); err != nil {
			log.Error("Failed to publish call event", "error", err, "callID", callID)
		}
	}
	return nil
}

// Get returns a single call.
func (s *Service) Get(callID string) (*Call, error) {
	return s.store.GetCall(callID)
}

// List returns upcoming calls with their reconciled participants.
func (s *Service) List(fromDate string) ([]Announcement, error) {
	calls, err := s.store.ListCalls(fromDate)
	if err != nil {
		return nil, err
	}
	announcements := []Announcement{}
	for _, call := range calls {
		participants, err := s.ResolveParticipants(call.ID)
		if err != nil {
			return nil, err
		}
		creatorName := "Player"
		if creator, err := s.roster.GetUser(call.CreatorID); err == nil {
			creatorName = creator.DisplayName()
		}
		announcements = append(announcements, Announcement{
			Call:         call,
			CreatorName:  creatorName,
			Participants: *participants,
			MatchSize:    s.params.Threshold,
		})
	}
	return announcements, nil
}

// PendingVotes lists, per roster user, the upcoming call dates they have
// not answered. An empty result means there is nothing to remind about:
// either no upcoming calls exist or everyone has responded to all of them.
func (s *Service) PendingVotes(fromDate string) ([]VoteGap, error) {
	upcoming, err := s.store.ListCalls(fromDate)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, nil
	}

	responded := make(map[string]map[string]bool, len(upcoming))
	for _, call := range upcoming {
		responses, err := s.store.GetResponses(call.ID)
		if err != nil {
			return nil, err
		}
		byUser := make(map[string]bool, len(responses))
		for _, response := range responses {
			byUser[response.UserID] = true
		}
		responded[call.ID] = byUser
	}

	users, err := s.roster.GetAllUsers()
	if err != nil {
		return nil, err
	}

	gaps := []VoteGap{}
	for _, user := range users {
		missing := []string{}
		for _, call := range upcoming {
			// The creator implicitly attends; only other players owe an answer.
			if call.CreatorID == user.ID || responded[call.ID][user.ID] {
				continue
			}
			missing = append(missing, call.Date)
		}
		if len(missing) > 0 {
			gaps = append(gaps, VoteGap{UserID: user.ID, Name: user.DisplayName(), MissingDates: missing})
		}
	}
	return gaps, nil
}

// ResolveParticipants runs the reconciliation algorithm for one call:
// explicit responses first, then implicit full-span grid candidates.
func (s *Service) ResolveParticipants(callID string) (*Participants, error) {
	call, err := s.store.GetCall(callID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.GetResponses(callID)
	if err != nil {
		return nil, err
	}
	span := call.SlotSpan(s.params.DayEndHour)
	availability, err := s.grid.ListAvailability(call.Date, span)
	if err != nil {
		return nil, err
	}

	acceptedIDs, declinedIDs := Reconcile(span, responses, availability)

	refs, err := s.resolveRefs(append(append([]string{}, acceptedIDs...), declinedIDs...))
	if err != nil {
		return nil, err
	}
	participants := &Participants{Accepted: []UserRef{}, Declined: []UserRef{}}
	for _, id := range acceptedIDs {
		participants.Accepted = append(participants.Accepted, refs[id])
	}
	for _, id := range declinedIDs {
		participants.Declined = append(participants.Declined, refs[id])
	}
	return participants, nil
}

// NotifyUpdate re-announces a call with its current participant list. Used
// by the pubsub push consumer after a response lands.
func (s *Service) NotifyUpdate(callID string, dryRun bool) error {
	call, err := s.store.GetCall(callID)
	if err != nil {
		return err
	}
	creatorName := "Player"
	if creator, err := s.roster.GetUser(call.CreatorID); err == nil {
		creatorName = creator.DisplayName()
	}
	return s.notifyAnnouncement(call, creatorName, dryRun)
}

func (s *Service) notifyAnnouncement(call *Call, creatorName string, dryRun bool) error {
	participants, err := s.ResolveParticipants(call.ID)
	if err != nil {
		return err
	}
	return s.notifier.SendCallAnnouncement(Announcement{
		Call:         call,
		CreatorName:  creatorName,
		Participants: *participants,
		MatchSize:    s.params.Threshold,
	}, dryRun)
}

// syncAvailability upserts availability rows for the call's full span on
// behalf of the user. Existing rows are left untouched.
func (s *Service) syncAvailability(userID string, call *Call) {
	for _, hour := range call.SlotSpan(s.params.DayEndHour) {
		if err := s.grid.AddAvailability(userID, call.Date, hour); err != nil {
			log.Error("Failed to sync availability", "error", err, "callID", call.ID, "userID", userID, "hour", hour)
		}
	}
}

func (s *Service) resolveRefs(userIDs []string) (map[string]UserRef, error) {
	users, err := s.roster.GetUsers(userIDs)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]UserRef, len(userIDs))
	for _, id := range userIDs {
		refs[id] = UserRef{ID: id, Name: "Player"}
	}
	for _, user := range users {
		refs[user.ID] = UserRef{ID: user.ID, Name: user.DisplayName()}
	}
	return refs, nil
}
