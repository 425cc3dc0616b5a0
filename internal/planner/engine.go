package planner

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/metrics"
)

// Engine is the notification dedup controller. It turns individual
// availability toggles into at-most-once golden-window announcements and
// explicit revocations, using the slot-status ledger as its only memory.
type Engine struct {
	store    Store
	roster   Roster
	notifier Notifier
	metrics  metrics.Metrics
	params   WindowParams
}

// NewEngine creates a new Engine.
func NewEngine(store Store, roster Roster, notifier Notifier, metrics metrics.Metrics, params WindowParams) *Engine {
	return &Engine{
		store:    store,
		roster:   roster,
		notifier: notifier,
		metrics:  metrics,
		params:   params,
	}
}

// Params exposes the engine's tuning values to handlers that need them.
func (e *Engine) Params() WindowParams {
	return e.params
}

// Toggle flips one (user, date, hour) availability tuple and re-evaluates
// the golden-window state around it. Validation failures abort before any
// mutation. Notification failures are logged and swallowed: the grid and
// the ledger are authoritative whether or not the chat message lands.
func (e *Engine) Toggle(userID, rawDate string, hour int, dryRun bool) (*ToggleResult, error) {
	date, err := ParseDay(rawDate)
	if err != nil {
		return nil, err
	}
	if !e.params.HourInRange(hour) {
		return nil, ErrInvalidHour
	}
	user, err := e.roster.GetUser(userID)
	if err != nil {
		return nil, ErrUnknownUser
	}

	startTime := time.Now()
	defer func() {
		e.metrics.ObserveToggleDuration(time.Since(startTime).Seconds())
	}()

	has, err := e.store.HasAvailability(userID, date, hour)
	if err != nil {
		return nil, err
	}

	if has {
		if err := e.store.RemoveAvailability(userID, date, hour); err != nil {
			return nil, err
		}
		// Count AFTER the deletion committed.
		count, err := e.store.CountAvailability(date, hour)
		if err != nil {
			return nil, err
		}
		e.metrics.IncTogglesProcessed()
		if count < e.params.Threshold {
			e.revokeBrokenWindows(date, hour, user.DisplayName(), dryRun)
		}
		return &ToggleResult{Status: "removed", Count: count}, nil
	}

	if err := e.store.AddAvailability(userID, date, hour); err != nil {
		return nil, err
	}
	count, err := e.store.CountAvailability(date, hour)
	if err != nil {
		return nil, err
	}
	e.metrics.IncTogglesProcessed()
	if count >= e.params.Threshold {
		e.announceIfGolden(date, hour, dryRun)
	}
	return &ToggleResult{Status: "added", Count: count}, nil
}

// announceIfGolden scans the neighborhood of the added hour and, when a
// fully-qualifying window exists whose ledger row is still unannounced,
// flips the row and fires the announcement.
func (e *Engine) announceIfGolden(date string, hour int, dryRun bool) {
	hours := e.params.NeighborhoodHours(hour)
	entries, err := e.store.ListAvailability(date, hours)
	if err != nil {
		log.Error("Failed to list availability for window scan", "error", err, "date", date, "hour", hour)
		return
	}

	counts := make(SlotCounts, len(hours))
	for _, entry := range entries {
		counts[entry.Hour]++
	}

	start, ok := e.params.FindWindow(counts, hour)
	if !ok {
		return
	}

	// The ledger transition commits first; a concurrent toggle that lost
	// this race sees announced=true and stays silent.
	announced, err := e.store.MarkGoldenAnnounced(date, start)
	if err != nil {
		log.Error("Failed to mark golden window announced", "error", err, "date", date, "startHour", start)
		return
	}
	if !announced {
		log.Debug("Golden window already announced", "date", date, "startHour", start)
		return
	}

	// Re-validate on counts read after the mark committed. A removal that
	// landed between the scan above and the mark saw announced=false and
	// skipped its revocation, so the stale window must be undone here.
	fresh, err := e.store.ListAvailability(date, e.params.WindowHours(start))
	if err != nil {
		log.Error("Failed to re-check window after mark", "error", err, "date", date, "startHour", start)
		if _, clearErr := e.store.ClearGoldenAnnounced(date, start); clearErr != nil {
			log.Error("Failed to clear golden window after re-check error", "error", clearErr, "date", date, "startHour", start)
		}
		return
	}
	freshCounts := make(SlotCounts, e.params.WindowLength)
	for _, entry := range fresh {
		freshCounts[entry.Hour]++
	}
	for _, h := range e.params.WindowHours(start) {
		if !e.params.IsFull(freshCounts, h) {
			log.Debug("Golden window no longer full at commit time", "date", date, "startHour", start, "hour", h)
			if _, clearErr := e.store.ClearGoldenAnnounced(date, start); clearErr != nil {
				log.Error("Failed to clear stale golden window", "error", clearErr, "date", date, "startHour", start)
			}
			return
		}
	}

	window := GoldenWindow{
		Date:      date,
		StartHour: start,
		EndHour:   start + e.params.WindowLength,
		Players:   windowPlayers(fresh, start, start+e.params.WindowLength),
	}

	log.Info("Golden window detected", "date", date, "startHour", start, "players", len(window.Players))
	e.metrics.IncGoldenAnnounced()
	if err := e.notifier.SendGoldenAnnouncement(window, dryRun); err != nil {
		log.Error("Failed to send golden announcement", "error", err, "date", date, "startHour", start)
	}
}

// revokeBrokenWindows clears and revokes every announced window that
// contained the hour which just dropped below quorum. More than one window
// can revoke from a single removal.
func (e *Engine) revokeBrokenWindows(date string, hour int, byUser string, dryRun bool) {
	for _, start := range e.params.CandidateStarts(hour) {
		cleared, err := e.store.ClearGoldenAnnounced(date, start)
		if err != nil {
			log.Error("Failed to clear golden window", "error", err, "date", date, "startHour", start)
			continue
		}
		if !cleared {
			continue
		}

		revocation := GoldenRevocation{
			Date:      date,
			StartHour: start,
			EndHour:   start + e.params.WindowLength,
			Hour:      hour,
			ByUser:    byUser,
		}

		log.Info("Golden window broken", "date", date, "startHour", start, "byUser", byUser)
		e.metrics.IncGoldenRevoked()
		if err := e.notifier.SendGoldenRevocation(revocation, dryRun); err != nil {
			log.Error("Failed to send golden revocation", "error", err, "date", date, "startHour", start)
		}
	}
}

// windowPlayers collects the distinct occupants of [startHour, endHour),
// de-duplicated by user id, in first-seen order.
func windowPlayers(entries []AvailabilityEntry, startHour, endHour int) []string {
	seen := make(map[string]bool)
	players := []string{}
	for _, entry := range entries {
		if entry.Hour < startHour || entry.Hour >= endHour {
			continue
		}
		if seen[entry.UserID] {
			continue
		}
		seen[entry.UserID] = true
		players = append(players, entry.Name)
	}
	return players
}
