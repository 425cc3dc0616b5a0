package calls

import "github.com/planifive/planifive/internal/planner"

// Reconcile merges explicit responses with implicit grid availability into
// final accepted and declined id lists. Responses are unique per user
// (the store upserts, last write wins), so partitioning is direct.
//
// A user is an implicit candidate only when they hold availability for
// every hour of the span. An explicit decline always overrides implicit
// presence; an explicit accept is never duplicated; implicit absence is
// never treated as a decline.
func Reconcile(span []int, responses []CallResponse, availability []planner.AvailabilityEntry) (acceptedIDs, declinedIDs []string) {
	acceptedSet := make(map[string]bool)
	declinedSet := make(map[string]bool)
	acceptedIDs = []string{}
	declinedIDs = []string{}

	for _, response := range responses {
		switch response.Status {
		case StatusAccepted:
			acceptedSet[response.UserID] = true
			acceptedIDs = append(acceptedIDs, response.UserID)
		case StatusDeclined:
			declinedSet[response.UserID] = true
			declinedIDs = append(declinedIDs, response.UserID)
		}
	}

	inSpan := make(map[int]bool, len(span))
	for _, h := range span {
		inSpan[h] = true
	}

	// Implicit candidates must cover the whole span.
	hourCover := make(map[string]map[int]bool)
	for _, entry := range availability {
		if !inSpan[entry.Hour] {
			continue
		}
		if hourCover[entry.UserID] == nil {
			hourCover[entry.UserID] = make(map[int]bool)
		}
		hourCover[entry.UserID][entry.Hour] = true
	}

	for _, entry := range availability {
		userID := entry.UserID
		if acceptedSet[userID] || declinedSet[userID] {
			continue
		}
		if len(hourCover[userID]) == len(span) {
			acceptedSet[userID] = true
			acceptedIDs = append(acceptedIDs, userID)
		}
	}

	return acceptedIDs, declinedIDs
}
