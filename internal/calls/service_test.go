package calls_test

import (
	"testing"

	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/database"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/pubsub"
	"github.com/planifive/planifive/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service  *calls.Service
	grid     planner.Store
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	teardown func()
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	rosterStore := roster.New(db)
	require.NoError(t, rosterStore.UpsertUsers([]roster.UserInfo{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: "Bob"},
		{ID: "u3", Name: "Carol"},
	}))

	grid := planner.NewStore(db)
	notifierMock := notifier.NewMock()
	metricsMock := metrics.NewMock()
	pubsubMock := pubsub.NewMock()
	params := planner.WindowParams{
		Threshold:    10,
		DayStartHour: 8,
		DayEndHour:   23,
		WindowLength: 3,
	}
	service := calls.NewService(calls.NewStore(db), grid, rosterStore, notifierMock, metricsMock, pubsubMock, params)

	return serviceFixture{
		service:  service,
		grid:     grid,
		notifier: notifierMock,
		metrics:  metricsMock,
		pubsub:   pubsubMock,
		teardown: teardown,
	}
}

func acceptedIDs(participants *calls.Participants) []string {
	ids := []string{}
	for _, ref := range participants.Accepted {
		ids = append(ids, ref.ID)
	}
	return ids
}

func TestCreateCallSyncsCreatorSpan(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1",
		Date:      "2026-03-14",
		Hour:      18,
		Duration:  90,
		Location:  "Urban Soccer",
	}, false)
	require.NoError(t, err)
	require.NotEmpty(t, call.ID)

	// A 90-minute call claims five hourly slots for its creator.
	for hour := 18; hour <= 22; hour++ {
		has, err := f.grid.HasAvailability("u1", "2026-03-14", hour)
		require.NoError(t, err)
		assert.True(t, has, "creator should hold hour %d", hour)
	}
	has, err := f.grid.HasAvailability("u1", "2026-03-14", 23)
	require.NoError(t, err)
	assert.False(t, has)

	require.Len(t, f.notifier.CallAnnouncementCalls, 1)
	announcement := f.notifier.CallAnnouncementCalls[0]
	assert.Equal(t, "Alice", announcement.CreatorName)
	assert.Equal(t, 10, announcement.MatchSize)
	assert.Equal(t, []string{"u1"}, acceptedIDs(&announcement.Participants), "creator attends implicitly")

	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, calls.TopicCallSync, f.pubsub.SendMessageCalls[0].Topic)
	event, ok := f.pubsub.SendMessageCalls[0].Data.(calls.Event)
	require.True(t, ok)
	assert.Equal(t, call.ID, event.CallID)
	assert.Equal(t, "created", event.Kind)
}

func TestCreateCallValidation(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	_, err := f.service.Create(&calls.Call{CreatorID: "u1", Date: "bad", Hour: 18, Duration: 60}, false)
	assert.ErrorIs(t, err, planner.ErrInvalidDate)

	_, err = f.service.Create(&calls.Call{CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 45}, false)
	assert.ErrorIs(t, err, calls.ErrInvalidDuration)

	_, err = f.service.Create(&calls.Call{CreatorID: "u1", Date: "2026-03-14", Hour: 7, Duration: 60}, false)
	assert.ErrorIs(t, err, planner.ErrInvalidHour)

	_, err = f.service.Create(&calls.Call{CreatorID: "ghost", Date: "2026-03-14", Hour: 18, Duration: 60}, false)
	assert.ErrorIs(t, err, planner.ErrUnknownUser)

	assert.Empty(t, f.notifier.CallAnnouncementCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls)
}

func TestRespondAcceptSyncsSpan(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)

	participants, err := f.service.Respond(call.ID, "u2", calls.StatusAccepted, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"u1", "u2"}, acceptedIDs(participants))
	for hour := 18; hour <= 21; hour++ {
		has, err := f.grid.HasAvailability("u2", "2026-03-14", hour)
		require.NoError(t, err)
		assert.True(t, has, "accept syncs hour %d", hour)
	}
	assert.Equal(t, 1, f.metrics.CallResponses())

	// created + responded
	require.Len(t, f.pubsub.SendMessageCalls, 2)
	event, ok := f.pubsub.SendMessageCalls[1].Data.(calls.Event)
	require.True(t, ok)
	assert.Equal(t, "responded", event.Kind)
}

func TestRespondDeclineOverridesGrid(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)

	// u2 holds the whole span on the grid, then explicitly declines.
	for hour := 18; hour <= 21; hour++ {
		require.NoError(t, f.grid.AddAvailability("u2", "2026-03-14", hour))
	}
	participants, err := f.service.Respond(call.ID, "u2", calls.StatusDeclined, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, acceptedIDs(participants))
	require.Len(t, participants.Declined, 1)
	assert.Equal(t, "u2", participants.Declined[0].ID)
	assert.Equal(t, "Bob", participants.Declined[0].Name)

	// The decline does not touch the grid rows themselves.
	has, err := f.grid.HasAvailability("u2", "2026-03-14", 18)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRespondValidation(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)

	_, err = f.service.Respond(call.ID, "u2", "MAYBE", false)
	assert.ErrorIs(t, err, calls.ErrInvalidStatus)

	_, err = f.service.Respond(call.ID, "ghost", calls.StatusAccepted, false)
	assert.ErrorIs(t, err, planner.ErrUnknownUser)

	_, err = f.service.Respond("missing", "u2", calls.StatusAccepted, false)
	assert.ErrorIs(t, err, calls.ErrCallNotFound)
}

func TestCancelCreatorOnly(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)

	err = f.service.Cancel(call.ID, "u2", false)
	assert.ErrorIs(t, err, calls.ErrNotCreator)

	require.NoError(t, f.service.Cancel(call.ID, "u1", false))

	_, err = f.service.Get(call.ID)
	assert.ErrorIs(t, err, calls.ErrCallNotFound)

	// The creator's synced availability is withdrawn with the call.
	for hour := 18; hour <= 21; hour++ {
		has, err := f.grid.HasAvailability("u1", "2026-03-14", hour)
		require.NoError(t, err)
		assert.False(t, has)
	}

	require.Len(t, f.notifier.CallCancellationCalls, 1)
	assert.Equal(t, "Alice", f.notifier.CallCancellationCalls[0].CreatorName)

	lastEvent, ok := f.pubsub.SendMessageCalls[len(f.pubsub.SendMessageCalls)-1].Data.(calls.Event)
	require.True(t, ok)
	assert.Equal(t, "cancelled", lastEvent.Kind)
}

func TestListResolvesParticipants(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	call, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)
	_, err = f.service.Respond(call.ID, "u3", calls.StatusAccepted, false)
	require.NoError(t, err)

	announcements, err := f.service.List("2026-03-14")
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, call.ID, announcements[0].Call.ID)
	assert.ElementsMatch(t, []string{"u1", "u3"}, acceptedIDs(&announcements[0].Participants))
}

func TestDryRunSkipsPublish(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	_, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, true)
	require.NoError(t, err)

	assert.Empty(t, f.pubsub.SendMessageCalls)
	// The announcement still goes through the notifier, which handles the
	// dry run itself.
	assert.Len(t, f.notifier.CallAnnouncementCalls, 1)
}

func TestPendingVotes(t *testing.T) {
	f := setupService(t)
	defer f.teardown()

	// No upcoming calls means nobody owes an answer.
	gaps, err := f.service.PendingVotes("2026-03-01")
	require.NoError(t, err)
	assert.Empty(t, gaps)

	first, err := f.service.Create(&calls.Call{
		CreatorID: "u1", Date: "2026-03-14", Hour: 18, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)
	second, err := f.service.Create(&calls.Call{
		CreatorID: "u2", Date: "2026-03-21", Hour: 19, Duration: 60, Location: "Pitch",
	}, false)
	require.NoError(t, err)

	// Creators attend implicitly, so each only owes the other's call.
	// Carol has answered nothing and owes both dates.
	gaps, err = f.service.PendingVotes("2026-03-01")
	require.NoError(t, err)
	byUser := map[string][]string{}
	for _, gap := range gaps {
		byUser[gap.UserID] = gap.MissingDates
	}
	assert.Equal(t, []string{"2026-03-21"}, byUser["u1"])
	assert.Equal(t, []string{"2026-03-14"}, byUser["u2"])
	assert.Equal(t, []string{"2026-03-14", "2026-03-21"}, byUser["u3"])

	// A decline counts as an answer just as much as an accept.
	_, err = f.service.Respond(first.ID, "u2", calls.StatusDeclined, false)
	require.NoError(t, err)
	_, err = f.service.Respond(first.ID, "u3", calls.StatusAccepted, false)
	require.NoError(t, err)
	_, err = f.service.Respond(second.ID, "u1", calls.StatusAccepted, false)
	require.NoError(t, err)

	gaps, err = f.service.PendingVotes("2026-03-01")
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "u3", gaps[0].UserID)
	assert.Equal(t, "Carol", gaps[0].Name)
	assert.Equal(t, []string{"2026-03-21"}, gaps[0].MissingDates)

	// The cutoff hides calls already behind us.
	gaps, err = f.service.PendingVotes("2026-03-22")
	require.NoError(t, err)
	assert.Empty(t, gaps)
}
