package planner_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/planifive/planifive/internal/database"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine   *planner.Engine
	store    planner.Store
	notifier *notifier.Mock
	metrics  *metrics.Mock
	teardown func()
}

// setupEngine wires an engine against a real in-memory database so the
// ledger transitions behave exactly as in production. The threshold is
// lowered to 2 to keep scenarios small.
func setupEngine(t *testing.T) engineFixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	rosterStore := roster.New(db)
	users := make([]roster.UserInfo, 0, 6)
	for i := 1; i <= 6; i++ {
		users = append(users, roster.UserInfo{
			ID:   fmt.Sprintf("u%d", i),
			Name: fmt.Sprintf("Player %d", i),
		})
	}
	require.NoError(t, rosterStore.UpsertUsers(users))

	store := planner.NewStore(db)
	notifierMock := notifier.NewMock()
	metricsMock := metrics.NewMock()
	params := planner.WindowParams{
		Threshold:    2,
		DayStartHour: 8,
		DayEndHour:   23,
		WindowLength: 3,
	}
	engine := planner.NewEngine(store, rosterStore, notifierMock, metricsMock, params)

	return engineFixture{
		engine:   engine,
		store:    store,
		notifier: notifierMock,
		metrics:  metricsMock,
		teardown: teardown,
	}
}

// fillSlot toggles the given users into one slot.
func fillSlot(t *testing.T, f engineFixture, date string, hour int, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		result, err := f.engine.Toggle(id, date, hour, false)
		require.NoError(t, err)
		require.Equal(t, "added", result.Status)
	}
}

func TestToggleAddAndRemove(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	result, err := f.engine.Toggle("u1", "2026-03-14", 14, false)
	require.NoError(t, err)
	assert.Equal(t, "added", result.Status)
	assert.Equal(t, 1, result.Count)

	result, err = f.engine.Toggle("u1", "2026-03-14", 14, false)
	require.NoError(t, err)
	assert.Equal(t, "removed", result.Status)
	assert.Equal(t, 0, result.Count)

	assert.Equal(t, 2, f.metrics.TogglesProcessed())
}

func TestToggleValidation(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	_, err := f.engine.Toggle("u1", "not-a-date", 14, false)
	assert.ErrorIs(t, err, planner.ErrInvalidDate)

	_, err = f.engine.Toggle("u1", "2026-03-14", 7, false)
	assert.ErrorIs(t, err, planner.ErrInvalidHour)

	_, err = f.engine.Toggle("u1", "2026-03-14", 24, false)
	assert.ErrorIs(t, err, planner.ErrInvalidHour)

	_, err = f.engine.Toggle("ghost", "2026-03-14", 14, false)
	assert.ErrorIs(t, err, planner.ErrUnknownUser)

	// Nothing was persisted or announced.
	count, err := f.store.CountAvailability("2026-03-14", 14)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, f.notifier.GoldenAnnouncementCalls)
}

func TestGoldenAnnouncementFiresOnce(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	assert.Empty(t, f.notifier.GoldenAnnouncementCalls, "two full slots are not a window")

	fillSlot(t, f, date, 14, "u1", "u2")
	require.Len(t, f.notifier.GoldenAnnouncementCalls, 1)
	window := f.notifier.GoldenAnnouncementCalls[0]
	assert.Equal(t, date, window.Date)
	assert.Equal(t, 12, window.StartHour)
	assert.Equal(t, 15, window.EndHour)
	assert.ElementsMatch(t, []string{"Player 1", "Player 2"}, window.Players)
	assert.Equal(t, 1, f.metrics.GoldenAnnounced())

	// The window stays announced: further joins inside it are silent.
	fillSlot(t, f, date, 13, "u3")
	fillSlot(t, f, date, 12, "u4")
	assert.Len(t, f.notifier.GoldenAnnouncementCalls, 1)

	status, err := f.store.GetSlotStatus(date, 12)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.GoldenAnnounced)
}

func TestRevocationOnQuorumBreak(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	fillSlot(t, f, date, 14, "u1", "u2")
	require.Len(t, f.notifier.GoldenAnnouncementCalls, 1)

	// u2 pulls out of the middle slot, breaking the window.
	result, err := f.engine.Toggle("u2", date, 13, false)
	require.NoError(t, err)
	assert.Equal(t, "removed", result.Status)

	require.Len(t, f.notifier.GoldenRevocationCalls, 1)
	revocation := f.notifier.GoldenRevocationCalls[0]
	assert.Equal(t, date, revocation.Date)
	assert.Equal(t, 12, revocation.StartHour)
	assert.Equal(t, 15, revocation.EndHour)
	assert.Equal(t, 13, revocation.Hour)
	assert.Equal(t, "Player 2", revocation.ByUser)
	assert.Equal(t, 1, f.metrics.GoldenRevoked())

	status, err := f.store.GetSlotStatus(date, 12)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.GoldenAnnounced)
}

func TestAnnounceRevokeAlternation(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	fillSlot(t, f, date, 14, "u1", "u2")

	// Leave, rejoin, leave again. Every break notifies, every rebuild
	// re-announces, never twice in a row.
	_, err := f.engine.Toggle("u1", date, 14, false)
	require.NoError(t, err)
	_, err = f.engine.Toggle("u1", date, 14, false)
	require.NoError(t, err)
	_, err = f.engine.Toggle("u1", date, 14, false)
	require.NoError(t, err)

	assert.Len(t, f.notifier.GoldenAnnouncementCalls, 2)
	assert.Len(t, f.notifier.GoldenRevocationCalls, 2)
}

func TestNoSpuriousRevocation(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	// Slots filled but never forming a window.
	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 14, "u1", "u2")

	_, err := f.engine.Toggle("u1", date, 12, false)
	require.NoError(t, err)

	assert.Empty(t, f.notifier.GoldenRevocationCalls)
	assert.Equal(t, 0, f.metrics.GoldenRevoked())
}

func TestRemovalOutsideAnnouncedWindow(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	fillSlot(t, f, date, 14, "u1", "u2")
	fillSlot(t, f, date, 17, "u3")
	require.Len(t, f.notifier.GoldenAnnouncementCalls, 1)

	// Dropping a lone slot far from the window must not revoke it.
	_, err := f.engine.Toggle("u3", date, 17, false)
	require.NoError(t, err)

	assert.Empty(t, f.notifier.GoldenRevocationCalls)
	status, err := f.store.GetSlotStatus(date, 12)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.GoldenAnnounced)
}

func TestBreakCanRevokeMultipleWindows(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	// Filling hours 10..14 announces each overlapping window as it
	// completes: starts 10, 11 and 12 all end up announced.
	for hour := 10; hour <= 14; hour++ {
		fillSlot(t, f, date, hour, "u1", "u2")
	}
	require.Len(t, f.notifier.GoldenAnnouncementCalls, 3)
	announcedStarts := []int{}
	for _, window := range f.notifier.GoldenAnnouncementCalls {
		announcedStarts = append(announcedStarts, window.StartHour)
	}
	assert.ElementsMatch(t, []int{10, 11, 12}, announcedStarts)

	// Hour 12 sits in all three announced windows.
	_, err := f.engine.Toggle("u1", date, 12, false)
	require.NoError(t, err)

	require.Len(t, f.notifier.GoldenRevocationCalls, 3)
	starts := []int{}
	for _, revocation := range f.notifier.GoldenRevocationCalls {
		starts = append(starts, revocation.StartHour)
	}
	assert.ElementsMatch(t, []int{10, 11, 12}, starts)
}

func TestLowestStartWinsOnSimultaneousQualification(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	// Hours 8,9,11,12 full; the toggle at 10 completes three candidate
	// windows at once. The lowest start must be the one announced.
	for _, hour := range []int{8, 9, 11, 12} {
		fillSlot(t, f, date, hour, "u1", "u2")
	}
	fillSlot(t, f, date, 10, "u1", "u2")

	require.Len(t, f.notifier.GoldenAnnouncementCalls, 1)
	assert.Equal(t, 8, f.notifier.GoldenAnnouncementCalls[0].StartHour)
}

func TestNotifierFailureDoesNotRollBack(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	f.notifier.SendGoldenAnnouncementFunc = func(window planner.GoldenWindow, dryRun bool) error {
		return fmt.Errorf("sink down")
	}

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	fillSlot(t, f, date, 14, "u1", "u2")

	// The ledger committed before the send, so the failed delivery is lost
	// rather than retried.
	status, err := f.store.GetSlotStatus(date, 12)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.GoldenAnnounced)

	fillSlot(t, f, date, 13, "u3")
	assert.Len(t, f.notifier.GoldenAnnouncementCalls, 1, "no re-announcement after a failed send")
}

// pausableStore holds the first announced-mark open until resume is closed,
// so a test can commit a concurrent toggle in the gap between the window
// scan and the ledger transition.
type pausableStore struct {
	planner.Store
	pauseOnce sync.Once
	reached   chan struct{}
	resume    chan struct{}
}

func (s *pausableStore) MarkGoldenAnnounced(date string, hour int) (bool, error) {
	s.pauseOnce.Do(func() {
		close(s.reached)
		<-s.resume
	})
	return s.Store.MarkGoldenAnnounced(date, hour)
}

func TestStaleAnnounceUndoneWhenQuorumDropsMidFlight(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	rosterStore := roster.New(db)
	require.NoError(t, rosterStore.UpsertUsers([]roster.UserInfo{
		{ID: "u1", Name: "Player 1"},
		{ID: "u2", Name: "Player 2"},
	}))

	store := &pausableStore{
		Store:   planner.NewStore(db),
		reached: make(chan struct{}),
		resume:  make(chan struct{}),
	}
	notifierMock := notifier.NewMock()
	metricsMock := metrics.NewMock()
	params := planner.WindowParams{
		Threshold:    2,
		DayStartHour: 8,
		DayEndHour:   23,
		WindowLength: 3,
	}
	engine := planner.NewEngine(store, rosterStore, notifierMock, metricsMock, params)
	date := "2026-03-14"

	for _, hour := range []int{12, 13} {
		for _, id := range []string{"u1", "u2"} {
			_, err := engine.Toggle(id, date, hour, false)
			require.NoError(t, err)
		}
	}
	_, err = engine.Toggle("u1", date, 14, false)
	require.NoError(t, err)

	// u2 completes the window at 14; the announce pauses between its scan
	// and the ledger transition.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := engine.Toggle("u2", date, 14, false)
		assert.NoError(t, err)
	}()
	<-store.reached

	// u1 pulls out of hour 13 while the announce is in flight. The ledger
	// is still unannounced, so this removal has nothing to revoke.
	_, err = engine.Toggle("u1", date, 13, false)
	require.NoError(t, err)
	assert.Empty(t, notifierMock.GoldenRevocationCalls)

	close(store.resume)
	<-done

	// The announce re-checked the live counts after committing its mark,
	// found hour 13 below quorum and undid itself.
	assert.Empty(t, notifierMock.GoldenAnnouncementCalls, "stale window must not announce")
	assert.Equal(t, 0, metricsMock.GoldenAnnounced())
	status, err := store.GetSlotStatus(date, 12)
	require.NoError(t, err)
	if status != nil {
		assert.False(t, status.GoldenAnnounced, "ledger must not stay announced below quorum")
	}
}

func TestConcurrentTogglesAnnounceOnce(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()
	date := "2026-03-14"

	fillSlot(t, f, date, 12, "u1", "u2")
	fillSlot(t, f, date, 13, "u1", "u2")
	fillSlot(t, f, date, 14, "u1")

	// Several players complete the window at the same moment. Exactly one
	// of the racing toggles may announce.
	var wg sync.WaitGroup
	for _, id := range []string{"u2", "u3", "u4", "u5"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.engine.Toggle(userID, date, 14, false)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Len(t, f.notifier.GoldenAnnouncementCalls, 1)
	assert.Equal(t, 1, f.metrics.GoldenAnnounced())
}
