package calls

import (
	"testing"

	"github.com/planifive/planifive/internal/planner"
	"github.com/stretchr/testify/assert"
)

func entry(userID string, hour int) planner.AvailabilityEntry {
	return planner.AvailabilityEntry{UserID: userID, Name: userID, Hour: hour}
}

func TestReconcileExplicitOnly(t *testing.T) {
	span := []int{14, 15, 16, 17}
	responses := []CallResponse{
		{UserID: "u1", Status: StatusAccepted},
		{UserID: "u2", Status: StatusDeclined},
	}

	accepted, declined := Reconcile(span, responses, nil)

	assert.Equal(t, []string{"u1"}, accepted)
	assert.Equal(t, []string{"u2"}, declined)
}

func TestReconcileImplicitNeedsFullSpan(t *testing.T) {
	span := []int{14, 15, 16, 17}

	// u1 covers the whole span, u2 misses one hour.
	availability := []planner.AvailabilityEntry{
		entry("u1", 14), entry("u1", 15), entry("u1", 16), entry("u1", 17),
		entry("u2", 14), entry("u2", 15), entry("u2", 16),
	}

	accepted, declined := Reconcile(span, nil, availability)

	assert.Equal(t, []string{"u1"}, accepted)
	assert.Empty(t, declined, "implicit absence is never a decline")
}

func TestReconcileExplicitOverridesImplicit(t *testing.T) {
	span := []int{14, 15, 16, 17}

	// u1 covers the span on the grid but explicitly declined.
	responses := []CallResponse{
		{UserID: "u1", Status: StatusDeclined},
	}
	availability := []planner.AvailabilityEntry{
		entry("u1", 14), entry("u1", 15), entry("u1", 16), entry("u1", 17),
	}

	accepted, declined := Reconcile(span, responses, availability)

	assert.Empty(t, accepted)
	assert.Equal(t, []string{"u1"}, declined)
}

func TestReconcileExplicitAcceptNotDuplicated(t *testing.T) {
	span := []int{14, 15, 16, 17}

	responses := []CallResponse{
		{UserID: "u1", Status: StatusAccepted},
	}
	availability := []planner.AvailabilityEntry{
		entry("u1", 14), entry("u1", 15), entry("u1", 16), entry("u1", 17),
	}

	accepted, declined := Reconcile(span, responses, availability)

	assert.Equal(t, []string{"u1"}, accepted)
	assert.Empty(t, declined)
}

func TestReconcileIgnoresHoursOutsideSpan(t *testing.T) {
	span := []int{14, 15, 16, 17}

	// u1 covers the span only if the out-of-span hour counted.
	availability := []planner.AvailabilityEntry{
		entry("u1", 14), entry("u1", 15), entry("u1", 16), entry("u1", 18),
	}

	accepted, declined := Reconcile(span, nil, availability)

	assert.Empty(t, accepted)
	assert.Empty(t, declined)
}

func TestSlotSpan(t *testing.T) {
	call := &Call{Hour: 14, Duration: 60}
	assert.Equal(t, []int{14, 15, 16, 17}, call.SlotSpan(23))

	call = &Call{Hour: 14, Duration: 90}
	assert.Equal(t, []int{14, 15, 16, 17, 18}, call.SlotSpan(23))

	// Spans clamp at the end of the bookable day.
	call = &Call{Hour: 21, Duration: 90}
	assert.Equal(t, []int{21, 22, 23}, call.SlotSpan(23))
}
