package planner

import "time"

// SlotCounts maps an hour to the number of distinct players holding it.
type SlotCounts map[int]int

// WindowParams carries the tuning values for quorum evaluation and window
// detection. The zero value is unusable; build one from config.PlannerConfig.
type WindowParams struct {
	Threshold    int
	DayStartHour int
	DayEndHour   int
	WindowLength int
}

// HourInRange reports whether a single hour is bookable at all.
func (p WindowParams) HourInRange(hour int) bool {
	return hour >= p.DayStartHour && hour <= p.DayEndHour
}

// IsFull reports whether an hour has reached quorum. Hours outside the
// bookable range never count as full, so windows cannot wrap into an
// adjacent day or into undefined hours.
func (p WindowParams) IsFull(counts SlotCounts, hour int) bool {
	if !p.HourInRange(hour) {
		return false
	}
	return counts[hour] >= p.Threshold
}

// validStart reports whether a window starting at start fits entirely
// inside the bookable day.
func (p WindowParams) validStart(start int) bool {
	return start >= p.DayStartHour && start+p.WindowLength-1 <= p.DayEndHour
}

// CandidateStarts returns the window start hours whose window would include
// changedHour, lowest first. Starts whose window would leave the bookable
// day are excluded.
func (p WindowParams) CandidateStarts(changedHour int) []int {
	starts := make([]int, 0, p.WindowLength)
	for start := changedHour - p.WindowLength + 1; start <= changedHour; start++ {
		if p.validStart(start) {
			starts = append(starts, start)
		}
	}
	return starts
}

// FindWindow scans the candidate windows around changedHour and returns the
// start hour of the first one in which every slot is full. Candidates are
// checked lowest start first, which is the deterministic tie-break when
// several windows qualify at once.
func (p WindowParams) FindWindow(counts SlotCounts, changedHour int) (int, bool) {
	for _, start := range p.CandidateStarts(changedHour) {
		full := true
		for h := start; h < start+p.WindowLength; h++ {
			if !p.IsFull(counts, h) {
				full = false
				break
			}
		}
		if full {
			return start, true
		}
	}
	return 0, false
}

// WindowHours returns the hours a window starting at start spans.
func (p WindowParams) WindowHours(start int) []int {
	hours := make([]int, 0, p.WindowLength)
	for h := start; h < start+p.WindowLength; h++ {
		hours = append(hours, h)
	}
	return hours
}

// NeighborhoodHours returns every hour whose occupancy can influence the
// windows around changedHour, clamped to the bookable range.
func (p WindowParams) NeighborhoodHours(changedHour int) []int {
	hours := make([]int, 0, 2*p.WindowLength-1)
	for h := changedHour - p.WindowLength + 1; h <= changedHour+p.WindowLength-1; h++ {
		if p.HourInRange(h) {
			hours = append(hours, h)
		}
	}
	return hours
}

const dayFormat = "2006-01-02"

// ParseDay normalizes a date string to YYYY-MM-DD, discarding any
// time-of-day component. RFC 3339 timestamps are accepted for convenience.
func ParseDay(value string) (string, error) {
	if t, err := time.Parse(dayFormat, value); err == nil {
		return t.Format(dayFormat), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(dayFormat), nil
	}
	return "", ErrInvalidDate
}
