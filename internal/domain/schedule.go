package domain

import "time"

// LocalTimeLayout is the wire layout for timestamps: local date-time without a zone.
const LocalTimeLayout = "2006-01-02T15:04:05"

// localTimeInputLayouts are accepted when parsing user input, most specific first.
var localTimeInputLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLocalTime parses a local date-time string in the process time zone.
func ParseLocalTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range localTimeInputLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// FormatLocalTime formats t with LocalTimeLayout in the process time zone.
func FormatLocalTime(t time.Time) string {
	return t.In(time.Local).Format(LocalTimeLayout)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) intersect.
// Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// EpicSchedule is the derived schedule of an epic.
type EpicSchedule struct {
	Start    *time.Time
	End      *time.Time
	Duration *time.Duration
}

// DeriveEpicSchedule computes an epic's schedule from its subtasks.
// Start is the earliest subtask start and End the latest subtask end.
// Duration is the sum of all subtask durations (total effort, not wall-clock span).
// If no subtask is scheduled all fields are nil.
func DeriveEpicSchedule(subtasks []Task) EpicSchedule {
	var sched EpicSchedule
	var total time.Duration
	for i := range subtasks {
		st := &subtasks[i]
		total += st.DurationOrZero()
		if !st.IsScheduled() {
			continue
		}
		start, end := *st.StartTime, *st.EndTime()
		if sched.Start == nil || start.Before(*sched.Start) {
			sched.Start = &start
		}
		if sched.End == nil || end.After(*sched.End) {
			sched.End = &end
		}
	}
	if sched.Start == nil {
		return EpicSchedule{}
	}
	sched.Duration = &total
	return sched
}
