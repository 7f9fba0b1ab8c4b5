package schedule

import (
	"regexp"
	"sort"
	"time"
)

// TimestampLayout matches the millisecond UTC format used for lastUpdated.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var yearLeadingPattern = regexp.MustCompile(`^\d{4}`)

// Session is the canonical form every source record converges to.
// Optional fields are omitted when they were not observed.
type Session struct {
	Name     string `json:"name"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Day groups the sessions that resolved to one date key
type Day struct {
	Date      string    `json:"date"`
	DayOfWeek string    `json:"dayOfWeek"`
	Sessions  []Session `json:"sessions"`
}

// WeekRange is the first and last ISO date of a schedule. Both are nil when no day resolved.
type WeekRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Result is the schedule document written by the tool
type Result struct {
	LastUpdated string    `json:"lastUpdated"`
	WeekRange   WeekRange `json:"weekRange"`
	Days        []Day     `json:"days"`
}

// NewResult assembles a Result from grouped days. Days without sessions are pruned and the
// week range is computed from dates that lead with a four-digit year.
func NewResult(days []Day, now time.Time) *Result {
	kept := make([]Day, 0, len(days))
	for _, d := range days {
		if len(d.Sessions) == 0 {
			continue
		}
		kept = append(kept, d)
	}

	return &Result{
		LastUpdated: now.UTC().Format(TimestampLayout),
		WeekRange:   ComputeWeekRange(kept),
		Days:        kept,
	}
}

// EmptyResult is the result reported when no strategy located any sessions
func EmptyResult(now time.Time) *Result {
	return NewResult(nil, now)
}

// ComputeWeekRange returns the smallest and largest year-leading date among days.
// Fallback keys built from unresolved raw text are ignored.
func ComputeWeekRange(days []Day) WeekRange {
	dates := make([]string, 0, len(days))
	for _, d := range days {
		if yearLeadingPattern.MatchString(d.Date) {
			dates = append(dates, d.Date)
		}
	}
	if len(dates) == 0 {
		return WeekRange{}
	}

	sort.Strings(dates)
	start, end := dates[0], dates[len(dates)-1]
	return WeekRange{Start: &start, End: &end}
}

// SessionCount returns the total number of sessions across all days
func (r *Result) SessionCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Days {
		n += len(d.Sessions)
	}
	return n
}

// IsEmpty reports whether the result holds no days
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.Days) == 0
}
