// Package filter narrows a schedule down to the sessions a user cares about.
//
// Criteria:
//   - Date range (inclusive ISO dates)
//   - Activity names (substring matching, case-insensitive)
//   - Locations (substring matching, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//
// Days whose date never resolved to an ISO date pass the date criteria untouched. Days left
// without sessions are dropped and the week range is recomputed.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Names = []string{"lane swim"}
//	filtered := f.Apply(result)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// Filter represents session filtering criteria
type Filter struct {
	// Inclusive ISO dates (YYYY-MM-DD)
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`

	// Activity name filtering (case-insensitive substring match)
	Names []string `json:"names,omitempty"`

	// Location filtering (case-insensitive substring match)
	Locations []string `json:"locations,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria
func NewFilter() *Filter {
	return &Filter{
		Names:     []string{},
		Locations: []string{},
	}
}

// IsEmpty reports whether the filter would match everything
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == "" &&
		f.DateTo == "" &&
		len(f.Names) == 0 &&
		len(f.Locations) == 0 &&
		!f.WeekendsOnly
}

// MatchesDay applies the date range and weekend criteria to a day
func (f *Filter) MatchesDay(day schedule.Day) bool {
	if !schedule.IsISODate(day.Date) {
		return true
	}
	date := day.Date[:10]

	if f.DateFrom != "" && date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && date > f.DateTo {
		return false
	}

	if f.WeekendsOnly {
		t, err := time.Parse(schedule.ISODateLayout, date)
		if err != nil {
			return true
		}
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return false
		}
	}

	return true
}

// MatchesSession applies the name and location criteria to a session
func (f *Filter) MatchesSession(s schedule.Session) bool {
	if len(f.Names) > 0 && !containsAny(s.Name, f.Names) {
		return false
	}
	if len(f.Locations) > 0 && !containsAny(s.Location, f.Locations) {
		return false
	}
	return true
}

func containsAny(value string, needles []string) bool {
	lower := strings.ToLower(value)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(n))) {
			return true
		}
	}
	return false
}

// Apply returns a new result holding only matching sessions. An empty filter returns the
// input unchanged. The lastUpdated stamp is kept.
func (f *Filter) Apply(r *schedule.Result) *schedule.Result {
	if r == nil || f.IsEmpty() {
		return r
	}

	days := make([]schedule.Day, 0, len(r.Days))
	for _, day := range r.Days {
		if !f.MatchesDay(day) {
			continue
		}

		sessions := make([]schedule.Session, 0, len(day.Sessions))
		for _, s := range day.Sessions {
			if f.MatchesSession(s) {
				sessions = append(sessions, s)
			}
		}
		if len(sessions) == 0 {
			continue
		}

		day.Sessions = sessions
		days = append(days, day)
	}

	return &schedule.Result{
		LastUpdated: r.LastUpdated,
		WeekRange:   schedule.ComputeWeekRange(days),
		Days:        days,
	}
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2024-02-26 | To: 2024-03-03 | Activities: lane swim | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != "" {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom))
	}

	if f.DateTo != "" {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Activities: %s", strings.Join(f.Names, ", ")))
	}

	if len(f.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("Locations: %s", strings.Join(f.Locations, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		DateFrom:     f.DateFrom,
		DateTo:       f.DateTo,
		WeekendsOnly: f.WeekendsOnly,
		Names:        make([]string, len(f.Names)),
		Locations:    make([]string, len(f.Locations)),
	}
	copy(clone.Names, f.Names)
	copy(clone.Locations, f.Locations)
	return clone
}
