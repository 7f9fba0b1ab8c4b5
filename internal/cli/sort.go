package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vipteryx/centretracker/internal/calendar"
	"github.com/vipteryx/centretracker/internal/schedule"
)

// SortOrder orders sessions within each day
type SortOrder string

const (
	SortBySource SortOrder = "source"
	SortByTime   SortOrder = "time"
	SortByName   SortOrder = "name"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", SortBySource:
		return SortBySource, nil
	case SortByTime, SortByName:
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'source', 'time' or 'name')", s)
}

// sortSessions reorders sessions within each day in place. Source order is left untouched.
func sortSessions(result *schedule.Result, order SortOrder) {
	if result == nil {
		return
	}
	for i := range result.Days {
		sessions := result.Days[i].Sessions
		switch order {
		case SortByTime:
			sort.SliceStable(sessions, func(a, b int) bool {
				return compareByTime(sessions[a], sessions[b])
			})
		case SortByName:
			sort.SliceStable(sessions, func(a, b int) bool {
				if !strings.EqualFold(sessions[a].Name, sessions[b].Name) {
					return strings.ToLower(sessions[a].Name) < strings.ToLower(sessions[b].Name)
				}
				// If names are equal, sort by time
				return compareByTime(sessions[a], sessions[b])
			})
		}
	}
}

// compareByTime puts sessions with a readable start first, earliest to latest
func compareByTime(a, b schedule.Session) bool {
	startA, _, okA := calendar.ParseTimeRange(a.Time)
	startB, _, okB := calendar.ParseTimeRange(b.Time)

	if okA && okB {
		return startA < startB
	}
	if okA {
		return true
	}
	if okB {
		return false
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}
