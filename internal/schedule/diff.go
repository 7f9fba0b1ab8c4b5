package schedule

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// SessionChange is one session that appeared or disappeared between two results
type SessionChange struct {
	Key       string  `json:"key"`
	Date      string  `json:"date"`
	DayOfWeek string  `json:"dayOfWeek"`
	Session   Session `json:"session"`
}

// DiffResult contains the results of comparing two schedules
type DiffResult struct {
	Added   []*SessionChange `json:"added"`
	Removed []*SessionChange `json:"removed"`
}

// HasChanges reports whether any session was added or removed
func (d *DiffResult) HasChanges() bool {
	return d != nil && (len(d.Added) > 0 || len(d.Removed) > 0)
}

// SessionKey creates a deterministic key for a session on a given day
func SessionKey(date string, s Session) string {
	h := sha1.New()
	h.Write([]byte(strings.Join([]string{date, s.Name, s.Time, s.Location}, "|")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// index flattens a result into session changes keyed by SessionKey
func index(r *Result) map[string]*SessionChange {
	out := make(map[string]*SessionChange)
	if r == nil {
		return out
	}
	for _, d := range r.Days {
		for _, s := range d.Sessions {
			key := SessionKey(d.Date, s)
			out[key] = &SessionChange{
				Key:       key,
				Date:      d.Date,
				DayOfWeek: d.DayOfWeek,
				Session:   s,
			}
		}
	}
	return out
}

// Diff compares the current schedule against a previous one. A nil previous result counts
// as empty, so every current session is reported as added.
func Diff(previous, current *Result) *DiffResult {
	result := &DiffResult{
		Added:   make([]*SessionChange, 0),
		Removed: make([]*SessionChange, 0),
	}

	prev := index(previous)
	curr := index(current)

	for key, change := range curr {
		if _, exists := prev[key]; !exists {
			result.Added = append(result.Added, change)
		}
	}
	for key, change := range prev {
		if _, exists := curr[key]; !exists {
			result.Removed = append(result.Removed, change)
		}
	}

	// Sort for consistent output
	sortChanges(result.Added)
	sortChanges(result.Removed)

	return result
}

func sortChanges(changes []*SessionChange) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Date != changes[j].Date {
			return changes[i].Date < changes[j].Date
		}
		if changes[i].Session.Time != changes[j].Session.Time {
			return changes[i].Session.Time < changes[j].Session.Time
		}
		return changes[i].Session.Name < changes[j].Session.Name
	})
}
