package schedule

import (
	"sort"
	"time"
)

// ResolveDayKey derives the date key for a record. Resolved keys are ISO dates; otherwise the
// raw date text itself is returned with resolved=false.
func ResolveDayKey(r Record, referenceYear int, currentMonth time.Month) (key string, resolved bool) {
	raw := r.Field(FieldDate)
	if raw == "" {
		return "", false
	}
	if iso, ok := ResolveDate(raw, referenceYear, currentMonth); ok {
		return iso, true
	}
	return raw, false
}

// GroupByDay buckets records by resolved date and returns the buckets sorted by date key.
// Records sharing a key are merged with their sessions kept in encounter order. Unresolved
// keys sort as plain strings alongside the ISO ones.
func GroupByDay(records []Record, referenceYear int, currentMonth time.Month) []Day {
	index := make(map[string]int)
	days := make([]Day, 0)

	for _, r := range records {
		key, resolved := ResolveDayKey(r, referenceYear, currentMonth)

		i, ok := index[key]
		if !ok {
			day := Day{Date: key, Sessions: make([]Session, 0)}
			if resolved {
				day.DayOfWeek = Weekday(key)
			}
			days = append(days, day)
			i = len(days) - 1
			index[key] = i
		}
		days[i].Sessions = append(days[i].Sessions, NormalizeSession(r))
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	return days
}

// Build groups records and assembles the final Result using the clock for the reference
// year, the rollover month and the lastUpdated stamp.
func Build(records []Record, clock Clock) *Result {
	now := clock.Now()
	days := GroupByDay(records, now.Year(), now.Month())
	return NewResult(days, now)
}
