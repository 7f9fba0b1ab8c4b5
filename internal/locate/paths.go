package locate

import (
	"github.com/vipteryx/centretracker/internal/schedule"
)

// DefaultProbePaths are checked in order. The empty path is the value itself.
var DefaultProbePaths = [][]string{
	{},
	{"data"},
	{"activities"},
	{"items"},
	{"results"},
	{"data", "items"},
}

// Accepted keys for PathProbe. Matching is exact.
var (
	ProbeNameKeys = []string{"activity_name", "activityName", "name", "title", "description"}
	ProbeTimeKeys = []string{
		"start_time", "startTime", "start_date", "startDate", "time",
		"date", "session_date", "activity_date",
	}
)

// PathProbe checks well-known property paths for a non-empty array whose first element has
// one of NameKeys and one of TimeKeys.
type PathProbe struct {
	Paths    [][]string
	NameKeys []string
	TimeKeys []string
}

// NewPathProbe creates a PathProbe with the default paths and key whitelists
func NewPathProbe() *PathProbe {
	return &PathProbe{
		Paths:    DefaultProbePaths,
		NameKeys: ProbeNameKeys,
		TimeKeys: ProbeTimeKeys,
	}
}

// Name identifies the strategy
func (p *PathProbe) Name() string {
	return "path-probe"
}

// Locate probes src.Value
func (p *PathProbe) Locate(src Source) ([]schedule.Record, bool) {
	if src.Value == nil {
		return nil, false
	}

	for _, path := range p.Paths {
		v, ok := resolvePath(src.Value, path)
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		if p.accepts(arr[0]) {
			return toRecords(arr), true
		}
	}
	return nil, false
}

func (p *PathProbe) accepts(first any) bool {
	return hasAnyKey(first, p.NameKeys) && hasAnyKey(first, p.TimeKeys)
}

func hasAnyKey(v any, keys []string) bool {
	for _, k := range keys {
		if _, ok := objectGet(v, k); ok {
			return true
		}
	}
	return false
}

func resolvePath(v any, path []string) (any, bool) {
	cur := v
	for _, key := range path {
		next, ok := objectGet(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
