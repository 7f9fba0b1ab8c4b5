package locate

import (
	"regexp"
	"strings"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// DefaultMaxDepth bounds how deep StructuralSearch descends into nested payloads
const DefaultMaxDepth = 6

var (
	nameLikeKey = regexp.MustCompile(`name|title|desc|activ|event`)
	timeLikeKey = regexp.MustCompile(`time|date|start|end|when`)
)

// StructuralSearch looks for the first array whose leading element is an object with both a
// name-like and a time/date-like key.
type StructuralSearch struct {
	MaxDepth int
}

// NewStructuralSearch creates a StructuralSearch with the default depth bound
func NewStructuralSearch() *StructuralSearch {
	return &StructuralSearch{MaxDepth: DefaultMaxDepth}
}

// Name identifies the strategy
func (s *StructuralSearch) Name() string {
	return "structural"
}

// Locate searches src.Value
func (s *StructuralSearch) Locate(src Source) ([]schedule.Record, bool) {
	arr, ok := s.find(src.Value, 0)
	if !ok {
		return nil, false
	}
	return toRecords(arr), true
}

// find checks the current array first, then each element; for objects it recurses into each
// property value in order.
func (s *StructuralSearch) find(v any, depth int) ([]any, bool) {
	if depth > s.MaxDepth || v == nil {
		return nil, false
	}

	if arr, ok := v.([]any); ok {
		if len(arr) > 0 && looksLikeSession(arr[0]) {
			return arr, true
		}
		for _, item := range arr {
			if found, ok := s.find(item, depth+1); ok {
				return found, true
			}
		}
		return nil, false
	}

	keys, ok := objectKeys(v)
	if !ok {
		return nil, false
	}
	for _, k := range keys {
		val, _ := objectGet(v, k)
		if found, ok := s.find(val, depth+1); ok {
			return found, true
		}
	}
	return nil, false
}

// looksLikeSession reports whether v is an object whose lower-cased keys include a name-like
// key and a time-like key.
func looksLikeSession(v any) bool {
	keys, ok := objectKeys(v)
	if !ok {
		return false
	}

	hasName, hasTime := false, false
	for _, k := range keys {
		k = strings.ToLower(k)
		if nameLikeKey.MatchString(k) {
			hasName = true
		}
		if timeLikeKey.MatchString(k) {
			hasTime = true
		}
	}
	return hasName && hasTime
}
