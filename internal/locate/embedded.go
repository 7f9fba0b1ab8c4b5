package locate

import (
	"regexp"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// assignmentStart matches an assignment or property colon followed by an opening bracket
var assignmentStart = regexp.MustCompile(`[=:]\s*[\[{]`)

// EmbeddedJSON recovers JSON literals from script text and hands each parsed value to Inner.
// Spans that fail to parse are skipped silently.
type EmbeddedJSON struct {
	Inner Strategy
}

// Name identifies the strategy
func (e *EmbeddedJSON) Name() string {
	return "embedded-json"
}

// Locate scans src.Text
func (e *EmbeddedJSON) Locate(src Source) ([]schedule.Record, bool) {
	if src.Text == "" {
		return nil, false
	}
	inner := e.Inner
	if inner == nil {
		inner = NewStructuralSearch()
	}

	for _, loc := range assignmentStart.FindAllStringIndex(src.Text, -1) {
		start := loc[1] - 1
		span, ok := BalancedSpan(src.Text, start)
		if !ok {
			continue
		}
		value, err := ParseJSON([]byte(span))
		if err != nil {
			continue
		}
		if records, ok := inner.Locate(Source{Origin: src.Origin, Value: value}); ok {
			return records, true
		}
	}
	return nil, false
}

// BalancedSpan returns the substring of text starting at the bracket at index start and ending
// at its matching close, found by depth counting. Brackets inside double-quoted strings are
// ignored. Returns false when the span never closes.
func BalancedSpan(text string, start int) (string, bool) {
	if start < 0 || start >= len(text) {
		return "", false
	}
	if c := text[start]; c != '[' && c != '{' {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
