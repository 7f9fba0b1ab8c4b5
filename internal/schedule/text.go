package schedule

import "strings"

// NormalizeText collapses every whitespace run to a single space and trims the ends.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
