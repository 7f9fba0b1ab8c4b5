package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the canonical day key layout
const ISODateLayout = "2006-01-02"

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	monthDayPattern  = regexp.MustCompile(`(?i)([a-z]{3})[a-z.]*\s+(\d{1,2})`)
	slashDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	isoClockPattern  = regexp.MustCompile(`T(\d{2}):(\d{2})`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// IsISODate reports whether s starts with a YYYY-MM-DD date
func IsISODate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// ResolveDate converts partial date text into a YYYY-MM-DD key.
//
// Supported shapes: "Feb 23", "February 23", "2/23" and anything already leading with an ISO
// date (taken verbatim, no rollover). Partial dates start in referenceYear and are then shifted
// by one year when the parsed month sits on the other side of a year boundary from
// currentMonth: January seen in Nov/Dec belongs to next year, Nov/Dec seen in Jan/Feb to the
// previous one.
//
// The day and month are range checked but this is not a calendar validator, so "Feb 30"
// resolves. Returns false for text that matches no supported shape.
func ResolveDate(raw string, referenceYear int, currentMonth time.Month) (string, bool) {
	if raw == "" {
		return "", false
	}

	if IsISODate(raw) {
		return raw[:10], true
	}

	if m := monthDayPattern.FindStringSubmatch(raw); m != nil {
		month, ok := monthsByPrefix[strings.ToLower(m[1])]
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 {
			return "", false
		}
		return formatISODate(rolloverYear(referenceYear, month, currentMonth), month, day), true
	}

	if m := slashDatePattern.FindStringSubmatch(raw); m != nil {
		monthNum, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if monthNum < 1 || monthNum > 12 || day < 1 || day > 31 {
			return "", false
		}
		month := time.Month(monthNum)
		return formatISODate(rolloverYear(referenceYear, month, currentMonth), month, day), true
	}

	return "", false
}

// rolloverYear applies the year-boundary correction
func rolloverYear(year int, parsed, current time.Month) int {
	if parsed == time.January && current >= time.November {
		return year + 1
	}
	if parsed >= time.November && current <= time.February {
		return year - 1
	}
	return year
}

func formatISODate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// FormatClockTime renders the "THH:MM" part of an ISO timestamp as a 12-hour clock time
// ("2:30pm", "12:05am"). Anything without that fragment is assumed to be human readable
// already and is only whitespace-normalized.
func FormatClockTime(raw string) string {
	m := isoClockPattern.FindStringSubmatch(raw)
	if m == nil {
		return NormalizeText(raw)
	}

	hours, _ := strconv.Atoi(m[1])
	suffix := "am"
	if hours >= 12 {
		suffix = "pm"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s%s", display, m[2], suffix)
}

// Weekday returns the English weekday name of an ISO date key, or "" if it does not parse
func Weekday(date string) string {
	if len(date) < 10 || !IsISODate(date) {
		return ""
	}
	t, err := time.Parse(ISODateLayout, date[:10])
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
