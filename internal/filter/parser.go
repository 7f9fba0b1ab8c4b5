package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vipteryx/centretracker/internal/schedule"
)

const monthNames = `jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december`

var (
	// "Mar 1-15", "March 1-15"
	sameMonthRange = regexp.MustCompile(`(?i)^(` + monthNames + `)\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	// "Mar 1 - Apr 15"
	crossMonthRange = regexp.MustCompile(`(?i)^(` + monthNames + `)\s+(\d{1,2})\s*-\s*(` + monthNames + `)\s+(\d{1,2})$`)
	// "Mar 5"
	singleDay = regexp.MustCompile(`(?i)^(` + monthNames + `)\s+(\d{1,2})$`)
	// "March"
	wholeMonth = regexp.MustCompile(`(?i)^(` + monthNames + `)$`)
	// "2024-02-26..2024-03-03", "2024-02-26 to 2024-03-03"
	isoRange = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2})\s*(?:\.\.|to)\s*(\d{4}-\d{2}-\d{2})$`)
)

// ParseDateRange parses a date range into inclusive ISO dates.
//
// Supported formats:
//   - "Mar 1-15" or "March 1-15" - Same month, different days
//   - "March 1 - April 15" - Different months
//   - "Mar 5" - A single day
//   - "March" - Entire month
//   - "2024-02-26..2024-03-03" or "2024-02-26 to 2024-03-03"
//
// Years follow the same rollover as schedule dates: January seen in November or December is
// next year's, November and December seen in January or February are last year's. A range
// whose end would fall before its start ends in the following year.
func ParseDateRange(input string, now time.Time) (from, to string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", fmt.Errorf("date range cannot be empty")
	}

	if m := isoRange.FindStringSubmatch(input); m != nil {
		for _, d := range m[1:] {
			if _, err := time.Parse(schedule.ISODateLayout, d); err != nil {
				return "", "", fmt.Errorf("invalid date: %s", d)
			}
		}
		if m[1] > m[2] {
			return "", "", fmt.Errorf("start date must be before end date")
		}
		return m[1], m[2], nil
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		if from, err = resolve(m[1], m[2], now); err != nil {
			return "", "", err
		}
		if to, err = resolve(m[1], m[3], now); err != nil {
			return "", "", err
		}
		if from > to {
			return "", "", fmt.Errorf("start date must be before end date")
		}
		return from, to, nil
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		if from, err = resolve(m[1], m[2], now); err != nil {
			return "", "", err
		}
		if to, err = resolve(m[3], m[4], now); err != nil {
			return "", "", err
		}
		if to < from {
			to = addYear(to)
		}
		return from, to, nil
	}

	if m := singleDay.FindStringSubmatch(input); m != nil {
		if from, err = resolve(m[1], m[2], now); err != nil {
			return "", "", err
		}
		return from, from, nil
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		if from, err = resolve(m[1], "1", now); err != nil {
			return "", "", err
		}
		start, _ := time.Parse(schedule.ISODateLayout, from)
		last := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		return from, last.Format(schedule.ISODateLayout), nil
	}

	return "", "", fmt.Errorf("invalid date range format. Use 'Mar 1-15', 'March 1 - April 15', 'Mar 5', 'March' or '2024-02-26..2024-03-03'")
}

func resolve(month, day string, now time.Time) (string, error) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", fmt.Errorf("invalid day: %s", day)
	}
	iso, ok := schedule.ResolveDate(month+" "+day, now.Year(), now.Month())
	if !ok {
		return "", fmt.Errorf("invalid month: %s", month)
	}
	// Reject dates such as Feb 30 that the calendar would roll over
	if _, err := time.Parse(schedule.ISODateLayout, iso); err != nil {
		return "", fmt.Errorf("invalid date: %s %s", month, day)
	}
	return iso, nil
}

func addYear(iso string) string {
	t, err := time.Parse(schedule.ISODateLayout, iso)
	if err != nil {
		return iso
	}
	return t.AddDate(1, 0, 0).Format(schedule.ISODateLayout)
}
