package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/vipteryx/centretracker/internal/schedule"
)

const (
	ProductID = "-//centretracker//centretracker//EN"
	uidDomain = "centretracker"
)

var clockPattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*([ap])\.?m\.?`)

// ParseTimeRange reads the start and end clock times of a session time such as
// "6:00am - 9:00am" or "1:30 PM – 3:00 PM". Both are returned as offsets from midnight; an
// end at or before the start is taken to be on the following day. ok is false unless exactly
// two clock times are present.
func ParseTimeRange(text string) (start, end time.Duration, ok bool) {
	matches := clockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) != 2 {
		return 0, 0, false
	}

	var offsets [2]time.Duration
	for i, m := range matches {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, 0, false
		}
		hour %= 12
		if strings.EqualFold(m[3], "p") {
			hour += 12
		}
		offsets[i] = time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
	}

	start, end = offsets[0], offsets[1]
	if end <= start {
		end += 24 * time.Hour
	}
	return start, end, true
}

// GenerateICS renders the result as an iCalendar feed named name. Times are interpreted in loc
// (UTC when nil).
func GenerateICS(result *schedule.Result, name string, loc *time.Location) (string, error) {
	if result == nil {
		return "", fmt.Errorf("generating calendar: nil result")
	}
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := time.Now().UTC()
	if t, err := time.Parse(schedule.TimestampLayout, result.LastUpdated); err == nil {
		stamp = t
	}

	for _, day := range result.Days {
		if !schedule.IsISODate(day.Date) {
			continue
		}
		date, err := time.ParseInLocation(schedule.ISODateLayout, day.Date[:10], loc)
		if err != nil {
			continue
		}

		for _, s := range day.Sessions {
			addSession(cal, day.Date[:10], date, s, stamp)
		}
	}

	return cal.Serialize(), nil
}

func addSession(cal *ical.Calendar, key string, date time.Time, s schedule.Session, stamp time.Time) {
	ev := cal.AddEvent(fmt.Sprintf("%s@%s", schedule.SessionKey(key, s), uidDomain))
	ev.SetDtStampTime(stamp)
	ev.SetSummary(s.Name)
	if s.Location != "" {
		ev.SetLocation(s.Location)
	}

	var details []string
	if s.Time != "" {
		details = append(details, "Time: "+s.Time)
	}
	if s.Status != "" {
		details = append(details, "Status: "+s.Status)
	}
	if len(details) > 0 {
		ev.SetDescription(strings.Join(details, "\n"))
	}

	if start, end, ok := ParseTimeRange(s.Time); ok {
		ev.SetStartAt(date.Add(start))
		ev.SetEndAt(date.Add(end))
		return
	}
	ev.SetAllDayStartAt(date)
	ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
}
