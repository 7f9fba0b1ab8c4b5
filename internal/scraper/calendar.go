package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vipteryx/centretracker/internal/locate"
	"github.com/vipteryx/centretracker/internal/schedule"
)

var (
	// "Feb 26, 2024 6:00 AM - 9:00 AM"
	gridTimePattern = regexp.MustCompile(`(?i)(\w{3}\s+\d+,\s+\d{4})\s+(\d{1,2}:\d{2}\s*[AP]M)\s*-\s*(\d{1,2}:\d{2}\s*[AP]M)`)
	// "Activity | Lane Swim | Main Pool"
	gridActivityPattern = regexp.MustCompile(`(?i)Activity\s+\|([^|]+)\|\s*(.*)$`)
	// "7:00 AM - 8:00 AM", as rendered ahead of the name in some event bodies
	gridRangePattern = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*[AP]M\s*[-–]\s*\d{1,2}:\d{2}\s*[AP]M$`)
)

// CalendarGridStrategy reads events out of a FullCalendar time-grid. Each day column carries
// its ISO date; each event carries an aria-label with the times and activity.
type CalendarGridStrategy struct{}

func (c *CalendarGridStrategy) Name() string { return "calendar-grid" }

func (c *CalendarGridStrategy) Attempt(snap *Snapshot) (*locate.Match, bool) {
	markup, origin := snap.CalendarHTML, "calendar-shadow-root"
	if strings.TrimSpace(markup) == "" {
		markup, origin = snap.HTML, "document"
	}
	if strings.TrimSpace(markup) == "" {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, false
	}

	records := gridRecords(doc.Selection)
	if len(records) == 0 {
		return nil, false
	}
	return &locate.Match{Origin: origin, Strategy: c.Name(), Records: records}, true
}

func gridRecords(root *goquery.Selection) []schedule.Record {
	var records []schedule.Record

	root.Find("td.fc-timegrid-col[data-date]").Each(func(_ int, col *goquery.Selection) {
		date := strings.TrimSpace(col.AttrOr("data-date", ""))
		if !schedule.IsISODate(date) {
			return
		}

		col.Find(".fc-timegrid-event.fc-event-start").Each(func(_ int, ev *goquery.Selection) {
			records = append(records, gridEvent(date, ev))
		})
	})

	return records
}

func gridEvent(date string, ev *goquery.Selection) schedule.Record {
	label := schedule.NormalizeText(ev.AttrOr("aria-label", ""))

	var start, end, name, location string
	if m := gridTimePattern.FindStringSubmatch(label); m != nil {
		start, end = m[2], m[3]
	}
	if m := gridActivityPattern.FindStringSubmatch(label); m != nil {
		name = strings.TrimSpace(m[1])
		location = strings.TrimSpace(m[2])
	}

	if name == "" {
		name, location = gridEventText(ev.Text())
	}

	return schedule.Record{
		schedule.FieldDate:     date,
		schedule.FieldName:     name,
		schedule.FieldLocation: location,
		"startTime":            start,
		"endTime":              end,
	}
}

// gridEventText reads the visible "|Name|Location" body of an event without a usable label.
// A leading time range is skipped.
func gridEventText(text string) (name, location string) {
	var parts []string
	for _, p := range strings.Split(schedule.NormalizeText(text), "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 1 && gridRangePattern.MatchString(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) > 0 {
		name = parts[0]
	}
	if len(parts) > 1 {
		location = parts[1]
	}
	return name, location
}
