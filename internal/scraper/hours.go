package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vipteryx/centretracker/internal/schedule"
)

// Headings that introduce the hours tables on a facility page. Matching is exact after trimming.
const (
	FitnessHoursHeading = "Fitness centre hours"
	PoolHoursHeading    = "Pool hours and schedule"
)

// Hours holds the opening hours tables of a facility page, keyed by the table's header cells
type Hours struct {
	LastUpdated        string            `json:"lastUpdated"`
	FitnessCentreHours map[string]string `json:"fitnessCentreHours"`
	PoolHours          map[string]string `json:"poolHours"`
}

// IsEmpty reports whether neither table was found
func (h *Hours) IsEmpty() bool {
	return len(h.FitnessCentreHours) == 0 && len(h.PoolHours) == 0
}

// ExtractHours reads the hours tables that directly follow their h2, h3 or h4 heading.
// A missing heading or table leaves that map empty.
func ExtractHours(markup string, now time.Time) (*Hours, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	hours := &Hours{
		LastUpdated:        now.UTC().Format(schedule.TimestampLayout),
		FitnessCentreHours: map[string]string{},
		PoolHours:          map[string]string{},
	}

	doc.Find("h4, h3, h2").Each(func(_ int, h *goquery.Selection) {
		switch strings.TrimSpace(h.Text()) {
		case FitnessHoursHeading:
			hours.FitnessCentreHours = hoursTable(h.Next().Filter("table"))
		case PoolHoursHeading:
			hours.PoolHours = hoursTable(h.Next().Filter("table"))
		}
	})

	return hours, nil
}

// hoursTable maps the first row's cells to the second row's data cells. A table with fewer
// than two rows gives an empty map.
func hoursTable(table *goquery.Selection) map[string]string {
	out := map[string]string{}
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return out
	}

	var values []string
	rows.Eq(1).Find("td").Each(func(_ int, td *goquery.Selection) {
		values = append(values, schedule.NormalizeText(td.Text()))
	})

	rows.Eq(0).Find("th, td").Each(func(i int, cell *goquery.Selection) {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		out[strings.TrimSpace(cell.Text())] = value
	})
	return out
}

// Hours certifies the snapshot and returns its hours tables
func (e *Extractor) Hours(snap *Snapshot) (*Hours, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if err := e.guard.Check(snap.Signature); err != nil {
		return nil, err
	}
	return ExtractHours(snap.HTML, e.clock.Now())
}
