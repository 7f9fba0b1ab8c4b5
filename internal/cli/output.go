package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/vipteryx/centretracker/internal/calendar"
	"github.com/vipteryx/centretracker/internal/page"
	"github.com/vipteryx/centretracker/internal/schedule"
	"github.com/vipteryx/centretracker/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
	FormatNone OutputFormat = "none"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatICS, FormatNone:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json', 'ics' or 'none')", s)
}

var (
	heading = color.New(color.Bold)
	dayName = color.New(color.FgCyan, color.Bold)
	added   = color.New(color.FgGreen)
	removed = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
)

// WriteSchedule writes the result in the specified format
func WriteSchedule(w io.Writer, result *schedule.Result, format OutputFormat, title string, loc *time.Location) error {
	switch format {
	case FormatNone:
		return nil
	case FormatJSON:
		return writeJSON(w, result)
	case FormatICS:
		ics, err := calendar.GenerateICS(result, title, loc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, ics)
		return err
	case FormatText:
		return writeText(w, result, title)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSummary writes a page summary as JSON or text
func WriteSummary(w io.Writer, summary *page.Summary, format OutputFormat) error {
	switch format {
	case FormatNone:
		return nil
	case FormatText:
		heading.Fprintln(w, summary.PrimaryHeading)
		fmt.Fprintf(w, "Title:   %s\n", summary.PageTitle)
		fmt.Fprintf(w, "Updated: %s\n", summary.LastUpdated)
		return nil
	case FormatJSON:
		return writeJSON(w, summary)
	default:
		return fmt.Errorf("format %s is not available for summaries", format)
	}
}

// WriteHours writes the hours tables as JSON or text
func WriteHours(w io.Writer, hours *scraper.Hours, format OutputFormat) error {
	switch format {
	case FormatNone:
		return nil
	case FormatText:
		writeHoursTable(w, scraper.FitnessHoursHeading, hours.FitnessCentreHours)
		writeHoursTable(w, scraper.PoolHoursHeading, hours.PoolHours)
		fmt.Fprintf(w, "Updated: %s\n", hours.LastUpdated)
		return nil
	case FormatJSON:
		return writeJSON(w, hours)
	default:
		return fmt.Errorf("format %s is not available for hours", format)
	}
}

func writeHoursTable(w io.Writer, title string, table map[string]string) {
	heading.Fprintln(w, title)
	if len(table) == 0 {
		warning.Fprintln(w, "  Not found")
		return
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %s\n", k, table[k])
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs the schedule as human-readable text
func writeText(w io.Writer, result *schedule.Result, title string) error {
	if title != "" {
		heading.Fprint(w, title)
		if result.WeekRange.Start != nil && result.WeekRange.End != nil {
			fmt.Fprintf(w, " (%s to %s)", *result.WeekRange.Start, *result.WeekRange.End)
		}
		fmt.Fprintln(w)
	}
	if result.LastUpdated != "" {
		fmt.Fprintf(w, "Updated %s\n", result.LastUpdated)
	}

	if result.IsEmpty() {
		warning.Fprintln(w, "\nNo sessions found.")
		return nil
	}

	for _, day := range result.Days {
		label := day.Date
		if day.DayOfWeek != "" {
			label = fmt.Sprintf("%s, %s", day.DayOfWeek, day.Date)
		}
		if label == "" {
			label = "Undated"
		}
		fmt.Fprintln(w)
		dayName.Fprintln(w, label)
		for _, s := range day.Sessions {
			fmt.Fprintf(w, "  %s\n", sessionLine(s))
		}
	}

	fmt.Fprintf(w, "\nTotal: %d sessions across %d days\n", result.SessionCount(), len(result.Days))
	return nil
}

func sessionLine(s schedule.Session) string {
	var b strings.Builder
	if s.Time != "" {
		fmt.Fprintf(&b, "%-20s ", s.Time)
	}
	b.WriteString(s.Name)
	if s.Location != "" {
		fmt.Fprintf(&b, " (%s)", s.Location)
	}
	if s.Status != "" {
		fmt.Fprintf(&b, " [%s]", s.Status)
	}
	return b.String()
}

// WriteDiff lists added and removed sessions
func WriteDiff(w io.Writer, diff *schedule.DiffResult) {
	if !diff.HasChanges() {
		fmt.Fprintln(w, "\nNo changes since the last run.")
		return
	}

	fmt.Fprintf(w, "\nChanges since the last run: %d added, %d removed\n", len(diff.Added), len(diff.Removed))
	for _, c := range diff.Added {
		added.Fprintf(w, "  + %s  %s\n", changeDate(c), sessionLine(c.Session))
	}
	for _, c := range diff.Removed {
		removed.Fprintf(w, "  - %s  %s\n", changeDate(c), sessionLine(c.Session))
	}
}

func changeDate(c *schedule.SessionChange) string {
	if c.DayOfWeek != "" {
		return fmt.Sprintf("%s %s", c.DayOfWeek[:3], c.Date)
	}
	return c.Date
}
