package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/vipteryx/centretracker/internal/schedule"
)

const (
	ChannelNone    = "none"
	ChannelDryRun  = "dry-run"
	ChannelTwitter = "twitter"

	// MaxMessageLength is the status length limit of the Twitter API
	MaxMessageLength = 280
)

// Notifier defines the interface for announcing new sessions
type Notifier interface {
	// Notify announces the sessions added to site since the previous run
	Notify(ctx context.Context, site string, changes []*schedule.SessionChange) error
}

// FormatMessage renders one added session as a short announcement
func FormatMessage(site string, c *schedule.SessionChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New at %s: %s\n", site, c.Session.Name)

	when := c.Date
	if c.DayOfWeek != "" {
		when = fmt.Sprintf("%s %s", c.DayOfWeek, c.Date)
	}
	if c.Session.Time != "" {
		when = strings.TrimSpace(when + " " + c.Session.Time)
	}
	if when != "" {
		fmt.Fprintf(&b, "%s\n", when)
	}
	if c.Session.Location != "" {
		fmt.Fprintf(&b, "%s\n", c.Session.Location)
	}
	if c.Session.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", c.Session.Status)
	}

	msg := strings.TrimRight(b.String(), "\n")
	if r := []rune(msg); len(r) > MaxMessageLength {
		msg = string(r[:MaxMessageLength-3]) + "..."
	}
	return msg
}
