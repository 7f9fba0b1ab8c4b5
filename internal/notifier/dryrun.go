package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// DryRunNotifier prints what would be posted without sending anything
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to w (stdout when nil)
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunNotifier{w: w}
}

// Notify prints the messages that would be posted
func (n *DryRunNotifier) Notify(_ context.Context, site string, changes []*schedule.SessionChange) error {
	for i, c := range changes {
		msg := FormatMessage(site, c)
		fmt.Fprintf(n.w, "--- Message %d/%d ---\n", i+1, len(changes))
		fmt.Fprintln(n.w, msg)
		fmt.Fprintf(n.w, "\n(Length: %d characters)\n\n", len([]rune(msg)))
	}
	return nil
}
