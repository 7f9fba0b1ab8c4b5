package page

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vipteryx/centretracker/internal/schedule"
)

// DefaultBlockPhrases are matched against the lower-cased title and heading
var DefaultBlockPhrases = []string{
	"attention required",
	"sorry, you have been blocked",
	"cloudflare",
}

var (
	// ErrNoHeading matches any *NoHeadingError
	ErrNoHeading = errors.New("no heading found on the page")
	// ErrBlocked matches any *BlockedPageError
	ErrBlocked = errors.New("page appears blocked")
)

// Signature is the minimal evidence used to decide whether a snapshot is usable
type Signature struct {
	PageTitle      string `json:"pageTitle"`
	PrimaryHeading string `json:"primaryHeading"`
}

// NoHeadingError reports a page without a usable primary heading
type NoHeadingError struct {
	Title string
}

func (e *NoHeadingError) Error() string {
	return fmt.Sprintf("no <h1> heading found on the page (title: %q)", e.Title)
}

// Is lets errors.Is match ErrNoHeading
func (e *NoHeadingError) Is(target error) bool {
	return target == ErrNoHeading
}

// BlockedPageError reports a page whose title or heading carries a block phrase
type BlockedPageError struct {
	Title   string
	Heading string
	Phrase  string
}

func (e *BlockedPageError) Error() string {
	return fmt.Sprintf("scrape appears blocked (title: %q, h1: %q)", e.Title, e.Heading)
}

// Is lets errors.Is match ErrBlocked
func (e *BlockedPageError) Is(target error) bool {
	return target == ErrBlocked
}

// Guard checks page signatures against a set of block phrases
type Guard struct {
	BlockPhrases []string
}

// NewGuard creates a Guard. With no phrases the defaults are used.
func NewGuard(phrases ...string) *Guard {
	if len(phrases) == 0 {
		phrases = DefaultBlockPhrases
	}
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(schedule.NormalizeText(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}
	return &Guard{BlockPhrases: normalized}
}

// Check returns a *NoHeadingError when the heading is empty and a *BlockedPageError when the
// title or heading contains a block phrase. A nil error means extraction may proceed.
func (g *Guard) Check(sig Signature) error {
	title := schedule.NormalizeText(sig.PageTitle)
	heading := schedule.NormalizeText(sig.PrimaryHeading)

	if heading == "" {
		return &NoHeadingError{Title: title}
	}

	lowerTitle := strings.ToLower(title)
	lowerHeading := strings.ToLower(heading)
	for _, phrase := range g.BlockPhrases {
		if strings.Contains(lowerTitle, phrase) || strings.Contains(lowerHeading, phrase) {
			return &BlockedPageError{Title: title, Heading: heading, Phrase: phrase}
		}
	}

	return nil
}

// Summary is the page-level report produced when no schedule extraction is requested
type Summary struct {
	LastUpdated    string `json:"lastUpdated"`
	PageTitle      string `json:"pageTitle"`
	PrimaryHeading string `json:"primaryHeading"`
}

// Summarize builds a Summary with normalized title and heading
func Summarize(sig Signature, now time.Time) *Summary {
	return &Summary{
		LastUpdated:    now.UTC().Format(schedule.TimestampLayout),
		PageTitle:      schedule.NormalizeText(sig.PageTitle),
		PrimaryHeading: schedule.NormalizeText(sig.PrimaryHeading),
	}
}
