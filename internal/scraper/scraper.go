package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vipteryx/centretracker/internal/locate"
	"github.com/vipteryx/centretracker/internal/page"
	"github.com/vipteryx/centretracker/internal/schedule"
)

const (
	UserAgent = "centretracker/1.0 (github.com/vipteryx/centretracker)"
	Timeout   = 30 * time.Second
)

// ErrNilSnapshot is returned when Extract is called without a snapshot
var ErrNilSnapshot = errors.New("no snapshot to extract from")

// Strategy is one way of finding session records in a snapshot
type Strategy interface {
	Name() string
	Attempt(snap *Snapshot) (*locate.Match, bool)
}

// Report describes how a schedule was obtained
type Report struct {
	RunID string
	// Strategy is the winning snapshot strategy, empty when nothing was found
	Strategy string
	// Locator is the locate strategy behind a structured match
	Locator string
	Origin  string
	Records int
	Empty   bool
}

// Extractor runs the guard and strategy chain over snapshots
type Extractor struct {
	guard      *page.Guard
	clock      schedule.Clock
	strategies []Strategy
}

// Option configures an Extractor
type Option func(*Extractor)

// WithGuard sets the page guard. A nil guard keeps the default.
func WithGuard(g *page.Guard) Option {
	return func(e *Extractor) {
		if g != nil {
			e.guard = g
		}
	}
}

// WithClock sets the clock used for date rollover and the lastUpdated stamp
func WithClock(c schedule.Clock) Option {
	return func(e *Extractor) { e.clock = c }
}

// WithStrategies replaces the default strategy chain
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) { e.strategies = strategies }
}

// DefaultStrategies returns structured data, calendar grid and markup, in that order
func DefaultStrategies() []Strategy {
	return []Strategy{
		&StructuredStrategy{Locator: locate.DefaultLocator()},
		&CalendarGridStrategy{},
		&MarkupStrategy{},
	}
}

// New creates an Extractor with the default guard, system clock and strategies
func New(opts ...Option) *Extractor {
	e := &Extractor{
		guard:      page.NewGuard(),
		clock:      schedule.SystemClock{},
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.guard == nil {
		e.guard = page.NewGuard()
	}
	return e
}

// Extract certifies the snapshot and returns the schedule from the first strategy that finds
// records. A blocked or headingless page returns the guard's error and no result. When no
// strategy finds anything the result is empty and Report.Empty is set.
func (e *Extractor) Extract(snap *Snapshot) (*schedule.Result, *Report, error) {
	if snap == nil {
		return nil, nil, ErrNilSnapshot
	}
	if err := e.guard.Check(snap.Signature); err != nil {
		return nil, nil, err
	}

	for _, s := range e.strategies {
		m, ok := s.Attempt(snap)
		if !ok || m == nil || len(m.Records) == 0 {
			continue
		}
		report := &Report{
			RunID:    uuid.NewString(),
			Strategy: s.Name(),
			Origin:   m.Origin,
			Records:  len(m.Records),
		}
		if m.Strategy != s.Name() {
			report.Locator = m.Strategy
		}
		return schedule.Build(m.Records, e.clock), report, nil
	}

	return schedule.EmptyResult(e.clock.Now()), &Report{RunID: uuid.NewString(), Empty: true}, nil
}

// Summarize certifies the snapshot and returns the page summary
func (e *Extractor) Summarize(snap *Snapshot) (*page.Summary, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if err := e.guard.Check(snap.Signature); err != nil {
		return nil, err
	}
	return page.Summarize(snap.Signature, e.clock.Now()), nil
}

// StructuredStrategy searches captured responses and then inline scripts
type StructuredStrategy struct {
	Locator *locate.Locator
}

func (s *StructuredStrategy) Name() string { return "structured" }

func (s *StructuredStrategy) Attempt(snap *Snapshot) (*locate.Match, bool) {
	l := s.Locator
	if l == nil {
		l = locate.DefaultLocator()
	}
	return l.Locate(snap.Sources())
}

// Fetcher builds snapshots from static pages over plain HTTP
type Fetcher struct {
	client *http.Client
	clock  schedule.Clock
}

// NewFetcher creates a Fetcher with the default timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		clock: schedule.SystemClock{},
	}
}

// Fetch downloads url and returns its snapshot. Content rendered by JavaScript is not seen.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return SnapshotFromHTML(resp.Body, url, f.clock.Now())
}
