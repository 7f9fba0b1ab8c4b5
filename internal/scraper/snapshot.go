package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vipteryx/centretracker/internal/locate"
	"github.com/vipteryx/centretracker/internal/page"
)

// Capture is one JSON network response observed while the page loaded
type Capture struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	Body        string `json:"body"`
}

// Snapshot is one fully captured page. Responses and Scripts are in priority order.
type Snapshot struct {
	URL          string         `json:"url"`
	CapturedAt   time.Time      `json:"capturedAt"`
	Signature    page.Signature `json:"signature"`
	Responses    []Capture      `json:"responses,omitempty"`
	Scripts      []string       `json:"scripts,omitempty"`
	HTML         string         `json:"html,omitempty"`
	CalendarHTML string         `json:"calendarHtml,omitempty"`
}

// Sources returns the structured sources of the snapshot: every response body that parses as
// JSON, followed by every inline script. Bodies that fail to parse are skipped.
func (s *Snapshot) Sources() []locate.Source {
	sources := make([]locate.Source, 0, len(s.Responses)+len(s.Scripts))
	for _, c := range s.Responses {
		value, err := locate.ParseJSON([]byte(c.Body))
		if err != nil {
			continue
		}
		sources = append(sources, locate.Source{Origin: c.URL, Value: value})
	}
	for i, text := range s.Scripts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		sources = append(sources, locate.Source{Origin: fmt.Sprintf("script[%d]", i), Text: text})
	}
	return sources
}

// ReadSnapshot decodes a snapshot previously written as JSON
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// SnapshotFromHTML builds a snapshot from static markup. The title, first h1 and inline
// scripts are read from the document; there are no network captures.
func SnapshotFromHTML(r io.Reader, sourceURL string, capturedAt time.Time) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading HTML: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	snap := &Snapshot{
		URL:        sourceURL,
		CapturedAt: capturedAt,
		Signature: page.Signature{
			PageTitle:      doc.Find("title").First().Text(),
			PrimaryHeading: doc.Find("h1").First().Text(),
		},
		HTML: string(raw),
	}

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		snap.Scripts = append(snap.Scripts, sel.Text())
	})

	return snap, nil
}
