package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vipteryx/centretracker/internal/locate"
	"github.com/vipteryx/centretracker/internal/schedule"
	"golang.org/x/net/html"
)

// MaxLeafText bounds the text length of an element considered a day header or time range
const MaxLeafText = 160

var (
	// "Monday, February 26", "Tue Feb 27"
	dayHeaderPattern = regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b`)
	// "6:00 am - 9:00 am", "1:30pm–2:45pm"
	timeRangePattern = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*[ap]\.?m\.?\s*[-–—]\s*\d{1,2}:\d{2}\s*[ap]\.?m\.?`)
)

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// MarkupStrategy associates time-range elements with day headers in rendered markup.
// Each time range is attached to the single day header found in its nearest ancestor that
// contains any header; ranges whose nearest such ancestor holds several headers are dropped.
type MarkupStrategy struct{}

func (m *MarkupStrategy) Name() string { return "markup" }

func (m *MarkupStrategy) Attempt(snap *Snapshot) (*locate.Match, bool) {
	if strings.TrimSpace(snap.HTML) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, false
	}

	records := markupRecords(doc.Selection)
	if len(records) == 0 {
		return nil, false
	}
	return &locate.Match{Origin: "document", Strategy: m.Name(), Records: records}, true
}

type leaf struct {
	node *html.Node
	text string
}

func markupRecords(root *goquery.Selection) []schedule.Record {
	headers := leafMatches(root, dayHeaderPattern)
	times := leafMatches(root, timeRangePattern)
	if len(headers) == 0 || len(times) == 0 {
		return nil
	}

	var records []schedule.Record
	for _, t := range times {
		header, ok := nearestHeader(t.node, headers)
		if !ok {
			continue
		}

		timeText := timeRangePattern.FindString(t.text)
		headerText := dayHeaderPattern.FindString(header.text)
		name := sessionName(t.node, timeText, header.text)
		if name == "" {
			continue
		}

		records = append(records, schedule.Record{
			schedule.FieldName: name,
			"time":             timeText,
			schedule.FieldDate: headerText,
		})
	}
	return records
}

// leafMatches returns, in document order, the deepest short elements whose text matches re
func leafMatches(root *goquery.Selection, re *regexp.Regexp) []leaf {
	var out []leaf
	root.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		n := sel.Get(0)
		if skipped(n) {
			return
		}
		text := schedule.NormalizeText(nodeText(n))
		if text == "" || len(text) > MaxLeafText || !re.MatchString(text) {
			return
		}
		deeper := sel.Children().FilterFunction(func(_ int, child *goquery.Selection) bool {
			return re.MatchString(schedule.NormalizeText(nodeText(child.Get(0))))
		})
		if deeper.Length() > 0 {
			return
		}
		out = append(out, leaf{node: n, text: text})
	})
	return out
}

func skipped(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && skippedElements[p.Data] {
			return true
		}
	}
	return false
}

// nearestHeader walks up from n and stops at the first ancestor containing any header
func nearestHeader(n *html.Node, headers []leaf) (leaf, bool) {
	for anc := n; anc != nil; anc = anc.Parent {
		var found leaf
		count := 0
		for _, h := range headers {
			if contains(anc, h.node) {
				found = h
				count++
			}
		}
		switch {
		case count == 1:
			return found, true
		case count > 1:
			return leaf{}, false
		}
	}
	return leaf{}, false
}

func contains(anc, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}

// sessionName takes the parent's text minus the time range, then the grandparent's
func sessionName(n *html.Node, timeText, headerText string) string {
	p := n.Parent
	for i := 0; i < 2 && p != nil && p.Type == html.ElementNode; i++ {
		text := schedule.NormalizeText(nodeText(p))
		text = strings.Replace(text, timeText, "", 1)
		text = strings.Replace(text, headerText, "", 1)
		if name := schedule.NormalizeText(text); name != "" {
			return name
		}
		p = p.Parent
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
			return
		}
		if c.Type == html.ElementNode && skippedElements[c.Data] {
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
