package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/vipteryx/centretracker/internal/scraper"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultHeadingWait = 15 * time.Second
	DefaultSettle      = 2 * time.Second

	// CalendarSelector is the host element of the calendar web component
	CalendarSelector = "#calendar"
)

const (
	scriptsJS = `Array.from(document.querySelectorAll('script:not([src])')).map(s => s.textContent || '')`
	headingJS = `(() => { const h = document.querySelector('h1'); return h ? (h.textContent || '') : ''; })()`
	shadowJS  = `(() => { const el = document.querySelector(%q); return el && el.shadowRoot ? el.shadowRoot.innerHTML : ''; })()`
)

// Options controls a single capture
type Options struct {
	URL string

	// ExecPath points at a Chromium binary; empty uses the chromedp lookup
	ExecPath string
	Headless bool

	// Timeout bounds the whole capture. HeadingWait bounds the wait for the first h1,
	// whose absence is left for the page guard to report. Settle is an extra pause after
	// load for late XHRs.
	Timeout     time.Duration
	HeadingWait time.Duration
	Settle      time.Duration

	UserAgent string
}

func (o *Options) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HeadingWait <= 0 {
		o.HeadingWait = DefaultHeadingWait
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = scraper.UserAgent
	}
}

// IsJSONContentType reports whether a response's MIME type or content type carries JSON.
// text/json, application/x-json and vendor types such as application/vnd.api+json all count.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// responseLog collects JSON responses in the order they were received
type responseLog struct {
	mu       sync.Mutex
	order    []network.RequestID
	captures map[network.RequestID]*scraper.Capture
}

func newResponseLog() *responseLog {
	return &responseLog{captures: make(map[network.RequestID]*scraper.Capture)}
}

func (l *responseLog) observe(ev *network.EventResponseReceived) {
	if ev.Response == nil {
		return
	}
	contentType := ev.Response.MimeType
	if header, ok := ev.Response.Headers["content-type"]; ok {
		contentType = fmt.Sprint(header)
	} else if header, ok := ev.Response.Headers["Content-Type"]; ok {
		contentType = fmt.Sprint(header)
	}
	if !IsJSONContentType(contentType) && !IsJSONContentType(ev.Response.MimeType) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.captures[ev.RequestID]; seen {
		return
	}
	l.order = append(l.order, ev.RequestID)
	l.captures[ev.RequestID] = &scraper.Capture{URL: ev.Response.URL, ContentType: contentType}
}

// bodies fetches the recorded bodies. Responses whose body is no longer available are skipped.
func (l *responseLog) bodies(ctx context.Context) []scraper.Capture {
	l.mu.Lock()
	order := append([]network.RequestID(nil), l.order...)
	l.mu.Unlock()

	out := make([]scraper.Capture, 0, len(order))
	for _, id := range order {
		body, err := network.GetResponseBody(id).Do(ctx)
		if err != nil {
			continue
		}
		l.mu.Lock()
		c := *l.captures[id]
		l.mu.Unlock()
		c.Body = string(body)
		out = append(out, c)
	}
	return out
}

// Capture loads opts.URL and returns its snapshot
func Capture(parent context.Context, opts Options) (*scraper.Snapshot, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("capture: URL is required")
	}
	opts.applyDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	responses := newResponseLog()
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok {
			responses.observe(e)
		}
	})

	snap := &scraper.Snapshot{URL: opts.URL}
	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, opts.HeadingWait)
			defer cancel()
			// A missing heading is reported by the page guard, not here
			_ = chromedp.WaitVisible("h1", chromedp.ByQuery).Do(waitCtx)
			return nil
		}),
		chromedp.Sleep(opts.Settle),
		chromedp.Title(&snap.Signature.PageTitle),
		chromedp.Evaluate(headingJS, &snap.Signature.PrimaryHeading),
		chromedp.Evaluate(scriptsJS, &snap.Scripts),
		chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(shadowJS, CalendarSelector), &snap.CalendarHTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			snap.Responses = responses.bodies(ctx)
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	snap.CapturedAt = time.Now().UTC()
	return snap, nil
}
