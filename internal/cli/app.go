package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vipteryx/centretracker/internal/browser"
	"github.com/vipteryx/centretracker/internal/config"
	"github.com/vipteryx/centretracker/internal/filter"
	"github.com/vipteryx/centretracker/internal/logger"
	"github.com/vipteryx/centretracker/internal/notifier"
	"github.com/vipteryx/centretracker/internal/page"
	"github.com/vipteryx/centretracker/internal/schedule"
	"github.com/vipteryx/centretracker/internal/scraper"
	"github.com/vipteryx/centretracker/internal/storage"
)

// captureFunc produces the snapshot for a site
type captureFunc func(ctx context.Context, site config.SiteConfig) (*scraper.Snapshot, error)

// app wires configuration, capture, extraction and storage for one invocation
type app struct {
	cfg        *config.Config
	store      *storage.Storage
	log        *logger.Logger
	metrics    *logger.Metrics
	clock      schedule.Clock
	capture    captureFunc
	publishers []storage.Publisher
	notifier   notifier.Notifier
	stdout     io.Writer
}

// captureSource selects where snapshots come from. Empty fields mean a live capture.
type captureSource struct {
	snapshotPath string
	htmlPath     string
	fetch        string
}

func newApp(ctx context.Context, cfg *config.Config, src captureSource, stdout io.Writer) (*app, error) {
	log, err := setupLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	a := &app{
		cfg:     cfg,
		store:   store,
		log:     log,
		metrics: logger.DefaultMetrics(),
		clock:   schedule.SystemClock{},
		stdout:  stdout,
	}
	a.capture = a.captureFrom(src)

	if cfg.S3.Enabled() {
		pub, err := storage.NewS3Publisher(ctx, storage.S3Config{
			Bucket:  cfg.S3.Bucket,
			Region:  cfg.S3.Region,
			Profile: cfg.S3.Profile,
			Prefix:  cfg.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing S3 publisher: %w", err)
		}
		a.publishers = append(a.publishers, pub)
	}

	a.notifier, err = newNotifier(cfg.Notify, stdout)
	if err != nil {
		return nil, fmt.Errorf("initializing notifier: %w", err)
	}

	return a, nil
}

// newNotifier returns the notifier for channel, or nil when announcements are off
func newNotifier(channel string, w io.Writer) (notifier.Notifier, error) {
	switch channel {
	case "", notifier.ChannelNone:
		return nil, nil
	case notifier.ChannelDryRun:
		return notifier.NewDryRunNotifier(w), nil
	case notifier.ChannelTwitter:
		n, err := notifier.NewTwitterNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notify channel: %s", channel)
	}
}

// captureFrom returns the capture function for the chosen source
func (a *app) captureFrom(src captureSource) captureFunc {
	switch {
	case src.snapshotPath != "":
		return func(_ context.Context, _ config.SiteConfig) (*scraper.Snapshot, error) {
			f, err := os.Open(src.snapshotPath)
			if err != nil {
				return nil, fmt.Errorf("opening snapshot: %w", err)
			}
			defer f.Close()
			return scraper.ReadSnapshot(f)
		}
	case src.htmlPath != "":
		return func(_ context.Context, site config.SiteConfig) (*scraper.Snapshot, error) {
			f, err := os.Open(src.htmlPath)
			if err != nil {
				return nil, fmt.Errorf("opening HTML: %w", err)
			}
			defer f.Close()
			return scraper.SnapshotFromHTML(f, site.URL, a.clock.Now())
		}
	}

	return func(ctx context.Context, site config.SiteConfig) (*scraper.Snapshot, error) {
		fetch := site.Fetch
		if src.fetch != "" {
			fetch = src.fetch
		}
		if fetch == config.FetchHTTP {
			return scraper.NewFetcher().Fetch(ctx, site.URL)
		}
		return browser.Capture(ctx, browser.Options{
			URL:         site.URL,
			ExecPath:    a.cfg.Browser.ExecPath,
			Headless:    a.cfg.Browser.IsHeadless(),
			Timeout:     a.cfg.Browser.Timeout,
			HeadingWait: a.cfg.Browser.HeadingWait,
			Settle:      a.cfg.Browser.Settle,
		})
	}
}

func (a *app) extractor() *scraper.Extractor {
	return scraper.New(
		scraper.WithGuard(page.NewGuard(a.cfg.BlockPhrases...)),
		scraper.WithClock(a.clock),
	)
}

// scheduleOptions control one schedule run
type scheduleOptions struct {
	format       OutputFormat
	sort         SortOrder
	filter       *filter.Filter
	output       string
	failOnChange bool
	saveSnapshot bool
	showDiff     bool
}

// siteRun is what a schedule run produced
type siteRun struct {
	Result *schedule.Result
	Report *scraper.Report
	Diff   *schedule.DiffResult
}

// runSchedule captures a site, extracts and stores its schedule, and prints it
func (a *app) runSchedule(ctx context.Context, site config.SiteConfig, opts scheduleOptions) (*siteRun, error) {
	log := a.log.With(logger.Fields{"site": site.Name})

	snap, err := a.captureSnapshot(ctx, site, log)
	if err != nil {
		return nil, err
	}
	if opts.saveSnapshot {
		name := site.Name + ".snapshot.json"
		if err := a.store.SaveSnapshot(name, snap); err != nil {
			log.Warn("could not save snapshot", logger.Fields{"error": err})
		}
	}

	start := time.Now()
	result, report, err := a.extractor().Extract(snap)
	a.metrics.RecordTiming("extract.duration", time.Since(start))
	if err != nil {
		a.recordGuardFailure(err)
		log.Error("page rejected", logger.Fields{"url": snap.URL}, err)
		return nil, fmt.Errorf("extracting %s: %w", site.Name, err)
	}
	log = log.With(logger.Fields{"run_id": report.RunID})

	if report.Empty {
		a.metrics.IncrCounter("extract.empty")
		path, err := a.store.SaveDebugHTML(site.Name+"-"+storage.DebugHTMLName, snap.HTML)
		if err != nil {
			log.Error("could not save debug HTML", nil, err)
		}
		log.Warn("no sessions found", logger.Fields{"debug_html": path})
	} else {
		a.metrics.IncrCounter("extract.strategy." + report.Strategy)
		a.metrics.SetGauge("schedule.sessions."+site.Name, float64(result.SessionCount()))
		log.Info("schedule extracted", logger.Fields{
			"strategy": report.Strategy,
			"locator":  report.Locator,
			"origin":   report.Origin,
			"records":  report.Records,
			"days":     len(result.Days),
			"sessions": result.SessionCount(),
		})
	}

	output := site.Output
	if opts.output != "" {
		output = opts.output
	}

	previous, err := a.store.LoadResult(output)
	if err != nil {
		log.Warn("could not load previous schedule", logger.Fields{"error": err})
		previous = nil
	}
	diff := schedule.Diff(previous, result)
	if diff.HasChanges() {
		log.Info("schedule changed", logger.Fields{"added": len(diff.Added), "removed": len(diff.Removed)})
	}

	if err := a.publish(ctx, output, result, log); err != nil {
		return nil, err
	}
	a.announce(ctx, site.Name, previous, diff, log)

	display := result
	if opts.filter != nil {
		display = opts.filter.Apply(result)
	}
	sortSessions(display, opts.sort)

	if err := WriteSchedule(a.stdout, display, opts.format, site.Name, a.cfg.Location()); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if opts.showDiff && opts.format == FormatText {
		WriteDiff(a.stdout, diff)
	}

	run := &siteRun{Result: result, Report: report, Diff: diff}
	if opts.failOnChange && diff.HasChanges() {
		return run, ErrChanged
	}
	return run, nil
}

// runSummary captures a site and stores its page summary
func (a *app) runSummary(ctx context.Context, site config.SiteConfig, format OutputFormat, output string) (*page.Summary, error) {
	log := a.log.With(logger.Fields{"site": site.Name})

	snap, err := a.captureSnapshot(ctx, site, log)
	if err != nil {
		return nil, err
	}

	summary, err := a.extractor().Summarize(snap)
	if err != nil {
		a.recordGuardFailure(err)
		log.Error("page rejected", logger.Fields{"url": snap.URL}, err)
		return nil, fmt.Errorf("summarizing %s: %w", site.Name, err)
	}

	if output == "" {
		output = site.Output
	}
	if err := a.store.SaveJSON(output, summary); err != nil {
		return nil, err
	}
	log.Info("summary written", logger.Fields{"path": a.store.Path(output), "heading": summary.PrimaryHeading})

	if err := WriteSummary(a.stdout, summary, format); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	return summary, nil
}

// runHours captures a site and stores its opening hours tables
func (a *app) runHours(ctx context.Context, site config.SiteConfig, format OutputFormat, output string) (*scraper.Hours, error) {
	log := a.log.With(logger.Fields{"site": site.Name})

	snap, err := a.captureSnapshot(ctx, site, log)
	if err != nil {
		return nil, err
	}

	hours, err := a.extractor().Hours(snap)
	if err != nil {
		a.recordGuardFailure(err)
		log.Error("page rejected", logger.Fields{"url": snap.URL}, err)
		return nil, fmt.Errorf("reading hours for %s: %w", site.Name, err)
	}
	if hours.IsEmpty() {
		a.metrics.IncrCounter("hours.empty")
		log.Warn("no hours tables found", logger.Fields{"url": snap.URL})
	}

	if output == "" {
		output = site.Output
	}
	if err := a.store.SaveJSON(output, hours); err != nil {
		return nil, err
	}
	log.Info("hours written", logger.Fields{
		"path":    a.store.Path(output),
		"fitness": len(hours.FitnessCentreHours),
		"pool":    len(hours.PoolHours),
	})

	if err := WriteHours(a.stdout, hours, format); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	return hours, nil
}

func (a *app) captureSnapshot(ctx context.Context, site config.SiteConfig, log *logger.Logger) (*scraper.Snapshot, error) {
	log.Debug("capturing page", logger.Fields{"url": site.URL, "fetch": site.Fetch})

	start := time.Now()
	snap, err := a.capture(ctx, site)
	a.metrics.RecordTiming("capture.duration", time.Since(start))
	if err != nil {
		a.metrics.IncrCounter("capture.error")
		log.Error("capture failed", logger.Fields{"url": site.URL}, err)
		return nil, fmt.Errorf("capturing %s: %w", site.Name, err)
	}

	log.Debug("page captured", logger.Fields{
		"responses": len(snap.Responses),
		"scripts":   len(snap.Scripts),
		"title":     schedule.NormalizeText(snap.Signature.PageTitle),
	})
	return snap, nil
}

func (a *app) recordGuardFailure(err error) {
	switch {
	case errors.Is(err, page.ErrBlocked):
		a.metrics.IncrCounter("extract.blocked")
	case errors.Is(err, page.ErrNoHeading):
		a.metrics.IncrCounter("extract.no_heading")
	}
}

// publish writes the result locally and to every configured publisher
func (a *app) publish(ctx context.Context, name string, result *schedule.Result, log *logger.Logger) error {
	path, err := a.store.Publish(ctx, name, result)
	if err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	log.Info("schedule written", logger.Fields{"path": path})

	for _, p := range a.publishers {
		location, err := p.Publish(ctx, name, result)
		if err != nil {
			a.metrics.IncrCounter("publish.error")
			log.Error("publish failed", nil, err)
			continue
		}
		log.Info("schedule published", logger.Fields{"location": location})
	}
	return nil
}

// announce sends added sessions to the notifier. Nothing is sent when there was no previous
// schedule to compare against.
func (a *app) announce(ctx context.Context, site string, previous *schedule.Result, diff *schedule.DiffResult, log *logger.Logger) {
	if a.notifier == nil || len(diff.Added) == 0 {
		return
	}
	if previous == nil || previous.IsEmpty() {
		log.Debug("no previous schedule, skipping announcements", nil)
		return
	}
	if err := a.notifier.Notify(ctx, site, diff.Added); err != nil {
		a.metrics.IncrCounter("notify.error")
		log.Error("notification failed", nil, err)
		return
	}
	a.metrics.IncrCounter("notify.sent")
	log.Info("new sessions announced", logger.Fields{"count": len(diff.Added)})
}

// logMetrics writes the run metrics at debug level
func (a *app) logMetrics() {
	a.log.Debug("run metrics", logger.Fields{"metrics": a.metrics.Snapshot()})
}

// resolveSite picks the site named name, or builds an ad-hoc one for url. With neither the
// first site of the wanted kind is used.
func resolveSite(cfg *config.Config, name, url, kind string) (config.SiteConfig, error) {
	if name != "" {
		site, ok := cfg.Site(name)
		if !ok {
			return config.SiteConfig{}, fmt.Errorf("unknown site: %s", name)
		}
		if url != "" {
			site.URL = url
		}
		return site, nil
	}
	if url != "" {
		fetch := config.FetchBrowser
		if kind == config.KindHours {
			fetch = config.FetchHTTP
		}
		return config.SiteConfig{Name: "adhoc", URL: url, Output: "adhoc.json", Kind: kind, Fetch: fetch}, nil
	}
	for _, s := range cfg.Sites {
		if s.Kind == kind {
			return s, nil
		}
	}
	return config.SiteConfig{}, fmt.Errorf("no %s site configured", kind)
}
