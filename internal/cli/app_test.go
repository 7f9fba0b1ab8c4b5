package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipteryx/centretracker/internal/config"
	"github.com/vipteryx/centretracker/internal/filter"
	"github.com/vipteryx/centretracker/internal/logger"
	"github.com/vipteryx/centretracker/internal/page"
	"github.com/vipteryx/centretracker/internal/schedule"
	"github.com/vipteryx/centretracker/internal/scraper"
	"github.com/vipteryx/centretracker/internal/storage"
)

var febClock = schedule.FixedClock{T: time.Date(2024, time.February, 20, 8, 0, 0, 0, time.UTC)}

const sessionsBody = `{"body": {"activity_items": [
	{"activity_name": "Lane Swim", "date": "2024-02-26", "start_time": "2024-02-26T06:00:00", "end_time": "2024-02-26T09:00:00", "location": "Main Pool"},
	{"activity_name": "Aquafit", "date": "2024-02-26", "start_time": "2024-02-26T10:00:00", "end_time": "2024-02-26T11:00:00"},
	{"activity_name": "Public Swim", "date": "2024-02-27", "start_time": "2024-02-27T13:30:00", "end_time": "2024-02-27T15:00:00"}
]}}`

func poolSnapshot(body string) *scraper.Snapshot {
	return &scraper.Snapshot{
		URL:        "https://example.com/pool",
		CapturedAt: febClock.Now(),
		Signature:  page.Signature{PageTitle: "Britannia Pool", PrimaryHeading: "Britannia Pool"},
		Responses:  []scraper.Capture{{URL: "https://example.com/api/sessions", ContentType: "application/json", Body: body}},
		HTML:       "<html><body><h1>Britannia Pool</h1></body></html>",
	}
}

type fakePublisher struct {
	names []string
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, name string, _ *schedule.Result) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.names = append(p.names, name)
	return "memory://" + name, nil
}

func newTestApp(t *testing.T, snap *scraper.Snapshot) (*app, *bytes.Buffer) {
	t.Helper()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.DataDir = store.Dir()

	var out bytes.Buffer
	a := &app{
		cfg:     cfg,
		store:   store,
		log:     logger.New(logger.LevelError, io.Discard),
		metrics: logger.NewMetrics(),
		clock:   febClock,
		capture: func(context.Context, config.SiteConfig) (*scraper.Snapshot, error) {
			return snap, nil
		},
		stdout: &out,
	}
	return a, &out
}

func testSite() config.SiteConfig {
	return config.SiteConfig{Name: "britannia-pool", URL: "https://example.com/pool", Output: "pool-times.json", Kind: config.KindSchedule}
}

func TestRunScheduleStoresResult(t *testing.T) {
	a, out := newTestApp(t, poolSnapshot(sessionsBody))
	pub := &fakePublisher{}
	a.publishers = []storage.Publisher{pub}

	run, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatText, showDiff: true})
	require.NoError(t, err)

	assert.Equal(t, "structured", run.Report.Strategy)
	assert.Equal(t, 3, run.Result.SessionCount())
	assert.Len(t, run.Diff.Added, 3)
	assert.Equal(t, []string{"pool-times.json"}, pub.names)
	assert.Equal(t, int64(1), a.metrics.Counter("extract.strategy.structured"))

	stored, err := a.store.LoadResult("pool-times.json")
	require.NoError(t, err)
	assert.Equal(t, run.Result, stored)

	assert.Contains(t, out.String(), "Monday, 2024-02-26")
	assert.Contains(t, out.String(), "3 added, 0 removed")
}

func TestRunScheduleFailOnChange(t *testing.T) {
	a, _ := newTestApp(t, poolSnapshot(sessionsBody))
	opts := scheduleOptions{format: FormatNone, failOnChange: true}

	// first run has no previous schedule, so everything is new
	_, err := a.runSchedule(context.Background(), testSite(), opts)
	assert.ErrorIs(t, err, ErrChanged)
	assert.Equal(t, ExitChanged, exitCode(err))

	run, err := a.runSchedule(context.Background(), testSite(), opts)
	require.NoError(t, err)
	assert.False(t, run.Diff.HasChanges())
}

func TestRunScheduleFilterKeepsStoredResult(t *testing.T) {
	a, out := newTestApp(t, poolSnapshot(sessionsBody))
	f := filter.NewFilter()
	f.Names = []string{"swim"}

	run, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatJSON, filter: f})
	require.NoError(t, err)
	assert.Equal(t, 3, run.Result.SessionCount())

	assert.NotContains(t, out.String(), "Aquafit")
	assert.Contains(t, out.String(), "Public Swim")

	stored, err := a.store.LoadResult("pool-times.json")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.SessionCount())
}

func TestRunScheduleEmptySavesDebugHTML(t *testing.T) {
	a, out := newTestApp(t, poolSnapshot(`{"theme": "dark"}`))

	run, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatText})
	require.NoError(t, err)
	assert.True(t, run.Report.Empty)
	assert.Equal(t, int64(1), a.metrics.Counter("extract.empty"))

	_, err = os.Stat(filepath.Join(a.store.Dir(), "britannia-pool-"+storage.DebugHTMLName))
	assert.NoError(t, err)

	stored, err := a.store.LoadResult("pool-times.json")
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
	assert.Contains(t, out.String(), "No sessions found.")
}

func TestRunScheduleBlockedPage(t *testing.T) {
	snap := poolSnapshot(sessionsBody)
	snap.Signature.PageTitle = "Attention Required! | Cloudflare"
	a, _ := newTestApp(t, snap)

	run, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatText})
	assert.Nil(t, run)
	assert.ErrorIs(t, err, page.ErrBlocked)
	assert.Equal(t, ExitError, exitCode(err))
	assert.Equal(t, int64(1), a.metrics.Counter("extract.blocked"))

	_, err = os.Stat(a.store.Path("pool-times.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunScheduleCaptureError(t *testing.T) {
	a, _ := newTestApp(t, nil)
	a.capture = func(context.Context, config.SiteConfig) (*scraper.Snapshot, error) {
		return nil, errors.New("browser crashed")
	}

	_, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatNone})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capturing britannia-pool")
	assert.Equal(t, int64(1), a.metrics.Counter("capture.error"))
}

func TestRunScheduleContinuesWhenPublisherFails(t *testing.T) {
	a, _ := newTestApp(t, poolSnapshot(sessionsBody))
	a.publishers = []storage.Publisher{&fakePublisher{err: errors.New("access denied")}}

	_, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatNone})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.metrics.Counter("publish.error"))
}

type fakeNotifier struct {
	site    string
	changes []*schedule.SessionChange
}

func (n *fakeNotifier) Notify(_ context.Context, site string, changes []*schedule.SessionChange) error {
	n.site = site
	n.changes = append(n.changes, changes...)
	return nil
}

func TestRunScheduleAnnouncesAddedSessions(t *testing.T) {
	first := `{"items": [{"activity_name": "Lane Swim", "date": "2024-02-26", "time": "6:00am - 9:00am"}]}`
	a, _ := newTestApp(t, poolSnapshot(first))
	n := &fakeNotifier{}
	a.notifier = n

	// nothing stored yet, so the first run is not announced
	_, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatNone})
	require.NoError(t, err)
	assert.Empty(t, n.changes)

	a.capture = func(context.Context, config.SiteConfig) (*scraper.Snapshot, error) {
		return poolSnapshot(sessionsBody), nil
	}
	run, err := a.runSchedule(context.Background(), testSite(), scheduleOptions{format: FormatNone})
	require.NoError(t, err)
	assert.Len(t, run.Diff.Removed, 1)

	assert.Equal(t, "britannia-pool", n.site)
	require.Len(t, n.changes, 3)
	assert.Equal(t, int64(1), a.metrics.Counter("notify.sent"))
}

func TestNewNotifier(t *testing.T) {
	n, err := newNotifier("none", io.Discard)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = newNotifier("dry-run", io.Discard)
	require.NoError(t, err)
	assert.NotNil(t, n)

	_, err = newNotifier("pager", io.Discard)
	assert.Error(t, err)
}

func TestRunSummary(t *testing.T) {
	a, out := newTestApp(t, poolSnapshot(sessionsBody))
	site := config.SiteConfig{Name: "britannia-hours", URL: "https://example.com/hours", Output: "britannia-hours.json", Kind: config.KindSummary}

	summary, err := a.runSummary(context.Background(), site, FormatText, "")
	require.NoError(t, err)
	assert.Equal(t, "Britannia Pool", summary.PrimaryHeading)
	assert.Equal(t, "2024-02-20T08:00:00.000Z", summary.LastUpdated)
	assert.Contains(t, out.String(), "Britannia Pool")

	data, err := os.ReadFile(a.store.Path("britannia-hours.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pageTitle": "Britannia Pool"`)
}

const hoursPage = `<html><head><title>Britannia Pool</title></head><body><h1>Britannia Pool</h1>
<h2>Fitness centre hours</h2>
<table><tr><th>Monday to Friday</th><th>Weekends</th></tr><tr><td>6 am - 10 pm</td><td>8 am -  8 pm</td></tr></table>
<h3>Pool hours and schedule</h3>
<p>Lane swim only</p>
</body></html>`

func hoursSnapshot() *scraper.Snapshot {
	return &scraper.Snapshot{
		URL:        "https://example.com/hours",
		CapturedAt: febClock.Now(),
		Signature:  page.Signature{PageTitle: "Britannia Pool", PrimaryHeading: "Britannia Pool"},
		HTML:       hoursPage,
	}
}

func TestRunHours(t *testing.T) {
	a, out := newTestApp(t, hoursSnapshot())
	site := config.SiteConfig{Name: "britannia-hours", URL: "https://example.com/hours", Output: "britannia-hours.json", Kind: config.KindHours}

	hours, err := a.runHours(context.Background(), site, FormatText, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Monday to Friday": "6 am - 10 pm", "Weekends": "8 am - 8 pm"}, hours.FitnessCentreHours)
	assert.Empty(t, hours.PoolHours)
	assert.Contains(t, out.String(), "Monday to Friday")
	assert.Contains(t, out.String(), "Not found")

	data, err := os.ReadFile(a.store.Path("britannia-hours.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lastUpdated": "2024-02-20T08:00:00.000Z"`)
	assert.Contains(t, string(data), `"poolHours": {}`)
}

func TestRunHoursBlocked(t *testing.T) {
	snap := hoursSnapshot()
	snap.Signature.PageTitle = "Attention Required! | Cloudflare"
	a, _ := newTestApp(t, snap)
	site := config.SiteConfig{Name: "britannia-hours", URL: "https://example.com/hours", Output: "britannia-hours.json", Kind: config.KindHours}

	_, err := a.runHours(context.Background(), site, FormatNone, "")
	assert.ErrorIs(t, err, page.ErrBlocked)
	assert.Equal(t, int64(1), a.metrics.Snapshot().Counters["extract.blocked"])

	_, err = os.Stat(a.store.Path("britannia-hours.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRefreshAllRunsEverySite(t *testing.T) {
	a, out := newTestApp(t, poolSnapshot(sessionsBody))
	a.cfg.Sites = []config.SiteConfig{
		testSite(),
		{Name: "britannia-summary", URL: "https://example.com/summary", Output: "britannia-summary.json", Kind: config.KindSummary},
		{Name: "britannia-hours", URL: "https://example.com/hours", Output: "britannia-hours.json", Kind: config.KindHours},
	}

	require.NoError(t, a.refreshAll(context.Background()))
	assert.Empty(t, out.String())

	for _, name := range []string{"pool-times.json", "britannia-summary.json", "britannia-hours.json"} {
		_, err := os.Stat(a.store.Path(name))
		assert.NoError(t, err, name)
	}
}

func TestRefreshAllReportsFailures(t *testing.T) {
	snap := poolSnapshot(sessionsBody)
	snap.Signature.PrimaryHeading = ""
	a, _ := newTestApp(t, snap)
	a.cfg.Sites = []config.SiteConfig{testSite()}

	err := a.refreshAll(context.Background())
	assert.ErrorIs(t, err, page.ErrNoHeading)
}

func TestResolveSite(t *testing.T) {
	cfg := config.DefaultConfig()

	site, err := resolveSite(cfg, "", "", config.KindSchedule)
	require.NoError(t, err)
	assert.Equal(t, "britannia-pool", site.Name)

	site, err = resolveSite(cfg, "", "", config.KindSummary)
	require.NoError(t, err)
	assert.Equal(t, "vancouver-aquatic-centre", site.Name)

	site, err = resolveSite(cfg, "", "", config.KindHours)
	require.NoError(t, err)
	assert.Equal(t, "britannia-hours", site.Name)
	assert.Equal(t, config.FetchHTTP, site.Fetch)

	site, err = resolveSite(cfg, "", "https://example.com/hours", config.KindHours)
	require.NoError(t, err)
	assert.Equal(t, config.FetchHTTP, site.Fetch)

	site, err = resolveSite(cfg, "britannia-pool", "https://example.com/other", config.KindSchedule)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other", site.URL)
	assert.Equal(t, "pool-times.json", site.Output)

	site, err = resolveSite(cfg, "", "https://example.com/adhoc", config.KindSchedule)
	require.NoError(t, err)
	assert.Equal(t, "adhoc", site.Name)

	_, err = resolveSite(cfg, "missing", "", config.KindSchedule)
	assert.Error(t, err)
}

func TestBuildFilter(t *testing.T) {
	now := time.Date(2024, time.February, 20, 8, 0, 0, 0, time.UTC)

	f, err := buildFilter(&scheduleFlags{}, now)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = buildFilter(&scheduleFlags{activities: []string{"swim"}, dates: "Feb 26-28", weekends: true}, now)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "2024-02-26", f.DateFrom)
	assert.Equal(t, "2024-02-28", f.DateTo)
	assert.True(t, f.WeekendsOnly)

	_, err = buildFilter(&scheduleFlags{dates: "Feb 30"}, now)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitChanged, exitCode(ErrChanged))
	assert.Equal(t, ExitChanged, exitCode(errors.Join(errors.New("other"), ErrChanged)))
	assert.Equal(t, ExitError, exitCode(errors.New("boom")))
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"schedule", "summary", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("data-dir"))
}
