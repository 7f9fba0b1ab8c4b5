package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vipteryx/centretracker/internal/config"
	"github.com/vipteryx/centretracker/internal/filter"
)

type scheduleFlags struct {
	site         string
	url          string
	snapshot     string
	html         string
	fetch        string
	format       string
	sort         string
	output       string
	failOnChange bool
	activities   []string
	locations    []string
	dates        string
	weekends     bool
	saveSnapshot bool
}

func newScheduleCmd(global *globalOptions) *cobra.Command {
	flags := &scheduleFlags{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Extract the weekly activity schedule of a site",
		Long: `Capture a centre or pool page, extract its weekly activity schedule and store it.
Sessions added or removed since the previous run are reported after the schedule.`,
		Example: `  centretracker schedule
  centretracker schedule --site britannia-pool --format json
  centretracker schedule --activity swim --dates "Feb 26-28"
  centretracker schedule --snapshot page.snapshot.json --fail-on-change`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduleCmd(cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.site, "site", "", "Configured site to extract (defaults to the first schedule site)")
	cmd.Flags().StringVar(&flags.url, "url", "", "Page URL (overrides the site URL)")
	cmd.Flags().StringVar(&flags.snapshot, "snapshot", "", "Read a saved snapshot instead of capturing the page")
	cmd.Flags().StringVar(&flags.html, "html", "", "Read a saved HTML page instead of capturing the page")
	cmd.Flags().StringVar(&flags.fetch, "fetch", "", "Capture mode: browser or http (overrides the site setting)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text, json, ics or none")
	cmd.Flags().StringVar(&flags.sort, "sort", "source", "Session order within a day: source, time or name")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file name in the data directory (overrides the site output)")
	cmd.Flags().BoolVar(&flags.failOnChange, "fail-on-change", false, "Exit with code 2 when sessions were added or removed")
	cmd.Flags().StringArrayVar(&flags.activities, "activity", nil, "Show only sessions whose name contains this text (repeatable)")
	cmd.Flags().StringArrayVar(&flags.locations, "location", nil, "Show only sessions whose location contains this text (repeatable)")
	cmd.Flags().StringVar(&flags.dates, "dates", "", "Show only days in this range (e.g. 'Feb 26-28', 'Mar 1 - Apr 15', 'March')")
	cmd.Flags().BoolVar(&flags.weekends, "weekends", false, "Show only Saturday and Sunday")
	cmd.Flags().BoolVar(&flags.saveSnapshot, "save-snapshot", false, "Save the captured snapshot to the data directory")

	return cmd
}

func runScheduleCmd(cmd *cobra.Command, global *globalOptions, flags *scheduleFlags) error {
	format, err := ParseOutputFormat(flags.format)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flags.sort)
	if err != nil {
		return err
	}
	if flags.fetch != "" && flags.fetch != config.FetchBrowser && flags.fetch != config.FetchHTTP {
		return fmt.Errorf("invalid fetch mode: %s (must be 'browser' or 'http')", flags.fetch)
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	site, err := resolveSite(cfg, flags.site, flags.url, config.KindSchedule)
	if err != nil {
		return err
	}

	f, err := buildFilter(flags, time.Now().In(cfg.Location()))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, captureSource{
		snapshotPath: flags.snapshot,
		htmlPath:     flags.html,
		fetch:        flags.fetch,
	}, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.log.Sync()
	defer a.logMetrics()

	_, err = a.runSchedule(ctx, site, scheduleOptions{
		format:       format,
		sort:         order,
		filter:       f,
		output:       flags.output,
		failOnChange: flags.failOnChange,
		saveSnapshot: flags.saveSnapshot,
		showDiff:     true,
	})
	return err
}

// buildFilter turns the display flags into a filter, or nil when none are set
func buildFilter(flags *scheduleFlags, now time.Time) (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Names = flags.activities
	f.Locations = flags.locations
	f.WeekendsOnly = flags.weekends

	if flags.dates != "" {
		from, to, err := filter.ParseDateRange(flags.dates, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	if f.IsEmpty() {
		return nil, nil
	}
	return f, nil
}
