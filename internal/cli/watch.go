package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/vipteryx/centretracker/internal/config"
	"github.com/vipteryx/centretracker/internal/logger"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh every configured site on a schedule",
		Long: `Refresh every configured site whenever the cron spec in the config's refresh
setting fires. Schedule sites are extracted and summary sites are summarized. Stop
with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, captureSource{}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.log.Sync()

			if once {
				err := a.refreshAll(ctx)
				a.logMetrics()
				return err
			}
			return a.watch(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Refresh every site once and exit")

	return cmd
}

// refreshAll runs every configured site once. Failures are logged and the first one is returned
// after all sites have been attempted.
func (a *app) refreshAll(ctx context.Context) error {
	var errs []error
	for _, site := range a.cfg.Sites {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var err error
		switch site.Kind {
		case config.KindSummary:
			_, err = a.runSummary(ctx, site, FormatNone, "")
		case config.KindHours:
			_, err = a.runHours(ctx, site, FormatNone, "")
		default:
			_, err = a.runSchedule(ctx, site, scheduleOptions{format: FormatNone, sort: SortBySource})
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// watch refreshes all sites on the configured cron spec until ctx is done
func (a *app) watch(ctx context.Context) error {
	if _, err := cron.ParseStandard(a.cfg.Refresh); err != nil {
		return fmt.Errorf("invalid refresh spec %q: %w", a.cfg.Refresh, err)
	}

	var mu sync.Mutex
	c := cron.New(cron.WithLocation(a.cfg.Location()))
	_, err := c.AddFunc(a.cfg.Refresh, func() {
		// a slow capture must not overlap the next tick
		if !mu.TryLock() {
			a.log.Warn("previous refresh still running, skipping", nil)
			return
		}
		defer mu.Unlock()

		if err := a.refreshAll(ctx); err != nil {
			a.log.Error("refresh failed", nil, err)
		}
		a.logMetrics()
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}

	a.log.Info("watching sites", logger.Fields{"refresh": a.cfg.Refresh, "sites": len(a.cfg.Sites)})
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info("watch stopped", nil)
	return nil
}
