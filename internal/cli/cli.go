package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vipteryx/centretracker/internal/config"
	"github.com/vipteryx/centretracker/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanged = 2
)

// ErrChanged is returned when --fail-on-change is set and the schedule changed
var ErrChanged = errors.New("schedule changed since the last run")

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	dataDir    string
	logLevel   string
	verbose    bool
	notify     string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "centretracker",
		Short: "Track weekly activity schedules of community centres and pools",
		Long: `A CLI tool that captures community centre and pool pages, extracts their weekly
activity schedules and reports what changed since the last run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory for schedules (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.notify, "notify", "", "Announce added sessions: none, dry-run or twitter (overrides config)")

	cmd.AddCommand(
		newScheduleCmd(opts),
		newSummaryCmd(opts),
		newHoursCmd(opts),
		newWatchCmd(opts),
	)

	return cmd
}

// loadConfig reads the config file and applies flag overrides
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.notify != "" {
		cfg.Notify = o.notify
	}
	if o.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the default logger for the configured level
func setupLogger(cfg *config.Config, w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.New(level, w)
	logger.SetDefault(log)
	return log, nil
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChanged):
		return ExitChanged
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrChanged) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}
