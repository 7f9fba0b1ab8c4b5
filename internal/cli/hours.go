package cli

import (
	"github.com/spf13/cobra"
	"github.com/vipteryx/centretracker/internal/config"
)

func newHoursCmd(global *globalOptions) *cobra.Command {
	var (
		site   string
		url    string
		html   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Record the fitness centre and pool hours tables of a site",
		Long: `Capture a facility page and store the tables that follow its "Fitness centre hours"
and "Pool hours and schedule" headings. Each table's header row is mapped to the row below it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := ParseOutputFormat(format)
			if err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			s, err := resolveSite(cfg, site, url, config.KindHours)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, captureSource{htmlPath: html}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.log.Sync()
			defer a.logMetrics()

			_, err = a.runHours(ctx, s, outputFormat, output)
			return err
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "Configured site to read (defaults to the first hours site)")
	cmd.Flags().StringVar(&url, "url", "", "Page URL (overrides the site URL)")
	cmd.Flags().StringVar(&html, "html", "", "Read a saved HTML page instead of fetching the page")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or none")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name in the data directory (overrides the site output)")

	return cmd
}
