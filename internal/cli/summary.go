package cli

import (
	"github.com/spf13/cobra"
	"github.com/vipteryx/centretracker/internal/config"
)

func newSummaryCmd(global *globalOptions) *cobra.Command {
	var (
		site   string
		url    string
		html   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Record the title and main heading of a site",
		Long: `Capture a page and store its title and primary heading. This is used for pages
such as facility hours that have no schedule to extract.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := ParseOutputFormat(format)
			if err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			s, err := resolveSite(cfg, site, url, config.KindSummary)
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

			_, err = a.runSummary(ctx, s, outputFormat, output)
			return err
		},
	}

	cmd.Flags().StringVar(&site, "site", "", "Configured site to summarize (defaults to the first summary site)")
	cmd.Flags().StringVar(&url, "url", "", "Page URL (overrides the site URL)")
	cmd.Flags().StringVar(&html, "html", "", "Read a saved HTML page instead of capturing the page")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or none")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name in the data directory (overrides the site output)")

	return cmd
}
