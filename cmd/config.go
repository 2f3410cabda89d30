package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage daybook configuration file values.",
	Long: `Create and display the daybook configuration file.

The configuration stores the service endpoints and tuning values:
- worklog.url / worklog.token
- tracker.url
- reconcile.logged_threshold_percent / reconcile.conflict_ratio_percent
- suggest.limit / suggest.rejection_threshold
- storage.path`,
	Example: `
  # Create default config in $HOME/.daybook.yaml
  daybook config create

  # Show active config and source file
  daybook config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
