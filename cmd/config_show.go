package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"daybook/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  daybook config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		fmt.Println("Configuration:")
		fmt.Printf("worklog.url: %s\n", cfg.Worklog.URL)
		fmt.Printf("worklog.token: %s\n", maskToken(cfg.Worklog.Token))
		fmt.Printf("tracker.url: %s\n", cfg.Tracker.URL)
		fmt.Printf("reconcile.logged_threshold_percent: %d\n", cfg.Reconcile.LoggedThresholdPercent)
		fmt.Printf("reconcile.conflict_ratio_percent: %d\n", cfg.Reconcile.ConflictRatioPercent)
		fmt.Printf("suggest.limit: %d\n", cfg.Suggest.Limit)
		fmt.Printf("suggest.rejection_threshold: %d\n", cfg.Suggest.RejectionThreshold)
		fmt.Printf("storage.path: %s\n", cfg.Storage.Path)
	},
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + "****" + token[len(token)-2:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
