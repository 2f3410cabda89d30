/*
Copyright © 2026 daybook authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"daybook/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Reconcile passively tracked activity against your work-log system.",
	Long: `daybook pulls one day's activity samples from a tracking agent and the
same day's committed entries from a work-log system, then reconciles the
two: every observed block is classified as not logged, partially logged,
fully logged, or conflicting. Blocks can be merged into one loggable
entry (and split back apart losslessly), prechecked for double-booking,
and submitted.`,
	Example: `
  # Create configuration file
  daybook config create

  # Show today's reconciliation table
  daybook status

  # Merge three tracked blocks into one loggable block
  daybook merge --date 2026-03-02 --ids a1,b2,c3

  # Split an aggregate back into its originals
  daybook split --date 2026-03-02 --id 7f3e...

  # Precheck and submit a new entry
  daybook submit --date 2026-03-02 --start 09:00 --duration 3600 --ticket ABC-123 --description "standup"

  # Rank ticket suggestions for an observed activity
  daybook suggest --app "IntelliJ" --title "ABC-123 fix flaky import test"

  # Export the reconciled day
  daybook export --date 2026-03-02 --mode csv --output ./day.csv
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.daybook.yaml, then ./.daybook.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".daybook" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".daybook")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: daybook config create")
	}
}
