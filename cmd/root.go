package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "soultrader",
	Short: "Advisor-driven portfolio decision engine",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
