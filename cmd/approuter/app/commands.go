// Package app provides the entry point for the approuter command-line
// application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:               "approuter",
	DisableAutoGenTag: true,
	Short:             "Menu-based application router for an interactive messaging bus",
	Long: `approuter sits between a user-facing transport connector and one or
more application connectors on a message bus. On first contact it presents a
numbered menu of configured applications; on the user's selection it routes
the rest of the dialog to the chosen application, including the delivery
events that trail in after a message has been sent.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// NewRootCmd creates the root command for the approuter CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}
