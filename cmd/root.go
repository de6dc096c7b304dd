package cmd

import (
	"fmt"
	"os"

	"melofm/client"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "melofm",
	Short: "MeloFM is a headless music client with a local browser UI.",
	Run: func(cmd *cobra.Command, args []string) {
		client.Run()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
