package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orthoview/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Skips config loading so a broken config file cannot hide the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orthoview %s\n", version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
