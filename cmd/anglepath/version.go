package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/anglepath"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of anglepath",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "anglepath version %s\n", anglepath.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
