package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
