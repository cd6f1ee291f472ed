package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hytalepanel/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hytalepanel %s (commit %s, built %s)\n", version.Version(), version.Commit(), version.BuildDate())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
