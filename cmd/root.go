// Package cmd contains the CLI commands for the panel binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hytalepanel/pkg/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hytalepanel",
	Short: "Hytale Panel - web administration panel for Hytale dedicated servers",
	Long: `Hytale Panel is a single-binary web panel for managing containerized
Hytale dedicated servers: lifecycle, live console, files, mods and
authenticated game-binary downloads.`,
}

// Execute sets build info and runs the root command.
func Execute(v, c, d string) {
	version.Set(v, c, d)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hytalepanel.yaml)")
}
