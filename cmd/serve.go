package cmd

import (
	"github.com/spf13/cobra"

	"hytalepanel/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), cfgFile)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
