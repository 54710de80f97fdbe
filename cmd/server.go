package cmd

import (
	"github.com/mosaicboards/mosaic/internal/api"
	"github.com/mosaicboards/mosaic/internal/config"
	"github.com/mosaicboards/mosaic/internal/telemetry"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "board-server",
	Short: "Start Board Server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_EXPORTER_OTLP_ENDPOINT)
		defer shutdownTelemetry()

		s := api.New()
		s.Start()
	},
}

// Register the "board-server" command
func init() {
	rootCmd.AddCommand(serverCmd)
}
