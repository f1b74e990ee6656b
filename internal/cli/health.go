package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the match server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			started := time.Now()
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}
			result.LatencyMs = time.Since(started).Milliseconds()
			result.Server = cfg.ServerURL

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
