package cli

import (
	"github.com/spf13/cobra"
)

func newMatchmakingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchmaking",
		Short: "Ranked matchmaking commands",
	}

	cmd.AddCommand(newMatchmakingFindCmd())

	return cmd
}

func newMatchmakingFindCmd() *cobra.Command {
	var difficulty, name string
	var elo int

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search for a ranked opponent, falling back to an AI",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"difficulty":  difficulty,
				"elo":         elo,
				"displayName": name,
			}
			var result MatchmakingResult

			if err := client.Post("/api/v1/matchmaking", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Puzzle difficulty: easy, medium, hard, expert (required)")
	cmd.Flags().IntVar(&elo, "elo", 0, "Your current rating (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name shown to your opponent")
	_ = cmd.MarkFlagRequired("difficulty")
	_ = cmd.MarkFlagRequired("elo")

	return cmd
}
