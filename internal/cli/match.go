package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	private := &cobra.Command{
		Use:   "private",
		Short: "Private match commands",
	}
	private.AddCommand(newMatchPrivateCreateCmd())
	private.AddCommand(newMatchPrivateJoinCmd())

	cmd.AddCommand(private)
	cmd.AddCommand(newMatchGetCmd())
	cmd.AddCommand(newMatchReadyCmd())
	cmd.AddCommand(newMatchCompleteCmd())
	cmd.AddCommand(newMatchEloCmd())

	return cmd
}

func matchPath(id string, suffix string) string {
	return "/api/v1/matches/" + url.PathEscape(id) + suffix
}

func newMatchPrivateCreateCmd() *cobra.Command {
	var difficulty, name string
	var elo int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a private lobby and get an invite code",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"difficulty":  difficulty,
				"elo":         elo,
				"displayName": name,
			}
			var result CreatedMatch

			if err := client.Post("/api/v1/matches/private", req, &result); err != nil {
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

func newMatchPrivateJoinCmd() *cobra.Command {
	var name string
	var elo int

	cmd := &cobra.Command{
		Use:   "join <invite-code>",
		Short: "Join a private lobby by invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"inviteCode":  args[0],
				"elo":         elo,
				"displayName": name,
			}
			var result JoinedMatch

			if err := client.Post("/api/v1/matches/private/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&elo, "elo", 0, "Your current rating (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name shown to your opponent")
	_ = cmd.MarkFlagRequired("elo")

	return cmd
}

func newMatchGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show a match you are playing in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Get(matchPath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <match-id>",
		Short: "Mark yourself ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Post(matchPath(args[0], "/ready"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchCompleteCmd() *cobra.Command {
	var (
		winner, elapsed        int
		reason                 string
		p1Moves, p2Moves       int
		p1Errors, p2Errors     int
		p1Hints, p2Hints       int
		p1Complete, p2Complete bool
	)

	cmd := &cobra.Command{
		Use:   "complete <match-id>",
		Short: "Report the final state of an active match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("winner") {
				return fmt.Errorf("--winner is required")
			}

			req := map[string]any{
				"winner":          winner,
				"reason":          reason,
				"elapsedTime":     elapsed,
				"player1Moves":    p1Moves,
				"player2Moves":    p2Moves,
				"player1Errors":   p1Errors,
				"player2Errors":   p2Errors,
				"player1Hints":    p1Hints,
				"player2Hints":    p2Hints,
				"player1Complete": p1Complete,
				"player2Complete": p2Complete,
			}
			var result Match

			if err := client.Post(matchPath(args[0], "/complete"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&winner, "winner", 0, "Winning player number: 0 tie, 1 or 2 (required)")
	cmd.Flags().StringVar(&reason, "reason", "completion", "Win reason: completion, errors, timeout, forfeit")
	cmd.Flags().IntVar(&elapsed, "elapsed", 0, "Match duration in seconds")
	cmd.Flags().IntVar(&p1Moves, "p1-moves", 0, "Player 1 move count")
	cmd.Flags().IntVar(&p2Moves, "p2-moves", 0, "Player 2 move count")
	cmd.Flags().IntVar(&p1Errors, "p1-errors", 0, "Player 1 error count")
	cmd.Flags().IntVar(&p2Errors, "p2-errors", 0, "Player 2 error count")
	cmd.Flags().IntVar(&p1Hints, "p1-hints", 0, "Player 1 hint count")
	cmd.Flags().IntVar(&p2Hints, "p2-hints", 0, "Player 2 hint count")
	cmd.Flags().BoolVar(&p1Complete, "p1-complete", false, "Player 1 finished the board")
	cmd.Flags().BoolVar(&p2Complete, "p2-complete", false, "Player 2 finished the board")

	return cmd
}

func newMatchEloCmd() *cobra.Command {
	var winner int

	cmd := &cobra.Command{
		Use:   "elo <match-id>",
		Short: "Settle rating changes for a completed match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("winner") {
				return fmt.Errorf("--winner is required")
			}

			req := map[string]int{"winner": winner}
			var result EloResult

			if err := client.Post(matchPath(args[0], "/elo"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&winner, "winner", 0, "Winning player number: 0 tie, 1 or 2 (required)")

	return cmd
}
