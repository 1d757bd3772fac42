package cli

import (
	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			scores, err := a.client.TopScores(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.println(renderScores(scores))
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "Number of scores to show (max 100)")
	return cmd
}
