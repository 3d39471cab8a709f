package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var feedUserID string

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the ranked feed for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if feedUserID == "" {
			return eris.New("--user is required")
		}

		env, err := initPipeline(ctx, "feed")
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := env.Ranker.Rank(ctx, feedUserID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

func init() {
	feedCmd.Flags().StringVar(&feedUserID, "user", "", "user id to rank the feed for")
	rootCmd.AddCommand(feedCmd)
}
