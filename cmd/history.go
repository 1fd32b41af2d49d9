package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent AI requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveHistoryPath(cfg)
		if err != nil {
			return err
		}

		store, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		records, err := store.Recent(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No requests recorded yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-19s  %-10s  %-30s  %-11s  %6s  %6s  %7s  %s\n",
			"Timestamp", "Provider", "Model", "Purpose", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("-", 104))
		for _, r := range records {
			ok := "yes"
			if !r.Success {
				ok = "no"
			}
			model := r.Model
			if len(model) > 30 {
				model = model[:27] + "..."
			}
			fmt.Fprintf(out, "%-19s  %-10s  %-30s  %-11s  %6d  %6d  %7d  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Provider, model, r.Purpose,
				r.PromptTokens, r.CompletionTokens, r.LatencyMs, ok)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of requests to show")
}
