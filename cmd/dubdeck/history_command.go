package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dubdeck/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the local creation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled; enable it under [history] in the configuration")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No creation attempts recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Title,
					rec.SourceType,
					rec.Outcome,
					rec.Detail,
				})
			}
			out := renderTable(
				[]string{"When", "Title", "Source", "Outcome", "Detail"},
				rows,
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)

			completed, err := store.CountByOutcome(cmd.Context(), history.OutcomeCompleted)
			if err != nil {
				return err
			}
			failed, err := store.CountByOutcome(cmd.Context(), history.OutcomeFailed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d completed, %d failed\n", completed, failed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	return cmd
}
