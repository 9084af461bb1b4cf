package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dkoh/mend/internal/config"
	"github.com/dkoh/mend/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past analysis runs",
}

func openHistory() (*history.Store, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryPath)
}

var flagHistoryLimit int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analysis records",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stdout, "No history records.")
			return nil
		}
		for _, r := range records {
			status := "ok"
			if !r.Succeeded {
				status = "FAIL"
			}
			fmt.Fprintf(os.Stdout, "%5d  %-25s  %-4s  %6.1fs  %s\n",
				r.ID, r.Timestamp, status, r.ElapsedSeconds, r.DisplayName)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one analysis record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id: %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.Get(id)
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No record with id %d\n", id)
			exitCode = ExitUsageError
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "ID:        %d\n", r.ID)
		fmt.Fprintf(os.Stdout, "File:      %s (%s)\n", r.DisplayName, r.Identifier)
		fmt.Fprintf(os.Stdout, "Time:      %s\n", r.Timestamp)
		fmt.Fprintf(os.Stdout, "Elapsed:   %.1fs\n", r.ElapsedSeconds)
		if r.Succeeded {
			fmt.Fprintf(os.Stdout, "Status:    succeeded\n")
			fmt.Fprintf(os.Stdout, "Report:    %s\n", r.ReportName)
			fmt.Fprintf(os.Stdout, "Markdown:  %s\n", r.MarkdownPath)
			fmt.Fprintf(os.Stdout, "HTML:      %s\n", r.HTMLPath)
		} else {
			fmt.Fprintf(os.Stdout, "Status:    failed\n")
			fmt.Fprintf(os.Stdout, "Error:     %s\n", r.ErrorMessage)
		}
		return nil
	},
}

var flagHistoryFiles bool

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an analysis record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id: %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		if flagHistoryFiles {
			err = store.DeleteWithFiles(id)
		} else {
			err = store.Delete(id)
		}
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No record with id %d\n", id)
			exitCode = ExitUsageError
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted record %d.\n", id)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Total:      %d\n", stats.Total)
		fmt.Fprintf(os.Stdout, "Succeeded:  %d\n", stats.Succeeded)
		fmt.Fprintf(os.Stdout, "Failed:     %d\n", stats.Failed)
		fmt.Fprintf(os.Stdout, "Avg time:   %.1fs\n", stats.AvgElapsedSecs)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyListCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum records to list")
	historyDeleteCmd.Flags().BoolVar(&flagHistoryFiles, "files", false, "Also delete the report files")
}
