package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwstringx "github.com/msto63/kylang/foundation/utils/stringx"
	"github.com/msto63/kylang/internal/history"
)

var (
	historyLimit     int
	historyStatus    string
	historyOrigin    string
	historyFile      string
	historySince     time.Duration
	historyJSON      bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `Lists runs recorded in the history database ([history] path).
Runs are recorded when [history] enabled = true, by the playground server
and by the playground TUI.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run, including source and output",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyStatsCmd, historyPruneCmd)

	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "only runs with this status (ok, failed)")
	historyCmd.Flags().StringVar(&historyOrigin, "origin", "", "only runs from this origin (cli, server, playground)")
	historyCmd.Flags().StringVar(&historyFile, "file", "", "only runs of this file")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs started within this duration, e.g. 24h")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "age of the runs to delete")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := history.Filter{
		Status: history.Status(historyStatus),
		Origin: history.Origin(historyOrigin),
		File:   historyFile,
		Limit:  historyLimit,
	}
	if historySince > 0 {
		filter.Since = time.Now().Add(-historySince)
	}

	runs, err := store.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-8s  %-19s  %-10s  %-6s  %8s  %-20s  %s\n", "ID", "STARTED", "ORIGIN", "STATUS", "STEPS", "ERROR", "FILE")
	for _, r := range runs {
		fmt.Printf("%-8s  %-19s  %-10s  %-6s  %8d  %-20s  %s\n",
			mdwstringx.Truncate(r.ID, 8, ""),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Origin,
			r.Status,
			r.Steps,
			mdwstringx.Truncate(r.ErrorCode, 20, "…"),
			mdwstringx.FirstNonBlank(r.File, "-"),
		)
	}
	fmt.Printf("Total: %d run(s)\n", len(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(run)
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Origin:   %s\n", run.Origin)
	fmt.Printf("  File:     %s\n", mdwstringx.FirstNonBlank(run.File, "-"))
	fmt.Printf("  Status:   %s\n", run.Status)
	fmt.Printf("  Steps:    %d\n", run.Steps)
	fmt.Printf("  Duration: %s\n", run.Duration)
	fmt.Printf("  Hash:     %s\n", run.SourceHash)
	if run.Status == history.StatusFailed {
		fmt.Printf("  Error:    [%s] %s\n", run.ErrorCode, run.ErrorMessage)
	}

	fmt.Println("\nSource:")
	for i, line := range mdwstringx.SplitLines(run.Source) {
		fmt.Printf("%4d  %s\n", i+1, line)
	}
	if run.Output != "" {
		fmt.Println("\nOutput:")
		fmt.Print(run.Output)
	}
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(stats)
	}

	fmt.Printf("Runs:         %d\n", stats.Total)
	fmt.Printf("  ok:         %d\n", stats.ByStatus[history.StatusOK])
	fmt.Printf("  failed:     %d\n", stats.ByStatus[history.StatusFailed])
	fmt.Printf("Avg duration: %s\n", stats.AvgDuration)
	if !stats.LastRun.IsZero() {
		fmt.Printf("Last run:     %s\n", stats.LastRun.Local().Format(time.RFC3339))
	}

	if len(stats.ByErrorCode) > 0 {
		codes := make([]string, 0, len(stats.ByErrorCode))
		for code := range stats.ByErrorCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Println("Errors:")
		for _, code := range codes {
			fmt.Printf("  %s %d\n", mdwstringx.PadRight(code+":", 22), stats.ByErrorCode[code])
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if historyOlderThan <= 0 {
		return mdwerror.New("--older-than must be positive").WithCode(mdwerror.CodeInvalidInput)
	}
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Prune(cmd.Context(), historyOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d run(s) older than %s\n", removed, historyOlderThan)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
