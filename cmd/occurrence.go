package cmd

import (
	"fmt"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	"github.com/shivasurya/apimisuse/analytics"
	"github.com/shivasurya/apimisuse/occurrence"
	"github.com/shivasurya/apimisuse/output"
	"github.com/spf13/cobra"
)

var occurrenceFlags struct {
	dir string
}

var occurrenceCmd = &cobra.Command{
	Use:   "occurrence",
	Short: "Roll up per-bitcode function-occurrence counts",
	Long: `occurrence unions the per-bitcode occurrence files the trace
extractor writes alongside feature files into a single
total_occurrences.json mapping function name to total occurrence count.`,
	RunE: runOccurrenceSummarize,
}

var occurrenceQueryFlags struct {
	min int
}

var occurrenceQueryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Query a function's total occurrence count against a minimum",
	Args:  cobra.ExactArgs(1),
	RunE:  runOccurrenceQuery,
}

func init() {
	rootCmd.AddCommand(occurrenceCmd)
	occurrenceCmd.AddCommand(occurrenceQueryCmd)

	occurrenceCmd.Flags().StringVar(&occurrenceFlags.dir, "dir", ".", "directory of per-bitcode occurrence JSON files")
	occurrenceQueryCmd.Flags().StringVar(&occurrenceFlags.dir, "dir", ".", "directory containing total_occurrences.json")
	occurrenceQueryCmd.Flags().IntVar(&occurrenceQueryFlags.min, "min", 0, "only report functions whose total count exceeds this")
}

func runOccurrenceSummarize(cmd *cobra.Command, _ []string) error {
	logger := output.NewLogger(verbosityFromFlag())
	analytics.ReportEvent(analytics.OccurrenceStarted)

	totals, err := occurrence.Summarize(occurrenceFlags.dir)
	if err != nil {
		analytics.ReportEvent(analytics.OccurrenceFailed)
		return fmt.Errorf("summarize occurrences: %w", err)
	}

	if err := occurrence.Write(occurrenceFlags.dir, totals); err != nil {
		analytics.ReportEvent(analytics.OccurrenceFailed)
		return fmt.Errorf("write occurrence summary: %w", err)
	}

	sum := 0
	for _, count := range totals {
		sum += count
	}
	logger.Statistic("rolled up %s total occurrence(s) across %d function(s)", humanize.Comma(int64(sum)), len(totals))
	fmt.Printf("wrote %s\n", filepath.Join(occurrenceFlags.dir, "total_occurrences.json"))

	analytics.ReportEventWithProperties(analytics.OccurrenceCompleted, map[string]interface{}{
		"function_count": len(totals),
	})
	return nil
}

func runOccurrenceQuery(cmd *cobra.Command, args []string) error {
	path := filepath.Join(occurrenceFlags.dir, "total_occurrences.json")
	totals, err := occurrence.Load(path)
	if err != nil {
		return fmt.Errorf("load occurrence summary: %w", err)
	}

	matches := occurrence.Query(totals, args[0], occurrenceQueryFlags.min)
	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%s: %s\n", m.Name, humanize.Comma(int64(m.Count)))
	}
	return nil
}
