package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/velodata/baacviz/internal/baac"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Print the exclusion report and per-field missing counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, report, err := loadPrepared(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		fmt.Printf("rows:     %d\n", report.TotalRows)
		fmt.Printf("kept:     %d\n", report.Kept)
		fmt.Printf("excluded: %d\n", report.Excluded())
		for _, reason := range report.ReasonKeys() {
			fmt.Printf("  %-24s %d\n", reason, report.Reasons[reason])
		}

		missing := baac.MissingReport(table)
		fields := make([]string, 0, len(missing))
		for f := range missing {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		fmt.Println("\nunknown values per field:")
		for _, f := range fields {
			fmt.Printf("  %-24s %d\n", f, missing[f])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}
