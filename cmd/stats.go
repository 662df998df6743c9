package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velodata/baacviz/internal/query"
)

var (
	statsBy      string
	statsTop     int
	statsFilters filterFlags
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print grouped counts for one dimension",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := statsFilters.criteria()
		if err != nil {
			return err
		}

		table, _, err := loadPrepared(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		filtered := query.Apply(table, criteria)
		groups, err := query.CountBy(filtered, statsBy)
		if err != nil {
			return err
		}
		if statsTop > 0 {
			groups = query.TopN(groups, statsTop)
		}

		fmt.Printf("%d of %d records match\n\n", filtered.Len(), table.Len())
		for _, g := range groups {
			fmt.Printf("%-28s %d\n", g.Key, g.Count)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsBy, "by", query.DimYear,
		"dimension: "+strings.Join(query.Dimensions, ", "))
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "keep only the N most frequent groups")
	statsFilters.register(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
