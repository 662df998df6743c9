package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/export"
	"github.com/velodata/baacviz/internal/query"
)

var (
	exportOut     string
	exportFilters filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered subset to CSV or XLSX",
	Long:  "Writes the filtered records as CSV, or a workbook of summary figures and per-dimension counts as XLSX. The format follows the output file extension.",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := exportFilters.criteria()
		if err != nil {
			return err
		}

		table, _, err := loadPrepared(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		filtered := query.Apply(table, criteria)

		switch {
		case strings.HasSuffix(exportOut, ".csv"):
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteCSV(f, filtered); err != nil {
				return err
			}

		case strings.HasSuffix(exportOut, ".xlsx"):
			wb := &export.Workbook{Summary: query.Summarize(filtered)}
			for _, dim := range query.Dimensions {
				groups, err := query.CountBy(filtered, dim)
				if err != nil {
					return err
				}
				wb.AddSheet("By "+dim, groups)
			}
			if err := export.WriteXLSX(exportOut, wb); err != nil {
				return err
			}

		default:
			return eris.Errorf("output file %q: want a .csv or .xlsx extension", exportOut)
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("records", filtered.Len()),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (.csv or .xlsx)")
	exportCmd.MarkFlagRequired("out") //nolint:errcheck
	exportFilters.register(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
