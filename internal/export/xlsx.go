package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/velodata/baacviz/internal/query"
)

// Workbook is the content of one exported XLSX file: the headline summary
// plus one sheet per aggregation, in insertion order.
type Workbook struct {
	Summary query.Summary
	sheets  []namedGroups
}

type namedGroups struct {
	name   string
	groups []query.Group
}

// AddSheet appends an aggregation sheet.
func (w *Workbook) AddSheet(name string, groups []query.Group) {
	w.sheets = append(w.sheets, namedGroups{name: name, groups: groups})
}

// WriteXLSX writes the workbook to path.
func WriteXLSX(path string, wb *Workbook) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addKV := func(k string, v interface{}) {
		row := sheet.AddRow()
		row.AddCell().SetString(k)
		row.AddCell().SetValue(v)
	}
	addKV("total", wb.Summary.Total)
	addKV("fatal", wb.Summary.Fatal)
	addKV("severe", wb.Summary.Severe)
	addKV("mean_age", wb.Summary.MeanAge)
	addKV("common_period", string(wb.Summary.CommonPeriod))

	for _, ng := range wb.sheets {
		sheet, err := file.AddSheet(ng.name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", ng.name)
		}
		header := sheet.AddRow()
		header.AddCell().SetString("key")
		header.AddCell().SetString("count")
		for _, g := range ng.groups {
			row := sheet.AddRow()
			row.AddCell().SetString(g.Key)
			row.AddCell().SetInt(g.Count)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
