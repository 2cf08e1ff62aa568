package table

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes every table to its own sheet with the date column first. Sheets are named
// after the tables.
func WriteXLSX(w io.Writer, tables ...*Table) error {
	if len(tables) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, tbl := range tables {
		if tbl == nil {
			return ErrNoData
		}
		sheet := sheetName(tbl.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("unable to name sheet %s, %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("unable to create sheet %s, %w", sheet, err)
		}

		header := make([]interface{}, 0, len(tbl.Cols)+1)
		header = append(header, DefaultDateColumn)
		for _, col := range tbl.Cols {
			header = append(header, col)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}

		for r := range tbl.T {
			cellName, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]interface{}, 0, len(tbl.Cols)+1)
			values = append(values, FormatDate(tbl.T[r]))
			for _, col := range tbl.Cols {
				v := tbl.Y[col][r]
				if math.IsNaN(v) {
					values = append(values, nil)
					continue
				}
				values = append(values, v)
			}
			if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func sheetName(name string, idx int) string {
	if name == "" {
		name = fmt.Sprintf("table_%d", idx+1)
	}
	// excel caps sheet names at 31 characters
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// FormatDate renders a date as a date only when it falls on midnight.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}
