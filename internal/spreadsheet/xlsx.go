// Package spreadsheet renders export rows as XLSX workbooks.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"github.com/deskline/support-portal/internal/ticketview"
)

// Workbook builds a single-sheet workbook with a bold header row followed by
// rows. The caller owns the returned file and must Close it.
func Workbook(rows []ticketview.Row) (*excelize.File, error) {
	if len(rows) == 0 {
		return nil, ticketview.ErrNothingToExport
	}
	f := excelize.NewFile()
	sheet := ticketview.ExportSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, len(ticketview.ExportColumns))
	for i, col := range ticketview.ExportColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			f.Close()
			return nil, fmt.Errorf("column width %s: %w", name, err)
		}
		header = append(header, col.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f, nil
}

// WriteXLSX streams the workbook for rows to w.
func WriteXLSX(w io.Writer, rows []ticketview.Row) error {
	f, err := Workbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveXLSX writes the workbook for rows to path atomically, so readers never
// see a half-written file.
func SaveXLSX(path string, rows []ticketview.Row) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return os.Chmod(path, 0o644)
}
