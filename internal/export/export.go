// Package export writes selected history entries to a spreadsheet or CSV
// file with the columns Timestamp, Content, Name and Note.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"go.klb.dev/cliplog/internal/history"
)

// TimeLayout formats the Timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Header is the first row of every export.
var Header = []string{"Timestamp", "Content", "Name", "Note"}

// Rows returns the data rows for entries, in order. Timestamp is the last
// copy time in the local zone.
func Rows(entries []history.Entry) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.LastCopiedAt.Local().Format(TimeLayout),
			e.Content,
			e.Name,
			e.Note,
		}
	}
	return rows
}

// WriteCSV writes entries as CSV, header first.
func WriteCSV(w io.Writer, entries []history.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(entries)); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes entries to a new workbook at path.
func WriteXLSX(path string, entries []history.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, row := range Rows(entries) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return fmt.Errorf("xlsx layout: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return fmt.Errorf("xlsx layout: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save %s: %w", path, err)
	}
	return nil
}

// ToFile picks the format from the extension of path: .xlsx for a workbook,
// .csv for CSV. "-" writes CSV to stdout.
func ToFile(path string, entries []history.Entry, stdout io.Writer) error {
	if path == "-" {
		return WriteCSV(stdout, entries)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, entries)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := WriteCSV(f, entries); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("export %s: unsupported format, use .xlsx or .csv", path)
}
