package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/queensdev/devnews/internal/logger"
	"github.com/queensdev/devnews/internal/record"
)

const (
	DailySheet  = "daily_log"
	WeeklySheet = "weekly_rollup"
)

// Columns is the fixed header of both sheets, in order. Downstream
// consumers rely on the workbook always having this shape.
var Columns = []string{"date", "title", "neighborhood", "action", "source", "link"}

// LoadPartition reads one sheet of the workbook back into records. Any
// failure (file missing, workbook corrupt, sheet not present) yields an
// empty collection: prior history is an optimization, never a precondition.
func LoadPartition(path, sheet string) []record.Record {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("workbook unreadable, starting partition empty", "path", path, "sheet", sheet, "error", err)
		}
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		logger.Warn("sheet unreadable, starting partition empty", "path", path, "sheet", sheet, "error", err)
		return nil
	}
	if len(rows) <= 1 {
		return nil
	}

	out := make([]record.Record, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		out = append(out, fromRow(row))
	}
	return out
}

func fromRow(row []string) record.Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return record.Record{
		Date:         record.ParseDate(cell(0)),
		Title:        cell(1),
		Neighborhood: cell(2),
		Action:       cell(3),
		Source:       cell(4),
		Link:         cell(5),
	}
}

// SaveAll rewrites the workbook with both partitions. Both sheets are always
// written, headers included, even when empty, so the artifact's shape is
// stable across runs. The write goes to a temp file first and is swapped in
// with a rename.
func SaveAll(path string, daily, weekly []record.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", DailySheet)
	if _, err := f.NewSheet(WeeklySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", WeeklySheet, err)
	}

	if err := writeSheet(f, DailySheet, daily); err != nil {
		return err
	}
	if err := writeSheet(f, WeeklySheet, weekly); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, recs []record.Record) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}

	for i, r := range recs {
		date := ""
		if r.HasDate() {
			date = r.Date.Format(time.RFC3339)
		}
		row := []interface{}{date, r.Title, r.Neighborhood, r.Action, r.Source, r.Link}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row address in %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}
