package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

// ErrNothingToExport is returned when no result carries a series
var ErrNothingToExport = errors.New("no index series to export")

const (
	dateLayout   = "2006-01-02"
	defaultSheet = "Sheet1"
)

// Write saves one sheet per successfully fetched series to path.
// Failed sources are skipped; empty series get a header-only sheet.
func Write(results []fetcher.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	written := 0
	keepDefault := false
	for _, res := range results {
		if !res.OK() {
			continue
		}
		if err := writeSheet(f, res.Series); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", res.Series.Name, err)
		}
		if res.Series.Name == defaultSheet {
			keepDefault = true
		}
		written++
	}
	if written == 0 {
		return ErrNothingToExport
	}

	if !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, series fetcher.Series) error {
	name := series.Name
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	if err := f.SetSheetRow(name, "A1", &[]any{"Date", series.Name}); err != nil {
		return err
	}
	for i, rec := range series.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &[]any{rec.Date.Format(dateLayout), rec.Value}); err != nil {
			return err
		}
	}
	return f.SetColWidth(name, "A", "A", 12)
}
