package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/K497201/shutdown-dashboard/engine"
)

// ============================================================================
// EXPORT — Filtered Data for the "Download" Collaborator
// ============================================================================
// Hands the filtered canonical table to a tabular file, column-for-column.
// The column set follows the dataset's schema variant: remark and alert
// columns appear only when the source carried them.
// ============================================================================

const exportTimestamp = "2006-01-02 15:04:05"

// WriteXLSX writes a filtered view as a single-sheet workbook.
func WriteXLSX(w io.Writer, d *engine.Dataset, v engine.View) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers, project := exportColumns(d)
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i := 0; i < v.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := project(v.At(i))
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

// WriteCSV writes a filtered view as comma-delimited text.
func WriteCSV(w io.Writer, d *engine.Dataset, v engine.View) error {
	cw := csv.NewWriter(w)

	headers, project := exportColumns(d)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := cw.Write(project(v.At(i))); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// exportColumns builds the header list for the dataset's schema variant and
// a projection from Event to a row of cells in the same order.
func exportColumns(d *engine.Dataset) ([]string, func(engine.Event) []string) {
	headers := []string{
		"Site", "Well", "Shutdown Date/Time", "Start Up Date/Time",
		"Downtime (Hrs)", "ShutdownReason",
	}
	if d.HasRemark {
		headers = append(headers, "Remarks / Shutdown Reason")
	}
	if d.HasAlert {
		headers = append(headers, "Alert")
	}
	headers = append(headers, "Downtime Bucket", "Shutdown Month")

	project := func(e engine.Event) []string {
		row := []string{
			e.Site, e.Well,
			e.ShutdownAt.Format(exportTimestamp),
			formatStartup(e),
			formatHours(e.DowntimeHours),
			e.Reason,
		}
		if d.HasRemark {
			row = append(row, e.Remark)
		}
		if d.HasAlert {
			row = append(row, e.Alert)
		}
		return append(row, e.Bucket, e.MonthKey)
	}
	return headers, project
}

func formatStartup(e engine.Event) string {
	if e.StartupAt == nil {
		return ""
	}
	return e.StartupAt.Format(exportTimestamp)
}

func formatHours(h *float64) string {
	if h == nil {
		return ""
	}
	return strconv.FormatFloat(*h, 'f', 2, 64)
}
