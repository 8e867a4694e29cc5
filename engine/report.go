package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// ============================================================================
// REPORT BUNDLE — Per-Well Data for the Document Renderer
// ============================================================================
// Packages KPI scalars, the monthly trend, downtime-by-reason totals, and
// the latest events for one well. The external collaborator draws the
// charts and assembles the pages; nothing visual happens here.
// ============================================================================

// MaxRecentEvents caps the recent-event slice in a well report.
const MaxRecentEvents = 20

const timestampDisplay = "2006-01-02 15:04"

// BuildWellReport assembles the report bundle for one well from the full
// dataset (reports always cover the well's complete history, not the
// current filter selection). A well with no events yields a zero-count
// bundle, which callers may treat as "nothing to report".
func BuildWellReport(d *Dataset, well string) *WellReport {
	v := d.View().Where(func(e Event) bool { return e.Well == well })

	return &WellReport{
		Well:             well,
		KPIs:             ComputeKPIs(v),
		MonthlyTrend:     MonthlyCounts(v),
		DowntimeByReason: DowntimeDistribution(v, func(e Event) string { return e.Reason }, 0),
		RecentEvents:     recentEventTable(d, v),
	}
}

// recentEventTable projects the latest MaxRecentEvents events, newest
// first, onto the column subset the current schema variant carries.
func recentEventTable(d *Dataset, v View) *TableData {
	order := make([]int, v.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return v.At(order[a]).ShutdownAt.After(v.At(order[b]).ShutdownAt)
	})
	if len(order) > MaxRecentEvents {
		order = order[:MaxRecentEvents]
	}

	columns := []Column{
		{Key: "shutdownAt", Label: "Shutdown Date/Time", Type: "datetime", Align: "left"},
		{Key: "startupAt", Label: "Start Up Date/Time", Type: "datetime", Align: "left"},
		{Key: "downtimeHours", Label: "Downtime (Hrs)", Type: "number", Align: "right"},
		{Key: "reason", Label: "Reason", Type: "text", Align: "left"},
	}
	if d.HasAlert {
		columns = append(columns, Column{Key: "alert", Label: "Alert", Type: "text", Align: "left"})
	}

	rows := make([][]string, 0, len(order))
	for _, i := range order {
		e := v.At(i)
		row := []string{
			e.ShutdownAt.Format(timestampDisplay),
			formatStartup(e),
			formatHours(e.DowntimeHours),
			e.Reason,
		}
		if d.HasAlert {
			row = append(row, e.Alert)
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   fmt.Sprintf("Recent Shutdown Events (Latest %d)", MaxRecentEvents),
		Columns: columns,
		Rows:    rows,
	}
}

func formatStartup(e Event) string {
	if e.StartupAt == nil {
		return ""
	}
	return e.StartupAt.Format(timestampDisplay)
}

func formatHours(h *float64) string {
	if h == nil {
		return ""
	}
	return strconv.FormatFloat(*h, 'f', 2, 64)
}
