package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/K497201/shutdown-dashboard/engine"
	"github.com/K497201/shutdown-dashboard/helpers"
	"github.com/K497201/shutdown-dashboard/ingest"
)

// ============================================================================
// SHUTDOWNCTL — One-shot pipeline runs from the command line
// ============================================================================

const version = "1.0.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to shutdown extract (.xlsx or .csv, required)")
	site := flag.String("site", "", "Filter: site (empty = all)")
	well := flag.String("well", "", "Filter: well (empty = all)")
	reason := flag.String("reason", "", "Filter: shutdown reason (empty = all)")
	alert := flag.String("alert", "", "Filter: alert label (empty = all)")
	from := flag.String("from", "", "Filter: range start, YYYY-MM-DD (requires -to)")
	to := flag.String("to", "", "Filter: range end, YYYY-MM-DD (requires -from)")
	keywords := flag.Bool("keywords", false, "Print mined keywords instead of the summary")
	reportWell := flag.String("report", "", "Print the report bundle for one well")
	export := flag.String("export", "", "Write the filtered table to a file (.xlsx or .csv)")
	pretty := flag.Bool("pretty", true, "Indent JSON output")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `shutdownctl — downtime analytics without the dashboard

Usage:
  shutdownctl --file extract.xlsx
  shutdownctl --file extract.csv --site "SiteA" --from 2024-01-01 --to 2024-06-30
  shutdownctl --file extract.xlsx --keywords
  shutdownctl --file extract.xlsx --report "W1"
  shutdownctl --file extract.xlsx --well "W1" --export filtered.csv

Flags:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("shutdownctl %s\n", version)
		os.Exit(0)
	}
	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		flag.Usage()
		os.Exit(1)
	}

	// ── Ingest ────────────────────────────────────────────────────────────
	data, err := os.ReadFile(*filePath)
	if err != nil {
		fatalf("read file: %v", err)
	}
	format, err := ingest.DetectFormat(*filePath, "")
	if err != nil {
		fatalf("%v", err)
	}
	dataset, err := ingest.Parse(data, format)
	if err != nil {
		fatalf("ingest: %v", err)
	}

	// ── Filter ────────────────────────────────────────────────────────────
	filter := engine.Filter{Site: *site, Well: *well, Reason: *reason, Alert: *alert}
	if (*from == "") != (*to == "") {
		fatalf("date filtering needs both --from and --to")
	}
	if *from != "" {
		filter.From = mustDate(*from)
		filter.To = mustDate(*to)
	}
	filtered := filter.Apply(dataset.View())

	// ── Export mode ───────────────────────────────────────────────────────
	if *export != "" {
		writeExport(*export, dataset, filtered)
		fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", filtered.Len(), *export)
		return
	}

	// ── Output ────────────────────────────────────────────────────────────
	var out any
	switch {
	case *keywords:
		out = engine.Keywords(filtered, engine.DefaultKeywordLimit)
	case *reportWell != "":
		out = engine.BuildWellReport(dataset, *reportWell)
	default:
		out = summary{
			TotalRows:    len(dataset.Events),
			FilteredRows: filtered.Len(),
			KPIs:         engine.ComputeKPIs(filtered),
			TopWells:     engine.TopWellsByDowntime(filtered, engine.DefaultTopWells),
			ReasonDistribution: engine.CountDistribution(filtered,
				func(e engine.Event) string { return e.Reason }, 0),
			MonthlyTrend:  engine.MonthlyCounts(filtered),
			DayHourMatrix: engine.DayHourMatrix(filtered),
		}
	}
	writeJSON(out, *pretty)
}

type summary struct {
	TotalRows          int                 `json:"totalRows"`
	FilteredRows       int                 `json:"filteredRows"`
	KPIs               engine.KPISet       `json:"kpis"`
	TopWells           []engine.Group      `json:"topWells"`
	ReasonDistribution []engine.Group      `json:"reasonDistribution"`
	MonthlyTrend       []engine.Group      `json:"monthlyTrend"`
	DayHourMatrix      []engine.MatrixCell `json:"dayHourMatrix"`
}

func writeExport(path string, d *engine.Dataset, v engine.View) {
	f, err := os.Create(path)
	if err != nil {
		fatalf("create export file: %v", err)
	}
	defer f.Close()

	format, err := ingest.DetectFormat(path, "")
	if err != nil {
		fatalf("%v", err)
	}
	if format == ingest.FormatSpreadsheet {
		err = helpers.WriteXLSX(f, d, v)
	} else {
		err = helpers.WriteCSV(f, d, v)
	}
	if err != nil {
		fatalf("export: %v", err)
	}
}

func writeJSON(v any, pretty bool) {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fatalf("encode output: %v", err)
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fatalf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
