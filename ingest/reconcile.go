package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/K497201/shutdown-dashboard/engine"
)

// ============================================================================
// RECONCILER — Raw Bytes → Stable Named Columns
// ============================================================================
// Pipeline: read grid → drop per-format legacy columns → trim headers →
// resolve columns by name → raw-level recovery (reason, date) → normalize.
// Row count is preserved end to end: rows are amended, never dropped.
// ============================================================================

// Parse ingests a raw extract with its declared format and returns the
// canonical dataset. The only fatal conditions are a missing shutdown
// timestamp or downtime column and a timestamp column with no parsable
// value at all; every other defect is repaired per field.
func Parse(data []byte, format Format) (*engine.Dataset, error) {
	grid, err := readGrid(data, format)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("source file has no header row")
	}

	table := reconcile(grid, format)

	if table.cols.shutdown < 0 {
		return nil, &MissingColumnError{Column: "Shutdown Date/Time"}
	}
	if table.cols.downtime < 0 {
		return nil, &MissingColumnError{Column: "Downtime (Hrs)"}
	}

	recoverReasons(table)
	recoverDates(table)

	events, err := normalize(table)
	if err != nil {
		return nil, err
	}

	d := &engine.Dataset{
		Events:    events,
		Hash:      FileKey(data),
		HasRemark: table.cols.remark >= 0,
		HasAlert:  table.cols.alert >= 0,
	}
	log.Printf("ingest: %s → %d events (remark=%v alert=%v)",
		format, len(d.Events), d.HasRemark, d.HasAlert)
	return d, nil
}

// ============================================================================
// RAW TABLE
// ============================================================================

// columnIndex holds resolved column positions after the drop pass.
// -1 means the column is absent from this schema variant.
type columnIndex struct {
	shutdown, startup, downtime       int
	site, well, reason, remark, alert int
	created                           int
}

type rawTable struct {
	headers []string
	rows    [][]string
	cols    columnIndex
}

func (t *rawTable) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// reconcile strips the format's configured column positions, trims headers
// (whitespace-polluted headers break every name-based lookup), and resolves
// the canonical columns.
func reconcile(grid [][]string, format Format) *rawTable {
	drop := make(map[int]bool, len(dropColumns[format]))
	for _, idx := range dropColumns[format] {
		drop[idx] = true
	}

	width := len(grid[0])
	keep := make([]int, 0, width)
	for i := 0; i < width; i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}

	headers := make([]string, len(keep))
	for i, src := range keep {
		headers[i] = strings.TrimSpace(grid[0][src])
	}

	rows := make([][]string, 0, len(grid)-1)
	for _, src := range grid[1:] {
		row := make([]string, len(keep))
		for i, idx := range keep {
			if idx < len(src) {
				row[i] = src[idx]
			}
		}
		rows = append(rows, row)
	}

	return &rawTable{
		headers: headers,
		rows:    rows,
		cols: columnIndex{
			shutdown: findColumn(headers, colShutdown),
			startup:  findColumn(headers, colStartup),
			downtime: findColumn(headers, colDowntime),
			site:     findColumn(headers, colSite),
			well:     findColumn(headers, colWell),
			reason:   findColumn(headers, colReason),
			remark:   findColumn(headers, colRemark),
			alert:    findColumn(headers, colAlert),
			created:  findColumn(headers, colCreated),
		},
	}
}

func findColumn(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// ============================================================================
// RAW-LEVEL RECOVERY
// ============================================================================
// Both rules run on string data before type coercion.

// recoverReasons upgrades the generic "Other" reason code with the row's
// free-text remark. Only an exact case/whitespace-insensitive match to
// "other" triggers replacement; "Other Issue" and friends stay untouched.
func recoverReasons(t *rawTable) {
	if t.cols.reason < 0 || t.cols.remark < 0 {
		return
	}
	recovered := 0
	for _, row := range t.rows {
		reason := t.cell(row, t.cols.reason)
		remark := t.cell(row, t.cols.remark)
		if remark != "" && strings.EqualFold(reason, "other") {
			row[t.cols.reason] = remark
			recovered++
		}
	}
	if recovered > 0 {
		log.Printf("ingest: reason recovery upgraded %d rows from remark text", recovered)
	}
}

// recoverDates fills empty shutdown timestamps from the secondary "Created"
// column. Append-style: only empty primary cells are touched.
func recoverDates(t *rawTable) {
	if t.cols.shutdown < 0 || t.cols.created < 0 {
		return
	}
	for _, row := range t.rows {
		if t.cell(row, t.cols.shutdown) == "" {
			if created := t.cell(row, t.cols.created); created != "" {
				row[t.cols.shutdown] = created
			}
		}
	}
}

// ============================================================================
// GRID READERS
// ============================================================================

func readGrid(data []byte, format Format) ([][]string, error) {
	switch format {
	case FormatSpreadsheet:
		return readSpreadsheet(data)
	case FormatDelimited:
		return readDelimited(data)
	default:
		return nil, fmt.Errorf("unsupported source format %q", format)
	}
}

func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readDelimited parses comma-delimited text. Files that are not valid UTF-8
// get one fallback decode as Windows-1252 before parsing; field-count
// variance across rows is tolerated.
func readDelimited(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(
			bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decode fallback encoding: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]string
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++ // a malformed row never voids the batch
			continue
		}
		grid = append(grid, row)
	}
	if skipped > 0 {
		log.Printf("ingest: skipped %d malformed delimited rows", skipped)
	}
	return grid, nil
}
