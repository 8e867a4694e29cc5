package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ============================================================================
// FORMATS — Per-Format Reconciliation Config
// ============================================================================
// Format/vintage differences are data, not code: each format declares which
// positional columns to strip and the reconciler applies them generically.
// Adding a new export vintage means adding a map entry, not a parser.
// ============================================================================

// Format tags the declared source encoding of an uploaded extract.
// Detection is by declared extension/content type, never content sniffing.
type Format string

const (
	// FormatSpreadsheet is an Excel workbook export (.xlsx).
	FormatSpreadsheet Format = "spreadsheet"
	// FormatDelimited is a comma-delimited text export (.csv).
	FormatDelimited Format = "delimited-text"
)

// dropColumns maps each format to the zero-based column positions removed
// before any name-based lookup. Historical spreadsheet exports embed two
// legacy columns (C, E) plus a block of unused audit columns (I through AB)
// between the kept fields; the current delimited vintage carries none.
// Dropping is defensive: indices beyond the actual column count are no-ops.
var dropColumns = map[Format][]int{
	FormatSpreadsheet: spreadsheetDrops(),
	FormatDelimited:   {},
}

func spreadsheetDrops() []int {
	drops := []int{2, 4}
	for i := 8; i <= 27; i++ {
		drops = append(drops, i)
	}
	return drops
}

// Canonical header names, matched case-insensitively after trimming.
// The secondary columns ("Remarks / Shutdown Reason", "Created") feed the
// recovery rules; they are optional in every format.
const (
	colShutdown = "shutdown date/time"
	colStartup  = "start up date/time"
	colDowntime = "downtime (hrs)"
	colSite     = "site"
	colWell     = "well"
	colReason   = "shutdownreason"
	colRemark   = "remarks / shutdown reason"
	colAlert    = "alert"
	colCreated  = "created"
)

// DetectFormat resolves the declared format from a filename and an optional
// content type. Unknown extensions are a caller error, not a guess.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatSpreadsheet, nil
	case ".csv", ".txt":
		return FormatDelimited, nil
	}

	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatSpreadsheet, nil
	case "text/csv", "text/plain":
		return FormatDelimited, nil
	}

	return "", fmt.Errorf("cannot determine source format for %q (content type %q)", filename, contentType)
}
