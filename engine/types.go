package engine

import "time"

// ============================================================================
// ENGINE TYPES — Canonical Downtime Events and Render-Ready Output
// ============================================================================
// The engine owns the canonical table (one Event per source row) and the
// plain tabular shapes handed to external chart/PDF renderers. It never
// draws anything itself.
// ============================================================================

// Sentinel values substituted for missing categorical fields during
// normalization. Downstream group-bys rely on these never being empty.
const (
	UnknownSite   = "Unknown Site"
	UnknownWell   = "Unknown Well"
	UnknownReason = "Unknown"
	NoAlert       = "No Alert"
)

// Downtime bucket labels, in boundary order. An event with no parsable
// downtime carries no bucket.
const (
	BucketShort    = "0–1 hr"
	BucketMedium   = "1–5 hrs"
	BucketLong     = "5–24 hrs"
	BucketExtended = ">24 hrs"
)

// ============================================================================
// EVENT — one normalized downtime record
// ============================================================================

// Event is a single shutdown record after reconciliation and type coercion.
// String fields are never empty (sentinels applied), except Remark and Alert
// which are empty when the source format does not carry those columns.
// ShutdownAt is never zero: unparsable values are imputed with the dataset's
// minimum valid timestamp so date-range filters never silently drop a row.
type Event struct {
	Site   string `json:"site"`
	Well   string `json:"well"`
	Reason string `json:"reason"`
	Remark string `json:"remark,omitempty"`
	Alert  string `json:"alert,omitempty"`

	ShutdownAt    time.Time  `json:"shutdownAt"`
	StartupAt     *time.Time `json:"startupAt,omitempty"`     // nil = shutdown still open
	DowntimeHours *float64   `json:"downtimeHours,omitempty"` // nil = non-numeric source value

	// Derived features, computed once by the normalizer.
	Bucket   string       `json:"bucket,omitempty"`
	MonthKey string       `json:"monthKey"` // "YYYY-MM" of ShutdownAt
	Weekday  time.Weekday `json:"weekday"`
	Hour     int          `json:"hour"` // 0–23
}

// ============================================================================
// DATASET — the cached canonical table
// ============================================================================

// Dataset is the canonical table built once per uploaded file. It is
// immutable after ingestion; every downstream view is a non-destructive
// projection over Events.
type Dataset struct {
	Events []Event `json:"events"`

	// Hash identifies the source file content (SHA-256, hex). New file,
	// new hash, new cache entry.
	Hash string `json:"hash"`

	// Which optional columns the source format carried. Report projection
	// and export writers consult these instead of sniffing values.
	HasRemark bool `json:"hasRemark"`
	HasAlert  bool `json:"hasAlert"`
}

// View returns a view spanning the whole dataset.
func (d *Dataset) View() View {
	return NewView(d.Events)
}

// ============================================================================
// GROUP — one row of a grouped aggregate
// ============================================================================

// Group is a single row of a grouped summary: a category or period key,
// the aggregated value, and the contributing row count.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// MatrixCell is one cell of the day×hour occurrence matrix.
type MatrixCell struct {
	Day   string `json:"day"`
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
}

// ============================================================================
// KPI SCALARS
// ============================================================================

// KPISet holds the scalar indicators computed from a filtered view.
// Sum, average and longest exclude events with unknown downtime; the
// shutdown count does not.
type KPISet struct {
	Shutdowns     int     `json:"shutdowns"`
	TotalDowntime float64 `json:"totalDowntimeHours"`
	AvgDowntime   float64 `json:"avgDowntimeHours"`
	LongestHours  float64 `json:"longestHours"`
	Over24h       int     `json:"over24h"`
	AffectedWells int     `json:"affectedWells"`
}

// ============================================================================
// TABLE TYPES — consumed by the external rendering collaborator
// ============================================================================

// TableData is a render-ready table: named columns plus stringified rows.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column describes one table column for the renderer.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "datetime"
	Align string `json:"align"` // "left", "right"
}

// ============================================================================
// REPORT BUNDLE
// ============================================================================

// WellReport packages everything the document renderer needs for one well:
// KPI scalars, the monthly shutdown trend, downtime totals per reason, and a
// capped slice of the most recent events.
type WellReport struct {
	Well             string     `json:"well"`
	KPIs             KPISet     `json:"kpis"`
	MonthlyTrend     []Group    `json:"monthlyTrend"`
	DowntimeByReason []Group    `json:"downtimeByReason"`
	RecentEvents     *TableData `json:"recentEvents"`
}
