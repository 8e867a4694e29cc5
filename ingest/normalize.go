package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/K497201/shutdown-dashboard/engine"
)

// ============================================================================
// NORMALIZER — Type Coercion, Completeness, Derived Features
// ============================================================================
// Order matters: parse → impute timestamps → sentinel fill → derive.
// No field used by filtering or aggregation is left empty or null in a way
// that would silently vanish from a group-by or range operation.
// ============================================================================

// timestampLayouts in preference order. Day-first forms come before ISO so
// ambiguous "03/05/2024" reads as 3 May, matching the source system's
// export convention.
// Non-padded day/month verbs accept one- and two-digit values, so
// "5/3/2024" and "05/03/2024" both parse.
var timestampLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// normalize converts the reconciled table into canonical events.
func normalize(t *rawTable) ([]engine.Event, error) {
	events := make([]engine.Event, 0, len(t.rows))
	valid := make([]bool, len(t.rows))

	var minShutdown time.Time
	haveMin := false

	for i, row := range t.rows {
		e := engine.Event{
			Site:   t.cell(row, t.cols.site),
			Well:   t.cell(row, t.cols.well),
			Reason: t.cell(row, t.cols.reason),
			Remark: t.cell(row, t.cols.remark),
			Alert:  t.cell(row, t.cols.alert),
		}

		if ts, ok := parseTimestamp(t.cell(row, t.cols.shutdown)); ok {
			e.ShutdownAt = ts
			valid[i] = true
			if !haveMin || ts.Before(minShutdown) {
				minShutdown = ts
				haveMin = true
			}
		}
		if ts, ok := parseTimestamp(t.cell(row, t.cols.startup)); ok {
			started := ts
			e.StartupAt = &started
		}
		if h, ok := parseHours(t.cell(row, t.cols.downtime)); ok {
			hours := h
			e.DowntimeHours = &hours
		}

		events = append(events, e)
	}

	if !haveMin {
		return nil, ErrNoValidTimestamps
	}

	for i := range events {
		// Impute rather than drop: the minimum valid timestamp keeps the
		// row inside any earliest-to-latest date range.
		if !valid[i] {
			events[i].ShutdownAt = minShutdown
		}
		fillSentinels(&events[i], t.cols.alert >= 0)
		derive(&events[i])
	}

	return events, nil
}

// fillSentinels applies the categorical defaults exactly once, after
// parsing. The alert sentinel applies only when the source carries an
// alert column at all.
func fillSentinels(e *engine.Event, hasAlert bool) {
	if e.Site == "" {
		e.Site = engine.UnknownSite
	}
	if e.Well == "" {
		e.Well = engine.UnknownWell
	}
	if e.Reason == "" {
		e.Reason = engine.UnknownReason
	}
	if hasAlert && e.Alert == "" {
		e.Alert = engine.NoAlert
	}
}

// derive computes the bucket and calendar features from the now-clean
// timestamp and numeric fields.
func derive(e *engine.Event) {
	if e.DowntimeHours != nil {
		e.Bucket = downtimeBucket(*e.DowntimeHours)
	}
	e.MonthKey = e.ShutdownAt.Format("2006-01")
	e.Weekday = e.ShutdownAt.Weekday()
	e.Hour = e.ShutdownAt.Hour()
}

// downtimeBucket maps hours onto the fixed boundaries (-1,1], (1,5],
// (5,24], (24,1e6]. Values outside the outer bounds get no bucket.
func downtimeBucket(hours float64) string {
	switch {
	case hours <= -1 || hours > 1e6:
		return ""
	case hours <= 1:
		return engine.BucketShort
	case hours <= 5:
		return engine.BucketMedium
	case hours <= 24:
		return engine.BucketLong
	default:
		return engine.BucketExtended
	}
}

// parseTimestamp tries each accepted layout; unparsable values coerce to
// null rather than failing the row.
func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseHours coerces a downtime cell to a float. Thousands separators are
// tolerated; anything else non-numeric coerces to null.
func parseHours(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	value = strings.ReplaceAll(value, ",", "")
	h, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return h, true
}
