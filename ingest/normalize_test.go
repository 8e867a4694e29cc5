package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/K497201/shutdown-dashboard/engine"
)

// ============================================================================
// NORMALIZER TESTS
// ============================================================================

func TestDayFirstParsing(t *testing.T) {
	cases := []struct {
		in   string
		want string // "2006-01-02 15:04"
	}{
		{"05/03/2024 14:30", "2024-03-05 14:30"}, // ambiguous → day-first
		{"5/3/2024", "2024-03-05 00:00"},
		{"28/02/2024 08:15:30", "2024-02-28 08:15"},
		{"2024-03-05 14:30:00", "2024-03-05 14:30"}, // ISO passes through
		{"2024-03-05", "2024-03-05 00:00"},
	}
	for _, tc := range cases {
		ts, ok := parseTimestamp(tc.in)
		if !ok {
			t.Errorf("parseTimestamp(%q): no parse", tc.in)
			continue
		}
		if got := ts.Format("2006-01-02 15:04"); got != tc.want {
			t.Errorf("parseTimestamp(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, ok := parseTimestamp("not a date"); ok {
		t.Error("garbage text should coerce to null, not parse")
	}
}

func TestSingleDigitDatesAreNotImputed(t *testing.T) {
	// A parsable single-digit date must keep its own value; imputation is
	// reserved for values no layout accepts.
	csvData := []byte(strings.Join([]string{
		"Site,Well,Shutdown Date/Time,Downtime (Hrs)",
		`SiteA,W1,5/3/2024,1`,
		`SiteA,W2,01/01/2024,2`,
	}, "\n"))
	d, err := Parse(csvData, FormatDelimited)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !d.Events[0].ShutdownAt.Equal(want) {
		t.Errorf("shutdownAt = %v, want %v (not the dataset minimum)", d.Events[0].ShutdownAt, want)
	}
}

func TestDateImputation(t *testing.T) {
	// Timestamps [null, valid, null] → all rows end on the minimum valid
	// timestamp, so no record escapes an earliest-to-latest range filter.
	csvData := []byte(strings.Join([]string{
		"Site,Well,Shutdown Date/Time,Downtime (Hrs)",
		`SiteA,W1,,1`,
		`SiteA,W2,2024-03-05,2`,
		`SiteA,W3,garbage,3`,
	}, "\n"))
	d, err := Parse(csvData, FormatDelimited)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for i, e := range d.Events {
		if !e.ShutdownAt.Equal(want) {
			t.Errorf("event %d shutdownAt = %v, want imputed %v", i, e.ShutdownAt, want)
		}
	}
}

func TestAllTimestampsUnparsableIsFatal(t *testing.T) {
	csvData := []byte("Site,Well,Shutdown Date/Time,Downtime (Hrs)\nSiteA,W1,garbage,1\n")
	_, err := Parse(csvData, FormatDelimited)
	if !errors.Is(err, ErrNoValidTimestamps) {
		t.Fatalf("err = %v, want ErrNoValidTimestamps", err)
	}
}

func TestSentinelFill(t *testing.T) {
	csvData := []byte(strings.Join([]string{
		"Site,Well,ShutdownReason,Alert,Shutdown Date/Time,Downtime (Hrs)",
		`,,,,01/02/2024,`,
	}, "\n"))
	d, err := Parse(csvData, FormatDelimited)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e := d.Events[0]
	if e.Site != engine.UnknownSite || e.Well != engine.UnknownWell ||
		e.Reason != engine.UnknownReason || e.Alert != engine.NoAlert {
		t.Errorf("sentinels not applied: %+v", e)
	}
	if e.DowntimeHours != nil {
		t.Errorf("empty downtime should be null, got %v", *e.DowntimeHours)
	}
	if e.Bucket != "" {
		t.Errorf("null downtime must carry no bucket, got %q", e.Bucket)
	}
}

func TestDowntimeBuckets(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, engine.BucketShort},
		{1, engine.BucketShort}, // boundary is inclusive on the right
		{1.01, engine.BucketMedium},
		{5, engine.BucketMedium},
		{24, engine.BucketLong},
		{24.5, engine.BucketExtended},
		{500, engine.BucketExtended},
		{-2, ""}, // below the lower bound: no bucket
	}
	for _, tc := range cases {
		if got := downtimeBucket(tc.hours); got != tc.want {
			t.Errorf("downtimeBucket(%v) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}

func TestDerivedFeatures(t *testing.T) {
	csvData := []byte(strings.Join([]string{
		"Site,Well,Shutdown Date/Time,Start Up Date/Time,Downtime (Hrs)",
		`SiteA,W1,06/03/2024 14:30,07/03/2024 02:30,12`,
	}, "\n"))
	d, err := Parse(csvData, FormatDelimited)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e := d.Events[0]
	if e.MonthKey != "2024-03" {
		t.Errorf("monthKey = %q, want 2024-03", e.MonthKey)
	}
	if e.Weekday != time.Wednesday {
		t.Errorf("weekday = %s, want Wednesday (2024-03-06)", e.Weekday)
	}
	if e.Hour != 14 {
		t.Errorf("hour = %d, want 14", e.Hour)
	}
	if e.Bucket != engine.BucketLong {
		t.Errorf("bucket = %q, want %q", e.Bucket, engine.BucketLong)
	}
	if e.StartupAt == nil {
		t.Fatal("startupAt should be parsed")
	}
	if got := e.StartupAt.Format("2006-01-02 15:04"); got != "2024-03-07 02:30" {
		t.Errorf("startupAt = %s, want 2024-03-07 02:30", got)
	}
}

func TestNumericCoercion(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"2.5", 2.5, true},
		{"1,250.75", 1250.75, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseHours(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseHours(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
