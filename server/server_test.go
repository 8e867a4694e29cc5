package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// HTTP SURFACE TESTS
// ============================================================================

const fixtureCSV = `Created,Site,Well,ShutdownReason,Remarks / Shutdown Reason,Alert,Shutdown Date/Time,Downtime (Hrs)
01/03/2024 08:00:00,SiteA,W1,Compressor trip,vibration on stage two,High Vibration,05/03/2024 14:30:00,12.5
02/03/2024 09:00:00,SiteA,W2,Other,pump seal failure,No Alert,06/03/2024 02:00:00,30
03/03/2024 10:00:00,SiteB,W3,Maintenance,,No Alert,09/03/2024 08:00:00,2
`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	s := New(Config{MaxUploadBytes: 1 << 20})
	return s.Router()
}

// upload posts the fixture and returns the dataset key.
func upload(t *testing.T, h http.Handler, body string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "events.csv")
	if err != nil {
		t.Fatalf("build multipart body: %v", err)
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		t.Fatalf("write multipart body: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Key  string `json:"key"`
		Rows int    `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Rows != 3 {
		t.Fatalf("uploaded rows = %d, want 3", resp.Rows)
	}
	return resp.Key
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndSummary(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TotalRows    int `json:"totalRows"`
		FilteredRows int `json:"filteredRows"`
		KPIs         struct {
			Shutdowns     int     `json:"shutdowns"`
			TotalDowntime float64 `json:"totalDowntimeHours"`
			Over24h       int     `json:"over24h"`
		} `json:"kpis"`
		TopWells           []struct{ Key string } `json:"topWells"`
		ReasonDistribution []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"reasonDistribution"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.TotalRows != 3 || resp.FilteredRows != 3 {
		t.Errorf("rows = %d/%d, want 3/3", resp.TotalRows, resp.FilteredRows)
	}
	if resp.KPIs.Shutdowns != 3 || resp.KPIs.TotalDowntime != 44.5 || resp.KPIs.Over24h != 1 {
		t.Errorf("kpis = %+v", resp.KPIs)
	}
	// The "Other" row's remark replaced its reason during ingest.
	var sawRecovered bool
	for _, g := range resp.ReasonDistribution {
		if g.Key == "pump seal failure" {
			sawRecovered = true
		}
		if strings.EqualFold(g.Key, "other") {
			t.Errorf("placeholder reason %q survived ingest", g.Key)
		}
	}
	if !sawRecovered {
		t.Error("recovered reason missing from distribution")
	}
}

func TestSummaryWithFilters(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/summary?site=SiteA&from=2024-03-05&to=2024-03-06")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		FilteredRows int `json:"filteredRows"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.FilteredRows != 2 {
		t.Errorf("filteredRows = %d, want 2", resp.FilteredRows)
	}

	// Wildcard selectors leave the view intact.
	rec = get(h, "/api/datasets/"+key+"/summary?site=All+Sites")
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.FilteredRows != 3 {
		t.Errorf("wildcard filteredRows = %d, want 3", resp.FilteredRows)
	}
}

func TestHalfDateRangeRejected(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/summary?from=2024-03-05")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "both from and to") {
		t.Errorf("error body = %s", rec.Body.String())
	}
}

func TestUnknownDataset(t *testing.T) {
	h := newTestServer(t)
	rec := get(h, "/api/datasets/deadbeef/summary")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUploadMissingRequiredColumn(t *testing.T) {
	h := newTestServer(t)

	body := "Site,Well\nSiteA,W1\n"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "events.csv")
	fw.Write([]byte(body))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestUploadUnknownFormat(t *testing.T) {
	h := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "events.pdf")
	fw.Write([]byte("%PDF-"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestKeywordsEndpoint(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/keywords")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Keywords []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"keywords"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode keywords: %v", err)
	}
	if len(resp.Keywords) == 0 {
		t.Fatal("no keywords mined from fixture remarks")
	}
}

func TestExportCSV(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/export?file=csv&site=SiteB")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Shutdown_Filtered.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("re-read export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 SiteB row", len(rows))
	}
}

func TestWellReportEndpoint(t *testing.T) {
	h := newTestServer(t)
	key := upload(t, h, fixtureCSV)

	rec := get(h, "/api/datasets/"+key+"/wells/W2/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var report struct {
		Well string `json:"well"`
		KPIs struct {
			Shutdowns int `json:"shutdowns"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Well != "W2" || report.KPIs.Shutdowns != 1 {
		t.Errorf("report = %+v", report)
	}

	rec = get(h, "/api/datasets/"+key+"/wells/W99/report")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown well status = %d, want 404", rec.Code)
	}
}

func TestUploadIsContentAddressed(t *testing.T) {
	h := newTestServer(t)
	first := upload(t, h, fixtureCSV)
	second := upload(t, h, fixtureCSV)
	if first != second {
		t.Errorf("keys differ for identical content: %s vs %s", first, second)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)
	rec := get(h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
