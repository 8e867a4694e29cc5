package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/K497201/shutdown-dashboard/engine"
	"github.com/K497201/shutdown-dashboard/helpers"
	"github.com/K497201/shutdown-dashboard/ingest"
)

// ============================================================================
// HTTP SURFACE — Upload + Filtered Aggregate Endpoints
// ============================================================================
// Thin boundary over the pipeline: one POST ingests a file into the
// content-addressed cache, the GETs are pure projections of the cached
// canonical table. No rendering happens here; responses are the plain
// tabular structures an external charting/reporting layer consumes.
// ============================================================================

// Server wires the pipeline behind an HTTP API.
type Server struct {
	cfg     Config
	cache   *ingest.Cache
	metrics *Metrics
}

// New creates a server with an empty dataset cache.
func New(cfg Config) *Server {
	return &Server{
		cfg:     cfg,
		cache:   ingest.NewCache(),
		metrics: NewMetrics(),
	}
}

// Router builds the route table with logging and panic recovery.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/datasets", s.metrics.Instrument("upload", s.handleUpload)).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{key}/summary", s.metrics.Instrument("summary", s.handleSummary)).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{key}/keywords", s.metrics.Instrument("keywords", s.handleKeywords)).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{key}/export", s.metrics.Instrument("export", s.handleExport)).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{key}/wells/{well}/report", s.metrics.Instrument("report", s.handleWellReport)).Methods(http.MethodGet)

	handler := handlers.RecoveryHandler()(r)
	if s.cfg.EnableCORS {
		handler = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		)(handler)
	}
	return handlers.LoggingHandler(os.Stdout, handler)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// UPLOAD
// ============================================================================

type uploadResponse struct {
	Key     string   `json:"key"`
	Rows    int      `json:"rows"`
	Sites   []string `json:"sites"`
	Wells   []string `json:"wells"`
	Reasons []string `json:"reasons"`
	Alerts  []string `json:"alerts,omitempty"`
	MinDate string   `json:"minDate"`
	MaxDate string   `json:"maxDate"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing multipart file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	format, err := ingest.DetectFormat(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	d, cached, err := s.cache.Load(data, format)
	if err != nil {
		status := http.StatusBadRequest
		if ingest.IsSchemaError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	s.metrics.ObserveIngest(time.Since(start), cached)

	v := d.View()
	resp := uploadResponse{
		Key:     d.Hash,
		Rows:    len(d.Events),
		Sites:   engine.UniqueValues(v, func(e engine.Event) string { return e.Site }),
		Wells:   engine.UniqueValues(v, func(e engine.Event) string { return e.Well }),
		Reasons: engine.UniqueValues(v, func(e engine.Event) string { return e.Reason }),
	}
	if d.HasAlert {
		resp.Alerts = engine.UniqueValues(v, func(e engine.Event) string { return e.Alert })
	}
	if min, max, ok := engine.DateBounds(v); ok {
		resp.MinDate = min.Format("2006-01-02")
		resp.MaxDate = max.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// FILTERED AGGREGATES
// ============================================================================

type summaryResponse struct {
	TotalRows          int                 `json:"totalRows"`
	FilteredRows       int                 `json:"filteredRows"`
	KPIs               engine.KPISet       `json:"kpis"`
	TopWells           []engine.Group      `json:"topWells"`
	ReasonDistribution []engine.Group      `json:"reasonDistribution"`
	BucketDistribution []engine.Group      `json:"bucketDistribution"`
	MonthlyTrend       []engine.Group      `json:"monthlyTrend"`
	DayHourMatrix      []engine.MatrixCell `json:"dayHourMatrix"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, filtered, ok := s.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalRows:    len(d.Events),
		FilteredRows: filtered.Len(),
		KPIs:         engine.ComputeKPIs(filtered),
		TopWells:     engine.TopWellsByDowntime(filtered, engine.DefaultTopWells),
		ReasonDistribution: engine.CountDistribution(filtered,
			func(e engine.Event) string { return e.Reason }, 0),
		BucketDistribution: engine.CountDistribution(filtered,
			func(e engine.Event) string { return e.Bucket }, 0),
		MonthlyTrend:  engine.MonthlyCounts(filtered),
		DayHourMatrix: engine.DayHourMatrix(filtered),
	})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	_, filtered, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	keywords := engine.Keywords(filtered, engine.DefaultKeywordLimit)
	writeJSON(w, http.StatusOK, map[string]any{"keywords": keywords})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d, filtered, ok := s.filteredView(w, r)
	if !ok {
		return
	}

	switch r.URL.Query().Get("file") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="Shutdown_Filtered.csv"`)
		if err := helpers.WriteCSV(w, d, filtered); err != nil {
			log.Printf("server: csv export failed: %v", err)
		}
	default:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="Shutdown_Filtered.xlsx"`)
		if err := helpers.WriteXLSX(w, d, filtered); err != nil {
			log.Printf("server: xlsx export failed: %v", err)
		}
	}
}

func (s *Server) handleWellReport(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}

	well := mux.Vars(r)["well"]
	report := engine.BuildWellReport(d, well)
	if report.KPIs.Shutdowns == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no events recorded for well %q", well))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ============================================================================
// REQUEST HELPERS
// ============================================================================

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*engine.Dataset, bool) {
	key := mux.Vars(r)["key"]
	d, ok := s.cache.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown dataset %q; upload the file first", key))
		return nil, false
	}
	return d, true
}

func (s *Server) filteredView(w http.ResponseWriter, r *http.Request) (*engine.Dataset, engine.View, bool) {
	d, ok := s.dataset(w, r)
	if !ok {
		return nil, engine.View{}, false
	}
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, engine.View{}, false
	}
	return d, f.Apply(d.View()), true
}

// filterFromQuery builds the selector set from query parameters. A date
// range needs both ends; a lone bound is a caller error rather than a
// silent half-filter.
func filterFromQuery(r *http.Request) (engine.Filter, error) {
	q := r.URL.Query()
	f := engine.Filter{
		Site:   q.Get("site"),
		Well:   q.Get("well"),
		Reason: q.Get("reason"),
		Alert:  q.Get("alert"),
	}

	fromStr, toStr := q.Get("from"), q.Get("to")
	if (fromStr == "") != (toStr == "") {
		return f, fmt.Errorf("date filtering needs both from and to (got from=%q to=%q)", fromStr, toStr)
	}
	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q: %w", fromStr, err)
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q: %w", toStr, err)
		}
		f.From, f.To = from, to
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
