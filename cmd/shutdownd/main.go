package main

import (
	"log"
	"net/http"

	"github.com/K497201/shutdown-dashboard/server"
)

// ============================================================================
// SHUTDOWND — HTTP daemon for the downtime analytics pipeline
// ============================================================================

func main() {
	cfg := server.Load()
	s := server.New(cfg)

	log.Printf("shutdownd listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, s.Router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
