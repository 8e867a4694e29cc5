// Package shutdown provides the normalization-and-analytics pipeline behind
// the well shutdown dashboard.
//
// Usage:
//
//	import (
//	    "github.com/K497201/shutdown-dashboard/engine"
//	    "github.com/K497201/shutdown-dashboard/ingest"
//	)
//
//	dataset, err := ingest.Parse(fileBytes, ingest.FormatSpreadsheet)
//	filtered := engine.Filter{Site: "SiteA"}.Apply(dataset.View())
//	kpis := engine.ComputeKPIs(filtered)
//
// The pipeline reconciles heterogeneous extract schemas into one canonical
// event table, derives analytical features, and serves filtered aggregates
// and mined text signals. Rendering (charts, styled tables, PDF pages) is
// an external collaborator that consumes the output tables — nothing here
// draws anything.
package shutdown
