package mcp

import (
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingest fetches and indexes documentation.
	Ingest driving.IngestService

	// Generation produces project bundles.
	Generation driving.GenerationService

	// Document manages ingested documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Generation == nil {
		return ErrMissingGenerationService
	}
	// Ingest and Document are optional; their tools report unavailability.
	return nil
}
