// Package mcp provides an MCP (Model Context Protocol) server adapter for DocuGen.
// It lets AI assistants ingest documentation and generate starter projects.
package mcp

import (
	"errors"
	"fmt"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// ErrMissingGenerationService is returned when the generation service is not provided.
var ErrMissingGenerationService = errors.New("mcp: generation service is required")

// toolError prefixes err with its stable error code.
func toolError(op string, err error) error {
	return fmt.Errorf("%s [%s]: %w", op, domain.ErrorCode(err), err)
}
