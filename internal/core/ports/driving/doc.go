// Package driving declares what the CLI and the MCP server may ask of the
// core: ingest documentation, generate and fetch project bundles, browse
// documents and edit settings. internal/core/services implements them.
package driving
