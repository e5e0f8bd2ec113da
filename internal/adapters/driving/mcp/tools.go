package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
)

// IngestURLInput is the input schema for the ingest_url tool.
type IngestURLInput struct {
	URL string `json:"url" jsonschema:"http or https URL of the documentation page to ingest"`
}

// DocumentOutput describes one ingested document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// GenerateProjectInput is the input schema for the generate_project tool.
type GenerateProjectInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of a previously ingested document"`
	Prompt     string `json:"prompt" jsonschema:"description of the project to generate"`
	Technology string `json:"technology,omitempty" jsonschema:"optional technology id such as spring_boot or react"`
}

// GenerateProjectOutput is the output schema for the generate_project tool.
type GenerateProjectOutput struct {
	BundleID     string       `json:"bundle_id"`
	Technology   string       `json:"technology"`
	Strategy     string       `json:"strategy"`
	Files        []FileOutput `json:"files"`
	Instructions string       `json:"instructions"`
	Warnings     []string     `json:"warnings,omitempty"`
	ResourceURI  string       `json:"resource_uri"`
}

// FileOutput is one generated file.
type FileOutput struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// TechnologyOutput describes one technology profile.
type TechnologyOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	BuildSystem string `json:"build_system"`
}

// ListTechnologiesOutput is the output schema for the list_technologies tool.
type ListTechnologiesOutput struct {
	Technologies []TechnologyOutput `json:"technologies"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_url",
		Description: "Fetch a documentation URL, extract and index it for project generation",
	}, s.handleIngestURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_project",
		Description: "Generate a starter project from an ingested document and a prompt",
	}, s.handleGenerateProject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents and their status",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_technologies",
		Description: "List the technology stacks projects can be generated for",
	}, s.handleListTechnologies)
}

// handleIngestURL handles the ingest_url tool invocation.
func (s *Server) handleIngestURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestURLInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Ingest == nil {
		return nil, DocumentOutput{}, errors.New("ingest_url: ingestion not available")
	}

	doc, err := s.ports.Ingest.IngestURL(ctx, input.URL)
	if err != nil {
		return nil, DocumentOutput{}, toolError("ingest_url", err)
	}
	return nil, documentOutput(doc), nil
}

// handleGenerateProject handles the generate_project tool invocation.
func (s *Server) handleGenerateProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateProjectInput,
) (*mcp.CallToolResult, GenerateProjectOutput, error) {
	bundle, err := s.ports.Generation.Generate(ctx, driving.GenerateRequest{
		DocumentID: input.DocumentID,
		Prompt:     input.Prompt,
		Technology: input.Technology,
	})
	if err != nil {
		return nil, GenerateProjectOutput{}, toolError("generate_project", err)
	}

	output := GenerateProjectOutput{
		BundleID:     bundle.ID,
		Technology:   string(bundle.Technology),
		Strategy:     string(bundle.Strategy),
		Files:        make([]FileOutput, len(bundle.Files)),
		Instructions: bundle.Instructions,
		Warnings:     bundle.Warnings,
		ResourceURI:  bundleURI(bundle.ID),
	}
	for i, f := range bundle.Files {
		output.Files[i] = FileOutput{Path: f.Path, Kind: string(f.Kind), Content: f.Content}
	}
	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{Documents: []DocumentOutput{}}, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleListTechnologies handles the list_technologies tool invocation.
func (s *Server) handleListTechnologies(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ListTechnologiesOutput, error) {
	profiles := s.ports.Generation.Technologies()
	output := ListTechnologiesOutput{Technologies: make([]TechnologyOutput, 0, len(profiles))}
	for _, p := range profiles {
		output.Technologies = append(output.Technologies, TechnologyOutput{
			ID:          string(p.ID),
			Name:        p.Name,
			Language:    p.Language,
			BuildSystem: p.BuildSystem,
		})
	}
	return nil, output, nil
}

func documentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Title:      doc.Title,
		URI:        doc.URI,
		Status:     string(doc.Status),
		ChunkCount: doc.ChunkCount,
		Error:      doc.Error,
		CreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
