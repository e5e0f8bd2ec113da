package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for DocuGen resources.
	uriScheme = "docugen://"

	zipMIMEType = "application/zip"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing bundles.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "bundles",
		Name:        "bundles",
		Description: "All generated project bundles",
		MIMEType:    "application/json",
	}, s.handleBundlesResource)

	// Template for a bundle archive.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "bundles/{bundleId}",
		Name:        "bundle-archive",
		Description: "Zip archive of a generated project",
		MIMEType:    zipMIMEType,
	}, s.handleBundleResource)

	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of an ingested document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleBundlesResource returns a summary of every bundle.
func (s *Server) handleBundlesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	bundles, err := s.ports.Generation.ListBundles(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}

	type bundleInfo struct {
		ID         string `json:"id"`
		DocumentID string `json:"document_id"`
		Technology string `json:"technology"`
		Strategy   string `json:"strategy"`
		Files      int    `json:"files"`
		URI        string `json:"uri"`
	}

	infos := make([]bundleInfo, len(bundles))
	for i := range bundles {
		infos[i] = bundleInfo{
			ID:         bundles[i].ID,
			DocumentID: bundles[i].DocumentID,
			Technology: string(bundles[i].Technology),
			Strategy:   string(bundles[i].Strategy),
			Files:      len(bundles[i].Files),
			URI:        bundleURI(bundles[i].ID),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling bundles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleBundleResource returns the zip archive of one bundle.
func (s *Server) handleBundleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract bundleId from URI: docugen://bundles/{bundleId}
	bundleID := extractBundleID(req.Params.URI)
	if bundleID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	archive, err := s.ports.Generation.FetchBundle(ctx, bundleID)
	if errors.Is(err, domain.ErrBundleNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching bundle: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: zipMIMEType,
			Blob:     archive,
		}},
	}, nil
}

// handleDocumentContentResource returns the content of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: docugen://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Document.GetContent(ctx, docID)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

func bundleURI(id string) string {
	return uriScheme + "bundles/" + id
}

// extractBundleID extracts the bundle ID from a URI like docugen://bundles/{bundleId}.
func extractBundleID(uri string) string {
	return trimPrefixID(uri, uriScheme+"bundles/")
}

// extractDocumentID extracts the document ID from a URI like docugen://documents/{documentId}.
func extractDocumentID(uri string) string {
	return trimPrefixID(uri, uriScheme+"documents/")
}

func trimPrefixID(uri, prefix string) string {
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
