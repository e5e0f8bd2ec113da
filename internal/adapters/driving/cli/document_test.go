package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage ingested documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "content", "delete"}, commandNames)
}

// Document List Tests

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested yet.")
}

func TestDocumentListCmd_ShowsIngested(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)

	out, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, docID)
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "Title: Building a RESTful Web Service")
	assert.Contains(t, out, "URI: "+testGuideURL)
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentListCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "document", "list", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

// Document Get Tests

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentGetCmd_ExecutesWithArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)

	out, err := execute(t, "document", "get", docID)

	require.NoError(t, err)
	assert.Contains(t, out, "Document: "+docID)
	assert.Contains(t, out, "Type:     text/markdown")
	assert.Contains(t, out, "Status:   ready")
	assert.Contains(t, out, "Chunks:")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "document", "get", "missing")

	require.Error(t, err)
	assert.Equal(t, "error [document_not_found]: failed to get document: document not found", formatError(err))
}

// Document Content Tests

func TestDocumentContentCmd_PrintsText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)

	out, err := execute(t, "document", "content", docID)

	require.NoError(t, err)
	assert.Contains(t, out, "@RestController")
}

// Document Delete Tests

func TestDocumentDeleteCmd_RemovesDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)

	out, err := execute(t, "document", "delete", docID)
	require.NoError(t, err)
	assert.Contains(t, out, "Document "+docID+" deleted.")

	_, err = execute(t, "document", "get", docID)
	assert.Error(t, err)
}

// Service Not Configured Tests

func TestDocumentCmds_ServiceNotConfigured(t *testing.T) {
	oldService := documentService
	documentService = nil
	defer func() {
		documentService = oldService
	}()

	for _, args := range [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "content", "doc-1"},
		{"document", "delete", "doc-1"},
	} {
		t.Run(args[1], func(t *testing.T) {
			_, err := execute(t, args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "document service not configured")
		})
	}
}
