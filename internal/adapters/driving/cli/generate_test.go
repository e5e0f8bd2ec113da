package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

func TestGenerateCmd_RequiredFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "generate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "document", "prompt" not set`)
}

func TestGenerateCmd_WritesArchive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)
	dir := t.TempDir()

	out, err := execute(t, "generate",
		"--document", docID,
		"--prompt", "Spring Boot REST API with CRUD for User",
		"--output", dir,
	)
	require.NoError(t, err)

	bundles, err := generationService.ListBundles(t.Context(), docID)
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	bundle := bundles[0]

	assert.Equal(t, domain.TechnologyID("spring_boot"), bundle.Technology)
	assert.Contains(t, out, "Bundle "+bundle.ID)
	assert.Contains(t, out, "Strategy:   template")
	assert.Contains(t, out, "├── ")
	assert.Contains(t, out, "pom.xml")
	assert.Contains(t, out, "Instructions")

	path := filepath.Join(dir, "project_"+bundle.ID+".zip")
	assert.Contains(t, out, "Archive: "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data[:2])
}

func TestGenerateCmd_TechFlagAndJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	docID := ingestTestDocument(t)

	out, err := execute(t, "generate", "-d", docID, "-p", "todo app", "--tech", "flask", "--no-write", "--json")
	require.NoError(t, err)

	var bundle domain.ProjectBundle
	require.NoError(t, json.Unmarshal([]byte(out), &bundle))
	assert.Equal(t, domain.TechnologyID("flask"), bundle.Technology)
	assert.Equal(t, docID, bundle.DocumentID)
	assert.NotEmpty(t, bundle.Files)
}

func TestGenerateCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "generate", "-d", "missing", "-p", "REST API", "--no-write")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.Contains(t, err.Error(), "docugen document list")
	assert.Contains(t, formatError(err), "error [document_not_found]")
}

func TestGenerateCmd_ServiceNotConfigured(t *testing.T) {
	oldService := generationService
	generationService = nil
	defer func() { generationService = oldService }()

	_, err := execute(t, "generate", "-d", "doc", "-p", "api")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation service not configured")
}
