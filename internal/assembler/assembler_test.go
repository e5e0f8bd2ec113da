package assembler

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

func fixedAssembler() *Assembler {
	return &Assembler{
		newID: func() string { return "bundle-1" },
		now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func springFiles() []domain.GeneratedFile {
	return []domain.GeneratedFile{
		{Path: "pom.xml", Content: "<project/>", Kind: domain.FileKindBuild},
		{Path: "src/main/java/com/example/Application.java", Content: "class Application {}", Kind: domain.FileKindSource},
		{Path: "src/main/java/com/example/controller/UserController.java", Content: "class UserController {}", Kind: domain.FileKindSource},
		{Path: "README.md", Content: "# demo", Kind: domain.FileKindDocs},
		{Path: "empty.txt", Content: "", Kind: domain.FileKindDocs},
	}
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(body)
	}
	return out
}

func TestAssemble_ArchiveRoundTrip(t *testing.T) {
	files := springFiles()
	bundle, err := fixedAssembler().Assemble(Input{
		DocumentID: "doc-1",
		Prompt:     "CRUD for User",
		Profile:    &domain.TechnologyProfile{ID: domain.TechnologySpringBoot, Name: "Spring Boot"},
		Files:      files,
		Strategy:   domain.StrategyTemplate,
	})
	require.NoError(t, err)

	extracted := readArchive(t, bundle.Archive)
	require.Len(t, extracted, len(files))
	for _, f := range files {
		assert.Equal(t, f.Content, extracted[f.Path], f.Path)
	}

	assert.Equal(t, "bundle-1", bundle.ID)
	assert.Equal(t, "doc-1", bundle.DocumentID)
	assert.Equal(t, domain.TechnologySpringBoot, bundle.Technology)
	assert.Equal(t, domain.StrategyTemplate, bundle.Strategy)
	assert.Equal(t, files, bundle.Files)
	assert.Equal(t, "project_bundle-1.zip", bundle.ArchiveName())
	assert.NotEmpty(t, bundle.Instructions)
}

func TestAssemble_ReproducibleArchive(t *testing.T) {
	a, err := fixedAssembler().Assemble(Input{Files: springFiles()})
	require.NoError(t, err)
	b, err := New().Assemble(Input{Files: springFiles()})
	require.NoError(t, err)

	assert.Equal(t, a.Archive, b.Archive)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAssemble_InvalidPath(t *testing.T) {
	for _, bad := range []string{"/abs.txt", "../up.txt", "a/../../b", "", `win\path.txt`, "nul\x00.txt"} {
		files := append(springFiles(), domain.GeneratedFile{Path: bad, Content: "x"})

		bundle, err := New().Assemble(Input{Files: files})
		assert.Nil(t, bundle)
		require.Error(t, err, "%q", bad)

		var pathErr *domain.InvalidFilePathError
		require.True(t, errors.As(err, &pathErr), "%q", bad)
		assert.Equal(t, bad, pathErr.Path)
		assert.Equal(t, domain.CodeInvalidFilePath, domain.ErrorCode(err))
	}
}

func TestAssemble_DirectoryConflict(t *testing.T) {
	_, err := New().Assemble(Input{Files: []domain.GeneratedFile{
		{Path: "src", Content: "file"},
		{Path: "src/main.go", Content: "package main"},
	}})

	var pathErr *domain.InvalidFilePathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "src", pathErr.Path)
}

func TestAssemble_NoFiles(t *testing.T) {
	_, err := New().Assemble(Input{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssemble_DedupeLaterWins(t *testing.T) {
	bundle, err := fixedAssembler().Assemble(Input{
		Files: []domain.GeneratedFile{
			{Path: "app.py", Content: "v1"},
			{Path: "README.md", Content: "readme"},
			{Path: "app.py", Content: "v2"},
		},
		Warnings: []string{"from synthesis"},
	})
	require.NoError(t, err)

	require.Len(t, bundle.Files, 2)
	assert.Equal(t, "app.py", bundle.Files[0].Path)
	assert.Equal(t, "v2", bundle.Files[0].Content)
	assert.Equal(t, "v2", readArchive(t, bundle.Archive)["app.py"])
	require.Len(t, bundle.Warnings, 2)
	assert.Equal(t, "from synthesis", bundle.Warnings[0])
	assert.Contains(t, bundle.Warnings[1], "duplicate path app.py")
}

func TestTree(t *testing.T) {
	tree := Tree(springFiles())

	require.True(t, tree.IsDir)
	require.Len(t, tree.Children, 4)
	assert.Equal(t, "src", tree.Children[0].Name)
	assert.True(t, tree.Children[0].IsDir)
	assert.Equal(t, []string{"README.md", "empty.txt", "pom.xml"},
		[]string{tree.Children[1].Name, tree.Children[2].Name, tree.Children[3].Name})

	example := tree.Children[0].Children[0].Children[0].Children[0].Children[0]
	assert.Equal(t, "example", example.Name)
	require.Len(t, example.Children, 2)
	assert.Equal(t, "controller", example.Children[0].Name)
	assert.Equal(t, "Application.java", example.Children[1].Name)
}

func TestTree_OrderIndependent(t *testing.T) {
	files := springFiles()
	reversed := make([]domain.GeneratedFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}
	assert.Equal(t, Tree(files), Tree(reversed))
}

func TestDefaultInstructions(t *testing.T) {
	assert.Contains(t, DefaultInstructions(nil), "README.md")

	got := DefaultInstructions(&domain.TechnologyProfile{
		ID:          domain.TechnologyFlask,
		Name:        "Flask",
		Language:    "Python",
		BuildSystem: "pip",
		EntryFile:   "app.py",
	})
	assert.Equal(t, "1. Extract the archive.\n2. Install the Flask toolchain for Python.\n3. Install dependencies with pip.\n4. Start from app.py.", got)
}
