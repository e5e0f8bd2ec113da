package domain

import (
	"path"
	"strings"
	"time"
)

// FileKind classifies a generated file.
type FileKind string

// File kinds.
const (
	FileKindSource FileKind = "source"
	FileKindConfig FileKind = "config"
	FileKindMarkup FileKind = "markup"
	FileKindDocs   FileKind = "docs"
	FileKindBuild  FileKind = "build"
	FileKindTest   FileKind = "test"
)

// IsValid returns true if the kind is recognised.
func (k FileKind) IsValid() bool {
	switch k {
	case FileKindSource, FileKindConfig, FileKindMarkup, FileKindDocs, FileKindBuild, FileKindTest:
		return true
	default:
		return false
	}
}

// KindForPath infers a file kind from its name. Unrecognised files are source.
func KindForPath(p string) FileKind {
	base := strings.ToLower(path.Base(p))
	switch base {
	case "pom.xml", "build.gradle", "build.gradle.kts", "package.json", "requirements.txt",
		"pyproject.toml", "setup.py", "go.mod", "makefile", "dockerfile", "cargo.toml":
		return FileKindBuild
	case "license", "changelog":
		return FileKindDocs
	}
	if isTestPath("/"+p, base) {
		return FileKindTest
	}
	switch path.Ext(base) {
	case ".md", ".markdown", ".rst", ".txt", ".adoc":
		return FileKindDocs
	case ".html", ".htm", ".css", ".scss", ".svg":
		return FileKindMarkup
	case ".json", ".yaml", ".yml", ".toml", ".ini", ".properties", ".xml", ".env", ".cfg", ".conf":
		return FileKindConfig
	}
	return FileKindSource
}

func isTestPath(p, base string) bool {
	if strings.Contains(p, "/test/") || strings.Contains(p, "/tests/") || strings.Contains(p, "/__tests__/") {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test") ||
		strings.HasSuffix(stem, ".test") || strings.HasSuffix(stem, ".spec") ||
		(strings.HasSuffix(stem, "tests") && stem != "tests")
}

// ValidateFilePath checks that p is a clean POSIX relative path.
// It returns an *InvalidFilePathError describing the first violation.
func ValidateFilePath(p string) error {
	var reason string
	switch {
	case strings.TrimSpace(p) == "":
		reason = "empty path"
	case strings.ContainsRune(p, 0):
		reason = "contains NUL byte"
	case strings.ContainsRune(p, '\\'):
		reason = "contains backslash"
	case strings.HasPrefix(p, "/"):
		reason = "absolute path"
	case len(p) >= 2 && p[1] == ':':
		reason = "drive letter"
	case strings.HasSuffix(p, "/"):
		reason = "names a directory"
	default:
		for _, seg := range strings.Split(p, "/") {
			switch seg {
			case "..":
				reason = "parent directory segment"
			case "", ".":
				reason = "empty or dot segment"
			}
			if reason != "" {
				break
			}
		}
	}
	if reason != "" {
		return &InvalidFilePathError{Path: p, Reason: reason}
	}
	return nil
}

// GeneratedFile is one file of a synthesized project.
type GeneratedFile struct {
	// Path is a POSIX-style relative path with no leading slash and no "..".
	Path string `json:"path"`

	// Content is the file body. Empty is valid; nil-ness is never observable.
	Content string `json:"content"`

	// Kind classifies the file.
	Kind FileKind `json:"kind"`
}

// Strategy names the synthesis path that produced a bundle.
type Strategy string

// Synthesis strategies.
const (
	StrategyAI       Strategy = "ai"
	StrategyTemplate Strategy = "template"
)

// DirNode is one node of a project's directory tree.
// Directories have Children; files have none and IsDir false.
type DirNode struct {
	Name     string     `json:"name"`
	IsDir    bool       `json:"is_dir"`
	Children []*DirNode `json:"children,omitempty"`
}

// ProjectBundle is the packaged output of one generation request.
// It is immutable once assembled.
type ProjectBundle struct {
	// ID is the unique identifier for the bundle.
	ID string `json:"id"`

	// DocumentID is the document the generation was grounded on.
	DocumentID string `json:"document_id"`

	// Technology is the resolved target stack.
	Technology TechnologyID `json:"technology"`

	// Prompt is the user's request text.
	Prompt string `json:"prompt"`

	// Files is the ordered file list with unique paths.
	Files []GeneratedFile `json:"files"`

	// Tree is derived from Files paths only.
	Tree *DirNode `json:"tree"`

	// Instructions are the human-readable setup steps.
	Instructions string `json:"instructions"`

	// Warnings records non-fatal issues such as duplicate paths or a fallback.
	Warnings []string `json:"warnings,omitempty"`

	// Strategy is the synthesis path that produced the files.
	Strategy Strategy `json:"strategy"`

	// Archive is the zip encoding of Files.
	Archive []byte `json:"-"`

	// CreatedAt is when the bundle was assembled.
	CreatedAt time.Time `json:"created_at"`
}

// ArchiveName returns the download filename for the bundle.
func (b *ProjectBundle) ArchiveName() string {
	return "project_" + b.ID + ".zip"
}
