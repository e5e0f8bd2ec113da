// Package assembler packages synthesized files into a project bundle:
// validated paths, a directory tree, a zip archive and setup instructions.
package assembler

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// archiveTime is stamped on every archive entry so identical file sets
// produce identical archives.
var archiveTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Input is everything needed to assemble one bundle.
type Input struct {
	DocumentID   string
	Prompt       string
	Profile      *domain.TechnologyProfile
	Files        []domain.GeneratedFile
	Instructions string
	Strategy     domain.Strategy
	Warnings     []string
}

// Assembler builds project bundles.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

// New creates an assembler that assigns random bundle IDs.
func New() *Assembler {
	return &Assembler{
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// Assemble validates, dedupes and packages files. It fails with an
// *domain.InvalidFilePathError for the first unsafe path; nothing is
// returned in that case.
func (a *Assembler) Assemble(in Input) (*domain.ProjectBundle, error) {
	if len(in.Files) == 0 {
		return nil, fmt.Errorf("%w: no files to assemble", domain.ErrInvalidInput)
	}
	for _, f := range in.Files {
		if err := domain.ValidateFilePath(f.Path); err != nil {
			return nil, err
		}
	}

	files, warnings := Dedupe(in.Files)
	if err := checkDirConflicts(files); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("assemble: %s", w)
	}

	archive, err := Archive(files)
	if err != nil {
		return nil, err
	}

	technology := domain.TechnologyUnknown
	if in.Profile != nil {
		technology = in.Profile.ID
	}
	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		instructions = DefaultInstructions(in.Profile)
	}

	return &domain.ProjectBundle{
		ID:           a.newID(),
		DocumentID:   in.DocumentID,
		Technology:   technology,
		Prompt:       in.Prompt,
		Files:        files,
		Tree:         Tree(files),
		Instructions: instructions,
		Warnings:     append(append([]string(nil), in.Warnings...), warnings...),
		Strategy:     in.Strategy,
		Archive:      archive,
		CreatedAt:    a.now().UTC(),
	}, nil
}

// Dedupe keeps one file per path. The later file wins but keeps the
// position of the first occurrence; each replacement yields a warning.
func Dedupe(files []domain.GeneratedFile) ([]domain.GeneratedFile, []string) {
	index := make(map[string]int, len(files))
	out := make([]domain.GeneratedFile, 0, len(files))
	var warnings []string

	for _, f := range files {
		if i, ok := index[f.Path]; ok {
			out[i] = f
			warnings = append(warnings, fmt.Sprintf("duplicate path %s: later file kept", f.Path))
			continue
		}
		index[f.Path] = len(out)
		out = append(out, f)
	}
	return out, warnings
}

// checkDirConflicts rejects a file whose path is also a directory of
// another file, which no archive can represent.
func checkDirConflicts(files []domain.GeneratedFile) error {
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		paths[f.Path] = true
	}
	for _, f := range files {
		for dir := f.Path; ; {
			i := strings.LastIndexByte(dir, '/')
			if i < 0 {
				break
			}
			dir = dir[:i]
			if paths[dir] {
				return &domain.InvalidFilePathError{Path: dir, Reason: "file conflicts with directory of " + f.Path}
			}
		}
	}
	return nil
}

// Tree derives the directory tree from file paths alone. Directories sort
// before files and names sort lexically within each group.
func Tree(files []domain.GeneratedFile) *domain.DirNode {
	root := &domain.DirNode{Name: "", IsDir: true}
	for _, f := range files {
		node := root
		parts := strings.Split(f.Path, "/")
		for i, part := range parts {
			node = child(node, part, i < len(parts)-1)
		}
	}
	sortTree(root)
	return root
}

func child(parent *domain.DirNode, name string, isDir bool) *domain.DirNode {
	for _, c := range parent.Children {
		if c.Name == name && c.IsDir == isDir {
			return c
		}
	}
	c := &domain.DirNode{Name: name, IsDir: isDir}
	parent.Children = append(parent.Children, c)
	return c
}

func sortTree(n *domain.DirNode) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}

// Archive zips files in order with fixed timestamps.
func Archive(files []domain.GeneratedFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		header := &zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: archiveTime,
		}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", f.Path, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("archive %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultInstructions builds setup steps from the profile when the
// synthesizer supplied none.
func DefaultInstructions(profile *domain.TechnologyProfile) string {
	if profile.IsUnknown() {
		return "1. Extract the archive.\n2. Read README.md for an overview.\n3. Install the toolchain your project needs and start from the entry file."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "1. Extract the archive.\n2. Install the %s toolchain", profile.Name)
	if profile.Language != "" {
		fmt.Fprintf(&b, " for %s", profile.Language)
	}
	b.WriteString(".\n")
	step := 3
	if profile.BuildSystem != "" {
		fmt.Fprintf(&b, "%d. Install dependencies with %s.\n", step, profile.BuildSystem)
		step++
	}
	if profile.EntryFile != "" && !strings.Contains(profile.EntryFile, "{{") {
		fmt.Fprintf(&b, "%d. Start from %s.\n", step, profile.EntryFile)
	} else {
		fmt.Fprintf(&b, "%d. See README.md to run the project.\n", step)
	}
	return strings.TrimSpace(b.String())
}
