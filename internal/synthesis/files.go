package synthesis

import (
	"fmt"
	"strings"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// ReadmePath is the setup document every project carries.
const ReadmePath = "README.md"

// hasReadme reports whether files contain a top-level readme.
func hasReadme(files []domain.GeneratedFile) bool {
	for _, f := range files {
		if !strings.Contains(f.Path, "/") && strings.HasPrefix(strings.ToLower(f.Path), "readme") {
			return true
		}
	}
	return false
}

// ensureReadme appends a README.md built from the project vars and setup
// instructions when files have no top-level readme.
func ensureReadme(files []domain.GeneratedFile, vars Vars, profile *domain.TechnologyProfile, instructions string) []domain.GeneratedFile {
	if hasReadme(files) {
		return files
	}
	return append(files, domain.GeneratedFile{
		Path:    ReadmePath,
		Kind:    domain.FileKindDocs,
		Content: readme(vars, profile, instructions),
	})
}

func readme(vars Vars, profile *domain.TechnologyProfile, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", vars.ProjectName)
	if vars.Description != "" {
		fmt.Fprintf(&b, "Generated from: %s\n\n", vars.Description)
	}
	if !profile.IsUnknown() {
		fmt.Fprintf(&b, "## Stack\n\n- %s", profile.Name)
		if profile.Language != "" {
			fmt.Fprintf(&b, " (%s", profile.Language)
			if profile.BuildSystem != "" {
				fmt.Fprintf(&b, ", %s", profile.BuildSystem)
			}
			b.WriteString(")")
		}
		b.WriteString("\n\n")
	}
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		fmt.Fprintf(&b, "## Getting started\n\n%s\n", instructions)
	}
	return b.String()
}

// cleanPath drops a single leading "./" from a generated path. Any other
// dot, empty or parent segment is rejected by domain.ValidateFilePath rather
// than rewritten.
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(strings.TrimSpace(p), "./")
	if err := domain.ValidateFilePath(p); err != nil {
		return "", err
	}
	return p, nil
}
