package synthesis

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Ensure Template implements the interface.
var _ driven.Synthesizer = (*Template)(nil)

// Template fills a profile's skeleton with values read from the prompt.
// It has no external dependencies and never fails.
type Template struct {
	unknown *domain.TechnologyProfile
}

// NewTemplate creates a template synthesizer. unknown is the profile used
// when a request carries no profile; nil selects a built-in minimal one.
func NewTemplate(unknown *domain.TechnologyProfile) *Template {
	if unknown == nil {
		unknown = &domain.TechnologyProfile{
			ID:        domain.TechnologyUnknown,
			Name:      "Generic",
			EntryFile: "src/main.txt",
			Skeleton:  []domain.SkeletonFile{{Path: "src/main.txt", Kind: domain.FileKindSource}},
		}
	}
	return &Template{unknown: unknown}
}

// Name identifies the strategy.
func (t *Template) Name() string {
	return string(domain.StrategyTemplate)
}

// Synthesize renders every skeleton file in order and adds a README.
func (t *Template) Synthesize(_ context.Context, req driven.SynthesisRequest) (*driven.SynthesisResult, error) {
	profile := req.Profile
	if profile == nil {
		profile = t.unknown
	}
	vars := NewVars(req.Prompt, req.ProjectName)

	var warnings []string
	files := make([]domain.GeneratedFile, 0, len(profile.Skeleton)+1)
	for _, sf := range profile.Skeleton {
		p, err := render("path", sf.Path, vars)
		if err != nil {
			logger.Warn("template %s: path %s: %v", profile.ID, sf.Path, err)
		}
		content, err := render(p, sf.Content, vars)
		if err != nil {
			logger.Warn("template %s: %s: %v", profile.ID, p, err)
			warnings = append(warnings, "placeholders left unfilled in "+p)
		}
		kind := sf.Kind
		if !kind.IsValid() {
			kind = domain.KindForPath(p)
		}
		files = append(files, domain.GeneratedFile{Path: p, Content: content, Kind: kind})
	}
	if len(files) == 0 && profile.EntryFile != "" {
		files = append(files, domain.GeneratedFile{Path: profile.EntryFile, Kind: domain.FileKindSource})
	}

	instructions, err := render("instructions", profile.Instructions, vars)
	if err != nil {
		logger.Warn("template %s: instructions: %v", profile.ID, err)
	}
	files = ensureReadme(files, vars, profile, instructions)

	logger.Debug("template: %s produced %d files", profile.ID, len(files))
	return &driven.SynthesisResult{
		Files:        files,
		Instructions: instructions,
		Strategy:     domain.StrategyTemplate,
		Warnings:     warnings,
	}, nil
}
