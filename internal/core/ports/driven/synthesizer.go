package driven

import (
	"context"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// SynthesisRequest is the input of one synthesis attempt.
type SynthesisRequest struct {
	// Prompt is the user's natural-language request.
	Prompt string

	// Context is the retrieved documentation text.
	Context string

	// Profile is the resolved technology. It may be the unknown variant.
	Profile *domain.TechnologyProfile

	// ProjectName is a filesystem-safe name derived from the prompt.
	ProjectName string
}

// SynthesisResult is the file set produced by a synthesizer.
type SynthesisResult struct {
	// Files are the generated files in output order.
	Files []domain.GeneratedFile

	// Instructions are setup steps. Empty means the assembler supplies defaults.
	Instructions string

	// Strategy names the path that produced the files.
	Strategy domain.Strategy

	// Warnings carries non-fatal notes such as a fallback having occurred.
	Warnings []string
}

// Synthesizer turns a prompt, retrieved context and profile into project files.
//
// Every implementation guarantees relative paths, non-nil contents and at
// least one documentation file on success.
type Synthesizer interface {
	// Name identifies the strategy in logs.
	Name() string

	// Synthesize produces project files.
	// The AI strategy returns domain.ErrGenerationUnavailable on failure;
	// the template strategy never fails.
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// TechnologyResolver chooses the target technology for a generation request.
type TechnologyResolver interface {
	// Resolve returns the profile for an explicit hint when it is valid,
	// otherwise the best keyword match over the given texts, otherwise the
	// unknown profile. The second return is a warning for an ignored hint.
	Resolve(hint string, texts ...string) (*domain.TechnologyProfile, string)

	// Get returns a registered profile.
	Get(id domain.TechnologyID) (*domain.TechnologyProfile, bool)

	// Profiles returns all registered profiles in registry order.
	Profiles() []*domain.TechnologyProfile
}
