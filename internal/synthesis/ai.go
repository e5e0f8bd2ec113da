package synthesis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Defaults for the AI strategy.
const (
	DefaultAITimeout   = domain.DefaultGenerationTimeout
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.1
)

// Ensure AI implements the interfaces.
var (
	_ driven.Synthesizer      = (*AI)(nil)
	_ driven.PromptStoreAware = (*AI)(nil)
)

// AI asks a language model for a JSON file manifest in one request.
type AI struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// AIOption configures the AI strategy.
type AIOption func(*AI)

// WithTimeout bounds a single generation request.
func WithTimeout(d time.Duration) AIOption {
	return func(a *AI) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMaxTokens sets the completion budget.
func WithMaxTokens(n int) AIOption {
	return func(a *AI) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// NewAI creates an AI strategy over the given model.
func NewAI(llm driven.LLMService, opts ...AIOption) *AI {
	a := &AI{
		llm:         llm,
		timeout:     DefaultAITimeout,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in prompts are used.
func (a *AI) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Name identifies the strategy.
func (a *AI) Name() string {
	return string(domain.StrategyAI)
}

// Synthesize requests a manifest from the model. Every failure, including
// a timeout, wraps domain.ErrGenerationUnavailable together with the cause.
func (a *AI) Synthesize(ctx context.Context, req driven.SynthesisRequest) (*driven.SynthesisResult, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", domain.ErrGenerationUnavailable)
	}
	profile := req.Profile
	if profile == nil {
		profile = &domain.TechnologyProfile{ID: domain.TechnologyUnknown}
	}
	vars := NewVars(req.Prompt, req.ProjectName)

	system, err := a.renderPrompt(driven.PromptGenerationSystem, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	user, err := a.renderPrompt(driven.PromptGenerationUser, struct {
		Prompt      string
		Context     string
		ProjectName string
	}{req.Prompt, req.Context, vars.ProjectName})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	logger.Debug("ai: requesting manifest from %s for %s", a.llm.ModelName(), profile.ID)
	response, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}, driven.ChatOptions{
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		JSONMode:    true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	logger.Debug("ai: response received in %s (%d bytes)", time.Since(start).Round(time.Millisecond), len(response))

	manifest, err := ParseManifest(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	files, err := manifest.GeneratedFiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}

	instructions := manifest.Instructions
	if instructions == "" && !profile.IsUnknown() {
		instructions, _ = render("instructions", profile.Instructions, vars)
	}

	return &driven.SynthesisResult{
		Files:        ensureReadme(files, vars, profile, instructions),
		Instructions: instructions,
		Strategy:     domain.StrategyAI,
	}, nil
}

// renderPrompt loads the named prompt and executes it with data.
// A customised prompt that fails to parse falls back to the built-in one.
func (a *AI) renderPrompt(name string, data any) (string, error) {
	src := DefaultPrompts()[name]
	if a.promptStore != nil {
		if custom, err := a.promptStore.Load(name); err == nil && custom != "" {
			src = custom
		} else if err != nil {
			logger.Debug("ai: prompt %s: %v, using default", name, err)
		}
	}

	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		logger.Warn("prompt %s does not parse (%v), using default", name, err)
		tmpl, err = template.New(name).Parse(DefaultPrompts()[name])
		if err != nil {
			return "", fmt.Errorf("parse prompt %s: %w", name, err)
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
