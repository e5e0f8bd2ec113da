package ai

import (
	"fmt"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator pings configured providers for the settings service.
// An unset provider has nothing to validate.
type ConfigValidator struct{}

// NewConfigValidator returns a validator backed by the provider factories.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding builds the embedding adapter and pings it.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if err := ValidateEmbeddingConfig(config); err != nil {
		return fmt.Errorf("embedding provider %s: %w", config.Provider, err)
	}
	return nil
}

// ValidateLLM builds the generation adapter and pings it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if err := ValidateLLMConfig(config); err != nil {
		return fmt.Errorf("LLM provider %s: %w", config.Provider, err)
	}
	return nil
}
