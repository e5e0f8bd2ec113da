// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.docugen.
//
// Adapters:
//   - ConfigStore: TOML-based settings storage (config.toml)
//   - PromptStore: user-editable generation prompt templates (prompts/)
package file
