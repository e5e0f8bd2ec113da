package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage DocuGen configuration",
	Long: `View and change AI providers, chunking, retrieval and limit settings.

Settings live in config.toml under the data directory. Use 'config set' for
single values or the 'embedding' and 'llm' subcommands for guided setup.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a single configuration value. Numbers and booleans are stored typed,
everything else as a string. Durations use Go syntax, e.g. 45s or 2m.

Keys:
  ` + strings.Join(configKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that configured providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for semantic retrieval.`,
	RunE:  runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for AI project synthesis.`,
	RunE:  runConfigLLM,
}

// configKeys are the keys accepted by 'config set'.
//
//nolint:gosec // G101: key names, not credentials.
var configKeys = []string{
	"embedding.provider",
	"embedding.model",
	"embedding.base_url",
	"embedding.api_key",
	"llm.provider",
	"llm.model",
	"llm.fallback_model",
	"llm.base_url",
	"llm.api_key",
	"llm.requests_per_minute",
	"chunking.target_tokens",
	"chunking.overlap",
	"retrieval.top_k",
	"retrieval.max_context_chars",
	"limits.max_source_bytes",
	"limits.fetch_timeout",
	"limits.embedding_timeout",
	"limits.generation_timeout",
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	if settings.LLM.FallbackModel != "" {
		cmd.Printf("  Fallback Model: %s\n", settings.LLM.FallbackModel)
	}
	if settings.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Requests/min: %d\n", settings.LLM.RequestsPerMinute)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Target Tokens: %d\n", settings.Chunking.TargetTokens)
	cmd.Printf("  Overlap: %.2f\n", settings.Chunking.OverlapFraction)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Max Context Chars: %d\n", settings.Retrieval.MaxContextChars)
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  Max Source Bytes: %d\n", settings.Limits.MaxSourceBytes)
	cmd.Printf("  Fetch Timeout: %s\n", settings.Limits.FetchTimeout)
	cmd.Printf("  Embedding Timeout: %s\n", settings.Limits.EmbeddingTimeout)
	cmd.Printf("  Generation Timeout: %s\n", settings.Limits.GenerationTimeout)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docugen config embedding' or 'docugen config llm' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (none)")
		cmd.Println("  Status: not configured")
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Println("  API Key: (not set)")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireService(configStore != nil, "config"); err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(args[0]))
	if !isConfigKey(key) {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	if err := configStore.Set(key, parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := args[1]
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(shown)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := requireService(configStore != nil, "config"); err != nil {
		return err
	}
	cmd.Println(configStore.Path())
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Embedding.IsConfigured() {
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			return fmt.Errorf("embedding provider: %w", err)
		}
		cmd.Println("Embedding provider: OK")
	}
	if settings.LLM.IsConfigured() {
		if err := settingsService.ValidateLLMConfig(); err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		cmd.Println("LLM provider: OK")
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(stdin))
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService != nil, "settings"); err != nil {
		return err
	}
	return configureLLMProvider(cmd, bufio.NewReader(stdin))
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	var providers []domain.AIProvider
	for _, p := range domain.AllAIProviders() {
		if p.SupportsEmbeddings() {
			providers = append(providers, p)
		}
	}
	provider, model, apiKey, err := promptProvider(cmd, reader, "Embedding", providers, domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := promptProvider(cmd, reader, "LLM", domain.AllAIProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// promptProvider asks for a provider, a model and, when needed, an API key.
func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	label string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	cmd.Printf("Select %s Provider\n", label)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// parseConfigValue stores ints, floats and booleans typed.
func parseConfigValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to reader.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
