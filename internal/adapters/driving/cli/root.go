// Package cli provides the docugen command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
	"github.com/thecoder8890/neuralnotes.io/internal/logger"
)

// Store backends selectable with --store.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Options are the runtime settings resolved from flags and DOCUGEN_* env vars.
type Options struct {
	DataDir string
	Verbose bool
	Timeout time.Duration
	Store   string
}

// Services are the ports the commands drive.
type Services struct {
	Ingest     driving.IngestService
	Generation driving.GenerationService
	Document   driving.DocumentService
	Settings   driving.SettingsService
	Config     driven.ConfigStore
	Gatherer   prometheus.Gatherer

	// Close releases stores and provider clients. May be nil.
	Close func() error
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	version   = "dev"
	bootstrap Bootstrap
	closeFn   func() error

	ingestService     driving.IngestService
	generationService driving.GenerationService
	documentService   driving.DocumentService
	settingsService   driving.SettingsService
	configStore       driven.ConfigStore
	metricsGatherer   prometheus.Gatherer
)

var rootCmd = &cobra.Command{
	Use:   "docugen",
	Short: "Generate starter projects from documentation",
	Long: `DocuGen ingests technical documentation from a URL or file and generates
a complete starter project for a target technology stack.

  docugen ingest https://spring.io/guides/gs/rest-service
  docugen generate --document <id> --prompt "REST API with CRUD for User"`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initRuntime,
	PersistentPostRunE: shutdownRuntime,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", "", "data directory (default ~/.docugen)")
	flags.BoolP("verbose", "v", false, "print pipeline diagnostics to stderr")
	flags.Duration("timeout", 0, "overall time limit per command (0 = none)")
	flags.String("store", StoreSQLite, "storage backend: sqlite or memory")

	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("store", flags.Lookup("store"))

	viper.SetEnvPrefix("DOCUGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// SetVersion sets the version reported by `docugen version`.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	generationService = s.Generation
	documentService = s.Document
	settingsService = s.Settings
	configStore = s.Config
	metricsGatherer = s.Gatherer
	closeFn = s.Close
}

// Execute runs the root command and prints errors with their code.
// It returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), formatError(err))
		return 1
	}
	return 0
}

// ResolveOptions reads the merged flag, env and default values.
func ResolveOptions() (Options, error) {
	opts := Options{
		DataDir: viper.GetString("data_dir"),
		Verbose: viper.GetBool("verbose"),
		Timeout: viper.GetDuration("timeout"),
		Store:   strings.ToLower(strings.TrimSpace(viper.GetString("store"))),
	}
	if opts.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return opts, fmt.Errorf("resolve home directory: %w", err)
		}
		opts.DataDir = filepath.Join(home, ".docugen")
	}
	switch opts.Store {
	case "":
		opts.Store = StoreSQLite
	case StoreSQLite, StoreMemory:
	default:
		return opts, fmt.Errorf("%w: unknown store %q (use sqlite or memory)", domain.ErrInvalidInput, opts.Store)
	}
	if opts.Timeout < 0 {
		return opts, fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidInput)
	}
	return opts, nil
}

func initRuntime(cmd *cobra.Command, _ []string) error {
	opts, err := ResolveOptions()
	if err != nil {
		return err
	}
	logger.SetVerbose(opts.Verbose)
	logger.SetTimestamps(opts.Verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if opts.Timeout > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
		cmd.SetContext(ctx)
		cobra.OnFinalize(cancel)
	}

	if bootstrap == nil || skipsBootstrap(cmd) {
		return nil
	}
	logger.Section("Bootstrap")
	logger.Debug("data dir %s, store %s", opts.DataDir, opts.Store)
	services, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func shutdownRuntime(_ *cobra.Command, _ []string) error {
	if closeFn == nil {
		return nil
	}
	fn := closeFn
	closeFn = nil
	return fn()
}

// skipsBootstrap reports whether cmd runs without services.
func skipsBootstrap(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["bootstrap"] == "skip" {
			return true
		}
	}
	return false
}

// formatError renders err as "error [code]: message".
func formatError(err error) string {
	code := domain.ErrorCode(err)
	if errors.Is(err, context.DeadlineExceeded) {
		code = domain.CodeTimeout
	}
	return fmt.Sprintf("error [%s]: %v", code, err)
}

func requireService(ok bool, name string) error {
	if !ok {
		return fmt.Errorf("%s service not configured", name)
	}
	return nil
}
