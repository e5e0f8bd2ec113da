package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/metrics"
	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driven/storage/memory"
	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/services"
	"github.com/thecoder8890/neuralnotes.io/internal/normalisers"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors"
	"github.com/thecoder8890/neuralnotes.io/internal/postprocessors/chunker"
	"github.com/thecoder8890/neuralnotes.io/internal/synthesis"
	"github.com/thecoder8890/neuralnotes.io/internal/technology"
)

const testGuideURL = "https://spring.io/guides/gs/rest-service"

const testGuide = `# Building a RESTful Web Service

Spring Boot makes it easy to create stand-alone applications. Add the
spring-boot-starter-web dependency to your Maven pom.xml.

## Create a Resource Controller

Annotate the class with @RestController and map requests with @GetMapping.`

// stubFetcher serves testGuide for every URL.
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, url string, _ int64) (*domain.RawDocument, error) {
	return &domain.RawDocument{URI: url, MIMEType: "text/markdown", Content: []byte(testGuide)}, nil
}

// setupTestServices wires real services over memory stores with template-only
// synthesis, and returns a cleanup that restores the previous globals.
func setupTestServices() func() {
	old := &Services{
		Ingest:     ingestService,
		Generation: generationService,
		Document:   documentService,
		Settings:   settingsService,
		Config:     configStore,
		Gatherer:   metricsGatherer,
		Close:      closeFn,
	}
	oldBootstrap := bootstrap

	knowledge := memory.NewKnowledgeStore()
	config := memory.NewConfigStore()
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	techs := technology.Default()

	ingest := services.NewIngestService(
		knowledge,
		stubFetcher{},
		normalisers.NewDefaultRegistry(),
		postprocessors.NewPipeline(chunker.New(chunker.WithTargetTokens(40))),
		services.WithIngestMetrics(recorder),
	)
	retriever := services.NewRetriever(knowledge, nil, domain.RetrievalSettings{}, 0, recorder)
	generation := services.NewGenerationService(
		knowledge,
		memory.NewBundleStore(),
		retriever,
		technology.NewResolver(techs),
		synthesis.NewTemplate(techs.Unknown()),
		recorder,
	)

	bootstrap = nil
	SetServices(&Services{
		Ingest:     ingest,
		Generation: generation,
		Document:   services.NewDocumentService(knowledge),
		Settings:   services.NewSettingsService(config, nil),
		Config:     config,
		Gatherer:   registry,
	})
	resetFlags(rootCmd)

	return func() {
		SetServices(old)
		bootstrap = oldBootstrap
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag in the tree to its default so that
// values set by one test do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

// ingestTestDocument ingests testGuide and returns its document ID.
func ingestTestDocument(t *testing.T) string {
	t.Helper()
	doc, err := ingestService.IngestURL(context.Background(), testGuideURL)
	require.NoError(t, err)
	return doc.ID
}
