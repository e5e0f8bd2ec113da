package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url-or-file>...",
	Short: "Ingest documentation from URLs or files",
	Long: `Fetch or read documentation, extract its text, chunk it and store it
for generation. Re-ingesting a source that is already ready returns the
existing document without reprocessing.

Examples:
  docugen ingest https://spring.io/guides/gs/rest-service
  docugen ingest ./docs/flask.md ./docs/deploy.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestJSON bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOutput is one ingested source as printed by --json.
type ingestOutput struct {
	Source   string           `json:"source"`
	Document *domain.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
	Code     string           `json:"code,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireService(ingestService != nil, "ingest"); err != nil {
		return err
	}
	ctx := cmd.Context()

	results := make([]driving.IngestResult, len(args))
	var (
		uploads   []driving.Upload
		uploadIdx []int
	)
	for i, arg := range args {
		if isURL(arg) {
			doc, err := ingestService.IngestURL(ctx, arg)
			results[i] = driving.IngestResult{Name: arg, Document: doc, Err: err}
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			results[i] = driving.IngestResult{Name: arg, Err: fmt.Errorf("%w: %v", domain.ErrUnreadableSource, err)}
			continue
		}
		uploads = append(uploads, driving.Upload{Name: filepath.Base(arg), Data: data})
		uploadIdx = append(uploadIdx, i)
	}
	for j, r := range ingestService.IngestFiles(ctx, uploads) {
		r.Name = args[uploadIdx[j]]
		results[uploadIdx[j]] = r
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if ingestJSON {
		out := make([]ingestOutput, len(results))
		for i, r := range results {
			out[i] = ingestOutput{Source: r.Name, Document: r.Document}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
				out[i].Code = domain.ErrorCode(r.Err)
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		styles := stylesFor(cmd.OutOrStdout())
		for _, r := range results {
			if r.Err != nil {
				cmd.Printf("%s %s\n  %s\n", styles.Warning.Render("FAILED"), r.Name, formatError(r.Err))
				continue
			}
			cmd.Printf("%s %s\n", styles.Success.Render("OK"), r.Name)
			cmd.Printf("  ID:     %s\n", r.Document.ID)
			cmd.Printf("  Title:  %s\n", r.Document.Title)
			cmd.Printf("  Chunks: %d\n", r.Document.ChunkCount)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}
	return nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
