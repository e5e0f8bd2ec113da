package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driving"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a starter project from an ingested document",
	Long: `Retrieve the most relevant parts of an ingested document, pick a
technology stack and generate a complete starter project. The project is
stored as a bundle and written to project_<id>.zip in the output directory.

The technology is inferred from the prompt unless --tech names one.
Run 'docugen technologies' to list them.

Examples:
  docugen generate -d 5d41402abc4b2a76 -p "Spring Boot REST API with CRUD for User"
  docugen generate -d 5d41402abc4b2a76 -p "todo app" --tech react -o ./out`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	generateDocument string
	generatePrompt   string
	generateTech     string
	generateOutput   string
	generateNoWrite  bool
	generateJSON     bool
)

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateDocument, "document", "d", "", "ID of an ingested document (required)")
	flags.StringVarP(&generatePrompt, "prompt", "p", "", "description of the project to generate (required)")
	flags.StringVarP(&generateTech, "tech", "t", "", "technology id, e.g. spring_boot, react, flask")
	flags.StringVarP(&generateOutput, "output", "o", ".", "directory to write the zip archive to")
	flags.BoolVar(&generateNoWrite, "no-write", false, "store the bundle without writing the archive")
	flags.BoolVar(&generateJSON, "json", false, "print the bundle as JSON")
	_ = generateCmd.MarkFlagRequired("document")
	_ = generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}

	bundle, err := generationService.Generate(cmd.Context(), driving.GenerateRequest{
		DocumentID: generateDocument,
		Prompt:     generatePrompt,
		Technology: generateTech,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("%w (run 'docugen document list' to see ready documents)", err)
		}
		return err
	}

	archivePath := ""
	if !generateNoWrite {
		archivePath, err = writeArchive(generateOutput, bundle)
		if err != nil {
			return err
		}
	}

	if generateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	printBundle(cmd, bundle)
	if archivePath != "" {
		cmd.Printf("\nArchive: %s\n", archivePath)
	}
	return nil
}

func printBundle(cmd *cobra.Command, bundle *domain.ProjectBundle) {
	styles := stylesFor(cmd.OutOrStdout())

	cmd.Println(styles.Title.Render("Bundle " + bundle.ID))
	cmd.Printf("  Technology: %s\n", bundle.Technology)
	cmd.Printf("  Strategy:   %s\n", bundle.Strategy)
	cmd.Printf("  Files:      %d\n\n", len(bundle.Files))
	cmd.Print(renderTree(bundle.Tree, styles))

	if bundle.Instructions != "" {
		cmd.Println()
		cmd.Println(styles.Title.Render("Instructions"))
		cmd.Println(bundle.Instructions)
	}
	for _, w := range bundle.Warnings {
		cmd.Println(styles.Warning.Render("Warning: " + w))
	}
}

// writeArchive writes the bundle archive into dir and returns its path.
func writeArchive(dir string, bundle *domain.ProjectBundle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, bundle.ArchiveName())
	if err := os.WriteFile(path, bundle.Archive, 0o644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return path, nil
}
