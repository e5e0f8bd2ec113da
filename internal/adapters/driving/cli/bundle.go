package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage generated project bundles",
	Long:  `List, inspect, or download project bundles produced by 'docugen generate'.`,
}

var bundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated bundles, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBundleList,
}

var bundleGetCmd = &cobra.Command{
	Use:   "get [bundle-id]",
	Short: "Show a bundle's files and instructions",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundleGet,
}

var bundleDownloadCmd = &cobra.Command{
	Use:   "download [bundle-id]",
	Short: "Write a bundle's zip archive to disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundleDownload,
}

var (
	bundleListDocument string
	bundleDownloadDir  string
)

func init() {
	bundleListCmd.Flags().StringVarP(&bundleListDocument, "document", "d", "", "only bundles generated from this document")
	bundleDownloadCmd.Flags().StringVarP(&bundleDownloadDir, "output", "o", ".", "directory to write the archive to")

	bundleCmd.AddCommand(bundleListCmd)
	bundleCmd.AddCommand(bundleGetCmd)
	bundleCmd.AddCommand(bundleDownloadCmd)
	rootCmd.AddCommand(bundleCmd)
}

func runBundleList(cmd *cobra.Command, _ []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}

	bundles, err := generationService.ListBundles(cmd.Context(), bundleListDocument)
	if err != nil {
		return fmt.Errorf("failed to list bundles: %w", err)
	}
	if len(bundles) == 0 {
		cmd.Println("No bundles generated yet.")
		return nil
	}

	for i := range bundles {
		b := &bundles[i]
		cmd.Printf("  %s\n", b.ID)
		cmd.Printf("    Technology: %s (%s)\n", b.Technology, b.Strategy)
		cmd.Printf("    Document:   %s\n", b.DocumentID)
		cmd.Printf("    Prompt:     %s\n", b.Prompt)
		cmd.Printf("    Created:    %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}
	cmd.Printf("Total: %d bundles\n", len(bundles))
	return nil
}

func runBundleGet(cmd *cobra.Command, args []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}

	bundle, err := generationService.GetBundle(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get bundle: %w", err)
	}
	printBundle(cmd, bundle)
	return nil
}

func runBundleDownload(cmd *cobra.Command, args []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}

	archive, err := generationService.FetchBundle(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch bundle: %w", err)
	}

	if err := os.MkdirAll(bundleDownloadDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(bundleDownloadDir, "project_"+args[0]+".zip")
	if err := os.WriteFile(path, archive, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	cmd.Printf("Wrote %s (%d bytes)\n", path, len(archive))
	return nil
}
