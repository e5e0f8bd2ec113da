package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thecoder8890/neuralnotes.io/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest documentation files as they appear in a directory",
	Long: `Watch a directory and ingest every new or modified file with a supported
extension. Hidden files are ignored. Stop with Ctrl-C.

Examples:
  docugen watch ./docs
  docugen watch ./docs --scan --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is ingested")
	watchCmd.Flags().Bool("scan", false, "ingest files already in the directory first")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService(ingestService != nil, "ingest"); err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	scan, err := cmd.Flags().GetBool("scan")
	if err != nil {
		return err
	}

	return watchDir(cmd.Context(), cmd, args[0], watch.WithDebounce(debounce), watch.WithInitialScan(scan))
}

// watchDir runs a watcher on dir and prints each result until ctx ends.
func watchDir(ctx context.Context, cmd *cobra.Command, dir string, opts ...watch.Option) error {
	w := watch.New(dir, ingestService, opts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan watch.Result)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, results)
	}()

	styles := stylesFor(cmd.OutOrStdout())
	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	for {
		select {
		case err := <-done:
			return err
		case r := <-results:
			if r.Err != nil {
				cmd.Printf("%s %s\n  %s\n", styles.Warning.Render("FAILED"), r.Path, formatError(r.Err))
				continue
			}
			cmd.Printf("%s %s -> %s (%d chunks)\n",
				styles.Success.Render("OK"), r.Path, r.Document.ID, r.Document.ChunkCount)
		}
	}
}
