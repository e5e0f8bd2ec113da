package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Expose pipeline metrics for Prometheus",
	Long: `Serve ingestion, retrieval and generation counters on /metrics.

Metrics are kept in process memory, so this is most useful together with
long-running commands. Run it alongside 'docugen watch' in the same process
with --watch.

Examples:
  docugen serve-metrics --addr :9090 --watch ./docs`,
	Args: cobra.NoArgs,
	RunE: runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().String("addr", ":9090", "listen address")
	serveMetricsCmd.Flags().String("watch", "", "also watch and ingest this directory")
	rootCmd.AddCommand(serveMetricsCmd)
}

func runServeMetrics(cmd *cobra.Command, _ []string) error {
	if err := requireService(metricsGatherer != nil, "metrics"); err != nil {
		return err
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("watch")
	if err != nil {
		return err
	}

	if dir != "" {
		if err := requireService(ingestService != nil, "ingest"); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if dir != "" {
		go func() {
			errCh <- watchDir(ctx, cmd, dir)
		}()
	}

	cmd.Printf("Serving metrics on http://%s/metrics\n", addr)
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
