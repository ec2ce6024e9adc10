package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/api"
)

func newServeCommand(rt *runtime) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /api/health   liveness
  POST /api/analyze  multipart upload (file or extractedText)
  GET  /metrics      Prometheus metrics

Example:
  statement-analyzer serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := analysis.New(rt.cfg.Classifier, rt.cfg.OCR)
			app := api.NewApp(a, api.ServerConfig{
				MaxUploadMB: rt.cfg.Server.MaxUploadMB,
				Version:     Version,
			}, rt.log)
			return api.Serve(ctx, app, addr, rt.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	return cmd
}
