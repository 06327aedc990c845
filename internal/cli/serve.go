package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the filter API over HTTP",
	Long: `Run the HTTP API. POST /v1/memberships/query runs a filter document,
POST /v1/memberships/explain compiles one, GET /v1/catalog lists the
attributes, GET /healthz pings the database and GET /metrics exposes
Prometheus metrics.

Examples:
  mvq serve
  mvq serve --addr 127.0.0.1:9090
  MVQ_DATABASE_DSN=postgres://app@db/membership mvq serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, exec, err := newService(ctx, true)
		if err != nil {
			return handleServiceError(cmd, err)
		}
		defer exec.Close()

		c := getConfig()
		httpCfg := server.HTTPConfig{
			Addr:         c.Server.Addr,
			ReadTimeout:  c.Server.ReadTimeout.Duration,
			WriteTimeout: c.Server.WriteTimeout.Duration,
		}
		if serveAddr != "" {
			httpCfg.Addr = serveAddr
		}

		srv := server.New(svc, server.WithLogger(logger))
		if err := srv.ListenAndServe(ctx, httpCfg); err != nil {
			logger.Error("server stopped", "error", err)
			return handleError(cmd, ErrInternal, err, "")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
