package cli

import (
	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the extraction pipeline over HTTP.

Endpoints:
  GET /healthz
  GET /api/search?q=<query>
  GET /api/repos/{owner}/{repo}/contributors[?enrich=1]
  GET /api/repos/{owner}/{repo}/contributors.csv
  GET /api/users/{login}/email[?repo=owner/name]

Requests may carry their own Authorization bearer token; otherwise the
server's configured credential is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, err := c.newCache(ctx)
			if err != nil {
				logger.Warn("cache unavailable, serving without", "err", err)
				store = nil
			}

			if addr == "" {
				addr = c.Config.Server.Addr
			}

			srv := api.NewServer(api.Config{
				Addr:   addr,
				Token:  c.resolveToken(ctx),
				Cache:  store,
				Logger: logger,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")

	return cmd
}
