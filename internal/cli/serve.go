package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/internal/api"
	"github.com/matzehuels/sersmask/pkg/catalog"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		record    bool
		catalogDB string
		maxBody   int64
		cc        cacheOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build pipeline over HTTP",
		Long: `Serve the build pipeline over HTTP.

Routes:
  GET  /healthz           build information
  POST /v1/build?format=  JSON batch in, artifact out
  POST /v1/plan           JSON batch in, shape sequences out
  GET  /v1/runs           recorded runs (with --record)
  GET  /v1/runs/{id}      one recorded run

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, record, catalogDB, maxBody, cc)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&record, "record", false, "record builds in the catalog and serve /v1/runs")
	cmd.Flags().StringVar(&catalogDB, "catalog", "", "catalog database (default ~/.local/share/sersmask/catalog.db)")
	cmd.Flags().Int64Var(&maxBody, "max-body", api.DefaultMaxBody, "maximum request body in bytes")
	cc.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, record bool, catalogDB string, maxBody int64, cc cacheOpts) error {
	runner, err := c.newRunner(ctx, cc)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var cat *catalog.Catalog
	if record {
		if cat, err = openCatalog(catalogDB); err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer cat.Close()
	}

	srv := api.New(api.Config{
		Runner:  runner,
		Catalog: cat,
		Logger:  c.Logger,
		MaxBody: maxBody,
	})
	printInfo("Serving on %s", StyleLink.Render("http://"+addr))
	return srv.ListenAndServe(ctx, addr)
}
