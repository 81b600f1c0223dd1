package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ontoview/ontoview/internal/api"
	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/store"
)

// serveCommand creates the serve command: expose a built taxonomy over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		buildID string
	)

	cmd := &cobra.Command{
		Use:   "serve [taxonomy.json]",
		Short: "Serve a built taxonomy over HTTP",
		Long: `Serve loads a taxonomy document and answers read-only queries against it.

The document comes from a file argument, or with --build from the configured
store.

Examples:
  ontoview serve taxonomy.json
  ontoview serve --build 4f6c2c1e-... --addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args, buildID)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), addr, doc)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&buildID, "build", "", "serve a build from the configured store")

	return cmd
}

func (c *CLI) loadDocument(ctx context.Context, args []string, buildID string) (export.Document, error) {
	switch {
	case buildID != "" && len(args) > 0:
		return export.Document{}, fmt.Errorf("pass a file or --build, not both")
	case buildID != "":
		if c.Config.Mongo.URI == "" {
			return export.Document{}, fmt.Errorf("no store configured (set [mongo] uri in the config file)")
		}
		st, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Config.Mongo.URI,
			Database:   c.Config.Mongo.Database,
			Collection: c.Config.Mongo.Collection,
		})
		if err != nil {
			return export.Document{}, err
		}
		defer st.Close(ctx)
		return st.Load(ctx, buildID)
	case len(args) > 0:
		return export.ReadFile(args[0])
	default:
		return export.Document{}, fmt.Errorf("pass a taxonomy file or --build")
	}
}

func (c *CLI) serve(ctx context.Context, addr string, doc export.Document) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(doc, c.Logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "regions", len(doc.Regions))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		c.Logger.Info("shut down")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
