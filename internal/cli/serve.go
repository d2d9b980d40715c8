package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

// serveCommand creates the serve command: a static file server over the
// output directory with debug endpoints exposing the recorded graph.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory",
		Long: `Serve the built site over HTTP.

Debug endpoints:
  /debug/graph.dot   recorded dependency graph as Graphviz source
  /debug/stats       tracked file counts as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.ConfigPath, err)
	}

	runner, err := c.newRunner(ctx, cfg, nil, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if _, err := runner.LoadUses(ctx, cfg.Title); err != nil {
		c.Logger.Warn("could not restore dependency graph", "err", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/debug/graph.dot", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(runner.Uses.ToDOT()))
	})
	r.Get("/debug/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tracked_files": runner.Uses.Len(),
			"output_dir":    cfg.OutputDir,
		})
	})
	r.Handle("/*", http.FileServer(http.Dir(cfg.OutputDir)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	printInfo("Serving %s on %s", cfg.OutputDir, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
