package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
	"github.com/reoring/mutations/metrics"
	"github.com/reoring/mutations/middleware"
)

type serveFlags struct {
	addr     string
	schemas  []string
	maxBody  int64
	strictKV bool
}

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve YAML-declared commands over HTTP",
		Long: `Starts an HTTP server exposing every schema as POST /commands/{name}.
The response carries the validated inputs or the error set. GET /commands
lists the commands with their JSON Schema; GET /metrics exports Prometheus
metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringArrayVarP(&f.schemas, "schema", "s", nil, "YAML schema file (repeatable)")
	cmd.Flags().Int64Var(&f.maxBody, "max-body", middleware.DefaultMaxBodyBytes, "Maximum request body size in bytes")
	cmd.Flags().BoolVar(&f.strictKV, "reject-duplicate-keys", false, "Reject JSON bodies repeating a key")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// endpoint is one served command.
type endpoint struct {
	name   string
	cmd    *echoCommand
	schema *js.Schema
}

func (a *app) buildRouter(f *serveFlags, reg *prometheus.Registry) (http.Handler, error) {
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}
	eps := map[string]endpoint{}
	for _, path := range f.schemas {
		c, doc, err := a.load(path, mutations.WithObserver(collector))
		if err != nil {
			return nil, err
		}
		if _, dup := eps[c.Name()]; dup {
			return nil, fmt.Errorf("%s: command %q declared twice", path, c.Name())
		}
		s, err := doc.Schema.JSONSchema()
		if err != nil {
			return nil, err
		}
		eps[c.Name()] = endpoint{name: c.Name(), cmd: c, schema: s}
	}

	opts := []middleware.Option{middleware.WithMaxBodyBytes(f.maxBody), middleware.WithLogger(a.logger)}
	if f.strictKV {
		opts = append(opts, middleware.WithDuplicateKeyCheck())
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/commands", func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(eps))
		for n := range eps {
			names = append(names, n)
		}
		sort.Strings(names)
		list := make([]map[string]any, 0, len(names))
		for _, n := range names {
			list = append(list, map[string]any{"name": n, "schema": eps[n].schema})
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"commands": list})
	})
	for _, ep := range eps {
		r.Post("/commands/"+ep.name, middleware.Handler(ep.cmd, opts...).ServeHTTP)
	}
	return r, nil
}

func (a *app) runServe(ctx context.Context, f *serveFlags) error {
	reg := prometheus.NewRegistry()
	handler, err := a.buildRouter(f, reg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              f.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", srv.Addr, "commands", len(f.schemas))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}
