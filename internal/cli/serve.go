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

	icerr "github.com/icemap-dev/icemap/pkg/errors"
	"github.com/icemap-dev/icemap/pkg/pipeline"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// serveCommand creates the serve command exposing the diagram API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table diagram API over HTTP",
		Long: `Start an HTTP server exposing the diagram pipeline.

Endpoints:
  GET /healthz                  liveness check
  GET /api/graph?table=<dir>    positioned graph for a table directory

Graph requests accept rows=true to sample content rows and refresh=true to
bypass the cache. Overlapping requests for the pipeline are arbitrated:
when a newer request supersedes a running one, the older request answers
204 No Content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	if addr == "" {
		addr = c.Config.Addr
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &apiServer{
		cli:     c,
		runner:  runner,
		loader:  pipeline.NewLoader(runner.Execute, c.Logger),
		sampler: c.newSampler(),
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	printInfo("Serving on http://%s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// apiServer bundles the HTTP handlers with their shared pipeline state.
type apiServer struct {
	cli     *CLI
	runner  *pipeline.Runner
	loader  *pipeline.Loader
	sampler sample.Sampler
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/graph", s.handleGraph)

	return r
}

// logRequests logs each request and attaches a request-scoped logger to the
// context; handlers pull it back out with loggerFromContext so pipeline log
// lines carry the request id.
func (s *apiServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		reqLogger := s.cli.Logger.With("request_id", reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), reqLogger)))

		reqLogger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// graphResponse is the envelope for /api/graph.
type graphResponse struct {
	Hash  string             `json:"hash"`
	Stats pipeline.Stats     `json:"stats"`
	Cache pipeline.CacheInfo `json:"cache"`
	Graph json.RawMessage    `json:"graph"`
}

func (s *apiServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		writeError(w, http.StatusBadRequest, "missing 'table' query parameter")
		return
	}

	opts := s.cli.pipelineOptions(table)
	opts.Logger = loggerFromContext(r.Context())
	opts.Refresh = r.URL.Query().Get("refresh") == "true"
	if r.URL.Query().Get("rows") == "true" {
		opts.IncludeRows = true
		opts.Sampler = s.sampler
	}

	result, current, err := s.loader.Load(r.Context(), opts)
	if !current {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		switch icerr.GetCode(err) {
		case icerr.ErrCodeInvalidInput, icerr.ErrCodeInvalidTable:
			status = http.StatusBadRequest
		case icerr.ErrCodeListingFailed, icerr.ErrCodeNotFound, icerr.ErrCodeFileNotFound:
			status = http.StatusNotFound
		}
		writeError(w, status, icerr.UserMessage(err))
		return
	}

	data, err := result.Graph.Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "serialize graph")
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{
		Hash:  result.GraphHash,
		Stats: result.Stats,
		Cache: result.CacheInfo,
		Graph: data,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
