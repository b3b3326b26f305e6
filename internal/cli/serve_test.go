package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/cache"
	"github.com/icemap-dev/icemap/pkg/graph"
	"github.com/icemap-dev/icemap/pkg/layout"
	"github.com/icemap-dev/icemap/pkg/pipeline"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// stubEngine positions nodes on a diagonal without Graphviz.
type stubEngine struct{}

func (stubEngine) Layout(ctx context.Context, g *graph.Graph) (*layout.Result, error) {
	res := &layout.Result{
		Positions: make(map[string]graph.Point),
		EdgePaths: make(map[string][]graph.Point),
	}
	for i, n := range g.Nodes() {
		res.Positions[n.ID] = graph.Point{X: float64(i * 10), Y: float64(i * 10)}
	}
	return res, nil
}

func testServer(t *testing.T) *apiServer {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, stubEngine{}, c.Logger)
	return &apiServer{
		cli:     c,
		runner:  runner,
		loader:  pipeline.NewLoader(runner.Execute, c.Logger),
		sampler: sample.NullSampler{},
	}
}

func writeTestTable(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	metaDir := filepath.Join(dir, "metadata")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := `{"format-version": 2, "last-updated-ms": 1000, "snapshots": []}`
	if err := os.WriteFile(filepath.Join(metaDir, "v1.metadata.json"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// The logging middleware attaches a request-scoped logger that handlers
// retrieve through the context.
func TestRequestLoggerInContext(t *testing.T) {
	srv := testServer(t)

	var got *log.Logger
	h := srv.logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = loggerFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got == nil || got == log.Default() {
		t.Error("handler did not receive a request-scoped logger")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGraphEndpointMissingTable(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/graph")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGraphEndpointUnknownTable(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/graph?table=" + filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGraphEndpointReturnsPositionedGraph(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	table := writeTestTable(t)
	resp, err := http.Get(ts.URL + "/api/graph?table=" + table)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var payload graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Hash == "" {
		t.Error("hash empty")
	}
	g, err := graph.Unmarshal(payload.Graph)
	if err != nil {
		t.Fatalf("unmarshal graph: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2 (table + metadata)", g.NodeCount())
	}
}
