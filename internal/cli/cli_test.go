package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/cache"
)

// Cache keys are namespaced by the schema version so a format bump reads
// old entries as misses.
func TestNewRunnerScopesCacheKeys(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)

	r, err := c.newRunner(true)
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	defer r.Close()

	graphKey := r.Keyer.GraphKey("fp", cache.GraphKeyOpts{})
	if !strings.HasPrefix(graphKey, cacheSchema) {
		t.Errorf("graph key %q missing %q prefix", graphKey, cacheSchema)
	}
	layoutKey := r.Keyer.LayoutKey("hash", cache.LayoutKeyOpts{})
	if !strings.HasPrefix(layoutKey, cacheSchema) {
		t.Errorf("layout key %q missing %q prefix", layoutKey, cacheSchema)
	}
}
