package pipeline

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// RunFunc executes one pipeline run. The Runner's Execute method satisfies
// this; tests substitute fakes.
type RunFunc func(ctx context.Context, opts Options) (*Result, error)

// Loader arbitrates concurrent reload requests for one displayed table.
//
// Reloads can overlap: the user mashes refresh, or a file watcher fires
// while a slow sample query is still running. Only the newest request may
// update the display, so each request takes a monotonic generation number
// and a result is delivered only if its generation is still the latest when
// the run finishes. Stale results are dropped, not errored.
type Loader struct {
	run    RunFunc
	logger *log.Logger

	mu     sync.Mutex
	latest uint64
}

// NewLoader creates a loader around a run function.
func NewLoader(run RunFunc, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{run: run, logger: logger}
}

// Load runs the pipeline and reports whether the result is current.
// A false second return means a newer request started while this one was
// running; the caller must discard the result.
func (l *Loader) Load(ctx context.Context, opts Options) (*Result, bool, error) {
	l.mu.Lock()
	l.latest++
	gen := l.latest
	l.mu.Unlock()

	reqID := uuid.NewString()
	l.logger.Debug("load started", "request", reqID, "table", opts.TablePath)

	res, err := l.run(ctx, opts)

	l.mu.Lock()
	current := gen == l.latest
	l.mu.Unlock()

	if !current {
		l.logger.Debug("load superseded", "request", reqID)
		return nil, false, nil
	}
	if err != nil {
		l.logger.Debug("load failed", "request", reqID, "error", err)
		return nil, true, err
	}
	l.logger.Debug("load finished", "request", reqID,
		"nodes", res.Stats.NodeCount)
	return res, true, nil
}

// Go runs Load in a goroutine and calls deliver only with current results.
// Superseded runs call deliver for neither result nor error.
func (l *Loader) Go(ctx context.Context, opts Options, deliver func(*Result, error)) {
	go func() {
		res, current, err := l.Load(ctx, opts)
		if !current {
			return
		}
		deliver(res, err)
	}()
}
