package api

import (
	"sync"
	"time"

	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
)

type pendingImport struct {
	preview *importer.Preview
	owner   string
	expires time.Time
}

// previewRegistry holds import previews between upload and commit.
type previewRegistry struct {
	ttl   time.Duration
	clock clock.Clock
	ids   id.Generator

	mu      sync.Mutex
	pending map[string]pendingImport
}

func newPreviewRegistry(ttl time.Duration, clk clock.Clock, ids id.Generator) *previewRegistry {
	return &previewRegistry{ttl: ttl, clock: clk, ids: ids, pending: make(map[string]pendingImport)}
}

// put stores pv for owner and returns its ID.
func (r *previewRegistry) put(pv *importer.Preview, owner string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	key := r.ids.NewID()
	r.pending[key] = pendingImport{preview: pv, owner: owner, expires: r.clock.Now().Add(r.ttl)}
	return key
}

// take removes and returns a preview. Previews of other users are not visible.
func (r *previewRegistry) take(key, owner string) (*importer.Preview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	p, ok := r.pending[key]
	if !ok || p.owner != owner {
		return nil, false
	}
	delete(r.pending, key)
	return p.preview, true
}

// restore puts back a preview whose commit failed.
func (r *previewRegistry) restore(key, owner string, pv *importer.Preview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[key] = pendingImport{preview: pv, owner: owner, expires: r.clock.Now().Add(r.ttl)}
}

func (r *previewRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	return len(r.pending)
}

// sweep drops expired previews. Callers hold mu.
func (r *previewRegistry) sweep() {
	now := r.clock.Now()
	for k, p := range r.pending {
		if !now.Before(p.expires) {
			delete(r.pending, k)
		}
	}
}
