package analysis

import (
	"sync"

	"github.com/zenlang/zls/internal/store"
)

// maxAliasDepth bounds resolve_var_decl_alias and the field-access
// resolver's alias-follow step (spec.md §9 Open Questions: "suggested:
// 32"), preventing an infinite loop on a cyclic alias chain.
const maxAliasDepth = 32

type typeCacheKey struct {
	handleURI string
	node      int
}

// Engine is the L6 analysis engine (spec.md §4.6), operating over a
// store.Store's document graph. A single Engine is shared process-wide;
// its type-resolution cache is invalidated per handle when the lsp workspace
// applies a didChange edit.
type Engine struct {
	store *store.Store

	mu        sync.Mutex
	typeCache map[typeCacheKey]TypeWithHandle
}

// New creates an Engine bound to s.
func New(s *store.Store) *Engine {
	return &Engine{store: s, typeCache: make(map[typeCacheKey]TypeWithHandle)}
}

// InvalidateHandle drops cached type-resolution results for uri. The lsp
// workspace wrapper calls this after applying each didChange edit, since
// spec.md §3 notes that "edits produce a new tree and invalidate stale
// offsets".
func (e *Engine) InvalidateHandle(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.typeCache {
		if k.handleURI == uri {
			delete(e.typeCache, k)
		}
	}
}

func (e *Engine) cachedType(handleURI string, node int) (TypeWithHandle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.typeCache[typeCacheKey{handleURI, node}]
	return t, ok
}

func (e *Engine) storeType(handleURI string, node int, t TypeWithHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typeCache[typeCacheKey{handleURI, node}] = t
}

// Handle returns the store handle for uri, or ok=false if it is not
// loaded.
func (e *Engine) Handle(uri string) (*store.Handle, bool) {
	return e.store.GetHandle(uri)
}

// Store exposes the underlying document store for callers (internal/refs,
// lsp providers) that need whole-graph access alongside analysis results.
func (e *Engine) Store() *store.Store { return e.store }
