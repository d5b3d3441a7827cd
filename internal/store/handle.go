// Package store is the L5 document store of spec.md §4.5/§4.9: it owns
// every open or transitively-imported file, keyed by URI, with a
// refcounted import graph and build-script-driven include-path discovery.
package store

import (
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/location"
)

// HandleID addresses a Handle through a generational slot map (spec.md §9
// "Deferred destruction"), so a HandleID captured during one request can
// never silently alias a different file after the original handle is
// pruned and its slot reused.
type HandleID struct {
	index int
	gen   int
}

// IsZero reports whether id is the zero HandleID (never a valid handle,
// since generation 0 is never issued to a live slot).
func (id HandleID) IsZero() bool { return id.gen == 0 }

// Handle is one open or transitively-imported file, per spec.md §3.
type Handle struct {
	URI      string
	SourceID location.SourceID
	Text     string
	Tree     *lang.Tree

	// Open reports whether the editor holds this file open. A handle with
	// Open=false exists only because another open handle imports it.
	Open bool

	// ImportURIs is the ordered sequence of URIs this file imports, in
	// lexical order, so diagnostics are stable (spec.md §3).
	ImportURIs []string

	// RefCount is the number of other open or reachable handles that
	// import this one.
	RefCount int

	// BuildFileURI is the URI of the BuildFile whose include paths apply
	// to this handle, if any (spec.md §3's associated_build_file).
	BuildFileURI string
}

// importSet returns h.ImportURIs as a set, for diffing old vs. new import
// lists in Store.ApplyChanges.
func (h *Handle) importSet() map[string]struct{} {
	set := make(map[string]struct{}, len(h.ImportURIs))
	for _, u := range h.ImportURIs {
		set[u] = struct{}{}
	}
	return set
}
