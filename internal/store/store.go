package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/uri"
	"github.com/zenlang/zls/location"
)

// SourceLoader reads the raw bytes of a file named by URI, for on-demand
// loading of imports that are not already open in the editor.
type SourceLoader func(fileURI string) ([]byte, error)

// BuildFileName is the fixed filename that marks a handle as a build
// script, analogous to the real toolchain's build.zig.
const BuildFileName = "build.zen"

type slot struct {
	handle *Handle
	gen    int
	inUse  bool
}

// Store is the L5 document store of spec.md §4.5: every open or
// transitively-imported file, keyed by URI, with a refcounted import
// graph. Store is safe for concurrent use; spec.md §5 calls for strictly
// serial dispatch, but the mutex keeps Store safe to also read from
// diagnostics-publishing goroutines without further coordination.
type Store struct {
	mu sync.Mutex

	slots []slot
	byURI map[string]int // uri -> slot index

	buildFiles map[string]*BuildFile // build file URI -> BuildFile

	sources       *source.Registry
	loader        SourceLoader
	describeBuild DescribeBuildFunc
	stdLibRoot    string
}

// New creates an empty Store. reg is the shared content registry that
// backs position conversion; loader reads files from disk for imports not
// already open; describeBuild runs the toolchain's build-description
// command (may be nil, in which case build files never populate
// Packages); stdLibRoot is the configured standard library root used by
// import resolution's fallback (b) per spec.md §4.5.
func New(reg *source.Registry, loader SourceLoader, describeBuild DescribeBuildFunc, stdLibRoot string) *Store {
	return &Store{
		byURI:         make(map[string]int),
		buildFiles:    make(map[string]*BuildFile),
		sources:       reg,
		loader:        loader,
		describeBuild: describeBuild,
		stdLibRoot:    stdLibRoot,
	}
}

func (s *Store) sourceIDFor(fileURI string) location.SourceID {
	if path, err := uri.ToPath(fileURI); err == nil {
		if sid, err := location.SourceIDFromAbsolutePath(path); err == nil {
			return sid
		}
	}
	return location.MustNewSourceID("synthetic://" + fileURI)
}

func (s *Store) alloc(h *Handle) HandleID {
	for i := range s.slots {
		if !s.slots[i].inUse {
			s.slots[i] = slot{handle: h, gen: s.slots[i].gen + 1, inUse: true}
			return HandleID{index: i, gen: s.slots[i].gen}
		}
	}
	s.slots = append(s.slots, slot{handle: h, gen: 1, inUse: true})
	return HandleID{index: len(s.slots) - 1, gen: 1}
}

func (s *Store) free(index int) {
	s.slots[index].handle = nil
	s.slots[index].inUse = false
}

// GetHandle looks up a handle by URI without affecting ref counts.
func (s *Store) GetHandle(fileURI string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(fileURI)
}

func (s *Store) getLocked(fileURI string) (*Handle, bool) {
	idx, ok := s.byURI[fileURI]
	if !ok || !s.slots[idx].inUse {
		return nil, false
	}
	return s.slots[idx].handle, true
}

// AllHandles returns every handle currently in the store, for whole-graph
// walks (spec.md §4.7's symbol_references).
func (s *Store) AllHandles() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Handle, 0, len(s.byURI))
	for _, idx := range s.byURI {
		if s.slots[idx].inUse {
			out = append(out, s.slots[idx].handle)
		}
	}
	return out
}

// OpenDocument implements spec.md §4.5's open_document: idempotent if
// already present (replacing text if different), else a new handle.
func (s *Store) OpenDocument(fileURI, text string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.getLocked(fileURI); ok {
		h.Open = true
		if h.Text != text {
			s.reparseLocked(h, text)
		}
		return h
	}

	h := &Handle{
		URI:      fileURI,
		SourceID: s.sourceIDFor(fileURI),
		Open:     true,
	}
	s.byURI[fileURI] = s.alloc(h).index
	s.adoptBuildFileLocked(h)
	s.reparseLocked(h, text)
	return h
}

// CloseDocument implements spec.md §4.5's close_document: clears the open
// flag, pruning the handle if nothing else keeps it reachable.
func (s *Store) CloseDocument(fileURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.getLocked(fileURI)
	if !ok {
		return
	}
	h.Open = false
	s.pruneCascadeLocked(fileURI)
}

// ApplyChanges implements spec.md §4.5's apply_changes: replaces the
// handle's text, re-parses, and diffs the old/new import sets to adjust
// downstream ref counts.
func (s *Store) ApplyChanges(fileURI, newText string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.getLocked(fileURI)
	if !ok {
		return nil
	}
	s.reparseLocked(h, newText)
	return h
}

// ApplySave implements spec.md §4.5's apply_save: re-runs build discovery
// if the handle is a build file; a no-op otherwise.
func (s *Store) ApplySave(fileURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.getLocked(fileURI)
	if !ok {
		return nil
	}
	if !isBuildFileURI(fileURI) {
		return nil
	}
	return s.refreshBuildFileLocked(fileURI)
}

// reparseLocked replaces h's text, re-parses its tree, registers the new
// content in the shared source registry, and reconciles the import graph
// against the previous import set.
func (s *Store) reparseLocked(h *Handle, text string) {
	oldImports := h.importSet()

	h.Text = text
	h.Tree = lang.Parse([]byte(text))
	s.sources.Replace(h.SourceID, []byte(text))

	var newImportURIs []string
	for _, node := range h.Tree.RootDecls() {
		collectImports(h.Tree, node, &newImportURIs, h, s)
	}

	h.ImportURIs = nil
	newSet := make(map[string]struct{}, len(newImportURIs))
	for _, u := range newImportURIs {
		if _, dup := newSet[u]; dup {
			continue
		}
		newSet[u] = struct{}{}
		h.ImportURIs = append(h.ImportURIs, u)
		if _, existed := oldImports[u]; !existed {
			s.ensureLoadedLocked(u)
			s.incRefLocked(u)
		}
	}

	for u := range oldImports {
		if _, stillThere := newSet[u]; stillThere {
			continue
		}
		s.decRefAndPruneLocked(u)
	}
}

// collectImports walks node (and its container/function-body descendants)
// looking for @import(...) call expressions, resolving each against h's
// owning directory and appending to *out in lexical order.
func collectImports(tree *lang.Tree, node int, out *[]string, h *Handle, s *Store) {
	if node <= 0 || node >= len(tree.Nodes) {
		return
	}
	n := tree.Nodes[node]
	switch n.Tag {
	case lang.NodeImportCall:
		if _, path, ok := tree.ImportExpr(node); ok {
			if target, ok := s.resolveImportLocked(h, path); ok {
				*out = append(*out, target)
			}
		}
	case lang.NodeVarDecl:
		v, _ := tree.VarDecl(node)
		collectImports(tree, v.TypeNode, out, h, s)
		collectImports(tree, v.InitNode, out, h, s)
	case lang.NodeContainerDecl:
		cd, _ := tree.ContainerDecl(node)
		for _, m := range cd.Members {
			collectImports(tree, m, out, h, s)
		}
	case lang.NodeContainerField:
		f, _ := tree.ContainerField(node)
		collectImports(tree, f.TypeNode, out, h, s)
		collectImports(tree, f.DefaultValue, out, h, s)
	case lang.NodeFnDecl:
		collectImports(tree, n.Data.LHS, out, h, s) // proto
		collectImports(tree, n.Data.RHS, out, h, s) // body
	case lang.NodeFnProto:
		fp, _ := tree.FnProto(node)
		for _, p := range fp.Params {
			collectImports(tree, tree.ParamType(p), out, h, s)
		}
		collectImports(tree, fp.ReturnType, out, h, s)
	case lang.NodeBlock:
		start, end := n.Data.LHS, n.Data.RHS
		for _, stmt := range tree.ExtraDataSlice(start, end) {
			collectImports(tree, stmt, out, h, s)
		}
	case lang.NodeCall:
		c, _ := tree.Call(node)
		collectImports(tree, c.Callee, out, h, s)
		for _, a := range c.Args {
			collectImports(tree, a, out, h, s)
		}
	case lang.NodeFieldAccess:
		base, _, _ := tree.FieldAccess(node)
		collectImports(tree, base, out, h, s)
	case lang.NodeReturnStmt:
		collectImports(tree, n.Data.LHS, out, h, s)
	case lang.NodePtrType, lang.NodeOptionalType:
		collectImports(tree, n.Data.LHS, out, h, s)
	case lang.NodeErrorUnionType:
		collectImports(tree, n.Data.LHS, out, h, s)
		collectImports(tree, n.Data.RHS, out, h, s)
	case lang.NodeTryExpr:
		collectImports(tree, n.Data.LHS, out, h, s)
	case lang.NodeCatchExpr, lang.NodeOrelseExpr:
		collectImports(tree, n.Data.LHS, out, h, s)
		collectImports(tree, n.Data.RHS, out, h, s)
	case lang.NodeLabeledBlock:
		collectImports(tree, n.Data.LHS, out, h, s)
	}
}

// resolveImportLocked implements spec.md §4.5's uri_from_import: the
// owner's build file package table, then the standard library root, then
// a relative path from the owner's directory.
func (s *Store) resolveImportLocked(owner *Handle, importPath string) (string, bool) {
	if owner.BuildFileURI != "" {
		if bf, ok := s.buildFiles[owner.BuildFileURI]; ok {
			if target, ok := bf.Packages[importPath]; ok {
				return target, true
			}
		}
	}

	if s.stdLibRoot != "" && (importPath == "std" || strings.HasPrefix(importPath, "std/")) {
		rel := strings.TrimPrefix(importPath, "std")
		rel = strings.TrimPrefix(rel, "/")
		candidate := filepath.Join(s.stdLibRoot, rel)
		if rel == "" {
			candidate = filepath.Join(s.stdLibRoot, "std.zen")
		}
		return uri.FromPath(candidate), true
	}

	if !strings.HasSuffix(importPath, ".zen") {
		return "", false
	}
	ownerPath, err := uri.ToPath(owner.URI)
	if err != nil {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(ownerPath), filepath.FromSlash(importPath))
	return uri.FromPath(candidate), true
}

// UriFromImport is the public form of resolveImportLocked (spec.md §4.5):
// resolves importPath against owner, ensuring the target is loaded into
// the store. It changes no handle's RefCount; import ref counts move only
// when a re-parse updates an owner's import list. It does not adjust
// owner.ImportURIs either
// (callers doing ad hoc lookups, e.g. completion, do not want to mutate
// the owner's recorded import list — only re-parsing does that).
func (s *Store) UriFromImport(owner *Handle, importPath string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.resolveImportLocked(owner, importPath)
	if !ok {
		return "", false
	}
	s.ensureLoadedLocked(target)
	return target, true
}

// ensureLoadedLocked loads target into the store (Open=false) if it is
// not already present, reading its content via s.loader. A load failure
// leaves the URI unresolved in the store (spec.md §8 "Import of a missing
// file": no handle is created, no exception surfaces).
func (s *Store) ensureLoadedLocked(target string) {
	if _, ok := s.getLocked(target); ok {
		return
	}
	if s.loader == nil {
		return
	}
	data, err := s.loader(target)
	if err != nil {
		return
	}
	h := &Handle{URI: target, SourceID: s.sourceIDFor(target)}
	s.byURI[target] = s.alloc(h).index
	s.adoptBuildFileLocked(h)
	s.reparseLocked(h, string(data))
}

func (s *Store) incRefLocked(targetURI string) {
	if h, ok := s.getLocked(targetURI); ok {
		h.RefCount++
	}
}

// decRefAndPruneLocked decrements targetURI's ref count and cascades
// pruning through the import graph per spec.md §4.5's invariants.
func (s *Store) decRefAndPruneLocked(targetURI string) {
	h, ok := s.getLocked(targetURI)
	if !ok {
		return
	}
	if h.RefCount > 0 {
		h.RefCount--
	}
	s.pruneCascadeLocked(targetURI)
}

// pruneCascadeLocked destroys the handle at fileURI if it is eligible
// (Open=false and RefCount==0), then recursively decrements and prunes
// everything it imported. Cycles among already-pruned handles are safe:
// getLocked simply returns ok=false for a URI with no live slot.
func (s *Store) pruneCascadeLocked(fileURI string) {
	h, ok := s.getLocked(fileURI)
	if !ok || h.Open || h.RefCount > 0 {
		return
	}

	idx := s.byURI[fileURI]
	delete(s.byURI, fileURI)
	s.free(idx)

	for _, imported := range h.ImportURIs {
		s.decRefAndPruneLocked(imported)
	}
}

// isBuildFileURI reports whether uri's filename matches BuildFileName.
func isBuildFileURI(fileURI string) bool {
	path, err := uri.ToPath(fileURI)
	if err != nil {
		return false
	}
	return filepath.Base(path) == BuildFileName
}

// adoptBuildFileLocked associates h with the longest-prefix-matching known
// build file, and if h is itself a build file, registers/refreshes it.
func (s *Store) adoptBuildFileLocked(h *Handle) {
	if isBuildFileURI(h.URI) {
		if _, ok := s.buildFiles[h.URI]; !ok {
			s.buildFiles[h.URI] = &BuildFile{URI: h.URI, Packages: map[string]string{}}
		}
		_ = s.refreshBuildFileLocked(h.URI)
	}

	path, err := uri.ToPath(h.URI)
	if err != nil {
		return
	}
	dirs := make(map[string]string, len(s.buildFiles))
	for bfURI := range s.buildFiles {
		if bfPath, err := uri.ToPath(bfURI); err == nil {
			dirs[filepath.Dir(bfPath)] = bfURI
		}
	}
	if bfURI, ok := longestBuildFilePrefixMatch(filepath.Dir(path), dirs); ok {
		h.BuildFileURI = bfURI
	}
}

// refreshBuildFileLocked re-runs describeBuild for the build file at
// buildFileURI and repopulates its Packages table.
func (s *Store) refreshBuildFileLocked(buildFileURI string) error {
	if s.describeBuild == nil {
		return nil
	}
	path, err := uri.ToPath(buildFileURI)
	if err != nil {
		return fmt.Errorf("build file uri: %w", err)
	}
	packages, err := s.describeBuild(path)
	if err != nil {
		return err
	}
	bf, ok := s.buildFiles[buildFileURI]
	if !ok {
		bf = &BuildFile{URI: buildFileURI}
		s.buildFiles[buildFileURI] = bf
	}
	bf.Packages = packages
	return nil
}

// Sources returns the shared content registry backing position
// conversion, for callers (internal/analysis, internal/refs, lsp) that
// need it alongside a Handle.
func (s *Store) Sources() *source.Registry { return s.sources }

// StdLibRoot returns the configured standard library root directory, used
// by internal/refs to implement spec.md §4.7's skip_std_references option.
func (s *Store) StdLibRoot() string { return s.stdLibRoot }

// BuildFileDirs returns the directories of every known build file, longest
// first, for diagnostics logging of which build file owns which subtree.
func (s *Store) BuildFileDirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	dirs := make(map[string]string, len(s.buildFiles))
	for bfURI := range s.buildFiles {
		if path, err := uri.ToPath(bfURI); err == nil {
			dirs[filepath.Dir(path)] = bfURI
		}
	}
	return sortedBuildFileDirs(dirs)
}
