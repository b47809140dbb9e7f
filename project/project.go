// Package project implements C12, the Update Coordinator, plus the public
// ingress/egress surface (spec.md §6): Initialize walks a project root and
// builds the full registry/graph state from scratch; UpdateFile applies one
// file's change and reprocesses that file plus the files that depend on it.
package project

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"golang.org/x/sync/errgroup"

	"github.com/CRJFisher/ariadne-sub018/callgraph"
	"github.com/CRJFisher/ariadne-sub018/config"
	"github.com/CRJFisher/ariadne-sub018/diagnostic"
	"github.com/CRJFisher/ariadne-sub018/importgraph"
	"github.com/CRJFisher/ariadne-sub018/indexer"
	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
	"github.com/CRJFisher/ariadne-sub018/resolve"
	"github.com/CRJFisher/ariadne-sub018/typesys"
)

// MaxWorkers bounds the parallel per-file indexing pool (spec.md §5,
// "embarrassingly parallel" C1-C5 stage).
const MaxWorkers = 8

// Project owns the single mutable Set of registries for one indexed
// project, plus the import graph, type registry and call graph derived from
// it. It is the only writer to any of that state (spec.md §5's
// single-writer concurrency model); callers may read concurrently through
// the Get*/Find* methods in query.go while no Initialize/UpdateFile call is
// in flight.
type Project struct {
	mu sync.Mutex

	cfg config.Config
	fs  afs.Service

	regs  *registry.Set
	graph *importgraph.Graph
	types *typesys.Registry
	calls *model.CallGraph

	files       map[string]bool
	langOf      map[string]model.Language
	resolved    map[string]*resolve.Result
	callResults map[string][]model.Resolution

	// lastHash holds each file's highwayhash ContentHash as of its last
	// successful index, so UpdateFile can short-circuit a revision whose
	// bytes are byte-identical to what's already indexed (spec.md §7.3).
	lastHash map[string]uint64
}

// New constructs an empty Project against cfg. Call Initialize before
// issuing any query.
func New(cfg config.Config) *Project {
	return &Project{
		cfg:         cfg,
		fs:          afs.New(),
		regs:        registry.NewSet(),
		graph:       importgraph.New(),
		types:       typesys.New(),
		calls:       model.NewCallGraph(),
		files:       map[string]bool{},
		langOf:      map[string]model.Language{},
		resolved:    map[string]*resolve.Result{},
		callResults: map[string][]model.Resolution{},
		lastHash:    map[string]uint64{},
	}
}

// UpdateResult reports what one UpdateFile call did, per spec.md §6 Egress.
type UpdateResult struct {
	Diagnostics           []diagnostic.Diagnostic
	DependentsReprocessed []string
}

// Initialize walks cfg.ProjectRoot, indexes every recognized source file in
// parallel, then serially assembles the registries, import graph, type
// registry and call graph (spec.md §4.C12, §5).
func (p *Project) Initialize(ctx context.Context) ([]diagnostic.Diagnostic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	paths, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	type indexed struct {
		path string
		idx  *model.SemanticIndex
		lang model.Language
		diag []diagnostic.Diagnostic
	}
	results := make([]indexed, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxWorkers)
	for i, fp := range paths {
		i, fp := i, fp
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			language, err := lang.Detect(fp)
			if err != nil {
				return nil
			}
			provider, ok := lang.For(language)
			if !ok {
				return nil
			}
			source, err := p.fs.DownloadWithURL(gctx, fp)
			if err != nil {
				results[i] = indexed{path: fp, diag: []diagnostic.Diagnostic{
					diagnostic.New(diagnostic.ParseError, fp, err.Error()),
				}}
				return nil
			}
			idx, diags := indexer.Index(fp, source, language, provider)
			results[i] = indexed{path: fp, idx: idx, lang: language, diag: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var diags []diagnostic.Diagnostic
	for _, r := range results {
		diags = append(diags, r.diag...)
		if r.idx == nil {
			continue
		}
		p.files[r.path] = true
		p.langOf[r.path] = r.lang
		p.lastHash[r.path] = r.idx.ContentHash
		p.regs.ReplaceFile(r.idx)
	}

	allFiles := make([]string, 0, len(p.files))
	for f := range p.files {
		allFiles = append(allFiles, f)
	}
	for _, f := range allFiles {
		imports := p.regs.Imports.ByFile(f)
		p.graph.ReplaceFile(f, p.resolveImportTargets(f, imports))
	}

	p.types.RebuildMembers(p.regs)
	for _, f := range allFiles {
		result, rdiags := resolve.New(p.regs, p.resolveImportPath).ResolveFile(f)
		diags = append(diags, rdiags...)
		p.resolved[f] = result
	}
	diags = append(diags, p.types.Propagate(p.regs, allFiles, p.resolved)...)
	for _, f := range allFiles {
		res := callgraph.NewResolver(p.regs, p.types).ResolveFile(f, p.resolved[f])
		for key, rs := range res {
			p.callResults[key] = rs
		}
	}
	p.calls = callgraph.Build(p.regs, p.callResults)

	return diags, nil
}

// discover walks cfg.ProjectRoot collecting file URLs for every supported,
// non-excluded source file. Grounded on the teacher's AnalyzeDir/
// analyzePackages walk (analyzer/package.go): a storage.OnVisit closure
// fed to afs.Service.Walk, with url.Join reassembling the file's URL from
// the (baseURL, parent, name) triple the visitor receives.
func (p *Project) discover(ctx context.Context) ([]string, error) {
	var paths []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		dirURL := url.Join(baseURL, parent)
		fileURL := url.Join(dirURL, info.Name())
		if p.cfg.IsExcluded(fileURL) {
			return true, nil
		}
		if _, err := lang.Detect(fileURL); err != nil {
			return true, nil
		}
		paths = append(paths, fileURL)
		return true, nil
	}
	if err := p.fs.Walk(ctx, p.cfg.ProjectRoot, visitor); err != nil {
		return nil, err
	}
	return paths, nil
}

// UpdateFile applies one file's change (a new content, or removal when
// source is nil) and reprocesses its dependents, per spec.md §4.C12's
// five-step algorithm. If ctx is already cancelled, UpdateFile returns
// without mutating any state; it does not, however, roll back a change
// that was already underway when ctx was cancelled mid-call — state is only
// guaranteed consistent at the call boundary, a scope decision recorded in
// DESIGN.md given the cost of snapshotting the full registry Set per call.
func (p *Project) UpdateFile(ctx context.Context, filePath string, source []byte) (*UpdateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Short-circuit: a revision whose bytes are byte-identical to the last
	// one indexed for this file can't change any resolution, so skip
	// re-indexing/re-resolution entirely (spec.md §7.3).
	if source != nil && p.files[filePath] {
		if hash, err := indexer.ContentHash(source); err == nil {
			if prev, ok := p.lastHash[filePath]; ok && prev == hash {
				return &UpdateResult{}, nil
			}
		}
	}

	// Step 1: affected set, computed against the OLD import graph before any
	// mutation (spec.md §4.C12 step 1).
	affected := p.graph.DependentsClosure(filePath)

	// Step 2: drop filePath's old contributions everywhere.
	p.regs.RemoveFile(filePath)
	delete(p.resolved, filePath)
	p.removeCallResultsForFile(filePath)

	var diags []diagnostic.Diagnostic
	if source == nil {
		p.graph.RemoveFile(filePath)
		delete(p.files, filePath)
		delete(p.langOf, filePath)
		delete(p.lastHash, filePath)
	} else {
		language, err := lang.Detect(filePath)
		if err != nil {
			return nil, err
		}
		provider, ok := lang.For(language)
		if !ok {
			return nil, &lang.ErrUnsupportedLanguage{Extension: filePath}
		}
		idx, idxDiags := indexer.Index(filePath, source, language, provider)
		diags = append(diags, idxDiags...)
		p.regs.ReplaceFile(idx)
		p.graph.ReplaceFile(filePath, p.resolveImportTargets(filePath, idx.Imports))
		p.files[filePath] = true
		p.langOf[filePath] = language
		p.lastHash[filePath] = idx.ContentHash
	}

	p.types.RebuildMembers(p.regs)

	// Step 4: rerun C8, C9, C10 for every still-present file in S, in the
	// topological order DependentsClosure already guarantees.
	var reprocessed []string
	resolver := resolve.New(p.regs, p.resolveImportPath)
	callResolver := callgraph.NewResolver(p.regs, p.types)
	for _, f := range affected {
		if !p.files[f] {
			continue
		}
		if f != filePath {
			reprocessed = append(reprocessed, f)
		}
		result, rdiags := resolver.ResolveFile(f)
		diags = append(diags, rdiags...)
		p.resolved[f] = result

		diags = append(diags, p.types.Propagate(p.regs, []string{f}, map[string]*resolve.Result{f: result})...)

		p.removeCallResultsForFile(f)
		for key, rs := range callResolver.ResolveFile(f, result) {
			p.callResults[key] = rs
		}
	}

	// Step 5: rebuild the call graph from the updated resolutions. A full
	// rebuild rather than an incremental patch of the affected nodes; see
	// DESIGN.md for why this is an acceptable simplification at this scale.
	p.calls = callgraph.Build(p.regs, p.callResults)

	return &UpdateResult{Diagnostics: diags, DependentsReprocessed: reprocessed}, nil
}

func (p *Project) removeCallResultsForFile(file string) {
	prefix := file + ":"
	for key := range p.callResults {
		if hasPrefix(key, prefix) {
			delete(p.callResults, key)
		}
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
