// Package importgraph implements C7: the file-level dependency graph used
// to compute which files must be reprocessed when one file changes.
package importgraph

import (
	"sort"
	"sync"

	"github.com/CRJFisher/ariadne-sub018/model"
)

// Graph maps a file to the set of files that import it (the reverse of the
// import-path edges); dependents_closure walks this reverse map.
type Graph struct {
	mu sync.RWMutex

	// importedBy[file] = set of files that import file.
	importedBy map[string]map[string]bool
	// imports[file] = set of files file imports (forward edges), kept to
	// diff cleanly on update.
	imports map[string]map[string]bool
}

func New() *Graph {
	return &Graph{
		importedBy: map[string]map[string]bool{},
		imports:    map[string]map[string]bool{},
	}
}

// ReplaceFile updates the graph's edges for file given its freshly-resolved
// import targets (absolute-ish paths already reconciled by the caller; the
// coordinator is responsible for resolving ImportRecord.ImportPath to a
// concrete project file before calling this).
func (g *Graph) ReplaceFile(file string, importTargets []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFileLocked(file)

	targets := map[string]bool{}
	for _, t := range importTargets {
		if t == "" || t == file {
			continue
		}
		targets[t] = true
		if g.importedBy[t] == nil {
			g.importedBy[t] = map[string]bool{}
		}
		g.importedBy[t][file] = true
	}
	g.imports[file] = targets
}

// RemoveFile drops file as both an importer and an import target.
func (g *Graph) RemoveFile(file string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFileLocked(file)
}

func (g *Graph) removeFileLocked(file string) {
	for target := range g.imports[file] {
		delete(g.importedBy[target], file)
	}
	delete(g.imports, file)
	delete(g.importedBy, file)
}

// DependentsClosure returns file followed by its transitive importers, in
// topological order (importers after what they import), changed file
// first. Cycles are broken by visiting in lexicographic order and visiting
// each file exactly once.
func (g *Graph) DependentsClosure(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{file: true}
	order := []string{file}
	frontier := []string{file}

	for len(frontier) > 0 {
		next := map[string]bool{}
		for _, f := range frontier {
			for importer := range g.importedBy[f] {
				if !visited[importer] {
					next[importer] = true
				}
			}
		}
		var sorted []string
		for f := range next {
			sorted = append(sorted, f)
		}
		sort.Strings(sorted)
		for _, f := range sorted {
			visited[f] = true
			order = append(order, f)
		}
		frontier = sorted
	}
	return order
}

// Cycles reports every file that is both a (transitive) dependent of, and a
// dependency of, itself — used only for diagnostics; DependentsClosure
// already tolerates cycles by visiting each file once.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var files []string
	for f := range g.imports {
		files = append(files, f)
	}
	sort.Strings(files)

	var cycles [][]string
	seen := map[string]bool{}
	for _, start := range files {
		if seen[start] {
			continue
		}
		path := []string{}
		onPath := map[string]bool{}
		var walk func(f string) []string
		walk = func(f string) []string {
			if onPath[f] {
				// found the cycle; slice path from f's first occurrence.
				for i, p := range path {
					if p == f {
						return append(append([]string{}, path[i:]...), f)
					}
				}
				return nil
			}
			if seen[f] {
				return nil
			}
			onPath[f] = true
			path = append(path, f)
			targets := sortedKeys(g.imports[f])
			for _, t := range targets {
				if cyc := walk(t); cyc != nil {
					return cyc
				}
			}
			onPath[f] = false
			path = path[:len(path)-1]
			seen[f] = true
			return nil
		}
		if cyc := walk(start); cyc != nil {
			cycles = append(cycles, cyc)
		}
	}
	return cycles
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ImportPathsOf extracts the raw import-path strings from a file's
// ImportRecords; the coordinator resolves these to project file paths
// before calling ReplaceFile.
func ImportPathsOf(imports []model.ImportRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, imp := range imports {
		if imp.ImportPath == "" || seen[imp.ImportPath] {
			continue
		}
		seen[imp.ImportPath] = true
		out = append(out, imp.ImportPath)
	}
	return out
}
