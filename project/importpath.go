package project

import (
	"path"
	"strings"

	"github.com/CRJFisher/ariadne-sub018/importgraph"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/symbolref"
)

// sourceExtensions lists the extensions tried, in this order, when an import
// specifier omits one (lang.Detect also recognizes .mjs and .cjs, which are
// not tried here).
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py", ".rs"}

// indexFileStems are the per-language "directory import" conventions: a bare
// "./lib" import path may name a directory whose entry file carries one of
// these stems (TS/JS's index.*, Rust's mod.rs, Python's __init__.py).
var indexFileStems = []string{"index", "mod", "__init__"}

// resolveImportPath is the project's resolve.ImportPathResolver: it turns a
// relative import specifier into the concrete file it names, consulting the
// project's known file set. Non-relative specifiers ("lodash",
// "std::collections") name external packages or, for Rust, crate-internal
// module paths this indexer does not model; both report ok=false per
// spec.md §4.C7's "unresolved external import" case.
func (p *Project) resolveImportPath(fromFile, importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, ".") {
		return "", false
	}
	joined := path.Clean(path.Join(path.Dir(fromFile), importPath))

	candidates := []string{joined}
	for _, ext := range sourceExtensions {
		candidates = append(candidates, joined+ext)
	}
	for _, stem := range indexFileStems {
		for _, ext := range sourceExtensions {
			candidates = append(candidates, path.Join(joined, stem+ext))
		}
	}
	for _, c := range candidates {
		if p.files[c] {
			return c, true
		}
	}

	// Fall back to suffix matching (spec.md §8's path-suffix-matching
	// scenario): the project may know this file under a differently
	// rooted path than the one the import specifier resolves to textually.
	for f := range p.files {
		for _, c := range candidates {
			if symbolref.PathsMatch(f, c) {
				return f, true
			}
		}
	}
	return "", false
}

// resolveImportTargets turns one file's raw ImportRecords into the set of
// concrete project files importgraph.Graph.ReplaceFile needs; unresolved
// (external) import paths are simply dropped, matching importgraph's own
// "" skip rule.
func (p *Project) resolveImportTargets(file string, imports []model.ImportRecord) []string {
	var targets []string
	seen := map[string]bool{}
	for _, importPath := range importgraph.ImportPathsOf(imports) {
		target, ok := p.resolveImportPath(file, importPath)
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}
