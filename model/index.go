package model

// TypeSeeds holds the two parse-time type sources C9 ranks above assignment
// propagation (spec precedence tiers 1 and 2): explicit annotations, and
// the constructed type of a `var = new Foo()`-shaped initializer.
type TypeSeeds struct {
	Explicit    map[SymbolId]TypeRef
	Constructor map[SymbolId]TypeRef
}

// SemanticIndex is the pure-function output of the per-file pipeline (C5):
// everything C1-C4 discovered about one file, prior to any cross-file
// assembly.
type SemanticIndex struct {
	FilePath    string
	Language    Language
	RootScopeId string

	Scopes      map[string]*LexicalScope
	Definitions []*Definition
	References  []*Reference
	Exports     []ExportRecord
	Imports     []ImportRecord

	// TypeSeeds holds type information recoverable at parse time, keyed by
	// the owning Definition's SymbolId. C9 seeds its symbol_type map from
	// these before running its assignment-propagation fixed point.
	TypeSeeds TypeSeeds

	// ContentHash is a highwayhash digest of the source this index was
	// built from; used by the coordinator to short-circuit
	// reprocessing identical revisions (SPEC_FULL.md §7.3).
	ContentHash uint64
}

// ScopeOf returns the smallest scope containing loc, or "" if none match.
func (si *SemanticIndex) ScopeOf(loc Location) string {
	best := ""
	bestSize := -1
	for id, sc := range si.Scopes {
		if !sc.Range.Contains(loc) {
			continue
		}
		size := (sc.Range.EndLine-sc.Range.StartLine)*100000 + (sc.Range.EndColumn - sc.Range.StartCol)
		if bestSize == -1 || size < bestSize {
			best = id
			bestSize = size
		}
	}
	return best
}
