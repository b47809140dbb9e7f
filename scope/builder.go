// Package scope implements C2, the Scope Builder: it turns a flat set of
// scope-creating captures into the nested model.LexicalScope tree a file's
// definitions and references resolve against.
package scope

import (
	"fmt"
	"sort"

	"github.com/CRJFisher/ariadne-sub018/diagnostic"
	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

// MaxDepth bounds the scope stack; a file nesting scopes deeper than this
// is treated as pathological input and reported as a diagnostic rather than
// risking unbounded recursion on adversarial/generated sources.
const MaxDepth = 64

// Result is the per-file scope tree C3/C4 attach definitions/references to.
type Result struct {
	RootScopeId string
	Scopes      map[string]*model.LexicalScope
}

type node struct {
	loc      model.Location
	nodeKind string
}

// Build constructs the scope tree for one file from its scope-query
// captures. fileRange is the whole-file span used for the synthetic module
// scope that roots the tree.
func Build(filePath string, fileRange model.Location, captures []query.Capture, provider lang.Provider) (*Result, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	nodes := dedupeScopeNodes(filePath, captures, provider)
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i].loc, nodes[j].loc
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		// same start: outer (larger) range first
		if a.EndLine != b.EndLine {
			return a.EndLine > b.EndLine
		}
		return a.EndColumn > b.EndColumn
	})

	scopes := map[string]*model.LexicalScope{}
	root := &model.LexicalScope{
		ScopeId: scopeId(filePath, fileRange),
		Kind:    model.ScopeModule,
		Range:   fileRange,
		Hoisted: true,
	}
	scopes[root.ScopeId] = root

	stack := []*model.LexicalScope{root}
	for _, n := range nodes {
		kind, ok := provider.ScopeKind(n.nodeKind)
		if !ok {
			continue
		}
		for len(stack) > 1 && !stack[len(stack)-1].Range.Contains(n.loc) {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		if len(stack) >= MaxDepth {
			diags = append(diags, diagnostic.New(diagnostic.ParseError, filePath,
				fmt.Sprintf("scope nesting exceeds depth %d at %s; skipping nested scope", MaxDepth, n.loc.Key())))
			continue
		}
		sc := &model.LexicalScope{
			ScopeId:       scopeId(filePath, n.loc),
			Kind:          kind,
			Range:         n.loc,
			ParentScopeId: parent.ScopeId,
			Hoisted:       kind == model.ScopeFunction || kind == model.ScopeModule,
			Sealed:        provider.Seals(n.nodeKind),
		}
		if _, exists := scopes[sc.ScopeId]; exists {
			// two distinct captures landed on the same node range; keep the
			// first and drop the duplicate rather than double-link it.
			continue
		}
		scopes[sc.ScopeId] = sc
		parent.ChildScopeIds = append(parent.ChildScopeIds, sc.ScopeId)
		stack = append(stack, sc)
	}

	return &Result{RootScopeId: root.ScopeId, Scopes: scopes}, diags
}

func dedupeScopeNodes(filePath string, captures []query.Capture, provider lang.Provider) []node {
	seen := map[string]bool{}
	var out []node
	for _, c := range captures {
		if c.Category() != "local" {
			continue
		}
		if !isScopeCapture(c.Name) {
			continue
		}
		if _, ok := provider.ScopeKind(c.NodeKind); !ok {
			continue
		}
		loc := c.Location(filePath)
		key := loc.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, node{loc: loc, nodeKind: c.NodeKind})
	}
	return out
}

func isScopeCapture(name string) bool {
	// "local.scope.function" -> second segment is "scope"
	depth := 0
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			if depth == 1 {
				return name[start:i] == "scope"
			}
			depth++
			start = i + 1
		}
	}
	return false
}

func scopeId(filePath string, loc model.Location) string {
	return fmt.Sprintf("scope:%s:%d:%d-%d:%d", filePath, loc.StartLine, loc.StartCol, loc.EndLine, loc.EndColumn)
}

// ScopeOf returns the id of the smallest scope whose range contains loc.
func (r *Result) ScopeOf(loc model.Location) string {
	best := ""
	bestSize := -1
	for id, sc := range r.Scopes {
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

// ByRange returns the id of the scope whose range is exactly loc, if any.
// Used to find the scope a definition's own declaration node created (the
// scope capture and the definition capture's parent node share a range).
func (r *Result) ByRange(loc model.Location) (string, bool) {
	key := loc.Key()
	for id, sc := range r.Scopes {
		if sc.Range.Key() == key {
			return id, true
		}
	}
	return "", false
}
