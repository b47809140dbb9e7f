package callgraph

import (
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
)

// MaxScopeWalk bounds the scope-ancestry walks below, matching the
// resolver's own scope-depth bound (spec.md §5).
const MaxScopeWalk = 64

// Build assembles the project-wide CallGraph (C11) from every registered
// callable Definition and the merged C10 resolutions (keyed by
// Reference.Location.Key(), across every file).
func Build(regs *registry.Set, resolutions map[string][]model.Resolution) *model.CallGraph {
	g := model.NewCallGraph()

	scopeCache := map[string]map[string]*model.LexicalScope{}
	scopesFor := func(file string) map[string]*model.LexicalScope {
		if s, ok := scopeCache[file]; ok {
			return s
		}
		s, _, _ := regs.Scopes.Tree(file)
		scopeCache[file] = s
		return s
	}

	refsByFile := map[string][]*model.Reference{}
	for _, d := range regs.Definitions.All() {
		if _, ok := refsByFile[d.Location.FilePath]; !ok {
			refsByFile[d.Location.FilePath] = regs.References.ByFile(d.Location.FilePath)
		}
	}

	// own-scope -> callable SymbolId, for nearestCallable: indirect
	// reachability's "surrounding callable" attribution and the detection of
	// module-level calls.
	byOwnScope := map[string]model.SymbolId{}

	for _, d := range regs.Definitions.All() {
		if !d.OwnsCallableScope() {
			continue
		}
		node := &model.CallableNode{
			SymbolId: d.SymbolId,
			Name:     d.Name,
			Location: d.Location,
			IsTest:   d.IsTest,
		}
		node.Definition = d
		g.Nodes[d.SymbolId] = node
		byOwnScope[d.CallableScopeId()] = d.SymbolId
	}

	for _, node := range g.Nodes {
		scopes := scopesFor(node.Location.FilePath)
		for _, ref := range refsByFile[node.Location.FilePath] {
			if ref.Type != model.RefCall {
				continue
			}
			if scopeIsWithin(scopes, ref.ScopeId, node.Definition.CallableScopeId()) {
				node.EnclosedCalls = append(node.EnclosedCalls, ref)
			}
		}
		model.SortEnclosedCalls(node.EnclosedCalls)
	}

	callers := map[model.SymbolId]map[model.SymbolId]bool{}
	for _, node := range g.Nodes {
		for _, ref := range node.EnclosedCalls {
			for _, res := range resolutions[ref.Location.Key()] {
				if res.SymbolId == node.SymbolId && ref.IsCallbackInvocation {
					continue
				}
				if callers[res.SymbolId] == nil {
					callers[res.SymbolId] = map[model.SymbolId]bool{}
				}
				callers[res.SymbolId][node.SymbolId] = true
			}
		}
	}

	byName := map[model.SymbolName][]model.SymbolId{}
	for id, node := range g.Nodes {
		byName[node.Name] = append(byName[node.Name], id)
	}

	for file, refs := range refsByFile {
		scopes := scopesFor(file)
		exported := exportedNames(regs, file)
		for _, ref := range refs {
			if ref.Type == model.RefCall {
				// A call from outside every callable body (module-level
				// code) still counts as a caller of its targets.
				if _, enclosed := nearestCallable(scopes, ref.ScopeId, byOwnScope); !enclosed {
					for _, res := range resolutions[ref.Location.Key()] {
						if callers[res.SymbolId] == nil {
							callers[res.SymbolId] = map[model.SymbolId]bool{}
						}
						callers[res.SymbolId][""] = true
					}
				}
				continue
			}
			if ref.Type != model.RefRead {
				continue
			}
			callables, ok := byName[ref.Name]
			if !ok {
				continue
			}
			// spec.md §4.C11(4)'s heuristic is conservative: a bare read of a
			// callable's name is only "indirect reachability" evidence when
			// its containing file actually exports that name (the file
			// hands the function to the outside world). Ordinary in-body
			// reads of a local helper's name (without calling it) are not
			// evidence of indirect invocation and must not suppress it as
			// an entry point.
			if !exported[ref.Name] {
				continue
			}
			surrounding, ok := nearestCallable(scopes, ref.ScopeId, byOwnScope)
			if !ok {
				continue
			}
			g.IndirectReachability[surrounding] = append(g.IndirectReachability[surrounding], callables...)
		}
	}

	reachableIndirectly := map[model.SymbolId]bool{}
	for _, ids := range g.IndirectReachability {
		for _, id := range ids {
			reachableIndirectly[id] = true
		}
	}

	for id := range g.Nodes {
		if _, called := callers[id]; called {
			continue
		}
		if reachableIndirectly[id] {
			continue
		}
		g.EntryPoints = append(g.EntryPoints, id)
	}
	g.SortEntryPoints()

	return g
}

// scopeIsWithin reports whether scopeId is ancestorId itself or nested
// inside it (spec.md §4.C11's "scope tree descendant test").
func scopeIsWithin(scopes map[string]*model.LexicalScope, scopeId, ancestorId string) bool {
	depth := 0
	for scopeId != "" && depth < MaxScopeWalk {
		if scopeId == ancestorId {
			return true
		}
		sc, ok := scopes[scopeId]
		if !ok {
			return false
		}
		scopeId = sc.ParentScopeId
		depth++
	}
	return false
}

// exportedNames returns the set of names file exports, for the
// indirect-reachability narrowing above. The "passed to a known
// higher-order function" half of spec.md §4.C11(4)'s heuristic is not
// implemented: model.Reference carries no raw-AST-ancestor data, so a
// read's call-argument position cannot be recovered without threading
// parse-tree pointers through the reference model (see DESIGN.md).
func exportedNames(regs *registry.Set, file string) map[model.SymbolName]bool {
	names := map[model.SymbolName]bool{}
	for _, e := range regs.Exports.ByFile(file) {
		names[model.SymbolName(e.ExportedName)] = true
	}
	return names
}

// nearestCallable walks scopeId's ancestry to the first scope owned by a
// callable Definition (the innermost enclosing function/method).
func nearestCallable(scopes map[string]*model.LexicalScope, scopeId string, byOwnScope map[string]model.SymbolId) (model.SymbolId, bool) {
	depth := 0
	for scopeId != "" && depth < MaxScopeWalk {
		if id, ok := byOwnScope[scopeId]; ok {
			return id, true
		}
		sc, ok := scopes[scopeId]
		if !ok {
			return "", false
		}
		scopeId = sc.ParentScopeId
		depth++
	}
	return "", false
}
