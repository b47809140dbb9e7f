// Package resolve implements C8, the Name Resolver: lexical scope walk,
// import hand-off, and namespace-member resolution for every Reference in
// a file.
package resolve

import (
	"github.com/CRJFisher/ariadne-sub018/diagnostic"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
)

// MaxScopeDepth bounds the lexical scope walk (SPEC_FULL.md §7).
const MaxScopeDepth = 64

// MaxReExportHops bounds re-export chain following before the cycle guard
// kicks in.
const MaxReExportHops = 16

// ImportPathResolver turns a file-relative import path into the concrete
// project file it names, or ok=false if the target isn't part of the
// project (an external package). Only the coordinator (project package)
// knows the full file set, so this is injected rather than owned here.
type ImportPathResolver func(fromFile, importPath string) (file string, ok bool)

// Result is C8's output for one file.
type Result struct {
	// ResolvedReferences maps a Reference's Location.Key() to its ranked
	// candidate Resolutions.
	ResolvedReferences map[string][]model.Resolution
	// ReferencesToSymbol is the inverse index: symbol -> referencing Refs.
	ReferencesToSymbol map[model.SymbolId][]*model.Reference
}

// Resolver holds the read-only registry views C8 consults.
type Resolver struct {
	regs        *registry.Set
	resolvePath ImportPathResolver
}

func New(regs *registry.Set, resolvePath ImportPathResolver) *Resolver {
	return &Resolver{regs: regs, resolvePath: resolvePath}
}

// ResolveFile resolves every non-method reference in file. Method-name
// references (obj.m) are intentionally left unresolved here; C10 resolves
// them once C9's type registry has settled.
func (r *Resolver) ResolveFile(file string) (*Result, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic
	out := &Result{
		ResolvedReferences: map[string][]model.Resolution{},
		ReferencesToSymbol: map[model.SymbolId][]*model.Reference{},
	}

	scopes, _, ok := r.regs.Scopes.Tree(file)
	if !ok {
		return out, diags
	}

	for _, ref := range r.regs.References.ByFile(file) {
		if ref.Type == model.RefCall && ref.CallType == model.CallMethod {
			if ref.Receiver != nil {
				r.resolveOne(file, scopes, ref.Receiver.Name, ref.Receiver.Location, ref.ScopeId, out)
			}
			continue
		}
		res, ok := r.resolve(file, scopes, string(ref.Name), ref.ScopeId)
		if !ok {
			continue
		}
		out.ResolvedReferences[ref.Location.Key()] = []model.Resolution{res}
		out.ReferencesToSymbol[res.SymbolId] = append(out.ReferencesToSymbol[res.SymbolId], ref)
	}
	return out, diags
}

// resolveOne resolves a bare name/location pair (a call receiver) without
// indexing it in ReferencesToSymbol: a receiver is a sub-part of a call
// Reference, not a Reference of its own.
func (r *Resolver) resolveOne(file string, scopes map[string]*model.LexicalScope, name string, loc model.Location, scopeId string, out *Result) {
	res, ok := r.resolve(file, scopes, name, scopeId)
	if !ok {
		return
	}
	out.ResolvedReferences[loc.Key()] = []model.Resolution{res}
}

func (r *Resolver) resolve(file string, scopes map[string]*model.LexicalScope, name, scopeId string) (model.Resolution, bool) {
	if id, ok := r.lexicalWalk(file, scopes, name, scopeId); ok {
		return model.Resolution{SymbolId: id, Confidence: model.Certain, Reason: "lexical"}, true
	}
	if res, ok := r.importHandoff(file, name, 0); ok {
		return res, true
	}
	if id, ok := r.namespaceMember(file, name); ok {
		return model.Resolution{SymbolId: id, Confidence: model.Certain, Reason: "namespace-member"}, true
	}
	return model.Resolution{}, false
}

// lexicalWalk searches scopeId, then its ancestors up to the module root,
// for a Definition named name.
func (r *Resolver) lexicalWalk(file string, scopes map[string]*model.LexicalScope, name, scopeId string) (model.SymbolId, bool) {
	depth := 0
	for scopeId != "" && depth < MaxScopeDepth {
		depth++
		for _, d := range r.regs.Definitions.ByScope(scopeId) {
			if string(d.Name) == name {
				return d.SymbolId, true
			}
		}
		sc, ok := scopes[scopeId]
		if !ok {
			break
		}
		scopeId = sc.ParentScopeId
	}
	return "", false
}

// importHandoff follows name's import binding (if any) in file to the
// exporting file, chasing re-exports up to MaxReExportHops.
func (r *Resolver) importHandoff(file, name string, hops int) (model.Resolution, bool) {
	for _, imp := range r.regs.Imports.ByFile(file) {
		if imp.ImportedName != name || imp.IsNamespace {
			continue
		}
		target, ok := r.resolvePath(file, imp.ImportPath)
		if !ok {
			return model.Resolution{}, false
		}
		return r.followExport(target, imp.ImportedName, hops)
	}
	return model.Resolution{}, false
}

func (r *Resolver) followExport(file, name string, hops int) (model.Resolution, bool) {
	localId, ok := r.regs.Exports.Resolve(file, name)
	if !ok {
		return model.Resolution{}, false
	}
	if hops >= MaxReExportHops {
		return model.Resolution{SymbolId: localId, Confidence: model.Probable, Reason: "cycle-broken"}, true
	}
	if _, ok := r.regs.Definitions.Get(localId); ok {
		confidence := model.Certain
		reason := "lexical-import"
		if hops > 0 {
			confidence = model.Probable
			reason = "re-export"
		}
		return model.Resolution{SymbolId: localId, Confidence: confidence, Reason: reason}, true
	}
	// localId names another file's import binding: the export just
	// forwards an import (a re-export). Follow it one more hop.
	for _, otherFile := range r.regs.Imports.AllFiles() {
		if rec, ok := r.regs.Imports.Binding(otherFile, localId); ok {
			next, ok := r.resolvePath(otherFile, rec.ImportPath)
			if !ok {
				return model.Resolution{}, false
			}
			return r.followExport(next, rec.ImportedName, hops+1)
		}
	}
	return model.Resolution{}, false
}

// namespaceMember resolves "A.b" when A is bound to a namespace import: it
// looks up b directly in the target file's exports.
func (r *Resolver) namespaceMember(file, name string) (model.SymbolId, bool) {
	dot := -1
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return "", false
	}
	alias, member := name[:dot], name[dot+1:]
	for _, imp := range r.regs.Imports.ByFile(file) {
		if !imp.IsNamespace || imp.ImportedName != alias {
			continue
		}
		target, ok := r.resolvePath(file, imp.ImportPath)
		if !ok {
			continue
		}
		if id, ok := r.regs.Exports.Resolve(target, member); ok {
			return id, true
		}
	}
	return "", false
}
