// Package callgraph implements C10, the Call Resolver, and C11, the Call
// Graph Builder: target resolution for function/constructor/method call
// references (including inheritance-chain dispatch and interface fan-out),
// followed by CallableNode/callers-index/entry-point assembly.
package callgraph

import (
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
	"github.com/CRJFisher/ariadne-sub018/resolve"
	"github.com/CRJFisher/ariadne-sub018/typesys"
)

// MaxInheritanceDepth bounds the base-class/implements walk against cycles
// in malformed or mutually-recursive type hierarchies.
const MaxInheritanceDepth = 64

// Resolver is C10: it turns call References into Resolutions, consulting
// C8's lexical/import resolutions (for the callee name or the method
// receiver) and C9's type registry (for method dispatch).
type Resolver struct {
	regs  *registry.Set
	types *typesys.Registry
}

func NewResolver(regs *registry.Set, types *typesys.Registry) *Resolver {
	return &Resolver{regs: regs, types: types}
}

// ResolveFile computes C10 resolutions for every call Reference in file.
// base is C8's ResolveFile output for the same file (function/constructor
// names and call receivers are already resolved there; this pass
// interprets and, for methods, completes that resolution). It also sets
// IsCallbackInvocation on the References it resolves, per spec.md §4.C10.
func (r *Resolver) ResolveFile(file string, base *resolve.Result) map[string][]model.Resolution {
	out := map[string][]model.Resolution{}
	for _, ref := range r.regs.References.ByFile(file) {
		if ref.Type != model.RefCall {
			continue
		}
		var resolutions []model.Resolution
		switch ref.CallType {
		case model.CallFunction:
			resolutions = r.resolveFunction(ref, base)
		case model.CallConstructor:
			resolutions = r.resolveConstructor(ref, base)
		case model.CallMethod:
			resolutions = r.resolveMethod(ref, base)
		}
		if len(resolutions) > 0 {
			model.SortResolutions(resolutions)
			out[ref.Location.Key()] = resolutions
		}
	}
	return out
}

func (r *Resolver) resolveFunction(ref *model.Reference, base *resolve.Result) []model.Resolution {
	res, ok := firstResolution(base, ref.Location.Key())
	if !ok {
		return nil
	}
	callee, ok := r.regs.Definitions.Get(res.SymbolId)
	if !ok {
		return nil
	}
	if callee.Kind == model.KindParameter || callee.Kind == model.KindVariable || callee.IsAnonymous {
		ref.IsCallbackInvocation = true
		return []model.Resolution{res}
	}
	if !callee.Kind.IsCallable() {
		return nil
	}
	return []model.Resolution{res}
}

func (r *Resolver) resolveConstructor(ref *model.Reference, base *resolve.Result) []model.Resolution {
	res, ok := firstResolution(base, ref.Location.Key())
	if !ok {
		return nil
	}
	if callee, ok := r.regs.Definitions.Get(res.SymbolId); !ok || (callee.Kind != model.KindClass && callee.Kind != model.KindStruct) {
		res.Confidence = model.Probable
	}
	return []model.Resolution{res}
}

// resolveMethod implements spec.md §4.C10's obj.m steps: resolve the
// receiver, look up its type, walk the inheritance chain for a direct or
// inherited member, fan out across implementers for an interface/trait
// type, and fall back to uniqueness-by-name when the receiver's type is
// unknown.
func (r *Resolver) resolveMethod(ref *model.Reference, base *resolve.Result) []model.Resolution {
	var objType model.TypeRef
	if ref.Receiver != nil {
		if res, ok := firstResolution(base, ref.Receiver.Location.Key()); ok {
			objType, _ = r.types.TypeOf(res.SymbolId)
		}
	}
	if objType == "" {
		return r.resolveByUniqueName(ref.MethodName)
	}

	container := r.containerByName(string(objType))
	if container == nil {
		return r.resolveByUniqueName(ref.MethodName)
	}
	if container.Kind == model.KindInterface || container.Kind == model.KindTrait {
		return r.resolveImplementers(container, ref.MethodName)
	}

	// A statically-typed receiver only pins down the declared type; any
	// subclass overriding the method is an equally plausible runtime target
	// (spec.md §8 scenario 4), so both sides fan out together and the whole
	// set is marked ambiguous once more than one candidate survives.
	var out []model.Resolution
	if id, reason, ok := r.walkInheritance(container, ref.MethodName, 0, map[string]bool{}); ok {
		out = append(out, model.Resolution{SymbolId: id, Confidence: model.Certain, Reason: reason})
	}
	out = append(out, r.resolveOverridingDescendants(container, ref.MethodName)...)
	if len(out) == 0 {
		return r.resolveByUniqueName(ref.MethodName)
	}
	if len(out) > 1 {
		for i := range out {
			out[i].Confidence = model.Ambiguous
		}
	}
	return out
}

// resolveOverridingDescendants finds every container Definition that
// transitively extends/implements base and redeclares method directly on
// itself (as opposed to merely inheriting it), one Resolution per override.
func (r *Resolver) resolveOverridingDescendants(base *model.Definition, method string) []model.Resolution {
	var out []model.Resolution
	for _, d := range r.regs.Definitions.All() {
		if d.SymbolId == base.SymbolId || !isContainer(d.Kind) {
			continue
		}
		if !r.descendsFrom(d, string(base.Name), map[string]bool{}) {
			continue
		}
		if id, ok := r.types.Member(model.TypeRef(d.Name), method); ok {
			out = append(out, model.Resolution{SymbolId: id, Confidence: model.Certain, Reason: "override via " + string(d.Name)})
		}
	}
	return out
}

// descendsFrom reports whether d's BaseClasses/Implements chain reaches
// ancestor, at any depth.
func (r *Resolver) descendsFrom(d *model.Definition, ancestor string, visited map[string]bool) bool {
	if visited[string(d.Name)] {
		return false
	}
	visited[string(d.Name)] = true
	for _, n := range append(append([]string{}, d.BaseClasses...), d.Implements...) {
		if n == ancestor {
			return true
		}
		if base := r.containerByName(n); base != nil && r.descendsFrom(base, ancestor, visited) {
			return true
		}
	}
	return false
}

func (r *Resolver) walkInheritance(container *model.Definition, method string, depth int, visited map[string]bool) (model.SymbolId, string, bool) {
	if depth > MaxInheritanceDepth || visited[string(container.Name)] {
		return "", "", false
	}
	visited[string(container.Name)] = true
	if id, ok := r.types.Member(model.TypeRef(container.Name), method); ok {
		if depth == 0 {
			return id, "direct", true
		}
		return id, "inherited via " + string(container.Name), true
	}
	for _, baseName := range append(append([]string{}, container.BaseClasses...), container.Implements...) {
		base := r.containerByName(baseName)
		if base == nil {
			continue
		}
		if id, reason, ok := r.walkInheritance(base, method, depth+1, visited); ok {
			return id, reason, true
		}
	}
	return "", "", false
}

// resolveImplementers fans out one Resolution per Definition that
// implements/extends iface and has (directly or via its own chain) the
// named method, per spec.md §4.C10 bullet 4.
func (r *Resolver) resolveImplementers(iface *model.Definition, method string) []model.Resolution {
	var out []model.Resolution
	for _, d := range r.regs.Definitions.All() {
		if !isContainer(d.Kind) || !implementsType(d, string(iface.Name)) {
			continue
		}
		if id, reason, ok := r.walkInheritance(d, method, 0, map[string]bool{}); ok {
			out = append(out, model.Resolution{SymbolId: id, Confidence: model.Certain, Reason: reason})
		}
	}
	if len(out) > 1 {
		for i := range out {
			out[i].Confidence = model.Ambiguous
		}
	}
	return out
}

func implementsType(d *model.Definition, name string) bool {
	for _, n := range d.BaseClasses {
		if n == name {
			return true
		}
	}
	for _, n := range d.Implements {
		if n == name {
			return true
		}
	}
	return false
}

// resolveByUniqueName is the fallback for an unknown receiver type: a
// project-wide scan for method Definitions named m, probable if unique,
// ambiguous across every candidate otherwise.
func (r *Resolver) resolveByUniqueName(method string) []model.Resolution {
	candidates := r.regs.Definitions.ByName(model.SymbolName(method))
	var methods []*model.Definition
	for _, d := range candidates {
		if d.Kind == model.KindMethod {
			methods = append(methods, d)
		}
	}
	if len(methods) == 0 {
		return nil
	}
	confidence := model.Probable
	if len(methods) > 1 {
		confidence = model.Ambiguous
	}
	out := make([]model.Resolution, 0, len(methods))
	for _, m := range methods {
		out = append(out, model.Resolution{SymbolId: m.SymbolId, Confidence: confidence, Reason: "unique-method-name"})
	}
	return out
}

func (r *Resolver) containerByName(name string) *model.Definition {
	for _, d := range r.regs.Definitions.ByName(model.SymbolName(name)) {
		if isContainer(d.Kind) {
			return d
		}
	}
	return nil
}

func isContainer(k model.DefinitionKind) bool {
	switch k {
	case model.KindClass, model.KindStruct, model.KindTrait, model.KindInterface, model.KindEnum:
		return true
	default:
		return false
	}
}

func firstResolution(base *resolve.Result, key string) (model.Resolution, bool) {
	if base == nil {
		return model.Resolution{}, false
	}
	rs, ok := base.ResolvedReferences[key]
	if !ok || len(rs) == 0 {
		return model.Resolution{}, false
	}
	return rs[0], true
}
