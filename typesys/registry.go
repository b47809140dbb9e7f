// Package typesys implements C9, the Type Registry & Propagator: it
// maintains symbol_type and type_members and propagates types through a
// file and its dependents by bounded fixed-point iteration, following the
// precedence order of spec.md §4.C9.
package typesys

import (
	"fmt"
	"sort"
	"sync"

	"github.com/CRJFisher/ariadne-sub018/diagnostic"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
	"github.com/CRJFisher/ariadne-sub018/resolve"
)

// MaxRounds bounds the fixed-point iteration (spec.md §4.C9, §5).
const MaxRounds = 8

// Registry holds symbol_type and type_members. It is keyed entirely by
// SymbolId/TypeRef, so entries belonging to a removed file simply become
// unreachable once nothing resolves to their SymbolId again (spec.md §5,
// "Memory").
type Registry struct {
	mu          sync.RWMutex
	symbolType  map[model.SymbolId]model.TypeRef
	typeMembers map[model.TypeRef]map[string]model.SymbolId
}

func New() *Registry {
	return &Registry{
		symbolType:  map[model.SymbolId]model.TypeRef{},
		typeMembers: map[model.TypeRef]map[string]model.SymbolId{},
	}
}

func (r *Registry) TypeOf(id model.SymbolId) (model.TypeRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.symbolType[id]
	return t, ok
}

// Member looks up a type's member by name via type_members.
func (r *Registry) Member(t model.TypeRef, name string) (model.SymbolId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.typeMembers[t][name]
	return id, ok
}

// RebuildMembers recomputes type_members from every container Definition
// (class/struct/trait/interface/enum) currently registered. It is cheap
// enough to run after any structural registry change; C10's inheritance
// walk and interface fan-out both depend on it being current.
func (r *Registry) RebuildMembers(regs *registry.Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typeMembers = map[model.TypeRef]map[string]model.SymbolId{}
	for _, d := range regs.Definitions.All() {
		if !isContainer(d.Kind) || len(d.Members) == 0 {
			continue
		}
		members := make(map[string]model.SymbolId, len(d.Members))
		for _, memberId := range d.Members {
			if member, ok := regs.Definitions.Get(memberId); ok {
				members[string(member.Name)] = memberId
			}
		}
		r.typeMembers[model.TypeRef(d.Name)] = members
	}
}

func isContainer(k model.DefinitionKind) bool {
	switch k {
	case model.KindClass, model.KindStruct, model.KindTrait, model.KindInterface, model.KindEnum:
		return true
	default:
		return false
	}
}

// Propagate recomputes symbol_type for every Definition in files (the
// coordinator's affected set S), in spec precedence order, iterating each
// file to a fixed point bounded by MaxRounds. resolutions supplies C8's
// per-file resolved references, needed for precedence tier 3 (a called
// function's return type).
func (r *Registry) Propagate(regs *registry.Set, files []string, resolutions map[string]*resolve.Result) []diagnostic.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	var diags []diagnostic.Diagnostic
	for _, file := range files {
		if !r.propagateFile(regs, file, resolutions[file]) {
			diags = append(diags, diagnostic.New(diagnostic.TypeFixpointNotReached, file,
				fmt.Sprintf("type propagation did not converge within %d rounds", MaxRounds)))
		}
	}
	return diags
}

// propagateFile returns false if the round limit was hit with types still
// changing (a TypeFixpointNotReached diagnostic is warranted).
func (r *Registry) propagateFile(regs *registry.Set, file string, resolved *resolve.Result) bool {
	defs := regs.Definitions.ByFile(file)
	seeds := regs.Types.ByFile(file)

	typed := map[model.SymbolId]*model.Definition{}
	for _, d := range defs {
		if d.Kind == model.KindVariable || d.Kind == model.KindConstant || d.Kind == model.KindParameter {
			typed[d.SymbolId] = d
		}
	}

	// Tier 1 & 2 are parse-time facts: apply once, they never change across
	// rounds and always win over tiers 3/4.
	for id, t := range seeds.Explicit {
		r.symbolType[id] = t
	}
	for id, t := range seeds.Constructor {
		if _, explicit := seeds.Explicit[id]; !explicit {
			r.symbolType[id] = t
		}
	}

	byLine := indexRefsByLine(regs.References.ByFile(file))

	round := 0
	for {
		round++
		changed := false
		for id, d := range typed {
			if _, ok := seeds.Explicit[id]; ok {
				continue
			}
			if _, ok := seeds.Constructor[id]; ok {
				continue
			}
			if candidate, ok := r.inferTier3(regs, d, byLine, resolved); ok {
				if r.symbolType[id] != candidate {
					r.symbolType[id] = candidate
					changed = true
				}
				continue
			}
			if candidate, ok := r.inferTier4(d, byLine); ok {
				if r.symbolType[id] != candidate {
					r.symbolType[id] = candidate
					changed = true
				}
			}
		}
		if !changed {
			return true
		}
		if round >= MaxRounds {
			return false
		}
	}
}

// inferTier3 looks for a non-constructor call on the same source line as
// d's declaration and, if C8 resolved that call (C8 leaves method calls
// unresolved, so in practice a function call) to a callable Definition
// with a known ReturnType, proposes it as d's type.
func (r *Registry) inferTier3(regs *registry.Set, d *model.Definition, byLine map[int][]*model.Reference, resolved *resolve.Result) (model.TypeRef, bool) {
	if resolved == nil {
		return "", false
	}
	for _, ref := range byLine[d.Location.StartLine] {
		if ref.Type != model.RefCall || ref.CallType == model.CallConstructor || ref.Location == d.Location {
			continue
		}
		resolutions, ok := resolved.ResolvedReferences[ref.Location.Key()]
		if !ok || len(resolutions) == 0 {
			continue
		}
		callee, ok := regs.Definitions.Get(resolutions[0].SymbolId)
		if !ok || callee.ReturnType == "" {
			continue
		}
		return model.TypeRef(callee.ReturnType), true
	}
	return "", false
}

// inferTier4 propagates from a same-line, already-typed sibling variable
// (`x = y`): the RHS shows up as a bare read Reference since it isn't a
// declaration or a call.
func (r *Registry) inferTier4(d *model.Definition, byLine map[int][]*model.Reference) (model.TypeRef, bool) {
	for _, ref := range byLine[d.Location.StartLine] {
		if ref.Type != model.RefRead || ref.Name == d.Name {
			continue
		}
		if t, ok := r.typeOfNamedInScope(ref, d); ok {
			return t, true
		}
	}
	return "", false
}

// typeOfNamedInScope finds any symbol already typed in symbol_type whose
// name matches ref and whose scope could plausibly be the same binding
// (best-effort: exact SymbolId isn't known without re-resolving, so this
// scans the current type map for a same-named entry).
func (r *Registry) typeOfNamedInScope(ref *model.Reference, d *model.Definition) (model.TypeRef, bool) {
	for id, t := range r.symbolType {
		if symbolName(id) == string(ref.Name) {
			return t, true
		}
	}
	return "", false
}

// symbolName extracts the trailing name segment of a SymbolId
// (kind:scope_path:name[:qualifier]).
func symbolName(id model.SymbolId) string {
	s := string(id)
	parts := splitColon(s)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func splitColon(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func indexRefsByLine(refs []*model.Reference) map[int][]*model.Reference {
	out := map[int][]*model.Reference{}
	for _, ref := range refs {
		out[ref.Location.StartLine] = append(out[ref.Location.StartLine], ref)
	}
	for line := range out {
		sort.Slice(out[line], func(i, j int) bool {
			return out[line][i].Location.StartCol < out[line][j].Location.StartCol
		})
	}
	return out
}
