// Package registry implements C6: the six append/replace-per-file tables
// that hold everything C1-C5 discovered about every indexed file. Every
// registry is keyed by file_path as the unit of invalidation, mirroring
// inspector/graph's AddX/RemoveX-then-rebuild-index map pattern.
package registry

import (
	"sort"
	"sync"

	"github.com/CRJFisher/ariadne-sub018/model"
)

// DefinitionRegistry holds every Definition known to the project, indexed
// several ways for the lookups C8-C11 need.
type DefinitionRegistry struct {
	mu sync.RWMutex

	byFile     map[string][]*model.Definition
	bySymbol   map[model.SymbolId]*model.Definition
	byLocation map[string]*model.Definition
	byScope    map[string][]*model.Definition
	byName     map[model.SymbolName][]*model.Definition
	// members maps a container SymbolId to its member name -> SymbolId,
	// derived from each container Definition's Members field.
	members map[model.SymbolId]map[string]model.SymbolId
}

func NewDefinitionRegistry() *DefinitionRegistry {
	return &DefinitionRegistry{
		byFile:     map[string][]*model.Definition{},
		bySymbol:   map[model.SymbolId]*model.Definition{},
		byLocation: map[string]*model.Definition{},
		byScope:    map[string][]*model.Definition{},
		byName:     map[model.SymbolName][]*model.Definition{},
		members:    map[model.SymbolId]map[string]model.SymbolId{},
	}
}

// ReplaceFile atomically swaps file's contribution to every index.
func (r *DefinitionRegistry) ReplaceFile(file string, defs []*model.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFileLocked(file)

	r.byFile[file] = defs
	for _, d := range defs {
		r.bySymbol[d.SymbolId] = d
		r.byLocation[d.Location.Key()] = d
		r.byScope[d.ScopeId] = append(r.byScope[d.ScopeId], d)
		r.byName[d.Name] = append(r.byName[d.Name], d)
	}
	for _, d := range defs {
		if len(d.Members) > 0 {
			m := make(map[string]model.SymbolId, len(d.Members))
			for _, memberId := range d.Members {
				if member, ok := r.bySymbol[memberId]; ok {
					m[string(member.Name)] = memberId
				}
			}
			r.members[d.SymbolId] = m
		}
	}
}

// RemoveFile removes every Definition file contributed.
func (r *DefinitionRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFileLocked(file)
}

func (r *DefinitionRegistry) removeFileLocked(file string) {
	old, ok := r.byFile[file]
	if !ok {
		return
	}
	for _, d := range old {
		delete(r.bySymbol, d.SymbolId)
		delete(r.byLocation, d.Location.Key())
		delete(r.members, d.SymbolId)
		r.byScope[d.ScopeId] = removeDef(r.byScope[d.ScopeId], d.SymbolId)
		r.byName[d.Name] = removeDef(r.byName[d.Name], d.SymbolId)
	}
	delete(r.byFile, file)
}

func removeDef(list []*model.Definition, id model.SymbolId) []*model.Definition {
	out := list[:0]
	for _, d := range list {
		if d.SymbolId != id {
			out = append(out, d)
		}
	}
	return out
}

func (r *DefinitionRegistry) Get(id model.SymbolId) (*model.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.bySymbol[id]
	return d, ok
}

func (r *DefinitionRegistry) ByFile(file string) []*model.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Definition{}, r.byFile[file]...)
}

func (r *DefinitionRegistry) ByName(name model.SymbolName) []*model.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Definition{}, r.byName[name]...)
}

func (r *DefinitionRegistry) ByScope(scopeId string) []*model.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Definition{}, r.byScope[scopeId]...)
}

// Member looks up a container's member by name via the member index.
func (r *DefinitionRegistry) Member(container model.SymbolId, name string) (model.SymbolId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[container]
	if !ok {
		return "", false
	}
	id, ok := m[name]
	return id, ok
}

// All returns every Definition currently registered, in file then location
// order, for callers (C11 entry-point scan) that need a stable full sweep.
func (r *DefinitionRegistry) All() []*model.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Definition
	files := make([]string, 0, len(r.byFile))
	for f := range r.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		out = append(out, r.byFile[f]...)
	}
	return out
}

// ScopeRegistry holds each file's scope tree, flattened for lookup.
type ScopeRegistry struct {
	mu    sync.RWMutex
	byFile map[string]map[string]*model.LexicalScope
	roots  map[string]string
}

func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{
		byFile: map[string]map[string]*model.LexicalScope{},
		roots:  map[string]string{},
	}
}

func (r *ScopeRegistry) ReplaceFile(file string, scopes map[string]*model.LexicalScope, rootId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[file] = scopes
	r.roots[file] = rootId
}

func (r *ScopeRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, file)
	delete(r.roots, file)
}

func (r *ScopeRegistry) Get(file, scopeId string) (*model.LexicalScope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sc, ok := r.byFile[file][scopeId]
	return sc, ok
}

func (r *ScopeRegistry) Tree(file string) (map[string]*model.LexicalScope, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scopes, ok := r.byFile[file]
	return scopes, r.roots[file], ok
}

// ExportRegistry holds each file's ExportRecords, plus a direct
// (file, exported_name) -> local_symbol_id index for re-export hand-off.
type ExportRegistry struct {
	mu       sync.RWMutex
	byFile   map[string][]model.ExportRecord
	byName   map[string]map[string]model.SymbolId
}

func NewExportRegistry() *ExportRegistry {
	return &ExportRegistry{
		byFile: map[string][]model.ExportRecord{},
		byName: map[string]map[string]model.SymbolId{},
	}
}

func (r *ExportRegistry) ReplaceFile(file string, exports []model.ExportRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[file] = exports
	names := make(map[string]model.SymbolId, len(exports))
	for _, e := range exports {
		if e.LocalSymbolId != "" {
			names[e.ExportedName] = e.LocalSymbolId
		}
	}
	r.byName[file] = names
}

func (r *ExportRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, file)
	delete(r.byName, file)
}

func (r *ExportRegistry) ByFile(file string) []model.ExportRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ExportRecord{}, r.byFile[file]...)
}

// Resolve looks up the local symbol a named export of file points to.
func (r *ExportRegistry) Resolve(file, exportedName string) (model.SymbolId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[file][exportedName]
	return id, ok
}

// ReferenceRegistry holds each file's raw (unresolved) References.
type ReferenceRegistry struct {
	mu     sync.RWMutex
	byFile map[string][]*model.Reference
}

func NewReferenceRegistry() *ReferenceRegistry {
	return &ReferenceRegistry{byFile: map[string][]*model.Reference{}}
}

func (r *ReferenceRegistry) ReplaceFile(file string, refs []*model.Reference) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[file] = refs
}

func (r *ReferenceRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, file)
}

func (r *ReferenceRegistry) ByFile(file string) []*model.Reference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.Reference{}, r.byFile[file]...)
}

func (r *ReferenceRegistry) AllFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	files := make([]string, 0, len(r.byFile))
	for f := range r.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ImportRegistry holds each file's ImportRecords, plus a
// (file, local_binding_symbol) -> ImportRecord index.
type ImportRegistry struct {
	mu       sync.RWMutex
	byFile   map[string][]model.ImportRecord
	byBinding map[string]map[model.SymbolId]model.ImportRecord
}

func NewImportRegistry() *ImportRegistry {
	return &ImportRegistry{
		byFile:    map[string][]model.ImportRecord{},
		byBinding: map[string]map[model.SymbolId]model.ImportRecord{},
	}
}

func (r *ImportRegistry) ReplaceFile(file string, imports []model.ImportRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[file] = imports
	bindings := make(map[model.SymbolId]model.ImportRecord, len(imports))
	for _, imp := range imports {
		bindings[imp.LocalBindingSymbol] = imp
	}
	r.byBinding[file] = bindings
}

func (r *ImportRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, file)
	delete(r.byBinding, file)
}

func (r *ImportRegistry) ByFile(file string) []model.ImportRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ImportRecord{}, r.byFile[file]...)
}

func (r *ImportRegistry) Binding(file string, local model.SymbolId) (model.ImportRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byBinding[file][local]
	return rec, ok
}

func (r *ImportRegistry) AllFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	files := make([]string, 0, len(r.byFile))
	for f := range r.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// TypeAnnotationRegistry holds each file's parse-time TypeSeeds (explicit
// annotations and constructor-call initializers), C9's two highest-precedence
// type sources.
type TypeAnnotationRegistry struct {
	mu     sync.RWMutex
	byFile map[string]model.TypeSeeds
}

func NewTypeAnnotationRegistry() *TypeAnnotationRegistry {
	return &TypeAnnotationRegistry{byFile: map[string]model.TypeSeeds{}}
}

func (r *TypeAnnotationRegistry) ReplaceFile(file string, seeds model.TypeSeeds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFile[file] = seeds
}

func (r *TypeAnnotationRegistry) RemoveFile(file string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFile, file)
}

// ByFile returns file's TypeSeeds as recorded at its last ReplaceFile.
func (r *TypeAnnotationRegistry) ByFile(file string) model.TypeSeeds {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byFile[file]
}

// Set bundles all six registries; the coordinator (project package) owns
// exactly one Set for the life of a project.
type Set struct {
	Definitions *DefinitionRegistry
	Scopes      *ScopeRegistry
	Exports     *ExportRegistry
	References  *ReferenceRegistry
	Imports     *ImportRegistry
	Types       *TypeAnnotationRegistry
}

func NewSet() *Set {
	return &Set{
		Definitions: NewDefinitionRegistry(),
		Scopes:      NewScopeRegistry(),
		Exports:     NewExportRegistry(),
		References:  NewReferenceRegistry(),
		Imports:     NewImportRegistry(),
		Types:       NewTypeAnnotationRegistry(),
	}
}

// ReplaceFile atomically installs one file's SemanticIndex across all six
// registries. Callers must serialize calls to Set (the coordinator is the
// only writer; see project.Project).
func (s *Set) ReplaceFile(idx *model.SemanticIndex) {
	s.Definitions.ReplaceFile(idx.FilePath, idx.Definitions)
	s.Scopes.ReplaceFile(idx.FilePath, idx.Scopes, idx.RootScopeId)
	s.Exports.ReplaceFile(idx.FilePath, idx.Exports)
	s.References.ReplaceFile(idx.FilePath, idx.References)
	s.Imports.ReplaceFile(idx.FilePath, idx.Imports)
	s.Types.ReplaceFile(idx.FilePath, idx.TypeSeeds)
}

func (s *Set) RemoveFile(file string) {
	s.Definitions.RemoveFile(file)
	s.Scopes.RemoveFile(file)
	s.Exports.RemoveFile(file)
	s.References.RemoveFile(file)
	s.Imports.RemoveFile(file)
	s.Types.RemoveFile(file)
}
