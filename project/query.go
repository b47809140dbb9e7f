package project

import (
	"gopkg.in/yaml.v3"

	"github.com/CRJFisher/ariadne-sub018/model"
)

// GetCallGraph returns the project's current call graph (C11 output).
func (p *Project) GetCallGraph() *model.CallGraph {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// GetDefinitionsByFile returns every Definition file contributes.
func (p *Project) GetDefinitionsByFile(file string) []*model.Definition {
	return p.regs.Definitions.ByFile(file)
}

// GetDefinition looks up a single Definition by its SymbolId.
func (p *Project) GetDefinition(id model.SymbolId) (*model.Definition, bool) {
	return p.regs.Definitions.Get(id)
}

// FindReferences returns every Reference resolved to id across every
// indexed file: those C8 resolved to id, plus method-call References whose
// C10 resolutions include id.
func (p *Project) FindReferences(id model.SymbolId) []*model.Reference {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*model.Reference
	for _, result := range p.resolved {
		out = append(out, result.ReferencesToSymbol[id]...)
	}
	for _, f := range p.regs.References.AllFiles() {
		for _, ref := range p.regs.References.ByFile(f) {
			if ref.Type != model.RefCall || ref.CallType != model.CallMethod {
				continue
			}
			for _, res := range p.callResults[ref.Location.Key()] {
				if res.SymbolId == id {
					out = append(out, ref)
					break
				}
			}
		}
	}
	return out
}

// GetScopeTree returns file's scope tree and root scope id.
func (p *Project) GetScopeTree(file string) (map[string]*model.LexicalScope, string, bool) {
	return p.regs.Scopes.Tree(file)
}

// GetExports returns file's ExportRecords.
func (p *Project) GetExports(file string) []model.ExportRecord {
	return p.regs.Exports.ByFile(file)
}

// snapshotView is a debug/test-only rendering of a Project's state, not
// part of the public query surface; yaml tags mirror config.Config's (the
// teacher's inspector/info commands serialize their models the same way).
type snapshotView struct {
	Files       []string                       `yaml:"files"`
	Definitions map[string][]*model.Definition `yaml:"definitions"`
	EntryPoints []model.SymbolId               `yaml:"entryPoints"`
}

// Snapshot renders the project's current state as YAML, for test fixtures
// and debugging; it is not part of the spec's external interface.
func (p *Project) Snapshot() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := snapshotView{Definitions: map[string][]*model.Definition{}}
	for f := range p.files {
		view.Files = append(view.Files, f)
		view.Definitions[f] = p.regs.Definitions.ByFile(f)
	}
	if p.calls != nil {
		view.EntryPoints = p.calls.EntryPoints
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
