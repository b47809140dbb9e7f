// Package rust is the lang.Provider for Rust sources.
package rust

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

func init() {
	lang.Register(Provider{})
}

// Provider implements lang.Provider for Rust.
type Provider struct{}

func (Provider) Language() model.Language { return model.Rust }

func (Provider) SitterLanguage() *sitter.Language { return rust.GetLanguage() }

func (Provider) ScopeQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "scope.function", Pattern: `
			[ (function_item) (closure_expression) ] @local.scope.function`},
		{Name: "scope.class", Pattern: `
			[
			  (struct_item) @local.scope.class
			  (impl_item) @local.scope.class
			  (trait_item) @local.scope.class
			  (enum_item) @local.scope.class
			] `},
		{Name: "scope.block", Pattern: `(block) @local.scope.block`},
		{Name: "scope.for", Pattern: `(for_expression) @local.scope.for`},
		{Name: "scope.catch", Pattern: `(match_arm) @local.scope.catch`},
	}
}

func (Provider) DefinitionQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "def.function", Pattern: `
			(function_item name: (identifier) @local.definition.function)`},
		{Name: "def.struct", Pattern: `
			(struct_item name: (type_identifier) @local.definition.struct)`},
		{Name: "def.trait", Pattern: `
			(trait_item name: (type_identifier) @local.definition.trait)`},
		{Name: "def.enum", Pattern: `
			(enum_item name: (type_identifier) @local.definition.enum)`},
		{Name: "def.enumerator", Pattern: `
			(enum_variant name: (identifier) @local.definition.enumerator)`},
		{Name: "def.impl", Pattern: `
			(impl_item type: (type_identifier) @local.annotation.impl_target)
			(impl_item trait: (type_identifier) @local.annotation.trait_impl)`},
		{Name: "def.parameter", Pattern: `
			(parameter pattern: (identifier) @local.definition.parameter)`},
		{Name: "def.let", Pattern: `
			(let_declaration pattern: (identifier) @local.definition.variable)`},
		{Name: "def.const", Pattern: `
			(const_item name: (identifier) @local.definition.constant)`},
		{Name: "def.types", Pattern: `
			(parameter type: (type_identifier) @local.annotation.param_type)
			(function_item return_type: (type_identifier) @local.annotation.return_type)`},
		{Name: "def.field", Pattern: `
			(field_declaration name: (field_identifier) @local.definition.field)`},
		{Name: "def.anonymous_function", Pattern: `
			(arguments (closure_expression) @local.definition.anonymous_function)`},
	}
}

func (Provider) ReferenceQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "ref.call", Pattern: `
			(call_expression function: (identifier) @reference.call.function)
			(call_expression function: (field_expression field: (field_identifier) @reference.call.method))
			(call_expression function: (scoped_identifier name: (identifier) @reference.call.constructor))`},
		{Name: "ref.identifier", Pattern: `(identifier) @reference.reference`},
		{Name: "ref.type", Pattern: `(type_identifier) @reference.type`},
	}
}

func (Provider) ImportExportQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "use", Pattern: `(use_declaration) @local.import.use`},
		{Name: "pub", Pattern: `
			(function_item (visibility_modifier) name: (identifier) @local.export.name)
			(struct_item (visibility_modifier) name: (type_identifier) @local.export.name)
			(enum_item (visibility_modifier) name: (type_identifier) @local.export.name)
			(trait_item (visibility_modifier) name: (type_identifier) @local.export.name)
			(const_item (visibility_modifier) name: (identifier) @local.export.name)`},
	}
}

var scopeKinds = map[string]model.ScopeKind{
	"function_item":      model.ScopeFunction,
	"closure_expression": model.ScopeFunction,
	"struct_item":        model.ScopeClass,
	"impl_item":          model.ScopeClass,
	"trait_item":         model.ScopeClass,
	"enum_item":          model.ScopeClass,
	"block":              model.ScopeBlock,
	"for_expression":      model.ScopeFor,
	"match_arm":          model.ScopeCatch,
	"source_file":        model.ScopeModule,
}

func (Provider) ScopeKind(nodeType string) (model.ScopeKind, bool) {
	k, ok := scopeKinds[nodeType]
	return k, ok
}

// Seals is true for trait_item: a trait's method signatures declare a
// contract, not a name binding visible to implementers' bodies.
func (Provider) Seals(nodeType string) bool { return nodeType == "trait_item" }

func (Provider) IsHoisted(captureName, nodeType string) bool {
	// item-level declarations (fn, struct, const, ...) are visible
	// throughout the enclosing module/block regardless of textual order.
	switch nodeType {
	case "function_item", "struct_item", "trait_item", "enum_item", "const_item", "impl_item":
		return true
	default:
		return false
	}
}

func (Provider) IsTestFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, "_test.rs") || strings.Contains(lower, "/tests/")
}
