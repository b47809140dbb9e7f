// Package javascript is the lang.Provider for plain JavaScript/JSX sources.
// It reuses the TypeScript grammar's statement shapes (the two grammars
// share a capture vocabulary for everything except type syntax) but binds
// to the dedicated JavaScript tree-sitter grammar so .jsx files parse
// without TypeScript-only tokens confusing the parser.
package javascript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

func init() {
	lang.Register(Provider{})
}

// Provider implements lang.Provider for JavaScript.
type Provider struct{}

func (Provider) Language() model.Language { return model.JavaScript }

func (Provider) SitterLanguage() *sitter.Language { return javascript.GetLanguage() }

func (Provider) ScopeQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "scope.function", Pattern: `
			[
			  (function_declaration) @local.scope.function
			  (function_expression) @local.scope.function
			  (arrow_function) @local.scope.function
			  (method_definition) @local.scope.function
			] `},
		{Name: "scope.class", Pattern: `(class_declaration) @local.scope.class`},
		{Name: "scope.block", Pattern: `(statement_block) @local.scope.block`},
		{Name: "scope.for", Pattern: `
			[ (for_statement) (for_in_statement) ] @local.scope.for`},
		{Name: "scope.catch", Pattern: `(catch_clause) @local.scope.catch`},
	}
}

func (Provider) DefinitionQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "def.function", Pattern: `
			(function_declaration name: (identifier) @local.definition.function)`},
		{Name: "def.method", Pattern: `
			(method_definition name: (property_identifier) @local.definition.method)`},
		{Name: "def.class", Pattern: `
			(class_declaration name: (identifier) @local.definition.class)`},
		{Name: "def.variable", Pattern: `
			(variable_declarator name: (identifier) @local.definition.variable)`},
		{Name: "def.parameter", Pattern: `
			(formal_parameters (identifier) @local.definition.parameter)`},
		{Name: "def.property", Pattern: `
			(field_definition property: (property_identifier) @local.definition.property)`},
		{Name: "def.anonymous_function", Pattern: `
			(arguments (arrow_function) @local.definition.anonymous_function)
			(arguments (function_expression) @local.definition.anonymous_function)`},
		{Name: "def.heritage", Pattern: `
			(class_heritage (identifier) @local.annotation.extends)`},
	}
}

func (Provider) ReferenceQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "ref.call", Pattern: `
			(call_expression function: (identifier) @reference.call.function)
			(call_expression function: (member_expression property: (property_identifier) @reference.call.method))
			(new_expression constructor: (identifier) @reference.call.constructor)`},
		{Name: "ref.identifier", Pattern: `(identifier) @reference.reference`},
	}
}

func (Provider) ImportExportQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "import", Pattern: `
			(import_clause (identifier) @local.import.default)
			(import_clause (namespace_import (identifier) @local.import.namespace))
			(import_clause (named_imports (import_specifier name: (identifier) @local.import.named)))
			(import_clause (named_imports (import_specifier alias: (identifier) @local.import.named)))`},
		{Name: "export", Pattern: `
			(export_statement declaration: (function_declaration name: (identifier) @local.export.name))
			(export_statement declaration: (class_declaration name: (identifier) @local.export.name))
			(export_statement declaration: (lexical_declaration (variable_declarator name: (identifier) @local.export.name)))
			(export_statement (export_clause (export_specifier name: (identifier) @local.export.name)))
			(export_statement (export_clause (export_specifier alias: (identifier) @local.export.name)))`},
	}
}

var scopeKinds = map[string]model.ScopeKind{
	"function_declaration": model.ScopeFunction,
	"function_expression":  model.ScopeFunction,
	"arrow_function":       model.ScopeFunction,
	"method_definition":    model.ScopeFunction,
	"class_declaration":    model.ScopeClass,
	"statement_block":      model.ScopeBlock,
	"for_statement":        model.ScopeFor,
	"for_in_statement":     model.ScopeFor,
	"catch_clause":         model.ScopeCatch,
	"program":              model.ScopeModule,
}

func (Provider) ScopeKind(nodeType string) (model.ScopeKind, bool) {
	k, ok := scopeKinds[nodeType]
	return k, ok
}

func (Provider) Seals(nodeType string) bool { return false }

func (Provider) IsHoisted(captureName, nodeType string) bool {
	return nodeType == "function_declaration"
}

func (Provider) IsTestFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".test.js") || strings.HasSuffix(lower, ".test.jsx") ||
		strings.HasSuffix(lower, ".spec.js") || strings.HasSuffix(lower, ".spec.jsx") ||
		strings.Contains(lower, "/__tests__/") || strings.Contains(lower, "/test/")
}
