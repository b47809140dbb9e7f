// Package typescript is the lang.Provider for TypeScript/TSX sources.
// JavaScript uses the same capture names; package javascript defines its
// own queries, without the type-only constructs.
package typescript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

func init() {
	lang.Register(Provider{})
}

// Provider implements lang.Provider for TypeScript.
type Provider struct{}

func (Provider) Language() model.Language { return model.TypeScript }

func (Provider) SitterLanguage() *sitter.Language { return typescript.GetLanguage() }

func (Provider) ScopeQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "scope.function", Pattern: `
			[
			  (function_declaration) @local.scope.function
			  (function_expression) @local.scope.function
			  (arrow_function) @local.scope.function
			  (method_definition) @local.scope.function
			] `},
		{Name: "scope.class", Pattern: `
			[
			  (class_declaration) @local.scope.class
			  (interface_declaration) @local.scope.class
			] `},
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
			(class_declaration name: (type_identifier) @local.definition.class)`},
		{Name: "def.interface", Pattern: `
			(interface_declaration name: (type_identifier) @local.definition.interface)`},
		{Name: "def.type_alias", Pattern: `
			(type_alias_declaration name: (type_identifier) @local.definition.type_alias)`},
		{Name: "def.enum", Pattern: `
			(enum_declaration name: (identifier) @local.definition.enum)`},
		{Name: "def.variable", Pattern: `
			(variable_declarator name: (identifier) @local.definition.variable)`},
		{Name: "def.parameter", Pattern: `
			(required_parameter pattern: (identifier) @local.definition.parameter)
			(optional_parameter pattern: (identifier) @local.definition.parameter)`},
		{Name: "def.property", Pattern: `
			(public_field_definition name: (property_identifier) @local.definition.property)`},
		{Name: "def.anonymous_function", Pattern: `
			(arguments (arrow_function) @local.definition.anonymous_function)
			(arguments (function_expression) @local.definition.anonymous_function)`},
		{Name: "def.types", Pattern: `
			(required_parameter pattern: (identifier) type: (type_annotation [(type_identifier) (predefined_type)] @local.annotation.param_type))
			(optional_parameter pattern: (identifier) type: (type_annotation [(type_identifier) (predefined_type)] @local.annotation.param_type))
			(function_declaration return_type: (type_annotation [(type_identifier) (predefined_type)] @local.annotation.return_type))
			(method_definition return_type: (type_annotation [(type_identifier) (predefined_type)] @local.annotation.return_type))`},
		{Name: "def.heritage", Pattern: `
			(class_declaration (class_heritage (extends_clause value: (identifier) @local.annotation.extends)))
			(class_declaration (class_heritage (implements_clause (type_identifier) @local.annotation.implements)))
			(interface_declaration (extends_type_clause (type_identifier) @local.annotation.implements))`},
	}
}

func (Provider) ReferenceQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "ref.call", Pattern: `
			(call_expression function: (identifier) @reference.call.function)
			(call_expression function: (member_expression property: (property_identifier) @reference.call.method))
			(new_expression constructor: (identifier) @reference.call.constructor)`},
		{Name: "ref.identifier", Pattern: `(identifier) @reference.reference`},
		{Name: "ref.type", Pattern: `(type_identifier) @reference.type`},
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
			(export_statement declaration: (class_declaration name: (type_identifier) @local.export.name))
			(export_statement declaration: (interface_declaration name: (type_identifier) @local.export.name))
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
	"interface_declaration": model.ScopeClass,
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

// Seals is true for interface/property-signature scopes: a method
// signature inside an interface does not leak its parameters upward.
func (Provider) Seals(nodeType string) bool {
	return nodeType == "interface_declaration" || nodeType == "method_signature"
}

func (Provider) IsHoisted(captureName, nodeType string) bool {
	// function declarations are hoisted; const/let/class/arrow are not.
	return nodeType == "function_declaration"
}

func (Provider) IsTestFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".test.ts") || strings.HasSuffix(lower, ".test.tsx") ||
		strings.HasSuffix(lower, ".spec.ts") || strings.HasSuffix(lower, ".spec.tsx") ||
		strings.Contains(lower, "/__tests__/") || strings.Contains(lower, "/test/")
}
