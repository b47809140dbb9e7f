// Package python is the lang.Provider for Python sources.
package python

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

func init() {
	lang.Register(Provider{})
}

// Provider implements lang.Provider for Python.
type Provider struct{}

func (Provider) Language() model.Language { return model.Python }

func (Provider) SitterLanguage() *sitter.Language { return python.GetLanguage() }

func (Provider) ScopeQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "scope.function", Pattern: `
			[ (function_definition) (lambda) ] @local.scope.function`},
		{Name: "scope.class", Pattern: `(class_definition) @local.scope.class`},
		{Name: "scope.for", Pattern: `(for_statement) @local.scope.for`},
		{Name: "scope.catch", Pattern: `(except_clause) @local.scope.catch`},
		{Name: "scope.block", Pattern: `(block) @local.scope.block`},
	}
}

func (Provider) DefinitionQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "def.function", Pattern: `
			(function_definition name: (identifier) @local.definition.function)`},
		{Name: "def.class", Pattern: `
			(class_definition name: (identifier) @local.definition.class)`},
		{Name: "def.parameter", Pattern: `
			[
			  (parameters (identifier) @local.definition.parameter)
			  (parameters (default_parameter name: (identifier) @local.definition.parameter))
			  (parameters (typed_parameter (identifier) @local.definition.parameter))
			]`},
		{Name: "def.assignment", Pattern: `
			(assignment left: (identifier) @local.definition.variable)`},
		{Name: "def.decorator", Pattern: `
			(decorator (identifier) @local.annotation.decorator)
			(decorator (call function: (identifier) @local.annotation.decorator))`},
		{Name: "def.types", Pattern: `
			(typed_parameter type: (type (identifier) @local.annotation.param_type))
			(function_definition return_type: (type (identifier) @local.annotation.return_type))`},
		{Name: "def.superclass", Pattern: `
			(class_definition superclasses: (argument_list (identifier) @local.annotation.extends))`},
		{Name: "def.anonymous_function", Pattern: `
			(argument_list (lambda) @local.definition.anonymous_function)`},
	}
}

func (Provider) ReferenceQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "ref.call", Pattern: `
			(call function: (identifier) @reference.call.ambiguous)
			(call function: (attribute attribute: (identifier) @reference.call.method))`},
		{Name: "ref.identifier", Pattern: `(identifier) @reference.reference`},
	}
}

func (Provider) ImportExportQueries() []query.QuerySource {
	return []query.QuerySource{
		{Name: "import", Pattern: `
			(import_statement (dotted_name) @local.import.module)
			(import_statement (aliased_import name: (dotted_name) @local.import.module alias: (identifier) @local.import.alias))
			(import_from_statement module_name: (dotted_name) @local.import.from_module)
			(import_from_statement name: (dotted_name) @local.import.named)
			(import_from_statement (aliased_import name: (dotted_name) @local.import.named alias: (identifier) @local.import.alias))`},
	}
}

var scopeKinds = map[string]model.ScopeKind{
	"function_definition": model.ScopeFunction,
	"lambda":              model.ScopeFunction,
	"class_definition":    model.ScopeClass,
	"for_statement":       model.ScopeFor,
	"except_clause":       model.ScopeCatch,
	"block":               model.ScopeBlock,
	"module":              model.ScopeModule,
}

func (Provider) ScopeKind(nodeType string) (model.ScopeKind, bool) {
	k, ok := scopeKinds[nodeType]
	return k, ok
}

// Seals is true only for class_definition: the class body is the one Python
// scope whose names a nested function cannot reach; every other scope is
// open to the functions nested in it.
func (Provider) Seals(nodeType string) bool { return nodeType == "class_definition" }

// IsHoisted is always false: Python bindings come into existence sequentially
// when the statement that creates them executes.
func (Provider) IsHoisted(captureName, nodeType string) bool { return false }

func (Provider) IsTestFile(filePath string) bool {
	base := strings.ToLower(filePath)
	i := strings.LastIndexByte(base, '/')
	if i >= 0 {
		base = base[i+1:]
	}
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
}
