package model

// Parameter describes a callable's formal parameter.
type Parameter struct {
	Name string
	Type string
}

// Definition is the sum type over every named entity the indexer tracks.
// Kind-specific fields are populated only for the kinds that use them; see
// spec.md §3.
type Definition struct {
	SymbolId   SymbolId
	Name       SymbolName
	Kind       DefinitionKind
	Location   Location
	ScopeId    string
	IsExported bool
	IsTest     bool
	Signature  string

	// Annotations holds decorator metadata, keyed by decorator name. Only
	// decorator captures fill it (the Python provider emits them); comment
	// tags, JSDoc and Rust attributes are not collected.
	Annotations map[string]string

	// Callable-specific fields (function, method, constructor).
	Parameters []Parameter
	ReturnType string

	// Class/struct/interface/trait-specific fields.
	BaseClasses []string
	Implements  []string
	Members     []SymbolId

	// IsAnonymous marks a synthetic Function Definition built from an
	// unbound arrow/function expression (e.g. a callback argument with no
	// variable binding of its own) — spec.md §4.C10's third
	// callback-invocation case.
	IsAnonymous bool

	// FunctionScopeId is the scope id of a callable's own body. It is set
	// for a named Function/Method/Constructor whose declaration owns a
	// scope, and when a Variable/Constant's initializer is itself a
	// function-valued expression (arrow function, function expression,
	// lambda, closure). It lets C11 treat such a binding as a callable the
	// same way it treats a named function/method Definition (spec.md
	// §4.C10's "locally-assigned function-typed variable"), without
	// disturbing ScopeId, which stays the scope the *name* is visible from.
	FunctionScopeId string
}

// OwnsCallableScope reports whether d has a function body scope of its own
// for C11 to build a CallableNode from: every Function/Method/Constructor
// does, and so does a Variable/Constant whose initializer was a
// function-valued expression.
func (d *Definition) OwnsCallableScope() bool {
	return d.Kind.IsCallable() || d.FunctionScopeId != ""
}

// CallableScopeId returns the scope id of d's own function body:
// FunctionScopeId when set, otherwise ScopeId (an anonymous function's
// ScopeId is its own body scope).
func (d *Definition) CallableScopeId() string {
	if d.FunctionScopeId != "" {
		return d.FunctionScopeId
	}
	return d.ScopeId
}

// CallableNode is a Definition known to be callable, enriched with the call
// references found in its body.
type CallableNode struct {
	SymbolId      SymbolId
	Name          SymbolName
	Location      Location
	Definition    *Definition
	EnclosedCalls []*Reference
	IsTest        bool
}

// ExportRecord records one name a file makes visible to importers.
type ExportRecord struct {
	FilePath      string
	ExportedName  string
	LocalSymbolId SymbolId
	IsTypeOnly    bool
}

// ImportRecord records one binding a file pulls in from another module.
type ImportRecord struct {
	FilePath            string
	ImportPath          string
	ImportedName        string
	LocalBindingSymbol  SymbolId
	IsNamespace         bool
	IsTypeOnly          bool
}
