// Package model defines the shared data types that flow between every
// component of the indexer: symbols, locations, scopes, definitions,
// references, resolutions and the call graph.
package model

import "fmt"

// SymbolId uniquely identifies a definition within one project snapshot.
// Grammar: kind:scope_path:name[:qualifier].
type SymbolId string

// SymbolName is the raw source identifier token.
type SymbolName string

// Language is one of the four languages this indexer understands.
type Language string

const (
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Python     Language = "python"
	Rust       Language = "rust"
)

// DefinitionKind enumerates the sum type over Definition.
type DefinitionKind string

const (
	KindFunction       DefinitionKind = "function"
	KindMethod         DefinitionKind = "method"
	KindConstructor    DefinitionKind = "constructor"
	KindClass          DefinitionKind = "class"
	KindInterface      DefinitionKind = "interface"
	KindStruct         DefinitionKind = "struct"
	KindTrait          DefinitionKind = "trait"
	KindTypeAlias      DefinitionKind = "type_alias"
	KindEnum           DefinitionKind = "enum"
	KindEnumerator     DefinitionKind = "enumerator"
	KindVariable       DefinitionKind = "variable"
	KindConstant       DefinitionKind = "constant"
	KindParameter      DefinitionKind = "parameter"
	KindProperty       DefinitionKind = "property"
	KindField          DefinitionKind = "field"
	KindImportBinding  DefinitionKind = "import_binding"
	KindExportBinding  DefinitionKind = "export_binding"
)

// IsCallable reports whether a definition of this kind can be a CallableNode.
func (k DefinitionKind) IsCallable() bool {
	return k == KindFunction || k == KindMethod || k == KindConstructor
}

// IsType reports whether a definition of this kind can be the target of a TypeRef.
func (k DefinitionKind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindStruct, KindTrait, KindTypeAlias, KindEnum:
		return true
	}
	return false
}

// MakeSymbolId builds the canonical SymbolId string for a definition.
func MakeSymbolId(kind DefinitionKind, scopePath, name string, qualifier string) SymbolId {
	if qualifier == "" {
		return SymbolId(fmt.Sprintf("%s:%s:%s", kind, scopePath, name))
	}
	return SymbolId(fmt.Sprintf("%s:%s:%s:%s", kind, scopePath, name, qualifier))
}

// TypeRef is a SymbolId of a type-kind definition, or a primitive token
// (e.g. "string", "int") when no definition backs the type name.
type TypeRef string
