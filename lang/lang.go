// Package lang resolves a file extension to a supported Language and
// dispatches to the per-language Provider that supplies the tree-sitter
// grammar, capture queries, and scope-boundary rules C1-C4 need.
package lang

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
)

// Provider is the per-language adapter C1-C4 drive. Each of the four
// supported languages (spec.md §6) registers one.
type Provider interface {
	Language() model.Language
	SitterLanguage() *sitter.Language

	// ScopeQueries/DefinitionQueries/ReferenceQueries/ImportExportQueries
	// return the named query sources C1 executes for that concern.
	ScopeQueries() []query.QuerySource
	DefinitionQueries() []query.QuerySource
	ReferenceQueries() []query.QuerySource
	ImportExportQueries() []query.QuerySource

	// ScopeKind maps a scope-creating node's tree-sitter type to its
	// model.ScopeKind. ok is false for node types that do not create a scope.
	ScopeKind(nodeType string) (kind model.ScopeKind, ok bool)

	// Seals reports whether a scope rooted at nodeType seals (definitions
	// inside do not leak to an ancestor lookup) per spec.md §4.C2.
	Seals(nodeType string) bool

	// IsHoisted reports whether a definition capture name/node-type pair
	// represents a hoisted declaration (visible throughout its enclosing
	// scope, not just after the declaration line).
	IsHoisted(captureName, nodeType string) bool

	// IsTestFile applies the language's test-file heuristic (spec.md §4.C3).
	IsTestFile(filePath string) bool
}

var providers = map[model.Language]Provider{}

// Register adds a Provider to the language registry. Called from each
// lang/<language> package's init().
func Register(p Provider) {
	providers[p.Language()] = p
}

// ErrUnsupportedLanguage is returned by Detect for an unrecognized extension.
type ErrUnsupportedLanguage struct{ Extension string }

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("language not supported: extension %q", e.Extension)
}

// Detect maps a file extension to a Language, per spec.md §6 Ingress:
// .ts/.tsx -> typescript, .js/.jsx -> javascript, .py -> python, .rs -> rust.
func Detect(filePath string) (model.Language, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".ts", ".tsx":
		return model.TypeScript, nil
	case ".js", ".jsx", ".mjs", ".cjs":
		return model.JavaScript, nil
	case ".py":
		return model.Python, nil
	case ".rs":
		return model.Rust, nil
	default:
		return "", &ErrUnsupportedLanguage{Extension: ext}
	}
}

// For returns the registered Provider for a language.
func For(l model.Language) (Provider, bool) {
	p, ok := providers[l]
	return p, ok
}
