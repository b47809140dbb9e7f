// Package indexer implements C5, the Per-File Indexer: it drives C1-C4 in
// order (query -> scope -> definition -> reference) and assembles their
// output into one immutable model.SemanticIndex. It is a pure function of
// (source, language); no registry or cross-file state is touched here.
package indexer

import (
	"context"
	"fmt"

	"github.com/minio/highwayhash"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne-sub018/definition"
	"github.com/CRJFisher/ariadne-sub018/diagnostic"
	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
	"github.com/CRJFisher/ariadne-sub018/reference"
	"github.com/CRJFisher/ariadne-sub018/scope"
)

// hashKey is a fixed 32-byte highwayhash key; content hashes only need to be
// stable within one process, not cryptographically keyed per project.
var hashKey = []byte("ariadne-content-hash-key-0123456")

// Index is the pure per-file pipeline. provider must be the Provider
// registered for language (see lang.For).
func Index(filePath string, source []byte, language model.Language, provider lang.Provider) (*model.SemanticIndex, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	parser := sitter.NewParser()
	parser.SetLanguage(provider.SitterLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.ParseError, filePath, err.Error()))
		return nil, diags
	}
	root := tree.RootNode()
	if root.HasError() {
		diags = append(diags, diagnostic.New(diagnostic.ParseError, filePath, "source contains syntax errors; partial index only"))
	}

	scopeCaptures, err := query.Run(root, source, provider.SitterLanguage(), provider.ScopeQueries())
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.QueryError, filePath, err.Error()))
	}
	defCaptures, err := query.Run(root, source, provider.SitterLanguage(), provider.DefinitionQueries())
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.QueryError, filePath, err.Error()))
	}
	refCaptures, err := query.Run(root, source, provider.SitterLanguage(), provider.ReferenceQueries())
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.QueryError, filePath, err.Error()))
	}
	impCaptures, err := query.Run(root, source, provider.SitterLanguage(), provider.ImportExportQueries())
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.QueryError, filePath, err.Error()))
	}

	fileRange := query.NodeLocation(filePath, root)

	scopeResult, scopeDiags := scope.Build(filePath, fileRange, scopeCaptures, provider)
	diags = append(diags, scopeDiags...)

	exportNames := reference.ExportedNames(filePath, impCaptures)
	defs, typeSeeds := definition.Build(filePath, source, defCaptures, scopeResult, exportNames, provider)

	allReferenceCaptures := append(append([]query.Capture{}, refCaptures...), impCaptures...)
	refs, exports, imports := reference.Build(filePath, source, allReferenceCaptures, scopeResult, defs, provider)

	hash, err := ContentHash(source)
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.ParseError, filePath, fmt.Sprintf("content hash: %v", err)))
	}

	return &model.SemanticIndex{
		FilePath:      filePath,
		Language:      language,
		RootScopeId:   scopeResult.RootScopeId,
		Scopes:        scopeResult.Scopes,
		Definitions:   defs,
		References:    refs,
		Exports:       exports,
		Imports:       imports,
		TypeSeeds:     typeSeeds,
		ContentHash:   hash,
	}, diags
}

// ContentHash is the highwayhash digest project.UpdateFile compares against
// a revision's previous digest to short-circuit re-resolution when a file's
// bytes are unchanged (spec.md §7.3).
func ContentHash(src []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(src); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
