package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CRJFisher/ariadne-sub018/indexer"
	"github.com/CRJFisher/ariadne-sub018/lang"
	_ "github.com/CRJFisher/ariadne-sub018/lang/typescript"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
	"github.com/CRJFisher/ariadne-sub018/resolve"
)

func indexTS(t *testing.T, file, source string) *model.SemanticIndex {
	t.Helper()
	provider, ok := lang.For(model.TypeScript)
	require.True(t, ok)
	idx, diags := indexer.Index(file, []byte(source), model.TypeScript, provider)
	require.Empty(t, diags)
	return idx
}

func TestLexicalWalkFindsEnclosingDeclaration(t *testing.T) {
	src := `
function outer(): number {
  const x = 1;
  function inner(): number {
    return x;
  }
  return inner();
}
`
	regs := registry.NewSet()
	regs.ReplaceFile(indexTS(t, "a.ts", src))

	resolver := resolve.New(regs, func(string, string) (string, bool) { return "", false })
	result, diags := resolver.ResolveFile("a.ts")
	assert.Empty(t, diags)

	var x *model.Definition
	for _, d := range regs.Definitions.ByFile("a.ts") {
		if string(d.Name) == "x" {
			x = d
		}
	}
	require.NotNil(t, x)

	refs := result.ReferencesToSymbol[x.SymbolId]
	assert.NotEmpty(t, refs, "inner()'s read of x should resolve lexically to outer's x")
}

func TestImportHandoffAcrossFiles(t *testing.T) {
	libIdx := indexTS(t, "lib.ts", `
export function helper(): number {
  return 1;
}
`)
	mainIdx := indexTS(t, "main.ts", `
import { helper } from "./lib";
export function run(): number {
  return helper();
}
`)
	regs := registry.NewSet()
	regs.ReplaceFile(libIdx)
	regs.ReplaceFile(mainIdx)

	resolvePath := func(fromFile, importPath string) (string, bool) {
		if importPath == "./lib" {
			return "lib.ts", true
		}
		return "", false
	}
	resolver := resolve.New(regs, resolvePath)
	result, diags := resolver.ResolveFile("main.ts")
	assert.Empty(t, diags)

	var helper *model.Definition
	for _, d := range regs.Definitions.ByFile("lib.ts") {
		if string(d.Name) == "helper" {
			helper = d
		}
	}
	require.NotNil(t, helper)

	resolutions, ok := result.ResolvedReferences[helperCallLocationKey(t, regs)]
	require.True(t, ok)
	require.Len(t, resolutions, 1)
	assert.Equal(t, helper.SymbolId, resolutions[0].SymbolId)
	assert.Equal(t, model.Certain, resolutions[0].Confidence)
}

// helperCallLocationKey finds the Reference to "helper" inside main.ts's
// call expression, so the test can key into ResolvedReferences without
// hardcoding a line/column.
func helperCallLocationKey(t *testing.T, regs *registry.Set) string {
	t.Helper()
	for _, ref := range regs.References.ByFile("main.ts") {
		if ref.Type == model.RefCall && string(ref.Name) == "helper" {
			return ref.Location.Key()
		}
	}
	t.Fatal("no call reference to helper found")
	return ""
}
