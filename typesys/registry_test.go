package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CRJFisher/ariadne-sub018/lang"
	_ "github.com/CRJFisher/ariadne-sub018/lang/typescript"
	"github.com/CRJFisher/ariadne-sub018/indexer"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/registry"
	"github.com/CRJFisher/ariadne-sub018/resolve"
	"github.com/CRJFisher/ariadne-sub018/typesys"
)

func indexFile(t *testing.T, file, source string) *model.SemanticIndex {
	t.Helper()
	provider, ok := lang.For(model.TypeScript)
	assert.True(t, ok)
	idx, diags := indexer.Index(file, []byte(source), model.TypeScript, provider)
	assert.Empty(t, diags)
	return idx
}

func TestPropagateExplicitAnnotation(t *testing.T) {
	src := `
function greet(name: string): string {
  return name;
}
`
	idx := indexFile(t, "greet.ts", src)
	regs := registry.NewSet()
	regs.ReplaceFile(idx)

	types := typesys.New()
	types.RebuildMembers(regs)

	var param *model.Definition
	for _, d := range regs.Definitions.ByFile("greet.ts") {
		if d.Kind == model.KindParameter {
			param = d
		}
	}
	assert.NotNil(t, param)

	typ, ok := types.TypeOf(param.SymbolId)
	assert.False(t, ok, "symbol_type is only populated by Propagate, not ReplaceFile")

	diags := types.Propagate(regs, []string{"greet.ts"}, map[string]*resolve.Result{})
	assert.Empty(t, diags)

	typ, ok = types.TypeOf(param.SymbolId)
	assert.True(t, ok)
	assert.Equal(t, model.TypeRef("string"), typ)
}

func TestPropagateConstructorRHS(t *testing.T) {
	src := `
class Widget {
  render(): string { return "widget"; }
}
function build() {
  const w = new Widget();
  return w;
}
`
	idx := indexFile(t, "widget.ts", src)
	regs := registry.NewSet()
	regs.ReplaceFile(idx)

	types := typesys.New()
	types.RebuildMembers(regs)
	diags := types.Propagate(regs, []string{"widget.ts"}, map[string]*resolve.Result{})
	assert.Empty(t, diags)

	var w *model.Definition
	for _, d := range regs.Definitions.ByFile("widget.ts") {
		if d.Kind == model.KindVariable && string(d.Name) == "w" {
			w = d
		}
	}
	assert.NotNil(t, w)

	typ, ok := types.TypeOf(w.SymbolId)
	assert.True(t, ok)
	assert.Equal(t, model.TypeRef("Widget"), typ)

	memberId, ok := types.Member(typ, "render")
	assert.True(t, ok)
	member, ok := regs.Definitions.Get(memberId)
	assert.True(t, ok)
	assert.Equal(t, model.KindMethod, member.Kind)
}
