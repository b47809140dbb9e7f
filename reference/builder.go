// Package reference implements C4, the Reference Builder: it pairs each
// reference/import/export capture with its enclosing scope and, for call
// sites, the call type and receiver the AST shape implies.
package reference

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
	"github.com/CRJFisher/ariadne-sub018/scope"
)

// ExportedNames pre-scans export captures for the set of locally-declared
// names a file exports, so C3 can set is_exported while building
// Definitions (before Build below can compute full ExportRecords, which
// need the Definitions to already exist).
func ExportedNames(filePath string, captures []query.Capture) map[string]bool {
	names := map[string]bool{}
	for _, c := range captures {
		if c.Category() != "local" || segmentAt(c.Name, 1) != "export" {
			continue
		}
		if segmentAt(c.Name, 2) != "name" {
			continue
		}
		names[c.Text] = true
	}
	return names
}

// Build turns reference/import/export captures into References,
// ExportRecords and ImportRecords for one file.
func Build(filePath string, src []byte, captures []query.Capture, scopes *scope.Result, defs []*model.Definition, provider lang.Provider) ([]*model.Reference, []model.ExportRecord, []model.ImportRecord) {
	moduleDefs := map[string]*model.Definition{}
	declLocs := map[string]bool{}
	for _, d := range defs {
		declLocs[d.Location.Key()] = true
		if sc, ok := scopes.Scopes[d.ScopeId]; ok && sc.Kind == model.ScopeModule {
			moduleDefs[string(d.Name)] = d
		}
	}

	var exports []model.ExportRecord
	var imports []model.ImportRecord
	var refs []*model.Reference
	consumed := map[string]bool{}

	for _, c := range captures {
		switch c.Category() {
		case "local":
			switch segmentAt(c.Name, 1) {
			case "export":
				exports = append(exports, buildExport(filePath, c, moduleDefs))
			case "import":
				if rec, ok := buildImport(filePath, src, c); ok {
					imports = append(imports, rec)
				}
			}
		case "reference":
			if r, loc := buildCallReference(filePath, src, c, scopes); r != nil {
				refs = append(refs, r)
				consumed[loc] = true
			}
		}
	}

	for _, c := range captures {
		if c.Category() != "reference" || segmentAt(c.Name, 1) != "reference" {
			continue
		}
		loc := c.Location(filePath)
		key := loc.Key()
		if declLocs[key] || consumed[key] {
			continue
		}
		refs = append(refs, &model.Reference{
			Name:     model.SymbolName(c.Text),
			Type:     model.RefRead,
			Location: loc,
			ScopeId:  scopes.ScopeOf(loc),
		})
	}

	return refs, exports, imports
}

func buildExport(filePath string, c query.Capture, moduleDefs map[string]*model.Definition) model.ExportRecord {
	rec := model.ExportRecord{FilePath: filePath, ExportedName: c.Text}
	if d, ok := moduleDefs[c.Text]; ok {
		rec.LocalSymbolId = d.SymbolId
		rec.IsTypeOnly = d.Kind == model.KindInterface || d.Kind == model.KindTypeAlias
	}
	return rec
}

func buildImport(filePath string, src []byte, c query.Capture) (model.ImportRecord, bool) {
	qualifier := segmentAt(c.Name, 2)
	switch qualifier {
	case "default", "namespace":
		return model.ImportRecord{
			FilePath:           filePath,
			ImportPath:         fieldText(ancestorByType(c.Node, "import_statement"), "source", src),
			ImportedName:       c.Text,
			LocalBindingSymbol: model.MakeSymbolId(model.KindImportBinding, filePath, c.Text, ""),
			IsNamespace:        qualifier == "namespace",
		}, true
	case "named":
		if alias := c.Node.Parent(); alias != nil && alias.ChildByFieldName("alias") != nil {
			// the paired alias capture builds the record; this name alone
			// would duplicate it.
			return model.ImportRecord{}, false
		}
		path := fieldText(ancestorByType(c.Node, "import_statement"), "source", src)
		if path == "" {
			path = fieldText(ancestorByType(c.Node, "import_from_statement"), "module_name", src)
		}
		return model.ImportRecord{
			FilePath:           filePath,
			ImportPath:         path,
			ImportedName:       c.Text,
			LocalBindingSymbol: model.MakeSymbolId(model.KindImportBinding, filePath, c.Text, ""),
		}, true
	case "alias":
		parent := c.Node.Parent()
		original := c.Text
		if parent != nil {
			if n := parent.ChildByFieldName("name"); n != nil {
				original = string(src[n.StartByte():n.EndByte()])
			}
		}
		path := fieldText(ancestorByType(c.Node, "import_statement"), "source", src)
		if path == "" {
			path = fieldText(ancestorByType(c.Node, "import_from_statement"), "module_name", src)
		}
		return model.ImportRecord{
			FilePath:           filePath,
			ImportPath:         path,
			ImportedName:       original,
			LocalBindingSymbol: model.MakeSymbolId(model.KindImportBinding, filePath, c.Text, ""),
		}, true
	case "module":
		name := lastSegment(c.Text)
		return model.ImportRecord{
			FilePath:           filePath,
			ImportPath:         c.Text,
			ImportedName:       name,
			LocalBindingSymbol: model.MakeSymbolId(model.KindImportBinding, filePath, name, ""),
			IsNamespace:        true,
		}, true
	case "use":
		name := lastSegment(strings.ReplaceAll(c.Text, "::", "."))
		return model.ImportRecord{
			FilePath:           filePath,
			ImportPath:         c.Text,
			ImportedName:       name,
			LocalBindingSymbol: model.MakeSymbolId(model.KindImportBinding, filePath, name, ""),
		}, true
	default:
		return model.ImportRecord{}, false
	}
}

// buildCallReference handles the four reference.call.* capture qualifiers
// (function, constructor, method, ambiguous).
// It returns nil when the capture is not a recognized call shape.
func buildCallReference(filePath string, src []byte, c query.Capture, scopes *scope.Result) (*model.Reference, string) {
	qualifier := segmentAt(c.Name, 2)
	loc := c.Location(filePath)
	scopeId := scopes.ScopeOf(loc)

	switch qualifier {
	case "function":
		return &model.Reference{
			Name:     model.SymbolName(c.Text),
			Type:     model.RefCall,
			Location: loc,
			ScopeId:  scopeId,
			CallType: model.CallFunction,
		}, loc.Key()
	case "constructor":
		return &model.Reference{
			Name:     model.SymbolName(c.Text),
			Type:     model.RefCall,
			Location: loc,
			ScopeId:  scopeId,
			CallType: model.CallConstructor,
		}, loc.Key()
	case "method", "ambiguous":
		member := ancestorByType(c.Node, "member_expression")
		if member == nil {
			member = ancestorByType(c.Node, "field_expression")
		}
		if member == nil {
			member = ancestorByType(c.Node, "attribute")
		}
		var receiver *model.Receiver
		if member != nil {
			if obj := member.ChildByFieldName("object"); obj != nil {
				receiver = &model.Receiver{
					Name:     string(src[obj.StartByte():obj.EndByte()]),
					Location: query.NodeLocation(filePath, obj),
				}
			} else if obj := member.ChildByFieldName("value"); obj != nil {
				receiver = &model.Receiver{
					Name:     string(src[obj.StartByte():obj.EndByte()]),
					Location: query.NodeLocation(filePath, obj),
				}
			}
		}
		callType := model.CallMethod
		if qualifier == "ambiguous" {
			// Python's "ambiguous" capture is a bare-identifier call, which
			// has no enclosing attribute node, so it becomes a function
			// call; a receiver, if one were found, would make it a method.
			if receiver == nil {
				callType = model.CallFunction
			}
		}
		return &model.Reference{
			Name:       model.SymbolName(c.Text),
			Type:       model.RefCall,
			Location:   loc,
			ScopeId:    scopeId,
			CallType:   callType,
			Receiver:   receiver,
			MethodName: c.Text,
		}, loc.Key()
	default:
		return nil, ""
	}
}

func ancestorByType(n *sitter.Node, nodeType string) *sitter.Node {
	for p := n; p != nil; p = p.Parent() {
		if p.Type() == nodeType {
			return p
		}
	}
	return nil
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	if n == nil {
		return ""
	}
	f := n.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return strings.Trim(string(src[f.StartByte():f.EndByte()]), "\"'")
}

func lastSegment(s string) string {
	s = strings.Trim(s, "\"'")
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func segmentAt(name string, idx int) string {
	depth := 0
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			if depth == idx {
				return name[start:i]
			}
			depth++
			start = i + 1
		}
	}
	return ""
}
