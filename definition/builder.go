// Package definition implements C3, the Definition Builder: it drives a
// language-specific handler registry keyed by capture qualifier and turns
// each definition capture into a model.Definition with a computed SymbolId.
package definition

import (
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne-sub018/lang"
	"github.com/CRJFisher/ariadne-sub018/model"
	"github.com/CRJFisher/ariadne-sub018/query"
	"github.com/CRJFisher/ariadne-sub018/scope"
)

// kindByQualifier maps a "local.definition.<qualifier>" capture to the
// DefinitionKind its handler produces. One entry is the per-language
// "handler registry" the spec calls for; language packages only need to
// emit captures using these qualifier names to plug into it.
var kindByQualifier = map[string]model.DefinitionKind{
	"function":    model.KindFunction,
	"method":      model.KindMethod,
	"constructor": model.KindConstructor,
	"class":       model.KindClass,
	"interface":   model.KindInterface,
	"struct":      model.KindStruct,
	"trait":       model.KindTrait,
	"type_alias":  model.KindTypeAlias,
	"enum":        model.KindEnum,
	"enumerator":  model.KindEnumerator,
	"variable":    model.KindVariable,
	"constant":    model.KindConstant,
	"parameter":   model.KindParameter,
	"property":    model.KindProperty,
	"field":       model.KindField,
}

// ownsScope reports whether a definition of this kind creates its own
// lexical scope (the scope node and the declaration node share a range).
func ownsScope(k model.DefinitionKind) bool {
	switch k {
	case model.KindFunction, model.KindMethod, model.KindConstructor,
		model.KindClass, model.KindInterface, model.KindStruct,
		model.KindTrait, model.KindEnum:
		return true
	default:
		return false
	}
}

// Build turns definition captures into Definitions, scoped and SymbolId'd
// against the already-built scope tree. The returned TypeSeeds carries
// parse-time type information (explicit annotations, constructor-call
// initializers) for C9 to seed its type registry from.
func Build(filePath string, src []byte, captures []query.Capture, scopes *scope.Result, exportNames map[string]bool, provider lang.Provider) ([]*model.Definition, model.TypeSeeds) {
	b := &builder{
		filePath:       filePath,
		src:            src,
		scopes:         scopes,
		labels:         map[string]string{scopes.RootScopeId: "module"},
		seenNames:      map[string]int{},
		provider:       provider,
		exportNames:    exportNames,
		ownerDefs:      map[string]*model.Definition{},
		containerScope: map[model.SymbolId]string{},
		ctorTypes:      map[model.SymbolId]model.TypeRef{},
	}

	defCaptures := make([]query.Capture, 0, len(captures))
	for _, c := range captures {
		if c.Category() == "local" && secondSegment(c.Name) == "definition" {
			defCaptures = append(defCaptures, c)
		}
	}
	sort.SliceStable(defCaptures, func(i, j int) bool {
		return defCaptures[i].Location(filePath).Before(defCaptures[j].Location(filePath))
	})

	defs := make([]*model.Definition, 0, len(defCaptures))
	for _, c := range defCaptures {
		qualifier := thirdSegment(c.Name)
		if qualifier == "anonymous_function" {
			defs = append(defs, b.buildAnonymousFunction(c))
			continue
		}
		kind, ok := kindByQualifier[qualifier]
		if !ok {
			continue
		}
		defs = append(defs, b.build(c, kind))
	}

	b.attachMembers(defs)
	b.attachHeritage(captures)
	b.attachAnnotations(captures, defs)
	explicitTypes := b.attachTypes(captures, defs)
	b.attachParameters(defs, explicitTypes)
	return defs, model.TypeSeeds{Explicit: explicitTypes, Constructor: b.ctorTypes}
}

type builder struct {
	filePath    string
	src         []byte
	scopes      *scope.Result
	labels      map[string]string
	seenNames   map[string]int
	provider    lang.Provider
	exportNames map[string]bool

	// ownerDefs maps a scope a definition owns (class/function/...) back to
	// that Definition, so members and heritage captures found inside it can
	// be attributed to their container.
	ownerDefs map[string]*model.Definition
	// containerScope maps a member-kind definition's SymbolId to the scope
	// of the container it was declared in.
	containerScope map[model.SymbolId]string
	// ctorTypes holds the constructed type of each variable/constant whose
	// initializer is a `new Foo()`/`Foo{...}`/`Foo::new(...)`-shaped call,
	// spec.md §4.C9's rule 2.
	ctorTypes map[model.SymbolId]model.TypeRef
}

var memberKinds = map[model.DefinitionKind]bool{
	model.KindMethod:      true,
	model.KindConstructor: true,
	model.KindProperty:    true,
	model.KindField:       true,
	model.KindEnumerator:  true,
}

func (b *builder) build(c query.Capture, kind model.DefinitionKind) *model.Definition {
	loc := c.Location(b.filePath)
	name := c.Text

	scopeId := b.scopes.ScopeOf(loc)
	base := scopeId
	ownId := ""
	if ownsScope(kind) {
		if parent := c.Node.Parent(); parent != nil {
			ploc := query.NodeLocation(b.filePath, parent)
			if id, ok := b.scopes.ByRange(ploc); ok {
				ownId = id
				b.labels[ownId] = name
				if sc, ok := b.scopes.Scopes[ownId]; ok {
					base = sc.ParentScopeId
				}
			}
		}
	}
	if ownId != "" {
		// The name is visible from the scope enclosing the declaration, not
		// from the body scope the declaration owns.
		scopeId = base
	}
	scopePath := b.pathFor(base)

	key := scopeId + "|" + string(kind) + "|" + name
	qualifier := ""
	n := b.seenNames[key]
	b.seenNames[key] = n + 1
	if n > 0 {
		qualifier = strconv.Itoa(loc.StartLine)
	}

	def := &model.Definition{
		SymbolId:   model.MakeSymbolId(kind, scopePath, name, qualifier),
		Name:       model.SymbolName(name),
		Kind:       kind,
		Location:   loc,
		ScopeId:    scopeId,
		IsExported: b.isExported(name, scopeId),
		IsTest:     b.provider.IsTestFile(b.filePath),
	}

	if ownId != "" {
		b.ownerDefs[ownId] = def
		if kind.IsCallable() {
			def.FunctionScopeId = ownId
		}
	}
	if memberKinds[kind] {
		container := scopeId
		if ownId != "" {
			container = base
		}
		b.containerScope[def.SymbolId] = container
	}
	if kind == model.KindVariable || kind == model.KindConstant {
		if ctor := b.constructorRHS(c.Node); ctor != "" {
			b.ctorTypes[def.SymbolId] = model.TypeRef(ctor)
		}
		if fnScope, ok := b.functionRHSScope(c.Node); ok {
			def.FunctionScopeId = fnScope
			b.ownerDefs[fnScope] = def
			b.labels[fnScope] = name
		}
	}
	return def
}

// buildAnonymousFunction handles the "def.anonymous_function" capture every
// provider emits for an unbound arrow/function/lambda/closure expression
// used directly as a call argument (spec.md §8 scenario 2's
// `run(() => {})`). Unlike build(), c.Node here IS the scope-owning node
// itself (there is no separate name token to capture), so its own scope is
// found directly by range rather than via its parent.
func (b *builder) buildAnonymousFunction(c query.Capture) *model.Definition {
	loc := c.Location(b.filePath)
	ownId, ok := b.scopes.ByRange(loc)
	if !ok {
		ownId = b.scopes.ScopeOf(loc)
	}
	const name = "<anonymous>"
	b.labels[ownId] = name

	base := ownId
	if sc, ok := b.scopes.Scopes[ownId]; ok {
		base = sc.ParentScopeId
	}
	scopePath := b.pathFor(base)
	qualifier := strconv.Itoa(loc.StartLine) + "." + strconv.Itoa(loc.StartCol)

	def := &model.Definition{
		SymbolId:    model.MakeSymbolId(model.KindFunction, scopePath, name, qualifier),
		Name:        model.SymbolName(name),
		Kind:        model.KindFunction,
		Location:    loc,
		ScopeId:     ownId,
		IsAnonymous: true,
		IsTest:      b.provider.IsTestFile(b.filePath),
	}
	b.ownerDefs[ownId] = def
	return def
}

// functionShapedNodes are the per-language node types a var/const
// initializer can be shaped like to count as "function-typed" for
// spec.md §4.C10's callback-invocation rule and §4.C11's CallableNode
// construction.
var functionShapedNodes = map[string]bool{
	"arrow_function":      true,
	"function_expression":  true,
	"lambda":              true,
	"closure_expression":   true,
}

// functionRHSScope mirrors constructorRHS's ancestor walk but looks for a
// function-shaped initializer instead of a constructor call, returning the
// scope id of that function's own body (already registered by the
// provider's ScopeQueries as a local.scope.function capture over the exact
// same node range).
func (b *builder) functionRHSScope(nameNode *sitter.Node) (string, bool) {
	ancestorTypes, ok := assignmentAncestors[b.provider.Language()]
	if !ok {
		return "", false
	}
	anc := ancestorOfTypes(nameNode, setOf(ancestorTypes))
	if anc == nil {
		return "", false
	}
	value := anc.ChildByFieldName("value")
	if value == nil {
		value = anc.ChildByFieldName("right")
	}
	if value == nil || !functionShapedNodes[value.Type()] {
		return "", false
	}
	return b.scopes.ByRange(query.NodeLocation(b.filePath, value))
}

// assignmentAncestors are the per-language node types whose "value"/"right"
// field holds an initializer expression.
var assignmentAncestors = map[model.Language][]string{
	model.TypeScript: {"variable_declarator"},
	model.JavaScript: {"variable_declarator"},
	model.Python:     {"assignment"},
	model.Rust:       {"let_declaration"},
}

// constructorRHS recognizes var/const initializers shaped like a
// constructor call (`new Foo()`, `Foo{...}`, `Foo::new(...)`, or a
// call to a capitalized name) and returns the constructed type's name.
func (b *builder) constructorRHS(nameNode *sitter.Node) string {
	ancestorTypes, ok := assignmentAncestors[b.provider.Language()]
	if !ok {
		return ""
	}
	anc := ancestorOfTypes(nameNode, setOf(ancestorTypes))
	if anc == nil {
		return ""
	}
	value := anc.ChildByFieldName("value")
	if value == nil {
		value = anc.ChildByFieldName("right")
	}
	if value == nil {
		return ""
	}
	switch value.Type() {
	case "new_expression":
		return nodeText(b.src, value.ChildByFieldName("constructor"))
	case "struct_expression":
		return nodeText(b.src, value.ChildByFieldName("name"))
	case "call_expression":
		fn := value.ChildByFieldName("function")
		if fn != nil && fn.Type() == "scoped_identifier" {
			return nodeText(b.src, fn.ChildByFieldName("path"))
		}
	case "call":
		fn := value.ChildByFieldName("function")
		text := nodeText(b.src, fn)
		if text != "" && text[0] >= 'A' && text[0] <= 'Z' {
			return text
		}
	}
	return ""
}

func setOf(types []string) map[string]bool {
	out := make(map[string]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out
}

func nodeText(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// attachMembers populates each container Definition's Members from the
// member-kind definitions declared directly inside its own scope.
func (b *builder) attachMembers(defs []*model.Definition) {
	for _, d := range defs {
		if !memberKinds[d.Kind] {
			continue
		}
		container, ok := b.containerScope[d.SymbolId]
		if !ok {
			continue
		}
		owner, ok := b.ownerDefs[container]
		if !ok {
			continue
		}
		owner.Members = append(owner.Members, d.SymbolId)
	}
}

// attachHeritage reads extends/implements/trait-impl annotation captures
// (found inside a container's own scope range) and records them on the
// owning class/struct/trait Definition.
func (b *builder) attachHeritage(captures []query.Capture) {
	// Rust: an impl_item scope carries both the target type and the trait it
	// implements as sibling captures; gather them per impl scope first.
	implTarget := map[string]string{}
	implTrait := map[string][]string{}

	for _, c := range captures {
		if c.Category() != "local" || secondSegment(c.Name) != "annotation" {
			continue
		}
		loc := c.Location(b.filePath)
		scopeId := b.scopes.ScopeOf(loc)
		switch thirdSegment(c.Name) {
		case "extends":
			if owner, ok := b.ownerDefs[scopeId]; ok {
				owner.BaseClasses = append(owner.BaseClasses, c.Text)
			}
		case "implements":
			if owner, ok := b.ownerDefs[scopeId]; ok {
				owner.Implements = append(owner.Implements, c.Text)
			}
		case "impl_target":
			implTarget[scopeId] = c.Text
		case "trait_impl":
			implTrait[scopeId] = append(implTrait[scopeId], c.Text)
		}
	}

	if len(implTarget) == 0 {
		return
	}
	byName := map[string]*model.Definition{}
	for _, d := range b.ownerDefs {
		byName[string(d.Name)] = d
	}
	for implScope, typeName := range implTarget {
		owner, ok := byName[typeName]
		if !ok {
			continue
		}
		owner.Implements = append(owner.Implements, implTrait[implScope]...)
	}
}

// attachAnnotations attaches decorator captures to the nearest following
// definition in the same scope (the common decorator/annotation placement).
func (b *builder) attachAnnotations(captures []query.Capture, defs []*model.Definition) {
	type ann struct {
		loc     model.Location
		scopeId string
		text    string
	}
	var anns []ann
	for _, c := range captures {
		if c.Category() != "local" || secondSegment(c.Name) != "annotation" {
			continue
		}
		if thirdSegment(c.Name) != "decorator" {
			continue
		}
		loc := c.Location(b.filePath)
		anns = append(anns, ann{loc: loc, scopeId: b.scopes.ScopeOf(loc), text: c.Text})
	}
	if len(anns) == 0 {
		return
	}
	for _, a := range anns {
		var target *model.Definition
		for _, d := range defs {
			if d.ScopeId != a.scopeId || !a.loc.Before(d.Location) {
				continue
			}
			if target == nil || d.Location.Before(target.Location) {
				target = d
			}
		}
		if target == nil {
			continue
		}
		if target.Annotations == nil {
			target.Annotations = map[string]string{}
		}
		target.Annotations[a.text] = ""
	}
}

// attachParameters groups parameter Definitions by the callable scope they
// were declared in and copies them onto that callable's Parameters field.
func (b *builder) attachParameters(defs []*model.Definition, explicitTypes map[model.SymbolId]model.TypeRef) {
	for _, d := range defs {
		if d.Kind != model.KindParameter {
			continue
		}
		owner, ok := b.ownerDefs[d.ScopeId]
		if !ok {
			continue
		}
		owner.Parameters = append(owner.Parameters, model.Parameter{
			Name: string(d.Name),
			Type: string(explicitTypes[d.SymbolId]),
		})
	}
}

// paramAncestorTypes are the per-language node types that wrap a parameter's
// name and its type annotation together.
var paramAncestorTypes = map[string]bool{
	"required_parameter": true,
	"optional_parameter": true,
	"typed_parameter":     true,
	"parameter":           true,
}

// attachTypes consumes the "def.types" captures (param_type/return_type
// annotations) the TypeScript, Python and Rust providers emit (the
// JavaScript provider emits none): a return-type annotation sits inside
// its owning callable's own scope range, so it attaches directly; a
// parameter-type annotation is matched back to its sibling parameter
// Definition by location, since the two are separate captures with no
// match-level grouping.
func (b *builder) attachTypes(captures []query.Capture, defs []*model.Definition) map[model.SymbolId]model.TypeRef {
	paramByLoc := map[string]*model.Definition{}
	for _, d := range defs {
		if d.Kind == model.KindParameter {
			paramByLoc[d.Location.Key()] = d
		}
	}

	explicit := map[model.SymbolId]model.TypeRef{}
	for _, c := range captures {
		if c.Category() != "local" || secondSegment(c.Name) != "annotation" {
			continue
		}
		switch thirdSegment(c.Name) {
		case "return_type":
			loc := c.Location(b.filePath)
			scopeId := b.scopes.ScopeOf(loc)
			if owner, ok := b.ownerDefs[scopeId]; ok {
				owner.ReturnType = c.Text
			}
		case "param_type":
			ancestor := ancestorOfTypes(c.Node, paramAncestorTypes)
			nameNode := paramNameNode(ancestor)
			if nameNode == nil {
				continue
			}
			loc := query.NodeLocation(b.filePath, nameNode)
			if d, ok := paramByLoc[loc.Key()]; ok {
				explicit[d.SymbolId] = model.TypeRef(c.Text)
			}
		}
	}
	return explicit
}

func ancestorOfTypes(n *sitter.Node, types map[string]bool) *sitter.Node {
	for p := n; p != nil; p = p.Parent() {
		if types[p.Type()] {
			return p
		}
	}
	return nil
}

// paramNameNode finds a parameter node's bound name: the "pattern" field
// where the grammar names one (TypeScript, Rust), or else the first plain
// identifier child (Python's typed_parameter has no named field for it).
func paramNameNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if p := n.ChildByFieldName("pattern"); p != nil {
		return p
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == "identifier" {
			return child
		}
	}
	return nil
}

// pathFor renders the scope_path by walking from scopeId up to (and
// including) the module root, oldest ancestor first.
func (b *builder) pathFor(scopeId string) string {
	var segs []string
	id := scopeId
	depth := 0
	for id != "" && depth < scope.MaxDepth {
		depth++
		if label, ok := b.labels[id]; ok && label != "" {
			segs = append(segs, label)
		} else if sc, ok := b.scopes.Scopes[id]; ok && sc.Kind == model.ScopeModule {
			segs = append(segs, "module")
		} else if ok {
			segs = append(segs, string(sc.Kind))
		}
		sc, ok := b.scopes.Scopes[id]
		if !ok || sc.ParentScopeId == "" {
			break
		}
		id = sc.ParentScopeId
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	if len(segs) == 0 {
		return "module"
	}
	return strings.Join(segs, "/")
}

// isExported cross-references the file's export captures first (explicit
// `export`/`pub` syntax wins); absent that, top-level bindings default to
// exported unless the language's naming convention says otherwise (Python's
// leading underscore).
func (b *builder) isExported(name, scopeId string) bool {
	if exported, ok := b.exportNames[name]; ok {
		return exported
	}
	sc, ok := b.scopes.Scopes[scopeId]
	if !ok || sc.Kind != model.ScopeModule {
		return false
	}
	return !strings.HasPrefix(name, "_")
}

func secondSegment(name string) string { return segmentAt(name, 1) }
func thirdSegment(name string) string  { return segmentAt(name, 2) }

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
