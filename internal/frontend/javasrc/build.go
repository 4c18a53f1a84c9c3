package javasrc

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semdex/internal/frontend"
)

// builder turns a tree-sitter CST into a frontend tree in two passes. The
// first pass collects every declaration into symbol records and member
// tables, so that references to members declared later in the file still
// resolve. The second pass builds nodes and resolves names lexically.
type builder struct {
	src []byte

	pkg         *frontend.Symbol
	decls       map[uint]*frontend.Symbol // keyed by name-token start byte
	anons       map[uint]*frontend.Symbol // anonymous classes, keyed by class_body start byte
	infoByType  map[*frontend.Symbol]*typeInfo
	typesByName map[string]*typeInfo
	varTypes    map[*frontend.Symbol]string // declared type text per variable
	overloads   map[overloadKey]int         // same-name callables seen per owner
	pendingDoc  string

	scope      *scope
	typeStack  []*typeInfo
	inCtorCall bool
}

type typeInfo struct {
	sym        *frontend.Symbol
	members    map[string]*frontend.Symbol
	ctors      []*frontend.Symbol
	typeParams []*frontend.Symbol
}

type scope struct {
	parent *scope
	names  map[string]*frontend.Symbol
}

type overloadKey struct {
	owner *frontend.Symbol
	name  string
}

func newBuilder(src []byte) *builder {
	return &builder{
		src:         src,
		decls:       make(map[uint]*frontend.Symbol),
		anons:       make(map[uint]*frontend.Symbol),
		infoByType:  make(map[*frontend.Symbol]*typeInfo),
		typesByName: make(map[string]*typeInfo),
		varTypes:    make(map[*frontend.Symbol]string),
		overloads:   make(map[overloadKey]int),
	}
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(b.src[n.StartByte():n.EndByte()])
}

func childByKind(n *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c.Kind() == kind {
			return c
		}
	}
	return nil
}

// ============================
// Pass 1: declaration collection
// ============================

// collectChildren walks a container's children in order, tracking doc
// comments so the next declaration can claim the preceding javadoc.
func (b *builder) collectChildren(n *sitter.Node, owner *frontend.Symbol) {
	if n == nil {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "block_comment":
			if doc, ok := javadoc(b.text(c)); ok {
				b.pendingDoc = doc
			}
			continue
		case "line_comment":
			continue
		}
		b.collect(c, owner)
		b.pendingDoc = ""
	}
}

func (b *builder) collect(n *sitter.Node, owner *frontend.Symbol) {
	switch n.Kind() {
	case "package_declaration":
		name := childByKind(n, "scoped_identifier")
		if name == nil {
			name = childByKind(n, "identifier")
		}
		if name != nil {
			b.pkg = &frontend.Symbol{Kind: frontend.SymPackage, Name: b.text(name)}
		}
	case "class_declaration":
		b.collectType(n, owner, frontend.SymClass)
	case "interface_declaration":
		b.collectType(n, owner, frontend.SymInterface)
	case "enum_declaration":
		b.collectType(n, owner, frontend.SymEnum)
	case "annotation_type_declaration":
		b.collectType(n, owner, frontend.SymAnnotationType)
	case "method_declaration":
		b.collectMethod(n, owner, false)
	case "constructor_declaration":
		b.collectMethod(n, owner, true)
	case "field_declaration":
		b.collectVars(n, owner, frontend.SymField)
	case "local_variable_declaration":
		b.collectVars(n, owner, frontend.SymLocal)
	case "formal_parameter", "spread_parameter", "catch_formal_parameter":
		b.collectParam(n, owner)
	case "enum_constant":
		b.collectEnumConstant(n, owner)
	case "object_creation_expression":
		b.collectNewClass(n, owner)
	default:
		b.collectChildren(n, owner)
	}
}

func (b *builder) collectType(n *sitter.Node, owner *frontend.Symbol, kind frontend.SymbolKind) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		b.collectChildren(n, owner)
		return
	}
	sym := &frontend.Symbol{
		Kind:  kind,
		Name:  b.text(nameNode),
		Mods:  b.modifiers(n),
		Owner: b.ownerOr(owner),
		Doc:   b.takeDoc(),
	}
	b.decls[nameNode.StartByte()] = sym
	ti := &typeInfo{sym: sym, members: make(map[string]*frontend.Symbol)}
	b.infoByType[sym] = ti
	if _, exists := b.typesByName[sym.Name]; !exists {
		b.typesByName[sym.Name] = ti
	}
	if pti := b.infoByType[owner]; pti != nil {
		pti.members[sym.Name] = sym
	}

	if tps := childByKind(n, "type_parameters"); tps != nil {
		b.collectTypeParams(tps, sym, ti)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		b.collectChildren(body, sym)
	}
}

func (b *builder) collectMethod(n *sitter.Node, owner *frontend.Symbol, isCtor bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		b.collectChildren(n, owner)
		return
	}
	name := b.text(nameNode)
	kind := frontend.SymMethod
	if isCtor {
		name = "<init>"
		kind = frontend.SymConstructor
	}
	mods := b.modifiers(n)
	// Interface methods are abstract and public at the semantic-model
	// level even without explicit modifiers. Default methods keep the
	// abstract flag too; the emitter strips it.
	if owner != nil && owner.Kind == frontend.SymInterface {
		mods |= frontend.ModPublic
		if !mods.Has(frontend.ModStatic) {
			mods |= frontend.ModAbstract
		}
	}
	sym := &frontend.Symbol{
		Kind:  kind,
		Name:  name,
		Mods:  mods,
		Owner: b.ownerOr(owner),
		Doc:   b.takeDoc(),
	}
	// The overload index is fixed by declaration order, so encoding the
	// same file again yields the same symbol strings.
	k := overloadKey{sym.Owner, name}
	sym.Overload = b.overloads[k]
	b.overloads[k]++
	b.decls[nameNode.StartByte()] = sym
	if ti := b.infoByType[owner]; ti != nil {
		if isCtor {
			ti.ctors = append(ti.ctors, sym)
		} else if _, exists := ti.members[name]; !exists {
			ti.members[name] = sym
		}
	}

	if tps := childByKind(n, "type_parameters"); tps != nil {
		b.collectTypeParams(tps, sym, nil)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		b.collectChildren(params, sym)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		b.collectChildren(body, sym)
	}
}

func (b *builder) collectVars(n *sitter.Node, owner *frontend.Symbol, kind frontend.SymbolKind) {
	mods := b.modifiers(n)
	if kind == frontend.SymField && owner != nil && owner.Kind == frontend.SymInterface {
		mods |= frontend.ModPublic | frontend.ModStatic | frontend.ModFinal
	}
	typeText := b.text(n.ChildByFieldName("type"))
	doc := b.takeDoc()
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() != "variable_declarator" {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		sym := &frontend.Symbol{
			Kind:  kind,
			Name:  b.text(nameNode),
			Mods:  mods,
			Owner: b.ownerOr(owner),
			Doc:   doc,
		}
		b.decls[nameNode.StartByte()] = sym
		b.varTypes[sym] = typeText
		if kind == frontend.SymField {
			if ti := b.infoByType[owner]; ti != nil {
				ti.members[sym.Name] = sym
			}
		}
		if value := c.ChildByFieldName("value"); value != nil {
			b.collect(value, owner)
		}
	}
}

func (b *builder) collectParam(n *sitter.Node, owner *frontend.Symbol) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		if vd := childByKind(n, "variable_declarator"); vd != nil {
			nameNode = vd.ChildByFieldName("name")
		}
	}
	if nameNode == nil {
		return
	}
	kind := frontend.SymLocal
	if owner != nil && (owner.Kind == frontend.SymMethod || owner.Kind == frontend.SymConstructor) && n.Kind() != "catch_formal_parameter" {
		kind = frontend.SymParameter
	}
	sym := &frontend.Symbol{
		Kind:  kind,
		Name:  b.text(nameNode),
		Mods:  b.modifiers(n),
		Owner: b.ownerOr(owner),
	}
	b.decls[nameNode.StartByte()] = sym
	b.varTypes[sym] = b.text(n.ChildByFieldName("type"))
}

func (b *builder) collectEnumConstant(n *sitter.Node, owner *frontend.Symbol) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sym := &frontend.Symbol{
		Kind:  frontend.SymEnumConstant,
		Name:  b.text(nameNode),
		Mods:  frontend.ModPublic | frontend.ModStatic | frontend.ModFinal,
		Owner: b.ownerOr(owner),
		Doc:   b.takeDoc(),
	}
	b.decls[nameNode.StartByte()] = sym
	if owner != nil {
		b.varTypes[sym] = owner.Name
	}
	if ti := b.infoByType[owner]; ti != nil {
		ti.members[sym.Name] = sym
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		b.collectChildren(args, owner)
	}
	if body := childByKind(n, "class_body"); body != nil {
		b.collectChildren(body, owner)
	}
}

func (b *builder) collectNewClass(n *sitter.Node, owner *frontend.Symbol) {
	body := childByKind(n, "class_body")
	if body == nil {
		b.collectChildren(n, owner)
		return
	}
	anon := &frontend.Symbol{Kind: frontend.SymClass, Owner: b.ownerOr(owner)}
	b.anons[body.StartByte()] = anon
	b.infoByType[anon] = &typeInfo{sym: anon, members: make(map[string]*frontend.Symbol)}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "class_body" {
			b.collectChildren(c, anon)
		} else {
			b.collect(c, owner)
		}
	}
}

func (b *builder) collectTypeParams(tps *sitter.Node, owner *frontend.Symbol, ti *typeInfo) {
	for i := uint(0); i < tps.ChildCount(); i++ {
		tp := tps.Child(i)
		if tp.Kind() != "type_parameter" {
			continue
		}
		nameNode := childByKind(tp, "type_identifier")
		if nameNode == nil {
			nameNode = childByKind(tp, "identifier")
		}
		if nameNode == nil {
			continue
		}
		sym := &frontend.Symbol{
			Kind:  frontend.SymTypeParameter,
			Name:  b.text(nameNode),
			Owner: owner,
		}
		b.decls[nameNode.StartByte()] = sym
		if ti != nil {
			ti.typeParams = append(ti.typeParams, sym)
		}
	}
}

// sealTypes synthesizes the implicit constructor for classes that declare
// none, so object-creation expressions still resolve.
func (b *builder) sealTypes() {
	for sym, ti := range b.infoByType {
		if len(ti.ctors) > 0 {
			continue
		}
		if sym.Kind == frontend.SymClass || sym.Kind == frontend.SymEnum {
			ti.ctors = append(ti.ctors, &frontend.Symbol{
				Kind:  frontend.SymConstructor,
				Name:  "<init>",
				Owner: sym,
			})
		}
	}
}

func (b *builder) modifiers(n *sitter.Node) frontend.Modifier {
	mods := childByKind(n, "modifiers")
	if mods == nil {
		return 0
	}
	var out frontend.Modifier
	for i := uint(0); i < mods.ChildCount(); i++ {
		switch mods.Child(i).Kind() {
		case "public":
			out |= frontend.ModPublic
		case "private":
			out |= frontend.ModPrivate
		case "protected":
			out |= frontend.ModProtected
		case "static":
			out |= frontend.ModStatic
		case "abstract":
			out |= frontend.ModAbstract
		case "final":
			out |= frontend.ModFinal
		case "default":
			out |= frontend.ModDefault
		}
	}
	return out
}

func (b *builder) ownerOr(owner *frontend.Symbol) *frontend.Symbol {
	if owner != nil {
		return owner
	}
	return b.pkg
}

func (b *builder) takeDoc() string {
	d := b.pendingDoc
	b.pendingDoc = ""
	return d
}

// javadoc strips the comment delimiters from a /** ... */ block.
func javadoc(comment string) (string, bool) {
	if !strings.HasPrefix(comment, "/**") {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(comment, "/**"), "*/")
	return strings.TrimSpace(body), true
}
