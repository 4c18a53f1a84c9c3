package javasrc

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semdex/internal/frontend"
)

// ============================
// Pass 2: node construction
// ============================

func (b *builder) push() {
	b.scope = &scope{parent: b.scope, names: make(map[string]*frontend.Symbol)}
}

func (b *builder) pop() {
	b.scope = b.scope.parent
}

func (b *builder) define(name string, sym *frontend.Symbol) {
	if b.scope != nil && name != "" && sym != nil {
		b.scope.names[name] = sym
	}
}

func (b *builder) lookup(name string) *frontend.Symbol {
	for s := b.scope; s != nil; s = s.parent {
		if sym, ok := s.names[name]; ok {
			return sym
		}
	}
	return nil
}

func (b *builder) currentType() *typeInfo {
	if len(b.typeStack) == 0 {
		return nil
	}
	return b.typeStack[len(b.typeStack)-1]
}

func (b *builder) enterType(ti *typeInfo) {
	b.push()
	b.typeStack = append(b.typeStack, ti)
	if ti == nil {
		return
	}
	for name, sym := range ti.members {
		b.define(name, sym)
	}
	for _, tp := range ti.typeParams {
		b.define(tp.Name, tp)
	}
}

func (b *builder) leaveType() {
	b.typeStack = b.typeStack[:len(b.typeStack)-1]
	b.pop()
}

func anchorOf(n *sitter.Node) frontend.Anchor {
	start := int(n.StartByte())
	return frontend.Anchor{Start: start, Point: start, End: int(n.EndByte())}
}

func (b *builder) build(n *sitter.Node) *frontend.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "line_comment", "block_comment":
		return nil
	case "program":
		return b.buildProgram(n)
	case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
		return b.buildType(n)
	case "method_declaration", "constructor_declaration":
		return b.buildMethod(n)
	case "field_declaration", "local_variable_declaration":
		return b.buildVars(n)
	case "formal_parameter", "spread_parameter", "catch_formal_parameter":
		return b.buildParam(n)
	case "enum_constant":
		return b.buildEnumConstant(n)
	case "identifier":
		name := b.text(n)
		return b.leaf(n, frontend.KindIdentifier, name, b.lookup(name))
	case "type_identifier":
		name := b.text(n)
		return b.leaf(n, frontend.KindIdentifier, name, b.resolveTypeName(name))
	case "this":
		return b.buildThis(n)
	case "super":
		return b.leaf(n, frontend.KindIdentifier, "super", nil)
	case "field_access":
		return b.buildFieldAccess(n)
	case "method_invocation":
		return b.buildMethodInvocation(n)
	case "method_reference":
		return b.buildMethodReference(n)
	case "object_creation_expression":
		return b.buildNewClass(n)
	case "explicit_constructor_invocation":
		return b.buildCtorInvocation(n)
	case "block", "constructor_body", "for_statement", "enhanced_for_statement", "lambda_expression":
		b.push()
		defer b.pop()
		return b.other(n)
	default:
		return b.other(n)
	}
}

func (b *builder) leaf(n *sitter.Node, kind frontend.NodeKind, name string, sym *frontend.Symbol) *frontend.Node {
	return &frontend.Node{
		Kind:   kind,
		Anchor: anchorOf(n),
		Sym:    sym,
		Name:   name,
		Text:   b.text(n),
	}
}

func (b *builder) other(n *sitter.Node) *frontend.Node {
	return &frontend.Node{
		Kind:     frontend.KindOther,
		Anchor:   anchorOf(n),
		Text:     b.text(n),
		Children: b.buildChildren(n, nil),
	}
}

func (b *builder) buildChildren(n *sitter.Node, exclude map[uint]bool) []*frontend.Node {
	var out []*frontend.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if exclude != nil && exclude[c.StartByte()] {
			continue
		}
		if built := b.build(c); built != nil {
			out = append(out, built)
		}
	}
	return out
}

func (b *builder) buildProgram(n *sitter.Node) *frontend.Node {
	b.push()
	defer b.pop()
	for name, ti := range b.typesByName {
		b.define(name, ti.sym)
	}
	return b.other(n)
}

func (b *builder) buildType(n *sitter.Node) *frontend.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return b.other(n)
	}
	sym := b.decls[nameNode.StartByte()]
	node := &frontend.Node{
		Kind: frontend.KindClass,
		Anchor: frontend.Anchor{
			Start: int(n.StartByte()),
			Point: int(nameNode.StartByte()),
			End:   int(n.EndByte()),
		},
		Sym:  sym,
		Name: b.text(nameNode),
		Text: b.text(n),
	}

	b.enterType(b.infoByType[sym])
	defer b.leaveType()

	exclude := map[uint]bool{nameNode.StartByte(): true}
	if tps := childByKind(n, "type_parameters"); tps != nil {
		exclude[tps.StartByte()] = true
		node.TypeParams = b.buildTypeParams(tps)
	}
	node.Children = b.buildChildren(n, exclude)
	return node
}

func (b *builder) buildTypeParams(tps *sitter.Node) []*frontend.Node {
	var out []*frontend.Node
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
		sym := b.decls[nameNode.StartByte()]
		b.define(b.text(nameNode), sym)
		out = append(out, &frontend.Node{
			Kind: frontend.KindTypeParameter,
			Anchor: frontend.Anchor{
				Start: int(tp.StartByte()),
				Point: int(nameNode.StartByte()),
				End:   int(tp.EndByte()),
			},
			Sym:      sym,
			Name:     b.text(nameNode),
			Text:     b.text(tp),
			Children: b.buildChildren(tp, map[uint]bool{nameNode.StartByte(): true}),
		})
	}
	return out
}

func (b *builder) buildMethod(n *sitter.Node) *frontend.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return b.other(n)
	}
	sym := b.decls[nameNode.StartByte()]
	node := &frontend.Node{
		Kind: frontend.KindMethod,
		Anchor: frontend.Anchor{
			Start: int(n.StartByte()),
			Point: int(nameNode.StartByte()),
			End:   int(n.EndByte()),
		},
		Sym:  sym,
		Name: b.text(nameNode),
		Text: b.text(n),
	}

	b.push()
	defer b.pop()

	exclude := map[uint]bool{nameNode.StartByte(): true}
	if tps := childByKind(n, "type_parameters"); tps != nil {
		exclude[tps.StartByte()] = true
		node.TypeParams = b.buildTypeParams(tps)
	}
	node.Children = b.buildChildren(n, exclude)
	return node
}

func (b *builder) buildVars(n *sitter.Node) *frontend.Node {
	node := &frontend.Node{
		Kind:   frontend.KindOther,
		Anchor: anchorOf(n),
		Text:   b.text(n),
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() != "variable_declarator" {
			if built := b.build(c); built != nil {
				node.Children = append(node.Children, built)
			}
			continue
		}
		nameNode := c.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		sym := b.decls[nameNode.StartByte()]
		vn := &frontend.Node{
			Kind: frontend.KindVariable,
			Anchor: frontend.Anchor{
				Start: int(c.StartByte()),
				Point: int(nameNode.StartByte()),
				End:   int(c.EndByte()),
			},
			Sym:  sym,
			Name: b.text(nameNode),
			Text: b.text(c),
		}
		// Locals become visible from their declarator on.
		if sym != nil && sym.Kind == frontend.SymLocal {
			b.define(sym.Name, sym)
		}
		if value := c.ChildByFieldName("value"); value != nil {
			vn.Init = b.build(value)
			if vn.Init != nil {
				vn.Children = append(vn.Children, vn.Init)
			}
		}
		node.Children = append(node.Children, vn)
	}
	return node
}

func (b *builder) buildParam(n *sitter.Node) *frontend.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		if vd := childByKind(n, "variable_declarator"); vd != nil {
			nameNode = vd.ChildByFieldName("name")
		}
	}
	if nameNode == nil {
		return b.other(n)
	}
	sym := b.decls[nameNode.StartByte()]
	if sym != nil {
		b.define(sym.Name, sym)
	}
	return &frontend.Node{
		Kind: frontend.KindVariable,
		Anchor: frontend.Anchor{
			Start: int(n.StartByte()),
			Point: int(nameNode.StartByte()),
			End:   int(n.EndByte()),
		},
		Sym:      sym,
		Name:     b.text(nameNode),
		Text:     b.text(n),
		Children: b.buildChildren(n, map[uint]bool{nameNode.StartByte(): true}),
	}
}

func (b *builder) buildEnumConstant(n *sitter.Node) *frontend.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return b.other(n)
	}
	sym := b.decls[nameNode.StartByte()]
	node := &frontend.Node{
		Kind: frontend.KindVariable,
		Anchor: frontend.Anchor{
			Start: int(n.StartByte()),
			Point: int(nameNode.StartByte()),
			End:   int(n.EndByte()),
		},
		Sym:  sym,
		Name: b.text(nameNode),
		Text: b.text(n),
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		// The constant's constructor call carries the rendered argument
		// text used for display names. Its constructor reference itself
		// is synthetic and has no name token, so the initializer node
		// stays unresolved; the arguments are still scanned.
		init := &frontend.Node{
			Kind:   frontend.KindNewClass,
			Anchor: anchorOf(n),
			Text:   b.text(n),
			Args:   b.buildArgs(args),
		}
		node.Init = init
		node.Children = append(node.Children, init.Args...)
	}
	if body := childByKind(n, "class_body"); body != nil {
		if built := b.build(body); built != nil {
			node.Children = append(node.Children, built)
		}
	}
	return node
}

func (b *builder) buildThis(n *sitter.Node) *frontend.Node {
	var sym *frontend.Symbol
	if ti := b.currentType(); ti != nil {
		if b.inCtorCall {
			if len(ti.ctors) > 0 {
				sym = ti.ctors[0]
			}
		} else {
			sym = ti.sym
		}
	}
	return b.leaf(n, frontend.KindIdentifier, "this", sym)
}

func (b *builder) buildCtorInvocation(n *sitter.Node) *frontend.Node {
	node := &frontend.Node{
		Kind:   frontend.KindOther,
		Anchor: anchorOf(n),
		Text:   b.text(n),
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "this" {
			b.inCtorCall = true
			built := b.build(c)
			b.inCtorCall = false
			if built != nil {
				node.Children = append(node.Children, built)
			}
			continue
		}
		if built := b.build(c); built != nil {
			node.Children = append(node.Children, built)
		}
	}
	return node
}

func (b *builder) buildFieldAccess(n *sitter.Node) *frontend.Node {
	obj := n.ChildByFieldName("object")
	fieldNode := n.ChildByFieldName("field")
	if obj == nil || fieldNode == nil {
		return b.other(n)
	}
	name := b.text(fieldNode)
	node := &frontend.Node{
		Kind: frontend.KindMemberSelect,
		Anchor: frontend.Anchor{
			Start: int(n.StartByte()),
			// The member name begins one code unit past the separator.
			Point: int(fieldNode.StartByte()) - 1,
			End:   int(n.EndByte()),
		},
		Sym:  b.resolveMember(obj, name),
		Name: name,
		Text: b.text(n),
	}
	if built := b.build(obj); built != nil {
		node.Children = append(node.Children, built)
	}
	return node
}

func (b *builder) buildMethodInvocation(n *sitter.Node) *frontend.Node {
	obj := n.ChildByFieldName("object")
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return b.other(n)
	}
	name := b.text(nameNode)

	var callee *frontend.Node
	exclude := map[uint]bool{nameNode.StartByte(): true}
	if obj == nil {
		callee = &frontend.Node{
			Kind: frontend.KindIdentifier,
			Anchor: frontend.Anchor{
				Start: int(nameNode.StartByte()),
				Point: int(nameNode.StartByte()),
				End:   int(nameNode.EndByte()),
			},
			Sym:  b.lookup(name),
			Name: name,
			Text: name,
		}
	} else {
		exclude[obj.StartByte()] = true
		callee = &frontend.Node{
			Kind: frontend.KindMemberSelect,
			Anchor: frontend.Anchor{
				Start: int(obj.StartByte()),
				Point: int(nameNode.StartByte()) - 1,
				End:   int(nameNode.EndByte()),
			},
			Sym:  b.resolveMember(obj, name),
			Name: name,
			Text: b.text(n),
		}
		if built := b.build(obj); built != nil {
			callee.Children = append(callee.Children, built)
		}
	}

	node := &frontend.Node{
		Kind:     frontend.KindOther,
		Anchor:   anchorOf(n),
		Text:     b.text(n),
		Children: []*frontend.Node{callee},
	}
	node.Children = append(node.Children, b.buildChildren(n, exclude)...)
	return node
}

func (b *builder) buildMethodReference(n *sitter.Node) *frontend.Node {
	if n.ChildCount() == 0 {
		return b.other(n)
	}
	qualifier := n.Child(0)
	var sym *frontend.Symbol
	name := ""
	for i := n.ChildCount(); i > 0; i-- {
		c := n.Child(i - 1)
		if c.Kind() == "identifier" {
			name = b.text(c)
			sym = b.resolveMember(qualifier, name)
			break
		}
		if c.Kind() == "new" {
			if typeSym := b.resolveTypeName(b.text(qualifier)); typeSym != nil {
				sym = b.ctorFor(typeSym)
			}
			break
		}
	}
	node := &frontend.Node{
		Kind:   frontend.KindMemberReference,
		Anchor: anchorOf(n),
		Sym:    sym,
		Name:   name,
		Text:   b.text(n),
	}
	if built := b.build(qualifier); built != nil {
		node.Children = append(node.Children, built)
	}
	return node
}

func (b *builder) buildNewClass(n *sitter.Node) *frontend.Node {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return b.other(n)
	}
	nameTok, typeArgs := typeParts(typeNode)
	if nameTok == nil {
		return b.other(n)
	}
	typeSym := b.resolveTypeName(b.text(nameTok))

	node := &frontend.Node{
		Kind:   frontend.KindNewClass,
		Anchor: anchorOf(n),
		Name:   b.text(nameTok),
		Text:   b.text(n),
		Ident: &frontend.Node{
			Kind:   frontend.KindIdentifier,
			Anchor: anchorOf(nameTok),
			Sym:    typeSym,
			Name:   b.text(nameTok),
			Text:   b.text(nameTok),
		},
	}
	if typeArgs != nil {
		node.TypeArgs = b.buildChildren(typeArgs, nil)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		node.Args = b.buildArgs(args)
	}

	if body := childByKind(n, "class_body"); body != nil {
		anon := b.anons[body.StartByte()]
		node.Sym = b.ctorFor(anon)
		b.enterType(b.infoByType[anon])
		node.Body = b.other(body)
		b.leaveType()
	} else if typeSym != nil {
		node.Sym = b.ctorFor(typeSym)
	}
	return node
}

// buildArgs builds the expression children of an argument list, leaving
// out the punctuation tokens.
func (b *builder) buildArgs(args *sitter.Node) []*frontend.Node {
	var out []*frontend.Node
	for i := uint(0); i < args.ChildCount(); i++ {
		c := args.Child(i)
		switch c.Kind() {
		case "(", ")", ",":
			continue
		}
		if built := b.build(c); built != nil {
			out = append(out, built)
		}
	}
	return out
}

// typeParts digs the innermost name token and any type arguments out of a
// constructed type: plain, generic, or package qualified.
func typeParts(typeNode *sitter.Node) (nameTok, typeArgs *sitter.Node) {
	switch typeNode.Kind() {
	case "type_identifier":
		return typeNode, nil
	case "generic_type":
		inner := childByKind(typeNode, "type_identifier")
		if inner == nil {
			if scoped := childByKind(typeNode, "scoped_type_identifier"); scoped != nil {
				inner, _ = typeParts(scoped)
			}
		}
		return inner, childByKind(typeNode, "type_arguments")
	case "scoped_type_identifier":
		var last *sitter.Node
		for i := uint(0); i < typeNode.ChildCount(); i++ {
			if c := typeNode.Child(i); c.Kind() == "type_identifier" {
				last = c
			}
		}
		return last, nil
	default:
		return nil, nil
	}
}

// resolveTypeName resolves a bare type name: type parameters and other
// scoped names first, then the file's declared types.
func (b *builder) resolveTypeName(name string) *frontend.Symbol {
	if sym := b.lookup(name); sym != nil {
		switch sym.Kind {
		case frontend.SymClass, frontend.SymInterface, frontend.SymEnum,
			frontend.SymAnnotationType, frontend.SymTypeParameter:
			return sym
		}
	}
	if ti, ok := b.typesByName[name]; ok {
		return ti.sym
	}
	return nil
}

// resolveMember resolves `object.name` best effort: through this, through
// a type name for static members, or through a variable's declared type.
func (b *builder) resolveMember(obj *sitter.Node, name string) *frontend.Symbol {
	objText := b.text(obj)
	if objText == "this" {
		if ti := b.currentType(); ti != nil {
			return ti.members[name]
		}
		return nil
	}
	if ti, ok := b.typesByName[objText]; ok {
		return ti.members[name]
	}
	if sym := b.lookup(objText); sym != nil {
		if declared, ok := b.varTypes[sym]; ok {
			if ti, ok := b.typesByName[baseTypeName(declared)]; ok {
				return ti.members[name]
			}
		}
	}
	return nil
}

func (b *builder) ctorFor(typeSym *frontend.Symbol) *frontend.Symbol {
	if ti := b.infoByType[typeSym]; ti != nil && len(ti.ctors) > 0 {
		return ti.ctors[0]
	}
	return nil
}

// baseTypeName strips generics, arrays, and package qualifiers from a
// declared type's source text.
func baseTypeName(t string) string {
	if i := strings.IndexAny(t, "<["); i >= 0 {
		t = t[:i]
	}
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}
