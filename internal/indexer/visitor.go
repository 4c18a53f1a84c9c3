package indexer

import (
	"strings"

	"github.com/mvp-joe/semdex/internal/frontend"
	"github.com/mvp-joe/semdex/internal/semdb"
	"github.com/mvp-joe/semdex/internal/symbols"
)

// SignatureProvider supplies structural type signatures for declarations.
// Optional; a nil provider means no signatures are attached.
type SignatureProvider interface {
	Signature(sym *frontend.Symbol) *semdb.Signature
}

// AnnotationProvider supplies annotation trees for declaration nodes.
// Optional; a nil provider means no annotations are attached.
type AnnotationProvider interface {
	Annotations(n *frontend.Node) []semdb.Annotation
}

// visitor walks the frontend tree once, classifying nodes into
// definition/reference roles and collecting occurrences and symbol
// information in traversal order.
type visitor struct {
	fe       frontend.Frontend
	globals  *symbols.GlobalCache
	locals   *symbols.LocalCache
	resolver *rangeResolver
	sigs     SignatureProvider
	annos    AnnotationProvider

	occurrences []semdb.Occurrence
	infos       []semdb.SymbolInformation
}

func newVisitor(fe frontend.Frontend, globals *symbols.GlobalCache, source string, sigs SignatureProvider, annos AnnotationProvider) *visitor {
	return &visitor{
		fe:          fe,
		globals:     globals,
		locals:      symbols.NewLocalCache(),
		resolver:    &rangeResolver{lineMap: fe.LineMap(), source: source},
		sigs:        sigs,
		annos:       annos,
		occurrences: []semdb.Occurrence{},
		infos:       []semdb.SymbolInformation{},
	}
}

// scan dispatches on the closed node-kind set. Kinds without a branch
// descend without emitting anything.
func (v *visitor) scan(n *frontend.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case frontend.KindClass:
		v.visitClass(n)
	case frontend.KindMethod:
		v.visitMethod(n)
	case frontend.KindVariable:
		v.visitVariable(n)
	case frontend.KindIdentifier:
		v.visitIdentifier(n)
	case frontend.KindMemberSelect:
		v.visitMemberSelect(n)
	case frontend.KindMemberReference:
		v.visitMemberReference(n)
	case frontend.KindNewClass:
		v.visitNewClass(n)
	default:
		v.scanChildren(n)
	}
}

func (v *visitor) scanChildren(n *frontend.Node) {
	for _, c := range n.Children {
		v.scan(c)
	}
}

func (v *visitor) visitClass(n *frontend.Node) {
	v.emit(n.Sym, n, semdb.RoleDefinition, rangeFromPointToName)
	v.visitTypeParams(n.TypeParams)
	v.scanChildren(n)
}

func (v *visitor) visitMethod(n *frontend.Node) {
	kind := rangeFromPointToName
	if n.Sym != nil && n.Sym.Kind == frontend.SymConstructor {
		// A constructor of an anonymous class has no name token to
		// anchor; skip the declaration entirely.
		if n.Sym.Owner != nil && n.Sym.Owner.Name == "" {
			return
		}
		kind = rangeFromPointWithSearch
	}
	v.emit(n.Sym, n, semdb.RoleDefinition, kind)
	v.visitTypeParams(n.TypeParams)
	v.scanChildren(n)
}

func (v *visitor) visitTypeParams(params []*frontend.Node) {
	for _, tp := range params {
		v.emit(tp.Sym, tp, semdb.RoleDefinition, rangeFromPointToName)
		v.scanChildren(tp)
	}
}

func (v *visitor) visitVariable(n *frontend.Node) {
	v.emit(n.Sym, n, semdb.RoleDefinition, rangeFromPointToName)
	v.scanChildren(n)
}

func (v *visitor) visitIdentifier(n *frontend.Node) {
	if n.Sym == nil || n.Name == "" {
		return
	}
	// `this` only counts as a reference when it delegates to another
	// constructor; the implicit self-reference is noise.
	if n.Name == "this" && n.Sym.Kind != frontend.SymConstructor {
		return
	}
	v.emit(n.Sym, n, semdb.RoleReference, rangeFromSpan)
	v.scanChildren(n)
}

func (v *visitor) visitMemberSelect(n *frontend.Node) {
	v.emit(n.Sym, n, semdb.RoleReference, rangeFromPointToNamePlusOne)
	v.scanChildren(n)
}

func (v *visitor) visitMemberReference(n *frontend.Node) {
	v.emit(n.Sym, n, semdb.RoleReference, rangeFromEndWithSearch)
	v.scanChildren(n)
}

func (v *visitor) visitNewClass(n *frontend.Node) {
	ctor := n.Sym
	if n.Ident != nil && n.Ident.Sym != nil && ctor != nil &&
		ctor.Owner != nil && ctor.Owner.Name != "" {
		v.emit(ctor, n, semdb.RoleReference, rangeFromSearch)
	}

	// Descend manually so the constructed type's identifier is never
	// revisited as a plain identifier, which would emit the class
	// reference twice.
	for _, c := range n.TypeArgs {
		v.scan(c)
	}
	for _, c := range n.Args {
		v.scan(c)
	}
	v.scan(n.Body)
}

// emit resolves a range for the node and appends the occurrence. Nodes with
// no symbol, sentinel symbol strings, and unresolvable ranges are dropped
// silently. Definitions also produce a SymbolInformation record.
func (v *visitor) emit(sym *frontend.Symbol, n *frontend.Node, role semdb.Role, kind rangeKind) {
	if sym == nil {
		return
	}
	ssym := v.globals.Symbol(sym, v.locals)
	if ssym == symbols.None {
		return
	}
	if rng, ok := v.resolver.resolve(n.Anchor, kind, searchName(sym)); ok {
		v.occurrences = append(v.occurrences, semdb.Occurrence{
			Symbol: ssym,
			Range:  rng,
			Role:   role,
		})
	}
	if role == semdb.RoleDefinition {
		v.emitInfo(sym, n, ssym)
	}
}

// emitInfo builds the metadata record for a definition.
func (v *visitor) emitInfo(sym *frontend.Symbol, n *frontend.Node, ssym string) {
	info := semdb.SymbolInformation{
		Symbol:      ssym,
		Kind:        symbolKind(sym),
		Properties:  symbolProperties(sym),
		DisplayName: displayName(sym, n),
		Access:      v.access(sym),
	}

	// Doc retrieval faults on synthetic or partial declarations degrade
	// to no documentation.
	if doc, err := v.fe.Doc(n); err == nil && doc != "" {
		info.Documentation = &semdb.Documentation{Format: "JAVADOC", Message: doc}
	}
	if v.sigs != nil {
		info.Signature = v.sigs.Signature(sym)
	}
	if v.annos != nil {
		if annotations := v.annos.Annotations(n); len(annotations) > 0 {
			info.Annotations = annotations
		}
	}

	v.infos = append(v.infos, info)
}

// symbolKind is the closed kind mapping. Declaration kinds without a branch
// get no kind override.
func symbolKind(sym *frontend.Symbol) semdb.Kind {
	switch sym.Kind {
	case frontend.SymEnum, frontend.SymClass:
		return semdb.KindClass
	case frontend.SymInterface, frontend.SymAnnotationType:
		return semdb.KindInterface
	case frontend.SymField:
		return semdb.KindField
	case frontend.SymMethod:
		return semdb.KindMethod
	case frontend.SymConstructor:
		return semdb.KindConstructor
	case frontend.SymTypeParameter:
		return semdb.KindTypeParameter
	default:
		return semdb.KindUnspecified
	}
}

func symbolProperties(sym *frontend.Symbol) semdb.Property {
	var props semdb.Property
	if sym.Kind == frontend.SymEnum || sym.Kind == frontend.SymEnumConstant {
		props |= semdb.PropertyEnumValue
	}
	if sym.Mods.Has(frontend.ModStatic) {
		props |= semdb.PropertyStatic
	}
	// Default interface methods carry the abstract modifier at the
	// semantic-model level; they must not carry the bit here.
	if sym.Mods.Has(frontend.ModAbstract) && !sym.Mods.Has(frontend.ModDefault) {
		props |= semdb.PropertyAbstract
	}
	if sym.Mods.Has(frontend.ModFinal) {
		props |= semdb.PropertyFinal
	}
	if sym.Mods.Has(frontend.ModDefault) {
		props |= semdb.PropertyDefault
	}
	return props
}

// displayName is the symbol's simple name, except enum constants built with
// constructor arguments, which render as NAME(arg1, arg2, ...).
func displayName(sym *frontend.Symbol, n *frontend.Node) string {
	if sym.Kind == frontend.SymEnumConstant && n.Init != nil && n.Init.Kind == frontend.KindNewClass {
		parts := make([]string, 0, len(n.Init.Args))
		for _, arg := range n.Init.Args {
			parts = append(parts, arg.Text)
		}
		if args := strings.Join(parts, ", "); args != "" {
			return sym.Name + "(" + args + ")"
		}
	}
	return sym.Name
}

func (v *visitor) access(sym *frontend.Symbol) semdb.Access {
	switch {
	case sym.Mods.Has(frontend.ModPrivate):
		return semdb.PrivateAccess()
	case sym.Mods.Has(frontend.ModPublic):
		return semdb.PublicAccess()
	case sym.Mods.Has(frontend.ModProtected):
		return semdb.ProtectedAccess()
	default:
		return semdb.PrivateWithinAccess(v.globals.Symbol(sym.Owner, v.locals))
	}
}

// searchName is the token looked up in source text. Constructors have no
// name token of their own; their class's name is what appears in source.
func searchName(sym *frontend.Symbol) string {
	if sym.Kind == frontend.SymConstructor && sym.Owner != nil {
		return sym.Owner.Name
	}
	return sym.Name
}
