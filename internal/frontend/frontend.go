// Package frontend defines the compiler-facing surface the indexer core
// consumes: a typed syntax tree with a closed set of node kinds, resolved
// symbol records, raw anchor positions, and a line map. Production code
// plugs in the tree-sitter frontend from the javasrc subpackage; tests plug
// in hand-built trees.
package frontend

// NoPos marks an absent byte offset.
const NoPos = -1

// NodeKind is the closed variant of tree nodes the scanner dispatches on.
// Kinds without a dedicated branch default to "descend, emit nothing".
type NodeKind int

const (
	KindOther NodeKind = iota
	KindClass
	KindMethod
	KindVariable
	KindIdentifier
	KindMemberSelect
	KindMemberReference
	KindNewClass
	KindTypeParameter
)

// Anchor is the raw, possibly imprecise position reported for a node.
// Start/End delimit the full span; Point is the preferred position, which
// for declarations usually lands on the name token. Any field may be NoPos.
type Anchor struct {
	Start int
	Point int
	End   int
}

// Node is one tree node. Children holds the remaining sub-nodes in source
// order; kind-specific sub-structure is broken out so the scanner can
// control descent.
type Node struct {
	Kind   NodeKind
	Anchor Anchor
	Sym    *Symbol // resolved entity, nil when resolution failed
	Name   string  // identifier or member name token, "" when absent
	Text   string  // rendered source text of the node

	TypeParams []*Node // KindClass, KindMethod

	// KindNewClass sub-structure. Ident is the constructed type's
	// identifier and is never part of Children.
	Ident    *Node
	TypeArgs []*Node
	Args     []*Node
	Body     *Node

	Init *Node // KindVariable initializer

	Children []*Node
}

// SymbolKind classifies a resolved entity.
type SymbolKind int

const (
	SymOther SymbolKind = iota
	SymPackage
	SymClass
	SymInterface
	SymEnum
	SymAnnotationType
	SymEnumConstant
	SymField
	SymMethod
	SymConstructor
	SymTypeParameter
	SymParameter
	SymLocal
)

// Modifier is a bitset of declaration modifiers.
type Modifier int

const (
	ModPublic Modifier = 1 << iota
	ModPrivate
	ModProtected
	ModStatic
	ModAbstract
	ModFinal
	ModDefault
)

// Has reports whether all bits of m are set.
func (ms Modifier) Has(m Modifier) bool { return ms&m == m }

// Symbol is a resolved program entity. Identity is pointer identity: the
// frontend returns the same *Symbol for every node that resolves to the
// same entity, which the naming caches rely on.
type Symbol struct {
	Kind     SymbolKind
	Name     string // simple name; "" for anonymous classes, "<init>" for constructors
	Mods     Modifier
	Owner    *Symbol // enclosing declaration, nil at the top
	Doc      string  // attached doc comment, "" when absent
	Overload int     // index among the owner's same-name callables, in declaration order
}

// LineMap translates byte offsets to one-based line/column coordinates.
// Columns are counted in bytes, with every tab counted as 8 columns,
// matching javac's internal arithmetic.
type LineMap interface {
	// LineNumber returns the 1-based line containing pos.
	LineNumber(pos int) int
	// ColumnNumber returns the 1-based column of pos within its line,
	// counted in bytes with tabs expanded to 8 columns.
	ColumnNumber(pos int) int
	// LineStart returns the byte offset at which the 1-based line begins.
	LineStart(line int) int
}

// Frontend is the injected compiler capability. Every method is best
// effort: faults degrade rather than abort indexing.
type Frontend interface {
	// Root returns the file's tree, or nil when nothing parsed.
	Root() *Node
	// LineMap returns the file's offset translation service.
	LineMap() LineMap
	// Source returns the raw source text. An error degrades downstream
	// consumers to empty text.
	Source() (string, error)
	// Doc returns the doc comment attached to a declaration node. Any
	// fault degrades to "no documentation".
	Doc(n *Node) (string, error)
}
