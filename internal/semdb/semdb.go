// Package semdb defines the index document model: per-file symbol
// occurrences and symbol metadata with exact, zero-based source ranges.
package semdb

import "encoding/json"

// Schema identifies the document layout version.
const Schema = "semanticdb4"

// LanguageJava is the fixed language tag for documents produced by this tool.
const LanguageJava = "java"

// Role says whether an occurrence defines a symbol or references it.
type Role int

const (
	RoleUnspecified Role = iota
	RoleDefinition
	RoleReference
)

// String returns the role name used in JSON output.
func (r Role) String() string {
	switch r {
	case RoleDefinition:
		return "DEFINITION"
	case RoleReference:
		return "REFERENCE"
	default:
		return "UNSPECIFIED"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "DEFINITION":
		*r = RoleDefinition
	case "REFERENCE":
		*r = RoleReference
	default:
		*r = RoleUnspecified
	}
	return nil
}

// Range is a half-open source region. Lines and characters are zero-based
// and counted in source code units. A valid range has End strictly after
// Start.
type Range struct {
	StartLine      int `json:"start_line"`
	StartCharacter int `json:"start_character"`
	EndLine        int `json:"end_line"`
	EndCharacter   int `json:"end_character"`
}

// Valid reports whether both endpoints are non-negative and the end comes
// strictly after the start.
func (r Range) Valid() bool {
	if r.StartLine < 0 || r.StartCharacter < 0 || r.EndLine < 0 || r.EndCharacter < 0 {
		return false
	}
	if r.EndLine != r.StartLine {
		return r.EndLine > r.StartLine
	}
	return r.EndCharacter > r.StartCharacter
}

// Occurrence records one textual mention of a symbol.
type Occurrence struct {
	Symbol string `json:"symbol"`
	Range  Range  `json:"range"`
	Role   Role   `json:"role"`
}

// Kind classifies a declared symbol.
type Kind int

const (
	KindUnspecified Kind = iota
	KindClass
	KindInterface
	KindField
	KindMethod
	KindConstructor
	KindTypeParameter
)

// String returns the kind name used in JSON output.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "CLASS"
	case KindInterface:
		return "INTERFACE"
	case KindField:
		return "FIELD"
	case KindMethod:
		return "METHOD"
	case KindConstructor:
		return "CONSTRUCTOR"
	case KindTypeParameter:
		return "TYPE_PARAMETER"
	default:
		return "UNSPECIFIED"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "CLASS":
		*k = KindClass
	case "INTERFACE":
		*k = KindInterface
	case "FIELD":
		*k = KindField
	case "METHOD":
		*k = KindMethod
	case "CONSTRUCTOR":
		*k = KindConstructor
	case "TYPE_PARAMETER":
		*k = KindTypeParameter
	default:
		*k = KindUnspecified
	}
	return nil
}

// Property bits describe declaration modifiers. Bits combine with OR.
type Property int

const (
	PropertyEnumValue Property = 1 << iota
	PropertyStatic
	PropertyAbstract
	PropertyFinal
	PropertyDefault
)

// Has reports whether all bits of p are set.
func (ps Property) Has(p Property) bool { return ps&p == p }

// AccessKind discriminates the Access variants.
type AccessKind int

const (
	AccessUnspecified AccessKind = iota
	AccessPrivate
	AccessPublic
	AccessProtected
	AccessPrivateWithin
)

// String returns the access name used in JSON output.
func (k AccessKind) String() string {
	switch k {
	case AccessPrivate:
		return "PRIVATE"
	case AccessPublic:
		return "PUBLIC"
	case AccessProtected:
		return "PROTECTED"
	case AccessPrivateWithin:
		return "PRIVATE_WITHIN"
	default:
		return "UNSPECIFIED"
	}
}

func (k AccessKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *AccessKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "PRIVATE":
		*k = AccessPrivate
	case "PUBLIC":
		*k = AccessPublic
	case "PROTECTED":
		*k = AccessProtected
	case "PRIVATE_WITHIN":
		*k = AccessPrivateWithin
	default:
		*k = AccessUnspecified
	}
	return nil
}

// Access describes symbol visibility. Within is set only for
// AccessPrivateWithin and holds the enclosing declaration's symbol.
type Access struct {
	Kind   AccessKind `json:"kind"`
	Within string     `json:"within,omitempty"`
}

// PrivateAccess returns private visibility.
func PrivateAccess() Access { return Access{Kind: AccessPrivate} }

// PublicAccess returns public visibility.
func PublicAccess() Access { return Access{Kind: AccessPublic} }

// ProtectedAccess returns protected visibility.
func ProtectedAccess() Access { return Access{Kind: AccessProtected} }

// PrivateWithinAccess returns package-private visibility scoped to the
// enclosing declaration's symbol.
func PrivateWithinAccess(within string) Access {
	return Access{Kind: AccessPrivateWithin, Within: within}
}

// Documentation carries a symbol's attached doc comment.
type Documentation struct {
	Format  string `json:"format"`
	Message string `json:"message"`
}

// Signature is a structural type signature produced by an external
// collaborator. The payload is opaque to this package.
type Signature struct {
	Text string `json:"text"`
}

// Annotation is one annotation tree produced by an external collaborator.
type Annotation struct {
	Symbol string   `json:"symbol"`
	Args   []string `json:"args,omitempty"`
}

// SymbolInformation is the metadata record emitted once per definition.
type SymbolInformation struct {
	Symbol        string         `json:"symbol"`
	Kind          Kind           `json:"kind"`
	Properties    Property       `json:"properties"`
	DisplayName   string         `json:"display_name"`
	Access        Access         `json:"access"`
	Documentation *Documentation `json:"documentation,omitempty"`
	Signature     *Signature     `json:"signature,omitempty"`
	Annotations   []Annotation   `json:"annotations,omitempty"`
}

// Document is the per-file index aggregate.
type Document struct {
	Schema      string              `json:"schema"`
	Language    string              `json:"language"`
	URI         string              `json:"uri"`
	Text        string              `json:"text,omitempty"`
	MD5         string              `json:"md5"`
	Occurrences []Occurrence        `json:"occurrences"`
	Symbols     []SymbolInformation `json:"symbols"`
}
