package rdf

import (
	"strings"

	"golang.org/x/text/language"
)

// Well-known datatype IRIs.
const (
	XSDString     NamedNode = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger    NamedNode = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean    NamedNode = "http://www.w3.org/2001/XMLSchema#boolean"
	RDFLangString NamedNode = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is a sealed interface over RDF terms.
// Only NamedNode, BlankNode, Literal, Variable and DefaultGraph implement it.
//
// String returns the canonical N-Triples-like form of the term. Two terms are
// equal iff their canonical forms are equal.
type Term interface {
	term() // Sealed - only these types implement it
	String() string
}

// NamedNode is an IRI.
type NamedNode string

func (NamedNode) term() {}

func (n NamedNode) String() string {
	return "<" + string(n) + ">"
}

// BlankNode is a blank node label without the "_:" prefix.
type BlankNode string

func (BlankNode) term() {}

func (b BlankNode) String() string {
	return "_:" + string(b)
}

// Variable is a query variable name without the "?" prefix.
type Variable string

func (Variable) term() {}

func (v Variable) String() string {
	return "?" + string(v)
}

// DefaultGraph identifies the default graph in quad positions.
type DefaultGraph struct{}

func (DefaultGraph) term() {}

func (DefaultGraph) String() string {
	return ""
}

// Literal is an RDF literal.
// Use NewLiteral, NewLangLiteral or NewTypedLiteral so the language tag and
// datatype are normalized; a zero Datatype means xsd:string.
type Literal struct {
	Value    string
	Language string
	Datatype NamedNode
}

func (Literal) term() {}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func (l Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	literalEscaper.WriteString(&b, l.Value)
	b.WriteByte('"')
	switch {
	case l.Language != "":
		b.WriteByte('@')
		b.WriteString(l.Language)
	case l.Datatype != "" && l.Datatype != XSDString:
		b.WriteString("^^")
		b.WriteString(l.Datatype.String())
	}
	return b.String()
}

// NewLiteral creates a plain xsd:string literal.
func NewLiteral(value string) Literal {
	return Literal{Value: value}
}

// NewLangLiteral creates a language-tagged literal.
// The tag is canonicalized (BCP 47) so that "EN-us" and "en-US" compare equal.
// Tags that do not parse are lower-cased instead of rejected.
func NewLangLiteral(value, lang string) Literal {
	return Literal{Value: value, Language: canonicalLanguage(lang), Datatype: RDFLangString}
}

// NewTypedLiteral creates a literal with an explicit datatype.
func NewTypedLiteral(value string, datatype NamedNode) Literal {
	if datatype == XSDString {
		datatype = ""
	}
	return Literal{Value: value, Datatype: datatype}
}

func canonicalLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return tag.String()
}

// Equal reports whether two terms are term-equal.
// A nil term only equals another nil term.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case NamedNode:
		y, ok := b.(NamedNode)
		return ok && x == y
	case BlankNode:
		y, ok := b.(BlankNode)
		return ok && x == y
	case Variable:
		y, ok := b.(Variable)
		return ok && x == y
	case DefaultGraph:
		_, ok := b.(DefaultGraph)
		return ok
	case Literal:
		y, ok := b.(Literal)
		return ok && x.String() == y.String()
	default:
		return a.String() == b.String()
	}
}

// IsVariable reports whether t is a query variable.
func IsVariable(t Term) bool {
	_, ok := t.(Variable)
	return ok
}
