package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermString(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"named node", NamedNode("http://ex/a"), "<http://ex/a>"},
		{"blank node", BlankNode("b0"), "_:b0"},
		{"variable", Variable("x"), "?x"},
		{"plain literal", NewLiteral("hi"), `"hi"`},
		{"escaped literal", NewLiteral("a\"b\\c\n"), `"a\"b\\c\n"`},
		{"lang literal", NewLangLiteral("chat", "FR"), `"chat"@fr`},
		{"typed literal", NewTypedLiteral("1", XSDInteger), `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"explicit xsd:string", NewTypedLiteral("s", XSDString), `"s"`},
		{"default graph", DefaultGraph{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(NamedNode("a"), NamedNode("a")))
	assert.False(t, Equal(NamedNode("a"), NamedNode("b")))
	assert.False(t, Equal(NamedNode("a"), BlankNode("a")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(NamedNode("a"), nil))
	assert.False(t, Equal(nil, NamedNode("a")))

	// Language tags compare after canonicalization.
	assert.True(t, Equal(NewLangLiteral("x", "en-us"), NewLangLiteral("x", "EN-US")))
	assert.False(t, Equal(NewLangLiteral("x", "en"), NewLiteral("x")))

	// Malformed lexical content still compares.
	assert.True(t, Equal(NewTypedLiteral("abc", XSDInteger), NewTypedLiteral("abc", XSDInteger)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Term
	}{
		{"<http://ex/a>", NamedNode("http://ex/a")},
		{"  <http://ex/a>  ", NamedNode("http://ex/a")},
		{"_:b1", BlankNode("b1")},
		{"?x", Variable("x")},
		{"$y", Variable("y")},
		{`"plain"`, NewLiteral("plain")},
		{`"with \"quote\""`, NewLiteral(`with "quote"`)},
		{`"bonjour"@fr-ca`, NewLangLiteral("bonjour", "fr-CA")},
		{`"5"^^<http://www.w3.org/2001/XMLSchema#integer>`, NewTypedLiteral("5", XSDInteger)},
		{"42", NewTypedLiteral("42", XSDInteger)},
		{"-7", NewTypedLiteral("-7", XSDInteger)},
		{"true", NewTypedLiteral("true", XSDBoolean)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "<unterminated", `"open`, "?", "_:", "bare", `"x"^^"y"`, "<a> <b>"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParseTerms(t *testing.T) {
	terms, err := ParseTerms(`<http://ex/s> <http://ex/p> "o o"@en <http://ex/g> .`)
	require.NoError(t, err)
	require.Len(t, terms, 4)
	assert.Equal(t, NamedNode("http://ex/s"), terms[0])
	assert.Equal(t, `"o o"@en`, terms[2].String())
	assert.Equal(t, NamedNode("http://ex/g"), terms[3])

	_, err = ParseTerms(`<http://ex/s> nope`)
	assert.Error(t, err)
}
