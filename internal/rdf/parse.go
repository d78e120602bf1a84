package rdf

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Parse reads a single term in the textual form used by scenario files and
// the CLI:
//
//	<http://example.org/a>    named node
//	_:b0                      blank node
//	?x or $x                  variable
//	"v"  "v"@en  "v"^^<dt>    literals
//	42  -7                    xsd:integer literals
//	true false                xsd:boolean literals
func Parse(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty term")
	}
	t, rest, err := parseTerm(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, errors.Newf("unexpected trailing input %q after term", rest)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant input.
func MustParse(s string) Term {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTerms splits a line of whitespace-separated terms, such as an
// N-Triples statement. A trailing " ." is ignored.
func ParseTerms(line string) ([]Term, error) {
	var terms []Term
	rest := strings.TrimSpace(line)
	for rest != "" {
		if rest == "." {
			break
		}
		t, r, err := parseTerm(rest)
		if err != nil {
			return nil, errors.Wrapf(err, "term %d", len(terms)+1)
		}
		terms = append(terms, t)
		rest = strings.TrimLeftFunc(r, unicode.IsSpace)
	}
	return terms, nil
}

// parseTerm parses one term from the front of s and returns the remainder.
func parseTerm(s string) (Term, string, error) {
	switch {
	case s[0] == '<':
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, "", errors.Newf("unterminated IRI in %q", s)
		}
		return NamedNode(s[1:end]), s[end+1:], nil

	case strings.HasPrefix(s, "_:"):
		label, rest := splitToken(s[2:])
		if label == "" {
			return nil, "", errors.New("empty blank node label")
		}
		return BlankNode(label), rest, nil

	case s[0] == '?' || s[0] == '$':
		name, rest := splitToken(s[1:])
		if name == "" {
			return nil, "", errors.New("empty variable name")
		}
		return Variable(name), rest, nil

	case s[0] == '"':
		return parseLiteral(s)

	default:
		tok, rest := splitToken(s)
		switch {
		case tok == "true" || tok == "false":
			return NewTypedLiteral(tok, XSDBoolean), rest, nil
		case isInteger(tok):
			return NewTypedLiteral(tok, XSDInteger), rest, nil
		default:
			return nil, "", errors.Newf("unrecognized term %q", tok)
		}
	}
}

func parseLiteral(s string) (Term, string, error) {
	var value strings.Builder
	i := 1
	for ; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			break
		}
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				value.WriteByte('\n')
			case 'r':
				value.WriteByte('\r')
			case 't':
				value.WriteByte('\t')
			default:
				value.WriteByte(s[i])
			}
			continue
		}
		value.WriteByte(c)
	}
	if i >= len(s) {
		return nil, "", errors.Newf("unterminated literal in %q", s)
	}
	rest := s[i+1:]

	switch {
	case strings.HasPrefix(rest, "@"):
		lang, r := splitToken(rest[1:])
		if lang == "" {
			return nil, "", errors.New("empty language tag")
		}
		return NewLangLiteral(value.String(), lang), r, nil
	case strings.HasPrefix(rest, "^^"):
		dt, r, err := parseTerm(rest[2:])
		if err != nil {
			return nil, "", errors.Wrap(err, "literal datatype")
		}
		iri, ok := dt.(NamedNode)
		if !ok {
			return nil, "", errors.Newf("literal datatype must be an IRI, got %s", dt)
		}
		return NewTypedLiteral(value.String(), iri), r, nil
	default:
		return NewLiteral(value.String()), rest, nil
	}
}

func splitToken(s string) (string, string) {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
