package bindings

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/rdf"
)

// jsonTerm is the SPARQL 1.1 Query Results JSON encoding of a term.
type jsonTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func encodeTerm(t rdf.Term) (jsonTerm, error) {
	switch v := t.(type) {
	case rdf.NamedNode:
		return jsonTerm{Type: "uri", Value: string(v)}, nil
	case rdf.BlankNode:
		return jsonTerm{Type: "bnode", Value: string(v)}, nil
	case rdf.Literal:
		jt := jsonTerm{Type: "literal", Value: v.Value, Lang: v.Language}
		if v.Language == "" && v.Datatype != "" && v.Datatype != rdf.XSDString {
			jt.Datatype = string(v.Datatype)
		}
		return jt, nil
	default:
		return jsonTerm{}, errors.Newf("term %s cannot appear in a solution", t)
	}
}

func decodeTerm(jt jsonTerm) (rdf.Term, error) {
	switch jt.Type {
	case "uri":
		return rdf.NamedNode(jt.Value), nil
	case "bnode":
		return rdf.BlankNode(jt.Value), nil
	case "literal", "typed-literal":
		switch {
		case jt.Lang != "":
			return rdf.NewLangLiteral(jt.Value, jt.Lang), nil
		case jt.Datatype != "":
			return rdf.NewTypedLiteral(jt.Value, rdf.NamedNode(jt.Datatype)), nil
		default:
			return rdf.NewLiteral(jt.Value), nil
		}
	default:
		return nil, errors.Newf("unknown term type %q", jt.Type)
	}
}

// MarshalJSON encodes b as a SPARQL JSON solution object with sorted keys.
func (b Bindings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range b.Variables() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal variable %q", v)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		jt, err := encodeTerm(b.m[v])
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", v)
		}
		valBytes, err := json.Marshal(jt)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal term for %q", v)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a SPARQL JSON solution object.
func (b *Bindings) UnmarshalJSON(data []byte) error {
	var raw map[string]jsonTerm
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := make(map[string]rdf.Term, len(raw))
	for v, jt := range raw {
		t, err := decodeTerm(jt)
		if err != nil {
			return errors.Wrapf(err, "variable %q", v)
		}
		m[v] = t
	}
	b.m = m
	return nil
}

// Results is a SPARQL 1.1 Query Results JSON document.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Bindings `json:"bindings"`
	} `json:"results"`
}

// NewResults builds a results document for the given variables and rows.
func NewResults(vars []string, rows []Bindings) *Results {
	r := &Results{}
	r.Head.Vars = append([]string{}, vars...)
	r.Results.Bindings = append([]Bindings{}, rows...)
	return r
}

// WriteResults encodes rows as an indented SPARQL JSON results document.
func WriteResults(w io.Writer, vars []string, rows []Bindings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewResults(vars, rows))
}
