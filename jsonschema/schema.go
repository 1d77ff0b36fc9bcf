package jsonschema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// Draft07 is the $schema value of every emitted document.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is the draft-07 subset used on the wire. Field order follows the
// order in which keywords are printed.
type Schema struct {
	Schema string `json:"$schema,omitempty"`
	Ref    string `json:"$ref,omitempty"`

	// Core
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`

	// String
	Format  string `json:"format,omitempty"`
	Pattern string `json:"pattern,omitempty"`

	// Literal / Enum
	Const any   `json:"const,omitempty"`
	Enum  []any `json:"enum,omitempty"`

	// Number
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// Object
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties *bool       `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`

	Defs *Properties `json:"$defs,omitempty"`
}

// Properties is an insertion-ordered map of named schemas, used for
// "properties" and "$defs".
type Properties struct {
	keys []string
	m    map[string]*Schema
}

// NewProperties returns an empty ordered map.
func NewProperties() *Properties { return &Properties{m: map[string]*Schema{}} }

// Set stores s under key, keeping the first insertion position.
func (p *Properties) Set(key string, s *Schema) {
	if p.m == nil {
		p.m = map[string]*Schema{}
	}
	if _, ok := p.m[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.m[key] = s
}

// Get returns the schema stored under key.
func (p *Properties) Get(key string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.m[key]
	return s, ok
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of entries.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// MarshalJSON writes the entries in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.m[k])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its key order.
func (p *Properties) UnmarshalJSON(b []byte) error {
	var parser fastjson.Parser
	v, err := parser.ParseBytes(b)
	if err != nil {
		return err
	}
	obj, err := v.Object()
	if err != nil {
		return err
	}
	out := NewProperties()
	var firstErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if firstErr != nil {
			return
		}
		s := &Schema{}
		if err := json.Unmarshal(val.MarshalTo(nil), s); err != nil {
			firstErr = fmt.Errorf("property %q: %w", key, err)
			return
		}
		out.Set(string(key), s)
	})
	if firstErr != nil {
		return firstErr
	}
	*p = *out
	return nil
}
