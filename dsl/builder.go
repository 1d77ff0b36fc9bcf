package dsl

import (
	"fmt"

	skillet "github.com/reoring/skillet"
)

// Builder constructs schema nodes in one Graph. Nodes built by the same
// Builder may be shared freely; sharing a NodeID shares the shape.
type Builder struct {
	g *skillet.Graph
	// Streaming builds nodes whose partial content is exposed while it
	// arrives.
	Streaming Streaming
}

// New returns a Builder over a fresh Graph.
func New() *Builder {
	b := &Builder{g: skillet.NewGraph()}
	b.Streaming = Streaming{b: b}
	return b
}

// Graph returns the arena the Builder writes to.
func (b *Builder) Graph() *skillet.Graph { return b.g }

// Build roots the graph at root.
func (b *Builder) Build(root skillet.NodeID) *skillet.Schema { return skillet.NewSchema(b.g, root) }

func (b *Builder) add(n skillet.Node, opts []Opt) skillet.NodeID {
	for _, o := range opts {
		if o != nil {
			o(&n)
		}
	}
	return b.g.Add(n)
}

// String returns a string node.
func (b *Builder) String(desc string, opts ...Opt) skillet.NodeID {
	return b.add(skillet.Node{Kind: skillet.KindString, Description: desc}, opts)
}

// Number returns a number node.
func (b *Builder) Number(desc string, opts ...Opt) skillet.NodeID {
	return b.add(skillet.Node{Kind: skillet.KindNumber, Description: desc}, opts)
}

// Integer returns an integer node.
func (b *Builder) Integer(desc string, opts ...Opt) skillet.NodeID {
	return b.add(skillet.Node{Kind: skillet.KindInteger, Description: desc}, opts)
}

// Boolean returns a boolean node.
func (b *Builder) Boolean(desc string) skillet.NodeID {
	return b.g.Add(skillet.Node{Kind: skillet.KindBoolean, Description: desc})
}

// Null returns a null node.
func (b *Builder) Null() skillet.NodeID {
	return b.g.Add(skillet.Node{Kind: skillet.KindNull})
}

// Literal returns a node accepting exactly v. v must be a string, a bool or
// a number; integer types are stored as float64. Other types are kept as is
// and rejected when the schema is emitted.
func (b *Builder) Literal(v any) skillet.NodeID {
	v = normalizeLiteral(v)
	return b.g.Add(skillet.Node{Kind: skillet.KindLiteral, Description: fmt.Sprint(v), Literal: v})
}

// Enum returns a node accepting one of entries.
func (b *Builder) Enum(desc string, entries ...string) skillet.NodeID {
	return b.g.Add(skillet.Node{Kind: skillet.KindEnum, Description: desc, Entries: append([]string(nil), entries...)})
}

// Object returns an object node. Every field is required; field order is
// kept.
func (b *Builder) Object(desc string, fields ...skillet.Field) skillet.NodeID {
	return b.g.Add(skillet.Node{Kind: skillet.KindObject, Description: desc, Fields: append([]skillet.Field(nil), fields...)})
}

// Array returns an array node of elem.
func (b *Builder) Array(desc string, elem skillet.NodeID, opts ...Opt) skillet.NodeID {
	return b.add(skillet.Node{Kind: skillet.KindArray, Description: desc, Element: elem}, opts)
}

// AnyOf returns a node matching any of options, tried in order.
func (b *Builder) AnyOf(options ...skillet.NodeID) skillet.NodeID {
	return b.g.Add(skillet.Node{Kind: skillet.KindAnyOf, Options: append([]skillet.NodeID(nil), options...)})
}

// Declare reserves a node to be filled by Define. It allows a shape to
// refer to itself:
//
//	tree := b.Declare()
//	b.Define(tree, b.Object("Tree", dsl.F("children", b.Array("Children", tree))))
func (b *Builder) Declare() skillet.NodeID { return b.g.Reserve() }

// Define copies the node def into the declared id.
func (b *Builder) Define(id, def skillet.NodeID) skillet.NodeID {
	b.g.Set(id, b.g.Node(def))
	return id
}

// F names an object field.
func F(name string, node skillet.NodeID) skillet.Field { return skillet.Field{Name: name, Node: node} }

// Streaming is the constructor family for streaming nodes.
type Streaming struct{ b *Builder }

// String returns a streaming string node.
func (s Streaming) String(desc string, opts ...Opt) skillet.NodeID {
	return s.b.add(skillet.Node{Kind: skillet.KindString, Description: desc, Streaming: true}, opts)
}

// Array returns a streaming array node.
func (s Streaming) Array(desc string, elem skillet.NodeID, opts ...Opt) skillet.NodeID {
	return s.b.add(skillet.Node{Kind: skillet.KindArray, Description: desc, Element: elem, Streaming: true}, opts)
}

// Object returns a streaming object node.
func (s Streaming) Object(desc string, fields ...skillet.Field) skillet.NodeID {
	return s.b.g.Add(skillet.Node{Kind: skillet.KindObject, Description: desc, Fields: append([]skillet.Field(nil), fields...), Streaming: true})
}

func normalizeLiteral(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}
