package skillet

import "fmt"

// PrimitiveWrapperField is the single property name used to wrap non-object
// values at the top level of a wire document.
const PrimitiveWrapperField = "__wrappedPrimitive"

// NodeID addresses a node inside a Graph. Two references to the same shape
// share a NodeID; this is how repetition and cycles are expressed.
type NodeID int32

// NoNode marks an absent node reference.
const NoNode NodeID = -1

// Kind is the closed set of schema node kinds.
type Kind uint8

const (
	kindUnset Kind = iota
	KindString
	KindLiteral
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindEnum
	KindObject
	KindArray
	KindAnyOf
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindLiteral:
		return "literal"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindAnyOf:
		return "anyOf"
	default:
		return "unset"
	}
}

// Bounds holds the numeric constraints of Number and Integer nodes.
type Bounds struct {
	MultipleOf       *float64
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
}

// Field is one named property of an Object node. Fields are ordered.
type Field struct {
	Name string
	Node NodeID
}

// Node is one vertex of the schema graph. Which fields are meaningful
// depends on Kind.
type Node struct {
	Kind        Kind
	Description string
	Streaming   bool

	// String
	Format  string
	Pattern string

	// Literal: string, float64 or bool.
	Literal any

	// Number, Integer
	Bounds Bounds

	// Enum
	Entries []string

	// Object
	Fields []Field

	// Array
	Element  NodeID
	MinItems *int
	MaxItems *int

	// AnyOf
	Options []NodeID
}

// Field looks up a property of an Object node by name.
func (n Node) Field(name string) (NodeID, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return NoNode, false
}

// Graph is an arena of schema nodes. Nodes are written while a schema is
// being built and only read afterwards.
type Graph struct {
	nodes []Node
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph { return &Graph{} }

// Add appends a node and returns its id.
func (g *Graph) Add(n Node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Reserve allocates an id whose node is filled in later with Set. It is the
// building block for recursive shapes.
func (g *Graph) Reserve() NodeID { return g.Add(Node{}) }

// Set replaces the node stored at id.
func (g *Graph) Set(id NodeID, n Node) {
	if !g.Has(id) {
		panic(fmt.Sprintf("skillet: node %d out of range", id))
	}
	g.nodes[id] = n
}

// Has reports whether id addresses a node in the graph.
func (g *Graph) Has(id NodeID) bool { return id >= 0 && int(id) < len(g.nodes) }

// Node returns a copy of the node stored at id. Unknown ids yield a node
// whose Kind is unset.
func (g *Graph) Node(id NodeID) Node {
	if !g.Has(id) {
		return Node{}
	}
	return g.nodes[id]
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// Children returns the ids directly referenced by the node at id, in
// declaration order.
func (g *Graph) Children(id NodeID) []NodeID {
	n := g.Node(id)
	switch n.Kind {
	case KindObject:
		out := make([]NodeID, len(n.Fields))
		for i, f := range n.Fields {
			out[i] = f.Node
		}
		return out
	case KindArray:
		return []NodeID{n.Element}
	case KindAnyOf:
		return append([]NodeID(nil), n.Options...)
	}
	return nil
}

// Schema is a rooted view over a Graph.
type Schema struct {
	graph *Graph
	root  NodeID
}

// NewSchema roots g at id.
func NewSchema(g *Graph, root NodeID) *Schema { return &Schema{graph: g, root: root} }

// Graph returns the underlying arena.
func (s *Schema) Graph() *Graph { return s.graph }

// Root returns the root node id.
func (s *Schema) Root() NodeID { return s.root }

// RootNode returns the root node.
func (s *Schema) RootNode() Node { return s.graph.Node(s.root) }

// IsStreaming reports whether partial content of n is exposed while it is
// still arriving. Only String, Array and Object honour the flag.
func IsStreaming(n Node) bool {
	switch n.Kind {
	case KindString, KindArray, KindObject:
		return n.Streaming
	}
	return false
}
