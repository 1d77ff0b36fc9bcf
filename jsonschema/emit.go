package jsonschema

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	skillet "github.com/reoring/skillet"
)

// Emit prints s as a draft-07 document. Nodes reached more than once are
// printed once under $defs and referenced with $ref; a recurrence of an
// object root is a reference to "#". A non-object root is wrapped in a
// closed object with the single required property
// skillet.PrimitiveWrapperField.
func Emit(s *skillet.Schema) (*Schema, error) {
	e := &emitter{
		g:      s.Graph(),
		root:   s.Root(),
		seen:   map[skillet.NodeID]bool{},
		repeat: map[skillet.NodeID]bool{},
		names:  map[skillet.NodeID]string{},
	}
	if err := e.discover(e.root, nil); err != nil {
		return nil, err
	}
	e.rootIsObject = e.g.Node(e.root).Kind == skillet.KindObject
	if !e.rootIsObject && e.rootRecurs {
		// "#" would point at the wrapper, so the root goes to $defs too.
		e.order = append([]skillet.NodeID{e.root}, e.order...)
		e.repeat[e.root] = true
	}
	for _, id := range e.order {
		e.names[id] = e.nm.name(e.g.Node(id).Description)
	}

	doc := e.print(e.root, true, skillet.NoNode, map[skillet.NodeID]bool{}, "")
	if !e.rootIsObject {
		doc = envelope(skillet.PrimitiveWrapperField, doc)
	}
	doc.Schema = Draft07
	if len(e.order) > 0 {
		doc.Defs = NewProperties()
		for _, id := range e.order {
			doc.Defs.Set(e.names[id], e.print(id, false, id, map[skillet.NodeID]bool{}, ""))
		}
	}
	// Printing a variant can request further variants.
	for i := 0; i < len(e.variantOrder); i++ {
		id := e.variantOrder[i]
		if doc.Defs == nil {
			doc.Defs = NewProperties()
		}
		field := e.variantOf[id]
		doc.Defs.Set(e.variants[id], e.printObject(e.g.Node(id), skillet.NoNode, map[skillet.NodeID]bool{}, field))
	}
	return doc, nil
}

// EmitJSON emits s and encodes the document as indented JSON.
func EmitJSON(s *skillet.Schema) ([]byte, error) {
	doc, err := Emit(s)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

type emitter struct {
	g            *skillet.Graph
	root         skillet.NodeID
	rootIsObject bool
	rootRecurs   bool
	seen         map[skillet.NodeID]bool
	repeat       map[skillet.NodeID]bool
	order        []skillet.NodeID
	names        map[skillet.NodeID]string
	nm           namer

	// Literal-keyed options that are also shared get a second $defs entry
	// without the literal property.
	variants     map[skillet.NodeID]string
	variantOf    map[skillet.NodeID]string
	variantOrder []skillet.NodeID
}

// discover walks the graph depth-first, recording nodes reached twice and
// rejecting malformed nodes.
func (e *emitter) discover(id skillet.NodeID, path []string) error {
	if !e.g.Has(id) {
		return fail(path, skillet.CodeInvalidSchema, "", fmt.Sprintf("dangling node reference %d", id))
	}
	if e.seen[id] {
		if id == e.root {
			e.rootRecurs = true
			return nil
		}
		if !e.repeat[id] {
			e.repeat[id] = true
			e.order = append(e.order, id)
		}
		return nil
	}
	e.seen[id] = true
	n := e.g.Node(id)
	switch n.Kind {
	case skillet.KindLiteral:
		switch n.Literal.(type) {
		case string, float64, bool:
		default:
			return fail(path, skillet.CodeInvalidSchema, "const", fmt.Sprintf("literal of type %T", n.Literal))
		}
	case skillet.KindEnum:
		if len(n.Entries) == 0 {
			return fail(path, skillet.CodeInvalidSchema, "enum", "enum has no entries")
		}
	case skillet.KindObject:
		names := make(map[string]bool, len(n.Fields))
		for _, f := range n.Fields {
			if names[f.Name] {
				return fail(path, skillet.CodeInvalidSchema, "properties", fmt.Sprintf("duplicate property %q", f.Name))
			}
			names[f.Name] = true
			if err := e.discover(f.Node, append(path, f.Name)); err != nil {
				return err
			}
		}
	case skillet.KindArray:
		if n.MinItems != nil && *n.MinItems < 0 || n.MaxItems != nil && *n.MaxItems < 0 {
			return fail(path, skillet.CodeInvalidSchema, "minItems", "negative item count")
		}
		if n.MinItems != nil && n.MaxItems != nil && *n.MinItems > *n.MaxItems {
			return fail(path, skillet.CodeInvalidSchema, "minItems", "minItems exceeds maxItems")
		}
		return e.discover(n.Element, append(path, "items"))
	case skillet.KindAnyOf:
		if len(n.Options) == 0 {
			return fail(path, skillet.CodeInvalidSchema, "anyOf", "anyOf has no options")
		}
		for i, o := range n.Options {
			if err := e.discover(o, append(path, fmt.Sprintf("anyOf[%d]", i))); err != nil {
				return err
			}
		}
	case skillet.KindString, skillet.KindNumber, skillet.KindInteger, skillet.KindBoolean, skillet.KindNull:
	default:
		return fail(path, skillet.CodeInvalidSchema, "", "node declared but never defined")
	}
	return nil
}

// print renders id. inDef is the node being expanded under its own $defs
// entry; onPath guards against cycles on the current branch; omit names an
// object property left out because it travels as a discriminator key.
func (e *emitter) print(id skillet.NodeID, isRoot bool, inDef skillet.NodeID, onPath map[skillet.NodeID]bool, omit string) *Schema {
	if !isRoot && id == e.root && e.rootIsObject {
		return &Schema{Ref: "#"}
	}
	if name, ok := e.names[id]; ok && id != inDef {
		return &Schema{Ref: "#/$defs/" + name}
	}
	if onPath[id] {
		if name, ok := e.names[id]; ok {
			return &Schema{Ref: "#/$defs/" + name}
		}
		return &Schema{Ref: "#"}
	}
	onPath[id] = true
	defer delete(onPath, id)

	n := e.g.Node(id)
	switch n.Kind {
	case skillet.KindString:
		return &Schema{Type: "string", Description: n.Description, Format: n.Format, Pattern: n.Pattern}
	case skillet.KindLiteral:
		return &Schema{Type: literalType(n.Literal), Const: n.Literal, Description: n.Description}
	case skillet.KindNumber, skillet.KindInteger:
		b := n.Bounds
		return &Schema{
			Type:             n.Kind.String(),
			Description:      n.Description,
			MultipleOf:       b.MultipleOf,
			Minimum:          b.Minimum,
			Maximum:          b.Maximum,
			ExclusiveMinimum: b.ExclusiveMinimum,
			ExclusiveMaximum: b.ExclusiveMaximum,
		}
	case skillet.KindBoolean:
		return &Schema{Type: "boolean", Description: n.Description}
	case skillet.KindNull:
		return &Schema{Type: "null", Description: n.Description}
	case skillet.KindEnum:
		entries := make([]any, len(n.Entries))
		for i, v := range n.Entries {
			entries[i] = v
		}
		return &Schema{Type: "string", Enum: entries, Description: n.Description}
	case skillet.KindObject:
		return e.printObject(n, inDef, onPath, omit)
	case skillet.KindArray:
		return &Schema{
			Type:        "array",
			Description: n.Description,
			Items:       e.print(n.Element, false, inDef, onPath, ""),
			MinItems:    n.MinItems,
			MaxItems:    n.MaxItems,
		}
	case skillet.KindAnyOf:
		out := &Schema{Description: n.Description}
		for _, b := range skillet.Branches(e.g, id) {
			opt := e.printOption(b, inDef, onPath)
			if b.Complex {
				opt = envelope(b.Key, opt)
			}
			out.AnyOf = append(out.AnyOf, opt)
		}
		return out
	}
	return &Schema{}
}

// printOption renders one AnyOf option. The $defs entry of a shared
// literal-keyed object still requires its literal, so the envelope refers to
// a variant entry that leaves it out.
func (e *emitter) printOption(b skillet.Branch, inDef skillet.NodeID, onPath map[skillet.NodeID]bool) *Schema {
	_, shared := e.names[b.Option]
	if b.Option == e.root && e.rootIsObject {
		shared = true
	}
	if b.LiteralField == "" || !shared {
		return e.print(b.Option, false, inDef, onPath, b.LiteralField)
	}
	name, ok := e.variants[b.Option]
	if !ok {
		if e.variants == nil {
			e.variants = map[skillet.NodeID]string{}
			e.variantOf = map[skillet.NodeID]string{}
		}
		name = e.nm.name(e.g.Node(b.Option).Description)
		e.variants[b.Option] = name
		e.variantOf[b.Option] = b.LiteralField
		e.variantOrder = append(e.variantOrder, b.Option)
	}
	return &Schema{Ref: "#/$defs/" + name}
}

// printObject lists non-streaming properties before streaming ones so that
// they are generated, and complete, first.
func (e *emitter) printObject(n skillet.Node, inDef skillet.NodeID, onPath map[skillet.NodeID]bool, omit string) *Schema {
	fields := slices.Clone(n.Fields)
	slices.SortStableFunc(fields, func(a, b skillet.Field) int {
		sa, sb := skillet.IsStreaming(e.g.Node(a.Node)), skillet.IsStreaming(e.g.Node(b.Node))
		switch {
		case sa == sb:
			return 0
		case sb:
			return -1
		}
		return 1
	})
	out := &Schema{Type: "object", Description: n.Description, Properties: NewProperties(), AdditionalProperties: new(bool)}
	for _, f := range fields {
		if f.Name == omit {
			continue
		}
		out.Properties.Set(f.Name, e.print(f.Node, false, inDef, onPath, ""))
		out.Required = append(out.Required, f.Name)
	}
	return out
}

// envelope wraps inner in a closed object with the single required property key.
func envelope(key string, inner *Schema) *Schema {
	props := NewProperties()
	props.Set(key, inner)
	return &Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{key},
		AdditionalProperties: new(bool),
	}
}

func literalType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	return "number"
}
