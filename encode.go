package skillet

import "strconv"

// Encode converts v, a value conforming to s, into its wire shape: complex
// AnyOf options are wrapped in their discriminator envelope and a non-object
// root is wrapped in the primitive wrapper. Materializing the JSON encoding
// of the result yields v again.
func Encode(s *Schema, v any) (any, error) {
	e := &encoder{g: s.graph}
	out, ok := e.node(s.root, v, nil)
	if !ok {
		return nil, e.iss
	}
	if s.RootNode().Kind != KindObject {
		out = map[string]any{PrimitiveWrapperField: out}
	}
	return out, nil
}

type encoder struct {
	g   *Graph
	iss Issues
}

func (e *encoder) node(id NodeID, v any, path []string) (any, bool) {
	n := e.g.Node(id)
	switch n.Kind {
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			e.iss = AppendIssues(e.iss, newIssue(path, CodeInvalidType, map[string]any{"expected": "object", "actual": typeName(v)}))
			return nil, false
		}
		out := make(map[string]any, len(n.Fields))
		valid := true
		for _, f := range n.Fields {
			x, present := m[f.Name]
			if !present {
				e.iss = AppendIssues(e.iss, newIssue(childPath(path, f.Name), CodeRequired, map[string]any{"key": f.Name}))
				valid = false
				continue
			}
			r, ok := e.node(f.Node, x, childPath(path, f.Name))
			if !ok {
				valid = false
				continue
			}
			out[f.Name] = r
		}
		return out, valid
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			e.iss = AppendIssues(e.iss, newIssue(path, CodeInvalidType, map[string]any{"expected": "array", "actual": typeName(v)}))
			return nil, false
		}
		out := make([]any, len(arr))
		valid := true
		for i, it := range arr {
			r, ok := e.node(n.Element, it, childPath(path, strconv.Itoa(i)))
			if !ok {
				valid = false
				continue
			}
			out[i] = r
		}
		return out, valid
	case KindAnyOf:
		for _, b := range Branches(e.g, id) {
			if !Conforms(e.g, b.Option, v) {
				continue
			}
			inner, ok := e.node(b.Option, v, path)
			if !ok {
				continue
			}
			if !b.Complex {
				return inner, true
			}
			if b.LiteralField != "" {
				if m, ok := inner.(map[string]any); ok {
					delete(m, b.LiteralField)
				}
			}
			return map[string]any{b.Key: inner}, true
		}
		e.iss = AppendIssues(e.iss, newIssue(path, CodeNoMatch, map[string]any{"options": len(n.Options)}))
		return nil, false
	}
	vd := &validator{g: e.g}
	out, ok := vd.node(id, v, path)
	if !ok {
		e.iss = AppendIssues(e.iss, vd.iss...)
	}
	return out, ok
}
