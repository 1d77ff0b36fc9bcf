package skillet

import (
	"fmt"
	"math"
	"slices"

	"github.com/goccy/go-json"
)

// Validate checks that v, a fully formed value, conforms to s. It returns
// the value with primitive wrappers and discriminator envelopes resolved.
// Failures are reported as Issues carrying dotted paths.
//
// Unknown object keys are not rejected here; closedness is a property of the
// emitted wire document.
func Validate(s *Schema, v any) (any, error) {
	vd := &validator{g: s.graph}
	out, ok := vd.node(s.root, v, nil)
	if !ok {
		return nil, vd.iss
	}
	return out, nil
}

// Conforms reports whether v validates against the node id of g.
func Conforms(g *Graph, id NodeID, v any) bool {
	vd := &validator{g: g, quiet: true}
	_, ok := vd.node(id, v, nil)
	return ok
}

type validator struct {
	g     *Graph
	iss   Issues
	quiet bool
}

func (vd *validator) add(is Issue) {
	if vd.quiet {
		return
	}
	vd.iss = AppendIssues(vd.iss, is)
}

func (vd *validator) typeIssue(path []string, expected string, v any) {
	vd.add(newIssue(path, CodeInvalidType, map[string]any{"expected": expected, "actual": typeName(v)}))
}

func (vd *validator) node(id NodeID, v any, path []string) (any, bool) {
	n := vd.g.Node(id)
	if n.Kind != KindObject {
		v = unwrapPrimitive(v)
	}
	switch n.Kind {
	case KindString:
		if _, ok := v.(string); !ok {
			vd.typeIssue(path, "string", v)
			return nil, false
		}
		return v, true
	case KindLiteral:
		if !literalEqual(n.Literal, v) {
			vd.add(newIssue(path, CodeInvalidLiteral, map[string]any{"expected": n.Literal, "actual": v}))
			return nil, false
		}
		return v, true
	case KindNumber:
		if _, ok := toFloat(v); !ok {
			vd.typeIssue(path, "number", v)
			return nil, false
		}
		return v, true
	case KindInteger:
		f, ok := toFloat(v)
		if !ok || !isInteger(f) {
			vd.typeIssue(path, "integer", v)
			return nil, false
		}
		return v, true
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			vd.typeIssue(path, "boolean", v)
			return nil, false
		}
		return v, true
	case KindNull:
		if v != nil {
			vd.typeIssue(path, "null", v)
			return nil, false
		}
		return nil, true
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			vd.typeIssue(path, "string", v)
			return nil, false
		}
		if !slices.Contains(n.Entries, s) {
			vd.add(newIssue(path, CodeInvalidEnum, map[string]any{"expected": n.Entries, "actual": s}))
			return nil, false
		}
		return s, true
	case KindObject:
		return vd.object(n, v, path)
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			vd.typeIssue(path, "array", v)
			return nil, false
		}
		out := make([]any, len(arr))
		valid := true
		for i, it := range arr {
			r, ok := vd.node(n.Element, it, childPath(path, fmt.Sprint(i)))
			if !ok {
				valid = false
				continue
			}
			out[i] = r
		}
		return out, valid
	case KindAnyOf:
		return vd.anyOf(id, n, v, path)
	}
	vd.add(newIssue(path, CodeInvalidSchema, nil))
	return nil, false
}

func (vd *validator) object(n Node, v any, path []string) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		vd.typeIssue(path, "object", v)
		return nil, false
	}
	out := make(map[string]any, len(m))
	for k, x := range m {
		out[k] = x
	}
	valid := true
	for _, f := range n.Fields {
		x, present := m[f.Name]
		if !present {
			vd.add(newIssue(childPath(path, f.Name), CodeRequired, map[string]any{"key": f.Name}))
			valid = false
			continue
		}
		r, ok := vd.node(f.Node, x, childPath(path, f.Name))
		if !ok {
			valid = false
			continue
		}
		out[f.Name] = r
	}
	return out, valid
}

// anyOf tries each option in declaration order, then falls back to reading
// v as a discriminator envelope.
func (vd *validator) anyOf(id NodeID, n Node, v any, path []string) (any, bool) {
	for _, opt := range n.Options {
		trial := &validator{g: vd.g, quiet: true}
		if out, ok := trial.node(opt, v, path); ok {
			return out, true
		}
	}
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		bs := Branches(vd.g, id)
		for key, inner := range m {
			b, ok := branchByKey(bs, key)
			if !ok {
				break
			}
			trial := &validator{g: vd.g, quiet: true}
			if out, ok := trial.node(b.Option, injectLiteral(vd.g, b, inner), path); ok {
				return out, true
			}
		}
	}
	vd.add(newIssue(path, CodeNoMatch, map[string]any{"options": len(n.Options)}))
	return nil, false
}

// injectLiteral restores the literal property that a literal-keyed envelope
// leaves out of its inner object.
func injectLiteral(g *Graph, b Branch, inner any) any {
	if b.LiteralField == "" {
		return inner
	}
	m, ok := inner.(map[string]any)
	if !ok {
		return inner
	}
	if _, present := m[b.LiteralField]; present {
		return inner
	}
	out := make(map[string]any, len(m)+1)
	for k, x := range m {
		out[k] = x
	}
	fid, _ := g.Node(b.Option).Field(b.LiteralField)
	out[b.LiteralField] = g.Node(fid).Literal
	return out
}

func unwrapPrimitive(v any) any {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		if inner, ok := m[PrimitiveWrapperField]; ok {
			return inner
		}
	}
	return v
}

func childPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func literalEqual(lit, v any) bool {
	switch l := lit.(type) {
	case string:
		s, ok := v.(string)
		return ok && s == l
	case bool:
		b, ok := v.(bool)
		return ok && b == l
	case float64:
		f, ok := toFloat(v)
		return ok && f == l
	}
	return false
}

func isInteger(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
}

// toFloat accepts the numeric representations a decoded JSON tree may hold.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
