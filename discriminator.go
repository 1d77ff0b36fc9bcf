package skillet

import "strconv"

// Branch describes how one AnyOf option appears on the wire.
type Branch struct {
	// Option is the option node id.
	Option NodeID
	// Complex options travel inside a single-key envelope object.
	Complex bool
	// Key is the envelope key of a complex option: the stringified option
	// index, or the value of LiteralField when that literal is unique.
	Key string
	// LiteralField names the Object property whose literal value is used as
	// Key. It is empty for index-keyed options.
	LiteralField string
}

// IsComplex reports whether an AnyOf option is discriminated through an
// envelope rather than by trial.
func IsComplex(n Node) bool {
	switch n.Kind {
	case KindObject, KindArray, KindAnyOf:
		return true
	case KindString:
		return n.Streaming
	}
	return false
}

// Branches computes the wire key for every option of the AnyOf node id. The
// emitter, the encoder, the validator and the materializer all call it, so
// the envelope keys they agree on come from this one place.
func Branches(g *Graph, id NodeID) []Branch {
	n := g.Node(id)
	if n.Kind != KindAnyOf {
		return nil
	}
	type candidate struct {
		field string
		value string
		ok    bool
	}
	cands := make([]candidate, len(n.Options))
	counts := make(map[string]int, len(n.Options))
	for i, opt := range n.Options {
		on := g.Node(opt)
		if on.Kind != KindObject {
			continue
		}
		literals := 0
		var c candidate
		for _, f := range on.Fields {
			fn := g.Node(f.Node)
			if fn.Kind != KindLiteral {
				continue
			}
			literals++
			if s, ok := fn.Literal.(string); ok {
				c = candidate{field: f.Name, value: s, ok: true}
			} else {
				c = candidate{}
			}
		}
		if literals == 1 && c.ok {
			cands[i] = c
			counts[c.value]++
		}
	}

	out := make([]Branch, len(n.Options))
	for i, opt := range n.Options {
		b := Branch{Option: opt, Complex: IsComplex(g.Node(opt))}
		if b.Complex {
			b.Key = strconv.Itoa(i)
			if c := cands[i]; c.ok && counts[c.value] == 1 && !isIndexKey(c.value, len(n.Options)) {
				b.Key = c.value
				b.LiteralField = c.field
			}
		}
		out[i] = b
	}
	return out
}

// isIndexKey reports whether s would collide with a positional key.
func isIndexKey(s string, n int) bool {
	i, err := strconv.Atoi(s)
	return err == nil && i >= 0 && i < n && strconv.Itoa(i) == s
}

// branchByKey finds the complex branch keyed by key.
func branchByKey(bs []Branch, key string) (Branch, bool) {
	for _, b := range bs {
		if b.Complex && b.Key == key {
			return b, true
		}
	}
	return Branch{}, false
}
