package skillet

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/reoring/skillet/internal/engine"
)

// State classifies a Snapshot.
type State int

const (
	// StateNoValue means nothing schema-shaped can be shown yet.
	StateNoValue State = iota
	// StatePartial means Value holds a best-effort partial value.
	StatePartial
	// StateMatch means Value is complete and conforms to the schema.
	StateMatch
)

func (s State) String() string {
	switch s {
	case StatePartial:
		return "partial"
	case StateMatch:
		return "match"
	}
	return "no-value"
}

// Snapshot is the best-effort value materialized from a buffer. Every call
// builds a new tree; snapshots share nothing with each other.
type Snapshot struct {
	Value    any
	HasValue bool
	// Complete is true once the input value is syntactically closed and
	// matches the schema.
	Complete bool
	// Final records whether the buffer was materialized as finished.
	Final bool
	// Diagnostics are non-fatal findings. They are only produced for final
	// buffers.
	Diagnostics Issues
}

// State returns the classification of the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.HasValue && s.Complete:
		return StateMatch
	case s.HasValue:
		return StatePartial
	}
	return StateNoValue
}

// Materialize turns buf, a possibly incomplete JSON text, into the best
// value of shape s that can be shown so far. Incompleteness is never an
// error; an error is returned only for text that cannot be the prefix of any
// JSON document, or when a configured limit is exceeded.
func Materialize(s *Schema, buf string, final bool, opts ...Option) (Snapshot, error) {
	return materialize(s, buf, final, buildOptions(opts))
}

func materialize(s *Schema, buf string, final bool, o options) (Snapshot, error) {
	var dups []engine.SimpleIssue
	eo := engine.EnforceOptions{MaxDepth: o.maxDepth, MaxBytes: o.maxBytes}
	switch o.duplicates {
	case DuplicateWarn:
		eo.OnDuplicate = engine.DupWarn
		eo.IssueSink = func(si engine.SimpleIssue) { dups = append(dups, si) }
	case DuplicateReject:
		eo.OnDuplicate = engine.DupError
	}
	doc, err := engine.Scan(buf, final, eo)
	if err != nil {
		return Snapshot{}, scanIssues(err)
	}
	m := &materializer{g: s.graph, final: final, numbers: o.numberMode}

	snap := Snapshot{Final: final}
	root := doc.Root
	rootNode := s.graph.Node(s.root)
	if rootNode.Kind != KindObject {
		root = unwrapRoot(root)
	}
	if root != nil {
		snap.Value, snap.HasValue = m.node(s.root, root, nil)
		snap.Complete = snap.HasValue && root.Complete && doc.Root.Complete
	}
	snap.Diagnostics = m.diags

	if final {
		for _, si := range dups {
			snap.Diagnostics = AppendIssues(snap.Diagnostics, duplicateIssue(si))
		}
		if doc.Root == nil || !doc.Root.Complete {
			is := newIssue(nil, CodeTruncated, nil)
			is.Offset = int64(len(buf))
			snap.Diagnostics = AppendIssues(snap.Diagnostics, is)
		}
		if doc.Trailing >= 0 {
			is := newIssue(nil, CodeTrailingData, nil)
			is.Offset = int64(doc.Trailing)
			is.InputFragment = fragment(buf[doc.Trailing:])
			snap.Diagnostics = AppendIssues(snap.Diagnostics, is)
		}
	}
	return snap, nil
}

// unwrapRoot strips the primitive-wrapper envelope. A root that is not
// wrapped is used as is.
func unwrapRoot(root *engine.Value) *engine.Value {
	if root == nil || root.Kind != engine.KindObject {
		return root
	}
	if len(root.Keys) == 0 {
		if root.Complete {
			return root
		}
		return nil
	}
	if root.Keys[0] != PrimitiveWrapperField {
		return root
	}
	return root.Members[0]
}

func scanIssues(err error) error {
	ie, ok := err.(engine.IssueError)
	if !ok {
		return err
	}
	if ie.Code == CodeDuplicateKey {
		is := duplicateIssue(ie.SimpleIssue)
		is.Cause = err
		return Issues{is}
	}
	is := newIssue(nil, CodeParseError, nil)
	is.Path = ie.Path
	is.Message = ie.Message
	is.Offset = int64(ie.Offset)
	is.Cause = err
	return Issues{is}
}

func duplicateIssue(si engine.SimpleIssue) Issue {
	is := newIssue(nil, CodeDuplicateKey, map[string]any{"key": si.Key})
	is.Path = si.Path
	is.Offset = int64(si.Offset)
	return is
}

func fragment(s string) string {
	const maxFragment = 32
	if len(s) > maxFragment {
		return s[:maxFragment]
	}
	return s
}

type materializer struct {
	g       *Graph
	final   bool
	numbers NumberMode
	diags   Issues
	// trial > 0 while AnyOf options are being tried; diagnostics are muted.
	trial int
}

// mismatch records a schema_mismatch diagnostic for final buffers.
func (m *materializer) mismatch(path []string, expected string, v *engine.Value) {
	if !m.final || m.trial > 0 {
		return
	}
	m.diags = AppendIssues(m.diags, m.issue(path, CodeSchemaMismatch, expected, v))
}

func (m *materializer) issue(path []string, code, expected string, v *engine.Value) Issue {
	is := newIssue(path, code, map[string]any{"expected": expected, "actual": v.Kind.String()})
	is.Offset = int64(v.Offset)
	return is
}

// node materializes v under the schema node id. ok is false when there is
// no value to show yet.
func (m *materializer) node(id NodeID, v *engine.Value, path []string) (any, bool) {
	if v == nil {
		return nil, false
	}
	n := m.g.Node(id)
	switch n.Kind {
	case KindString:
		if v.Kind != engine.KindString {
			m.mismatch(path, "string", v)
			return nil, false
		}
		if v.Complete || n.Streaming {
			return v.Text, true
		}
		return nil, false
	case KindLiteral:
		return m.literal(n, v, path)
	case KindNumber, KindInteger:
		return m.number(n, v, path)
	case KindBoolean:
		if v.Kind != engine.KindBool {
			m.mismatch(path, "boolean", v)
			return nil, false
		}
		if !v.Complete {
			return nil, false
		}
		return v.Bool, true
	case KindNull:
		if v.Kind != engine.KindNull {
			m.mismatch(path, "null", v)
			return nil, false
		}
		if !v.Complete {
			return nil, false
		}
		return nil, true
	case KindEnum:
		if v.Kind != engine.KindString {
			m.mismatch(path, "string", v)
			return nil, false
		}
		if !v.Complete {
			return nil, false
		}
		for _, e := range n.Entries {
			if e == v.Text {
				return v.Text, true
			}
		}
		if m.final && m.trial == 0 {
			m.diags = AppendIssues(m.diags, m.issue(path, CodeInvalidEnum, strconv.Quote(v.Text), v))
		}
		return nil, false
	case KindObject:
		return m.object(n, v, path, "")
	case KindArray:
		return m.array(n, v, path)
	case KindAnyOf:
		return m.anyOf(id, n, v, path)
	}
	return nil, false
}

func (m *materializer) literal(n Node, v *engine.Value, path []string) (any, bool) {
	if !v.Complete {
		return nil, false
	}
	var got any
	switch v.Kind {
	case engine.KindString:
		got = v.Text
	case engine.KindBool:
		got = v.Bool
	case engine.KindNumber:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return nil, false
		}
		got = f
	}
	if got == nil || !literalEqual(n.Literal, got) {
		if m.final && m.trial == 0 {
			is := newIssue(path, CodeInvalidLiteral, map[string]any{"expected": n.Literal, "actual": got})
			is.Offset = int64(v.Offset)
			m.diags = AppendIssues(m.diags, is)
		}
		return nil, false
	}
	return n.Literal, true
}

func (m *materializer) number(n Node, v *engine.Value, path []string) (any, bool) {
	if v.Kind != engine.KindNumber {
		m.mismatch(path, n.Kind.String(), v)
		return nil, false
	}
	if !v.Complete {
		return nil, false
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		// Out of range literals such as 1e400.
		m.mismatch(path, n.Kind.String(), v)
		return nil, false
	}
	if n.Kind == KindInteger && !isInteger(f) {
		m.mismatch(path, "integer", v)
		return nil, false
	}
	if m.numbers == NumberJSONNumber {
		return json.Number(v.Text), true
	}
	return f, true
}

// object materializes an Object node. skip names a field that is absent
// from the input because it travels as a discriminator key.
func (m *materializer) object(n Node, v *engine.Value, path []string, skip string) (any, bool) {
	if v.Kind != engine.KindObject {
		m.mismatch(path, "object", v)
		return nil, false
	}
	if v.Complete {
		for i, k := range v.Keys {
			if _, declared := n.Field(k); declared || k == skip {
				continue
			}
			if m.final && m.trial == 0 {
				is := newIssue(childPath(path, k), CodeUnknownKey, map[string]any{"key": k})
				if mv := v.Members[i]; mv != nil {
					is.Offset = int64(mv.Offset)
				}
				m.diags = AppendIssues(m.diags, is)
			}
			return nil, false
		}
		out := make(map[string]any, len(n.Fields))
		for _, f := range n.Fields {
			if f.Name == skip {
				continue
			}
			mv, present := v.Get(f.Name)
			if !present {
				if m.final && m.trial == 0 {
					is := newIssue(childPath(path, f.Name), CodeRequired, map[string]any{"key": f.Name})
					is.Offset = int64(v.Offset)
					m.diags = AppendIssues(m.diags, is)
				}
				return nil, false
			}
			x, ok := m.node(f.Node, mv, childPath(path, f.Name))
			if !ok {
				return nil, false
			}
			out[f.Name] = x
		}
		return out, true
	}

	if n.Streaming {
		out := make(map[string]any, len(v.Keys))
		for _, f := range n.Fields {
			if f.Name == skip {
				continue
			}
			mv, present := v.Get(f.Name)
			if !present {
				if ph, ok := m.placeholder(f.Node); ok {
					out[f.Name] = ph
				}
				continue
			}
			if x, ok := m.node(f.Node, mv, childPath(path, f.Name)); ok {
				out[f.Name] = x
			}
		}
		return out, true
	}

	// A non-streaming object is shown early only when it has streaming
	// properties and every other property is already complete.
	hasStreaming := false
	for _, f := range n.Fields {
		if IsStreaming(m.g.Node(f.Node)) {
			hasStreaming = true
			break
		}
	}
	if !hasStreaming {
		return nil, false
	}
	out := make(map[string]any, len(n.Fields))
	for _, f := range n.Fields {
		if f.Name == skip {
			continue
		}
		fn := m.g.Node(f.Node)
		mv, present := v.Get(f.Name)
		if IsStreaming(fn) {
			if present {
				if x, ok := m.node(f.Node, mv, childPath(path, f.Name)); ok {
					out[f.Name] = x
					continue
				}
			}
			if ph, ok := m.placeholder(f.Node); ok {
				out[f.Name] = ph
			}
			continue
		}
		if !present || mv == nil || !mv.Complete {
			if !present && m.allowsNull(fn) {
				out[f.Name] = nil
				continue
			}
			return nil, false
		}
		x, ok := m.node(f.Node, mv, childPath(path, f.Name))
		if !ok {
			return nil, false
		}
		out[f.Name] = x
	}
	return out, true
}

// allowsNull reports whether n is an AnyOf with a Null option.
func (m *materializer) allowsNull(n Node) bool {
	if n.Kind != KindAnyOf {
		return false
	}
	for _, o := range n.Options {
		if m.g.Node(o).Kind == KindNull {
			return true
		}
	}
	return false
}

// placeholder is the empty value shown for a streaming property that has
// not started yet. Only subtrees made entirely of streaming nodes have one.
func (m *materializer) placeholder(id NodeID) (any, bool) {
	if !m.initializable(id, map[NodeID]bool{}) {
		return nil, false
	}
	switch m.g.Node(id).Kind {
	case KindArray:
		return []any{}, true
	case KindObject:
		return map[string]any{}, true
	}
	return "", true
}

func (m *materializer) initializable(id NodeID, visiting map[NodeID]bool) bool {
	n := m.g.Node(id)
	if !IsStreaming(n) {
		return false
	}
	if n.Kind != KindObject || visiting[id] {
		return true
	}
	visiting[id] = true
	for _, f := range n.Fields {
		if !m.initializable(f.Node, visiting) {
			return false
		}
	}
	return true
}

func (m *materializer) array(n Node, v *engine.Value, path []string) (any, bool) {
	if v.Kind != engine.KindArray {
		m.mismatch(path, "array", v)
		return nil, false
	}
	if v.Complete {
		out := make([]any, 0, len(v.Items))
		for i, it := range v.Items {
			x, ok := m.node(n.Element, it, childPath(path, strconv.Itoa(i)))
			if !ok {
				return nil, false
			}
			out = append(out, x)
		}
		return out, true
	}
	if !n.Streaming {
		return nil, false
	}
	out := make([]any, 0, len(v.Items))
	for i, it := range v.Items {
		x, ok := m.node(n.Element, it, childPath(path, strconv.Itoa(i)))
		if !ok {
			// Only the trailing element can still be in progress.
			break
		}
		out = append(out, x)
	}
	return out, true
}

func (m *materializer) anyOf(id NodeID, n Node, v *engine.Value, path []string) (any, bool) {
	bs := Branches(m.g, id)
	if v.Kind == engine.KindObject && hasComplex(bs) {
		if len(v.Keys) == 0 && !v.Complete {
			return nil, false
		}
		if len(v.Keys) == 1 {
			if b, ok := branchByKey(bs, v.Keys[0]); ok {
				return m.envelope(b, v.Members[0], path)
			}
		}
	}

	// Anything that is not an envelope is tried against every option in
	// declaration order.
	m.trial++
	defer func() { m.trial-- }()
	for _, b := range bs {
		on := m.g.Node(b.Option)
		if on.Kind == KindObject && v.Kind == engine.KindObject && !m.fits(on, v) {
			continue
		}
		x, ok := m.node(b.Option, v, path)
		if !ok {
			continue
		}
		if b.Complex && !v.Complete {
			return x, true
		}
		if Conforms(m.g, b.Option, x) {
			return x, true
		}
	}
	if m.final && m.trial == 1 && v.Complete {
		is := newIssue(path, CodeNoMatch, nil)
		is.Offset = int64(v.Offset)
		m.diags = AppendIssues(m.diags, is)
	}
	return nil, false
}

// envelope materializes the inner value of a discriminator envelope.
func (m *materializer) envelope(b Branch, inner *engine.Value, path []string) (any, bool) {
	if inner == nil {
		return nil, false
	}
	on := m.g.Node(b.Option)
	if on.Kind != KindObject {
		return m.node(b.Option, inner, path)
	}
	x, ok := m.object(on, inner, path, b.LiteralField)
	if !ok {
		return nil, false
	}
	if b.LiteralField != "" {
		x.(map[string]any)[b.LiteralField] = literalOf(m.g, on, b.LiteralField)
	}
	return x, true
}

// fits reports whether the members present so far in v can belong to the
// Object option on: every key is declared and every finished literal agrees.
func (m *materializer) fits(on Node, v *engine.Value) bool {
	for i, k := range v.Keys {
		fid, ok := on.Field(k)
		if !ok {
			return false
		}
		fn := m.g.Node(fid)
		if mv := v.Members[i]; fn.Kind == KindLiteral && mv != nil && mv.Complete {
			if _, ok := m.literal(fn, mv, nil); !ok {
				return false
			}
		}
	}
	return true
}

func hasComplex(bs []Branch) bool {
	for _, b := range bs {
		if b.Complex {
			return true
		}
	}
	return false
}

func literalOf(g *Graph, obj Node, field string) any {
	id, _ := obj.Field(field)
	return g.Node(id).Literal
}
