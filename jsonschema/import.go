package jsonschema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"

	skillet "github.com/reoring/skillet"
	"github.com/reoring/skillet/i18n"
)

// Import builds a schema graph from a wire document. Only a closed subset of
// draft-07 is accepted; anything outside it is rejected with Issues naming
// the keyword and a dotted path.
//
// doc may be JSON text ([]byte or string), a decoded map[string]any, or a
// *Schema. JSON text keeps its property order; decoded maps are read in
// sorted key order.
func Import(doc any) (*skillet.Schema, error) {
	tree, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	return importTree(tree)
}

var allowedStringFormats = map[string]bool{
	"date-time": true,
	"time":      true,
	"date":      true,
	"duration":  true,
	"email":     true,
	"hostname":  true,
	"ipv4":      true,
	"ipv6":      true,
	"uuid":      true,
}

var forbiddenKeywords = map[string]bool{
	"oneOf":                 true,
	"allOf":                 true,
	"not":                   true,
	"if":                    true,
	"then":                  true,
	"else":                  true,
	"discriminator":         true,
	"patternProperties":     true,
	"propertyNames":         true,
	"unevaluatedProperties": true,
	"unevaluatedItems":      true,
	"prefixItems":           true,
	"contains":              true,
	"contentEncoding":       true,
	"contentMediaType":      true,
	"contentSchema":         true,
	"minLength":             true,
	"maxLength":             true,
	"title":                 true,
	"default":               true,
	"examples":              true,
	"deprecated":            true,
	"$comment":              true,
	"readOnly":              true,
	"writeOnly":             true,
	"nullable":              true,
}

var baseKeywords = []string{"$schema", "$id", "description"}

// object is a decoded JSON object that remembers key order.
type object struct {
	keys []string
	vals map[string]any
}

func (o *object) get(k string) (any, bool) {
	v, ok := o.vals[k]
	return v, ok
}

// set stores v under k. It reports false, leaving o unchanged, when k is
// already present.
func (o *object) set(k string, v any) bool {
	if o.vals == nil {
		o.vals = map[string]any{}
	}
	if _, ok := o.vals[k]; ok {
		return false
	}
	o.keys = append(o.keys, k)
	o.vals[k] = v
	return true
}

func normalize(doc any) (any, error) {
	switch d := doc.(type) {
	case []byte:
		return parseJSON(d)
	case string:
		return parseJSON([]byte(d))
	case *Schema:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: encode document: %w", err)
		}
		return parseJSON(b)
	}
	return fromGo(doc), nil
}

func parseJSON(b []byte) (any, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: parse document: %w", err)
	}
	return fromFast(v, nil)
}

// fromFast converts a parsed document. path is the dotted location in the
// document, used to report repeated keys.
func fromFast(v *fastjson.Value, path []string) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o := &object{}
		obj, _ := v.Object()
		var err error
		obj.Visit(func(k []byte, x *fastjson.Value) {
			if err != nil {
				return
			}
			key := string(k)
			var val any
			if val, err = fromFast(x, append(path, key)); err == nil && !o.set(key, val) {
				err = duplicateKey(path, key)
			}
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, it := range items {
			x, err := fromFast(it, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case fastjson.TypeString:
		return string(v.GetStringBytes()), nil
	case fastjson.TypeNumber:
		return v.GetFloat64(), nil
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	}
	return nil, nil
}

func fromGo(v any) any {
	switch x := v.(type) {
	case *object:
		return x
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &object{}
		for _, k := range keys {
			o.set(k, fromGo(x[k]))
		}
		return o
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			out[i] = fromGo(it)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, it := range x {
			out[i] = it
		}
		return out
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return string(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}

func importTree(tree any) (*skillet.Schema, error) {
	root, ok := tree.(*object)
	if !ok {
		return nil, fail(nil, skillet.CodeInvalidSchema, "", "document must be an object")
	}
	im := &importer{g: skillet.NewGraph(), defIDs: map[string]skillet.NodeID{}}
	if d, ok := root.get("$defs"); ok {
		defs, ok := d.(*object)
		if !ok {
			return nil, fail([]string{"$defs"}, skillet.CodeInvalidKeyword, "$defs", "must be an object")
		}
		im.defs = defs
	}
	im.root = im.g.Reserve()
	if _, err := im.build(root, nil, im.root, true); err != nil {
		return nil, err
	}
	if im.defs != nil {
		for _, name := range im.defs.keys {
			if _, err := im.def(name, []string{"$defs"}); err != nil {
				return nil, err
			}
		}
	}
	return skillet.NewSchema(im.g, im.root), nil
}

type importer struct {
	g      *skillet.Graph
	root   skillet.NodeID
	defs   *object
	defIDs map[string]skillet.NodeID
}

// place stores n in slot, or in a new node when slot is NoNode.
func (im *importer) place(slot skillet.NodeID, n skillet.Node) skillet.NodeID {
	if slot == skillet.NoNode {
		return im.g.Add(n)
	}
	im.g.Set(slot, n)
	return slot
}

func (im *importer) build(doc *object, path []string, slot skillet.NodeID, atRoot bool) (skillet.NodeID, error) {
	for _, k := range doc.keys {
		if forbiddenKeywords[k] {
			return 0, fail(path, skillet.CodeUnsupportedKeyword, k, "")
		}
	}
	base := baseKeywords
	if atRoot {
		base = append(cloneStrings(baseKeywords), "$defs")
	}

	if ref, ok := doc.get("$ref"); ok {
		if err := allowOnly(doc, path, base, "$ref"); err != nil {
			return 0, err
		}
		if slot != skillet.NoNode {
			return 0, fail(path, skillet.CodeInvalidKeyword, "$ref", "a reference cannot stand for the document root or a $defs entry")
		}
		return im.resolve(ref, path)
	}

	desc, err := optString(doc, "description", path)
	if err != nil {
		return 0, err
	}

	if _, ok := doc.get("anyOf"); ok {
		return im.anyOf(doc, path, slot, desc, base)
	}
	if _, ok := doc.get("const"); ok {
		return im.constant(doc, path, slot, desc, base)
	}
	if _, ok := doc.get("enum"); ok {
		return im.enum(doc, path, slot, desc, base)
	}

	t, ok := doc.get("type")
	if !ok {
		return 0, fail(path, skillet.CodeInvalidSchema, "type", "missing type")
	}
	typ, ok := t.(string)
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "type", "must be a single type name")
	}
	switch typ {
	case "string":
		if err := allowOnly(doc, path, base, "type", "pattern", "format"); err != nil {
			return 0, err
		}
		pattern, err := optString(doc, "pattern", path)
		if err != nil {
			return 0, err
		}
		format, err := optString(doc, "format", path)
		if err != nil {
			return 0, err
		}
		if format != "" && !allowedStringFormats[format] {
			return 0, fail(path, skillet.CodeInvalidKeyword, "format", fmt.Sprintf("unsupported format %q", format))
		}
		return im.place(slot, skillet.Node{Kind: skillet.KindString, Description: orDefault(desc, "String"), Pattern: pattern, Format: format}), nil
	case "number", "integer":
		if err := allowOnly(doc, path, base, "type", "multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum"); err != nil {
			return 0, err
		}
		var b skillet.Bounds
		for _, kw := range []struct {
			name string
			dst  **float64
		}{
			{"multipleOf", &b.MultipleOf},
			{"minimum", &b.Minimum},
			{"maximum", &b.Maximum},
			{"exclusiveMinimum", &b.ExclusiveMinimum},
			{"exclusiveMaximum", &b.ExclusiveMaximum},
		} {
			v, ok := doc.get(kw.name)
			if !ok {
				continue
			}
			f, ok := v.(float64)
			if !ok {
				return 0, fail(path, skillet.CodeInvalidKeyword, kw.name, "must be a number")
			}
			*kw.dst = &f
		}
		kind, def := skillet.KindNumber, "Number"
		if typ == "integer" {
			kind, def = skillet.KindInteger, "Integer"
		}
		return im.place(slot, skillet.Node{Kind: kind, Description: orDefault(desc, def), Bounds: b}), nil
	case "boolean":
		if err := allowOnly(doc, path, base, "type"); err != nil {
			return 0, err
		}
		return im.place(slot, skillet.Node{Kind: skillet.KindBoolean, Description: orDefault(desc, "Boolean")}), nil
	case "null":
		if err := allowOnly(doc, path, base, "type"); err != nil {
			return 0, err
		}
		return im.place(slot, skillet.Node{Kind: skillet.KindNull, Description: desc}), nil
	case "object":
		return im.object(doc, path, slot, desc, base)
	case "array":
		return im.array(doc, path, slot, desc, base)
	}
	return 0, fail(path, skillet.CodeInvalidKeyword, "type", fmt.Sprintf("unsupported type %q", typ))
}

func (im *importer) resolve(ref any, path []string) (skillet.NodeID, error) {
	s, ok := ref.(string)
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "$ref", "must be a string")
	}
	if s == "#" {
		return im.root, nil
	}
	if name, ok := strings.CutPrefix(s, "#/$defs/"); ok && name != "" {
		return im.def(name, path)
	}
	return 0, fail(path, skillet.CodeInvalidKeyword, "$ref", fmt.Sprintf("unsupported reference %q", s))
}

// def returns the node of a $defs entry, building it on first use. The id is
// reserved before the entry is built so that the entry may refer to itself.
func (im *importer) def(name string, path []string) (skillet.NodeID, error) {
	if id, ok := im.defIDs[name]; ok {
		return id, nil
	}
	var raw any
	ok := false
	if im.defs != nil {
		raw, ok = im.defs.get(name)
	}
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "$ref", fmt.Sprintf("unknown $defs entry %q", name))
	}
	dpath := []string{"$defs", name}
	doc, ok := raw.(*object)
	if !ok {
		return 0, fail(dpath, skillet.CodeInvalidSchema, "", "schema must be an object")
	}
	id := im.g.Reserve()
	im.defIDs[name] = id
	return im.build(doc, dpath, id, false)
}

func (im *importer) anyOf(doc *object, path []string, slot skillet.NodeID, desc string, base []string) (skillet.NodeID, error) {
	if err := allowOnly(doc, path, base, "anyOf"); err != nil {
		return 0, err
	}
	raw, _ := doc.get("anyOf")
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return 0, fail(path, skillet.CodeInvalidKeyword, "anyOf", "must be a non-empty array")
	}
	options := make([]skillet.NodeID, 0, len(items))
	for i, it := range items {
		cpath := childPath(path, fmt.Sprintf("anyOf[%d]", i))
		sub, ok := it.(*object)
		if !ok {
			return 0, fail(cpath, skillet.CodeInvalidSchema, "", "schema must be an object")
		}
		id, err := im.build(sub, cpath, skillet.NoNode, false)
		if err != nil {
			return 0, err
		}
		options = append(options, id)
	}
	return im.place(slot, skillet.Node{Kind: skillet.KindAnyOf, Description: desc, Options: options}), nil
}

func (im *importer) constant(doc *object, path []string, slot skillet.NodeID, desc string, base []string) (skillet.NodeID, error) {
	if err := allowOnly(doc, path, base, "const", "type"); err != nil {
		return 0, err
	}
	v, _ := doc.get("const")
	switch v.(type) {
	case string, float64, bool:
	default:
		return 0, fail(path, skillet.CodeInvalidKeyword, "const", "must be a string, number or boolean")
	}
	if t, ok := doc.get("type"); ok {
		typ, _ := t.(string)
		if !scalarMatchesType(v, typ) {
			return 0, fail(path, skillet.CodeInvalidKeyword, "const", fmt.Sprintf("value %v does not match type %q", v, typ))
		}
	}
	return im.place(slot, skillet.Node{Kind: skillet.KindLiteral, Description: orDefault(desc, fmt.Sprint(v)), Literal: v}), nil
}

func (im *importer) enum(doc *object, path []string, slot skillet.NodeID, desc string, base []string) (skillet.NodeID, error) {
	if err := allowOnly(doc, path, base, "enum", "type"); err != nil {
		return 0, err
	}
	raw, _ := doc.get("enum")
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return 0, fail(path, skillet.CodeInvalidKeyword, "enum", "must be a non-empty array")
	}
	typ := ""
	if t, ok := doc.get("type"); ok {
		if typ, ok = t.(string); !ok {
			return 0, fail(path, skillet.CodeInvalidKeyword, "type", "must be a single type name")
		}
	}

	allStrings := true
	for _, it := range items {
		if _, ok := it.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		if typ != "" && typ != "string" {
			return 0, fail(path, skillet.CodeInvalidKeyword, "enum", fmt.Sprintf("string entries do not match type %q", typ))
		}
		entries := make([]string, len(items))
		for i, it := range items {
			entries[i] = it.(string)
		}
		return im.place(slot, skillet.Node{Kind: skillet.KindEnum, Description: orDefault(desc, "Enum"), Entries: entries}), nil
	}

	switch typ {
	case "", "number", "integer", "boolean":
	default:
		return 0, fail(path, skillet.CodeInvalidKeyword, "enum", fmt.Sprintf("mixed entries do not match type %q", typ))
	}
	options := make([]skillet.NodeID, 0, len(items))
	for i, it := range items {
		switch it.(type) {
		case string, float64, bool:
		default:
			return 0, fail(childPath(path, fmt.Sprintf("enum[%d]", i)), skillet.CodeInvalidKeyword, "enum", "entries must be strings, numbers or booleans")
		}
		if typ != "" && !scalarMatchesType(it, typ) {
			return 0, fail(childPath(path, fmt.Sprintf("enum[%d]", i)), skillet.CodeInvalidKeyword, "enum", fmt.Sprintf("entry %v does not match type %q", it, typ))
		}
		options = append(options, im.g.Add(skillet.Node{Kind: skillet.KindLiteral, Description: fmt.Sprint(it), Literal: it}))
	}
	return im.place(slot, skillet.Node{Kind: skillet.KindAnyOf, Description: desc, Options: options}), nil
}

func (im *importer) object(doc *object, path []string, slot skillet.NodeID, desc string, base []string) (skillet.NodeID, error) {
	if err := allowOnly(doc, path, base, "type", "properties", "required", "additionalProperties"); err != nil {
		return 0, err
	}
	ap, ok := doc.get("additionalProperties")
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "additionalProperties", "must be present and false")
	}
	if b, isBool := ap.(bool); !isBool || b {
		return 0, fail(path, skillet.CodeInvalidKeyword, "additionalProperties", "must be false")
	}
	rawProps, ok := doc.get("properties")
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "properties", "must be present")
	}
	props, ok := rawProps.(*object)
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "properties", "must be an object")
	}

	rawReq, hasReq := doc.get("required")
	if !hasReq && len(props.keys) > 0 {
		return 0, fail(path, skillet.CodeInvalidKeyword, "required", "must list every property")
	}
	if hasReq {
		req, ok := rawReq.([]any)
		if !ok {
			return 0, fail(path, skillet.CodeInvalidKeyword, "required", "must be an array")
		}
		if len(req) != len(props.keys) {
			return 0, fail(path, skillet.CodeInvalidKeyword, "required", "must list every property exactly once")
		}
		listed := make(map[string]bool, len(req))
		for _, r := range req {
			name, ok := r.(string)
			if !ok {
				return 0, fail(path, skillet.CodeInvalidKeyword, "required", "entries must be strings")
			}
			if _, ok := props.get(name); !ok {
				return 0, fail(path, skillet.CodeInvalidKeyword, "required", fmt.Sprintf("%q is not a property", name))
			}
			if listed[name] {
				return 0, fail(path, skillet.CodeInvalidKeyword, "required", fmt.Sprintf("%q listed twice", name))
			}
			listed[name] = true
		}
	}

	fields := make([]skillet.Field, 0, len(props.keys))
	for _, name := range props.keys {
		cpath := childPath(path, name)
		if name == skillet.PrimitiveWrapperField {
			return 0, fail(cpath, skillet.CodeInvalidSchema, "properties", fmt.Sprintf("property name %q is reserved", name))
		}
		sub, ok := props.vals[name].(*object)
		if !ok {
			return 0, fail(cpath, skillet.CodeInvalidSchema, "", "schema must be an object")
		}
		fid, err := im.build(sub, cpath, skillet.NoNode, false)
		if err != nil {
			return 0, err
		}
		fields = append(fields, skillet.Field{Name: name, Node: fid})
	}
	return im.place(slot, skillet.Node{Kind: skillet.KindObject, Description: orDefault(desc, "Object"), Fields: fields}), nil
}

func (im *importer) array(doc *object, path []string, slot skillet.NodeID, desc string, base []string) (skillet.NodeID, error) {
	if err := allowOnly(doc, path, base, "type", "items", "minItems", "maxItems"); err != nil {
		return 0, err
	}
	rawItems, ok := doc.get("items")
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "items", "must be present")
	}
	items, ok := rawItems.(*object)
	if !ok {
		return 0, fail(path, skillet.CodeInvalidKeyword, "items", "must be a single schema, not a tuple")
	}
	minItems, err := optCount(doc, "minItems", path)
	if err != nil {
		return 0, err
	}
	maxItems, err := optCount(doc, "maxItems", path)
	if err != nil {
		return 0, err
	}
	if minItems != nil && maxItems != nil && *minItems > *maxItems {
		return 0, fail(path, skillet.CodeInvalidKeyword, "minItems", "must not exceed maxItems")
	}
	elem, err := im.build(items, childPath(path, "items"), skillet.NoNode, false)
	if err != nil {
		return 0, err
	}
	return im.place(slot, skillet.Node{Kind: skillet.KindArray, Description: orDefault(desc, "Array"), Element: elem, MinItems: minItems, MaxItems: maxItems}), nil
}

func allowOnly(doc *object, path []string, base []string, extra ...string) error {
	for _, k := range doc.keys {
		if contains(base, k) || contains(extra, k) {
			continue
		}
		return fail(path, skillet.CodeUnsupportedKeyword, k, "")
	}
	return nil
}

func optString(doc *object, key string, path []string) (string, error) {
	v, ok := doc.get(key)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fail(path, skillet.CodeInvalidKeyword, key, "must be a string")
	}
	return s, nil
}

func optCount(doc *object, key string, path []string) (*int, error) {
	v, ok := doc.get(key)
	if !ok {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f < 0 || math.Trunc(f) != f || f > math.MaxInt32 {
		return nil, fail(path, skillet.CodeInvalidKeyword, key, "must be a non-negative integer")
	}
	n := int(f)
	return &n, nil
}

func scalarMatchesType(v any, typ string) bool {
	switch x := v.(type) {
	case string:
		return typ == "string"
	case bool:
		return typ == "boolean"
	case float64:
		switch typ {
		case "number":
			return true
		case "integer":
			return math.Trunc(x) == x && !math.IsInf(x, 0)
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func cloneStrings(s []string) []string { return append([]string(nil), s...) }

func childPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

// formatPath renders a path for messages.
func formatPath(path []string) string {
	if len(path) == 0 {
		return "schema root"
	}
	return strings.Join(path, ".")
}

// duplicateKey reports key appearing twice in the object at path.
func duplicateKey(path []string, key string) error {
	msg := i18n.T(skillet.CodeDuplicateKey, map[string]string{"key": key}) + " at " + formatPath(path)
	return skillet.Issues{{
		Path:    skillet.JoinPath(path),
		Code:    skillet.CodeDuplicateKey,
		Message: msg,
		Hint:    key,
		Offset:  -1,
		Params:  map[string]any{"key": key},
	}}
}

// fail builds the single-issue error returned by Import and Emit.
func fail(path []string, code, keyword, detail string) error {
	msg := i18n.T(code, map[string]string{"keyword": keyword})
	if detail != "" {
		msg += ": " + detail
	}
	msg += " at " + formatPath(path)
	params := map[string]any{}
	if keyword != "" {
		params["keyword"] = keyword
	}
	return skillet.Issues{{
		Path:    skillet.JoinPath(path),
		Code:    code,
		Message: msg,
		Hint:    keyword,
		Offset:  -1,
		Params:  params,
	}}
}
