package jsonschema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skillet "github.com/reoring/skillet"
	"github.com/reoring/skillet/dsl"
	"github.com/reoring/skillet/jsonschema"
)

func prop(t *testing.T, s *jsonschema.Schema, name string) *jsonschema.Schema {
	t.Helper()
	require.NotNil(t, s)
	p, ok := s.Properties.Get(name)
	require.True(t, ok, "property %q missing; have %v", name, s.Properties.Keys())
	return p
}

func TestEmit_WrapsNonObjectRoot(t *testing.T) {
	b := dsl.New()
	s := b.Build(b.String("Answer"))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)
	assert.Equal(t, jsonschema.Draft07, doc.Schema)
	assert.Equal(t, "object", doc.Type)
	assert.Equal(t, []string{skillet.PrimitiveWrapperField}, doc.Properties.Keys())
	assert.Equal(t, []string{skillet.PrimitiveWrapperField}, doc.Required)
	require.NotNil(t, doc.AdditionalProperties)
	assert.False(t, *doc.AdditionalProperties)
	inner := prop(t, doc, skillet.PrimitiveWrapperField)
	assert.Equal(t, "string", inner.Type)
	assert.Equal(t, "Answer", inner.Description)

	// The wrapper is not special to the importer.
	_, err = jsonschema.Import(doc)
	iss, ok := skillet.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skillet.CodeInvalidSchema, iss[0].Code)
	assert.Equal(t, skillet.PrimitiveWrapperField, iss[0].Path)
}

func TestEmit_SharedNodesGoToDefs(t *testing.T) {
	b := dsl.New()
	addr := b.Object("Postal address", dsl.F("city", b.String("City")))
	item := b.Object("Item", dsl.F("x", b.Number("x")))
	other := b.Object("Item", dsl.F("y", b.Number("y")))
	s := b.Build(b.Object("Person",
		dsl.F("home", addr),
		dsl.F("work", addr),
		dsl.F("i1", item),
		dsl.F("i2", item),
		dsl.F("o1", other),
		dsl.F("o2", other),
	))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/postalAddress", prop(t, doc, "home").Ref)
	assert.Equal(t, "#/$defs/postalAddress", prop(t, doc, "work").Ref)
	assert.Equal(t, "#/$defs/item", prop(t, doc, "i2").Ref)
	assert.Equal(t, "#/$defs/item1", prop(t, doc, "o1").Ref)
	assert.Equal(t, []string{"postalAddress", "item", "item1"}, doc.Defs.Keys())

	def, ok := doc.Defs.Get("postalAddress")
	require.True(t, ok)
	assert.Equal(t, "object", def.Type)
	assert.Equal(t, "string", prop(t, def, "city").Type)
}

func TestEmit_ObjectRootCycleUsesHash(t *testing.T) {
	b := dsl.New()
	tree := b.Declare()
	b.Define(tree, b.Object("Tree",
		dsl.F("value", b.Number("Value")),
		dsl.F("children", b.Array("Children", tree)),
	))

	doc, err := jsonschema.Emit(b.Build(tree))
	require.NoError(t, err)
	assert.Equal(t, "#", prop(t, doc, "children").Items.Ref)
	assert.Nil(t, doc.Defs)
}

func TestEmit_NonObjectRootCycleGoesToDefs(t *testing.T) {
	b := dsl.New()
	list := b.Declare()
	b.Define(list, b.AnyOf(b.Null(), b.Object("Cons",
		dsl.F("head", b.Number("Head")),
		dsl.F("tail", list),
	)))

	doc, err := jsonschema.Emit(b.Build(list))
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/def1", prop(t, doc, skillet.PrimitiveWrapperField).Ref)

	def, ok := doc.Defs.Get("def1")
	require.True(t, ok)
	require.Len(t, def.AnyOf, 2)
	assert.Equal(t, "null", def.AnyOf[0].Type)
	cons := prop(t, def.AnyOf[1], "1")
	assert.Equal(t, "#/$defs/def1", prop(t, cons, "tail").Ref)
}

func TestEmit_AnyOfEnvelopes(t *testing.T) {
	b := dsl.New()
	circle := b.Object("Circle", dsl.F("type", b.Literal("circle")), dsl.F("radius", b.Number("Radius")))
	square := b.Object("Square", dsl.F("type", b.Literal("square")), dsl.F("side", b.Number("Side")))
	s := b.Build(b.Object("Doc",
		dsl.F("shape", b.AnyOf(circle, square)),
		dsl.F("v", b.AnyOf(b.Number("n"), b.Array("list", b.Number("n")))),
	))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)

	shape := prop(t, doc, "shape")
	require.Len(t, shape.AnyOf, 2)
	env := shape.AnyOf[0]
	assert.Equal(t, []string{"circle"}, env.Required)
	assert.False(t, *env.AdditionalProperties)
	inner := prop(t, env, "circle")
	assert.Equal(t, []string{"radius"}, inner.Properties.Keys())
	assert.Equal(t, []string{"radius"}, inner.Required)

	v := prop(t, doc, "v")
	require.Len(t, v.AnyOf, 2)
	assert.Equal(t, "number", v.AnyOf[0].Type)
	assert.Equal(t, "array", prop(t, v.AnyOf[1], "1").Type)
}

func TestEmit_SharedLiteralKeyedOptionDropsLiteralInEnvelope(t *testing.T) {
	b := dsl.New()
	person := b.Object("Person", dsl.F("type", b.Literal("person")), dsl.F("name", b.String("Name")))
	company := b.Object("Company", dsl.F("type", b.Literal("company")), dsl.F("vat", b.String("Vat")))
	s := b.Build(b.Object("Doc",
		dsl.F("owner", person),
		dsl.F("party", b.AnyOf(person, company)),
	))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/person", prop(t, doc, "owner").Ref)

	party := prop(t, doc, "party")
	require.Len(t, party.AnyOf, 2)
	ref := prop(t, party.AnyOf[0], "person").Ref
	assert.Equal(t, "#/$defs/person1", ref)
	assert.Equal(t, []string{"vat"}, prop(t, party.AnyOf[1], "company").Required)

	assert.Equal(t, []string{"person", "person1"}, doc.Defs.Keys())
	full, _ := doc.Defs.Get("person")
	assert.Equal(t, []string{"type", "name"}, full.Required)
	variant, _ := doc.Defs.Get("person1")
	assert.Equal(t, []string{"name"}, variant.Required)
	assert.Equal(t, []string{"name"}, variant.Properties.Keys())

	_, err = jsonschema.Import(doc)
	require.NoError(t, err)

	// The materializer reads the envelope the same way.
	snap, err := skillet.Materialize(s, `{"owner":{"type":"person","name":"a"},"party":{"person":{"name":"b"}}}`, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"owner": map[string]any{"type": "person", "name": "a"},
		"party": map[string]any{"type": "person", "name": "b"},
	}, snap.Value)
	assert.Empty(t, snap.Diagnostics)
}

func TestEmit_StreamingPropertiesLast(t *testing.T) {
	b := dsl.New()
	s := b.Build(b.Object("Doc",
		dsl.F("body", b.Streaming.String("Body")),
		dsl.F("id", b.Integer("Id")),
		dsl.F("tags", b.Streaming.Array("Tags", b.String("tag"))),
		dsl.F("title", b.String("Title")),
	))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "body", "tags"}, doc.Properties.Keys())
	assert.Equal(t, []string{"id", "title", "body", "tags"}, doc.Required)

	out, err := jsonschema.EmitJSON(s)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, jsonschema.Draft07)
	assert.Less(t, strings.Index(text, `"id"`), strings.Index(text, `"body"`))
	assert.Contains(t, text, `"additionalProperties": false`)
}

func TestEmit_Keywords(t *testing.T) {
	b := dsl.New()
	s := b.Build(b.Object("Doc",
		dsl.F("when", b.String("When", dsl.Format("date-time"))),
		dsl.F("age", b.Integer("Age", dsl.Minimum(0), dsl.Maximum(150))),
		dsl.F("list", b.Array("List", b.Boolean("flag"), dsl.MinItems(1), dsl.MaxItems(3))),
		dsl.F("color", b.Enum("Color", "red", "green")),
		dsl.F("on", b.Literal(true)),
		dsl.F("n", b.Literal(4)),
	))

	doc, err := jsonschema.Emit(s)
	require.NoError(t, err)
	assert.Equal(t, "date-time", prop(t, doc, "when").Format)
	age := prop(t, doc, "age")
	assert.Equal(t, "integer", age.Type)
	assert.Equal(t, 150.0, *age.Maximum)
	list := prop(t, doc, "list")
	assert.Equal(t, 1, *list.MinItems)
	assert.Equal(t, "boolean", list.Items.Type)
	color := prop(t, doc, "color")
	assert.Equal(t, "string", color.Type)
	assert.Equal(t, []any{"red", "green"}, color.Enum)
	assert.Equal(t, "boolean", prop(t, doc, "on").Type)
	assert.Equal(t, true, prop(t, doc, "on").Const)
	assert.Equal(t, "number", prop(t, doc, "n").Type)
	assert.Equal(t, 4.0, prop(t, doc, "n").Const)
}

func TestEmit_RejectsMalformedGraphs(t *testing.T) {
	cases := map[string]func(b *dsl.Builder) skillet.NodeID{
		"empty enum": func(b *dsl.Builder) skillet.NodeID {
			return b.Object("Doc", dsl.F("e", b.Enum("E")))
		},
		"dangling element": func(b *dsl.Builder) skillet.NodeID {
			return b.Array("A", skillet.NoNode)
		},
		"declared never defined": func(b *dsl.Builder) skillet.NodeID {
			return b.Object("Doc", dsl.F("x", b.Declare()))
		},
		"bad literal": func(b *dsl.Builder) skillet.NodeID {
			return b.Object("Doc", dsl.F("x", b.Literal([]int{1})))
		},
		"duplicate property": func(b *dsl.Builder) skillet.NodeID {
			return b.Object("Doc", dsl.F("x", b.Null()), dsl.F("x", b.Null()))
		},
		"inverted items": func(b *dsl.Builder) skillet.NodeID {
			return b.Array("A", b.Null(), dsl.MinItems(3), dsl.MaxItems(1))
		},
		"empty anyOf": func(b *dsl.Builder) skillet.NodeID {
			return b.AnyOf()
		},
	}
	for name, build := range cases {
		b := dsl.New()
		_, err := jsonschema.Emit(b.Build(build(b)))
		iss, ok := skillet.AsIssues(err)
		require.True(t, ok, name)
		assert.Equal(t, skillet.CodeInvalidSchema, iss[0].Code, name)
	}
}
