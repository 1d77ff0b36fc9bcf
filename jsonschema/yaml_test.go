package jsonschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skillet "github.com/reoring/skillet"
	"github.com/reoring/skillet/jsonschema"
)

const personYAML = `
type: object
description: Person
additionalProperties: false
required: [name, age, score]
properties:
  name:
    type: string
    format: email
  age:
    type: integer
    minimum: 0
  score: &num
    type: number
    maximum: 1.5
`

func TestImportYAML(t *testing.T) {
	s, err := jsonschema.ImportYAML([]byte(personYAML))
	require.NoError(t, err)
	root := s.RootNode()
	assert.Equal(t, "Person", root.Description)
	require.Len(t, root.Fields, 3)
	assert.Equal(t, "name", root.Fields[0].Name)
	assert.Equal(t, "age", root.Fields[1].Name)

	age := s.Graph().Node(root.Fields[1].Node)
	assert.Equal(t, skillet.KindInteger, age.Kind)
	assert.Equal(t, 0.0, *age.Bounds.Minimum)
	score := s.Graph().Node(root.Fields[2].Node)
	assert.Equal(t, 1.5, *score.Bounds.Maximum)
}

func TestImportYAML_Aliases(t *testing.T) {
	doc := `
type: object
additionalProperties: false
required: [a, b]
properties:
  a: &num
    type: number
  b: *num
`
	s, err := jsonschema.ImportYAML([]byte(doc))
	require.NoError(t, err)
	for _, f := range s.RootNode().Fields {
		assert.Equal(t, skillet.KindNumber, s.Graph().Node(f.Node).Kind, f.Name)
	}
}

func TestImportYAML_Errors(t *testing.T) {
	_, err := jsonschema.ImportYAML([]byte("type: [string, 'null']\n"))
	iss, ok := skillet.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skillet.CodeInvalidKeyword, iss[0].Code)

	_, err = jsonschema.ImportYAML([]byte("type: object\nproperties: [\n"))
	require.Error(t, err)
	_, ok = skillet.AsIssues(err)
	assert.False(t, ok)
}

func TestImportYAML_DuplicateKeys(t *testing.T) {
	doc := "type: object\nadditionalProperties: true\nrequired: []\nproperties: {}\nadditionalProperties: false\n"
	_, err := jsonschema.ImportYAML([]byte(doc))
	iss, ok := skillet.AsIssues(err)
	require.True(t, ok, "err=%v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, skillet.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "", iss[0].Path)
	assert.Equal(t, "additionalProperties", iss[0].Params["key"])

	doc = "type: object\nadditionalProperties: false\nrequired: [a]\nproperties:\n  a: {type: string}\n  a: {type: number}\n"
	_, err = jsonschema.ImportYAML([]byte(doc))
	iss, ok = skillet.AsIssues(err)
	require.True(t, ok, "err=%v", err)
	assert.Equal(t, "properties", iss[0].Path)
	assert.Equal(t, "a", iss[0].Hint)
}
