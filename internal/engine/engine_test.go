package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skillet/internal/engine"
)

func scan(t *testing.T, buf string, final bool) *engine.Document {
	t.Helper()
	doc, err := engine.Scan(buf, final, engine.EnforceOptions{})
	require.NoError(t, err, "buf=%q", buf)
	return doc
}

func TestScan_WhitespaceOnly(t *testing.T) {
	for _, buf := range []string{"", "   ", " \n\t\r "} {
		doc := scan(t, buf, true)
		assert.Nil(t, doc.Root, "buf=%q", buf)
		assert.Equal(t, -1, doc.Trailing)
	}
}

func TestScan_PartialStrings(t *testing.T) {
	cases := []struct {
		buf      string
		text     string
		complete bool
	}{
		{`"`, "", false},
		{`"he`, "he", false},
		{`"hello"`, "hello", true},
		{`"a\`, "a", false},
		{`"a\n`, "a\n", false},
		{`"a\u00`, "a", false},
		{`"aé"`, "aé", true},
		{`"\ud83d`, "", false},
		{`"\ud83d\ude`, "", false},
		{`"\ud83d\ude00"`, "😀", true},
		{`"\ud83d"`, "\uFFFD", true},
		{"\"tab\traw\"", "tab\traw", true},
		{"\"h\xc3", "h", false},
		{"\"h\xc3\xa9", "hé", false},
	}
	for _, tc := range cases {
		doc := scan(t, tc.buf, false)
		require.NotNil(t, doc.Root, "buf=%q", tc.buf)
		assert.Equal(t, engine.KindString, doc.Root.Kind, "buf=%q", tc.buf)
		assert.Equal(t, tc.text, doc.Root.Text, "buf=%q", tc.buf)
		assert.Equal(t, tc.complete, doc.Root.Complete, "buf=%q", tc.buf)
	}
}

func TestScan_InvalidEscape(t *testing.T) {
	_, err := engine.Scan(`"a\x"`, false, engine.EnforceOptions{})
	require.Error(t, err)
	_, err = engine.Scan(`"\u12g4"`, false, engine.EnforceOptions{})
	require.Error(t, err)
}

func TestScan_Numbers(t *testing.T) {
	cases := []struct {
		buf      string
		final    bool
		complete bool
	}{
		{"12", false, false},
		{"12", true, true},
		{"-", true, false},
		{"1.", true, false},
		{"1.5", true, true},
		{"1e", true, false},
		{"1e+", true, false},
		{"1e+5", true, true},
		{"0", true, true},
		{"-0.25", false, false},
		{"7 ", false, true},
	}
	for _, tc := range cases {
		doc := scan(t, tc.buf, tc.final)
		require.NotNil(t, doc.Root, "buf=%q", tc.buf)
		assert.Equal(t, engine.KindNumber, doc.Root.Kind)
		assert.Equal(t, tc.complete, doc.Root.Complete, "buf=%q final=%v", tc.buf, tc.final)
	}

	doc := scan(t, "[1.5]", false)
	require.Len(t, doc.Root.Items, 1)
	assert.Equal(t, "1.5", doc.Root.Items[0].Text)
	assert.True(t, doc.Root.Items[0].Complete)

	for _, bad := range []string{"1.x", "-a", "1e*", "[01]"} {
		_, err := engine.Scan(bad, true, engine.EnforceOptions{})
		assert.Error(t, err, "buf=%q", bad)
	}
}

func TestScan_Keywords(t *testing.T) {
	doc := scan(t, "tr", false)
	assert.Equal(t, engine.KindBool, doc.Root.Kind)
	assert.False(t, doc.Root.Complete)

	doc = scan(t, "false", false)
	assert.True(t, doc.Root.Complete)
	assert.False(t, doc.Root.Bool)

	doc = scan(t, "nul", true)
	assert.Equal(t, engine.KindNull, doc.Root.Kind)
	assert.False(t, doc.Root.Complete)

	_, err := engine.Scan("trux", false, engine.EnforceOptions{})
	require.Error(t, err)
}

func TestScan_PartialContainers(t *testing.T) {
	doc := scan(t, "[1,", false)
	require.Equal(t, engine.KindArray, doc.Root.Kind)
	assert.False(t, doc.Root.Complete)
	require.Len(t, doc.Root.Items, 1)
	assert.True(t, doc.Root.Items[0].Complete)

	doc = scan(t, `{"a":`, false)
	assert.Equal(t, []string{"a"}, doc.Root.Keys)
	v, ok := doc.Root.Get("a")
	assert.True(t, ok)
	assert.Nil(t, v)

	doc = scan(t, `{"ab`, false)
	assert.Empty(t, doc.Root.Keys)

	doc = scan(t, `{"a":{"b":[true`, false)
	a, _ := doc.Root.Get("a")
	b, _ := a.Get("b")
	require.Len(t, b.Items, 1)
	assert.True(t, b.Items[0].Bool)
	assert.False(t, a.Complete)
}

func TestScan_Malformed(t *testing.T) {
	cases := map[string]string{
		`{"a":1,{}}`: "expected string key in object",
		`[1,]`:       "trailing comma in array",
		`[1 2]`:      "expected ',' or ']' in array",
		`{"a" 1}`:    "expected ':' after object key",
		`{"a":1 "b"`: "expected ',' or '}' in object",
	}
	for buf, msg := range cases {
		_, err := engine.Scan(buf, false, engine.EnforceOptions{})
		var ie engine.IssueError
		require.True(t, errors.As(err, &ie), "buf=%q", buf)
		assert.Equal(t, msg, ie.Message, "buf=%q", buf)
		assert.Equal(t, "parse_error", ie.Code)
	}

	_, err := engine.Scan(`{"a":[1,x]}`, false, engine.EnforceOptions{})
	var ie engine.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "a.1", ie.Path)
	assert.Equal(t, 8, ie.Offset)
}

func TestScan_Trailing(t *testing.T) {
	doc := scan(t, `{"a":1}garbage`, true)
	require.NotNil(t, doc.Root)
	assert.True(t, doc.Root.Complete)
	assert.Equal(t, 7, doc.Trailing)

	doc = scan(t, "{\"a\":1}  \n", true)
	assert.Equal(t, -1, doc.Trailing)

	doc = scan(t, `{"a":1`, true)
	assert.Equal(t, -1, doc.Trailing)
}

func TestScan_Limits(t *testing.T) {
	_, err := engine.Scan("[[[1]]]", false, engine.EnforceOptions{MaxDepth: 2})
	require.Error(t, err)
	_, err = engine.Scan("[[1]]", false, engine.EnforceOptions{MaxDepth: 2})
	require.NoError(t, err)

	_, err = engine.Scan("[1,2]", false, engine.EnforceOptions{MaxBytes: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max bytes exceeded")
}

func TestScan_DuplicateKeys(t *testing.T) {
	doc := scan(t, `{"a":1,"a":2}`, true)
	v, ok := doc.Root.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v.Text)

	var got []engine.SimpleIssue
	sink := func(si engine.SimpleIssue) { got = append(got, si) }
	_, err := engine.Scan(`{"o":{"a":1,"a":2}}`, true, engine.EnforceOptions{OnDuplicate: engine.DupWarn, IssueSink: sink})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "duplicate_key", got[0].Code)
	assert.Equal(t, "o.a", got[0].Path)
	assert.Equal(t, "a", got[0].Key)

	_, err = engine.Scan(`{"a":1,"a":2}`, true, engine.EnforceOptions{OnDuplicate: engine.DupError})
	require.Error(t, err)
}
