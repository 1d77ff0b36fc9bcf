package skillet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skillet "github.com/reoring/skillet"
	"github.com/reoring/skillet/dsl"
)

func keys(bs []skillet.Branch) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Key
	}
	return out
}

func TestBranches_UniqueLiteralKeys(t *testing.T) {
	b := dsl.New()
	u := shapes(b)
	bs := skillet.Branches(b.Graph(), u)
	require.Len(t, bs, 2)
	assert.Equal(t, []string{"circle", "square"}, keys(bs))
	assert.Equal(t, "type", bs[0].LiteralField)
	assert.True(t, bs[0].Complex)
}

func TestBranches_FallsBackToIndex(t *testing.T) {
	b := dsl.New()
	obj := func(lits ...any) skillet.NodeID {
		var fs []skillet.Field
		for i, l := range lits {
			fs = append(fs, dsl.F(string(rune('a'+i)), b.Literal(l)))
		}
		fs = append(fs, dsl.F("z", b.Number("z")))
		return b.Object("Opt", fs...)
	}

	cases := map[string]struct {
		options []skillet.NodeID
		want    []string
	}{
		"duplicate values":  {[]skillet.NodeID{obj("x"), obj("x")}, []string{"0", "1"}},
		"two literals":      {[]skillet.NodeID{obj("x", "y"), obj("w")}, []string{"0", "w"}},
		"numeric literal":   {[]skillet.NodeID{obj(1), obj("w")}, []string{"0", "w"}},
		"index collision":   {[]skillet.NodeID{obj("1"), obj("x")}, []string{"0", "x"}},
		"no literal at all": {[]skillet.NodeID{obj(), obj("x")}, []string{"0", "x"}},
		"large number ok":   {[]skillet.NodeID{obj("7"), obj("x")}, []string{"7", "x"}},
	}
	for name, tc := range cases {
		u := b.AnyOf(tc.options...)
		assert.Equal(t, tc.want, keys(skillet.Branches(b.Graph(), u)), name)
	}
}

func TestBranches_SimpleOptions(t *testing.T) {
	b := dsl.New()
	u := b.AnyOf(b.String("s"), b.Streaming.String("ss"), b.Number("n"), b.Array("a", b.Number("n")))
	bs := skillet.Branches(b.Graph(), u)
	require.Len(t, bs, 4)
	assert.False(t, bs[0].Complex)
	assert.Empty(t, bs[0].Key)
	assert.True(t, bs[1].Complex)
	assert.Equal(t, "1", bs[1].Key)
	assert.False(t, bs[2].Complex)
	assert.Equal(t, "3", bs[3].Key)

	assert.Nil(t, skillet.Branches(b.Graph(), b.Number("n")))
}
