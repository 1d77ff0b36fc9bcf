package skillet_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	skillet "github.com/reoring/skillet"
)

func TestIssues_Error(t *testing.T) {
	iss := skillet.Issues{
		{Code: skillet.CodeRequired, Path: "a", Message: "required property a missing"},
		{Code: skillet.CodeInvalidType, Path: "", Message: skillet.CodeInvalidType},
		{Code: skillet.CodeNoMatch, Path: "b.0"},
		{Code: skillet.CodeNoMatch, Path: "b.1"},
		{Code: skillet.CodeNoMatch, Path: "b.2"},
	}
	assert.Equal(t,
		"required at a (required property a missing); invalid_type at root; no_match at b.0; ... (total 5)",
		iss.Error())
	assert.Equal(t, "", skillet.Issues{}.Error())
}

func TestAsIssues(t *testing.T) {
	iss := skillet.Issues{{Code: skillet.CodeParseError}}
	got, ok := skillet.AsIssues(fmt.Errorf("wrapped: %w", iss))
	assert.True(t, ok)
	assert.Equal(t, iss, got)

	_, ok = skillet.AsIssues(nil)
	assert.False(t, ok)
	_, ok = skillet.AsIssues(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestAppendIssuesAndJoinPath(t *testing.T) {
	var iss skillet.Issues
	iss = skillet.AppendIssues(iss)
	assert.NotNil(t, iss)
	assert.Empty(t, iss)
	assert.Equal(t, "items.2.price", skillet.JoinPath([]string{"items", "2", "price"}))
	assert.Equal(t, "", skillet.JoinPath(nil))
}
