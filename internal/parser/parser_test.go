// parser_test.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseStructured(t *testing.T) {
	result := Parse(`{"summary":"x"}`)

	require.Equal(t, KindStructured, result.Kind)
	require.NotNil(t, result.Structured)
	assert.Equal(t, "x", result.Structured.Summary)
	assert.Empty(t, result.RawText)
	assert.True(t, result.IsStructured())
}

func TestParseFallbackInvalidUTF8(t *testing.T) {
	raw := "not json \xff\xfe"
	result := Parse(raw)

	require.Equal(t, KindUnstructured, result.Kind)
	assert.Equal(t, raw, result.Raw())
	assert.Equal(t, "not json \uFFFD", result.RawText)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, raw, decoded.Raw())
	assert.Equal(t, []byte(raw), decoded.RawBytes)
}

func TestParseFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain text", raw: "not json"},
		{name: "empty", raw: ""},
		{name: "json array", raw: `["a","b"]`},
		{name: "json number", raw: `42`},
		{name: "truncated object", raw: `{"summary": "cut off`},
		{name: "wrong field type", raw: `{"summary": 12}`},
		{name: "trailing text", raw: `{"summary":"x"} and then some`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var result Result
			assert.NotPanics(t, func() { result = Parse(tc.raw) })
			assert.Equal(t, KindUnstructured, result.Kind)
			assert.Equal(t, tc.raw, result.RawText)
			assert.Equal(t, tc.raw, result.Raw())
			assert.Nil(t, result.RawBytes)
			assert.Nil(t, result.Structured)
			assert.False(t, result.IsStructured())
		})
	}
}

func TestParseCodeFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"fenced\", \"strengths\": [\" Go \", \"\"]}\n```"
	result := Parse(raw)

	require.True(t, result.IsStructured())
	assert.Equal(t, "fenced", result.Structured.Summary)
	assert.Equal(t, []string{"Go"}, result.Structured.Strengths)
}

func TestParseFullSchema(t *testing.T) {
	raw := `{
		"summary": "  Senior backend engineer  ",
		"strengths": ["distributed systems"],
		"gaps": ["frontend"],
		"suggestedImprovements": ["quantify impact"],
		"roleSuggestions": ["Staff Engineer"],
		"keywords": {" Skills ": ["Go", "go", " Kubernetes "], "tools": [""], "": ["ignored"]}
	}`
	result := Parse(raw)

	require.True(t, result.IsStructured())
	c := result.Structured
	assert.Equal(t, "Senior backend engineer", c.Summary)
	assert.Equal(t, []string{"distributed systems"}, c.Strengths)
	assert.Equal(t, []string{"frontend"}, c.Gaps)
	assert.Equal(t, []string{"quantify impact"}, c.Improvements)
	assert.Equal(t, []string{"Staff Engineer"}, c.RoleSuggestions)
	assert.Equal(t, map[string][]string{"skills": {"go", "kubernetes"}}, c.Keywords)
}

func TestNormalizeKeywordsMergesFacets(t *testing.T) {
	out := NormalizeKeywords(map[string][]string{
		"Skills": {"Rust"},
		"skills": {"go", "rust"},
	})
	assert.Equal(t, map[string][]string{"skills": {"go", "rust"}}, out)
	assert.Nil(t, NormalizeKeywords(nil))
	assert.Nil(t, NormalizeKeywords(map[string][]string{"x": {" "}}))
}

func TestResultJSONIsTagged(t *testing.T) {
	out, err := json.Marshal(Parse("not json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"unstructured","rawText":"not json"}`, string(out))

	out, err = json.Marshal(Parse(`{"summary":"x"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"structured","structured":{"summary":"x"}}`, string(out))
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "not json", Parse("not json").Text())
	assert.JSONEq(t, `{"summary":"x"}`, Parse(`{"summary":"x"}`).Text())
}
