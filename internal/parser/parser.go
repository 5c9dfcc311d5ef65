// parser.go
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

// Package parser turns raw generative model output into analysis content.
//
// Parse is total: model output that is not a JSON object is kept verbatim as an
// unstructured result instead of being reported as an error.
package parser

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind discriminates the two shapes a Result can take
type Kind string

const (
	KindStructured   Kind = "structured"
	KindUnstructured Kind = "unstructured"
)

// Commentary is the structured analysis the model is instructed to return
type Commentary struct {
	Summary         string              `json:"summary"`
	Strengths       []string            `json:"strengths,omitempty"`
	Gaps            []string            `json:"gaps,omitempty"`
	Improvements    []string            `json:"suggestedImprovements,omitempty"`
	RoleSuggestions []string            `json:"roleSuggestions,omitempty"`
	Keywords        map[string][]string `json:"keywords,omitempty"`
}

// Result is the tagged variant stored as analysis content.
// Structured is set only for KindStructured, RawText only for KindUnstructured.
// RawBytes holds the exact output when it is not valid UTF-8, since RawText
// cannot carry those bytes through JSON.
type Result struct {
	Kind       Kind        `json:"kind"`
	Structured *Commentary `json:"structured,omitempty"`
	RawText    string      `json:"rawText,omitempty"`
	RawBytes   []byte      `json:"rawBytes,omitempty"`
}

// IsStructured reports whether the model output decoded against the schema
func (r Result) IsStructured() bool {
	return r.Kind == KindStructured && r.Structured != nil
}

// Unstructured wraps raw text as a fallback result
func Unstructured(raw string) Result {
	if !utf8.ValidString(raw) {
		return Result{
			Kind:     KindUnstructured,
			RawText:  strings.ToValidUTF8(raw, "\uFFFD"),
			RawBytes: []byte(raw),
		}
	}
	return Result{Kind: KindUnstructured, RawText: raw}
}

// Raw returns the unstructured output exactly as the model produced it
func (r Result) Raw() string {
	if r.RawBytes != nil {
		return string(r.RawBytes)
	}
	return r.RawText
}

// Parse decodes raw model output. It never fails.
func Parse(raw string) Result {
	body := stripFence(raw)
	if !strings.HasPrefix(body, "{") {
		return Unstructured(raw)
	}

	var c Commentary
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&c); err != nil {
		return Unstructured(raw)
	}
	// trailing garbage after the object means the model did not follow the format
	if dec.More() {
		return Unstructured(raw)
	}

	c.Summary = strings.TrimSpace(c.Summary)
	c.Strengths = cleanList(c.Strengths)
	c.Gaps = cleanList(c.Gaps)
	c.Improvements = cleanList(c.Improvements)
	c.RoleSuggestions = cleanList(c.RoleSuggestions)
	c.Keywords = NormalizeKeywords(c.Keywords)

	return Result{Kind: KindStructured, Structured: &c}
}

// Text renders the result as plain text, used when a prior analysis is fed back to the model
func (r Result) Text() string {
	if !r.IsStructured() {
		return r.RawText
	}
	out, err := json.Marshal(r.Structured)
	if err != nil {
		return r.Structured.Summary
	}
	return string(out)
}

// NormalizeKeywords lower-cases and trims facet names and values, drops blanks,
// and de-duplicates and sorts the values of each facet.
func NormalizeKeywords(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for facet, values := range in {
		facet = strings.ToLower(strings.TrimSpace(facet))
		if facet == "" {
			continue
		}
		seen := make(map[string]struct{}, len(values)+len(out[facet]))
		merged := out[facet]
		for _, v := range merged {
			seen[v] = struct{}{}
		}
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
		if len(merged) == 0 {
			continue
		}
		sort.Strings(merged)
		out[facet] = merged
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stripFence removes a surrounding Markdown code fence such as ```json ... ```
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
