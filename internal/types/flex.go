// flex.go
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

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexText is text that can be unmarshaled from either a JSON string or a JSON array of strings.
// Array entries are kept as separate lines.
type FlexText []string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}

	if data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("FlexText: expected string array: %w", err)
		}
		*f = FlexText(lines)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexText: expected string or string array: %w", err)
	}
	*f = FlexText{s}
	return nil
}

// Lines returns the non-blank entries, trimmed.
func (f FlexText) Lines() []string {
	out := make([]string, 0, len(f))
	for _, line := range f {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// String joins the non-blank entries with newlines.
func (f FlexText) String() string {
	return strings.Join(f.Lines(), "\n")
}

// FlexUint is a uint64 that can be unmarshaled from a JSON number, a numeric JSON string,
// or an empty string (zero).
type FlexUint uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexUint(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexUint: unexpected type, expected number or string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("FlexUint: invalid number %q: %w", s, err)
	}
	*f = FlexUint(val)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexUint) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts FlexUint back to uint64.
func (f FlexUint) Uint64() uint64 {
	return uint64(f)
}
