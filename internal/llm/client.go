// client.go
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

// Package llm is the adapter for the generative model service.
package llm

import (
	"context"
	"errors"
)

// Role tags a request part
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// Part is one role-tagged piece of a request
type Part struct {
	Role Role
	Text string
}

// Request is an ordered list of parts plus the machine-parseable output flag
type Request struct {
	Parts []Part
	JSON  bool
}

// Client sends a request to a generative model and returns its raw text.
// The text is not guaranteed to match the requested format.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// ErrEmptyRequest is returned when a request has no user content
var ErrEmptyRequest = errors.New("llm: request has no user content")

// System is a convenience constructor for a system part
func System(text string) Part {
	return Part{Role: RoleSystem, Text: text}
}

// User is a convenience constructor for a user part
func User(text string) Part {
	return Part{Role: RoleUser, Text: text}
}

// Validate checks the request carries at least one non-system part
func (r Request) Validate() error {
	for _, p := range r.Parts {
		if p.Role != RoleSystem && p.Text != "" {
			return nil
		}
	}
	return ErrEmptyRequest
}
