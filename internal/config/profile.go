// profile.go
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

package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RenderOptions are the formatting options sent to the rendering service
type RenderOptions struct {
	PageSize    string `toml:"page_size" json:"pageSize"`
	MarginMM    uint64 `toml:"margin_mm" json:"marginMm"`
	Font        string `toml:"font" json:"font"`
	HeaderHTML  string `toml:"header_html" json:"headerHtml,omitempty"`
	FooterHTML  string `toml:"footer_html" json:"footerHtml,omitempty"`
	PageNumbers bool   `toml:"page_numbers" json:"pageNumbers"`
}

// Prompts are the system instructions for each model call
type Prompts struct {
	Analysis    string `toml:"analysis"`
	Enhancement string `toml:"enhancement"`
}

// Profile is the optional TOML file named by RENDER_PROFILE
type Profile struct {
	Render  RenderOptions `toml:"render"`
	Prompts Prompts       `toml:"prompts"`
}

const defaultAnalysisPrompt = `You review documents and return a JSON object with these fields:
"summary" (string), "strengths" (array of strings), "gaps" (array of strings),
"suggestedImprovements" (array of strings), "roleSuggestions" (array of strings),
"keywords" (object mapping a facet name such as "skills" or "tools" to an array of strings).
Return only the JSON object.`

const defaultEnhancementPrompt = `Rewrite the document below for clarity and impact.
Keep every fact, keep the section order, and return plain text only.`

// DefaultProfile returns the built-in render options and prompts
func DefaultProfile() Profile {
	return Profile{
		Render: RenderOptions{
			PageSize:    "A4",
			MarginMM:    15,
			Font:        "Helvetica",
			PageNumbers: true,
		},
		Prompts: Prompts{
			Analysis:    defaultAnalysisPrompt,
			Enhancement: defaultEnhancementPrompt,
		},
	}
}

// LoadProfile reads a TOML profile over the defaults. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read render profile: %w", err)
	}
	if err := toml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse render profile %s: %w", path, err)
	}

	// blank prompt entries keep the built-in text
	if profile.Prompts.Analysis == "" {
		profile.Prompts.Analysis = defaultAnalysisPrompt
	}
	if profile.Prompts.Enhancement == "" {
		profile.Prompts.Enhancement = defaultEnhancementPrompt
	}
	return profile, nil
}
