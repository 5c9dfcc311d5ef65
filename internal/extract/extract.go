// extract.go
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

// Package extract turns source documents into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned for content types no extractor handles
var ErrUnsupportedType = errors.New("unsupported content type")

// ErrPDFToolNotFound is returned when pdftotext is not installed
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// Source is a document to extract
type Source struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extractor extracts plain text from a source document
type Extractor interface {
	Extract(ctx context.Context, src Source) (string, error)
}

// CommandRunner runs an external command with stdin and returns stdout
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements CommandRunner
func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Mux routes a source to the extractor for its content type
type Mux struct {
	pdf *PDF
}

// New creates the default extractor set
func New(pdfToTextPath string) *Mux {
	return &Mux{pdf: &PDF{Tool: pdfToTextPath, runner: ExecRunner{}}}
}

// NewWithRunner creates the default extractor set with an injected command runner
func NewWithRunner(pdfToTextPath string, runner CommandRunner) *Mux {
	return &Mux{pdf: &PDF{Tool: pdfToTextPath, runner: runner}}
}

// Extract implements Extractor
func (m *Mux) Extract(ctx context.Context, src Source) (string, error) {
	switch mediaType(src) {
	case "application/pdf":
		return m.pdf.Extract(ctx, src)
	case "text/plain", "text/markdown", "text/csv", "":
		return PlainText(src.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, src.ContentType)
	}
}

// PDF extracts text from page-formatted documents using pdftotext
type PDF struct {
	Tool   string
	runner CommandRunner
}

// Extract implements Extractor
func (p *PDF) Extract(ctx context.Context, src Source) (string, error) {
	if len(src.Data) == 0 {
		return "", fmt.Errorf("empty pdf %q", src.Name)
	}
	if _, ok := p.runner.(ExecRunner); ok {
		if _, err := exec.LookPath(p.Tool); err != nil {
			return "", ErrPDFToolNotFound
		}
	}

	// read from stdin, write to stdout
	out, err := p.runner.Run(ctx, src.Data, p.Tool, "-layout", "-enc", "UTF-8", "-", "-")
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed for %q: %w", src.Name, err)
	}
	return normalize(string(out)), nil
}

// PlainText validates and normalizes text content
func PlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return normalize(string(data)), nil
}

func mediaType(src Source) string {
	ct := src.ContentType
	if ct == "" {
		if strings.HasSuffix(strings.ToLower(src.Name), ".pdf") {
			return "application/pdf"
		}
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return mt
}

// normalize unifies line endings, drops NUL and form-feed page breaks and trims trailing space
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\f", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
