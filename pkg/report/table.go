// Copyright 2026 The Gitian Verify Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders a release verification matrix for humans and for
// machines.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/manifest"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/release"
	"github.com/bitcoin-core/bitcoin-maintainer-tools/pkg/verify"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	sectionStyle = lipgloss.NewStyle().Reverse(true)

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	diffOldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	diffNewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// glyph is one status cell: its text and the style it renders with. Width
// calculations use the unstyled text.
type glyph struct {
	text  string
	style lipgloss.Style
}

func statusGlyph(s verify.Status) glyph {
	switch s {
	case verify.StatusOK:
		return glyph{"OK", okStyle}
	case verify.StatusMissingKey:
		return glyph{"No Key", noKeyStyle}
	case verify.StatusExpiredKey:
		return glyph{"Expired", noKeyStyle}
	case verify.StatusInvalidSig:
		return glyph{"Bad", badStyle}
	case verify.StatusMismatch:
		return glyph{"Mismatch", badStyle}
	default:
		// Not submitted and no-file both render as a quiet dash.
		return glyph{"-", skipStyle}
	}
}

// center pads s to width, splitting the padding evenly with the extra space
// on the right.
func center(s string, textWidth, width int) string {
	pad := width - textWidth
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", (pad+1)/2)
}

// TableReporter renders the matrix as the classic signer-by-build terminal
// table, followed by the missing-key and mismatch sections.
type TableReporter struct {
	out io.Writer
}

// NewTableReporter returns a reporter writing to out.
func NewTableReporter(out io.Writer) *TableReporter {
	return &TableReporter{out: out}
}

// Render writes the full report for one release matrix.
func (r *TableReporter) Render(matrix *release.Matrix) error {
	nameWidth := len("Signer")
	for _, signer := range matrix.Signers {
		if len(signer) > nameWidth {
			nameWidth = len(signer)
		}
	}

	// Cells are as wide as the longest build name or the longest glyph.
	cellWidth := len("Mismatch")
	for _, build := range matrix.Builds {
		if len(build.BuildName) > cellWidth {
			cellWidth = len(build.BuildName)
		}
	}

	var header strings.Builder
	header.WriteString(pad("Signer", nameWidth))
	header.WriteString("  ")
	for _, build := range matrix.Builds {
		header.WriteString(center(build.BuildName, len(build.BuildName), cellWidth))
		header.WriteString("  ")
	}
	if _, err := fmt.Fprintln(r.out, headerStyle.Render(header.String())); err != nil {
		return err
	}

	for _, signer := range matrix.Signers {
		var line strings.Builder
		line.WriteString(pad(signer, nameWidth))
		line.WriteString("  ")
		for _, build := range matrix.Builds {
			g := statusGlyph(matrix.Status(signer, build.BuildName))
			line.WriteString(center(g.style.Render(g.text), len(g.text), cellWidth))
			line.WriteString("  ")
		}
		if _, err := fmt.Fprintln(r.out, line.String()); err != nil {
			return err
		}
	}

	if err := r.renderMissingKeys(matrix, nameWidth); err != nil {
		return err
	}
	return r.renderMismatches(matrix)
}

func (r *TableReporter) renderMissingKeys(matrix *release.Matrix, nameWidth int) error {
	if len(matrix.MissingKeys) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(r.out, "\n%s\n", sectionStyle.Render("Missing keys")); err != nil {
		return err
	}
	for _, id := range matrix.MissingKeyIDs() {
		fingerprint := id.Fingerprint
		if fingerprint == "" {
			fingerprint = "???"
		}
		_, err := fmt.Fprintf(r.out, "%s  %s  %s\n",
			pad(id.Signer, nameWidth), fingerprint, matrix.MissingKeys[id])
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *TableReporter) renderMismatches(matrix *release.Matrix) error {
	if len(matrix.Mismatches) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(r.out, "\n%s\n", sectionStyle.Render("Mismatches")); err != nil {
		return err
	}
	// Build order keeps the sections aligned with the table columns.
	for _, build := range matrix.Builds {
		for _, mismatch := range matrix.Mismatches[build.BuildName] {
			if _, err := fmt.Fprintf(r.out, "%s (%s):\n", mismatch.Signer, build.BuildName); err != nil {
				return err
			}
			for _, pair := range manifest.DiffLines(mismatch.Actual, mismatch.Reference) {
				_, err := fmt.Fprintf(r.out, "  -%s\n  +%s\n",
					diffOldStyle.Render(pair.Reference), diffNewStyle.Render(pair.Actual))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
