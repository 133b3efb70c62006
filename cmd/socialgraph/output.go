// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
)

var (
	colorTeal  = lipgloss.Color("#20B9B4")
	colorBrite = lipgloss.Color("#2CD7C7")
	colorSlate = lipgloss.Color("#2C4A54")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorBrite)
	labelStyle     = lipgloss.NewStyle().Foreground(colorTeal)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorSlate)
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrite)
	boxStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTeal).
			Padding(0, 1)
)

// maxListed caps how many IDs are printed inline in text output.
const maxListed = 20

// printer renders command results as styled text or JSON.
type printer struct {
	w      io.Writer
	json   bool
	styled bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON, styled: !asJSON && isTerminal(w)}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) title(s string) {
	fmt.Fprintln(p.w, p.render(titleStyle, s))
}

func (p *printer) field(label string, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(labelStyle, label+":"), value)
}

func (p *printer) note(s string) {
	fmt.Fprintln(p.w, p.render(mutedStyle, s))
}

// count formats n with thousands separators.
func count(n int) string {
	return humanize.Comma(int64(n))
}

// idList renders ids inline, eliding beyond maxListed.
func idList(ids []graph.VertexID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	shown := ids
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	parts := make([]string, len(shown))
	for i, id := range shown {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	out := strings.Join(parts, ", ")
	if len(ids) > maxListed {
		out += fmt.Sprintf(", … (%s more)", count(len(ids)-maxListed))
	}
	return out
}

// pathString renders a path as "1 → 2 → 3".
func pathString(path []graph.VertexID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, " → ")
}

func (p *printer) banner(lines ...string) {
	body := strings.Join(lines, "\n")
	if p.styled {
		fmt.Fprintln(p.w, boxStyle.Render(body))
		return
	}
	fmt.Fprintln(p.w, body)
}
