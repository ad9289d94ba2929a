// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/model"
	"github.com/jeranaias/docquery-tui/internal/ui/styles"
	"github.com/jeranaias/docquery-tui/internal/util"
)

// =============================================================================
// DOCUMENT LIST PANE
// =============================================================================

// DocList is the side pane listing registered documents with a cursor for
// delete selection.
type DocList struct {
	docs   []model.Document
	cursor int
}

// SetDocuments replaces the listed documents, clamping the cursor.
func (l *DocList) SetDocuments(docs []model.Document) {
	l.docs = docs
	if l.cursor >= len(docs) {
		l.cursor = len(docs) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// CursorUp moves the selection up.
func (l *DocList) CursorUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// CursorDown moves the selection down.
func (l *DocList) CursorDown() {
	if l.cursor < len(l.docs)-1 {
		l.cursor++
	}
}

// Selected returns the document under the cursor, or nil when empty.
func (l *DocList) Selected() *model.Document {
	if len(l.docs) == 0 {
		return nil
	}
	return &l.docs[l.cursor]
}

// Len returns the number of listed documents.
func (l *DocList) Len() int {
	return len(l.docs)
}

// statusIcon maps a document status to its indicator and color.
func statusIcon(s model.DocumentStatus) (string, lipgloss.AdaptiveColor) {
	switch s {
	case model.StatusProcessing:
		return styles.StatusIndicators.Pending, styles.Amber
	case model.StatusFailed:
		return styles.StatusIndicators.Error, styles.Rose
	}
	return styles.StatusIndicators.Success, styles.Emerald
}

// Render draws the pane at the given width, focused or not.
func (l *DocList) Render(width, height int, focused bool) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Documents"))
	b.WriteString("\n")

	if len(l.docs) == 0 {
		b.WriteString(mutedStyle.Render("No documents yet."))
	}

	inner := width - 4
	visible := height - 3
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.cursor >= visible {
		start = l.cursor - visible + 1
	}

	for i := start; i < len(l.docs) && i < start+visible; i++ {
		doc := l.docs[i]
		icon, color := statusIcon(doc.Status)

		lineStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		if focused && i == l.cursor {
			lineStyle = lineStyle.Foreground(styles.TextPrimary).Bold(true)
		}
		iconStyle := lipgloss.NewStyle().Foreground(color)

		marker := "  "
		if focused && i == l.cursor {
			marker = "> "
		}

		name := util.TruncateDisplay(doc.Name, inner-10)
		loc := ""
		if doc.Location == model.LocationLocal {
			loc = " (local)"
		}
		b.WriteString(marker + iconStyle.Render(icon) + " " + lineStyle.Render(name+loc))
		b.WriteString("\n")
	}

	borderColor := styles.Overlay
	if focused {
		borderColor = styles.Cyan
	}
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width - 2).
		Height(height).
		Padding(0, 1)

	return pane.Render(b.String())
}
