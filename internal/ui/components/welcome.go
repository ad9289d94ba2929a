// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// welcomeLogo is the banner shown before the first message is sent.
const welcomeLogo = `
     _
  __| | ___   ___ __ _ _   _  ___ _ __ _   _
 / _` + "`" + ` |/ _ \ / __/ _` + "`" + ` | | | |/ _ \ '__| | | |
| (_| | (_) | (_| (_| | |_| |  __/ |  | |_| |
 \__,_|\___/ \___\__, |\__,_|\___|_|   \__, |
                    |_|                |___/  `

// welcomeHints are the key bindings listed under the banner.
var welcomeHints = []struct {
	key  string
	desc string
}{
	{"enter", "send your question"},
	{"ctrl+u", "upload documents"},
	{"ctrl+o", "switch mode (online / offline / manual)"},
	{"ctrl+l", "sign in"},
	{"tab", "focus the document pane"},
	{"ctrl+c", "quit"},
}

// RenderWelcome draws the centered welcome banner with key hints.
func RenderWelcome(width, height int) string {
	logoStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	taglineStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render(welcomeLogo))
	b.WriteString("\n\n")
	b.WriteString(taglineStyle.Render("Ask questions about your documents."))
	b.WriteString("\n\n")

	for _, h := range welcomeHints {
		b.WriteString(keyStyle.Render("  "+h.key) + descStyle.Render("  "+h.desc))
		b.WriteString("\n")
	}

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
	}
	return b.String()
}
