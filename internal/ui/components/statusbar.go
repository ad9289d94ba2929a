// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/ui/styles"
	"github.com/jeranaias/docquery-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBarState is everything the bottom status line shows.
type StatusBarState struct {
	Mode     mode.Mode
	Username string // empty when signed out
	DocCount int
	Busy     bool
}

// modeColor maps a mode to its badge color.
func modeColor(m mode.Mode) lipgloss.AdaptiveColor {
	switch m {
	case mode.ModeOffline:
		return styles.ModeOfflineColor
	case mode.ModeManual:
		return styles.ModeManualColor
	}
	return styles.ModeOnlineColor
}

// RenderStatusBar draws the bottom status line.
func RenderStatusBar(s StatusBarState, width int) string {
	badgeStyle := lipgloss.NewStyle().
		Foreground(styles.TextInverse).
		Background(modeColor(s.Mode)).
		Bold(true).
		Padding(0, 1)

	textStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Background(styles.SurfaceDim)

	left := badgeStyle.Render(mode.StatusBadge(s.Mode))

	user := "signed out"
	if s.Username != "" {
		user = s.Username
	}
	mid := textStyle.Render(" " + user + " | " + util.IntToString(s.DocCount) + " docs ")

	right := ""
	if s.Busy {
		right = textStyle.Render(" thinking... ")
	}

	line := left + mid
	gap := width - lipgloss.Width(line) - lipgloss.Width(right)
	if gap > 0 {
		line += textStyle.Render(padSpaces(gap))
	}
	return line + right
}

func padSpaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
