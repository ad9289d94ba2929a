// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/ui/styles"
	"github.com/jeranaias/docquery-tui/internal/util"
)

// =============================================================================
// UPLOAD PROGRESS BAR
// =============================================================================

// UploadBar tracks and renders the overall upload percentage. Zero value
// is an idle, hidden bar.
type UploadBar struct {
	percent int
	label   string
	active  bool
}

// Start shows the bar at zero with a label describing the batch.
func (b *UploadBar) Start(label string) {
	b.percent = 0
	b.label = label
	b.active = true
}

// SetPercent updates the bar. Values are clamped to 0-100 and never move
// backwards while the bar is active.
func (b *UploadBar) SetPercent(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if p > b.percent {
		b.percent = p
	}
}

// Reset hides the bar. Called after the settle delay.
func (b *UploadBar) Reset() {
	b.percent = 0
	b.label = ""
	b.active = false
}

// Active reports whether the bar is visible.
func (b *UploadBar) Active() bool {
	return b.active
}

// Percent returns the current value.
func (b *UploadBar) Percent() int {
	return b.percent
}

// Render draws the bar at the given total width.
func (b *UploadBar) Render(width int) string {
	if !b.active {
		return ""
	}

	barWidth := width - 20
	if barWidth < 10 {
		barWidth = 10
	}
	filled := barWidth * b.percent / 100

	fillStyle := lipgloss.NewStyle().Foreground(styles.Cyan)
	emptyStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	bar := fillStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barWidth-filled))

	pct := util.IntToString(b.percent) + "%"
	line := labelStyle.Render(b.label) + " " + bar + " " + labelStyle.Render(pct)
	return line
}
