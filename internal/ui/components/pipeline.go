// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/ui/styles"
)

// =============================================================================
// PIPELINE STRIP
// =============================================================================

// RenderPipeline draws the manual-mode processing stage strip. activeStage
// is the index currently running, or -1 when the pipeline is idle.
func RenderPipeline(activeStage int, width int) string {
	stages := mode.PipelineStages()

	idleStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	activeStyle := lipgloss.NewStyle().Foreground(styles.ModeManualColor).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(styles.Emerald)
	sepStyle := lipgloss.NewStyle().Foreground(styles.Overlay)

	parts := make([]string, 0, len(stages))
	for i, stage := range stages {
		switch {
		case activeStage < 0:
			parts = append(parts, idleStyle.Render(styles.StatusIndicators.Pending+" "+stage))
		case i < activeStage:
			parts = append(parts, doneStyle.Render(styles.StatusIndicators.Success+" "+stage))
		case i == activeStage:
			parts = append(parts, activeStyle.Render(styles.StatusIndicators.Active+" "+stage))
		default:
			parts = append(parts, idleStyle.Render(styles.StatusIndicators.Pending+" "+stage))
		}
	}

	strip := strings.Join(parts, sepStyle.Render(" > "))
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(styles.Overlay).
		Width(width).
		Render(strip)
}

// StageForPercent maps a simulated-upload percentage to a pipeline stage
// index so the strip advances with the progress bar.
func StageForPercent(percent int) int {
	if percent <= 0 {
		return -1
	}
	stages := len(mode.PipelineStages())
	idx := percent * stages / 101
	if idx >= stages {
		idx = stages - 1
	}
	return idx
}
