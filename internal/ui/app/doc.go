// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the bubbletea model tying the conversation driver, the
// document registry, the upload coordinator, and the session together
// into the interactive TUI.
package app
