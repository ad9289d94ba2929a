// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode implements the operation-mode controller: the three modes
// (online, offline, manual), the gating rules for query/upload/delete, and
// the mode-dependent assistant strings.
package mode
