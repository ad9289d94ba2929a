// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives the conversation: the message log, send gating,
// the real query path, and the delayed canned replies used by the
// offline and manual modes.
package chat
