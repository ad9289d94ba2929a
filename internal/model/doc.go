// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines messages, conversations, and document records.
// These are plain data types; behavior lives in the components that own
// them (registry, chat driver).
package model
