// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the key-value persistence port used by the
// config, session, and document registry components. Each component owns
// exactly one key and is its sole writer. Two backends exist: one JSON
// file per key (default) and a single SQLite database.
package storage
