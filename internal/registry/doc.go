// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry owns the document collection: refresh from the
// service with cache fallback, local add/remove, persistence, and the
// per-mode visibility filter.
package registry
