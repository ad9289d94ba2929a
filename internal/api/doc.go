// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the document
// question-answering service: auth, query, document listing, delete, and
// multipart upload with progress. All failures funnel through one decode
// routine producing typed errors; transport errors with a cross-origin
// signature are relabeled with the canonical CORS hint.
package api
