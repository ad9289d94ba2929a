// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload coordinates document upload batches: real sequential
// multipart uploads with a single overall progress percentage, and the
// tick-based simulation used when no service is involved.
package upload
