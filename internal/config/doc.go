// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides the endpoint configuration store: a TOML file
// layer for machine-local settings, a persisted runtime layer (kv key
// rag-api-config) for the base URL and endpoint paths, defaults for both,
// and a loaded flag guarding online actions against reading provisional
// defaults.
package config
