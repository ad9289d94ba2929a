// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrUnauthorized indicates the service rejected the credentials or
	// token (HTTP 401/403).
	ErrUnauthorized = errors.New("service rejected the credentials")

	// ErrUnreachable indicates a transport-level failure before any HTTP
	// status was received.
	ErrUnreachable = errors.New("service unreachable")
)

// CORSErrorMessage replaces transport errors that look like cross-origin
// rejections. Kept verbatim so operators recognize it from the web client.
const CORSErrorMessage = "CORS error: Your API server needs CORS configuration. Please check the backend setup."

// APIError is a non-2xx response from the service with a best-effort
// extracted message.
type APIError struct {
	// Status is the HTTP status code
	Status int

	// Message is the extracted error text (detail field, message field,
	// or a per-operation fallback)
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service error (HTTP %d): %s", e.Status, e.Message)
}

// Is matches against ErrUnauthorized for 401/403 responses.
func (e *APIError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.Status == 401 || e.Status == 403
	}
	return false
}

// =============================================================================
// RESPONSE DECODING
// =============================================================================

// errorBody is the shape probed in failed responses. FastAPI-style
// services use detail; others use message.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// decodeError builds the APIError for a non-2xx response body. Extraction
// order: detail, then message, then the caller's fallback. This is the
// single decode routine shared by every call site.
func decodeError(status int, body []byte, fallback string) *APIError {
	msg := fallback

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Detail != "" {
			msg = eb.Detail
		} else if eb.Message != "" {
			msg = eb.Message
		}
	}

	return &APIError{Status: status, Message: msg}
}

// relabelTransportError wraps a transport failure, replacing cross-origin
// signatures with the canonical CORS message.
func relabelTransportError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "CORS") {
		return fmt.Errorf("%w: %s", ErrUnreachable, CORSErrorMessage)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// UserMessage extracts the text to surface in a toast for any error
// produced by this package.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnreachable) {
		// Strip the sentinel prefix; the remainder is already
		// user-oriented.
		msg := err.Error()
		if idx := strings.Index(msg, ": "); idx >= 0 {
			return msg[idx+2:]
		}
		return msg
	}
	return err.Error()
}
