// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Role identifies who produced a message.
type Role string

const (
	// RoleUser is a message typed by the user
	RoleUser Role = "user"

	// RoleAssistant is a message from the assistant (service answer,
	// canned reply, or welcome text)
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation log.
type Message struct {
	// ID is a unique identifier for this message
	ID string `json:"id"`

	// Role indicates the message author
	Role Role `json:"role"`

	// Content is the message text
	Content string `json:"content"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a message with the user role.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateID("msg_"),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates a message with the assistant role.
func NewAssistantMessage(content string) *Message {
	return &Message{
		ID:        generateID("msg_"),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns the first maxLen runes of the content for list display.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// generateID creates a unique identifier with the given prefix.
func generateID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a timestamp-derived ID; collisions are acceptable
		// for display-only identifiers.
		return prefix + time.Now().Format("20060102150405.000000000")
	}
	return prefix + hex.EncodeToString(b)
}

// GenerateDocumentID creates a unique local document identifier. Used when
// the service response carries no id (manual-mode simulation, or an upload
// response without a file_id field).
func GenerateDocumentID() string {
	return generateID("doc_")
}
