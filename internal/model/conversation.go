// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the append-only message log for the current mode. A mode
// switch replaces the whole log with a single fresh welcome message.
type Conversation struct {
	Messages []*Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		Messages: make([]*Message, 0),
	}
}

// AddMessage appends a message to the log.
func (c *Conversation) AddMessage(m *Message) {
	c.Messages = append(c.Messages, m)
}

// AddUserMessage appends a user message and returns it.
func (c *Conversation) AddUserMessage(content string) *Message {
	m := NewUserMessage(content)
	c.AddMessage(m)
	return m
}

// AddAssistantMessage appends an assistant message and returns it.
func (c *Conversation) AddAssistantMessage(content string) *Message {
	m := NewAssistantMessage(content)
	c.AddMessage(m)
	return m
}

// Reset replaces the log with a single assistant welcome message.
func (c *Conversation) Reset(welcome string) {
	c.Messages = []*Message{NewAssistantMessage(welcome)}
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Last returns the most recent message, or nil when the log is empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}
