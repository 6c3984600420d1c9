// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event inside one conversation.
// Recipient is derived from the conversation name, never supplied by
// the client. CreatedAt is server-assigned.
type Message struct {
	ID           uuid.UUID
	Sender       string
	Recipient    string
	Content      string
	Conversation string
	CreatedAt    time.Time
}

// NewMessage stamps a fresh identifier and a server-side UTC timestamp.
func NewMessage(conversation, sender, recipient, content string) Message {
	return Message{
		ID:           uuid.New(),
		Sender:       sender,
		Recipient:    recipient,
		Content:      content,
		Conversation: conversation,
		CreatedAt:    time.Now().UTC(),
	}
}
