package models

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn in a conversation. Rows are append-only and ordered by
// creation time.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// SendMessageRequest is the request structure for the message-send endpoint
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PromptMessage is one entry of the model prompt context. The system entry is
// synthesized from the character and never persisted as a Message row.
type PromptMessage struct {
	Role    string
	Content string
}
