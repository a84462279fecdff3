package domain

import (
	"time"
)

// MessageType represents the type of a chat message
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// Conversation represents a direct conversation between a patient and a professional.
// The pair is unique: starting a conversation with the same counterpart returns
// the existing one.
type Conversation struct {
	ID            int64      `json:"id"`
	PatientID     int64      `json:"patient_id"`
	ProfessionalID int64     `json:"professional_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// Optional fields populated by joins
	PatientName      *string `json:"patient_name,omitempty"`
	ProfessionalName *string `json:"professional_name,omitempty"`
	UnreadCount      int     `json:"unread_count"`
}

// ChatMessage represents a message in a conversation
type ChatMessage struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	SenderID       int64       `json:"sender_id"`
	Type           MessageType `json:"message_type"`
	Body           string      `json:"body"`
	FileURL        *string     `json:"file_url,omitempty"`
	IsRead         bool        `json:"is_read"`
	ReadAt         *time.Time  `json:"read_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`

	// Optional fields populated by joins
	SenderName *string `json:"sender_name,omitempty"`
}

// StartConversationDTO identifies the counterpart of a new direct conversation
type StartConversationDTO struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// SendMessageDTO represents the data required to send a chat message
type SendMessageDTO struct {
	ConversationID int64       `json:"conversation_id" binding:"required"`
	Type           MessageType `json:"message_type" binding:"omitempty,oneof=text image file system"`
	Body           string      `json:"body" binding:"required"`
	FileURL        *string     `json:"file_url,omitempty"`
}

// ChatMessageFilter represents filters for querying chat messages
type ChatMessageFilter struct {
	ConversationID int64 `json:"conversation_id"`
	Limit          int   `json:"limit"`
	Offset         int   `json:"offset"`
}
