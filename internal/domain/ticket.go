package domain

import (
	"time"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

type SupportTicket struct {
	ID        int64        `json:"id"`
	UserID    *int64       `json:"user,omitempty"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Status    TicketStatus `json:"status"`
	Reply     *string      `json:"reply,omitempty"`
	RepliedAt *time.Time   `json:"replied_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type CreateTicketDTO struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type ReplyTicketDTO struct {
	Reply  string        `json:"reply" binding:"required"`
	Status *TicketStatus `json:"status" binding:"omitempty,oneof=open in_progress closed"`
}

type TicketFilter struct {
	UserID *int64        `json:"user_id"`
	Status *TicketStatus `json:"status"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
