package models

import (
	"time"

	"github.com/google/uuid"
)

// SupportTicket описывает обращение пользователя в поддержку.
type SupportTicket struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TicketReply — сообщение в треде тикета. Тред только дополняется.
type TicketReply struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TicketID  uuid.UUID `db:"ticket_id" json:"ticket_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	IsStaff   bool      `db:"is_staff" json:"is_staff"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
