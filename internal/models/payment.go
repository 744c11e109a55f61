package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBalance представляет кошелёк пользователя.
// Available — доступные средства, Escrow — средства, замороженные
// под незавершённые сделки с подарочными картами.
type UserBalance struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Available float64   `db:"available" json:"available"`
	Escrow    float64   `db:"escrow" json:"escrow"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction представляет запись в журнале операций кошелька.
// Записи только добавляются и никогда не изменяются.
type Transaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Amount      float64    `db:"amount" json:"amount"`
	Status      string     `db:"status" json:"status"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
