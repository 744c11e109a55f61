package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order описывает попытку покупки любого вида товара.
// Запись создаётся один раз и после этого неизменна, кроме поля Status:
// pending -> completed или pending -> failed, переход однократный.
type Order struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Kind        string          `db:"kind" json:"kind"`
	ItemID      *uuid.UUID      `db:"item_id" json:"item_id,omitempty"`
	Amount      float64         `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	Details     json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
