package models

import (
	"time"

	"github.com/google/uuid"
)

// GiftCard описывает лот на маркетплейсе подарочных карт.
// Поле Code — секрет продавца: оно никогда не сериализуется в ответах
// списков и выдаётся только покупателю после завершения сделки.
type GiftCard struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	SellerID   uuid.UUID  `db:"seller_id" json:"seller_id"`
	SellerName string     `db:"seller_name" json:"seller_name"`
	BuyerID    *uuid.UUID `db:"buyer_id" json:"buyer_id,omitempty"`
	CardType   string     `db:"card_type" json:"card_type"`
	FaceValue  float64    `db:"face_value" json:"face_value"`
	Price      float64    `db:"price" json:"price"`
	Currency   string     `db:"currency" json:"currency"`
	Status     string     `db:"status" json:"status"`
	Code       string     `db:"code" json:"-"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	SoldAt     *time.Time `db:"sold_at" json:"sold_at,omitempty"`
}

// GiftCardFilter задаёт параметры выборки лотов.
type GiftCardFilter struct {
	CardType string
	Query    string
	Status   string
	Limit    int
	Offset   int
}
