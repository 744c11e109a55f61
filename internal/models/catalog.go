package models

import (
	"time"

	"github.com/google/uuid"
)

// ESim описывает тарифный план eSIM в каталоге.
type ESim struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Country      string    `db:"country" json:"country"`
	CountryCode  string    `db:"country_code" json:"country_code"`
	Provider     string    `db:"provider" json:"provider"`
	DataAmount   string    `db:"data_amount" json:"data_amount"`
	ValidityDays int       `db:"validity_days" json:"validity_days"`
	Price        float64   `db:"price" json:"price"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SMMService описывает услугу продвижения в соцсетях.
type SMMService struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Platform     string    `db:"platform" json:"platform"`
	ServiceType  string    `db:"service_type" json:"service_type"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	PricePer1000 float64   `db:"price_per_1000" json:"price_per_1000"`
	MinQuantity  int       `db:"min_quantity" json:"min_quantity"`
	MaxQuantity  int       `db:"max_quantity" json:"max_quantity"`
	AverageTime  *string   `db:"average_time" json:"average_time,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
