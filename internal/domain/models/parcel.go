package models

import (
	"time"

	"transporte/internal/domain"
)

type ParcelStatus string

const (
	ParcelShipped   ParcelStatus = "shipped"
	ParcelInTransit ParcelStatus = "in_transit"
	ParcelDelivered ParcelStatus = "delivered"
)

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Parcel struct {
	ID          domain.ID    `json:"id"`
	DepartureID domain.ID    `json:"departureId"`
	Sender      Contact      `json:"sender"`
	Recipient   Contact      `json:"recipient"`
	Description string       `json:"description"`
	WeightKg    float64      `json:"weightKg"`
	Price       Money        `json:"price"`
	Status      ParcelStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	DeliveredAt *time.Time   `json:"deliveredAt,omitempty"`
}
