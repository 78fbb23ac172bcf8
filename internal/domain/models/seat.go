package models

import (
	"time"

	"transporte/internal/domain"
)

type SeatKind string

const (
	SeatSold       SeatKind = "sold"
	SeatDriverHold SeatKind = "driver_hold"
)

type SeatStatus string

const (
	SeatReserved SeatStatus = "reserved"
	SeatPaid     SeatStatus = "paid"
	SeatBoarded  SeatStatus = "boarded"
	SeatNoShow   SeatStatus = "no_show"
)

func (s SeatStatus) Terminal() bool {
	return s == SeatBoarded || s == SeatNoShow
}

type Passenger struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Phone      string `json:"phone"`
}

type SeatAssignment struct {
	ID          domain.ID  `json:"id"`
	DepartureID domain.ID  `json:"departureId"`
	SeatNumber  int        `json:"seatNumber"`
	Passenger   Passenger  `json:"passenger"`
	Price       Money      `json:"price"`
	Kind        SeatKind   `json:"kind"`
	Status      SeatStatus `json:"status"`
	ReservedBy  domain.ID  `json:"reservedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// GeneratesRevenue is false for driver holds.
func (a SeatAssignment) GeneratesRevenue() bool {
	return a.Kind == SeatSold
}

// SeatSaleResult is returned by sell and driver-hold operations.
type SeatSaleResult struct {
	Assignment        SeatAssignment `json:"assignment"`
	CapacityRemaining int            `json:"capacityRemaining"`
}

// SeatMap is a snapshot of one departure's seats.
type SeatMap struct {
	DepartureID domain.ID        `json:"departureId"`
	Capacity    int              `json:"capacity"`
	Occupied    []int            `json:"occupied"`
	Available   []int            `json:"available"`
	Assignments []SeatAssignment `json:"assignments"`
}
