package models

import (
	"time"

	"transporte/internal/domain"
)

type TripInfo struct {
	DepartureID domain.ID       `json:"departureId"`
	Route       string          `json:"route"`
	RouteName   string          `json:"routeName"`
	ScheduledAt time.Time       `json:"scheduledAt"`
	Vehicle     string          `json:"vehicle"`
	Plate       string          `json:"plate"`
	Driver      string          `json:"driver"`
	DriverID    domain.ID       `json:"driverId"`
	Capacity    int             `json:"capacity"`
	Status      DepartureStatus `json:"status"`
}

type RosterEntry struct {
	AssignmentID domain.ID  `json:"assignmentId"`
	SeatNumber   int        `json:"seatNumber"`
	Passenger    Passenger  `json:"passenger"`
	Price        Money      `json:"price"`
	Status       SeatStatus `json:"status"`
	Kind         SeatKind   `json:"kind"`
}

type ManifestStats struct {
	Passengers        int     `json:"passengers"`
	Sold              int     `json:"sold"`
	DriverHolds       int     `json:"driverHolds"`
	Boarded           int     `json:"boarded"`
	NoShows           int     `json:"noShows"`
	Revenue           Money   `json:"revenue"`
	Occupancy         float64 `json:"occupancy"`
	CapacityRemaining int     `json:"capacityRemaining"`
	Parcels           int     `json:"parcels"`
	ParcelWeightKg    float64 `json:"parcelWeightKg"`
	ParcelRevenue     Money   `json:"parcelRevenue"`
	// OverCapacitySeats lists booked seats above the vehicle's current capacity.
	OverCapacitySeats []int `json:"overCapacitySeats,omitempty"`
	Inconsistent      bool  `json:"inconsistent"`
}

// ManifestDocument is handed to a renderer; it carries no presentation.
type ManifestDocument struct {
	Trip        TripInfo      `json:"trip"`
	Roster      []RosterEntry `json:"roster"`
	Parcels     []Parcel      `json:"parcels"`
	Stats       ManifestStats `json:"stats"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// DepartureSummary is the list view of a departure with its seat counts.
type DepartureSummary struct {
	Departure Departure `json:"departure"`
	Route     string    `json:"route"`
	Plate     string    `json:"plate"`
	Driver    string    `json:"driver"`
	Capacity  int       `json:"capacity"`
	Occupied  int       `json:"occupied"`
	Available int       `json:"available"`
}
