package models

import (
	"time"

	"transporte/internal/domain"
)

type DepartureStatus string

const (
	DepartureScheduled DepartureStatus = "scheduled"
	DepartureUnderway  DepartureStatus = "underway"
	DepartureCompleted DepartureStatus = "completed"
	DepartureCancelled DepartureStatus = "cancelled"
)

// rank orders the forward lifecycle; cancelled sits outside it.
func (s DepartureStatus) rank() int {
	switch s {
	case DepartureScheduled:
		return 1
	case DepartureUnderway:
		return 2
	case DepartureCompleted:
		return 3
	}
	return 0
}

// CanAdvanceTo reports whether moving to next is a forward step.
func (s DepartureStatus) CanAdvanceTo(next DepartureStatus) bool {
	if s == DepartureCancelled || next == DepartureCancelled {
		return false
	}
	return next.rank() > s.rank()
}

// AcceptsBookings is true while seats and parcels may still be added.
func (s DepartureStatus) AcceptsBookings() bool {
	return s == DepartureScheduled || s == DepartureUnderway
}

type Departure struct {
	ID          domain.ID       `json:"id"`
	RouteID     domain.ID       `json:"routeId"`
	VehicleID   domain.ID       `json:"vehicleId"`
	DriverID    domain.ID       `json:"driverId"`
	ScheduledAt time.Time       `json:"scheduledAt"`
	Status      DepartureStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Day is the calendar day used by the one-vehicle-per-day rule.
func (d Departure) Day() string {
	return DayOf(d.ScheduledAt)
}

func DayOf(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

// Trip is a departure with its references resolved.
type Trip struct {
	Departure Departure `json:"departure"`
	Route     Route     `json:"route"`
	Vehicle   Vehicle   `json:"vehicle"`
	Driver    User      `json:"driver"`
}

func (t Trip) Capacity() int {
	return t.Vehicle.Capacity
}
