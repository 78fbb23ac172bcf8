package models

import "transporte/internal/domain"

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleMaintenance, VehicleInactive:
		return true
	}
	return false
}

type Vehicle struct {
	ID       domain.ID     `json:"id"`
	Plate    string        `json:"plate"`
	Brand    string        `json:"brand"`
	Model    string        `json:"model"`
	Year     int           `json:"year"`
	Capacity int           `json:"capacity"`
	DriverID domain.ID     `json:"driverId,omitempty"`
	Status   VehicleStatus `json:"status"`
}

func (v Vehicle) Label() string {
	if v.Brand == "" && v.Model == "" {
		return v.Plate
	}
	return v.Plate + " - " + v.Brand + " " + v.Model
}
