package models

import (
	"time"

	"transporte/internal/domain"
)

// Route is a priced connection between two towns.
type Route struct {
	ID                domain.ID     `json:"id"`
	Name              string        `json:"name"`
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	DistanceKm        float64       `json:"distanceKm"`
	EstimatedDuration time.Duration `json:"-"`
	FarePerSeat       Money         `json:"farePerSeat"`
	PerKgRate         Money         `json:"perKgRate"`
	Active            bool          `json:"active"`
}

func (r Route) Label() string {
	return r.Origin + " → " + r.Destination
}

// EstimatedMinutes is the wire form of EstimatedDuration.
func (r Route) EstimatedMinutes() int {
	return int(r.EstimatedDuration / time.Minute)
}
