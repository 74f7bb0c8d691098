package models

import (
	"strings"
	"time"
)

// FarmStatus is the operating state of a farm.
type FarmStatus string

const (
	FarmActive      FarmStatus = "active"
	FarmInactive    FarmStatus = "inactive"
	FarmMaintenance FarmStatus = "maintenance"
)

// Farm is a site housing one or more buildings.
type Farm struct {
	ID             int64      `json:"id,omitempty"`
	Name           string     `json:"name"`
	Location       string     `json:"location"`
	Description    string     `json:"description,omitempty"`
	TotalBuildings int        `json:"total_buildings"`
	TotalCapacity  int        `json:"total_capacity"`
	CurrentBirds   int        `json:"current_birds"`
	Status         FarmStatus `json:"status,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitzero"`
}

// Validate checks the farm before it is created or updated.
func (f Farm) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return invalid("name", "must be provided")
	case f.TotalCapacity < 0:
		return invalid("total_capacity", "must not be negative")
	case f.CurrentBirds < 0:
		return invalid("current_birds", "must not be negative")
	case f.CurrentBirds > f.TotalCapacity:
		return invalid("current_birds", "%d exceeds total capacity %d", f.CurrentBirds, f.TotalCapacity)
	}

	switch f.Status {
	case "", FarmActive, FarmInactive, FarmMaintenance:
		return nil
	default:
		return invalid("status", "unknown value %q", f.Status)
	}
}

// OccupancyRate is current birds as a percentage of capacity.
func (f Farm) OccupancyRate() float64 {
	return percent(float64(f.CurrentBirds), float64(f.TotalCapacity))
}
