package models

import "strings"

// FlockStatus is the lifecycle state of a flock.
type FlockStatus string

const (
	FlockActive   FlockStatus = "active"
	FlockSold     FlockStatus = "sold"
	FlockDeceased FlockStatus = "deceased"
)

// HealthStatus is the sanitary state of a flock.
type HealthStatus string

const (
	HealthHealthy        HealthStatus = "healthy"
	HealthUnderTreatment HealthStatus = "under_treatment"
	HealthQuarantined    HealthStatus = "quarantined"
)

// Flock is a group of birds sharing breed, building and lifecycle.
type Flock struct {
	ID                      int64        `json:"id,omitempty"`
	Name                    string       `json:"name"`
	Breed                   string       `json:"breed"`
	Farm                    int64        `json:"farm,omitempty"`
	Building                int64        `json:"building,omitempty"`
	CurrentCount            int          `json:"current_count"`
	InitialCount            int          `json:"initial_count"`
	AgeWeeks                int          `json:"age_weeks"`
	Status                  FlockStatus  `json:"status,omitempty"`
	HealthStatus            HealthStatus `json:"health_status,omitempty"`
	ProductionRate          Decimal      `json:"production_rate"`
	FeedConsumptionDaily    Decimal      `json:"feed_consumption_daily"`
	AcquisitionDate         Date         `json:"acquisition_date,omitzero"`
	ExpectedProductionStart Date         `json:"expected_production_start,omitzero"`
}

// Validate checks the flock before it is created.
func (f Flock) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return invalid("name", "must be provided")
	case f.InitialCount <= 0:
		return invalid("initial_count", "must be positive")
	case f.CurrentCount < 0:
		return invalid("current_count", "must not be negative")
	case f.CurrentCount > f.InitialCount:
		return invalid("current_count", "%d exceeds initial count %d", f.CurrentCount, f.InitialCount)
	}

	switch f.Status {
	case "", FlockActive, FlockSold, FlockDeceased:
	default:
		return invalid("status", "unknown value %q", f.Status)
	}

	switch f.HealthStatus {
	case "", HealthHealthy, HealthUnderTreatment, HealthQuarantined:
		return nil
	default:
		return invalid("health_status", "unknown value %q", f.HealthStatus)
	}
}

// SurvivalRate is the share of the initial birds still alive, in percent.
func (f Flock) SurvivalRate() float64 {
	return percent(float64(f.CurrentCount), float64(f.InitialCount))
}

// Losses is the number of birds no longer in the flock.
func (f Flock) Losses() int {
	return f.InitialCount - f.CurrentCount
}
