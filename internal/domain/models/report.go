package models

import "time"

// DashboardStats is the aggregate served by the reports dashboard endpoint.
type DashboardStats struct {
	TotalFarms      int              `json:"total_farms" bson:"total_farms"`
	TotalFlocks     int              `json:"total_flocks" bson:"total_flocks"`
	TotalBirds      int              `json:"total_birds" bson:"total_birds"`
	HealthyBirds    int              `json:"healthy_birds" bson:"healthy_birds"`
	ProductionRate  Decimal          `json:"production_rate" bson:"production_rate"`
	FeedConsumption Decimal          `json:"feed_consumption" bson:"feed_consumption"`
	RecentAlerts    []map[string]any `json:"recent_alerts,omitempty" bson:"recent_alerts,omitempty"`
	ProductionTrend []map[string]any `json:"production_trend,omitempty" bson:"production_trend,omitempty"`
	HealthOverview  []map[string]any `json:"health_overview,omitempty" bson:"health_overview,omitempty"`
}

// HealthyShare is healthy birds as a percentage of all birds.
func (s DashboardStats) HealthyShare() float64 {
	return percent(float64(s.HealthyBirds), float64(s.TotalBirds))
}

// ProductionReport is the free-form production report payload.
type ProductionReport map[string]any

// DashboardSnapshot is the persisted digest produced by the snapshot job.
type DashboardSnapshot struct {
	TakenAt         time.Time         `bson:"taken_at" json:"taken_at"`
	Stats           DashboardStats    `bson:"stats" json:"stats"`
	FarmCount       int               `bson:"farm_count" json:"farm_count"`
	FlockCount      int               `bson:"flock_count" json:"flock_count"`
	TotalBirds      int               `bson:"total_birds" json:"total_birds"`
	TotalCapacity   int               `bson:"total_capacity" json:"total_capacity"`
	OccupancyRate   float64           `bson:"occupancy_rate" json:"occupancy_rate"`
	AverageSurvival float64           `bson:"average_survival" json:"average_survival"`
	Digest          string            `bson:"digest" json:"digest"`
	WidgetErrors    map[string]string `bson:"widget_errors,omitempty" json:"widget_errors,omitempty"`
}
