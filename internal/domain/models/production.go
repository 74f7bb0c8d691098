package models

// ProductionRecord is one day of measurements for a flock.
type ProductionRecord struct {
	ID                  int64   `json:"id,omitempty"`
	Flock               int64   `json:"flock"`
	Date                Date    `json:"date"`
	EggsCollected       int     `json:"eggs_collected"`
	FeedConsumed        Decimal `json:"feed_consumed"`
	WaterConsumed       Decimal `json:"water_consumed"`
	MortalityCount      int     `json:"mortality_count"`
	ProductionRate      Decimal `json:"production_rate"`
	FeedConversionRatio Decimal `json:"feed_conversion_ratio"`
	Notes               string  `json:"notes,omitempty"`
}

// Validate checks the record before it is created.
func (r ProductionRecord) Validate() error {
	switch {
	case r.Flock <= 0:
		return invalid("flock", "must reference a flock")
	case r.Date.IsZero():
		return invalid("date", "must be provided")
	case r.EggsCollected < 0:
		return invalid("eggs_collected", "must not be negative")
	case r.FeedConsumed < 0:
		return invalid("feed_consumed", "must not be negative")
	case r.MortalityCount < 0:
		return invalid("mortality_count", "must not be negative")
	}
	return nil
}

// FeedConversion is kilograms of feed per unit of output, 0 without output.
func FeedConversion(feedKg float64, output int) float64 {
	if output <= 0 {
		return 0
	}
	return feedKg / float64(output)
}
