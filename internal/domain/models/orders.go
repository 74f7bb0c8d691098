package models

// ChickOrder is a day-old chick purchase from a hatchery.
type ChickOrder struct {
	ID       int64  `json:"id,omitempty"`
	Date     Date   `json:"date"`
	Quantity int    `json:"quantity"`
	Supplier string `json:"supplier,omitempty"`
	Received bool   `json:"received"`
	Notes    string `json:"notes,omitempty"`
}

// Validate checks the order before it is created.
func (o ChickOrder) Validate() error {
	if o.Date.IsZero() {
		return invalid("date", "must be provided")
	}
	if o.Quantity <= 0 {
		return invalid("quantity", "must be positive")
	}
	return nil
}

// FeedForecast is the predicted feed requirement for the next day.
type FeedForecast struct {
	PredictedFeedKg Decimal `json:"predicted_feed_kg"`
}
