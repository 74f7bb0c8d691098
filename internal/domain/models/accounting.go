package models

// Sale is an egg or bird sale.
type Sale struct {
	ID          int64   `json:"id,omitempty"`
	Date        Date    `json:"date"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   Decimal `json:"unit_price"`
}

// Total is quantity times unit price.
func (s Sale) Total() float64 {
	return float64(s.Quantity) * s.UnitPrice.Float64()
}

// Cost is an operating expense.
type Cost struct {
	ID          int64   `json:"id,omitempty"`
	Date        Date    `json:"date"`
	Description string  `json:"description,omitempty"`
	Amount      Decimal `json:"amount"`
}
