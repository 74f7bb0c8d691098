package models

import "fmt"

// ValidationError reports a record that breaks a client-side invariant before
// it is sent to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// ProfitMargin returns (revenue-cost)/revenue as a percentage.
func ProfitMargin(revenue, cost float64) float64 {
	return percent(revenue-cost, revenue)
}
