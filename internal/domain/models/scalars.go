package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the backend.
const DateLayout = "2006-01-02"

// Decimal is a float that decodes from JSON numbers or quoted strings, the way
// the backend renders decimal columns.
type Decimal float64

// UnmarshalJSON accepts 12.5, "12.50" and null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*d = 0
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("decode decimal %s: %w", data, err)
	}
	*d = Decimal(value)
	return nil
}

// Float64 returns the decimal as a float64.
func (d Decimal) Float64() float64 {
	return float64(d)
}

// Date is a calendar day without time-of-day.
type Date struct {
	time.Time
}

// NewDate builds a UTC Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD, ignoring any trailing time component.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON renders the zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts "2024-01-31", full timestamps and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return fmt.Errorf("decode date %s: %w", data, err)
	}
	*d = parsed
	return nil
}
