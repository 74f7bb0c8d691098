package models

import (
	"bytes"
	"encoding/json"
)

// Page is the paginated list envelope. Endpoints that skip pagination return a
// bare array, which decodes into Results with Count set to its length.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts both the envelope and a bare array.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	type envelope Page[T]
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page[T](env)
	return nil
}
