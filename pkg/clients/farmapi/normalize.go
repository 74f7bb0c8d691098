package farmapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeError collapses any backend error payload into one readable
// message. Resolution order: a string "message" field, a bare string, an
// array (elements space-joined), an object (values in document order), and
// finally "HTTP error! status: <code>".
func NormalizeError(body []byte, status int) string {
	if msg := normalizePayload(body); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func normalizePayload(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return ""
	}

	switch body[0] {
	case '"':
		return rawString(body)
	case '[':
		return joinArray(body)
	case '{':
		return flattenObject(body)
	default:
		return ""
	}
}

type objectField struct {
	key   string
	value json.RawMessage
}

// flattenObject keeps key order, which a map would lose.
func flattenObject(body []byte) string {
	fields, err := decodeObject(body)
	if err != nil {
		return ""
	}

	for _, f := range fields {
		if f.key == "message" {
			if msg := scalarMessage(f.value); msg != "" {
				return msg
			}
		}
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f.value) == 0 {
			continue
		}
		var part string
		switch f.value[0] {
		case '[':
			part = joinArray(f.value)
		case '"':
			part = rawString(f.value)
		case '{', 'n':
			part = compact(f.value)
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func decodeObject(body []byte) ([]objectField, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var fields []objectField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, objectField{key: key, value: bytes.TrimSpace(value)})
	}
	return fields, nil
}

func joinArray(body []byte) string {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		var part string
		switch item[0] {
		case '"':
			part = rawString(item)
		case '[':
			part = joinArray(item)
		case '{':
			part = compact(item)
		case 'n':
		default:
			part = string(item)
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// scalarMessage reads a message that is a string, a number or true. Anything
// else yields "" and the object is flattened instead.
func scalarMessage(value json.RawMessage) string {
	if len(value) == 0 {
		return ""
	}
	switch c := value[0]; {
	case c == '"':
		return rawString(value)
	case c == 't':
		return "true"
	case c == '-' || (c >= '0' && c <= '9'):
		return string(value)
	}
	return ""
}

func rawString(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		return ""
	}
	return s
}

func compact(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}
