package farmapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is one query string pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered query string. Unlike url.Values it encodes pairs in
// insertion order.
type Params []Param

// Add appends a pair and returns the extended list.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode renders key=value pairs joined by '&'.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p))
	for _, param := range p {
		parts = append(parts, url.QueryEscape(param.Key)+"="+url.QueryEscape(param.Value))
	}
	return strings.Join(parts, "&")
}

// ParseParams reads "key=value" arguments, keeping their order.
func ParseParams(pairs []string) (Params, error) {
	params := make(Params, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid query parameter %q, want key=value", pair)
		}
		params = params.Add(strings.TrimSpace(key), value)
	}
	return params, nil
}

func withQuery(path string, params Params) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func idFilter(key string, id int64) Params {
	if id <= 0 {
		return nil
	}
	return Params{{Key: key, Value: strconv.FormatInt(id, 10)}}
}
