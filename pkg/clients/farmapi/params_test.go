package farmapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEncodeKeepsInsertionOrder(t *testing.T) {
	params := Params{}.Add("start_date", "2024-01-01").Add("end_date", "2024-01-31").Add("a", "x y")
	assert.Equal(t, "start_date=2024-01-01&end_date=2024-01-31&a=x+y", params.Encode())
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/flocks/", withQuery("/flocks/", nil))
	assert.Equal(t, "/flocks/?farm=3", withQuery("/flocks/", idFilter("farm", 3)))
	assert.Equal(t, "/flocks/", withQuery("/flocks/", idFilter("farm", 0)))
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"end_date=2024-01-31", "start_date=2024-01-01", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, Params{
		{Key: "end_date", Value: "2024-01-31"},
		{Key: "start_date", Value: "2024-01-01"},
		{Key: "note", Value: "a=b"},
	}, params)

	_, err = ParseParams([]string{"novalue"})
	assert.Error(t, err)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/farms/:id/", routeLabel("/farms/12/"))
	assert.Equal(t, "/reports/production/", routeLabel("/reports/production/?start_date=2024-01-01"))
}
