package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A Decimal `json:"a"`
		B Decimal `json:"b"`
		C Decimal `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50","b":3.25,"c":null}`), &payload))

	assert.InDelta(t, 12.5, payload.A.Float64(), 1e-9)
	assert.InDelta(t, 3.25, payload.B.Float64(), 1e-9)
	assert.Zero(t, payload.C)
}

func TestDecimalRejectsGarbage(t *testing.T) {
	var d Decimal
	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &d))
}

func TestDateRoundTripAndTimestampTruncation(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-31T08:15:00Z"`), &d))
	assert.Equal(t, NewDate(2024, time.January, 31), d)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-31"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestPageDecodesEnvelopeAndBareArray(t *testing.T) {
	var envelope Page[Farm]
	require.NoError(t, json.Unmarshal([]byte(`{"count":2,"next":null,"previous":null,"results":[{"id":1,"name":"North"},{"id":2,"name":"South"}]}`), &envelope))
	assert.Equal(t, 2, envelope.Count)
	assert.Len(t, envelope.Results, 2)
	assert.Nil(t, envelope.Next)

	var bare Page[Farm]
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"name":"East"}]`), &bare))
	assert.Equal(t, 1, bare.Count)
	assert.Equal(t, "East", bare.Results[0].Name)
}

func TestFarmValidate(t *testing.T) {
	ok := Farm{Name: "North", TotalCapacity: 1000, CurrentBirds: 1000}
	assert.NoError(t, ok.Validate())

	over := Farm{Name: "North", TotalCapacity: 100, CurrentBirds: 101}
	var verr *ValidationError
	require.True(t, errors.As(over.Validate(), &verr))
	assert.Equal(t, "current_birds", verr.Field)

	assert.Error(t, Farm{TotalCapacity: 10}.Validate())
	assert.Error(t, Farm{Name: "x", TotalCapacity: 10, Status: "closed"}.Validate())
}

func TestFlockValidate(t *testing.T) {
	assert.NoError(t, Flock{Name: "B-2", InitialCount: 500, CurrentCount: 480, Status: FlockActive}.Validate())

	err := Flock{Name: "B-2", InitialCount: 500, CurrentCount: 501}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "current_count", verr.Field)

	assert.Error(t, Flock{Name: "B-2", InitialCount: 0}.Validate())
	assert.Error(t, Flock{Name: "B-2", InitialCount: 5, HealthStatus: "sick"}.Validate())
}

func TestRatios(t *testing.T) {
	assert.InDelta(t, 96.0, Flock{InitialCount: 500, CurrentCount: 480}.SurvivalRate(), 1e-9)
	assert.Equal(t, 20, Flock{InitialCount: 500, CurrentCount: 480}.Losses())
	assert.Zero(t, Flock{}.SurvivalRate())

	assert.InDelta(t, 75.0, Farm{TotalCapacity: 400, CurrentBirds: 300}.OccupancyRate(), 1e-9)
	assert.Zero(t, Farm{}.OccupancyRate())

	assert.InDelta(t, 25.0, ProfitMargin(200, 150), 1e-9)
	assert.Zero(t, ProfitMargin(0, 150))

	assert.InDelta(t, 0.5, FeedConversion(600, 1200), 1e-9)
	assert.Zero(t, FeedConversion(600, 0))

	stats := DashboardStats{TotalBirds: 2450, HealthyBirds: 2380}
	assert.InDelta(t, 97.14, stats.HealthyShare(), 0.01)
}

func TestAuthResponsePrefersAccess(t *testing.T) {
	assert.Equal(t, "jwt", AuthResponse{Access: "jwt", Token: "legacy"}.AccessToken())
	assert.Equal(t, "legacy", AuthResponse{Token: "legacy"}.AccessToken())
	assert.Empty(t, AuthResponse{}.AccessToken())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Awa Diallo", User{FirstName: "Awa", LastName: "Diallo"}.FullName())
	assert.Equal(t, "a@b.com", User{Email: "a@b.com"}.FullName())
}
