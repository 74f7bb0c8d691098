package dashboard

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi/farmapitest"
)

func newService(t *testing.T) (*Service, *farmapitest.Fake) {
	t.Helper()
	fake := farmapitest.New()
	sess, err := session.New(fake, tokenstore.NewMemoryStore(), zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = sess.Login(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)
	return NewService(sess, zaptest.NewLogger(t)), fake
}

func TestOverviewAggregates(t *testing.T) {
	svc, fake := newService(t)
	fake.Stats = models.DashboardStats{TotalFarms: 2, TotalBirds: 900, HealthyBirds: 810}
	fake.Farms = []models.Farm{
		{ID: 1, Name: "Kindia", TotalCapacity: 1000, CurrentBirds: 600},
		{ID: 2, Name: "Mamou", TotalCapacity: 500, CurrentBirds: 300},
	}
	fake.Flocks = []models.Flock{
		{ID: 10, Farm: 1, InitialCount: 500, CurrentCount: 450},
		{ID: 11, Farm: 2, InitialCount: 500, CurrentCount: 500},
	}

	view, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Empty(t, view.Errors)
	require.NotNil(t, view.Stats)
	assert.Equal(t, 900, view.Stats.TotalBirds)
	assert.Equal(t, 1500, view.TotalCapacity)
	assert.Equal(t, 900, view.TotalBirds)
	assert.InDelta(t, 60.0, view.OccupancyRate, 1e-9)
	assert.InDelta(t, 95.0, view.AverageSurvival, 1e-9)
	require.Len(t, view.Farms, 2)
	assert.InDelta(t, 60.0, view.Farms[0].OccupancyRate, 1e-9)
	require.Len(t, view.Flocks, 2)
	assert.Equal(t, 50, view.Flocks[0].Losses)
	assert.InDelta(t, 90.0, view.Flocks[0].SurvivalRate, 1e-9)
}

func TestOverviewReportsFailedWidget(t *testing.T) {
	svc, fake := newService(t)
	fake.Farms = []models.Farm{{ID: 1, Name: "Kindia", TotalCapacity: 100, CurrentBirds: 50}}
	fake.FailAlways("DashboardStats", farmapitest.Status(http.StatusInternalServerError, "HTTP error! status: 500"))

	view, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Nil(t, view.Stats)
	assert.Equal(t, map[string]string{WidgetStats: "HTTP error! status: 500"}, view.Errors)
	assert.Len(t, view.Farms, 1)
	assert.NotNil(t, view.Flocks)
}

func TestOverviewFailsWhenSessionExpires(t *testing.T) {
	svc, fake := newService(t)
	fake.FailAlways("ListFarms", farmapitest.Unauthorized())
	fake.FailAlways("Refresh", farmapitest.Unauthorized())

	_, err := svc.Overview(context.Background())

	require.Error(t, err)
	assert.True(t, isSessionError(err), "unexpected error: %v", err)
}

func TestSummarizeProduction(t *testing.T) {
	records := []models.ProductionRecord{
		{Flock: 1, Date: models.NewDate(2024, 3, 2), EggsCollected: 400, FeedConsumed: 50, WaterConsumed: 100, MortalityCount: 1, ProductionRate: 80, FeedConversionRatio: 2},
		{Flock: 1, Date: models.NewDate(2024, 3, 1), EggsCollected: 600, FeedConsumed: 70, WaterConsumed: 120, MortalityCount: 3, ProductionRate: 90},
	}

	summary := SummarizeProduction(1, records)

	assert.Equal(t, 2, summary.Days)
	assert.Equal(t, 1000, summary.TotalEggs)
	assert.InDelta(t, 120.0, summary.TotalFeedKg, 1e-9)
	assert.InDelta(t, 220.0, summary.TotalWaterL, 1e-9)
	assert.Equal(t, 4, summary.TotalMortality)
	assert.InDelta(t, 85.0, summary.AverageProductionRate, 1e-9)
	assert.InDelta(t, 2.0, summary.AverageFeedConversion, 1e-9)
	assert.InDelta(t, 0.12, summary.FeedPerEggKg, 1e-9)
	assert.InDelta(t, 500.0, summary.AverageEggsPerDay, 1e-9)
	assert.Equal(t, "2024-03-01", summary.FirstDate.String())
	assert.Equal(t, "2024-03-02", summary.LastDate.String())
}

func TestSummarizeProductionEmpty(t *testing.T) {
	summary := SummarizeProduction(0, nil)

	assert.NotNil(t, summary.Records)
	assert.Zero(t, summary.AverageProductionRate)
	assert.Zero(t, summary.FeedPerEggKg)
	assert.True(t, summary.FirstDate.IsZero())
}

func TestProductionFiltersByFlock(t *testing.T) {
	svc, fake := newService(t)
	fake.Production = []models.ProductionRecord{
		{Flock: 1, Date: models.NewDate(2024, 3, 1), EggsCollected: 10},
		{Flock: 2, Date: models.NewDate(2024, 3, 1), EggsCollected: 99},
	}

	summary, err := svc.Production(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 10, summary.TotalEggs)
	assert.Equal(t, int64(1), summary.FlockID)
}

func TestSummarizeHealth(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	records := []models.HealthRecord{
		{Title: "Newcastle", RecordType: models.RecordVaccination, Status: models.HealthCompleted, NextDueDate: models.NewDate(2024, 5, 1), Cost: 20, BirdsAffected: 500},
		{Title: "Gumboro", RecordType: models.RecordVaccination, Status: models.HealthScheduled, NextDueDate: models.NewDate(2024, 5, 20), Cost: 15},
		{Title: "Deworm", RecordType: models.RecordMedication, Status: models.HealthScheduled, NextDueDate: models.NewDate(2024, 5, 12)},
		{Title: "Vitamins", RecordType: models.RecordMedication, Status: models.HealthScheduled, NextDueDate: models.NewDate(2024, 5, 8)},
		{Title: "Checkup", RecordType: models.RecordCheckup, Status: models.HealthScheduled, NextDueDate: models.NewDate(2024, 7, 1)},
		{Title: "Antibiotic", RecordType: models.RecordTreatment, Status: models.HealthOverdue},
	}

	summary := SummarizeHealth(3, records, now)

	assert.Equal(t, 1, summary.ByStatus[models.HealthCompleted])
	assert.Equal(t, 4, summary.ByStatus[models.HealthScheduled])
	assert.Equal(t, 1, summary.ByStatus[models.HealthOverdue])
	assert.Equal(t, 2, summary.ByType[models.RecordVaccination])
	assert.InDelta(t, 35.0, summary.TotalCost, 1e-9)
	assert.Equal(t, 500, summary.BirdsAffected)

	require.Len(t, summary.Upcoming, 2)
	assert.Equal(t, "Deworm", summary.Upcoming[0].Title)
	assert.Equal(t, "Gumboro", summary.Upcoming[1].Title)

	titles := []string{}
	for _, r := range summary.Overdue {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"Vitamins", "Antibiotic"}, titles)
}

func TestHealthUsesClock(t *testing.T) {
	svc, fake := newService(t)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	fake.Health = []models.HealthRecord{
		{Flock: 7, Title: "Booster", RecordType: models.RecordVaccination, Status: models.HealthScheduled, NextDueDate: models.NewDate(2024, 1, 3)},
	}

	summary, err := svc.Health(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, summary.Upcoming, 1)
	assert.Empty(t, summary.Overdue)
}

func TestAccounting(t *testing.T) {
	svc, fake := newService(t)
	fake.Sales = []models.Sale{
		{Quantity: 100, UnitPrice: 2.5},
		{Quantity: 10, UnitPrice: 50},
	}
	fake.Costs = []models.Cost{{Amount: 300}, {Amount: 75}}

	summary, err := svc.Accounting(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 750.0, summary.Revenue, 1e-9)
	assert.InDelta(t, 375.0, summary.Expenses, 1e-9)
	assert.InDelta(t, 375.0, summary.Profit, 1e-9)
	assert.InDelta(t, 50.0, summary.ProfitMargin, 1e-9)
}

func TestAccountingFailsOnEitherList(t *testing.T) {
	svc, fake := newService(t)
	fake.FailAlways("ListCosts", farmapitest.Unreachable())

	_, err := svc.Accounting(context.Background())

	assert.Error(t, err)
}

func TestOrders(t *testing.T) {
	svc, fake := newService(t)
	fake.Orders = []models.ChickOrder{
		{Date: models.NewDate(2024, 2, 1), Quantity: 500, Received: true},
		{Date: models.NewDate(2024, 3, 1), Quantity: 300},
		{Date: models.NewDate(2024, 3, 5), Quantity: 200},
	}

	view, err := svc.Orders(context.Background())
	require.NoError(t, err)

	assert.Len(t, view.Orders, 3)
	assert.Equal(t, 2, view.Pending)
	assert.Equal(t, 500, view.ChicksOnOrder)
}

func TestForecast(t *testing.T) {
	svc, fake := newService(t)
	fake.Forecast = models.FeedForecast{PredictedFeedKg: 42.5}

	forecast, err := svc.Forecast(context.Background(), 7)
	require.NoError(t, err)

	assert.InDelta(t, 42.5, forecast.PredictedFeedKg.Float64(), 1e-9)
}
