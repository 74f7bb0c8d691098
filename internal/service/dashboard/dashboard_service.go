// Package dashboard assembles the farm dashboard views from backend data
// fetched through the authenticated session.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

const upcomingWindow = 14 * 24 * time.Hour

// Widget names used as keys in Overview.Errors.
const (
	WidgetStats  = "stats"
	WidgetFarms  = "farms"
	WidgetFlocks = "flocks"
)

// Service computes dashboard views.
type Service struct {
	session *session.Session
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a dashboard service on top of an authenticated session.
func NewService(sess *session.Session, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{session: sess, logger: logger, now: time.Now}
}

// FarmSummary is a farm with its occupancy.
type FarmSummary struct {
	models.Farm
	OccupancyRate float64 `json:"occupancy_rate"`
}

// FlockSummary is a flock with its survival figures.
type FlockSummary struct {
	models.Flock
	SurvivalRate float64 `json:"survival_rate"`
	Losses       int     `json:"losses"`
}

// Overview is the landing page: backend stats plus farm and flock tables.
// A widget that failed to load is listed in Errors and left empty.
type Overview struct {
	Stats           *models.DashboardStats `json:"stats,omitempty"`
	Farms           []FarmSummary          `json:"farms"`
	Flocks          []FlockSummary         `json:"flocks"`
	TotalCapacity   int                    `json:"total_capacity"`
	TotalBirds      int                    `json:"total_birds"`
	OccupancyRate   float64                `json:"occupancy_rate"`
	AverageSurvival float64                `json:"average_survival"`
	Errors          map[string]string      `json:"errors,omitempty"`
}

// Overview loads the stats, farms and flocks widgets concurrently. Only a
// lost session fails the whole view.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var (
		mu     sync.Mutex
		view   = &Overview{}
		stats  *models.DashboardStats
		farms  *models.Page[models.Farm]
		flocks *models.Page[models.Flock]
	)

	record := func(widget string, err error) error {
		if isSessionError(err) {
			return err
		}
		s.logger.Warn("dashboard widget failed", zap.String("widget", widget), zap.Error(err))
		mu.Lock()
		defer mu.Unlock()
		if view.Errors == nil {
			view.Errors = make(map[string]string)
		}
		view.Errors[widget] = err.Error()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = session.Call(gctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.DashboardStats, error) {
			return c.DashboardStats(ctx)
		})
		if err != nil {
			return record(WidgetStats, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		farms, err = session.Call(gctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Farm], error) {
			return c.ListFarms(ctx)
		})
		if err != nil {
			return record(WidgetFarms, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		flocks, err = session.Call(gctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Flock], error) {
			return c.ListFlocks(ctx, 0)
		})
		if err != nil {
			return record(WidgetFlocks, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Stats = stats
	view.Farms = summarizeFarms(farms)
	view.Flocks = summarizeFlocks(flocks)

	for _, farm := range view.Farms {
		view.TotalCapacity += farm.TotalCapacity
		view.TotalBirds += farm.CurrentBirds
	}
	if view.TotalCapacity > 0 {
		view.OccupancyRate = float64(view.TotalBirds) / float64(view.TotalCapacity) * 100
	}

	var initial, current int
	for _, flock := range view.Flocks {
		initial += flock.InitialCount
		current += flock.CurrentCount
	}
	if initial > 0 {
		view.AverageSurvival = float64(current) / float64(initial) * 100
	}

	return view, nil
}

func summarizeFarms(page *models.Page[models.Farm]) []FarmSummary {
	if page == nil {
		return []FarmSummary{}
	}
	out := make([]FarmSummary, 0, len(page.Results))
	for _, farm := range page.Results {
		out = append(out, FarmSummary{Farm: farm, OccupancyRate: farm.OccupancyRate()})
	}
	return out
}

func summarizeFlocks(page *models.Page[models.Flock]) []FlockSummary {
	if page == nil {
		return []FlockSummary{}
	}
	out := make([]FlockSummary, 0, len(page.Results))
	for _, flock := range page.Results {
		out = append(out, FlockSummary{Flock: flock, SurvivalRate: flock.SurvivalRate(), Losses: flock.Losses()})
	}
	return out
}

// ProductionSummary aggregates daily production records.
type ProductionSummary struct {
	FlockID               int64                     `json:"flock_id,omitempty"`
	Records               []models.ProductionRecord `json:"records"`
	Days                  int                       `json:"days"`
	TotalEggs             int                       `json:"total_eggs"`
	TotalFeedKg           float64                   `json:"total_feed_kg"`
	TotalWaterL           float64                   `json:"total_water_l"`
	TotalMortality        int                       `json:"total_mortality"`
	AverageProductionRate float64                   `json:"average_production_rate"`
	AverageFeedConversion float64                   `json:"average_feed_conversion"`
	FeedPerEggKg          float64                   `json:"feed_per_egg_kg"`
	AverageEggsPerDay     float64                   `json:"average_eggs_per_day"`
	FirstDate             models.Date               `json:"first_date,omitzero"`
	LastDate              models.Date               `json:"last_date,omitzero"`
}

// Production summarizes production records, for one flock or all of them
// when flockID is not positive.
func (s *Service) Production(ctx context.Context, flockID int64) (*ProductionSummary, error) {
	page, err := session.Call(ctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.ProductionRecord], error) {
		return c.ListProductionRecords(ctx, flockID)
	})
	if err != nil {
		return nil, err
	}
	return SummarizeProduction(flockID, page.Results), nil
}

// SummarizeProduction computes totals and averages over records.
func SummarizeProduction(flockID int64, records []models.ProductionRecord) *ProductionSummary {
	summary := &ProductionSummary{FlockID: flockID, Records: records, Days: len(records)}
	if summary.Records == nil {
		summary.Records = []models.ProductionRecord{}
	}

	var rateSum, fcrSum float64
	var fcrDays int
	for _, r := range records {
		summary.TotalEggs += r.EggsCollected
		summary.TotalFeedKg += r.FeedConsumed.Float64()
		summary.TotalWaterL += r.WaterConsumed.Float64()
		summary.TotalMortality += r.MortalityCount
		rateSum += r.ProductionRate.Float64()
		if r.FeedConversionRatio > 0 {
			fcrSum += r.FeedConversionRatio.Float64()
			fcrDays++
		}

		if summary.FirstDate.IsZero() || r.Date.Before(summary.FirstDate.Time) {
			summary.FirstDate = r.Date
		}
		if r.Date.After(summary.LastDate.Time) {
			summary.LastDate = r.Date
		}
	}

	if summary.Days > 0 {
		summary.AverageProductionRate = rateSum / float64(summary.Days)
		summary.AverageEggsPerDay = float64(summary.TotalEggs) / float64(summary.Days)
	}
	if fcrDays > 0 {
		summary.AverageFeedConversion = fcrSum / float64(fcrDays)
	}
	summary.FeedPerEggKg = models.FeedConversion(summary.TotalFeedKg, summary.TotalEggs)

	return summary
}

// HealthSummary groups health records by status and lists what is coming due.
type HealthSummary struct {
	FlockID       int64                             `json:"flock_id,omitempty"`
	Records       []models.HealthRecord             `json:"records"`
	ByStatus      map[models.HealthRecordStatus]int `json:"by_status"`
	ByType        map[models.HealthRecordType]int   `json:"by_type"`
	Upcoming      []models.HealthRecord             `json:"upcoming"`
	Overdue       []models.HealthRecord             `json:"overdue"`
	BirdsAffected int                               `json:"birds_affected"`
	TotalCost     float64                           `json:"total_cost"`
}

// Health summarizes health records for one flock, or all of them.
func (s *Service) Health(ctx context.Context, flockID int64) (*HealthSummary, error) {
	page, err := session.Call(ctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.HealthRecord], error) {
		return c.ListHealthRecords(ctx, flockID)
	})
	if err != nil {
		return nil, err
	}
	return SummarizeHealth(flockID, page.Results, s.now()), nil
}

// SummarizeHealth classifies records relative to now. A record not yet
// completed whose next due date has passed counts as overdue even if the
// backend still says scheduled.
func SummarizeHealth(flockID int64, records []models.HealthRecord, now time.Time) *HealthSummary {
	summary := &HealthSummary{
		FlockID:  flockID,
		Records:  records,
		ByStatus: make(map[models.HealthRecordStatus]int),
		ByType:   make(map[models.HealthRecordType]int),
		Upcoming: []models.HealthRecord{},
		Overdue:  []models.HealthRecord{},
	}
	if summary.Records == nil {
		summary.Records = []models.HealthRecord{}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.Add(upcomingWindow)

	for _, r := range records {
		status := r.Status
		if status == "" {
			status = models.HealthScheduled
		}
		summary.ByStatus[status]++
		summary.ByType[r.RecordType]++
		summary.BirdsAffected += r.BirdsAffected
		summary.TotalCost += r.Cost.Float64()

		if status == models.HealthCompleted || r.NextDueDate.IsZero() {
			if status == models.HealthOverdue {
				summary.Overdue = append(summary.Overdue, r)
			}
			continue
		}

		due := r.NextDueDate.Time
		switch {
		case status == models.HealthOverdue || due.Before(today):
			summary.Overdue = append(summary.Overdue, r)
		case !due.After(horizon):
			summary.Upcoming = append(summary.Upcoming, r)
		}
	}

	sortByDue(summary.Upcoming)
	sortByDue(summary.Overdue)
	return summary
}

func sortByDue(records []models.HealthRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NextDueDate.Before(records[j].NextDueDate.Time)
	})
}

// AccountingSummary is the profit and loss view.
type AccountingSummary struct {
	Sales        []models.Sale `json:"sales"`
	Costs        []models.Cost `json:"costs"`
	Revenue      float64       `json:"revenue"`
	Expenses     float64       `json:"expenses"`
	Profit       float64       `json:"profit"`
	ProfitMargin float64       `json:"profit_margin"`
}

// Accounting loads sales and costs concurrently and totals them. Unlike the
// overview, a failure of either list fails the view: a half-filled ledger
// would report the wrong profit.
func (s *Service) Accounting(ctx context.Context) (*AccountingSummary, error) {
	var (
		sales *models.Page[models.Sale]
		costs *models.Page[models.Cost]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = session.Call(gctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Sale], error) {
			return c.ListSales(ctx)
		})
		return err
	})
	g.Go(func() error {
		var err error
		costs, err = session.Call(gctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.Cost], error) {
			return c.ListCosts(ctx)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return SummarizeAccounting(sales.Results, costs.Results), nil
}

// SummarizeAccounting totals sales and costs.
func SummarizeAccounting(sales []models.Sale, costs []models.Cost) *AccountingSummary {
	summary := &AccountingSummary{Sales: sales, Costs: costs}
	if summary.Sales == nil {
		summary.Sales = []models.Sale{}
	}
	if summary.Costs == nil {
		summary.Costs = []models.Cost{}
	}

	for _, sale := range sales {
		summary.Revenue += sale.Total()
	}
	for _, cost := range costs {
		summary.Expenses += cost.Amount.Float64()
	}
	summary.Profit = summary.Revenue - summary.Expenses
	summary.ProfitMargin = models.ProfitMargin(summary.Revenue, summary.Expenses)

	return summary
}

// OrdersView lists chick orders with the quantity still awaited.
type OrdersView struct {
	Orders        []models.ChickOrder `json:"orders"`
	Pending       int                 `json:"pending"`
	ChicksOnOrder int                 `json:"chicks_on_order"`
}

// Orders lists chick orders.
func (s *Service) Orders(ctx context.Context) (*OrdersView, error) {
	page, err := session.Call(ctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.Page[models.ChickOrder], error) {
		return c.ListOrders(ctx)
	})
	if err != nil {
		return nil, err
	}

	view := &OrdersView{Orders: page.Results}
	if view.Orders == nil {
		view.Orders = []models.ChickOrder{}
	}
	for _, order := range view.Orders {
		if !order.Received {
			view.Pending++
			view.ChicksOnOrder += order.Quantity
		}
	}
	return view, nil
}

// Forecast returns the predicted feed need based on the last days entries.
func (s *Service) Forecast(ctx context.Context, days int) (*models.FeedForecast, error) {
	return session.Call(ctx, s.session, func(ctx context.Context, c farmapi.Client) (*models.FeedForecast, error) {
		return c.FeedForecast(ctx, days)
	})
}

func isSessionError(err error) bool {
	return errors.Is(err, session.ErrNotAuthenticated) || errors.Is(err, session.ErrSessionExpired)
}
