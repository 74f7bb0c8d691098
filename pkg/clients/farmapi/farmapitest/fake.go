// Package farmapitest provides an in-memory farmapi.Client for tests.
package farmapitest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

var _ farmapi.Client = (*Fake)(nil)

// Fake keeps farms, flocks and records in memory. Errors can be queued per
// method name with Fail, or made permanent with FailAlways.
type Fake struct {
	mu sync.Mutex

	Farms       []models.Farm
	Flocks      []models.Flock
	Health      []models.HealthRecord
	Production  []models.ProductionRecord
	Sales       []models.Sale
	Costs       []models.Cost
	Orders      []models.ChickOrder
	Stats       models.DashboardStats
	Report      models.ProductionReport
	Forecast    models.FeedForecast
	Me          *models.User
	AuthResult  *models.AuthResponse
	RefreshPair *models.TokenPair

	calls  []string
	queued map[string][]error
	always map[string]error
	nextID int64
}

// New returns an empty fake whose login succeeds for any credentials.
func New() *Fake {
	return &Fake{
		queued: make(map[string][]error),
		always: make(map[string]error),
		nextID: 100,
	}
}

// Fail queues errs for method; each call consumes one.
func (f *Fake) Fail(method string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[method] = append(f.queued[method], errs...)
}

// FailAlways makes every call to method return err. A nil err clears it.
func (f *Fake) FailAlways(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.always, method)
		return
	}
	f.always[method] = err
}

// Calls returns the method names invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts invocations of method.
func (f *Fake) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// Status builds the HTTP error the real client returns for status.
func Status(status int, message string) error {
	return &farmapi.HTTPError{StatusCode: status, Message: message}
}

// Unauthorized is a 401 with the backend's usual detail message.
func Unauthorized() error {
	return Status(http.StatusUnauthorized, "Given token not valid for any token type")
}

// Unreachable is a transport failure.
func Unreachable() error {
	return &farmapi.NetworkError{Method: http.MethodGet, Path: "/", Err: fmt.Errorf("connection refused")}
}

func (f *Fake) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if err, ok := f.always[method]; ok {
		return err
	}
	if q := f.queued[method]; len(q) > 0 {
		f.queued[method] = q[1:]
		return q[0]
	}
	return nil
}

func (f *Fake) id() int64 {
	f.nextID++
	return f.nextID
}

func page[T any](items []T) *models.Page[T] {
	return &models.Page[T]{Count: len(items), Results: append([]T(nil), items...)}
}

func (f *Fake) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	if err := f.enter("Login"); err != nil {
		return nil, err
	}
	return f.authResponse(email), nil
}

func (f *Fake) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := f.enter("Register"); err != nil {
		return nil, err
	}
	resp := f.authResponse(req.Email)
	resp.User.FirstName = req.FirstName
	resp.User.LastName = req.LastName
	return resp, nil
}

func (f *Fake) authResponse(email string) *models.AuthResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AuthResult != nil {
		resp := *f.AuthResult
		return &resp
	}
	return &models.AuthResponse{
		User:    &models.User{ID: 1, Email: email},
		Access:  "access-" + email,
		Refresh: "refresh-" + email,
	}
}

func (f *Fake) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if err := f.enter("Refresh"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RefreshPair != nil {
		pair := *f.RefreshPair
		return &pair, nil
	}
	return &models.TokenPair{Access: "refreshed-" + refreshToken}, nil
}

func (f *Fake) Logout(ctx context.Context) error {
	return f.enter("Logout")
}

func (f *Fake) Profile(ctx context.Context) (*models.User, error) {
	if err := f.enter("Profile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Me == nil {
		return &models.User{ID: 1, Email: "farmer@example.com"}, nil
	}
	u := *f.Me
	return &u, nil
}

func (f *Fake) ListFarms(ctx context.Context) (*models.Page[models.Farm], error) {
	if err := f.enter("ListFarms"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.Farms), nil
}

func (f *Fake) CreateFarm(ctx context.Context, farm models.Farm) (*models.Farm, error) {
	if err := farm.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("CreateFarm"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	farm.ID = f.id()
	f.Farms = append(f.Farms, farm)
	return &farm, nil
}

func (f *Fake) UpdateFarm(ctx context.Context, id int64, farm models.Farm) (*models.Farm, error) {
	if err := farm.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("UpdateFarm"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Farms {
		if f.Farms[i].ID == id {
			farm.ID = id
			f.Farms[i] = farm
			return &farm, nil
		}
	}
	return nil, Status(http.StatusNotFound, "No Farm matches the given query.")
}

func (f *Fake) ListFlocks(ctx context.Context, farmID int64) (*models.Page[models.Flock], error) {
	if err := f.enter("ListFlocks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Flock
	for _, flock := range f.Flocks {
		if farmID <= 0 || flock.Farm == farmID {
			out = append(out, flock)
		}
	}
	return page(out), nil
}

func (f *Fake) CreateFlock(ctx context.Context, flock models.Flock) (*models.Flock, error) {
	if flock.CurrentCount == 0 {
		flock.CurrentCount = flock.InitialCount
	}
	if err := flock.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("CreateFlock"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	flock.ID = f.id()
	f.Flocks = append(f.Flocks, flock)
	return &flock, nil
}

func (f *Fake) ListHealthRecords(ctx context.Context, flockID int64) (*models.Page[models.HealthRecord], error) {
	if err := f.enter("ListHealthRecords"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HealthRecord
	for _, r := range f.Health {
		if flockID <= 0 || r.Flock == flockID {
			out = append(out, r)
		}
	}
	return page(out), nil
}

func (f *Fake) CreateHealthRecord(ctx context.Context, record models.HealthRecord) (*models.HealthRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("CreateHealthRecord"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = f.id()
	f.Health = append(f.Health, record)
	return &record, nil
}

func (f *Fake) ListProductionRecords(ctx context.Context, flockID int64) (*models.Page[models.ProductionRecord], error) {
	if err := f.enter("ListProductionRecords"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProductionRecord
	for _, r := range f.Production {
		if flockID <= 0 || r.Flock == flockID {
			out = append(out, r)
		}
	}
	return page(out), nil
}

func (f *Fake) CreateProductionRecord(ctx context.Context, record models.ProductionRecord) (*models.ProductionRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("CreateProductionRecord"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = f.id()
	f.Production = append(f.Production, record)
	return &record, nil
}

func (f *Fake) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if err := f.enter("DashboardStats"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := f.Stats
	return &stats, nil
}

func (f *Fake) ProductionReport(ctx context.Context, params farmapi.Params) (models.ProductionReport, error) {
	if err := f.enter("ProductionReport"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	report := models.ProductionReport{"query": params.Encode()}
	for k, v := range f.Report {
		report[k] = v
	}
	return report, nil
}

func (f *Fake) ListSales(ctx context.Context) (*models.Page[models.Sale], error) {
	if err := f.enter("ListSales"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.Sales), nil
}

func (f *Fake) ListCosts(ctx context.Context) (*models.Page[models.Cost], error) {
	if err := f.enter("ListCosts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.Costs), nil
}

func (f *Fake) ListOrders(ctx context.Context) (*models.Page[models.ChickOrder], error) {
	if err := f.enter("ListOrders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.Orders), nil
}

func (f *Fake) CreateOrder(ctx context.Context, order models.ChickOrder) (*models.ChickOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := f.enter("CreateOrder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = f.id()
	f.Orders = append(f.Orders, order)
	return &order, nil
}

func (f *Fake) FeedForecast(ctx context.Context, days int) (*models.FeedForecast, error) {
	if err := f.enter("FeedForecast"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	forecast := f.Forecast
	return &forecast, nil
}
