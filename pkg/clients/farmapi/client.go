package farmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/config"
	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
)

// Client exposes the farm management backend operations used by the application.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)

	ListFarms(ctx context.Context) (*models.Page[models.Farm], error)
	CreateFarm(ctx context.Context, farm models.Farm) (*models.Farm, error)
	UpdateFarm(ctx context.Context, id int64, farm models.Farm) (*models.Farm, error)

	ListFlocks(ctx context.Context, farmID int64) (*models.Page[models.Flock], error)
	CreateFlock(ctx context.Context, flock models.Flock) (*models.Flock, error)

	ListHealthRecords(ctx context.Context, flockID int64) (*models.Page[models.HealthRecord], error)
	CreateHealthRecord(ctx context.Context, record models.HealthRecord) (*models.HealthRecord, error)

	ListProductionRecords(ctx context.Context, flockID int64) (*models.Page[models.ProductionRecord], error)
	CreateProductionRecord(ctx context.Context, record models.ProductionRecord) (*models.ProductionRecord, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ProductionReport(ctx context.Context, params Params) (models.ProductionReport, error)

	ListSales(ctx context.Context) (*models.Page[models.Sale], error)
	ListCosts(ctx context.Context) (*models.Page[models.Cost], error)
	ListOrders(ctx context.Context) (*models.Page[models.ChickOrder], error)
	CreateOrder(ctx context.Context, order models.ChickOrder) (*models.ChickOrder, error)
	FeedForecast(ctx context.Context, days int) (*models.FeedForecast, error)
}

var _ Client = (*APIClient)(nil)

// AuthScheme is the Authorization header prefix the backend expects.
type AuthScheme string

const (
	SchemeBearer AuthScheme = "Bearer"
	SchemeToken  AuthScheme = "Token"
)

// ParseAuthScheme maps a configured value onto a known scheme.
func ParseAuthScheme(value string) (AuthScheme, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bearer":
		return SchemeBearer, nil
	case "token":
		return SchemeToken, nil
	default:
		return "", fmt.Errorf("unknown auth scheme %q", value)
	}
}

// Endpoints lists backend paths relative to the base URL. An empty Refresh
// disables token refresh.
type Endpoints struct {
	Login             string
	Register          string
	Refresh           string
	Logout            string
	Profile           string
	Farms             string
	Flocks            string
	HealthRecords     string
	ProductionRecords string
	DashboardStats    string
	ProductionReport  string
	Sales             string
	Costs             string
	Orders            string
	FeedForecast      string
}

// DefaultEndpoints returns the paths served by the reference backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:             "/auth/login/",
		Register:          "/auth/register/",
		Refresh:           "/auth/refresh/",
		Logout:            "/auth/logout/",
		Profile:           "/auth/profile/",
		Farms:             "/farms/",
		Flocks:            "/flocks/",
		HealthRecords:     "/health/records/",
		ProductionRecords: "/production/records/",
		DashboardStats:    "/reports/dashboard/",
		ProductionReport:  "/reports/production/",
		Sales:             "/accounting/sales/",
		Costs:             "/accounting/costs/",
		Orders:            "/orders/chick-orders/",
		FeedForecast:      "/forecast/predict/feed/",
	}
}

// Option customizes an APIClient.
type Option func(*APIClient)

// WithLogger routes request debugging through zap.
func WithLogger(logger *zap.Logger) Option {
	return func(c *APIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *Metrics) Option {
	return func(c *APIClient) {
		c.metrics = m
	}
}

// WithEndpoints overrides the endpoint set.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *APIClient) {
		c.endpoints = endpoints
	}
}

// APIClient is a resty-backed implementation of Client. The token is read from
// the store on every request, so a login through one session is visible to all
// callers sharing the store.
type APIClient struct {
	httpClient *resty.Client
	tokens     tokenstore.Store
	scheme     AuthScheme
	endpoints  Endpoints
	metrics    *Metrics
	logger     *zap.Logger
}

// NewClient builds an API client using the provided configuration values.
func NewClient(cfg config.APIConfig, tokens tokenstore.Store, opts ...Option) (*APIClient, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}

	scheme, err := ParseAuthScheme(cfg.AuthScheme)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &APIClient{
		tokens:    tokens,
		scheme:    scheme,
		endpoints: DefaultEndpoints(),
		logger:    zap.NewNop(),
	}
	if cfg.RefreshDisabled {
		c.endpoints.Refresh = ""
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetLogger(c.logger.Sugar())

	return c, nil
}

// Endpoints returns the active endpoint set.
func (c *APIClient) Endpoints() Endpoints {
	return c.endpoints
}

// do issues one request. Non-2xx responses become *HTTPError, transport
// failures *NetworkError. out may be nil.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	req := c.httpClient.R().SetContext(ctx)

	token, err := c.tokens.Get(tokenstore.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read auth token: %w", err)
	}
	if token != "" {
		req.SetHeader("Authorization", fmt.Sprintf("%s %s", c.scheme, token))
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.observe(method, path, outcomeLabel(0), time.Since(start))
		c.logger.Debug("backend unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	c.metrics.observe(method, path, outcomeLabel(status), time.Since(start))

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		apiErr := &HTTPError{
			StatusCode: status,
			Method:     method,
			Path:       path,
			Message:    NormalizeError(resp.Body(), status),
		}
		c.logger.Debug("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *APIClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *APIClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *APIClient) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("%s%d/", collection, id)
}
