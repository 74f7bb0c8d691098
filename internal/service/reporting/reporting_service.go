package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/repository/mongodb"
	"github.com/mamadbah2/farmdash/internal/repository/sheets"
	"github.com/mamadbah2/farmdash/internal/service/dashboard"
)

const (
	dateLayout          = models.DateLayout
	snapshotsDataRange  = "Snapshots!A:H"
	productionDataRange = "Production!A:I"
	productionKeyRange  = "Production!A:B"
)

// ErrSnapshotsDisabled is returned when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")

// ErrExportDisabled is returned when Google Sheets export is not configured.
var ErrExportDisabled = errors.New("google sheets export is not configured")

// Dashboard is the subset of the dashboard service used for reporting.
type Dashboard interface {
	Overview(ctx context.Context) (*dashboard.Overview, error)
	Production(ctx context.Context, flockID int64) (*dashboard.ProductionSummary, error)
}

// Service builds dashboard snapshots and exports them.
type Service struct {
	dashboard Dashboard
	snapshots mongodb.Repository
	sheets    sheets.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance. snapshots and sheetsRepo
// may be nil when the matching backend is not configured.
func NewService(dash Dashboard, snapshots mongodb.Repository, sheetsRepo sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dashboard: dash, snapshots: snapshots, sheets: sheetsRepo, logger: logger, now: time.Now}
}

// BuildSnapshot captures the current overview without storing it.
func (s *Service) BuildSnapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	overview, err := s.dashboard.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard overview: %w", err)
	}

	snapshot := &models.DashboardSnapshot{
		TakenAt:         s.now().UTC(),
		FarmCount:       len(overview.Farms),
		FlockCount:      len(overview.Flocks),
		TotalBirds:      overview.TotalBirds,
		TotalCapacity:   overview.TotalCapacity,
		OccupancyRate:   round2(overview.OccupancyRate),
		AverageSurvival: round2(overview.AverageSurvival),
		WidgetErrors:    overview.Errors,
	}
	if overview.Stats != nil {
		snapshot.Stats = *overview.Stats
	}
	snapshot.Digest = RenderDigest(snapshot)

	return snapshot, nil
}

// TakeSnapshot builds a snapshot and writes it to every configured store.
// Storage failures are joined; the snapshot is returned either way. With no
// store configured it returns ErrSnapshotsDisabled without building anything.
func (s *Service) TakeSnapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	if s.snapshots == nil && s.sheets == nil {
		return nil, ErrSnapshotsDisabled
	}

	snapshot, err := s.BuildSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var errs []error
	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, *snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	if s.sheets != nil {
		if err := s.sheets.AppendRows(ctx, snapshotsDataRange, [][]interface{}{snapshotRow(snapshot)}); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("failed to store dashboard snapshot", zap.Error(err))
		return snapshot, err
	}

	s.logger.Info("dashboard snapshot stored",
		zap.Time("taken_at", snapshot.TakenAt),
		zap.Int("farms", snapshot.FarmCount),
		zap.Int("birds", snapshot.TotalBirds))
	return snapshot, nil
}

// RecentSnapshots lists stored snapshots, newest first.
func (s *Service) RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error) {
	if s.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	return s.snapshots.RecentSnapshots(ctx, limit)
}

// ExportProduction appends a flock's production records to the Production
// sheet. Days already present for that flock are skipped, so repeated exports
// only add new rows. It returns the number of rows written.
func (s *Service) ExportProduction(ctx context.Context, flockID int64) (int, error) {
	if s.sheets == nil {
		return 0, ErrExportDisabled
	}

	summary, err := s.dashboard.Production(ctx, flockID)
	if err != nil {
		return 0, fmt.Errorf("load production records: %w", err)
	}

	exported, err := s.exportedDays(ctx)
	if err != nil {
		return 0, err
	}

	var rows [][]interface{}
	for _, record := range summary.Records {
		key := exportKey(record.Date.String(), record.Flock)
		if _, done := exported[key]; done {
			continue
		}
		exported[key] = struct{}{}
		rows = append(rows, productionRow(record))
	}

	if err := s.sheets.AppendRows(ctx, productionDataRange, rows); err != nil {
		return 0, err
	}

	s.logger.Info("production records exported",
		zap.Int64("flock_id", flockID),
		zap.Int("rows", len(rows)),
		zap.Int("skipped", len(summary.Records)-len(rows)))
	return len(rows), nil
}

func (s *Service) exportedDays(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.sheets.ReadRange(ctx, productionKeyRange)
	if err != nil {
		return nil, fmt.Errorf("load exported production range: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}

		dateValue, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip production row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}

		flock, err := parseInt(row[1])
		if err != nil {
			s.logger.Debug("skip production row with invalid flock", zap.Any("value", row[1]), zap.Error(err))
			continue
		}

		seen[exportKey(dateValue.Format(dateLayout), int64(flock))] = struct{}{}
	}
	return seen, nil
}

// RenderDigest is the plain-text summary stored with each snapshot.
func RenderDigest(snapshot *models.DashboardSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dashboard snapshot %s\n", snapshot.TakenAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Farms: %d, flocks: %d.\n", snapshot.FarmCount, snapshot.FlockCount)
	fmt.Fprintf(&b, "Birds: %d of %d places (%.2f%% occupancy).\n", snapshot.TotalBirds, snapshot.TotalCapacity, snapshot.OccupancyRate)

	if snapshot.FlockCount > 0 {
		fmt.Fprintf(&b, "Average survival %.2f%%.\n", snapshot.AverageSurvival)
	}

	stats := snapshot.Stats
	if stats.TotalBirds > 0 {
		fmt.Fprintf(&b, "Healthy birds: %d (%.2f%%).\n", stats.HealthyBirds, round2(stats.HealthyShare()))
	}
	if stats.ProductionRate > 0 || stats.FeedConsumption > 0 {
		fmt.Fprintf(&b, "Production rate %.2f%%, feed %.2f kg.\n", stats.ProductionRate.Float64(), stats.FeedConsumption.Float64())
	}
	if n := len(stats.RecentAlerts); n > 0 {
		fmt.Fprintf(&b, "Alerts: %d recent.\n", n)
	}

	if len(snapshot.WidgetErrors) > 0 {
		widgets := make([]string, 0, len(snapshot.WidgetErrors))
		for _, name := range []string{dashboard.WidgetStats, dashboard.WidgetFarms, dashboard.WidgetFlocks} {
			if _, failed := snapshot.WidgetErrors[name]; failed {
				widgets = append(widgets, name)
			}
		}
		fmt.Fprintf(&b, "Unavailable: %s.\n", strings.Join(widgets, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func snapshotRow(snapshot *models.DashboardSnapshot) []interface{} {
	return []interface{}{
		snapshot.TakenAt.Format(time.RFC3339),
		snapshot.FarmCount,
		snapshot.FlockCount,
		snapshot.TotalBirds,
		snapshot.TotalCapacity,
		snapshot.OccupancyRate,
		snapshot.AverageSurvival,
		snapshot.Stats.HealthyBirds,
	}
}

func productionRow(record models.ProductionRecord) []interface{} {
	return []interface{}{
		record.Date.String(),
		record.Flock,
		record.EggsCollected,
		record.FeedConsumed.Float64(),
		record.WaterConsumed.Float64(),
		record.MortalityCount,
		record.ProductionRate.Float64(),
		record.FeedConversionRatio.Float64(),
		record.Notes,
	}
}

func exportKey(date string, flock int64) string {
	return date + "/" + strconv.FormatInt(flock, 10)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}
