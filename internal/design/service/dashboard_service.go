package service

import (
	"context"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/shared/cliq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardService aggregates workflow counts for the dashboard page and
// runs the periodic overdue check.
type DashboardService struct {
	db       *gorm.DB
	notifier *cliq.Client
	logger   *zap.Logger
}

func NewDashboardService(db *gorm.DB, notifier *cliq.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, notifier: notifier, logger: logger}
}

// Stats are the headline dashboard counters.
type Stats struct {
	TotalRequests  int `json:"total_requests"`
	OpenRequests   int `json:"open_requests"`
	ClosedRequests int `json:"closed_requests"`
	MyRequests     int `json:"my_requests"`
	TotalItems     int `json:"total_items"`
	PendingItems   int `json:"pending_items"`
	CompletedItems int `json:"completed_items"`
	OverdueItems   int `json:"overdue_items"`
}

// ChartBucket is one slice of a distribution chart.
type ChartBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard is the full page payload, re-fetched on every call.
type Dashboard struct {
	Stats         Stats                      `json:"stats"`
	RecentItems   []entity.DesignRequestItem `json:"recent_items"`
	StageChart    []ChartBucket              `json:"stage_chart"`
	ApprovalChart []ChartBucket              `json:"approval_chart"`
	RequestChart  []ChartBucket              `json:"request_chart"`
}

// Get assembles the dashboard for the given user.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	d := &Dashboard{}

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'Open' THEN 1 END) AS open,
			COUNT(CASE WHEN status = 'Closed' THEN 1 END) AS closed,
			COUNT(CASE WHEN assigned_to = ? THEN 1 END) AS mine
		FROM design_requests
	`, userID).Row()
	if err := row.Scan(&d.Stats.TotalRequests, &d.Stats.OpenRequests,
		&d.Stats.ClosedRequests, &d.Stats.MyRequests); err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -OverdueAfterDays)
	row = s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN design_status = 'Pending' THEN 1 END) AS pending,
			COUNT(CASE WHEN design_status = 'Completed' THEN 1 END) AS completed,
			COUNT(CASE WHEN design_status NOT IN ('Completed', 'Cancelled')
				AND created_at < ? THEN 1 END) AS overdue
		FROM design_request_items
	`, cutoff).Row()
	if err := row.Scan(&d.Stats.TotalItems, &d.Stats.PendingItems,
		&d.Stats.CompletedItems, &d.Stats.OverdueItems); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(10).
		Find(&d.RecentItems).Error; err != nil {
		return nil, err
	}
	if d.RecentItems == nil {
		d.RecentItems = []entity.DesignRequestItem{}
	}

	var err error
	if d.StageChart, err = s.distribution(ctx, "design_request_items", "design_status"); err != nil {
		return nil, err
	}
	if d.ApprovalChart, err = s.distribution(ctx, "design_request_items", "approval_status"); err != nil {
		return nil, err
	}
	if d.RequestChart, err = s.distribution(ctx, "design_requests", "status"); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *DashboardService) distribution(ctx context.Context, table, column string) ([]ChartBucket, error) {
	rows, err := s.db.WithContext(ctx).
		Table(table).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []ChartBucket{}
	for rows.Next() {
		var b ChartBucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// OverdueItems lists open items on draft requests older than the threshold.
func (s *DashboardService) OverdueItems(ctx context.Context) ([]cliq.OverdueRow, error) {
	cutoff := time.Now().AddDate(0, 0, -OverdueAfterDays)
	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT i.id, i.item_code, i.design_status, i.assigned_to, i.created_at
		FROM design_request_items i
		JOIN design_requests r ON r.id = i.request_id
		WHERE i.design_status NOT IN ('Completed', 'Cancelled')
			AND r.doc_status = 0
			AND i.created_at < ?
		ORDER BY i.created_at ASC
	`, cutoff).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var overdue []cliq.OverdueRow
	for rows.Next() {
		var id, itemCode, stage, assignedTo string
		var createdAt time.Time
		if err := rows.Scan(&id, &itemCode, &stage, &assignedTo, &createdAt); err != nil {
			return nil, err
		}
		overdue = append(overdue, cliq.OverdueRow{
			ItemID:     id,
			ItemCode:   itemCode,
			Stage:      stage,
			DaysOpen:   int(now.Sub(createdAt).Hours() / 24),
			AssignedTo: assignedTo,
		})
	}
	return overdue, rows.Err()
}

// RunOverdueChecker alerts the channel about overdue items until ctx is
// cancelled. Intended to run in its own goroutine.
func (s *DashboardService) RunOverdueChecker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOverdue(ctx)
		}
	}
}

func (s *DashboardService) checkOverdue(ctx context.Context) {
	items, err := s.OverdueItems(ctx)
	if err != nil {
		s.logger.Error("overdue check failed", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	s.logger.Info("overdue design items found", zap.Int("count", len(items)))
	if s.notifier == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.notifier.Send(sendCtx, cliq.OverdueMessage(items)); err != nil {
		s.logger.Warn("overdue notification failed", zap.Error(err))
	}
}
