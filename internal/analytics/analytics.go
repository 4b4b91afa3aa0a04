// Package analytics aggregates revenue and order KPIs for the admin
// dashboard. Only paid, shipped and delivered orders count as revenue.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/order"
)

// Summary is the dashboard KPI snapshot. Day boundaries are taken at local
// midnight; "last 7 days" includes today.
type Summary struct {
	Currency          string `json:"currency"`
	TotalRevenue      int64  `json:"total_revenue"`
	TodayRevenue      int64  `json:"today_revenue"`
	Last7DaysRevenue  int64  `json:"last_7_days_revenue"`
	Last30DaysRevenue int64  `json:"last_30_days_revenue"`
	TotalOrders       int    `json:"total_orders"`
	ActiveOrders      int    `json:"active_orders"`
	PaidOrders        int    `json:"paid_orders"`
	TodayOrders       int    `json:"today_orders"`
	AverageOrderValue int64  `json:"average_order_value"`
}

// ProductRevenue is one row of the top-products view.
type ProductRevenue struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Revenue   int64  `json:"revenue"`
	UnitsSold int64  `json:"units_sold"`
	Currency  string `json:"currency"`
}

// OrderLister is the slice of the order repository the summary needs.
type OrderLister interface {
	List(ctx context.Context) ([]order.Order, error)
}

// Repository serves the aggregations that are cheaper done in SQL.
type Repository interface {
	TopProducts(ctx context.Context) ([]ProductRevenue, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) TopProducts(ctx context.Context) ([]ProductRevenue, error) {
	query := `
		SELECT p.id, p.name, p.slug,
			SUM(oi.unit_price * oi.quantity) AS revenue,
			SUM(oi.quantity) AS units_sold,
			MAX(o.currency) AS currency
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status IN ('PAID', 'SHIPPED', 'DELIVERED')
		GROUP BY p.id, p.name, p.slug
		ORDER BY revenue DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query top products: %w", err)
	}
	defer rows.Close()

	products := make([]ProductRevenue, 0)
	for rows.Next() {
		var p ProductRevenue
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Slug, &p.Revenue, &p.UnitsSold, &p.Currency); err != nil {
			return nil, fmt.Errorf("repository: failed to scan top product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating top products: %w", err)
	}

	return products, nil
}

type Service struct {
	orders OrderLister
	repo   Repository
	now    func() time.Time
}

func NewService(orders OrderLister, repo Repository) *Service {
	return &Service{orders: orders, repo: repo, now: time.Now}
}

// NewServiceAt pins "now" for deterministic window math in tests.
func NewServiceAt(orders OrderLister, repo Repository, now func() time.Time) *Service {
	return &Service{orders: orders, repo: repo, now: now}
}

func isPaid(status order.Status) bool {
	for _, s := range order.PaidStatuses {
		if status == s {
			return true
		}
	}
	return false
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("analytics: failed to list orders")
		return nil, fmt.Errorf("analytics: failed to list orders: %w", err)
	}

	now := s.now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sevenDaysAgo := startOfToday.AddDate(0, 0, -6)
	thirtyDaysAgo := startOfToday.AddDate(0, 0, -29)

	summary := &Summary{
		Currency:    "USD",
		TotalOrders: len(orders),
	}
	currencySet := false

	for _, o := range orders {
		if o.Status != order.StatusCancelled {
			summary.ActiveOrders++
		}
		if !isPaid(o.Status) {
			continue
		}

		summary.PaidOrders++
		summary.TotalRevenue += o.Total

		if !currencySet {
			summary.Currency = o.Currency
			currencySet = true
		}

		if !o.CreatedAt.Before(sevenDaysAgo) {
			summary.Last7DaysRevenue += o.Total
		}
		if !o.CreatedAt.Before(thirtyDaysAgo) {
			summary.Last30DaysRevenue += o.Total
		}
		if !o.CreatedAt.Before(startOfToday) {
			summary.TodayRevenue += o.Total
			summary.TodayOrders++
		}
	}

	if summary.PaidOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / int64(summary.PaidOrders)
	}

	return summary, nil
}

func (s *Service) TopProducts(ctx context.Context) ([]ProductRevenue, error) {
	products, err := s.repo.TopProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("analytics: failed to aggregate top products")
		return nil, fmt.Errorf("analytics: failed to aggregate top products: %w", err)
	}
	return products, nil
}
