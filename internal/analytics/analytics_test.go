package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminabrand/storefront/internal/order"
)

type mockOrderLister struct {
	ListFunc func(ctx context.Context) ([]order.Order, error)
}

func (m *mockOrderLister) List(ctx context.Context) ([]order.Order, error) {
	return m.ListFunc(ctx)
}

type mockRepository struct {
	TopProductsFunc func(ctx context.Context) ([]ProductRevenue, error)
}

func (m *mockRepository) TopProducts(ctx context.Context) ([]ProductRevenue, error) {
	return m.TopProductsFunc(ctx)
}

func summaryService(now time.Time, orders []order.Order) *Service {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]order.Order, error) {
			return orders, nil
		},
	}
	return NewServiceAt(lister, &mockRepository{}, func() time.Time { return now })
}

func TestService_Summary(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	today := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	fiveDaysAgo := now.AddDate(0, 0, -5)
	twentyDaysAgo := now.AddDate(0, 0, -20)
	sixtyDaysAgo := now.AddDate(0, 0, -60)

	orders := []order.Order{
		{ID: 1, Status: order.StatusPaid, Total: 100, Currency: "USD", CreatedAt: today},
		{ID: 2, Status: order.StatusShipped, Total: 200, Currency: "USD", CreatedAt: fiveDaysAgo},
		{ID: 3, Status: order.StatusDelivered, Total: 300, Currency: "USD", CreatedAt: twentyDaysAgo},
		{ID: 4, Status: order.StatusPaid, Total: 400, Currency: "USD", CreatedAt: sixtyDaysAgo},
		{ID: 5, Status: order.StatusPlaced, Total: 999, Currency: "USD", CreatedAt: today},
		{ID: 6, Status: order.StatusCancelled, Total: 999, Currency: "USD", CreatedAt: today},
	}

	summary, err := summaryService(now, orders).Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "USD", summary.Currency)
	assert.Equal(t, int64(1000), summary.TotalRevenue, "PLACED and CANCELLED never count as revenue")
	assert.Equal(t, int64(100), summary.TodayRevenue)
	assert.Equal(t, int64(300), summary.Last7DaysRevenue)
	assert.Equal(t, int64(600), summary.Last30DaysRevenue)
	assert.Equal(t, 6, summary.TotalOrders)
	assert.Equal(t, 5, summary.ActiveOrders)
	assert.Equal(t, 4, summary.PaidOrders)
	assert.Equal(t, 1, summary.TodayOrders)
	assert.Equal(t, int64(250), summary.AverageOrderValue)
}

// Day windows are anchored at local midnight, not a rolling 24h interval: an
// order placed 7 calendar days ago at any hour falls outside the 7-day window
// when today is included as day one.
func TestService_Summary_WindowBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	orders := []order.Order{
		// 00:00 six days back: first instant inside the 7-day window.
		{ID: 1, Status: order.StatusPaid, Total: 10, Currency: "USD",
			CreatedAt: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		// 23:59 seven days back: outside, despite being less than 7*24h ago.
		{ID: 2, Status: order.StatusPaid, Total: 20, Currency: "USD",
			CreatedAt: time.Date(2025, 6, 8, 23, 59, 0, 0, time.UTC)},
		// First instant of today.
		{ID: 3, Status: order.StatusPaid, Total: 40, Currency: "USD",
			CreatedAt: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	summary, err := summaryService(now, orders).Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(50), summary.Last7DaysRevenue)
	assert.Equal(t, int64(70), summary.Last30DaysRevenue)
	assert.Equal(t, int64(40), summary.TodayRevenue)
	assert.Equal(t, 1, summary.TodayOrders)
}

func TestService_Summary_NoOrders(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	summary, err := summaryService(now, nil).Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "USD", summary.Currency)
	assert.Equal(t, int64(0), summary.TotalRevenue)
	assert.Equal(t, 0, summary.TotalOrders)
	assert.Equal(t, int64(0), summary.AverageOrderValue, "average must not divide by zero")
}

func TestService_Summary_ListFailure(t *testing.T) {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]order.Order, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(lister, &mockRepository{})

	_, err := svc.Summary(context.Background())

	assert.Error(t, err)
}

func TestService_TopProducts(t *testing.T) {
	repo := &mockRepository{
		TopProductsFunc: func(ctx context.Context) ([]ProductRevenue, error) {
			return []ProductRevenue{
				{ProductID: 2, Name: "Shadow Tech Sneakers", Slug: "shadow-tech-sneakers", Revenue: 555, UnitsSold: 3, Currency: "USD"},
				{ProductID: 1, Name: "Everyday Essentials Tee", Slug: "everyday-essentials-tee", Revenue: 110, UnitsSold: 2, Currency: "USD"},
			}, nil
		},
	}
	svc := NewService(&mockOrderLister{}, repo)

	products, err := svc.TopProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(555), products[0].Revenue)
	assert.GreaterOrEqual(t, products[0].Revenue, products[1].Revenue)
}
