package service

import (
	"testing"
	"time"

	"github.com/allblack/allblack-panel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id int, name string, qty int) model.OrderItem {
	return model.OrderItem{MenuItemId: id, Quantity: qty, MenuItem: &model.MenuItem{Id: id, Name: name}}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	// 01:30 UTC is still the previous day at UTC-3
	now := time.Date(2024, 5, 11, 1, 30, 0, 0, time.UTC)
	start, end := DayBounds(now, loc)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, loc), end)
}

func TestDailyStats(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 5, 10, 18, 0, 0, 0, loc)
	at := func(h int) time.Time { return time.Date(2024, 5, 10, h, 0, 0, 0, loc) }

	orders := []model.Order{
		{Id: 1, Status: model.StatusCompleted, Total: decimal.RequireFromString("30"), CreatedAt: at(10),
			Items: []model.OrderItem{line(1, "X-Burger", 2), line(2, "Coca", 1)}},
		{Id: 2, Status: model.StatusPending, Total: decimal.RequireFromString("12.5"), CreatedAt: at(11),
			Items: []model.OrderItem{line(2, "Coca", 1), line(3, "Batata", 1)}},
		{Id: 3, Status: model.StatusCancelled, Total: decimal.RequireFromString("100"), CreatedAt: at(12),
			Items: []model.OrderItem{line(4, "Picanha", 9)}},
		{Id: 4, Status: model.StatusReady, Total: decimal.RequireFromString("7"), CreatedAt: at(9).AddDate(0, 0, -1),
			Items: []model.OrderItem{line(1, "X-Burger", 5)}},
		{Id: 5, Status: model.StatusReady, Total: decimal.RequireFromString("3"), CreatedAt: at(13),
			Items: []model.OrderItem{line(5, "Agua", 1), line(6, "Bala", 1), line(7, "Cafe", 1)}},
	}

	stats := DailyStats(orders, now, loc)
	assert.Equal(t, "2024-05-10", stats.Date)
	assert.Equal(t, 3, stats.OrderCount)
	assert.True(t, decimal.RequireFromString("45.5").Equal(stats.Revenue), "revenue %s", stats.Revenue)
	assert.Equal(t, 1, stats.ByStatus[model.StatusCancelled])
	assert.Equal(t, 1, stats.ByStatus[model.StatusCompleted])

	require.Len(t, stats.TopItems, 5)
	assert.Equal(t, "Coca", stats.TopItems[0].Name)
	assert.Equal(t, 2, stats.TopItems[0].Quantity)
	assert.Equal(t, "X-Burger", stats.TopItems[1].Name)
	// ties on quantity are ordered by name
	assert.Equal(t, []string{"Agua", "Bala", "Batata"},
		[]string{stats.TopItems[2].Name, stats.TopItems[3].Name, stats.TopItems[4].Name})
	for _, item := range stats.TopItems {
		assert.NotEqual(t, "Picanha", item.Name)
	}

	require.Len(t, stats.RecentOrders, 3)
	assert.Equal(t, 5, stats.RecentOrders[0].Id)
	assert.Equal(t, 1, stats.RecentOrders[2].Id)
}

func TestDailyStatsEmpty(t *testing.T) {
	stats := DailyStats(nil, time.Now(), time.UTC)
	assert.Zero(t, stats.OrderCount)
	assert.True(t, stats.Revenue.IsZero())
	assert.NotNil(t, stats.TopItems)
	assert.NotNil(t, stats.RecentOrders)
}
