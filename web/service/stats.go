package service

import (
	"sort"
	"time"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/shopspring/decimal"
)

const (
	topItemsLimit     = 5
	recentOrdersLimit = 5
)

// DayBounds returns the start of now's calendar day in loc and the start of
// the next one.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DailyStats summarizes orders created on now's calendar day in loc.
// Cancelled orders count only in ByStatus. Items must be loaded with their
// menu item for the top list to carry names.
func DailyStats(orders []model.Order, now time.Time, loc *time.Location) entity.DailyStats {
	start, end := DayBounds(now, loc)
	stats := entity.DailyStats{
		Date:         start.Format("2006-01-02"),
		Revenue:      decimal.Zero,
		TopItems:     make([]entity.ItemSales, 0),
		ByStatus:     make(map[model.OrderStatus]int),
		RecentOrders: make([]model.Order, 0),
	}

	sales := make(map[int]*entity.ItemSales)
	today := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		stats.ByStatus[o.Status]++
		if o.Status == model.StatusCancelled {
			continue
		}
		today = append(today, o)
		stats.OrderCount++
		stats.Revenue = stats.Revenue.Add(o.Total)
		for _, item := range o.Items {
			s, ok := sales[item.MenuItemId]
			if !ok {
				s = &entity.ItemSales{MenuItemId: item.MenuItemId}
				if item.MenuItem != nil {
					s.Name = item.MenuItem.Name
				}
				sales[item.MenuItemId] = s
			}
			s.Quantity += item.Quantity
		}
	}

	for _, s := range sales {
		stats.TopItems = append(stats.TopItems, *s)
	}
	sort.Slice(stats.TopItems, func(i, j int) bool {
		a, b := stats.TopItems[i], stats.TopItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MenuItemId < b.MenuItemId
	})
	if len(stats.TopItems) > topItemsLimit {
		stats.TopItems = stats.TopItems[:topItemsLimit]
	}

	sort.SliceStable(today, func(i, j int) bool {
		return today[i].CreatedAt.After(today[j].CreatedAt)
	})
	if len(today) > recentOrdersLimit {
		today = today[:recentOrdersLimit]
	}
	stats.RecentOrders = append(stats.RecentOrders, today...)
	return stats
}
