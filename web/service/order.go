package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxObservationsLength = 500

type OrderService struct {
	settingService SettingService
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Items.MenuItem").Preload("User").Preload("Assignee")
}

// CreateOrder places an order for actor. Prices come from the menu, never
// from the client, and the order, its lines and its first log row are
// written in one transaction. Only customers place orders.
func (s *OrderService) CreateOrder(actor entity.Identity, form *entity.OrderForm) (*model.Order, error) {
	if actor.Role != model.RoleCustomer {
		return nil, ErrForbidden
	}
	if len(form.Items) == 0 {
		return nil, validationError("order has no items")
	}
	quantities := make(map[int]int)
	ids := make([]int, 0, len(form.Items))
	for _, line := range form.Items {
		if line.Quantity <= 0 {
			return nil, validationError("quantity of item %d must be positive", line.MenuItemId)
		}
		if _, seen := quantities[line.MenuItemId]; !seen {
			ids = append(ids, line.MenuItemId)
		}
		quantities[line.MenuItemId] += line.Quantity
	}
	if form.PaymentMethod != "" && !form.PaymentMethod.Valid() {
		return nil, validationError("unknown payment method %q", form.PaymentMethod)
	}
	observations := strings.TrimSpace(form.Observations)
	if len(observations) > maxObservationsLength {
		return nil, validationError("observations are limited to %d characters", maxObservationsLength)
	}

	id := uuid.NewString()
	order := &model.Order{
		Uuid:          id,
		Number:        model.OrderNumber(id),
		UserId:        actor.Id,
		Status:        model.StatusPending,
		PaymentMethod: form.PaymentMethod,
		Observations:  observations,
	}
	if n, err := strconv.Atoi(actor.Username); err == nil {
		order.TableNumber = n
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		menuItems := make([]model.MenuItem, 0, len(ids))
		if err := tx.Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
			return err
		}
		byId := make(map[int]model.MenuItem, len(menuItems))
		for _, m := range menuItems {
			byId[m.Id] = m
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(ids))
		for _, menuItemId := range ids {
			m, ok := byId[menuItemId]
			if !ok || !m.Active {
				return validationError("menu item %d is not available", menuItemId)
			}
			item := model.OrderItem{MenuItemId: m.Id, Quantity: quantities[menuItemId], Price: m.Price}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}
		order.Total = total

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderId = order.Id
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return tx.Create(&model.OrderStatusLog{
			OrderId:   order.Id,
			NewStatus: model.StatusPending,
			ChangedBy: actor.Username,
			ChangedAt: order.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, storeError(err)
	}

	logger.Infof("order #%s created by %s, total %s", order.Number, actor.Username, order.Total.StringFixed(2))
	created, err := s.loadOrder(order.Id)
	if err != nil {
		created = order
	}
	notify.Emit(notify.OrderEvent(notify.OrderCreated, created, "", actor.Username))
	return created, nil
}

// UpdateStatus moves order id to status on behalf of actor. The write only
// succeeds when the order is still in the status it was read in, so two
// concurrent changes can not both win.
func (s *OrderService) UpdateStatus(id int, status model.OrderStatus, actor entity.Identity) (*model.Order, error) {
	if !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}

	var from model.OrderStatus
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		order := &model.Order{}
		if err := tx.First(order, id).Error; err != nil {
			return err
		}
		isOwner := order.UserId == actor.Id
		if actor.Role == model.RoleCustomer && !isOwner {
			return ErrForbidden
		}
		if err := CanTransition(order.Status, status, actor.Role, isOwner); err != nil {
			return err
		}
		from = order.Status

		now := time.Now()
		updates := map[string]any{"status": status, "updated_at": now}
		if from == model.StatusPending && actor.Role.IsStaff() {
			updates["assigned_to"] = actor.Id
		}
		result := tx.Model(&model.Order{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, id)
		}
		return tx.Create(&model.OrderStatusLog{
			OrderId:   id,
			OldStatus: from,
			NewStatus: status,
			ChangedBy: actor.Username,
			ChangedAt: now,
		}).Error
	})
	if err != nil {
		return nil, storeError(err)
	}

	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	logger.Infof("order #%s %s -> %s by %s", order.Number, from, status, actor.Username)
	notify.Emit(notify.OrderEvent(notify.OrderStatusChanged, order, from, actor.Username))
	return order, nil
}

// Hide removes a completed or cancelled order from the working views without
// touching its status. Hiding an already hidden order succeeds.
func (s *OrderService) Hide(id int, actor entity.Identity) error {
	if !actor.Role.IsStaff() {
		return ErrForbidden
	}
	db := database.GetDB()
	order := &model.Order{}
	if err := db.Select("id", "status", "hidden").First(order, id).Error; err != nil {
		return storeError(err)
	}
	if order.Hidden {
		return nil
	}
	if !order.Status.IsTerminal() {
		return fmt.Errorf("%w: order %d is still %s", ErrInvalidTransition, id, order.Status)
	}
	if err := db.Model(&model.Order{}).Where("id = ?", id).Update("hidden", true).Error; err != nil {
		return storeError(err)
	}
	return nil
}

// PurgeAll deletes every order with its lines and history. confirm must be
// true; it returns the number of orders removed.
func (s *OrderService) PurgeAll(confirm bool) (int64, error) {
	if !confirm {
		return 0, validationError("purging all orders needs confirmation")
	}
	var deleted int64
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.OrderStatusLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("1 = 1").Delete(&model.Order{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, storeError(err)
	}
	logger.Warningf("purged %d orders", deleted)
	return deleted, nil
}

// CleanupHidden deletes hidden terminal orders last changed before cutoff.
func (s *OrderService) CleanupHidden(cutoff time.Time) (int64, error) {
	var deleted int64
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		ids := make([]int, 0)
		err := tx.Model(&model.Order{}).
			Where("hidden = ? AND status IN ? AND updated_at < ?", true,
				[]model.OrderStatus{model.StatusCompleted, model.StatusCancelled}, cutoff).
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		if err := tx.Where("order_id IN ?", ids).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id IN ?", ids).Delete(&model.OrderStatusLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.Order{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, storeError(err)
}

func (s *OrderService) loadOrder(id int) (*model.Order, error) {
	order := &model.Order{}
	if err := withDetails(database.GetDB()).First(order, id).Error; err != nil {
		return nil, storeError(err)
	}
	return order, nil
}

// GetOrder returns order id if viewer may see it: customers only their own
// orders, and nobody hidden ones.
func (s *OrderService) GetOrder(id int, viewer entity.Identity) (*model.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Hidden || (!viewer.Role.IsStaff() && order.UserId != viewer.Id) {
		return nil, ErrNotFound
	}
	order.Actions = NextStatuses(order.Status, viewer.Role, order.UserId == viewer.Id)
	return order, nil
}

func setActions(orders []model.Order, viewer entity.Identity) {
	for i := range orders {
		orders[i].Actions = NextStatuses(orders[i].Status, viewer.Role, orders[i].UserId == viewer.Id)
	}
}

// ListForCustomer returns the visible orders of userId, newest first.
func (s *OrderService) ListForCustomer(userId int) ([]model.Order, error) {
	orders := make([]model.Order, 0)
	err := database.GetDB().Preload("Items.MenuItem").
		Where("user_id = ? AND hidden = ?", userId, false).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, storeError(err)
	}
	setActions(orders, entity.Identity{Id: userId, Role: model.RoleCustomer})
	return orders, nil
}

// ListVisible returns every non-hidden order, newest first.
func (s *OrderService) ListVisible() ([]model.Order, error) {
	orders := make([]model.Order, 0)
	err := withDetails(database.GetDB()).
		Where("hidden = ?", false).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, storeError(err)
	}
	return orders, nil
}

// ListGroupedForStaff groups the visible orders by table, the table with the
// most recent order first. Each order carries the moves viewer may make.
func (s *OrderService) ListGroupedForStaff(viewer entity.Identity) ([]entity.OrderGroup, error) {
	orders, err := s.ListVisible()
	if err != nil {
		return nil, err
	}
	setActions(orders, viewer)
	return GroupOrders(orders), nil
}

// GroupOrders groups orders by user. Orders inside a group keep their input
// order; groups are sorted by their latest order.
func GroupOrders(orders []model.Order) []entity.OrderGroup {
	index := make(map[int]int)
	groups := make([]entity.OrderGroup, 0)
	for _, o := range orders {
		i, ok := index[o.UserId]
		if !ok {
			name := fmt.Sprintf("#%d", o.UserId)
			if o.User != nil {
				name = o.User.Username
			}
			groups = append(groups, entity.OrderGroup{UserId: o.UserId, Username: name, Orders: make([]model.Order, 0)})
			i = len(groups) - 1
			index[o.UserId] = i
		}
		groups[i].Orders = append(groups[i].Orders, o)
		if o.CreatedAt.After(groups[i].Latest) {
			groups[i].Latest = o.CreatedAt
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].Latest.Equal(groups[j].Latest) {
			return groups[i].Latest.After(groups[j].Latest)
		}
		return groups[i].Username < groups[j].Username
	})
	return groups
}

// Today computes the statistics of the current day in the panel's time zone.
func (s *OrderService) Today() (entity.DailyStats, error) {
	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return entity.DailyStats{}, storeError(err)
	}
	return s.StatsFor(time.Now(), loc)
}

// StatsFor loads the orders of now's day in loc and summarizes them.
func (s *OrderService) StatsFor(now time.Time, loc *time.Location) (entity.DailyStats, error) {
	start, end := DayBounds(now, loc)
	orders := make([]model.Order, 0)
	err := database.GetDB().Preload("Items.MenuItem").Preload("User").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&orders).Error
	if err != nil {
		return entity.DailyStats{}, storeError(err)
	}
	return DailyStats(orders, now, loc), nil
}

// History returns the status log of order id, oldest first.
func (s *OrderService) History(id int) ([]model.OrderStatusLog, error) {
	logs := make([]model.OrderStatusLog, 0)
	err := database.GetDB().Where("order_id = ?", id).Order("changed_at ASC, id ASC").Find(&logs).Error
	if err != nil {
		return nil, storeError(err)
	}
	if len(logs) == 0 {
		if _, err := s.loadOrder(id); errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return logs, nil
}
