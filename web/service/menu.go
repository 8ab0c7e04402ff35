package service

import (
	"strings"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/cache"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/notify"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllCategories is the pseudo-category that disables the category filter.
const AllCategories = "todos"

type MenuService struct{}

// ListActiveItems returns the orderable items sorted by name. An empty
// category or AllCategories lists every category; search matches name or
// description case-insensitively.
func (s *MenuService) ListActiveItems(category string, search string) ([]model.MenuItem, error) {
	category = strings.TrimSpace(category)
	if category == AllCategories {
		category = ""
	}
	search = strings.ToLower(strings.TrimSpace(search))

	return cache.GetOrSet(cache.MenuKey(category, search), cache.TTLMenu, func() ([]model.MenuItem, error) {
		query := database.GetDB().Model(model.MenuItem{}).Where("active = ?", true)
		if category != "" {
			query = query.Where("category = ?", category)
		}
		if search != "" {
			like := "%" + search + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		items := make([]model.MenuItem, 0)
		if err := query.Order("name ASC").Find(&items).Error; err != nil {
			return nil, storeError(err)
		}
		return items, nil
	})
}

// ListAllItems returns every item newest first together with the distinct
// category set.
func (s *MenuService) ListAllItems() ([]model.MenuItem, []string, error) {
	db := database.GetDB()
	items := make([]model.MenuItem, 0)
	if err := db.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, nil, storeError(err)
	}
	categories := make([]string, 0)
	if err := db.Model(model.MenuItem{}).Distinct().Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, nil, storeError(err)
	}
	return items, categories, nil
}

// Categories returns the sorted categories of active items.
func (s *MenuService) Categories() ([]string, error) {
	return cache.GetOrSet(cache.CategoriesKey(), cache.TTLCategories, func() ([]string, error) {
		categories := make([]string, 0)
		err := database.GetDB().Model(model.MenuItem{}).
			Where("active = ?", true).
			Distinct().
			Order("category ASC").
			Pluck("category", &categories).Error
		if err != nil {
			return nil, storeError(err)
		}
		return categories, nil
	})
}

func (s *MenuService) GetItem(id int) (*model.MenuItem, error) {
	item := &model.MenuItem{}
	if err := database.GetDB().First(item, id).Error; err != nil {
		return nil, storeError(err)
	}
	return item, nil
}

// UpsertItem creates the item when form.Id is zero and updates it otherwise.
func (s *MenuService) UpsertItem(form *entity.MenuItemForm) (*model.MenuItem, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	price, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(form.Price), ",", ".", 1))
	if err != nil {
		return nil, validationError("invalid price %q", form.Price)
	}
	if price.IsNegative() {
		return nil, validationError("price can not be negative")
	}
	category := strings.TrimSpace(form.NewCategory)
	if category == "" {
		category = strings.TrimSpace(form.Category)
	}
	if category == "" || category == AllCategories {
		category = model.DefaultCategory
	}

	item := &model.MenuItem{}
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if form.Id != 0 {
			if err := tx.First(item, form.Id).Error; err != nil {
				return err
			}
		} else {
			item.Active = true
		}
		item.Name = name
		item.Description = strings.TrimSpace(form.Description)
		item.Price = price.Round(2)
		item.ImageUrl = strings.TrimSpace(form.ImageUrl)
		item.Category = category
		if form.Active != nil {
			item.Active = *form.Active
		}
		return tx.Save(item).Error
	})
	if err != nil {
		return nil, storeError(err)
	}
	menuChanged()
	logger.Infof("menu item %d (%s) saved", item.Id, item.Name)
	return item, nil
}

func (s *MenuService) SetActive(id int, active bool) error {
	result := database.GetDB().Model(&model.MenuItem{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		// mysql reports zero rows when the value is unchanged
		if _, err := s.GetItem(id); err != nil {
			return err
		}
	}
	menuChanged()
	return nil
}

// DeleteItem removes item id unless an order line references it.
func (s *MenuService) DeleteItem(id int) error {
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(model.OrderItem{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrItemInUse
		}
		result := tx.Delete(&model.MenuItem{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}
	menuChanged()
	return nil
}

// menuChanged runs after a committed menu write.
func menuChanged() {
	cache.InvalidateMenu()
	notify.Emit(notify.Event{Type: notify.MenuChanged})
}
