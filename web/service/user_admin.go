package service

import (
	"strings"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/crypto"
	"github.com/allblack/allblack-panel/web/entity"

	"gorm.io/gorm"
)

// UserAdminService is the admin panel's user management.
type UserAdminService struct{}

// ListUsers returns every account, newest first.
func (s *UserAdminService) ListUsers() ([]model.User, error) {
	users := make([]model.User, 0)
	if err := database.GetDB().Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// CreateUser adds an account directly from the admin panel. Customers (table
// accounts) may be created without a password.
func (s *UserAdminService) CreateUser(form *entity.UserForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	if form.Role == "" {
		form.Role = model.RoleCustomer
	}
	if form.Role == model.RoleCustomer {
		form.Username = NormalizeTableCode(form.Username)
	}
	if form.Username == "" {
		return nil, validationError("username is required")
	}
	if !form.Role.Valid() {
		return nil, validationError("unknown role %q", form.Role)
	}
	if form.Role.IsStaff() && len(form.Password) < minPasswordLength {
		return nil, validationError("password must have at least %d characters", minPasswordLength)
	}

	user := &model.User{Username: form.Username, Phone: strings.TrimSpace(form.Phone)}
	user.SetRole(form.Role)
	if form.Password != "" {
		hash, err := crypto.HashPasswordAsBcrypt(form.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		return createUnique(tx, user)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// ToggleAdmin flips the admin flag of user id. An admin can not demote
// themselves.
func (s *UserAdminService) ToggleAdmin(actor entity.Identity, id int) (*model.User, error) {
	if actor.Id == id {
		return nil, ErrForbidden
	}
	db := database.GetDB()
	user := &model.User{}
	if err := db.First(user, id).Error; err != nil {
		return nil, storeError(err)
	}
	user.IsAdmin = !user.IsAdmin
	if err := db.Model(user).Update("is_admin", user.IsAdmin).Error; err != nil {
		return nil, storeError(err)
	}
	logger.Infof("%s set admin=%v on %s", actor.Username, user.IsAdmin, user.Username)
	return user, nil
}

// ResetPassword replaces the password of user id.
func (s *UserAdminService) ResetPassword(id int, password string) error {
	if len(password) < minPasswordLength {
		return validationError("password must have at least %d characters", minPasswordLength)
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	result := database.GetDB().Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes user id. Orders placed by the user are kept for the
// history and statistics.
func (s *UserAdminService) DeleteUser(actor entity.Identity, id int) error {
	if actor.Id == id {
		return ErrForbidden
	}
	result := database.GetDB().Delete(&model.User{}, id)
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	logger.Infof("%s deleted user %d", actor.Username, id)
	return nil
}
