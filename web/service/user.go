package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/crypto"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type UserService struct {
	settingService SettingService
}

// NormalizeTableCode turns what a customer types at the table into the
// username the table was registered with: 1..9 become "01".."09", numbers
// above 99 clamp to "99" and anything non-numeric is kept as typed.
func NormalizeTableCode(code string) string {
	code = strings.TrimSpace(code)
	n, err := strconv.Atoi(code)
	if err != nil {
		return code
	}
	switch {
	case n >= 1 && n <= 9:
		return "0" + strconv.Itoa(n)
	case n >= 10 && n <= 99:
		return strconv.Itoa(n)
	case n > 99:
		return "99"
	}
	return code
}

// Authenticate resolves username to a user whose flags match roleHint.
// Customers log in with the table code alone; staff need their password and,
// when enabled, the current two-factor code.
func (s *UserService) Authenticate(username string, password string, roleHint model.Role, twoFactorCode string) (*model.User, error) {
	db := database.GetDB()
	query := db.Model(model.User{})

	switch roleHint {
	case model.RoleCustomer:
		username = NormalizeTableCode(username)
		query = query.Where("username = ? AND is_admin = ? AND is_employee = ?", username, false, false)
	case model.RoleEmployee:
		query = query.Where("username = ? AND is_employee = ? AND is_admin = ?", username, true, false)
	case model.RoleAdmin:
		query = query.Where("username = ? AND is_admin = ?", username, true)
	default:
		return nil, validationError("unknown role %q", roleHint)
	}

	user := &model.User{}
	err := query.First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, storeError(err)
	}

	if roleHint == model.RoleCustomer {
		return user, nil
	}

	if user.PasswordHash == "" || !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		logger.Warning("check two factor err:", err)
		return nil, storeError(err)
	}
	if twoFactorEnable {
		twoFactorToken, err := s.settingService.GetTwoFactorToken()
		if err != nil {
			logger.Warning("check two factor token err:", err)
			return nil, storeError(err)
		}
		if gotp.NewDefaultTOTP(twoFactorToken).Now() != twoFactorCode {
			return nil, ErrInvalidCredentials
		}
	}

	return user, nil
}

// RegisterPrivileged creates form's user after checking that the admin
// credentials in the form belong to an existing admin. Nothing is inserted
// unless every check passes.
func (s *UserService) RegisterPrivileged(form *entity.RegisterForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Phone = strings.TrimSpace(form.Phone)
	if form.Role == "" {
		form.Role = model.RoleCustomer
	}
	switch {
	case form.Username == "":
		return nil, validationError("username is required")
	case form.Phone == "":
		return nil, validationError("phone is required")
	case len(form.Password) < minPasswordLength:
		return nil, validationError("password must have at least %d characters", minPasswordLength)
	case form.ConfirmPassword != "" && form.ConfirmPassword != form.Password:
		return nil, validationError("passwords do not match")
	case strings.TrimSpace(form.AdminUsername) == "" || form.AdminPassword == "":
		return nil, validationError("admin authentication is required")
	case !form.Role.Valid():
		return nil, validationError("unknown role %q", form.Role)
	}

	hash, err := crypto.HashPasswordAsBcrypt(form.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     form.Username,
		Phone:        form.Phone,
		PasswordHash: hash,
	}
	user.SetRole(form.Role)

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		admin := &model.User{}
		err := tx.Where("username = ? AND is_admin = ?", form.AdminUsername, true).First(admin).Error
		if database.IsNotFound(err) {
			return ErrUnauthorizedRegistration
		} else if err != nil {
			return err
		}
		if !crypto.CheckPasswordHash(admin.PasswordHash, form.AdminPassword) {
			return ErrUnauthorizedRegistration
		}
		return createUnique(tx, user)
	})
	if err != nil {
		return nil, storeError(err)
	}
	logger.Infof("user %s registered as %s by %s", user.Username, user.Role(), form.AdminUsername)
	return user, nil
}

// createUnique inserts user unless its username is taken.
func createUnique(tx *gorm.DB, user *model.User) error {
	var count int64
	if err := tx.Model(model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	if err := database.GetDB().First(user, id).Error; err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// GetFirstAdmin returns the oldest admin account.
func (s *UserService) GetFirstAdmin() (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Model(model.User{}).Where("is_admin = ?", true).Order("id ASC").First(user).Error
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// UpdateFirstAdmin changes the credentials of the oldest admin, creating one
// when none exists. Used by the setting command.
func (s *UserService) UpdateFirstAdmin(username string, password string) error {
	if username == "" {
		return errors.New("username can not be empty")
	} else if len(password) < minPasswordLength {
		return errors.New("password is too short")
	}
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	user, err := s.GetFirstAdmin()
	if errors.Is(err, ErrNotFound) {
		return db.Create(&model.User{Username: username, PasswordHash: hashedPassword, IsAdmin: true}).Error
	} else if err != nil {
		return err
	}
	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err == nil && twoFactorEnable {
		// new credentials invalidate the enrolled authenticator
		_ = s.settingService.SetTwoFactorEnable(false)
		_ = s.settingService.SetTwoFactorToken("")
	}
	return db.Model(user).Updates(map[string]any{"username": username, "password_hash": hashedPassword}).Error
}

// UpdateCredentials changes the username and password of user id after
// checking its current password.
func (s *UserService) UpdateCredentials(id int, oldPassword string, newUsername string, newPassword string) (*model.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return nil, validationError("username is required")
	}
	if len(newPassword) < minPasswordLength {
		return nil, validationError("password must have at least %d characters", minPasswordLength)
	}
	hash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return nil, err
	}

	user := &model.User{}
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.First(user, id).Error; err != nil {
			return err
		}
		if !crypto.CheckPasswordHash(user.PasswordHash, oldPassword) {
			return ErrInvalidCredentials
		}
		if newUsername != user.Username {
			var count int64
			if err := tx.Model(model.User{}).Where("username = ? AND id <> ?", newUsername, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateUsername
			}
		}
		user.Username = newUsername
		user.PasswordHash = hash
		return tx.Model(user).Updates(map[string]any{"username": newUsername, "password_hash": hash}).Error
	})
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}
