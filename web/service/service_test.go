package service

import (
	"os"
	"testing"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/util/crypto"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	dbPath := "test.db"
	os.Remove(dbPath)
	notify.Reset()
	require.NoError(t, database.InitDB(dbPath))
}

func teardown() {
	notify.Wait()
	database.CloseDB()
	os.Remove("test.db")
	os.Remove("test.db-shm")
	os.Remove("test.db-wal")
}

func createUser(t *testing.T, username string, password string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{Username: username, Phone: "11999990000"}
	if password != "" {
		hash, err := crypto.HashPasswordAsBcrypt(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	user.SetRole(role)
	require.NoError(t, database.GetDB().Create(user).Error)
	return user
}

func createMenuItem(t *testing.T, name string, price string, category string) *model.MenuItem {
	t.Helper()
	item := &model.MenuItem{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Active:   true,
	}
	require.NoError(t, database.GetDB().Create(item).Error)
	return item
}

func identity(u *model.User) entity.Identity {
	return entity.IdentityOf(u)
}
