// Package database opens the panel's relational store, migrates the models
// and seeds the first admin account.
package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/util/crypto"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultUsername = "admin"
	defaultPassword = "admin"
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Setting{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusLog{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initUser seeds admin/admin when no admin exists yet.
func initUser() error {
	var count int64
	if err := db.Model(&model.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		log.Printf("Error counting admins: %v", err)
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := crypto.HashPasswordAsBcrypt(defaultPassword)
	if err != nil {
		return err
	}
	return db.Create(&model.User{
		Username:     defaultUsername,
		PasswordHash: hash,
		IsAdmin:      true,
	}).Error
}

func gormConfig() *gorm.Config {
	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}
	return &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		// referential rules (menu items in use, order ownership) live in the services
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitDB opens a sqlite database at dbPath. It is what the CLI and the tests use.
func InitDB(dbPath string) error {
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = dbPath
	return Open(cfg)
}

// Open connects to the database described by cfg, migrates and seeds it.
func Open(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseTypePostgreSQL:
		dialector = postgres.Open(cfg.GetDSN())
	case config.DatabaseTypeMySQL:
		dialector = mysql.Open(cfg.GetDSN())
	default:
		if err := cfg.EnsureDirectoryExists(); err != nil {
			return err
		}
		dialector = sqlite.Open(cfg.GetDSN() + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	}

	var err error
	db, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	if cfg.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		for _, pragma := range []string{"PRAGMA cache_size = -64000;", "PRAGMA temp_store = MEMORY;"} {
			if _, err := sqlDB.Exec(pragma); err != nil {
				return err
			}
		}
	}

	if err := initModels(); err != nil {
		return err
	}
	return initUser()
}

// Migrate runs the schema migration on the already-open database.
func Migrate() error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return initModels()
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
