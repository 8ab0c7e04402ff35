package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeMySQL      DatabaseType = "mysql"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType `json:"type"`
	DSN      string       `json:"dsn"` // overrides the per-driver fields when set
	SQLite   SQLiteConfig `json:"sqlite"`
	Postgres ServerConfig `json:"postgres"`
	MySQL    ServerConfig `json:"mysql"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `json:"path"`
}

// ServerConfig holds connection settings for networked databases.
type ServerConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
	TimeZone string `json:"timeZone"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Type {
	case DatabaseTypePostgreSQL:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			c.Postgres.Host,
			c.Postgres.Username,
			c.Postgres.Password,
			c.Postgres.Database,
			c.Postgres.Port,
			c.Postgres.SSLMode,
			c.Postgres.TimeZone,
		)
	case DatabaseTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.MySQL.Username,
			c.MySQL.Password,
			c.MySQL.Host,
			c.MySQL.Port,
			c.MySQL.Database,
		)
	default:
		return c.SQLite.Path
	}
}

// GetDatabaseConfig builds the database configuration from the environment.
func GetDatabaseConfig() *DatabaseConfig {
	c := GetDefaultDatabaseConfig()
	c.Type = DatabaseType(getEnv("ALLBLACK_DB_TYPE", string(c.Type)))
	c.DSN = os.Getenv("ALLBLACK_DB_DSN")

	server := ServerConfig{
		Host:     getEnv("ALLBLACK_DB_HOST", "localhost"),
		Database: getEnv("ALLBLACK_DB_NAME", "allblack"),
		Username: getEnv("ALLBLACK_DB_USER", "allblack"),
		Password: os.Getenv("ALLBLACK_DB_PASSWORD"),
		SSLMode:  getEnv("ALLBLACK_DB_SSLMODE", "disable"),
		TimeZone: getEnv("ALLBLACK_DB_TIMEZONE", "UTC"),
	}
	switch c.Type {
	case DatabaseTypePostgreSQL:
		server.Port = getEnvInt("ALLBLACK_DB_PORT", 5432)
		c.Postgres = server
	case DatabaseTypeMySQL:
		server.Port = getEnvInt("ALLBLACK_DB_PORT", 3306)
		c.MySQL = server
	}
	return c
}

// GetDefaultDatabaseConfig returns default database configuration
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: GetDBPath(),
		},
		Postgres: ServerConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "allblack",
			Username: "allblack",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		MySQL: ServerConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "allblack",
			Username: "allblack",
		},
	}
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" && c.DSN == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.DSN != "" {
			return nil
		}
		return c.Postgres.validate("PostgreSQL")
	case DatabaseTypeMySQL:
		if c.DSN != "" {
			return nil
		}
		return c.MySQL.validate("MySQL")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

func (s ServerConfig) validate(kind string) error {
	if s.Host == "" {
		return fmt.Errorf("%s host cannot be empty", kind)
	}
	if s.Database == "" {
		return fmt.Errorf("%s database name cannot be empty", kind)
	}
	if s.Username == "" {
		return fmt.Errorf("%s username cannot be empty", kind)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%s port must be between 1 and 65535", kind)
	}
	return nil
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.GetDSN())
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
