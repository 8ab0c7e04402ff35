// Package config reads process-level configuration for the allblack panel from
// environment variables (optionally seeded from a .env file).
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// LoadEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("ALLBLACK_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("ALLBLACK_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("ALLBLACK_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/allblack"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("ALLBLACK_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetRedisAddr returns the external Redis address. Empty means the embedded
// in-process server is used.
func GetRedisAddr() string {
	return os.Getenv("ALLBLACK_REDIS_ADDR")
}

// GetAMQPURL returns the RabbitMQ URL for order events. Empty disables publishing.
func GetAMQPURL() string {
	return os.Getenv("ALLBLACK_AMQP_URL")
}

func GetAMQPExchange() string {
	exchange := os.Getenv("ALLBLACK_AMQP_EXCHANGE")
	if exchange == "" {
		exchange = "order_events"
	}
	return exchange
}

// GetJWTSecret returns the HMAC secret for API tokens. Empty means the
// panel secret stored in settings is used instead.
func GetJWTSecret() string {
	return os.Getenv("ALLBLACK_JWT_SECRET")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
