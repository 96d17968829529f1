package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/crucial707/picopico/internal/models"
)

// DefaultSecretKey signs session cookies when SECRET_KEY is unset. Not for production.
const DefaultSecretKey = "dev-secret"

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", SECRET_KEY must be set and not the default.
	Env string

	SecretKey string

	// SessionHours is the session cookie lifetime in hours (default 24).
	SessionHours int

	// DBDriver selects the store: "sqlite3" (default) or "postgres".
	DBDriver string
	// DBPath is the SQLite file, created with its directory on first start.
	DBPath string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	DBMaxOpenConns int
	DBMaxIdleConns int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// IncidentTypes is the set accepted by the incident form.
	IncidentTypes []string

	// StockAllowNegative accepts negative stock quantities (default true).
	StockAllowNegative bool

	// AdminUsername and AdminPassword seed an administrator when the users table is empty.
	AdminUsername string
	AdminPassword string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "dev"),

		SecretKey:    getEnv("SECRET_KEY", DefaultSecretKey),
		SessionHours: getEnvInt("SESSION_HOURS", 24),

		DBDriver: getEnv("DB_DRIVER", DriverSQLite),
		DBPath:   getEnv("DB_PATH", "instance/picopico.db"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "picopico"),
		DBUser: getEnv("DB_USER", "picopico"),
		DBPass: getEnv("DB_PASS", "picopico"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		IncidentTypes:      parseList(getEnv("INCIDENT_TYPES", ""), models.DefaultIncidentTypes),
		StockAllowNegative: getEnvBool("STOCK_ALLOW_NEGATIVE", true),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate rejects settings that are unsafe or unusable.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.SecretKey == "" || c.SecretKey == DefaultSecretKey) {
		return errors.New("SECRET_KEY must be set to a non-default value when ENV=prod")
	}
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DSN returns the database/sql data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return fmt.Sprintf(
			"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass,
		)
	}
	return c.DBPath + "?_busy_timeout=5000&_foreign_keys=on"
}

// DatabaseURL returns the golang-migrate URL for the configured driver.
func (c Config) DatabaseURL() string {
	if c.DBDriver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPass),
			Host:     c.DBHost + ":" + c.DBPort,
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}
	return "sqlite3://" + c.DBPath
}

// parseList splits a comma-separated list and trims spaces. Empty input yields fallback.
func parseList(s string, fallback []string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
