package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string
	LogLevel    string
	JWTSecret   string
	Database    DatabaseConfig
	Shop        ShopConfig
	Mailer      MailerConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	DSN             string
	TxIsolation     sql.IsolationLevel
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ShopConfig holds the booking rules of the workshop.
type ShopConfig struct {
	OpenMinute  int
	CloseMinute int
	Location    *time.Location
	Buffer      time.Duration
	SlotStep    time.Duration
	TaxRate     decimal.Decimal
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Host        string
	Port        string
	DefaultFrom string
}

type KafkaConfig struct {
	Brokers     []string
	NotifyTopic string
}

type RedisConfig struct {
	Addr               string
	RateLimitPerMinute int
}

// TxOptions returns the options every multi-row write is run with.
// Nil means the driver default.
func (d DatabaseConfig) TxOptions() *sql.TxOptions {
	if d.TxIsolation == sql.LevelDefault {
		return nil
	}
	return &sql.TxOptions{Isolation: d.TxIsolation}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "autoshop"),
		DSN:      getEnv("DB_DSN", ""),
	}

	if dbConfig.DSN == "" {
		switch dbConfig.Driver {
		case "mysql":
			dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
		case "postgres":
			dbConfig.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				dbConfig.Host, dbConfig.Username, dbConfig.Password, dbConfig.Name, dbConfig.Port)
		case "sqlite":
			dbConfig.DSN = dbConfig.Name + ".db"
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER %q", dbConfig.Driver)
		}
	}

	isolation, err := parseIsolation(getEnv("DB_TX_ISOLATION", "serializable"))
	if err != nil {
		return nil, err
	}
	dbConfig.TxIsolation = isolation

	if dbConfig.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}
	if dbConfig.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	lifetimeMinutes, err := getInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	dbConfig.ConnMaxLifetime = time.Duration(lifetimeMinutes) * time.Minute

	shopConfig, err := loadShopConfig()
	if err != nil {
		return nil, err
	}

	mailerConfig := MailerConfig{
		Host:        getEnv("SMTP_HOST", ""),
		Port:        getEnv("SMTP_PORT", "1025"),
		DefaultFrom: getEnv("MAILER_DEFAULT_FROM", "no-reply@autoshop.local"),
	}

	kafkaConfig := KafkaConfig{
		Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
		NotifyTopic: getEnv("KAFKA_NOTIFY_TOPIC", "autoshop.notifications"),
	}

	rateLimit, err := getInt("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:4200"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   getEnv("JWT_SECRET", "default_jwt_secret"),
		Database:    dbConfig,
		Shop:        shopConfig,
		Mailer:      mailerConfig,
		Kafka:       kafkaConfig,
		Redis: RedisConfig{
			Addr:               getEnv("REDIS_ADDR", ""),
			RateLimitPerMinute: rateLimit,
		},
	}, nil
}

func loadShopConfig() (ShopConfig, error) {
	openMinute, err := ParseClock(getEnv("SHOP_OPEN_TIME", "08:00"))
	if err != nil {
		return ShopConfig{}, fmt.Errorf("invalid SHOP_OPEN_TIME: %w", err)
	}
	closeMinute, err := ParseClock(getEnv("SHOP_CLOSE_TIME", "18:00"))
	if err != nil {
		return ShopConfig{}, fmt.Errorf("invalid SHOP_CLOSE_TIME: %w", err)
	}
	if closeMinute <= openMinute {
		return ShopConfig{}, fmt.Errorf("SHOP_CLOSE_TIME must be after SHOP_OPEN_TIME")
	}

	loc, err := time.LoadLocation(getEnv("SHOP_TIMEZONE", "UTC"))
	if err != nil {
		return ShopConfig{}, fmt.Errorf("invalid SHOP_TIMEZONE: %w", err)
	}

	buffer, err := getInt("BOOKING_BUFFER_MINUTES", 15)
	if err != nil {
		return ShopConfig{}, err
	}
	step, err := getInt("SLOT_STEP_MINUTES", 30)
	if err != nil {
		return ShopConfig{}, err
	}
	if step <= 0 {
		return ShopConfig{}, fmt.Errorf("SLOT_STEP_MINUTES must be positive")
	}

	taxRate, err := decimal.NewFromString(getEnv("INVOICE_TAX_RATE", "0.10"))
	if err != nil {
		return ShopConfig{}, fmt.Errorf("invalid INVOICE_TAX_RATE: %w", err)
	}

	return ShopConfig{
		OpenMinute:  openMinute,
		CloseMinute: closeMinute,
		Location:    loc,
		Buffer:      time.Duration(buffer) * time.Minute,
		SlotStep:    time.Duration(step) * time.Minute,
		TaxRate:     taxRate,
	}, nil
}

// ParseClock converts "HH:MM" (or "HH:MM:SS") into minutes since midnight.
func ParseClock(value string) (int, error) {
	layout := "15:04"
	if strings.Count(value, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func parseIsolation(value string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "default":
		return sql.LevelDefault, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	}
	return sql.LevelDefault, fmt.Errorf("invalid DB_TX_ISOLATION %q", value)
}

func getInt(key string, defaultValue int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
