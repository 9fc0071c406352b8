package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment.
type Config struct {
	Port    string
	GinMode string

	Database Database
	Store    Store

	JWTSecret   string
	CORSOrigins []string

	LogLevel  string
	LogFormat string // json or console

	SMTP   SMTP
	Kafka  Kafka
	Redis  Redis
	Notify Notify

	// Admin account created at startup when missing. Empty disables it.
	BootstrapAdmin BootstrapAdmin
}

type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

type Database struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the postgres connection URL.
func (d Database) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type Store struct {
	Driver      string // postgres or memory
	Timeout     time.Duration
	LockTimeout time.Duration
	MaxRetries  uint64
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether the email channel should be wired.
func (s SMTP) Enabled() bool {
	return s.Host != ""
}

type Kafka struct {
	Brokers []string
	Topic   string
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	UserTTL  time.Duration
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

type Notify struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Load reads configs/.env when present, then the process environment.
func Load() (*Config, error) {
	// A missing file is fine; the environment may already be populated.
	_ = godotenv.Load("configs/.env")
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() (*Config, error) {
	var errs []string
	intVal := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}
	durationVal := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		Database: Database{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "postgres"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    intVal("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intVal("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationVal("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Store: Store{
			Driver:      getEnv("STORE_DRIVER", "postgres"),
			Timeout:     durationVal("STORE_TIMEOUT", 5*time.Second),
			LockTimeout: durationVal("DB_LOCK_TIMEOUT", 2*time.Second),
			MaxRetries:  uint64(intVal("DB_TX_MAX_RETRIES", 3)),
		},
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     intVal("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "governance@localhost"),
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "compliance-events"),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intVal("REDIS_DB", 0),
			UserTTL:  durationVal("USER_CACHE_TTL", 10*time.Minute),
		},
		Notify: Notify{
			Workers:   intVal("NOTIFY_WORKERS", 4),
			QueueSize: intVal("NOTIFY_QUEUE_SIZE", 256),
			Timeout:   durationVal("NOTIFY_TIMEOUT", 10*time.Second),
		},
		BootstrapAdmin: BootstrapAdmin{
			Username: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
			Email:    getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@localhost.localdomain"),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}

	if cfg.Store.Driver != "postgres" && cfg.Store.Driver != "memory" {
		errs = append(errs, fmt.Sprintf("STORE_DRIVER: unknown driver %q", cfg.Store.Driver))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET: must be set")
	}
	if cfg.Notify.Workers < 1 {
		errs = append(errs, "NOTIFY_WORKERS: must be at least 1")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
