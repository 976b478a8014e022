package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config рантайм конфиг клиента витрины
//
// Адреса бэкенд сервисов:
// - USER_SERVICE_ADDRESS или flag -u
// - PRODUCT_SERVICE_ADDRESS или flag -p
// - ORDER_SERVICE_ADDRESS или flag -o
//
// Хранилище сессии: SESSION_STORAGE (-s) = file | redis | postgres
type Config struct {
	RunAddress            string        `env:"RUN_ADDRESS" env-default:"localhost:8080"`
	UserServiceAddress    string        `env:"USER_SERVICE_ADDRESS" env-default:"http://127.0.0.1:8001"`
	ProductServiceAddress string        `env:"PRODUCT_SERVICE_ADDRESS" env-default:"http://127.0.0.1:8000"`
	OrderServiceAddress   string        `env:"ORDER_SERVICE_ADDRESS" env-default:"http://127.0.0.1:8002"`
	SessionStorage        string        `env:"SESSION_STORAGE" env-default:"file"`
	SessionFile           string        `env:"SESSION_FILE" env-default:".storefront/session.json"`
	SessionKey            string        `env:"SESSION_KEY" env-default:"user"`
	RedisURL              string        `env:"REDIS_URL"`
	DatabaseURI           string        `env:"DATABASE_URI"`
	LogLevel              string        `env:"LOG_LEVEL" env-default:"info"`
	AlertTTL              time.Duration `env:"ALERT_TTL" env-default:"3s"`
}

// Validate проверка конфигурации на старте, до того как поднимать сервер и хранилище
func (c Config) Validate() error {
	if c.RunAddress == "" {
		return fmt.Errorf("RUN_ADDRESS/-a is empty")
	}

	services := []struct {
		name string
		addr string
	}{
		{"USER_SERVICE_ADDRESS/-u", c.UserServiceAddress},
		{"PRODUCT_SERVICE_ADDRESS/-p", c.ProductServiceAddress},
		{"ORDER_SERVICE_ADDRESS/-o", c.OrderServiceAddress},
	}
	for _, s := range services {
		if err := validateServiceURL(s.addr); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if c.SessionKey == "" {
		return fmt.Errorf("SESSION_KEY/-k is empty")
	}

	switch c.SessionStorage {
	case StorageFile:
		if c.SessionFile == "" {
			return fmt.Errorf("SESSION_FILE/-f is empty")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL/-r is empty")
		}
	case StoragePostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI/-d is empty")
		}
	default:
		return fmt.Errorf("SESSION_STORAGE/-s: unknown storage %q", c.SessionStorage)
	}

	if c.AlertTTL <= 0 {
		return fmt.Errorf("ALERT_TTL/-t must be > 0")
	}
	return nil
}

func validateServiceURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is empty")
	}
	return nil
}

// Load подхватывает .env (если есть), читает env через cleanenv, затем поверх применяет флаги.
// Приоритет работы: flags > env > .env > default
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)

	fs.StringVar(
		&cfg.RunAddress, "a",
		cfg.RunAddress, "storefront listen address (RUN_ADDRESS)")
	fs.StringVar(
		&cfg.UserServiceAddress, "u",
		cfg.UserServiceAddress, "user service base URL (USER_SERVICE_ADDRESS)")
	fs.StringVar(
		&cfg.ProductServiceAddress, "p",
		cfg.ProductServiceAddress, "product service base URL (PRODUCT_SERVICE_ADDRESS)")
	fs.StringVar(
		&cfg.OrderServiceAddress, "o",
		cfg.OrderServiceAddress, "order service base URL (ORDER_SERVICE_ADDRESS)")
	fs.StringVar(
		&cfg.SessionStorage, "s",
		cfg.SessionStorage, "session storage: file, redis or postgres (SESSION_STORAGE)")
	fs.StringVar(
		&cfg.SessionFile, "f",
		cfg.SessionFile, "session file path for file storage (SESSION_FILE)")
	fs.StringVar(
		&cfg.SessionKey, "k",
		cfg.SessionKey, "durable slot key (SESSION_KEY)")
	fs.StringVar(
		&cfg.RedisURL, "r",
		cfg.RedisURL, "redis URL for redis storage (REDIS_URL)")
	fs.StringVar(
		&cfg.DatabaseURI, "d",
		cfg.DatabaseURI, "postgres connection URI for postgres storage (DATABASE_URI)")
	fs.StringVar(
		&cfg.LogLevel, "l",
		cfg.LogLevel, "log level (LOG_LEVEL)")
	fs.DurationVar(
		&cfg.AlertTTL, "t",
		cfg.AlertTTL, "alert auto-dismiss delay (ALERT_TTL)")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	return cfg, nil
}
