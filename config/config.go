// Package config loads the CMS configuration: an optional YAML file, then
// defaults, then environment overrides.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
	"github.com/MartinPJB/BLOG-CMS/pkg/redis"
)

// Session store backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database database.Config `yaml:"database"`
	Redis    redis.Config    `yaml:"redis"`
	Session  SessionConfig   `yaml:"session"`
	Site     SiteConfig      `yaml:"site"`
	Log      logger.Config   `yaml:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" env:"CMS_ADDRESS" validate:"required"`
	BasePath        string        `yaml:"base_path" env:"CMS_BASE_PATH"`
	StaticDir       string        `yaml:"static_dir" env:"CMS_STATIC_DIR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"CMS_SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"CMS_REQUEST_TIMEOUT" validate:"gt=0"`
	// AutoMigrate applies pending migrations before serving.
	AutoMigrate bool `yaml:"auto_migrate" env:"CMS_AUTO_MIGRATE"`
}

type SessionConfig struct {
	Store      string `yaml:"store" env:"SESSION_STORE" validate:"oneof=postgres redis memory"`
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" validate:"required"`
	MaxAge     int    `yaml:"max_age" env:"SESSION_MAX_AGE" validate:"gt=0"` // seconds
	Domain     string `yaml:"domain" env:"SESSION_DOMAIN"`
	Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
}

type SiteConfig struct {
	// DefaultRoute is used when the site settings row does not name one.
	DefaultRoute string `yaml:"default_route" env:"CMS_DEFAULT_ROUTE" validate:"required"`
	BcryptCost   int    `yaml:"bcrypt_cost" env:"CMS_BCRYPT_COST" validate:"gte=4,lte=31"`
}

// Load reads path (skipped when empty or missing), applies defaults and
// environment overrides, then validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, errors.Wrapf(err, "read config %s", path)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}

	cfg = cfg.withDefaults()

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Server.Address) == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "public"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Session.Store == "" {
		c.Session.Store = StorePostgres
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "cms_session"
	}
	if c.Session.MaxAge <= 0 {
		c.Session.MaxAge = 7 * 24 * 60 * 60
	}
	if c.Site.DefaultRoute == "" {
		c.Site.DefaultRoute = "articles"
	}
	if c.Site.BcryptCost == 0 {
		c.Site.BcryptCost = 12
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Database = c.Database.WithDefaults()
	c.Redis = c.Redis.WithDefaults()
	return c
}

// Validate checks field constraints and cross-section requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "config"), ErrInvalid)
	}
	if c.Session.Store == StoreRedis && !c.Redis.Enabled() {
		return errors.Mark(errors.New("config: session store redis needs redis.url"), ErrInvalid)
	}
	return nil
}
