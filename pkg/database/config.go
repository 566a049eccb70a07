package database

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection parameters.
// Values come from the YAML config file and may be overridden by environment variables.
type Config struct {
	// Full connection URL. When set, the discrete Host/Port/User/Password/Name fields are ignored.
	ConnectionString string `yaml:"url" env:"DATABASE_CONN_URL"`

	Host     string `yaml:"host" env:"DATABASE_HOST"`
	Port     int    `yaml:"port" env:"DATABASE_PORT"`
	User     string `yaml:"user" env:"DATABASE_USER"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD"`
	Name     string `yaml:"name" env:"DATABASE_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DATABASE_SSLMODE"`

	// Schema every pooled connection is pointed at (search_path).
	Schema string `yaml:"schema" env:"DATABASE_SCHEMA"`

	MigrationsTable string `yaml:"migrations_table" env:"DATABASE_MIGRATIONS_TABLE"`

	// Pool size. The CMS shares one pool per process; small values are fine.
	MaxConns int32 `yaml:"max_conns" env:"DATABASE_MAX_CONNS"`
	MinConns int32 `yaml:"min_conns" env:"DATABASE_MIN_CONNS"`

	ConnectTimeout    time.Duration `yaml:"connect_timeout" env:"DATABASE_CONNECT_TIMEOUT"`
	HealthCheckPeriod time.Duration `yaml:"healthcheck_period" env:"DATABASE_HEALTHCHECK_PERIOD"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime" env:"DATABASE_MAX_CONN_LIFETIME"`
}

// WithDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.User == "" {
		c.User = "postgres"
	}
	if c.Name == "" {
		c.Name = "cuej_blog"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.MigrationsTable == "" {
		c.MigrationsTable = "schema_migrations"
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		c.MinConns = 0
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.HealthCheckPeriod <= 0 {
		c.HealthCheckPeriod = time.Minute
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = 10 * time.Minute
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	return c
}

// DSN returns the connection URL, building it from the discrete fields when
// ConnectionString is empty.
func (c Config) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}
