// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	EngineCasbin = "casbin"
	EngineOPA    = "opa"

	PolicyStorePostgres = "postgres"
	PolicyStoreMySQL    = "mysql"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	JWT       JWTConfig       `yaml:"jwt"`
	Authz     AuthzConfig     `yaml:"authz"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN builds a postgres:// connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host,
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// JWTConfig selects token claims and key sources. Keys are read from the key
// files when set, otherwise from PRIVATE_KEY_BASE64 / PUBLIC_KEY_BASE64.
type JWTConfig struct {
	Issuer         string        `yaml:"issuer"`
	Audience       string        `yaml:"audience"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	ClockSkew      time.Duration `yaml:"clock_skew"`
	PrivateKeyFile string        `yaml:"private_key_file"`
	PublicKeyFile  string        `yaml:"public_key_file"`
}

type AuthzConfig struct {
	Engine string `yaml:"engine"`
	// PolicyStore is where casbin keeps its policies: postgres (the API database) or mysql.
	PolicyStore string `yaml:"policy_store"`
	MySQLDSN    string `yaml:"mysql_dsn"`
	// OPAPolicyFile overrides the built-in Rego policy.
	OPAPolicyFile string `yaml:"opa_policy_file"`
}

type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Secure   bool          `yaml:"secure"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SchedulerConfig struct {
	// Enabled is a pointer so an omitted value defaults to true.
	Enabled  *bool         `yaml:"enabled"`
	Timezone string        `yaml:"timezone"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

func (s SchedulerConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Location resolves Timezone; Validate guarantees it loads.
func (s SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RateLimitConfig struct {
	SignInPerMinute int `yaml:"signin_per_minute"`
	SignInBurst     int `yaml:"signin_burst"`
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads path (skipped when empty), applies environment overrides and defaults, and validates the result.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := new(Config)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid number %q", key, v))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
				return
			}
			*dst = b
		}
	}

	num("PORT", &c.Server.Port)
	str("LOG_LEVEL", &c.Log.Level)

	str("POSTGRES_HOST", &c.Postgres.Host)
	str("POSTGRES_USER", &c.Postgres.User)
	str("POSTGRES_PASSWORD", &c.Postgres.Password)
	str("POSTGRES_DB", &c.Postgres.Database)
	str("POSTGRES_SSL", &c.Postgres.SSLMode)

	str("JWT_ISSUER", &c.JWT.Issuer)
	str("JWT_AUDIENCE", &c.JWT.Audience)
	str("JWT_PRIVATE_KEY_FILE", &c.JWT.PrivateKeyFile)
	str("JWT_PUBLIC_KEY_FILE", &c.JWT.PublicKeyFile)

	str("AUTHZ_ENGINE", &c.Authz.Engine)
	str("AUTHZ_POLICY_STORE", &c.Authz.PolicyStore)
	str("AUTHZ_MYSQL_DSN", &c.Authz.MySQLDSN)
	str("OPA_POLICY_FILE", &c.Authz.OPAPolicyFile)

	str("SMTP_HOST", &c.SMTP.Host)
	num("SMTP_PORT", &c.SMTP.Port)
	str("SMTP_USER", &c.SMTP.Username)
	str("SMTP_PASSWORD", &c.SMTP.Password)
	str("SMTP_FROM", &c.SMTP.From)
	boolean("SMTP_SECURE", &c.SMTP.Secure)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)

	if v, ok := lookup("SCHEDULER_ENABLED"); ok && v != "" {
		var enabled bool
		boolean("SCHEDULER_ENABLED", &enabled)
		c.Scheduler.Enabled = &enabled
	}
	str("SCHEDULER_TIMEZONE", &c.Scheduler.Timezone)

	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Port, 8080)
	setDefault(&c.Server.ReadHeaderTimeout, 5*time.Second)
	setDefault(&c.Server.ReadTimeout, 10*time.Second)
	setDefault(&c.Server.WriteTimeout, 60*time.Second)
	setDefault(&c.Server.IdleTimeout, 60*time.Second)
	setDefault(&c.Server.ShutdownTimeout, 15*time.Second)

	setDefault(&c.Log.Level, "info")
	setDefault(&c.Postgres.SSLMode, "disable")

	setDefault(&c.JWT.TokenTTL, time.Hour)
	setDefault(&c.JWT.ClockSkew, 5*time.Minute)

	setDefault(&c.Authz.Engine, EngineCasbin)
	setDefault(&c.Authz.PolicyStore, PolicyStorePostgres)

	setDefault(&c.SMTP.Host, "smtp.gmail.com")
	setDefault(&c.SMTP.Port, 587)
	setDefault(&c.SMTP.Timeout, 30*time.Second)

	setDefault(&c.Scheduler.Timezone, "UTC")
	setDefault(&c.Scheduler.LockTTL, 5*time.Minute)

	setDefault(&c.RateLimit.SignInPerMinute, 5)
	setDefault(&c.RateLimit.SignInBurst, 5)
}

func setDefault[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch c.Authz.Engine {
	case EngineCasbin, EngineOPA:
	default:
		errs = append(errs, fmt.Errorf("authz.engine: unknown engine %q", c.Authz.Engine))
	}
	switch c.Authz.PolicyStore {
	case PolicyStorePostgres:
	case PolicyStoreMySQL:
		if c.Authz.MySQLDSN == "" {
			errs = append(errs, errors.New("authz.mysql_dsn: required for the mysql policy store"))
		}
	default:
		errs = append(errs, fmt.Errorf("authz.policy_store: unknown store %q", c.Authz.PolicyStore))
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.timezone: %w", err))
	}
	if c.RateLimit.SignInPerMinute < 0 || c.RateLimit.SignInBurst < 0 {
		errs = append(errs, errors.New("rate_limit: values must not be negative"))
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level (debug, info, warn, error).
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
