// Package config loads the server configuration from YAML with an APP__
// environment overlay and prepares the logger and database from it.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mosaic-hrd/website/internal/cache"
	"github.com/mosaic-hrd/website/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Content  ContentConfig  `koanf:"content"`
	Cache    CacheConfig    `koanf:"cache"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Site     SiteConfig     `koanf:"site"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Mode       string `koanf:"mode"`
	CSRFSecret string `koanf:"csrf_secret"`
	// Timeout bounds request handling; empty disables it.
	Timeout string `koanf:"timeout"`
	// TrustProxy reuses X-Request-ID from the fronting proxy.
	TrustProxy  bool            `koanf:"trust_proxy"`
	SSLRedirect bool            `koanf:"ssl_redirect"`
	CORS        CORSConfig      `koanf:"cors"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig lists the origins allowed to call /api/v1.
type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
	MaxAge       string   `koanf:"max_age"`
}

// RateLimitConfig is the per-IP budget; zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	Burst             int `koanf:"burst"`
}

// ContentConfig points at the remote content API.
type ContentConfig struct {
	BaseURL    string `koanf:"base_url"`
	Timeout    string `koanf:"timeout"`
	Revalidate string `koanf:"revalidate"`
	// MaxPages caps the home carousel fetch-all loop.
	MaxPages      int    `koanf:"max_pages"`
	DefaultLocale string `koanf:"default_locale"`
}

// CacheConfig selects the response cache backing the content client.
type CacheConfig struct {
	Driver     string      `koanf:"driver"`
	MaxEntries int         `koanf:"max_entries"`
	Redis      RedisConfig `koanf:"redis"`
}

// RedisConfig is used when cache.driver is redis.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	KeyPrefix string `koanf:"key_prefix"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// SiteConfig is the organisation's static contact and donation data.
type SiteConfig struct {
	Name    string `koanf:"name"`
	Email   string `koanf:"email"`
	Phone   string `koanf:"phone"`
	// Address is keyed by locale.
	Address      map[string]string `koanf:"address"`
	Headquarters Coordinates       `koanf:"headquarters"`
	// ImageBaseURL prefixes relative image paths returned by the content API.
	ImageBaseURL string            `koanf:"image_base_url"`
	Social       map[string]string `koanf:"social"`
	Banks        []BankAccount     `koanf:"banks"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `koanf:"lat"`
	Lon float64 `koanf:"lon"`
}

// BankAccount is one donation account.
type BankAccount struct {
	ID          string `koanf:"id" json:"id"`
	Bank        string `koanf:"bank" json:"bank"`
	AccountName string `koanf:"account_name" json:"accountName,omitempty"`
	Number      string `koanf:"number" json:"number"`
}

// AddressFor returns the address in locale, falling back to Arabic.
func (s SiteConfig) AddressFor(locale string) string {
	if a, ok := s.Address[locale]; ok && a != "" {
		return a
	}
	return s.Address[domain.LocaleAR]
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator; single underscores stay part of the key. For example
// APP__CONTENT__BASE_URL overrides content.base_url and
// APP__CACHE__REDIS__ADDR overrides cache.redis.addr.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "APP__"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes values in place and checks supported values. Sections
// are checked in declaration order and the first failure is returned.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.Server.validate,
		c.Content.validate,
		c.Cache.validate,
		func() error { return c.Database.validate(c.Server.Mode) },
		c.Log.validate,
		c.Site.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServerConfig) validate() error {
	s.Mode = strings.TrimSpace(s.Mode)
	switch s.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if err := optionalDuration("server.timeout", &s.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &s.CORS.MaxAge); err != nil {
		return err
	}
	if s.RateLimit.RequestsPerMinute < 0 || s.RateLimit.Burst < 0 {
		return fmt.Errorf("invalid server.rate_limit: requests_per_minute and burst must not be negative")
	}
	return nil
}

func (c *ContentConfig) validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("content.base_url is required")
	}
	u, err := url.ParseRequestURI(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid content.base_url %q: must be an absolute http(s) URL", c.BaseURL)
	}
	if err := optionalDuration("content.timeout", &c.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("content.revalidate", &c.Revalidate); err != nil {
		return err
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("invalid content.max_pages %d: must not be negative", c.MaxPages)
	}
	c.DefaultLocale = strings.TrimSpace(c.DefaultLocale)
	switch c.DefaultLocale {
	case "":
		c.DefaultLocale = domain.LocaleAR
	case domain.LocaleAR, domain.LocaleEN:
	default:
		return fmt.Errorf("invalid content.default_locale %q: must be %q or %q", c.DefaultLocale, domain.LocaleAR, domain.LocaleEN)
	}
	return nil
}

func (c *CacheConfig) validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "":
		c.Driver = cache.DriverMemory
	case cache.DriverMemory, cache.DriverNone:
	case cache.DriverRedis:
		c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
		if c.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required when cache.driver is redis")
		}
	default:
		return fmt.Errorf("invalid cache.driver %q: must be one of %q, %q, %q", c.Driver, cache.DriverMemory, cache.DriverRedis, cache.DriverNone)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("invalid cache.max_entries %d: must not be negative", c.MaxEntries)
	}
	return nil
}

func (d *DatabaseConfig) validate(mode string) error {
	switch d.Driver {
	case "sqlite":
		d.SQLite.Path = strings.TrimSpace(d.SQLite.Path)
		if d.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
	case "postgres":
		if err := d.Postgres.validate(mode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", d.Driver, "sqlite", "postgres")
	}
	return optionalDuration("database.pool.conn_max_lifetime", &d.Pool.ConnMaxLifetime)
}

func (p *PostgresConfig) validate(mode string) error {
	p.Host = strings.TrimSpace(p.Host)
	p.User = strings.TrimSpace(p.User)
	p.DBName = strings.TrimSpace(p.DBName)
	p.SSLMode = strings.TrimSpace(p.SSLMode)
	switch {
	case p.Host == "":
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	case p.Port < 1 || p.Port > 65535:
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", p.Port)
	case p.User == "":
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	case p.DBName == "":
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	switch p.SSLMode {
	case "require", "verify-ca", "verify-full":
	case "disable", "allow", "prefer":
		if mode == gin.ReleaseMode {
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", p.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q", p.SSLMode)
	}
	return nil
}

func (l *LogConfig) validate() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}
	return nil
}

func (s *SiteConfig) validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("site.name is required")
	}
	for i, b := range s.Banks {
		if strings.TrimSpace(b.Bank) == "" || strings.TrimSpace(b.Number) == "" {
			return fmt.Errorf("site.banks[%d]: bank and number are required", i)
		}
	}
	if lat, lon := s.Headquarters.Lat, s.Headquarters.Lon; lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid site.headquarters (%v, %v)", lat, lon)
	}
	return nil
}

// optionalDuration trims *v and, when set, requires a positive Go duration.
func optionalDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, *v)
	}
	return nil
}

// Duration parses a value already checked by Validate, returning def when
// it is empty.
func Duration(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}
