package config

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "web3news"

// EnvPrefix is the prefix for environment overrides, e.g. WEB3NEWS_WEBHOOK_READ_URL.
const EnvPrefix = "WEB3NEWS"

type WebhookConfig struct {
	ReadURL           string        `mapstructure:"read_url" yaml:"read_url"`
	WriteURL          string        `mapstructure:"write_url" yaml:"write_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

type CacheConfig struct {
	Backend    string      `mapstructure:"backend" yaml:"backend"`
	SQLitePath string      `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

type DevServerConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Workbook string `mapstructure:"workbook" yaml:"workbook"`
}

type Config struct {
	Webhook     WebhookConfig   `mapstructure:"webhook" yaml:"webhook"`
	Cache       CacheConfig     `mapstructure:"cache" yaml:"cache"`
	AutoFetch   bool            `mapstructure:"auto_fetch" yaml:"auto_fetch"`
	MetricsAddr string          `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Log         LogConfig       `mapstructure:"log" yaml:"log"`
	DevServer   DevServerConfig `mapstructure:"devserver" yaml:"devserver"`
}

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

func (c *Config) WebhookTimeout() time.Duration {
	if c.Webhook.Timeout <= 0 {
		return 20 * time.Second
	}
	return c.Webhook.Timeout
}

// CachePath returns the sqlite cache location, defaulting to the XDG cache dir.
func (c *Config) CachePath() string {
	if c.Cache.SQLitePath != "" {
		return c.Cache.SQLitePath
	}
	return DefaultCachePath()
}

// LogPath returns where the TUI writes its log.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func (c *Config) WorkbookPath() string {
	if c.DevServer.Workbook != "" {
		return c.DevServer.Workbook
	}
	return filepath.Join(xdg.DataHome, appName, "news.xlsx")
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, appName, "cache.db")
}

func newViper() (*viper.Viper, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func loadDefaults() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding embedded config: %w", err)
	}
	return &cfg, nil
}

// Load merges the user file at path (or the XDG default) over the embedded
// defaults and applies WEB3NEWS_* environment overrides. A missing file is
// not an error: the defaults are written there on first run.
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Non-fatal: the embedded defaults still apply.
		_ = writeDefaults(path)
	} else {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, u.Scheme)
	}
	return nil
}

func validate(cfg *Config) error {
	if err := validateURL("webhook.read_url", cfg.Webhook.ReadURL); err != nil {
		return err
	}
	if err := validateURL("webhook.write_url", cfg.Webhook.WriteURL); err != nil {
		return err
	}
	switch cfg.Cache.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (valid: memory, sqlite, redis)", cfg.Cache.Backend)
	}
	if cfg.Webhook.RetryAttempts < 0 {
		return fmt.Errorf("webhook.retry_attempts must not be negative")
	}
	return nil
}
