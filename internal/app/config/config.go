package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	App        AppConfig          `mapstructure:"app"`
	Server     ServerConfig       `mapstructure:"server"`
	Postgres   PostgresConfig     `mapstructure:"postgres"`
	Redis      RedisConfig        `mapstructure:"redis"`
	Accounts   map[string]Account `mapstructure:"accounts"`
	OneC       OneCConfig         `mapstructure:"onec"`
	Shipment   ShipmentConfig     `mapstructure:"shipment"`
	Reconciler ReconcilerConfig   `mapstructure:"reconciler"`
	Dedup      DedupConfig        `mapstructure:"dedup"`
}

// AppConfig holds service identity and log level.
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// PostgresConfig holds the database DSN.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Account is one marketplace seller cabinet: its API token and the legal
// entity INN reported to the ERP.
type Account struct {
	Token string `mapstructure:"token"`
	INN   string `mapstructure:"inn"`
}

// OneCConfig holds the ERP endpoint and credentials.
type OneCConfig struct {
	Host     string        `mapstructure:"host"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ShipmentConfig holds the external shipment-log / reservation API settings.
type ShipmentConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	WarehouseID int           `mapstructure:"warehouse_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ReconcilerConfig holds the background reconciliation settings.
type ReconcilerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// DedupConfig holds the duplicate-request lock settings.
type DedupConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Load reads configuration from the given yaml file.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault loads the default config file path.
func LoadDefault() (*Config, error) {
	return Load("config/config.yaml")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.OneC.Timeout == 0 {
		c.OneC.Timeout = 240 * time.Second
	}
	if c.Shipment.WarehouseID == 0 {
		c.Shipment.WarehouseID = 1
	}
	if c.Shipment.Timeout == 0 {
		c.Shipment.Timeout = 30 * time.Second
	}
	if c.Reconciler.Interval == 0 {
		c.Reconciler.Interval = 10 * time.Minute
	}
	if c.Reconciler.RetentionDays == 0 {
		c.Reconciler.RetentionDays = 30
	}
	if c.Dedup.LockTTL == 0 {
		// move-orders over a multi-hundred batch can run minutes
		c.Dedup.LockTTL = 120 * time.Second
	}
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one marketplace account is required")
	}
	for name, acc := range c.Accounts {
		if acc.Token == "" {
			return fmt.Errorf("account %s: token is required", name)
		}
	}
	if c.OneC.Host == "" {
		return fmt.Errorf("onec.host is required")
	}
	if c.Shipment.BaseURL == "" {
		return fmt.Errorf("shipment.base_url is required")
	}
	return nil
}

// Tokens returns the account → API token map.
func (c *Config) Tokens() map[string]string {
	tokens := make(map[string]string, len(c.Accounts))
	for name, acc := range c.Accounts {
		tokens[name] = acc.Token
	}
	return tokens
}

// INNs returns the account → INN map used by the ERP payload.
func (c *Config) INNs() map[string]string {
	inns := make(map[string]string, len(c.Accounts))
	for name, acc := range c.Accounts {
		inns[name] = acc.INN
	}
	return inns
}
