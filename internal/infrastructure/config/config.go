package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends understood by StoreConfig.Backend.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Config is the root configuration structure for switchbotd.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	SwitchBot SwitchBotConfig `yaml:"switchbot"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Polling   PollingConfig   `yaml:"polling"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// SiteConfig identifies this installation in MQTT topics and logs.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SwitchBotConfig contains cloud API client settings.
type SwitchBotConfig struct {
	BaseURL    string `yaml:"base_url"`
	Timeout    int    `yaml:"timeout"`
	RetryCount int    `yaml:"retry_count"`

	// Mock replaces the cloud client with the built-in demo bridge.
	Mock bool `yaml:"mock"`

	// Token and Secret seed the credential store on first start.
	// Credentials already present in the store take precedence.
	Token  string `yaml:"token"`
	Secret string `yaml:"secret"`
}

// StoreConfig selects the key/value persistence backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection settings for the redis store backend.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// PollingConfig holds the polling interval used until the user stores one.
type PollingConfig struct {
	DefaultIntervalSeconds int `yaml:"default_interval_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains API security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`

	// APIKey is exchanged for a bearer token at /api/v1/auth/token.
	APIKey string `yaml:"api_key"`
}

// JWTConfig contains JWT token settings. An empty secret disables API authentication.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SWITCHBOT_SECTION_KEY
// For example: SWITCHBOT_DB_PATH, SWITCHBOT_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
// It is used when no config file exists.
func Default() (*Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home",
			Name: "SwitchBot",
		},
		SwitchBot: SwitchBotConfig{
			BaseURL:    "https://api.switch-bot.com/v1.1",
			Timeout:    15,
			RetryCount: 0,
		},
		Store: StoreConfig{
			Backend: StoreBackendSQLite,
			Redis: RedisConfig{
				Address:   "localhost:6379",
				KeyPrefix: "switchbot:",
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/switchbot.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "switchbotd",
			},
			QoS:         1,
			TopicPrefix: "switchbot",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			Org:           "switchbot",
			Bucket:        "switchbot",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Polling: PollingConfig{
			DefaultIntervalSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies SWITCHBOT_* environment variable overrides.
// Malformed numeric or boolean values are ignored.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	// SwitchBot cloud
	setString("SWITCHBOT_TOKEN", &cfg.SwitchBot.Token)
	setString("SWITCHBOT_SECRET", &cfg.SwitchBot.Secret)
	setString("SWITCHBOT_BASE_URL", &cfg.SwitchBot.BaseURL)
	setBool("SWITCHBOT_MOCK", &cfg.SwitchBot.Mock)

	// Persistence
	setString("SWITCHBOT_STORE_BACKEND", &cfg.Store.Backend)
	setString("SWITCHBOT_REDIS_ADDR", &cfg.Store.Redis.Address)
	setString("SWITCHBOT_REDIS_PASSWORD", &cfg.Store.Redis.Password)
	setString("SWITCHBOT_DB_PATH", &cfg.Database.Path)

	// MQTT
	setBool("SWITCHBOT_MQTT_ENABLED", &cfg.MQTT.Enabled)
	setString("SWITCHBOT_MQTT_HOST", &cfg.MQTT.Broker.Host)
	setInt("SWITCHBOT_MQTT_PORT", &cfg.MQTT.Broker.Port)
	setString("SWITCHBOT_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	setString("SWITCHBOT_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	// InfluxDB
	setBool("SWITCHBOT_INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	setString("SWITCHBOT_INFLUXDB_URL", &cfg.InfluxDB.URL)
	setString("SWITCHBOT_INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	// API
	setString("SWITCHBOT_API_HOST", &cfg.API.Host)
	setInt("SWITCHBOT_API_PORT", &cfg.API.Port)
	setString("SWITCHBOT_JWT_SECRET", &cfg.Security.JWT.Secret)
	setString("SWITCHBOT_API_KEY", &cfg.Security.APIKey)

	setString("SWITCHBOT_LOG_LEVEL", &cfg.Logging.Level)
}

// Validate checks the configuration for errors and reports all of them at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if !c.SwitchBot.Mock && c.SwitchBot.BaseURL == "" {
		errs = append(errs, "switchbot.base_url is required unless switchbot.mock is set")
	}
	if c.SwitchBot.Timeout < 0 {
		errs = append(errs, "switchbot.timeout must not be negative")
	}
	if c.SwitchBot.RetryCount < 0 {
		errs = append(errs, "switchbot.retry_count must not be negative")
	}

	switch c.Store.Backend {
	case StoreBackendSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite store")
		}
	case StoreBackendRedis:
		if c.Store.Redis.Address == "" {
			errs = append(errs, "store.redis.address is required for the redis store")
		}
	case StoreBackendMemory:
	default:
		errs = append(errs, "store.backend must be sqlite, redis, or memory")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Polling.DefaultIntervalSeconds < 0 {
		errs = append(errs, "polling.default_interval_seconds must not be negative")
	}

	// An empty secret runs the API unauthenticated (local desktop use).
	const minJWTSecretLength = 32
	if s := c.Security.JWT.Secret; s != "" && len(s) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}
	if c.Security.JWT.Secret != "" && c.Security.APIKey == "" {
		errs = append(errs, "security.api_key is required when security.jwt.secret is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetSwitchBotTimeout returns the cloud request timeout as a Duration.
func (c *Config) GetSwitchBotTimeout() time.Duration {
	return time.Duration(c.SwitchBot.Timeout) * time.Second
}

// GetTokenTTL returns the API access token lifetime.
func (c *Config) GetTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.AccessTokenTTL) * time.Minute
}
