package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "flat-3"
switchbot:
  base_url: "http://localhost:9000/v1.1"
  timeout: 5
  retry_count: 2
store:
  backend: "redis"
  redis:
    address: "redis:6379"
polling:
  default_interval_seconds: 30
api:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "flat-3" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "flat-3")
	}
	if cfg.SwitchBot.BaseURL != "http://localhost:9000/v1.1" {
		t.Errorf("SwitchBot.BaseURL = %q", cfg.SwitchBot.BaseURL)
	}
	if cfg.GetSwitchBotTimeout().Seconds() != 5 {
		t.Errorf("GetSwitchBotTimeout() = %v, want 5s", cfg.GetSwitchBotTimeout())
	}
	if cfg.Store.Backend != StoreBackendRedis {
		t.Errorf("Store.Backend = %q, want redis", cfg.Store.Backend)
	}
	if cfg.Polling.DefaultIntervalSeconds != 30 {
		t.Errorf("Polling.DefaultIntervalSeconds = %d, want 30", cfg.Polling.DefaultIntervalSeconds)
	}
	// Untouched sections keep their defaults.
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
site:
  id: ""
store:
  backend: "etcd"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"site.id is required", "store.backend must be"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %q, want it to mention %q", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	validSecret := "test-secret-key-at-least-32-chars!"

	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: true},
		{name: "missing base url", mutate: func(c *Config) { c.SwitchBot.BaseURL = "" }, wantErr: true},
		{
			name:    "missing base url in mock mode",
			mutate:  func(c *Config) { c.SwitchBot.BaseURL = ""; c.SwitchBot.Mock = true },
			wantErr: false,
		},
		{name: "negative retry", mutate: func(c *Config) { c.SwitchBot.RetryCount = -1 }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{
			name:    "memory store without path",
			mutate:  func(c *Config) { c.Store.Backend = StoreBackendMemory; c.Database.Path = "" },
			wantErr: false,
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Store.Backend = StoreBackendRedis; c.Store.Redis.Address = "" },
			wantErr: true,
		},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "negative polling", mutate: func(c *Config) { c.Polling.DefaultIntervalSeconds = -5 }, wantErr: true},
		{
			name:    "influx enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: true},
		{
			name:    "JWT secret without api key",
			mutate:  func(c *Config) { c.Security.JWT.Secret = validSecret },
			wantErr: true,
		},
		{
			name: "JWT secret with api key",
			mutate: func(c *Config) {
				c.Security.JWT.Secret = validSecret
				c.Security.APIKey = "desk-key"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Security: SecurityConfig{JWT: JWTConfig{AccessTokenTTL: 15}},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetTokenTTL().Minutes(); got != 15 {
		t.Errorf("GetTokenTTL() = %v, want 15m", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SWITCHBOT_TOKEN", "tok")
	t.Setenv("SWITCHBOT_SECRET", "sec")
	t.Setenv("SWITCHBOT_MOCK", "true")
	t.Setenv("SWITCHBOT_DB_PATH", "/custom/path.db")
	t.Setenv("SWITCHBOT_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SWITCHBOT_MQTT_PORT", "8883")
	t.Setenv("SWITCHBOT_API_PORT", "not-a-number")
	t.Setenv("SWITCHBOT_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SWITCHBOT_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	if cfg.SwitchBot.Token != "tok" || cfg.SwitchBot.Secret != "sec" {
		t.Errorf("SwitchBot credentials = %q/%q, want tok/sec", cfg.SwitchBot.Token, cfg.SwitchBot.Secret)
	}
	if !cfg.SwitchBot.Mock {
		t.Error("SwitchBot.Mock = false, want true")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want malformed override ignored (8080)", cfg.API.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "jwt-secret")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Store.Backend != StoreBackendSQLite {
		t.Errorf("defaultConfig Store.Backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Polling.DefaultIntervalSeconds != 60 {
		t.Errorf("defaultConfig Polling.DefaultIntervalSeconds = %d, want 60", cfg.Polling.DefaultIntervalSeconds)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}
